// Package config loads hearnote settings from defaults, an optional YAML
// file and HEARNOTE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/0xlemi/hearnote/internal/gate"
	"github.com/0xlemi/hearnote/internal/pitch"
	"github.com/0xlemi/hearnote/internal/spectrum"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "HEARNOTE"

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Estimator EstimatorConfig `mapstructure:"estimator" yaml:"estimator"`
	Gate      GateConfig      `mapstructure:"gate" yaml:"gate"`
	Trainer   TrainerConfig   `mapstructure:"trainer" yaml:"trainer"`
}

// AudioConfig contains capture settings
type AudioConfig struct {
	Source        string  `mapstructure:"source" yaml:"source"` // portaudio or tone
	SampleRate    int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels      int     `mapstructure:"channels" yaml:"channels"`
	FramesPerRead int     `mapstructure:"frames_per_read" yaml:"frames_per_read"`
	Amplification float32 `mapstructure:"amplification" yaml:"amplification"`
	ToneFrequency float64 `mapstructure:"tone_frequency" yaml:"tone_frequency"`
}

// EstimatorConfig contains pitch estimation settings
type EstimatorConfig struct {
	TransformSize  int           `mapstructure:"transform_size" yaml:"transform_size"`
	Mode           string        `mapstructure:"mode" yaml:"mode"`
	FrequencyFloor float64       `mapstructure:"frequency_floor" yaml:"frequency_floor"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// GateConfig contains noise gate settings
type GateConfig struct {
	Threshold int `mapstructure:"threshold" yaml:"threshold"`
	HoldMs    int `mapstructure:"hold_ms" yaml:"hold_ms"`
	ReleaseMs int `mapstructure:"release_ms" yaml:"release_ms"`
	AttackMs  int `mapstructure:"attack_ms" yaml:"attack_ms"`
}

// TrainerConfig bounds the target notes the trainer picks
type TrainerConfig struct {
	MinOctave int `mapstructure:"min_octave" yaml:"min_octave"`
	MaxOctave int `mapstructure:"max_octave" yaml:"max_octave"`
}

// SetDefaults registers default values for every key
func SetDefaults(v *viper.Viper) {
	defaults := pitch.DefaultConfig()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.SetDefault("audio.source", "portaudio")
	v.SetDefault("audio.sample_rate", defaults.SampleRate)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.frames_per_read", 512)
	v.SetDefault("audio.amplification", 1.0)
	v.SetDefault("audio.tone_frequency", 440.0)

	v.SetDefault("estimator.transform_size", defaults.TransformSize)
	v.SetDefault("estimator.mode", defaults.Mode.String())
	v.SetDefault("estimator.frequency_floor", defaults.FrequencyFloor)
	v.SetDefault("estimator.poll_interval", "300ms")

	v.SetDefault("gate.threshold", defaults.Gate.Threshold)
	v.SetDefault("gate.hold_ms", defaults.Gate.HoldMs)
	v.SetDefault("gate.release_ms", defaults.Gate.ReleaseMs)
	v.SetDefault("gate.attack_ms", defaults.Gate.AttackMs)

	v.SetDefault("trainer.min_octave", 3)
	v.SetDefault("trainer.max_octave", 4)
}

// Load reads configuration into v and decodes it. file may be empty.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting the estimator depends on
func (c *Config) Validate() error {
	var errs []error

	if c.Audio.Source != "portaudio" && c.Audio.Source != "tone" {
		errs = append(errs, fmt.Errorf("audio.source must be portaudio or tone, got %q", c.Audio.Source))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate))
	}
	if c.Audio.Channels <= 0 {
		errs = append(errs, fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels))
	}
	if c.Audio.FramesPerRead <= 0 {
		errs = append(errs, fmt.Errorf("audio.frames_per_read must be positive, got %d", c.Audio.FramesPerRead))
	}
	if !spectrum.ValidSize(c.Estimator.TransformSize) {
		errs = append(errs, fmt.Errorf("estimator.transform_size %d: %w", c.Estimator.TransformSize, spectrum.ErrInvalidSize))
	}
	if _, err := pitch.ParseMode(c.Estimator.Mode); err != nil {
		errs = append(errs, fmt.Errorf("estimator.mode: %w", err))
	}
	if c.Estimator.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("estimator.poll_interval must be positive, got %s", c.Estimator.PollInterval))
	}
	if c.Gate.Threshold < 0 || c.Gate.Threshold > 128 {
		errs = append(errs, fmt.Errorf("gate.threshold must be within 0..128, got %d", c.Gate.Threshold))
	}
	if c.Gate.Threshold > 0 {
		if c.Gate.ReleaseMs*c.Audio.SampleRate/1000 < 1 || c.Gate.AttackMs*c.Audio.SampleRate/1000 < 1 {
			errs = append(errs, fmt.Errorf("gate release and attack must span at least one sample: %w", gate.ErrZeroTicks))
		}
	}
	if c.Trainer.MinOctave > c.Trainer.MaxOctave {
		errs = append(errs, fmt.Errorf("trainer.min_octave %d above max_octave %d", c.Trainer.MinOctave, c.Trainer.MaxOctave))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// PitchConfig converts the settings into an estimator configuration
func (c *Config) PitchConfig() (pitch.Config, error) {
	mode, err := pitch.ParseMode(c.Estimator.Mode)
	if err != nil {
		return pitch.Config{}, err
	}

	return pitch.Config{
		SampleRate:    c.Audio.SampleRate,
		TransformSize: c.Estimator.TransformSize,
		Mode:          mode,
		Format:        spectrum.FormatU8,
		Gate: gate.Params{
			Threshold: c.Gate.Threshold,
			HoldMs:    c.Gate.HoldMs,
			ReleaseMs: c.Gate.ReleaseMs,
			AttackMs:  c.Gate.AttackMs,
		},
		FrequencyFloor: c.Estimator.FrequencyFloor,
	}, nil
}
