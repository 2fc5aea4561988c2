package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/0xlemi/hearnote/internal/config"
	"github.com/0xlemi/hearnote/internal/logging"
)

var (
	configFile string
	logLevel   string
	logFile    string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hearnote",
	Short: "Real-time pitch trainer",
	Long: `HearNote listens to a microphone and estimates the pitch of what it hears,
so you can sing or play back the note it asks for.

Three estimation modes are available:
- absolute-max: loudest spectrum bin
- harmonic-count: candidate with the most harmonic support
- ratio-refine: loudest bin corrected for octave and fifth errors`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to this file instead of stderr")

	rootCmd.AddCommand(listenCmd, selftestCmd, configCmd)
}

// initializeConfig loads configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()
	if err := bindFlags(cmd, v); err != nil {
		return err
	}

	loaded, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	logger, err = logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		zap.String("config_file", configFile),
		zap.String("mode", cfg.Estimator.Mode),
		zap.Int("transform_size", cfg.Estimator.TransformSize))
	return nil
}

// bindFlags binds each cobra flag to the viper key of the same name, with
// dashes turned into underscores and dots for nested keys
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		key := flagKey(f.Name)
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

var flagKeys = map[string]string{
	"log-level":      "log_level",
	"log-file":       "log_file",
	"source":         "audio.source",
	"sample-rate":    "audio.sample_rate",
	"amplification":  "audio.amplification",
	"tone":           "audio.tone_frequency",
	"transform-size": "estimator.transform_size",
	"mode":           "estimator.mode",
	"floor":          "estimator.frequency_floor",
	"gate":           "gate.threshold",
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}
