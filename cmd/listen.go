package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/0xlemi/hearnote/internal/audio"
	"github.com/0xlemi/hearnote/internal/pitch"
	"github.com/0xlemi/hearnote/internal/ui"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run the interactive pitch trainer",
	Long: `Capture audio, estimate its pitch continuously and show it next to a target note.
The terminal is taken over by the trainer view, so logs go to --log-file when set
and are discarded otherwise.`,
	RunE: runListen,
}

func init() {
	flags := listenCmd.Flags()
	flags.String("source", "portaudio", "audio source (portaudio, tone)")
	flags.Int("sample-rate", 44100, "capture sample rate in Hz")
	flags.Float32("amplification", 1, "input amplification factor")
	flags.Float64("tone", 440, "frequency of the synthetic tone source in Hz")
	flags.Int("transform-size", 32768, "FFT size in samples (power of two)")
	flags.String("mode", "harmonic-count", "estimation mode (absolute-max, harmonic-count, ratio-refine)")
	flags.Float64("floor", 41, "frequencies below this many Hz count as no pitch")
	flags.Int("gate", 5, "noise gate threshold around the 8-bit center, 0 disables")
}

func runListen(cmd *cobra.Command, args []string) error {
	log := logger
	if cfg.LogFile == "" {
		log = zap.NewNop()
	}

	pcfg, err := cfg.PitchConfig()
	if err != nil {
		return err
	}

	estimator := pitch.NewEstimator(log.Named("estimator"))
	if err := estimator.InitSession(pcfg.TransformSize); err != nil {
		return fmt.Errorf("failed to initialize estimator: %w", err)
	}
	defer estimator.EndSession()
	detector := pitch.NewFFTDetector(estimator, pcfg)

	capturer, err := newCapturer(log)
	if err != nil {
		return fmt.Errorf("failed to create audio capturer: %w", err)
	}
	if err := capturer.Start(); err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}
	defer func() {
		if err := capturer.Stop(); err != nil {
			log.Warn("capture stop failed", zap.Error(err))
		}
	}()

	// A new target discards the audio heard for the previous one
	targetChanged := make(chan struct{}, 1)

	model := ui.NewModel(ui.Options{
		Mode:      pcfg.Mode,
		MinOctave: cfg.Trainer.MinOctave,
		MaxOctave: cfg.Trainer.MaxOctave,
		SetMode: func(mode pitch.Mode) {
			detector.SetMode(mode)
			log.Info("estimation mode changed", zap.Stringer("mode", mode))
		},
		OnTarget: func(note pitch.Note) {
			if tone, ok := capturer.(*audio.ToneCapturer); ok {
				tone.SetFrequency(note.Frequency)
			}
			select {
			case targetChanged <- struct{}{}:
			default:
			}
		},
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return listenLoop(ctx, capturer, detector, p, pcfg.TransformSize, targetChanged, log)
	})

	return g.Wait()
}

func newCapturer(log *zap.Logger) (audio.Capturer, error) {
	switch cfg.Audio.Source {
	case "tone":
		// One poll interval worth of samples per read, like a live device
		chunk := int(cfg.Estimator.PollInterval.Seconds() * float64(cfg.Audio.SampleRate))
		return audio.NewToneCapturer(cfg.Audio.ToneFrequency, cfg.Audio.SampleRate, max(chunk, 1),
			[]float64{1, 0.6, 0.3}), nil
	default:
		c, err := audio.NewPortAudioCapturer(cfg.Audio.FramesPerRead, cfg.Audio.SampleRate, cfg.Audio.Channels,
			log.Named("capture"))
		if err != nil {
			return nil, err
		}
		c.SetAmplification(cfg.Audio.Amplification)
		return c, nil
	}
}

// listenLoop feeds captured chunks through the sliding analysis block and
// reports each estimate to the UI
func listenLoop(ctx context.Context, capturer audio.Capturer, detector pitch.Detector, p *tea.Program,
	transformSize int, targetChanged <-chan struct{}, log *zap.Logger) error {
	block := audio.NewAccumulator(transformSize)
	ticker := time.NewTicker(cfg.Estimator.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-targetChanged:
			block.Reset()
			continue
		case <-ticker.C:
		}

		buffer, err := capturer.GetBuffer()
		if err != nil {
			log.Warn("capture read failed", zap.Error(err))
			continue
		}
		block.Push(buffer.Samples)
		if !block.Ready() {
			continue
		}

		rms, db := audio.Level(block.Block())
		p.Send(ui.UpdateAudioLevelMsg{RMS: rms, DB: db})

		note, err := detector.DetectPitch(&audio.AudioBuffer{
			Samples:    block.Block(),
			Format:     buffer.Format,
			SampleRate: buffer.SampleRate,
		})
		switch {
		case errors.Is(err, pitch.ErrNoPitch):
			p.Send(ui.ClearNoteMsg{})
		case err != nil:
			// The block is skipped, the next one gets a fresh attempt
			log.Warn("pitch estimation failed", zap.Error(err))
			p.Send(ui.ClearNoteMsg{})
		default:
			log.Debug("note detected",
				zap.Stringer("note", note),
				zap.Float64("frequency", note.Frequency),
				zap.Float64("cents", note.Cents))
			p.Send(ui.UpdateNoteMsg(*note))
		}
	}
}
