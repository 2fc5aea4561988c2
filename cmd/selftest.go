package main

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mjibson/go-dsp/fft"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/0xlemi/hearnote/internal/audio"
	"github.com/0xlemi/hearnote/internal/pitch"
	"github.com/0xlemi/hearnote/internal/spectrum"
)

// maxSpectrumDeviation is the relative error allowed against the reference FFT
const maxSpectrumDeviation = 1e-6

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Estimate synthetic tones with every mode",
	Long: `Synthesize a set of tones, run each one through the noise gate, transform and all
three estimation modes, and cross-check the power spectrum against an independent FFT.`,
	RunE: runSelftest,
}

type selftestTone struct {
	name     string
	octave   int
	partials []float64
}

var selftestTones = []selftestTone{
	{"A", 2, []float64{1}},
	{"E", 3, []float64{1, 0.5}},
	{"A", 3, []float64{0.6, 1, 0.4}},
	{"C", 4, []float64{1, 0.7, 0.5, 0.3}},
	{"A", 4, []float64{1}},
	{"E", 5, []float64{0.8, 1, 0.6}},
}

func runSelftest(cmd *cobra.Command, args []string) error {
	pcfg, err := cfg.PitchConfig()
	if err != nil {
		return err
	}
	n := pcfg.TransformSize

	estimator := pitch.NewEstimator(logger.Named("estimator"))
	defer estimator.EndSession()

	rows := [][]string{}
	misses := 0
	for i, tone := range selftestTones {
		freq, err := pitch.NoteFrequency(tone.name, tone.octave)
		if err != nil {
			return err
		}

		capturer := audio.NewToneCapturer(freq, pcfg.SampleRate, n, tone.partials)
		if err := capturer.Start(); err != nil {
			return err
		}
		buffer, err := capturer.GetBuffer()
		capturer.Stop()
		if err != nil {
			return err
		}

		if i == 0 {
			deviation, err := crossCheckSpectrum(buffer.Samples, n)
			if err != nil {
				return err
			}
			logger.Info("spectrum cross-check", zap.Float64("max_relative_deviation", deviation))
			if deviation > maxSpectrumDeviation {
				return fmt.Errorf("power spectrum deviates from reference FFT by %g", deviation)
			}
		}

		want := fmt.Sprintf("%s%d", tone.name, tone.octave)
		for _, mode := range []pitch.Mode{pitch.AbsoluteMax, pitch.HarmonicCount, pitch.RatioRefine} {
			mcfg := pcfg
			mcfg.Mode = mode

			got, err := estimator.EstimatePitch(buffer.Samples, mcfg)
			if err != nil {
				return fmt.Errorf("estimating %s with %s: %w", want, mode, err)
			}

			heard, cents, result := "-", "-", "miss"
			if got != pitch.NoPitch {
				note := pitch.FrequencyToNote(got)
				heard = note.String()
				cents = fmt.Sprintf("%+.1f", pitch.CentsBetween(got, freq))
				if heard == want {
					result = "ok"
				}
			}
			if result != "ok" {
				misses++
			}

			rows = append(rows, []string{
				want, fmt.Sprintf("%.2f", freq), mode.String(),
				fmt.Sprintf("%.2f", got), heard, cents, result,
			})
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TARGET", "HZ", "MODE", "ESTIMATE", "HEARD", "CENTS", "RESULT").
		Rows(rows...)
	fmt.Fprintln(cmd.OutOrStdout(), t)
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d estimates missed the target note (transform size %d, %.2f Hz per bin)\n",
		misses, len(rows), n, float64(pcfg.SampleRate)/float64(n))

	return nil
}

// crossCheckSpectrum compares the power spectrum of block with one computed
// by go-dsp and returns the largest deviation relative to the peak bin
func crossCheckSpectrum(block []byte, n int) (float64, error) {
	cache := spectrum.NewCache()
	power, err := cache.Transform(nil, block, n, spectrum.FormatU8)
	if err != nil {
		return 0, err
	}

	seq := make([]float64, n)
	for i := range seq {
		seq[i] = float64(int(block[i])-128) * cache.Window()[i]
	}
	reference := fft.FFTReal(seq)

	peak := 0.0
	for _, p := range power {
		peak = math.Max(peak, p)
	}
	if peak == 0 {
		return 0, nil
	}

	deviation := 0.0
	for k := range power {
		r := cmplx.Abs(reference[k])
		deviation = math.Max(deviation, math.Abs(power[k]-r*r)/peak)
	}
	return deviation, nil
}
