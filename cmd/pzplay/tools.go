package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/cwbudde/filter-playground/dsp/filter/synth"
	"github.com/cwbudde/filter-playground/dsp/polezero"
	"github.com/cwbudde/filter-playground/internal/editor"
)

var errNoRoots = errors.New("no poles or zeros given")

func synthCommand() *cli.Command {
	return &cli.Command{
		Name:  "synth",
		Usage: "Synthesize coefficients from poles and zeros",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "pole", Aliases: []string{"p"}, Usage: "pole position, e.g. 0.5+0.3i"},
			&cli.StringSliceFlag{Name: "zero", Aliases: []string{"z"}, Usage: "zero position, e.g. -1"},
			&cli.BoolFlag{Name: "conjugate", Usage: "add the conjugate of every non-real point"},
			&cli.BoolFlag{Name: "stable", Value: true, Usage: "reject poles on or outside the unit circle"},
			&cli.StringFlag{Name: "normalize", Value: "none", Usage: "gain normalization: none, dc or peak"},
			&cli.FloatFlag{Name: "gain", Value: 1, Usage: "feed-forward gain when not normalizing"},
			&cli.FloatFlag{Name: "rate", Value: 48000, Usage: "sample rate for the response summary"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			norm, err := synth.ParseNormalization(cmd.String("normalize"))
			if err != nil {
				return err
			}
			poles, err := parsePoints(cmd.StringSlice("pole"), cmd.Bool("conjugate"))
			if err != nil {
				return fmt.Errorf("pole: %w", err)
			}
			zeros, err := parsePoints(cmd.StringSlice("zero"), cmd.Bool("conjugate"))
			if err != nil {
				return fmt.Errorf("zero: %w", err)
			}
			if len(poles) == 0 && len(zeros) == 0 {
				return errNoRoots
			}

			s := synth.New(
				synth.WithStabilityRequired(cmd.Bool("stable")),
				synth.WithNormalization(norm),
				synth.WithGain(cmd.Float("gain")),
			)
			c, err := s.Synthesize(zeros, poles)
			if err != nil {
				return err
			}
			return writeSynthesis(os.Stdout, c, poles, cmd.Float("rate"))
		},
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Find the poles and zeros of a coefficient set",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ff", Usage: "comma separated feed-forward coefficients"},
			&cli.StringFlag{Name: "fb", Usage: "comma separated feedback coefficients"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			c := editor.DemoCoefficients()
			if cmd.String("ff") != "" || cmd.String("fb") != "" {
				ff, err := parseVector(cmd.String("ff"))
				if err != nil {
					return fmt.Errorf("ff: %w", err)
				}
				fb, err := parseVector(cmd.String("fb"))
				if err != nil {
					return fmt.Errorf("fb: %w", err)
				}
				if c, err = synth.Normalize(ff, fb); err != nil {
					return err
				}
			}
			roots, err := synth.Analyze(c)
			if err != nil {
				return err
			}
			return writeAnalysis(os.Stdout, roots)
		},
	}
}

// parsePoints parses complex literals. With conjugate set, each point off
// the real axis is followed by its mirror image.
func parsePoints(values []string, conjugate bool) ([]complex128, error) {
	var out []complex128
	for _, v := range values {
		p, err := polezero.ParsePoint(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Complex())
		if conjugate && p.Im != 0 {
			out = append(out, p.Conj().Complex())
		}
	}
	return out, nil
}

func parseVector(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return []float64{1}, nil
	}
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeSynthesis(w io.Writer, c synth.Coefficients, poles []complex128, sampleRate float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAP\tFEEDFORWARD\tFEEDBACK")
	for i := range c.Feedforward {
		fmt.Fprintf(tw, "%d\t%.10g\t%.10g\n", i, c.Feedforward[i], c.Feedback[i])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\norder %d, max pole radius %.6f, DC %.2f dB, Nyquist %.2f dB\n",
		c.Order(), synth.MaxRadius(poles),
		c.MagnitudeDB(0, sampleRate), c.MagnitudeDB(sampleRate/2, sampleRate))
	return err
}

func writeAnalysis(w io.Writer, r synth.Roots) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tPOSITION\tRADIUS\tANGLE(deg)")
	for _, z := range r.Zeros {
		writeRoot(tw, "zero", z)
	}
	for _, p := range r.Poles {
		writeRoot(tw, "pole", p)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\ngain %.10g, delay %d, stable %t\n", r.Gain, r.Delay, synth.Stable(r.Poles))
	return err
}

func writeRoot(w io.Writer, kind string, v complex128) {
	fmt.Fprintf(w, "%s\t%s\t%.6f\t%.3f\n", kind, polezero.FromComplex(v),
		cmplx.Abs(v), cmplx.Phase(v)*180/math.Pi)
}
