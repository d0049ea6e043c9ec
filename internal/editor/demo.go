package editor

import "github.com/cwbudde/filter-playground/dsp/filter/synth"

// The demo filter is a second-order lowpass with a double zero at z = -1
// and unity gain at DC, given as raw vectors with a0 != 1.
var (
	demoFeedforward = []float64{0.00020298, 0.0004059599, 0.00020298}
	demoFeedback    = []float64{1.0126964558, -1.9991880801, 0.9873035442}
)

// DemoCoefficients returns the normalized demo filter.
func DemoCoefficients() synth.Coefficients {
	c, err := synth.Normalize(demoFeedforward, demoFeedback)
	if err != nil {
		panic("editor: invalid demo coefficients: " + err.Error())
	}
	return c
}

// LoadDemo replaces the model with the roots of the demo filter.
func (s *Session) LoadDemo() error {
	return s.LoadCoefficients(DemoCoefficients())
}
