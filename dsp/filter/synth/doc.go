// Package synth turns z-plane poles and zeros into real IIR filter
// coefficients and back.
//
// [Synthesizer.Synthesize] expands prod(1 - zero*z^-1) into the
// feed-forward taps and prod(1 - pole*z^-1) into the feedback taps. The
// expansion runs in complex arithmetic; conjugate-symmetric root sets yield
// real vectors, anything else fails with [ErrAsymmetricCoefficients]
// instead of silently dropping the imaginary residue. Poles on or outside
// the unit circle fail with [ErrUnstableFilter] unless stability checking
// is disabled.
//
// [Analyze] recovers roots from existing coefficient vectors, and the
// [Coefficients] response methods evaluate the resulting transfer function.
package synth
