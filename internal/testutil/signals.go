package testutil

import "math"

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Sine generates a sine wave starting at phase 0.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// RMS returns the root mean square of buf, 0 for an empty slice.
func RMS(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range buf {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}

// RMS32 is RMS for float32 audio blocks.
func RMS32(buf []float32) float64 {
	if len(buf) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(buf)))
}
