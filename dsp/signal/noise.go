// Package signal provides deterministic test and demo signal sources.
package signal

import (
	"fmt"
	"math/rand"
)

// NoiseLoop plays a fixed buffer of white noise in a loop. The buffer is
// generated once from a seed, so two loops with the same parameters produce
// identical output.
type NoiseLoop struct {
	buf []float64
	pos int
}

// NewNoiseLoop returns a loop of length samples uniformly distributed in
// [-amplitude, amplitude].
func NewNoiseLoop(length int, amplitude float64, seed int64) (*NoiseLoop, error) {
	if length <= 0 {
		return nil, fmt.Errorf("noise loop length must be > 0: %d", length)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	buf := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range buf {
		buf[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return &NoiseLoop{buf: buf}, nil
}

// Len returns the loop length in samples.
func (n *NoiseLoop) Len() int {
	return len(n.buf)
}

// Next returns the next sample, wrapping at the end of the buffer.
func (n *NoiseLoop) Next() float64 {
	v := n.buf[n.pos]
	n.pos++
	if n.pos == len(n.buf) {
		n.pos = 0
	}
	return v
}

// Fill writes the next len(dst) samples into dst.
func (n *NoiseLoop) Fill(dst []float64) {
	for len(dst) > 0 {
		k := copy(dst, n.buf[n.pos:])
		dst = dst[k:]
		n.pos = (n.pos + k) % len(n.buf)
	}
}

// Rewind restarts playback at the first sample.
func (n *NoiseLoop) Rewind() {
	n.pos = 0
}
