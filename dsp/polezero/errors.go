package polezero

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when a point reference is out of range.
	ErrInvalidIndex = errors.New("polezero: invalid index")
	// ErrInvalidKind is returned for a Kind other than Pole or Zero.
	ErrInvalidKind = errors.New("polezero: invalid kind")
	// ErrUnpairedRoot is returned when a non-real point has no conjugate
	// partner in its set.
	ErrUnpairedRoot = errors.New("polezero: non-real point without conjugate partner")
	// ErrInvalidViewport is returned for non-positive or non-finite
	// viewport dimensions.
	ErrInvalidViewport = errors.New("polezero: invalid viewport")
	// ErrNonSquareViewport is returned when width and height differ.
	ErrNonSquareViewport = errors.New("polezero: viewport must be square")
)

func indexError(r Ref, n int) error {
	return fmt.Errorf("%w: %s (len %d)", ErrInvalidIndex, r, n)
}
