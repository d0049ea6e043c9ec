package polezero

import (
	"fmt"
	"math"
)

// DefaultPlotRange spans [-2, 2] on both axes.
const DefaultPlotRange = 4.0

// Viewport maps canvas pixels to z-plane coordinates. The plane origin sits
// at the canvas centre, both axes share one scale of width/plotRange pixels
// per unit, and the imaginary axis grows upwards while screen y grows
// downwards.
type Viewport struct {
	width     float64
	height    float64
	plotRange float64
	scale     float64
}

// NewViewport returns a viewport for a width x height canvas showing
// [-plotRange/2, plotRange/2] on both axes. The canvas must be square.
func NewViewport(width, height, plotRange float64) (Viewport, error) {
	if !positiveFinite(width) || !positiveFinite(height) || !positiveFinite(plotRange) {
		return Viewport{}, fmt.Errorf("%w: width=%g height=%g range=%g",
			ErrInvalidViewport, width, height, plotRange)
	}
	if width != height {
		return Viewport{}, fmt.Errorf("%w: %gx%g", ErrNonSquareViewport, width, height)
	}
	return Viewport{
		width:     width,
		height:    height,
		plotRange: plotRange,
		scale:     width / plotRange,
	}, nil
}

// Width returns the canvas width in pixels.
func (v Viewport) Width() float64 { return v.width }

// Height returns the canvas height in pixels.
func (v Viewport) Height() float64 { return v.height }

// PlotRange returns the visible span of each axis.
func (v Viewport) PlotRange() float64 { return v.plotRange }

// Scale returns pixels per plane unit.
func (v Viewport) Scale() float64 { return v.scale }

// ToPlane converts canvas-relative pixel coordinates to a plane point.
func (v Viewport) ToPlane(x, y float64) Point {
	return Point{
		Re: (x - v.width/2) / v.scale,
		Im: (v.height/2 - y) / v.scale,
	}
}

// ToScreen converts a plane point to canvas-relative pixel coordinates.
func (v Viewport) ToScreen(p Point) (x, y float64) {
	return v.width/2 + v.scale*p.Re, v.height/2 - v.scale*p.Im
}

// UnitCircleRadius returns the radius of the unit circle in pixels.
func (v Viewport) UnitCircleRadius() float64 {
	return v.scale
}

// Contains reports whether p lies inside the visible plot range.
func (v Viewport) Contains(p Point) bool {
	half := v.plotRange / 2
	return math.Abs(p.Re) <= half && math.Abs(p.Im) <= half
}

func positiveFinite(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}
