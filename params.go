// seehuhn.de/go/tonecurve - tone curve adjustments in CIELAB space
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tonecurve

import (
	"errors"
	"fmt"
	"slices"
)

// Channel identifies one of the three colour channels of a curve set.
type Channel int

const (
	// Luminance is the CIELAB L channel, native range [0, 100].
	Luminance Channel = iota
	// ChromaA is the CIELAB a channel, native range [-128, 128).
	ChromaA
	// ChromaB is the CIELAB b channel, native range [-128, 128).
	ChromaB

	numChannels = 3
)

func (ch Channel) String() string {
	switch ch {
	case Luminance:
		return "L"
	case ChromaA:
		return "a"
	case ChromaB:
		return "b"
	}
	return fmt.Sprintf("Channel(%d)", int(ch))
}

// CurveFamily selects the interpolation model used between control points.
type CurveFamily int

const (
	// CubicSpline is a natural cubic spline. It can overshoot between
	// control points; sampled values are clamped to [0, 1]. Kept for
	// compatibility with curves created by older parameter versions.
	CubicSpline CurveFamily = iota

	// MonotoneHermite is a monotone cubic Hermite interpolant
	// (Fritsch-Carlson). It never overshoots and always produces a
	// monotone curve for monotone control points. This is the family to
	// use for interactively edited curves.
	MonotoneHermite
)

func (f CurveFamily) String() string {
	switch f {
	case CubicSpline:
		return "cubic spline"
	case MonotoneHermite:
		return "monotone hermite"
	}
	return fmt.Sprintf("CurveFamily(%d)", int(f))
}

// ControlPoint is a single curve anchor with both coordinates in the
// normalised [0, 1] range.
type ControlPoint struct {
	X, Y float64
}

// Limits on the number of control points per channel.
const (
	MinPoints = 2
	MaxPoints = 20
)

// CurveParameters is the full, serialisable parameter set of the module:
// one control point sequence and curve family per channel, plus the
// chroma autoscale flag.
//
// A CurveParameters value handed to [Builder.Commit] must not be modified
// while the commit is running. Editors should treat committed parameters
// as immutable and build a new value (see [CurveParameters.Clone]) for the
// next edit.
type CurveParameters struct {
	// Points holds the control point sequence for each channel, ordered
	// by strictly increasing X.
	Points [numChannels][]ControlPoint

	// Family selects the interpolation model for each channel.
	Family [numChannels]CurveFamily

	// AutoscaleChroma derives the chroma output from the luminance
	// compression ratio instead of the a and b curves. When set, the a
	// and b control points are ignored by the pixel kernel.
	AutoscaleChroma bool
}

var (
	errTooFewPoints  = errors.New("tonecurve: too few control points")
	errTooManyPoints = errors.New("tonecurve: too many control points")
	errPointOrder    = errors.New("tonecurve: control point x values not strictly increasing")
	errPointRange    = errors.New("tonecurve: control point outside [0,1]")
)

// DefaultParameters returns the neutral parameter set: an identity
// luminance curve with two nodes, three-node identity chroma curves, the
// monotone family everywhere, and autoscale enabled.
func DefaultParameters() *CurveParameters {
	return &CurveParameters{
		Points: [numChannels][]ControlPoint{
			{{0, 0}, {1, 1}},
			{{0, 0}, {0.5, 0.5}, {1, 1}},
			{{0, 0}, {0.5, 0.5}, {1, 1}},
		},
		Family: [numChannels]CurveFamily{
			MonotoneHermite, MonotoneHermite, MonotoneHermite,
		},
		AutoscaleChroma: true,
	}
}

// Validate checks the control point invariants for all three channels:
// between MinPoints and MaxPoints nodes, coordinates in [0, 1], and
// strictly increasing x values.
func (p *CurveParameters) Validate() error {
	for ch := Channel(0); ch < numChannels; ch++ {
		if err := validatePoints(p.Points[ch]); err != nil {
			return fmt.Errorf("channel %s: %w", ch, err)
		}
	}
	return nil
}

func validatePoints(points []ControlPoint) error {
	if len(points) < MinPoints {
		return errTooFewPoints
	}
	if len(points) > MaxPoints {
		return errTooManyPoints
	}
	for i, pt := range points {
		if pt.X < 0 || pt.X > 1 || pt.Y < 0 || pt.Y > 1 {
			return errPointRange
		}
		if i > 0 && points[i-1].X >= pt.X {
			return errPointOrder
		}
	}
	return nil
}

// Clone returns a deep copy of the parameters.
func (p *CurveParameters) Clone() *CurveParameters {
	q := &CurveParameters{
		Family:          p.Family,
		AutoscaleChroma: p.AutoscaleChroma,
	}
	for ch := range p.Points {
		q.Points[ch] = slices.Clone(p.Points[ch])
	}
	return q
}

// InsertPoint adds a control point to the given channel at its position in
// x order. It returns the index of the new point, or -1 if the channel is
// already at MaxPoints or the new point would duplicate an existing x
// value.
func (p *CurveParameters) InsertPoint(ch Channel, x, y float64) int {
	points := p.Points[ch]
	if len(points) >= MaxPoints {
		return -1
	}
	idx := len(points)
	for i, pt := range points {
		if pt.X == x {
			return -1
		}
		if pt.X > x {
			idx = i
			break
		}
	}
	p.Points[ch] = slices.Insert(points, idx, ControlPoint{X: x, Y: y})
	return idx
}

// DeletePoint removes the control point at index i from the given channel.
// It returns false if removing the point would leave fewer than MinPoints
// nodes.
func (p *CurveParameters) DeletePoint(ch Channel, i int) bool {
	points := p.Points[ch]
	if len(points) <= MinPoints || i < 0 || i >= len(points) {
		return false
	}
	p.Points[ch] = slices.Delete(points, i, i+1)
	return true
}

// MovePoint moves the control point at index i to a new position.
// Coordinates are clamped to [0, 1]. If the move would cross a
// neighbouring point, the point is deleted instead of reordering the
// sequence, and MovePoint returns -1; otherwise it returns i.
//
// This implements the ordering policy required by the curve compiler:
// control point sequences are never reordered, an offending point is
// dropped.
func (p *CurveParameters) MovePoint(ch Channel, i int, x, y float64) int {
	points := p.Points[ch]
	if i < 0 || i >= len(points) {
		return -1
	}
	x = clamp(x, 0, 1)
	y = clamp(y, 0, 1)

	if len(points) > MinPoints {
		crossed := (i > 0 && points[i-1].X >= x) ||
			(i < len(points)-1 && points[i+1].X <= x)
		if crossed {
			p.Points[ch] = slices.Delete(points, i, i+1)
			return -1
		}
	} else {
		// with only two nodes the point cannot be dropped; pin x instead
		if i > 0 && points[i-1].X >= x {
			x = points[i-1].X + 1e-6
		}
		if i < len(points)-1 && points[i+1].X <= x {
			x = points[i+1].X - 1e-6
		}
	}

	points[i] = ControlPoint{X: x, Y: y}
	return i
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
