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

// TableSize is the number of samples in each channel's lookup table.
const TableSize = 0x10000

// lowEpsilon is the normalised luminance below which the autoscale path
// switches to the low-end approximation instead of dividing by the input
// luminance.
const lowEpsilon = 0.01

// lutIndex maps a normalised position to a table index, truncating and
// clamping into table bounds.
func lutIndex(x float64) int {
	i := int(x * (TableSize - 1))
	if i < 0 {
		return 0
	}
	if i > TableSize-1 {
		return TableSize - 1
	}
	return i
}

// Transform is a compiled tone curve transform: one lookup table per
// channel in native output ranges, the luminance tail coefficients, and
// the chroma coupling policy.
//
// A Transform is immutable once returned by [Builder.Commit] and safe for
// concurrent use by any number of Apply calls.
type Transform struct {
	tables    [numChannels][]float32
	coeffs    TailCoefficients
	boundary  float64 // x of the last luminance control point
	autoscale bool
	low       float32 // luminance table value at the lowEpsilon index
}

// Builder compiles [CurveParameters] into [Transform] values. It caches
// the per-channel curve objects between commits: a curve is rebuilt only
// when its family or node count changed, otherwise the node positions are
// updated in place and the curve is resampled.
//
// A Builder is not safe for concurrent use; the Transforms it produces
// are.
type Builder struct {
	curves [numChannels]*Curve
}

// NewBuilder returns a Builder with no cached state; the first Commit
// builds all three curves from scratch.
func NewBuilder() *Builder {
	return &Builder{}
}

// Commit compiles the given parameters into a new Transform.
//
// The lookup tables are always freshly allocated, so Transforms returned
// by earlier commits remain valid snapshots for in-flight Apply calls.
// Commit returns an error if the parameters violate the control point
// invariants.
func (b *Builder) Commit(p *CurveParameters) (*Transform, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	t := &Transform{autoscale: p.AutoscaleChroma}

	for ch := Channel(0); ch < numChannels; ch++ {
		points := p.Points[ch]

		cached := b.curves[ch]
		if cached == nil || cached.Family() != p.Family[ch] || cached.Len() != len(points) {
			c, err := NewCurve(points, p.Family[ch])
			if err != nil {
				return nil, err
			}
			b.curves[ch] = c
		} else {
			for k, pt := range points {
				cached.SetPoint(k, pt.X, pt.Y)
			}
		}

		t.tables[ch] = make([]float32, TableSize)
		b.curves[ch].Sample(t.tables[ch])
	}

	// denormalise to the native CIELAB ranges
	for k, v := range t.tables[Luminance] {
		t.tables[Luminance][k] = v * 100
	}
	for k, v := range t.tables[ChromaA] {
		t.tables[ChromaA][k] = v*256 - 128
	}
	for k, v := range t.tables[ChromaB] {
		t.tables[ChromaB][k] = v*256 - 128
	}

	// fit the highlight tail to the last four interior samples of the
	// luminance table
	lpts := p.Points[Luminance]
	xm := lpts[len(lpts)-1].X
	xs := []float64{0.7 * xm, 0.8 * xm, 0.9 * xm, xm}
	ys := make([]float64, len(xs))
	for k, x := range xs {
		ys[k] = float64(t.tables[Luminance][lutIndex(x)])
	}
	t.coeffs = fitTail(xs, ys)
	t.boundary = xm

	t.low = t.tables[Luminance][lutIndex(lowEpsilon)]

	return t, nil
}

// Table returns the lookup table for the given channel, in the native
// output range of that channel. This is the same table the pixel kernel
// reads; the returned slice is shared with the Transform and must not be
// modified.
func (t *Transform) Table(ch Channel) []float32 {
	return t.tables[ch]
}

// Coefficients returns the luminance tail coefficients.
func (t *Transform) Coefficients() TailCoefficients {
	return t.coeffs
}

// Boundary returns the normalised luminance position of the last control
// point. Inputs at or above the boundary are extrapolated instead of
// looked up.
func (t *Transform) Boundary() float64 {
	return t.boundary
}

// AutoscaleChroma reports whether the transform derives chroma output
// from the luminance compression ratio.
func (t *Transform) AutoscaleChroma() bool {
	return t.autoscale
}

// EvalLuminance maps a normalised luminance input to the native output
// value, using the same table lookup and tail extrapolation as the pixel
// kernel. It is intended for curve display.
func (t *Transform) EvalLuminance(x float64) float64 {
	if x < t.boundary {
		return float64(t.tables[Luminance][lutIndex(x)])
	}
	return t.coeffs.Eval(x)
}
