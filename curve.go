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

import "math"

// Curve is a compiled 1D transfer function over [0, 1], built from an
// ordered control point sequence and a curve family.
//
// A Curve is not safe for concurrent use. If the same Curve needs to be
// used from multiple goroutines, callers must provide their own
// synchronisation.
type Curve struct {
	family CurveFamily
	xs, ys []float64

	// per-node coefficients: tangents for MonotoneHermite, second
	// derivatives for CubicSpline
	coef  []float64
	stale bool
}

// NewCurve compiles an ordered control point sequence into a Curve.
// The sequence must have MinPoints to MaxPoints nodes, coordinates in
// [0, 1] and strictly increasing x values. Violations are reported as
// errors; the compiler never repairs a malformed sequence.
func NewCurve(points []ControlPoint, family CurveFamily) (*Curve, error) {
	if err := validatePoints(points); err != nil {
		return nil, err
	}
	c := &Curve{
		family: family,
		xs:     make([]float64, len(points)),
		ys:     make([]float64, len(points)),
		coef:   make([]float64, len(points)),
		stale:  true,
	}
	for i, pt := range points {
		c.xs[i] = pt.X
		c.ys[i] = pt.Y
	}
	return c, nil
}

// Len returns the number of control points.
func (c *Curve) Len() int {
	return len(c.xs)
}

// Family returns the curve's interpolation family.
func (c *Curve) Family() CurveFamily {
	return c.family
}

// SetPoint updates the position of control point i without reallocating
// the curve. The caller must keep the x values strictly increasing; this
// is the cheap update path used when only node positions changed.
func (c *Curve) SetPoint(i int, x, y float64) {
	c.xs[i] = x
	c.ys[i] = y
	c.stale = true
}

// Evaluate computes the curve value at x. Outside the control point range
// the boundary node's value is extended; the result is clamped to [0, 1].
func (c *Curve) Evaluate(x float64) float64 {
	if c.stale {
		c.update()
	}

	n := len(c.xs)
	if x <= c.xs[0] {
		return clamp(c.ys[0], 0, 1)
	}
	if x >= c.xs[n-1] {
		return clamp(c.ys[n-1], 0, 1)
	}

	// find the segment containing x
	i := 0
	for i < n-2 && x >= c.xs[i+1] {
		i++
	}

	var y float64
	if c.family == MonotoneHermite {
		y = c.evalHermite(i, x)
	} else {
		y = c.evalSpline(i, x)
	}
	return clamp(y, 0, 1)
}

// Sample evaluates the curve at len(dst) evenly spaced positions over
// [0, 1] and stores the results in dst. Position i maps to
// x = i/(len(dst)-1), so the final sample lands exactly on x = 1.
func (c *Curve) Sample(dst []float32) {
	if c.stale {
		c.update()
	}

	n := len(c.xs)
	res := len(dst)
	if res < 2 {
		return
	}
	scale := 1.0 / float64(res-1)

	seg := 0
	for k := range dst {
		x := float64(k) * scale

		var y float64
		switch {
		case x <= c.xs[0]:
			y = c.ys[0]
		case x >= c.xs[n-1]:
			y = c.ys[n-1]
		default:
			for seg < n-2 && x >= c.xs[seg+1] {
				seg++
			}
			if c.family == MonotoneHermite {
				y = c.evalHermite(seg, x)
			} else {
				y = c.evalSpline(seg, x)
			}
		}
		dst[k] = float32(clamp(y, 0, 1))
	}
}

func (c *Curve) update() {
	if c.family == MonotoneHermite {
		c.computeTangents()
	} else {
		c.computeSecondDerivs()
	}
	c.stale = false
}

// computeTangents fills c.coef with node tangents for the monotone
// Hermite family, using the Fritsch-Carlson limiter so the interpolant
// stays monotone on every segment.
func (c *Curve) computeTangents() {
	n := len(c.xs)
	m := c.coef

	// secant slopes
	d := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		d[i] = (c.ys[i+1] - c.ys[i]) / (c.xs[i+1] - c.xs[i])
	}

	m[0] = d[0]
	m[n-1] = d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			m[i] = 0
		} else {
			m[i] = (d[i-1] + d[i]) / 2
		}
	}

	for i := 0; i < n-1; i++ {
		if d[i] == 0 {
			m[i] = 0
			m[i+1] = 0
			continue
		}
		a := m[i] / d[i]
		b := m[i+1] / d[i]
		s := a*a + b*b
		if s > 9 {
			t := 3 / math.Sqrt(s)
			m[i] = t * a * d[i]
			m[i+1] = t * b * d[i]
		}
	}
}

// computeSecondDerivs fills c.coef with second derivatives for the
// natural cubic spline family (zero second derivative at both ends),
// solving the tridiagonal system by forward elimination and back
// substitution.
func (c *Curve) computeSecondDerivs() {
	n := len(c.xs)
	y2 := c.coef
	u := make([]float64, n)

	y2[0] = 0
	u[0] = 0
	for i := 1; i < n-1; i++ {
		sig := (c.xs[i] - c.xs[i-1]) / (c.xs[i+1] - c.xs[i-1])
		p := sig*y2[i-1] + 2
		y2[i] = (sig - 1) / p
		u[i] = (c.ys[i+1]-c.ys[i])/(c.xs[i+1]-c.xs[i]) -
			(c.ys[i]-c.ys[i-1])/(c.xs[i]-c.xs[i-1])
		u[i] = (6*u[i]/(c.xs[i+1]-c.xs[i-1]) - sig*u[i-1]) / p
	}
	y2[n-1] = 0
	for i := n - 2; i >= 0; i-- {
		y2[i] = y2[i]*y2[i+1] + u[i]
	}
}

func (c *Curve) evalHermite(i int, x float64) float64 {
	h := c.xs[i+1] - c.xs[i]
	t := (x - c.xs[i]) / h
	t2 := t * t
	t3 := t2 * t

	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	return h00*c.ys[i] + h10*h*c.coef[i] + h01*c.ys[i+1] + h11*h*c.coef[i+1]
}

func (c *Curve) evalSpline(i int, x float64) float64 {
	h := c.xs[i+1] - c.xs[i]
	a := (c.xs[i+1] - x) / h
	b := 1 - a

	return a*c.ys[i] + b*c.ys[i+1] +
		((a*a*a-a)*c.coef[i]+(b*b*b-b)*c.coef[i+1])*h*h/6
}
