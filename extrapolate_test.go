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
	"math"
	"testing"
)

func tailSamples(xm float64, f func(float64) float64) (xs, ys []float64) {
	for _, frac := range []float64{0.7, 0.8, 0.9, 1.0} {
		x := frac * xm
		xs = append(xs, x)
		ys = append(ys, f(x))
	}
	return xs, ys
}

func TestFitTailRecoversPowerLaw(t *testing.T) {
	// samples from an exact power law must recover the exponent
	f := func(x float64) float64 { return 2 * math.Pow(x, 1.5) }
	xs, ys := tailSamples(0.9, f)

	c := fitTail(xs, ys)
	if math.Abs(c.Gamma-1.5) > 1e-9 {
		t.Errorf("Gamma = %g, want 1.5", c.Gamma)
	}
	if math.Abs(c.Y0-f(0.9)) > 1e-12 {
		t.Errorf("Y0 = %g, want %g", c.Y0, f(0.9))
	}

	for _, x := range []float64{1.0, 1.3, 1.8, 3.0} {
		got := c.Eval(x)
		want := f(x)
		if math.Abs(got-want) > 1e-9*want {
			t.Errorf("Eval(%g) = %g, want %g", x, got, want)
		}
	}
}

func TestFitTailPassesThroughBoundary(t *testing.T) {
	xs := []float64{0.7, 0.8, 0.9, 1.0}
	ys := []float64{60, 71, 85, 100}

	c := fitTail(xs, ys)
	if got := c.Eval(1.0); math.Abs(got-100) > 1e-9 {
		t.Errorf("Eval at boundary = %g, want 100", got)
	}
}

func TestTailMonotoneBeyondBoundary(t *testing.T) {
	xs := []float64{0.7, 0.8, 0.9, 1.0}
	ys := []float64{55, 68, 83, 100}

	c := fitTail(xs, ys)

	// increasing at +10%, +50% and +100% of the domain width
	prev := c.Eval(1.0)
	for _, x := range []float64{1.1, 1.5, 2.0} {
		got := c.Eval(x)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("Eval(%g) = %g", x, got)
		}
		if got <= prev {
			t.Errorf("Eval(%g) = %g, not above Eval at previous position %g", x, got, prev)
		}
		prev = got
	}
}

func TestFitTailDegenerateSamples(t *testing.T) {
	// all-zero samples cannot support a fit; the exponent defaults to 1
	xs := []float64{0.7, 0.8, 0.9, 1.0}
	ys := []float64{0, 0, 0, 0}

	c := fitTail(xs, ys)
	if c.Gamma != 1 {
		t.Errorf("Gamma = %g, want 1", c.Gamma)
	}
	if got := c.Eval(1.5); got != 0 || math.IsNaN(got) {
		t.Errorf("Eval(1.5) = %g, want 0", got)
	}

	// flat but non-zero samples fit a constant (exponent near 0)
	ys = []float64{100, 100, 100, 100}
	c = fitTail(xs, ys)
	if got := c.Eval(2.0); math.Abs(got-100) > 1e-9 {
		t.Errorf("flat tail: Eval(2.0) = %g, want 100", got)
	}
}
