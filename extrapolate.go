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

// TailCoefficients describe the analytic continuation of the luminance
// curve beyond its last control point. The model is
//
//	y = Y0 * (x/x0)^Gamma
//
// with x0 = 1/InvX0 the x position of the last control point. The model
// passes through the last table sample and is monotone increasing beyond
// the boundary for Gamma > 0.
//
// TailCoefficients are derived from the committed luminance table by
// [Builder.Commit]; they are never edited directly.
type TailCoefficients struct {
	InvX0 float64 // reciprocal of the domain boundary x0
	Y0    float64 // curve value at the boundary
	Gamma float64 // fitted exponent
}

// fitTail fits the tail model to the given samples. The last sample fixes
// (x0, y0); the exponent is the average of log(y/y0)/log(x/x0) over the
// remaining samples, skipping pairs where either ratio is not positive.
// With no usable pair the exponent defaults to 1 (linear continuation).
func fitTail(xs, ys []float64) TailCoefficients {
	n := len(xs)
	x0 := xs[n-1]
	y0 := ys[n-1]

	g := 0.0
	cnt := 0
	for k := 0; k < n-1 && y0 > 0; k++ {
		yy := ys[k] / y0
		xx := xs[k] / x0
		if yy > 0 && xx > 0 && xx != 1 {
			g += math.Log(yy) / math.Log(xx)
			cnt++
		}
	}
	if cnt > 0 {
		g /= float64(cnt)
	} else {
		g = 1
	}

	return TailCoefficients{InvX0: 1 / x0, Y0: y0, Gamma: g}
}

// Eval computes the extrapolated curve value at x. It is closed-form and
// cheap enough to run once per above-threshold pixel.
func (c TailCoefficients) Eval(x float64) float64 {
	return c.Y0 * math.Pow(x*c.InvX0, c.Gamma)
}
