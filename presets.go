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
	"slices"

	"golang.org/x/exp/maps"
)

// Built-in parameter sets. Persistence of user presets is out of scope;
// these are starting points for common contrast adjustments.
var presets = map[string]*CurveParameters{
	"linear":        presetContrast(0, 0, false),
	"low contrast":  presetLowContrast(),
	"med contrast":  presetContrast(0.03, 0.03, true),
	"high contrast": presetContrast(0.06, 0.10, true),
}

// Preset returns a copy of the named built-in parameter set, or nil if
// the name is unknown.
func Preset(name string) *CurveParameters {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// PresetNames returns the names of the built-in parameter sets in sorted
// order.
func PresetNames() []string {
	names := maps.Keys(presets)
	slices.Sort(names)
	return names
}

// presetContrast builds an S-curve luminance preset from the standard
// six-node linear spacing: the outer interior nodes move by d1, the
// inner ones by d2, and the interior nodes are pushed towards the
// shadows with a gamma of 2.2.
func presetContrast(d1, d2 float64, gamma bool) *CurveParameters {
	linearL := []float64{0, 0.08, 0.4, 0.6, 0.92, 1}
	linearAB := []float64{0, 0.08, 0.3, 0.5, 0.7, 0.92, 1}

	p := &CurveParameters{
		Family: [numChannels]CurveFamily{
			CubicSpline, CubicSpline, CubicSpline,
		},
		AutoscaleChroma: true,
	}
	for _, v := range linearL {
		p.Points[Luminance] = append(p.Points[Luminance], ControlPoint{v, v})
	}
	for _, v := range linearAB {
		p.Points[ChromaA] = append(p.Points[ChromaA], ControlPoint{v, v})
		p.Points[ChromaB] = append(p.Points[ChromaB], ControlPoint{v, v})
	}

	l := p.Points[Luminance]
	l[1].Y -= d1
	l[4].Y += d1
	l[2].Y -= d2
	l[3].Y += d2
	if gamma {
		for k := 1; k < 5; k++ {
			l[k].X = math.Pow(l[k].X, 2.2)
			l[k].Y = math.Pow(l[k].Y, 2.2)
		}
	}
	return p
}

// presetLowContrast lifts the shadows and flattens the highlights
// (based on Samsung NX -2 contrast).
func presetLowContrast() *CurveParameters {
	p := presetContrast(0, 0, false)
	p.Points[Luminance] = []ControlPoint{
		{0.000000, 0.000000},
		{0.003862, 0.007782},
		{0.076613, 0.156182},
		{0.169355, 0.290352},
		{0.774194, 0.773852},
		{1.000000, 1.000000},
	}
	return p
}
