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

// Package tonecurve applies user-defined tone curves to images in the
// CIELAB colour space.
//
// A curve is described by a small set of control points per channel
// (lightness, and the two chroma channels a and b). The package compiles
// the control points into dense lookup tables and applies them to
// 4-channel float32 pixel buffers (L, a, b plus one pass-through channel).
//
// # Committing parameters
//
// Build a [CurveParameters] value, then use a [Builder] to compile it:
//
//	p := tonecurve.DefaultParameters()
//	b := tonecurve.NewBuilder()
//	t, err := b.Commit(p)
//	if err != nil {
//	    // handle error
//	}
//
// The resulting [Transform] is immutable; a later Commit produces a new
// Transform and never mutates one that an Apply call may still be reading.
//
// # Applying a transform
//
// The host path partitions the image by scanline across worker goroutines:
//
//	err = t.Apply(in, out, in.Bounds())
//
// An accelerator can be attached through the [Device] interface; use
// [NewApplier] to get an applier that dispatches to the device and falls
// back to the host path when the device fails.
//
// Lightness beyond the last control point is continued with a fitted
// power-law model instead of clamping, so highlights that exceed the
// calibrated range stay smooth and monotone.
package tonecurve
