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

// Applier applies a compiled transform to pixel buffers. The two
// implementations are [HostApplier] and [DeviceApplier]; use [NewApplier]
// to compose them with automatic fallback.
type Applier interface {
	// Apply maps every pixel of in within roi and writes the result to
	// the same region of out. It is a pure function of t and in: no
	// hidden state, safe to call repeatedly and concurrently with
	// different ROIs against the same transform.
	Apply(t *Transform, in, out *PixelBuffer, roi ROI) error
}

// HostApplier runs the pixel kernel on the CPU, partitioning the ROI by
// scanline across worker goroutines. Rows are independent, so no
// synchronisation is needed mid-pass; Apply returns once all rows are
// done.
type HostApplier struct {
	// Workers is the number of row workers. 0 means GOMAXPROCS.
	Workers int
}

// Apply implements [Applier].
func (h *HostApplier) Apply(t *Transform, in, out *PixelBuffer, roi ROI) error {
	if err := checkApplyArgs(in, out, roi); err != nil {
		return err
	}

	parallelFor(roi.Height, h.Workers, func(y int) {
		applyRow(t, in.row(roi, y), out.row(roi, y))
	})
	return nil
}

// Apply runs the host pixel kernel. It is shorthand for applying with a
// zero-value [HostApplier].
func (t *Transform) Apply(in, out *PixelBuffer, roi ROI) error {
	h := HostApplier{}
	return h.Apply(t, in, out, roi)
}

// applyRow maps one scanline. src and dst hold PixelChannels interleaved
// values per pixel and must have the same length.
func applyRow(t *Transform, src, dst []float32) {
	tableL := t.tables[Luminance]
	tableA := t.tables[ChromaA]
	tableB := t.tables[ChromaB]
	low := t.low

	for j := 0; j+PixelChannels <= len(src); j += PixelChannels {
		in := src[j : j+PixelChannels : j+PixelChannels]
		out := dst[j : j+PixelChannels : j+PixelChannels]

		lIn := float64(in[0]) / 100

		if lIn < t.boundary {
			out[0] = tableL[lutIndex(lIn)]
		} else {
			out[0] = float32(t.coeffs.Eval(lIn))
		}

		switch {
		case !t.autoscale:
			aIn := float64(in[1]+128) / 256
			bIn := float64(in[2]+128) / 256
			out[1] = tableA[lutIndex(aIn)]
			out[2] = tableB[lutIndex(bIn)]
		case lIn > lowEpsilon:
			// scale chroma with the luminance compression ratio
			r := out[0] / in[0]
			out[1] = in[1] * r
			out[2] = in[2] * r
		default:
			// near-black: no stable ratio, multiply all channels by
			// the low-end table value instead
			out[0] = in[0] * low
			out[1] = in[1] * low
			out[2] = in[2] * low
		}

		out[3] = in[3]
	}
}
