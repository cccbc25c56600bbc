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

import "errors"

// PixelChannels is the number of interleaved channels per pixel: L, a, b
// and one pass-through channel (typically alpha or a mask value).
const PixelChannels = 4

// PixelBuffer is a row-major image buffer with PixelChannels interleaved
// float32 values per pixel. Channel values use the native CIELAB ranges:
// L in [0, 100], a and b in [-128, 128). The pass-through channel is
// copied unchanged by the kernel.
type PixelBuffer struct {
	Width, Height int
	Pix           []float32
}

// NewPixelBuffer allocates a zeroed pixel buffer of the given size.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]float32, width*height*PixelChannels),
	}
}

// Bounds returns the ROI covering the whole buffer.
func (b *PixelBuffer) Bounds() ROI {
	return ROI{Width: b.Width, Height: b.Height}
}

// row returns the pixel data of scanline y restricted to the ROI columns.
func (b *PixelBuffer) row(roi ROI, y int) []float32 {
	off := ((roi.Y+y)*b.Width + roi.X) * PixelChannels
	return b.Pix[off : off+roi.Width*PixelChannels]
}

// ROI is the rectangular pixel region processed by a single Apply call.
type ROI struct {
	X, Y          int
	Width, Height int
}

var (
	errBufferSize = errors.New("tonecurve: pixel buffer too small for its dimensions")
	errROIBounds  = errors.New("tonecurve: roi outside pixel buffer")
)

// checkApplyArgs validates that the ROI lies inside both buffers and that
// the backing slices are large enough.
func checkApplyArgs(in, out *PixelBuffer, roi ROI) error {
	for _, b := range []*PixelBuffer{in, out} {
		if len(b.Pix) < b.Width*b.Height*PixelChannels {
			return errBufferSize
		}
		if roi.X < 0 || roi.Y < 0 || roi.Width < 0 || roi.Height < 0 ||
			roi.X+roi.Width > b.Width || roi.Y+roi.Height > b.Height {
			return errROIBounds
		}
	}
	return nil
}
