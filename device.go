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
)

// Device is a data-parallel accelerator that can run the tone curve
// kernel. Implementations wrap an OpenCL device, a compute shader, or
// similar; [SoftwareDevice] is the in-tree reference implementation.
//
// All methods may be called from multiple goroutines.
type Device interface {
	// Available reports whether the device is ready to run kernels.
	Available() bool

	// NewBuffer copies host data into read-only device memory.
	NewBuffer(data []float32) (Buffer, error)

	// Run enqueues the tone curve kernel for the given arguments and
	// waits for completion. Enqueue failures are recoverable: the
	// caller retries on the host path.
	Run(args *KernelArgs) error
}

// Buffer is read-only device memory created by [Device.NewBuffer].
type Buffer interface {
	// Release frees the device memory. The buffer must not be used
	// afterwards.
	Release()
}

// KernelArgs are the inputs of one device kernel run. In and Out address
// the ROI origin of the host buffers; Stride is the distance between
// scanline starts in float32 values.
type KernelArgs struct {
	In, Out             []float32
	Width, Height       int
	InStride, OutStride int

	// per-channel lookup tables and luminance tail coefficients,
	// uploaded as read-only buffers
	TableL, TableA, TableB Buffer
	Coeffs                 Buffer

	// Boundary is the normalised luminance domain boundary; inputs at
	// or above it use the tail coefficients.
	Boundary float64

	AutoscaleChroma bool
}

// ErrDeviceUnavailable is returned by [DeviceApplier.Apply] when the
// device reports itself unavailable.
var ErrDeviceUnavailable = errors.New("tonecurve: device unavailable")

// DeviceApplier dispatches the pixel kernel onto a [Device]. Any device
// failure (buffer allocation or kernel enqueue) is returned as an error;
// it is never fatal to the overall transform, callers fall back to
// [HostApplier] for that invocation (see [NewApplier]).
type DeviceApplier struct {
	Device Device
}

// Apply implements [Applier].
func (d *DeviceApplier) Apply(t *Transform, in, out *PixelBuffer, roi ROI) error {
	if err := checkApplyArgs(in, out, roi); err != nil {
		return err
	}
	if d.Device == nil || !d.Device.Available() {
		return ErrDeviceUnavailable
	}

	var bufs []Buffer
	defer func() {
		for _, b := range bufs {
			b.Release()
		}
	}()
	alloc := func(data []float32) (Buffer, error) {
		b, err := d.Device.NewBuffer(data)
		if err != nil {
			return nil, fmt.Errorf("tonecurve: device buffer: %w", err)
		}
		bufs = append(bufs, b)
		return b, nil
	}

	args := &KernelArgs{
		Width:           roi.Width,
		Height:          roi.Height,
		InStride:        in.Width * PixelChannels,
		OutStride:       out.Width * PixelChannels,
		Boundary:        t.boundary,
		AutoscaleChroma: t.autoscale,
	}
	args.In = in.Pix[((roi.Y)*in.Width+roi.X)*PixelChannels:]
	args.Out = out.Pix[((roi.Y)*out.Width+roi.X)*PixelChannels:]

	var err error
	if args.TableL, err = alloc(t.tables[Luminance]); err != nil {
		return err
	}
	if args.TableA, err = alloc(t.tables[ChromaA]); err != nil {
		return err
	}
	if args.TableB, err = alloc(t.tables[ChromaB]); err != nil {
		return err
	}
	coeffs := []float32{
		float32(t.coeffs.InvX0),
		float32(t.coeffs.Y0),
		float32(t.coeffs.Gamma),
	}
	if args.Coeffs, err = alloc(coeffs); err != nil {
		return err
	}

	if err := d.Device.Run(args); err != nil {
		return fmt.Errorf("tonecurve: device kernel: %w", err)
	}
	return nil
}

// Fallback applies with Primary and retries with Backup when Primary
// fails. This is the composition used to pair a device path with the
// host path.
type Fallback struct {
	Primary, Backup Applier

	// OnError, if non-nil, is called with the Primary error before the
	// Backup runs.
	OnError func(error)
}

// Apply implements [Applier].
func (f *Fallback) Apply(t *Transform, in, out *PixelBuffer, roi ROI) error {
	err := f.Primary.Apply(t, in, out, roi)
	if err == nil {
		return nil
	}
	if f.OnError != nil {
		f.OnError(err)
	}
	return f.Backup.Apply(t, in, out, roi)
}

// NewApplier returns an applier for the given device with automatic
// host fallback. With a nil device the host applier is returned
// directly. onError may be nil; otherwise it receives the device error
// whenever a fallback happens.
func NewApplier(dev Device, onError func(error)) Applier {
	host := &HostApplier{}
	if dev == nil {
		return host
	}
	return &Fallback{
		Primary: &DeviceApplier{Device: dev},
		Backup:  host,
		OnError: onError,
	}
}

// SoftwareDevice is a reference [Device] that executes the kernel on the
// CPU from the uploaded buffers, mirroring what an accelerator kernel
// computes. It is used to validate accelerator implementations against
// the host path.
type SoftwareDevice struct{}

type softBuffer struct {
	data []float32
}

func (b *softBuffer) Release() { b.data = nil }

// Available implements [Device].
func (d *SoftwareDevice) Available() bool { return true }

// NewBuffer implements [Device].
func (d *SoftwareDevice) NewBuffer(data []float32) (Buffer, error) {
	cp := make([]float32, len(data))
	copy(cp, data)
	return &softBuffer{data: cp}, nil
}

var errForeignBuffer = errors.New("tonecurve: buffer not created by this device")

// Run implements [Device]. The per-pixel algorithm is the same as the
// host kernel's, computed from the uploaded table and coefficient
// buffers.
func (d *SoftwareDevice) Run(args *KernelArgs) error {
	tableL, err := softData(args.TableL)
	if err != nil {
		return err
	}
	tableA, err := softData(args.TableA)
	if err != nil {
		return err
	}
	tableB, err := softData(args.TableB)
	if err != nil {
		return err
	}
	coeffs, err := softData(args.Coeffs)
	if err != nil {
		return err
	}
	if len(coeffs) != 3 {
		return errors.New("tonecurve: bad coefficient buffer")
	}
	tail := TailCoefficients{
		InvX0: float64(coeffs[0]),
		Y0:    float64(coeffs[1]),
		Gamma: float64(coeffs[2]),
	}
	low := tableL[lutIndex(lowEpsilon)]

	for y := 0; y < args.Height; y++ {
		src := args.In[y*args.InStride:]
		dst := args.Out[y*args.OutStride:]
		for x := 0; x < args.Width; x++ {
			in := src[x*PixelChannels : x*PixelChannels+PixelChannels]
			out := dst[x*PixelChannels : x*PixelChannels+PixelChannels]

			lIn := float64(in[0]) / 100
			if lIn < args.Boundary {
				out[0] = tableL[lutIndex(lIn)]
			} else {
				out[0] = float32(tail.Eval(lIn))
			}

			switch {
			case !args.AutoscaleChroma:
				out[1] = tableA[lutIndex(float64(in[1]+128)/256)]
				out[2] = tableB[lutIndex(float64(in[2]+128)/256)]
			case lIn > lowEpsilon:
				r := out[0] / in[0]
				out[1] = in[1] * r
				out[2] = in[2] * r
			default:
				out[0] = in[0] * low
				out[1] = in[1] * low
				out[2] = in[2] * low
			}

			out[3] = in[3]
		}
	}
	return nil
}

func softData(b Buffer) ([]float32, error) {
	sb, ok := b.(*softBuffer)
	if !ok || sb.data == nil {
		return nil, errForeignBuffer
	}
	return sb.data, nil
}
