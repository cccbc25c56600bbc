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
	"math"
	"testing"
)

func testImage(w, h int) *PixelBuffer {
	b := NewPixelBuffer(w, h)
	for i := 0; i < w*h; i++ {
		p := b.Pix[i*PixelChannels:]
		p[0] = float32(math.Abs(math.Sin(float64(i)*0.7))) * 130 // includes out-of-domain values
		p[1] = float32(math.Sin(float64(i)*1.3)) * 100
		p[2] = float32(math.Cos(float64(i)*0.9)) * 100
		p[3] = float32(i % 3)
	}
	return b
}

func TestSoftwareDeviceMatchesHost(t *testing.T) {
	for _, autoscale := range []bool{true, false} {
		p := bowParameters()
		p.AutoscaleChroma = autoscale
		p.Points[ChromaA] = []ControlPoint{{0, 0.05}, {0.5, 0.5}, {1, 0.95}}

		tr, err := NewBuilder().Commit(p)
		if err != nil {
			t.Fatal(err)
		}

		in := testImage(13, 9)
		hostOut := NewPixelBuffer(13, 9)
		devOut := NewPixelBuffer(13, 9)

		host := &HostApplier{}
		if err := host.Apply(tr, in, hostOut, in.Bounds()); err != nil {
			t.Fatal(err)
		}
		dev := &DeviceApplier{Device: &SoftwareDevice{}}
		if err := dev.Apply(tr, in, devOut, in.Bounds()); err != nil {
			t.Fatal(err)
		}

		for i := range hostOut.Pix {
			a := float64(hostOut.Pix[i])
			b := float64(devOut.Pix[i])
			tol := 1e-4 * math.Max(1, math.Abs(a))
			if math.Abs(a-b) > tol {
				t.Errorf("autoscale=%v: value %d: host %g, device %g",
					autoscale, i, a, b)
				break
			}
		}
	}
}

func TestSoftwareDeviceROI(t *testing.T) {
	tr, err := NewBuilder().Commit(bowParameters())
	if err != nil {
		t.Fatal(err)
	}

	in := testImage(8, 8)
	hostOut := NewPixelBuffer(8, 8)
	devOut := NewPixelBuffer(8, 8)
	roi := ROI{X: 2, Y: 3, Width: 4, Height: 2}

	host := &HostApplier{}
	if err := host.Apply(tr, in, hostOut, roi); err != nil {
		t.Fatal(err)
	}
	dev := &DeviceApplier{Device: &SoftwareDevice{}}
	if err := dev.Apply(tr, in, devOut, roi); err != nil {
		t.Fatal(err)
	}

	for i := range hostOut.Pix {
		if math.Abs(float64(hostOut.Pix[i]-devOut.Pix[i])) > 1e-4 {
			t.Fatalf("value %d: host %g, device %g", i, hostOut.Pix[i], devOut.Pix[i])
		}
	}
}

// failingDevice fails at a configurable stage.
type failingDevice struct {
	failAlloc bool
	failRun   bool
	released  int
}

type failBuffer struct {
	dev *failingDevice
}

func (b *failBuffer) Release() { b.dev.released++ }

func (d *failingDevice) Available() bool { return true }

func (d *failingDevice) NewBuffer(data []float32) (Buffer, error) {
	if d.failAlloc {
		return nil, errors.New("out of device memory")
	}
	return &failBuffer{dev: d}, nil
}

func (d *failingDevice) Run(args *KernelArgs) error {
	if d.failRun {
		return errors.New("enqueue failed")
	}
	return errors.New("kernel not implemented")
}

func TestDeviceFailureFallsBackToHost(t *testing.T) {
	tr, err := NewBuilder().Commit(bowParameters())
	if err != nil {
		t.Fatal(err)
	}
	in := testImage(6, 5)

	want := NewPixelBuffer(6, 5)
	host := &HostApplier{}
	if err := host.Apply(tr, in, want, in.Bounds()); err != nil {
		t.Fatal(err)
	}

	for _, dev := range []*failingDevice{
		{failAlloc: true},
		{failRun: true},
	} {
		var reported error
		applier := NewApplier(dev, func(err error) { reported = err })

		out := NewPixelBuffer(6, 5)
		if err := applier.Apply(tr, in, out, in.Bounds()); err != nil {
			t.Fatalf("fallback apply failed: %v", err)
		}
		if reported == nil {
			t.Error("device error not reported")
		}
		for i := range want.Pix {
			if out.Pix[i] != want.Pix[i] {
				t.Fatalf("value %d: fallback %g, host %g", i, out.Pix[i], want.Pix[i])
			}
		}
	}
}

func TestDeviceBuffersReleasedOnRunFailure(t *testing.T) {
	tr, err := NewBuilder().Commit(bowParameters())
	if err != nil {
		t.Fatal(err)
	}
	in := testImage(2, 2)
	out := NewPixelBuffer(2, 2)

	dev := &failingDevice{failRun: true}
	applier := &DeviceApplier{Device: dev}
	if err := applier.Apply(tr, in, out, in.Bounds()); err == nil {
		t.Fatal("Apply succeeded with failing device")
	}
	if dev.released != 4 {
		t.Errorf("released %d buffers, want 4", dev.released)
	}
}

type unavailableDevice struct{ failingDevice }

func (d *unavailableDevice) Available() bool { return false }

func TestUnavailableDevice(t *testing.T) {
	tr, err := NewBuilder().Commit(DefaultParameters())
	if err != nil {
		t.Fatal(err)
	}
	in := NewPixelBuffer(1, 1)
	out := NewPixelBuffer(1, 1)

	applier := &DeviceApplier{Device: &unavailableDevice{}}
	err = applier.Apply(tr, in, out, in.Bounds())
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("err = %v, want ErrDeviceUnavailable", err)
	}

	// NewApplier still works through the fallback
	fb := NewApplier(&unavailableDevice{}, nil)
	if err := fb.Apply(tr, in, out, in.Bounds()); err != nil {
		t.Errorf("fallback apply failed: %v", err)
	}
}
