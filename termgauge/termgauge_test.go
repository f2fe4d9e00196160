// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termgauge

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestLevel(t *testing.T) {
	buf := bytes.Buffer{}
	d := New(&Opts{X: 10, Label: "T ", Newline: true, W: &buf})
	if err := d.Level("21.5°C", 21.5, -40, 125); err != nil {
		t.Fatal(err)
	}
	// (21.5 + 40) / 165 * 10 rounds to 4 cells.
	for i := 0; i < 10; i++ {
		lit := d.pixels[3*i] != 0 || d.pixels[3*i+1] != 0 || d.pixels[3*i+2] != 0
		if lit != (i < 4) {
			t.Errorf("cell %d lit=%t", i, lit)
		}
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\r\033[0mT ") {
		t.Errorf("unexpected prefix %q", out)
	}
	if !strings.HasSuffix(out, "\033[0m 21.5°C\n") {
		t.Errorf("unexpected suffix %q", out)
	}

	if err := d.Level("", 1000, 0, 100); err != nil {
		t.Fatal(err)
	}
	if c := d.pixels[3*9:]; c[0] != 255 || c[1] != 0 || c[2] != 0 {
		t.Errorf("full gauge should end red, got %v", c)
	}
	if err := d.Level("", 1, 1, 1); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestRamp(t *testing.T) {
	var tests = []struct {
		f      float64
		result color.NRGBA
	}{
		{-1, color.NRGBA{0, 0, 255, 255}},
		{0, color.NRGBA{0, 0, 255, 255}},
		{0.5, color.NRGBA{0, 255, 0, 255}},
		{1, color.NRGBA{255, 0, 0, 255}},
		{2, color.NRGBA{255, 0, 0, 255}},
	}
	for _, test := range tests {
		if c := Ramp(test.f); c != test.result {
			t.Errorf("Ramp(%g) expected %v received %v", test.f, test.result, c)
		}
	}
}

func TestDrawer(t *testing.T) {
	buf := bytes.Buffer{}
	d := New(&Opts{X: 4, W: &buf})
	if d.String() != "TermGauge" {
		t.Error(d.String())
	}
	if b := d.Bounds(); b.Dx() != 4 || b.Dy() != 1 {
		t.Errorf("unexpected bounds %v", b)
	}
	if _, err := d.Write([]byte{1, 2}); err == nil {
		t.Error("expected error for partial pixel")
	}
	if n, err := d.Write([]byte{1, 2, 3}); err != nil || n != 12 {
		t.Errorf("Write() = %d, %v", n, err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 8, 1))
	for x := 0; x < 8; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{byte(x), 0, 0, 255})
	}
	if err := d.Draw(d.Bounds(), img, image.Point{X: 2}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if d.pixels[3*i] != byte(i+2) {
			t.Errorf("cell %d expected red %d received %d", i, i+2, d.pixels[3*i])
		}
	}
	buf.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\033[0m" {
		t.Errorf("unexpected halt output %q", buf.String())
	}
}
