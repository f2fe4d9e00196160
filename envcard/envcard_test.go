// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package envcard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func TestRender(t *testing.T) {
	r := Reading{
		Name:        "cht8305",
		Temperature: physic.ZeroCelsius + 21500*physic.MilliKelvin,
		Humidity:    50 * physic.PercentRH,
		Voltage:     3300 * physic.MilliVolt,
		Time:        time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	img, err := Render(r, nil)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != DefaultOpts.Width || b.Dy() != DefaultOpts.Height {
		t.Errorf("unexpected bounds %v", b)
	}
	if red, green, blue, _ := img.At(0, 0).RGBA(); red>>8 != 255 || green>>8 != 255 || blue>>8 != 255 {
		t.Errorf("corner should be background white, got %d %d %d", red>>8, green>>8, blue>>8)
	}
	// Inside the filled half of the humidity bar: green at 50%.
	red, green, _, _ := img.At(40, DefaultOpts.Height-26).RGBA()
	if red>>8 > 64 || green>>8 < 192 {
		t.Errorf("expected green bar fill, got red=%d green=%d", red>>8, green>>8)
	}
	// Beyond the fill the bar stays white.
	if red, _, _, _ := img.At(DefaultOpts.Width-40, DefaultOpts.Height-26).RGBA(); red>>8 != 255 {
		t.Errorf("expected empty bar past the fill, got red=%d", red>>8)
	}

	if _, err := Render(r, &Opts{Width: 10, Height: 10, FontSize: 10}); err == nil {
		t.Error("expected error for tiny card")
	}
}

func TestSave(t *testing.T) {
	img, err := Render(Reading{Humidity: 10 * physic.PercentRH}, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "card.png")
	if err := Save(path, img); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("png not written: %v", err)
	}
}
