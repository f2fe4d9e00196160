// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package envcard renders an environmental reading as a small image, for
// sharing a snapshot or pushing it to a display.
package envcard

import (
	"fmt"
	"image"
	"math"
	"time"

	"github.com/GermanBionicSystems/sensors/common"
	"github.com/GermanBionicSystems/sensors/termgauge"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/physic"
)

// Reading is what gets drawn on the card.
type Reading struct {
	Name        string
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
	// Voltage is omitted when 0.
	Voltage physic.ElectricPotential
	Time    time.Time
}

// Opts sets the card geometry.
type Opts struct {
	Width    int
	Height   int
	FontSize float64
}

// DefaultOpts is a card sized for a 320x160 panel.
var DefaultOpts = Opts{Width: 320, Height: 160, FontSize: 20}

const padding = 8.0

// Render draws r: one text line per quantity and a humidity bar along the
// bottom edge.
func Render(r Reading, opts *Opts) (image.Image, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Width <= 4*padding || opts.Height <= 4*padding {
		return nil, fmt.Errorf("envcard: card %dx%d too small", opts.Width, opts.Height)
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("envcard: %w", err)
	}
	w, h := float64(opts.Width), float64(opts.Height)
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(padding/2, padding/2, w-padding, h-padding, 10)
	dc.Stroke()

	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: opts.FontSize}))
	lines := []string{
		fmt.Sprintf("%.2f°C", common.Celsius(r.Temperature)),
		fmt.Sprintf("%.1f%%rH", common.Percent(r.Humidity)),
	}
	if r.Voltage != 0 {
		lines = append(lines, fmt.Sprintf("%.2fV", float64(r.Voltage)/float64(physic.Volt)))
	}
	if r.Name != "" || !r.Time.IsZero() {
		lines = append([]string{fmt.Sprintf("%s %s", r.Name, r.Time.Format("15:04:05"))}, lines...)
	}
	y := padding * 2
	for _, line := range lines {
		_, th := dc.MeasureString(line)
		y += th + padding/2
		dc.DrawString(line, padding*2, y)
	}

	frac := math.Min(math.Max(common.Percent(r.Humidity)/100, 0), 1)
	barW := w - 4*padding
	dc.DrawRectangle(padding*2, h-padding*4, barW, padding*1.5)
	dc.Stroke()
	dc.SetColor(termgauge.Ramp(frac))
	dc.DrawRectangle(padding*2, h-padding*4, barW*frac, padding*1.5)
	dc.Fill()
	return dc.Image(), nil
}

// Save writes img to path as a PNG.
func Save(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("envcard: %w", err)
	}
	return nil
}
