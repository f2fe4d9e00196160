// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termgauge implements a 1D display.Drawer that outputs a bar gauge
// to the terminal (stdout) using ANSI color codes.
//
// Level fills the bar in proportion to a value within a range, colored from
// blue at the low end to red at the high end, followed by a text label.
// Handy for watching a sensor from an SSH session.
package termgauge

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	// X is the width of the bar in cells.
	X       int
	Palette *ansi256.Palette
	// Label is printed in front of the bar.
	Label string
	// Newline ends every refresh with a line feed instead of rewriting the
	// same line. Use it when several gauges share the terminal.
	Newline bool
	// W overrides the output, stdout by default.
	W io.Writer

	_ struct{}
}

// Dev is a bar gauge that outputs to the console.
type Dev struct {
	w       io.Writer
	l       int
	palette ansi256.Palette
	label   string
	newline bool

	text   string
	pixels []byte
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	d := &Dev{
		w:       w,
		l:       opts.X,
		palette: *p,
		label:   opts.Label,
		newline: opts.Newline,
		pixels:  make([]byte, 3*opts.X),
	}
	return d
}

func (d *Dev) String() string {
	return "TermGauge"
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Write accepts a stream of raw RGB pixels and writes it to the console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, errors.New("termgauge: invalid RGB stream length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rectangle{Max: image.Point{X: d.l, Y: 1}}
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	deltaX3 := 3 * (r.Min.X - srcR.Min.X)
	for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
		r16, g16, b16, _ := src.At(sX, srcR.Min.Y).RGBA()
		dX3 := 3*sX + deltaX3
		d.pixels[dX3] = byte(r16 >> 8)
		d.pixels[dX3+1] = byte(g16 >> 8)
		d.pixels[dX3+2] = byte(b16 >> 8)
	}
	_, err := d.refresh()
	return err
}

// Level fills the bar with the position of value between lo and hi and
// prints text after it. Values outside the range are clamped.
func (d *Dev) Level(text string, value, lo, hi float64) error {
	if hi <= lo {
		return fmt.Errorf("termgauge: invalid range [%g, %g]", lo, hi)
	}
	f := math.Min(math.Max((value-lo)/(hi-lo), 0), 1)
	n := int(math.Round(f * float64(d.l)))
	for i := 0; i < d.l; i++ {
		c := color.NRGBA{}
		if i < n {
			c = Ramp(float64(i) / math.Max(float64(d.l-1), 1))
		}
		d.pixels[3*i] = c.R
		d.pixels[3*i+1] = c.G
		d.pixels[3*i+2] = c.B
	}
	d.text = text
	_, err := d.refresh()
	return err
}

// Ramp returns the gauge color at position f in [0, 1]: blue, through
// green, to red.
func Ramp(f float64) color.NRGBA {
	f = math.Min(math.Max(f, 0), 1)
	if f < 0.5 {
		g := byte(math.Round(f * 2 * 255))
		return color.NRGBA{0, g, 255 - g, 255}
	}
	r := byte(math.Round((f - 0.5) * 2 * 255))
	return color.NRGBA{r, 255 - r, 0, 255}
}

func (d *Dev) refresh() (int, error) {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	_, _ = d.buf.WriteString(d.label)
	for i := 0; i < len(d.pixels)/3; i++ {
		c := color.NRGBA{d.pixels[3*i], d.pixels[3*i+1], d.pixels[3*i+2], 255}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(d.text)
	if d.newline {
		_ = d.buf.WriteByte('\n')
	}
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
