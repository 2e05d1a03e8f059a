// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/GermanBionicSystems/oled/ssd1306/framebuffer"
	"github.com/GermanBionicSystems/oled/ssd1306/glyph"
	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// The drawing methods below modify the frame buffer. When sync is true they
// then send the modified bytes with FlushDirty; otherwise the changes
// accumulate until the next flush.

// SetPixel sets one pixel.
//
// Out of range coordinates are ignored. See framebuffer.Buffer.SetPixel for
// the handling of x equal to the width.
func (d *Dev) SetPixel(x, y int, c image1bit.Bit, sync bool) error {
	d.fb.SetPixel(x, y, c)
	return d.sync(sync)
}

// SetPixels sets many pixels.
func (d *Dev) SetPixels(ps []framebuffer.Pixel, sync bool) error {
	d.fb.SetPixels(ps)
	return d.sync(sync)
}

// Clear turns every pixel off.
func (d *Dev) Clear(sync bool) error {
	d.fb.Clear()
	return d.sync(sync)
}

// Line draws a line, both ends included.
func (d *Dev) Line(x0, y0, x1, y1 int, c image1bit.Bit, sync bool) error {
	d.fb.Line(x0, y0, x1, y1, c)
	return d.sync(sync)
}

// Rect draws the outline of a rectangle.
func (d *Dev) Rect(x, y, w, h int, c image1bit.Bit, sync bool) error {
	d.fb.Rect(x, y, w, h, c)
	return d.sync(sync)
}

// FillRect draws a filled rectangle.
func (d *Dev) FillRect(x, y, w, h int, c image1bit.Bit, sync bool) error {
	d.fb.FillRect(x, y, w, h, c)
	return d.sync(sync)
}

// Circle draws the outline of a circle.
func (d *Dev) Circle(x0, y0, r int, c image1bit.Bit, sync bool) error {
	d.fb.Circle(x0, y0, r, c)
	return d.sync(sync)
}

// Bitmap draws a full screen bitmap, in row major order.
func (d *Dev) Bitmap(pixels []image1bit.Bit, sync bool) error {
	d.fb.Bitmap(pixels)
	return d.sync(sync)
}

// SetCursor sets the position of the next WriteString call.
func (d *Dev) SetCursor(x, y int) {
	d.cursor = image.Point{X: x, Y: y}
}

// Cursor returns the position of the next WriteString call.
func (d *Dev) Cursor() image.Point {
	return d.cursor
}

// WriteString draws s at the cursor with font f magnified size times.
//
// The cursor moves along the text. Every character must be in f, otherwise
// an error wrapping glyph.ErrGlyphNotFound is returned and nothing is drawn.
func (d *Dev) WriteString(f *glyph.Font, size int, s string, c image1bit.Bit, wrap bool, lineSpacing int, sync bool) error {
	if err := d.fb.WriteString(&d.cursor, f, size, s, c, wrap, lineSpacing); err != nil {
		return err
	}
	return d.sync(sync)
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// The pixels of src are converted with image1bit.BitModel and copied into the
// frame buffer, then the modified area is sent. It draws synchronously.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	clipped := r.Intersect(d.rect)
	sp = sp.Add(clipped.Min.Sub(r.Min))
	img, fast := src.(*image1bit.VerticalLSB)
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		sy := sp.Y + y - clipped.Min.Y
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			sx := sp.X + x - clipped.Min.X
			var b image1bit.Bit
			if fast {
				b = img.BitAt(sx, sy)
			} else {
				b = image1bit.BitModel.Convert(src.At(sx, sy)).(image1bit.Bit)
			}
			d.fb.SetPixel(x, y, b)
		}
	}
	return d.FlushDirty(context.Background())
}

// Write writes a buffer of pixels to the display.
//
// The format is unsual as each byte represent 8 vertical pixels at a time. The
// format is horizontal bands of 8 pixels high.
//
// This function accepts the content of image1bit.VerticalLSB.Pix. The whole
// buffer is sent.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.fb.Replace(pixels); err != nil {
		return 0, fmt.Errorf("ssd1306: %w", err)
	}
	if err := d.Flush(context.Background()); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

func (d *Dev) sync(sync bool) error {
	if !sync {
		return nil
	}
	return d.FlushDirty(context.Background())
}
