// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image1bit implements black and white (1 bit per pixel) 2D graphics
// in the memory format of the SSD1306 controller.
//
// It is compatible with package image/draw.
package image1bit

import (
	"image"
	"image/color"
)

// Bit implements a 1 bit color.
type Bit bool

// RGBA returns either all white or all black.
//
// Technically the monochrome display could be colored but this information is
// unavailable here. To use a colored display, use the 1 bit image as a mask
// for a color.
func (b Bit) RGBA() (uint32, uint32, uint32, uint32) {
	if b {
		return 65535, 65535, 65535, 65535
	}
	return 0, 0, 0, 65535
}

func (b Bit) String() string {
	if b {
		return "On"
	}
	return "Off"
}

// Possible bitness.
const (
	On  = Bit(true)
	Off = Bit(false)
)

// BitModel is the color Model for 1 bit color.
var BitModel = color.ModelFunc(convert)

// VerticalLSB is a 1 bit (black and white) image.
//
// Each byte is 8 vertical pixels. Each stride is an horizontal band of 8
// pixels high with LSB first. So the first byte represent the following
// pixels, with lowest bit being the top left pixel.
//
//	0 x x x x x x x
//	1 x x x x x x x
//	2 x x x x x x x
//	3 x x x x x x x
//	4 x x x x x x x
//	5 x x x x x x x
//	6 x x x x x x x
//	7 x x x x x x x
//
// It is designed specifically to work with SSD1306 OLED display controller.
type VerticalLSB struct {
	// Pix holds the image's pixels, as vertically LSB-first packed bitmap. It
	// can be passed directly to ssd1306.Dev.Write()
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent 8 pixels
	// horizontal bands.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// NewVerticalLSB returns an initialized VerticalLSB instance.
func NewVerticalLSB(r image.Rectangle) *VerticalLSB {
	h := r.Dy()
	w := r.Dx()
	pages := (h + 7) / 8
	return &VerticalLSB{
		Pix:    make([]byte, pages*w),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (i *VerticalLSB) ColorModel() color.Model {
	return BitModel
}

// Bounds implements image.Image.
func (i *VerticalLSB) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *VerticalLSB) At(x, y int) color.Color {
	return i.BitAt(x, y)
}

// BitAt is the optimized version of At().
func (i *VerticalLSB) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return Off
	}
	offset, mask := i.PixOffset(x, y)
	return Bit(i.Pix[offset]&mask != 0)
}

// Opaque scans the entire image and reports whether it is fully opaque.
func (i *VerticalLSB) Opaque() bool {
	return true
}

// PixOffset returns the index of the first element of Pix that corresponds to
// the pixel at (x, y) and the bit mask of that pixel within the byte.
func (i *VerticalLSB) PixOffset(x, y int) (int, byte) {
	x -= i.Rect.Min.X
	y -= i.Rect.Min.Y
	return x + (y/8)*i.Stride, 1 << uint(y&7)
}

// Set implements draw.Image
func (i *VerticalLSB) Set(x, y int, c color.Color) {
	i.SetBit(x, y, convertBit(c))
}

// SetBit is the optimized version of Set().
func (i *VerticalLSB) SetBit(x, y int, b Bit) {
	if !(image.Point{X: x, Y: y}.In(i.Rect)) {
		return
	}
	offset, mask := i.PixOffset(x, y)
	if b {
		i.Pix[offset] |= mask
	} else {
		i.Pix[offset] &^= mask
	}
}

// DrawHLine draws an horizontal line from left to right (exclusive) at row y.
func (i *VerticalLSB) DrawHLine(left, right, y int, b Bit) {
	for x := left; x < right; x++ {
		i.SetBit(x, y, b)
	}
}

// DrawVLine draws a vertical line from top to bottom (exclusive) at column x.
func (i *VerticalLSB) DrawVLine(top, bottom, x int, b Bit) {
	for y := top; y < bottom; y++ {
		i.SetBit(x, y, b)
	}
}

var _ image.Image = &VerticalLSB{}

// convert converts any color to a Bit.
func convert(c color.Color) color.Color {
	return convertBit(c)
}

// convertBit is the optimized version of convert().
//
// A pixel is lit when any of its channels is at least half intensity.
func convertBit(c color.Color) Bit {
	switch t := c.(type) {
	case Bit:
		return t
	default:
		r, g, b, _ := c.RGBA()
		return (r | g | b) >= 0x8000
	}
}
