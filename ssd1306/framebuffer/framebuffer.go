// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package framebuffer holds the in-memory copy of an SSD1306 display memory
// and tracks which bytes changed since the last transfer to the device.
//
// The buffer is page oriented: byte index = x + width*(y/8) and bit y%8 of
// that byte is the pixel, least significant bit on top. A set bit is a lit
// pixel.
//
// Mutations never talk to the device. The owner decides when to flush, using
// Window to find the smallest rectangle of pages and columns covering every
// dirty byte, then Drain once the transfer is done.
//
// A Buffer is not safe for concurrent use.
package framebuffer

import (
	"fmt"
	"image"
	"sort"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// Pixel is one pixel assignment.
type Pixel struct {
	X, Y int
	C    image1bit.Bit
}

// Window is an inclusive rectangle of pages and columns.
type Window struct {
	StartCol, EndCol   int
	StartPage, EndPage int
}

// Len returns the number of bytes covered by the window.
func (w Window) Len() int {
	return (w.EndCol - w.StartCol + 1) * (w.EndPage - w.StartPage + 1)
}

func (w Window) String() string {
	return fmt.Sprintf("cols %d-%d pages %d-%d", w.StartCol, w.EndCol, w.StartPage, w.EndPage)
}

// Buffer is a packed monochrome frame buffer with its dirty byte set.
type Buffer struct {
	img   *image1bit.VerticalLSB
	w, h  int
	dirty map[int]struct{}
}

// New returns a blank buffer of w by h pixels.
func New(w, h int) *Buffer {
	return Wrap(image1bit.NewVerticalLSB(image.Rect(0, 0, w, h)))
}

// Wrap returns a buffer backed by img. img must start at the origin.
func Wrap(img *image1bit.VerticalLSB) *Buffer {
	return &Buffer{
		img:   img,
		w:     img.Rect.Dx(),
		h:     img.Rect.Dy(),
		dirty: map[int]struct{}{},
	}
}

// Image returns the backing image.
func (b *Buffer) Image() *image1bit.VerticalLSB {
	return b.img
}

// Bounds returns the logical size of the buffer.
func (b *Buffer) Bounds() image.Rectangle {
	return b.img.Rect
}

// Pix returns the packed bytes. The slice aliases the buffer.
func (b *Buffer) Pix() []byte {
	return b.img.Pix
}

// Pages returns the number of 8 pixel high bands.
func (b *Buffer) Pages() int {
	return (b.h + 7) / 8
}

// SetPixel sets or clears the pixel at (x, y) and marks its byte dirty.
//
// Coordinates strictly greater than the width or height are ignored. x equal
// to the width is accepted and, following the packed index formula, lands on
// column 0 of the next page. Anything that would address outside the buffer is
// dropped.
func (b *Buffer) SetPixel(x, y int, c image1bit.Bit) {
	if x > b.w || y > b.h || x < 0 || y < 0 {
		return
	}
	page := y / 8
	mask := byte(1) << uint(y-8*page)
	i := x + b.w*page
	if i >= len(b.img.Pix) {
		return
	}
	if c {
		b.img.Pix[i] |= mask
	} else {
		b.img.Pix[i] &^= mask
	}
	b.dirty[i] = struct{}{}
}

// SetPixels applies SetPixel to each pixel in order.
func (b *Buffer) SetPixels(ps []Pixel) {
	for _, p := range ps {
		b.SetPixel(p.X, p.Y, p.C)
	}
}

// PixelAt returns the pixel at (x, y), Off when outside the buffer.
func (b *Buffer) PixelAt(x, y int) image1bit.Bit {
	return b.img.BitAt(x, y)
}

// Clear turns every pixel off. Only bytes that were not already zero are
// marked dirty.
func (b *Buffer) Clear() {
	for i, v := range b.img.Pix {
		if v != 0 {
			b.img.Pix[i] = 0
			b.dirty[i] = struct{}{}
		}
	}
}

// Replace copies pix over the whole buffer.
//
// The dirty set is left untouched; the caller is expected to send the whole
// buffer afterward.
func (b *Buffer) Replace(pix []byte) error {
	if len(pix) != len(b.img.Pix) {
		return fmt.Errorf("framebuffer: got %d bytes, want %d", len(pix), len(b.img.Pix))
	}
	copy(b.img.Pix, pix)
	return nil
}

// MarkDirty adds byte i to the dirty set. Invalid indexes are ignored.
func (b *Buffer) MarkDirty(i int) {
	if i >= 0 && i < len(b.img.Pix) {
		b.dirty[i] = struct{}{}
	}
}

// Dirty returns the dirty byte indexes in increasing order.
func (b *Buffer) Dirty() []int {
	out := make([]int, 0, len(b.dirty))
	for i := range b.dirty {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// DirtyLen returns the number of dirty bytes.
func (b *Buffer) DirtyLen() int {
	return len(b.dirty)
}

// Window returns the bounding rectangle of the dirty bytes. It returns false
// when nothing is dirty.
func (b *Buffer) Window() (Window, bool) {
	if len(b.dirty) == 0 {
		return Window{}, false
	}
	w := Window{StartCol: b.w, StartPage: b.Pages()}
	for i := range b.dirty {
		page := i / b.w
		col := i % b.w
		if page < w.StartPage {
			w.StartPage = page
		}
		if page > w.EndPage {
			w.EndPage = page
		}
		if col < w.StartCol {
			w.StartCol = col
		}
		if col > w.EndCol {
			w.EndCol = col
		}
	}
	return w, true
}

// Extract returns the bytes inside win, page after page.
func (b *Buffer) Extract(win Window) []byte {
	out := make([]byte, 0, win.Len())
	for p := win.StartPage; p <= win.EndPage; p++ {
		row := b.img.Pix[p*b.w : (p+1)*b.w]
		out = append(out, row[win.StartCol:win.EndCol+1]...)
	}
	return out
}

// Drain empties the dirty set.
func (b *Buffer) Drain() {
	for i := range b.dirty {
		delete(b.dirty, i)
	}
}
