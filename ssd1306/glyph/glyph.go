// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph defines the bitmap font resource used to render text on
// SSD1306 displays.
//
// A Font is a flat byte sequence holding every glyph back to back, plus an
// ordered lookup list that maps characters to their position in that
// sequence. Each glyph occupies ceil(Width*Height/8) bytes laid out like the
// display memory: one byte per column, 8 vertical pixels per byte with the
// least significant bit on top, page after page.
package glyph

import (
	"errors"
	"fmt"
)

// ErrGlyphNotFound is returned when a character is not part of a font.
var ErrGlyphNotFound = errors.New("glyph: glyph not found")

// Font is a bitmap font resource.
type Font struct {
	// Width and Height are the size of one glyph cell, in pixels.
	Width  int
	Height int
	// Monospace is informative; every glyph uses the full cell.
	Monospace bool
	// Data holds all the glyphs, in Lookup order.
	Data []byte
	// Lookup lists the characters available, in the order of Data.
	Lookup []rune
}

// GlyphLen returns the number of bytes used by a single glyph.
func (f *Font) GlyphLen() int {
	return (f.Width*f.Height + 7) / 8
}

// Index returns the position of r in the lookup list, or -1.
func (f *Font) Index(r rune) int {
	for i, c := range f.Lookup {
		if c == r {
			return i
		}
	}
	return -1
}

// Find returns the bytes of the glyph for r.
//
// The returned slice aliases Data.
func (f *Font) Find(r rune) ([]byte, error) {
	i := f.Index(r)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrGlyphNotFound, r)
	}
	n := f.GlyphLen()
	start := i * n
	if start+n > len(f.Data) {
		return nil, fmt.Errorf("%w: %q is past the end of the font data", ErrGlyphNotFound, r)
	}
	return f.Data[start : start+n], nil
}

// Has reports whether every character of s is available.
func (f *Font) Has(s string) error {
	for _, r := range s {
		if _, err := f.Find(r); err != nil {
			return err
		}
	}
	return nil
}

// Bits expands each glyph byte into its 8 bits, least significant bit first.
func Bits(g []byte) [][8]byte {
	out := make([][8]byte, len(g))
	for i, b := range g {
		for j := 0; j < 8; j++ {
			out[i][j] = b >> uint(j) & 1
		}
	}
	return out
}
