// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package glyph

import (
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ASCII is the printable 7 bit ASCII range, from space to tilde.
const ASCII = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// FromFace rasterizes the characters of lookup from face into a Font.
//
// The cell width is the largest advance among the characters and the cell
// height is the face ascent plus descent, rounded up to a multiple of 8 so
// that each glyph is a whole number of pages.
func FromFace(face font.Face, lookup string) (*Font, error) {
	runes := []rune(lookup)
	if len(runes) == 0 {
		return nil, fmt.Errorf("glyph: empty lookup")
	}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := ascent + m.Descent.Ceil()
	if height <= 0 {
		return nil, fmt.Errorf("glyph: invalid face height %d", height)
	}
	height = (height + 7) &^ 7

	width := 0
	monospace := true
	first := fixed.Int26_6(-1)
	for _, r := range runes {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not part of the face", ErrGlyphNotFound, r)
		}
		if first < 0 {
			first = adv
		} else if adv != first {
			monospace = false
		}
		if w := adv.Ceil(); w > width {
			width = w
		}
	}
	if width <= 0 {
		return nil, fmt.Errorf("glyph: invalid face width %d", width)
	}

	f := &Font{
		Width:     width,
		Height:    height,
		Monospace: monospace,
		Lookup:    runes,
	}
	n := f.GlyphLen()
	f.Data = make([]byte, 0, n*len(runes))
	cell := image.NewAlpha(image.Rect(0, 0, width, height))
	dot := fixed.P(0, ascent)
	for _, r := range runes {
		draw.Draw(cell, cell.Rect, image.Transparent, image.Point{}, draw.Src)
		dr, mask, maskp, _, ok := face.Glyph(dot, r)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not part of the face", ErrGlyphNotFound, r)
		}
		draw.DrawMask(cell, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)
		f.Data = append(f.Data, pack(cell)...)
	}
	return f, nil
}

// ParseTrueType loads a TrueType font at the given point size and rasterizes
// the characters of lookup.
func ParseTrueType(ttf []byte, size float64, lookup string) (*Font, error) {
	tt, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("glyph: %w", err)
	}
	face := truetype.NewFace(tt, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()
	return FromFace(face, lookup)
}

// Basic returns the ASCII font derived from basicfont.Face7x13.
//
// The glyph cell is 7x16. It is built on first use.
func Basic() *Font {
	basicOnce.Do(func() {
		var err error
		if basic, err = FromFace(basicfont.Face7x13, ASCII); err != nil {
			panic(err)
		}
	})
	return basic
}

var (
	basicOnce sync.Once
	basic     *Font
)

// pack converts a cell into page ordered, column major, LSB-first bytes.
func pack(cell *image.Alpha) []byte {
	w := cell.Rect.Dx()
	pages := cell.Rect.Dy() / 8
	out := make([]byte, w*pages)
	for p := 0; p < pages; p++ {
		for x := 0; x < w; x++ {
			var b byte
			for j := 0; j < 8; j++ {
				if cell.AlphaAt(x, p*8+j).A >= 0x80 {
					b |= 1 << uint(j)
				}
			}
			out[p*w+x] = b
		}
	}
	return out
}
