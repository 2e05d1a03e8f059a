// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"image"
	"strings"

	"github.com/GermanBionicSystems/oled/ssd1306/glyph"
	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// letterSpacing is the gap added after each non space character, in units of
// the text size.
const letterSpacing = 1

// DrawGlyph draws the glyph bytes g of font f with its top left corner at
// at.
//
// Set bits are drawn with c and clear bits with the opposite color. With size
// above 1 each source pixel becomes a size by size block.
func (b *Buffer) DrawGlyph(at image.Point, f *glyph.Font, g []byte, size int, c image1bit.Bit) {
	if size < 1 {
		size = 1
	}
	for i, bits := range glyph.Bits(g) {
		col := i % f.Width
		row := i / f.Width * 8
		for j, v := range bits {
			pc := c
			if v == 0 {
				pc = !c
			}
			if size == 1 {
				b.SetPixel(at.X+col, at.Y+row+j, pc)
			} else {
				b.FillRect(at.X+col*size, at.Y+(row+j)*size, size, size, pc)
			}
		}
	}
}

// WriteString draws s at *cursor and leaves cursor after the last character.
//
// Every character of s must be in f, otherwise nothing is drawn and the error
// wraps glyph.ErrGlyphNotFound. When wrap is true the text moves to a new line
// before a word that would not fit and after a character that reaches the
// right edge. lineSpacing is the extra gap between lines, 0 means 2. A
// negative lineSpacing makes lines overlap.
func (b *Buffer) WriteString(cursor *image.Point, f *glyph.Font, size int, s string, c image1bit.Bit, wrap bool, lineSpacing int) error {
	if err := f.Has(s); err != nil {
		return err
	}
	if size < 1 {
		size = 1
	}
	leading := lineSpacing
	if leading == 0 {
		leading = 2
	}
	newLine := func() {
		cursor.Y += f.Height*size + size + leading
	}

	words := strings.Split(s, " ")
	offset := cursor.X
	padding := 0
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		runes := []rune(word)
		need := f.Width*size*len(runes) + size*(len(words)-1)
		if wrap && len(words) > 1 && offset >= b.w-need {
			offset = 1
			newLine()
			cursor.X = offset
		}
		for _, r := range runes {
			g, err := f.Find(r)
			if err != nil {
				return err
			}
			b.DrawGlyph(*cursor, f, g, size, c)
			// Back fill the gap left after the previous character.
			b.FillRect(offset-padding, cursor.Y, padding, f.Height*size, !c)

			padding = 0
			if r != ' ' {
				padding = size + letterSpacing
			}
			offset += f.Width*size + padding
			if wrap && offset >= b.w-f.Width-letterSpacing {
				offset = 1
				newLine()
			}
			cursor.X = offset
		}
	}
	return nil
}
