// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnsupportedGeometry is returned when no panel configuration exists for
// the requested width and height.
var ErrUnsupportedGeometry = errors.New("ssd1306: unsupported screen geometry")

// ScreenConfig holds the controller settings that depend on the panel size.
type ScreenConfig struct {
	// Multiplex is the multiplex ratio, the number of rows minus one.
	Multiplex byte
	// ComPins is the COM pins hardware configuration; see page 40.
	ComPins byte
	// ColumnOffset is the first GDDRAM column wired to the panel.
	ColumnOffset byte
}

// screens lists the panels known to work.
var screens = map[image.Point]ScreenConfig{
	{128, 32}: {Multiplex: 0x1F, ComPins: 0x02},
	{128, 64}: {Multiplex: 0x3F, ComPins: 0x12},
	{96, 16}:  {Multiplex: 0x0F, ComPins: 0x02},
	{64, 48}:  {Multiplex: 0x2F, ComPins: 0x12},
}

// microviewOffset is the column offset of the 64x48 MicroView panel, which is
// centered in the 128 columns of the controller.
const microviewOffset = 32

// LookupScreen returns the configuration for a w by h panel.
//
// microview only affects the 64x48 geometry.
func LookupScreen(w, h int, microview bool) (ScreenConfig, error) {
	sc, ok := screens[image.Point{X: w, Y: h}]
	if !ok {
		return ScreenConfig{}, fmt.Errorf("%w: %dx%d", ErrUnsupportedGeometry, w, h)
	}
	if microview && w == 64 && h == 48 {
		sc.ColumnOffset = microviewOffset
	}
	return sc, nil
}

// getInitCmd returns the power on sequence.
//
// Page 64 has the full recommended flow.
func getInitCmd(sc ScreenConfig) []byte {
	return []byte{
		_DISPLAYOFF,
		_SETDISPLAYCLOCKDIV, 0x80, // Power on reset value.
		_SETMULTIPLEX, sc.Multiplex,
		_SETDISPLAYOFFSET, 0x00,
		_SETSTARTLINE,
		_CHARGEPUMP, 0x14, // Enable charge pump regulator; page 62
		_MEMORYMODE, 0x00, // Horizontal addressing.
		_SEGREMAP,   // Column 127 is SEG0.
		_COMSCANDEC, // Scan from COM[N-1] to COM0.
		_SETCOMPINS, sc.ComPins,
		_SETCONTRAST, 0x8F,
		_SETPRECHARGE, 0xF1,
		_SETVCOMDETECT, 0x40,
		_DISPLAYALLON_RESUME, // Use GDDRAM content.
		_NORMALDISPLAY,
		_DISPLAYON,
	}
}
