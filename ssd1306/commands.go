// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import "fmt"

// Controller opcodes. Page 28 of the datasheet lists all the commands.
const (
	_ACTIVATE_SCROLL          = 0x2F
	_CHARGEPUMP               = 0x8D
	_COLUMNADDR               = 0x21
	_COMSCANDEC               = 0xC8
	_DEACTIVATE_SCROLL        = 0x2E
	_DISPLAYALLON_RESUME      = 0xA4
	_DISPLAYOFF               = 0xAE
	_DISPLAYON                = 0xAF
	_INVERTDISPLAY            = 0xA7
	_LEFT_HORIZONTAL_SCROLL   = 0x27
	_MEMORYMODE               = 0x20
	_NORMALDISPLAY            = 0xA6
	_PAGEADDR                 = 0x22
	_RIGHT_HORIZONTAL_SCROLL  = 0x26
	_SEGREMAP                 = 0xA1
	_SET_VERTICAL_SCROLL_AREA = 0xA3
	_SETCOMPINS               = 0xDA
	_SETCONTRAST              = 0x81
	_SETDISPLAYCLOCKDIV       = 0xD5
	_SETDISPLAYOFFSET         = 0xD3
	_SETMULTIPLEX             = 0xA8
	_SETPRECHARGE             = 0xD9
	_SETSTARTLINE             = 0x00
	_SETVCOMDETECT            = 0xDB
	_VERT_LEFT_HORIZ_SCROLL   = 0x2A
	_VERT_RIGHT_HORIZ_SCROLL  = 0x29
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes

	// statusBusy is bit 7 of the status byte read back over I²C.
	statusBusy = 0x80
)

// FrameRate determines scrolling speed.
type FrameRate byte

// Possible frame rates. The value determines the number of refreshes between
// movement. The lower value, the higher speed.
const (
	FrameRate2   FrameRate = 7
	FrameRate3   FrameRate = 4
	FrameRate4   FrameRate = 5
	FrameRate5   FrameRate = 0
	FrameRate25  FrameRate = 6
	FrameRate64  FrameRate = 1
	FrameRate128 FrameRate = 2
	FrameRate256 FrameRate = 3
)

// Orientation is used for scrolling.
type Orientation byte

// Possible orientations for scrolling.
const (
	Left    Orientation = _LEFT_HORIZONTAL_SCROLL
	Right   Orientation = _RIGHT_HORIZONTAL_SCROLL
	UpRight Orientation = _VERT_RIGHT_HORIZ_SCROLL
	UpLeft  Orientation = _VERT_LEFT_HORIZ_SCROLL
)

func (o Orientation) String() string {
	switch o {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case UpRight:
		return "UpRight"
	case UpLeft:
		return "UpLeft"
	default:
		return fmt.Sprintf("Orientation(%#x)", byte(o))
	}
}
