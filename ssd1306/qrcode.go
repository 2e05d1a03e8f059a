// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// DrawQRCode draws a QR code for data with its top left corner at (x, y).
//
// The code is drawn dark on a lit square that extends margin pixels on each
// side, so the whole symbol is n+2*margin pixels wide where n is the number
// of modules. Modules past the edge of the screen are dropped.
func (d *Dev) DrawQRCode(x, y int, data string, margin int, sync bool) error {
	q, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("ssd1306: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()
	n := len(bitmap)
	d.fb.FillRect(x, y, n+2*margin, n+2*margin, image1bit.On)
	for row, line := range bitmap {
		for col, dark := range line {
			d.fb.SetPixel(x+margin+col, y+margin+row, image1bit.Bit(!dark))
		}
	}
	return d.sync(sync)
}
