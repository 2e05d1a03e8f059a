// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"context"

	"github.com/GermanBionicSystems/oled/ssd1306/framebuffer"
)

// Flush sends the whole frame buffer.
//
// The dirty set is emptied even when the transfer fails.
func (d *Dev) Flush(ctx context.Context) error {
	defer d.fb.Drain()
	if err := d.waitUntilReady(ctx); err != nil {
		return err
	}
	win := framebuffer.Window{
		StartCol:  0,
		EndCol:    d.rect.Dx() - 1,
		StartPage: 0,
		EndPage:   d.fb.Pages() - 1,
	}
	return d.sendWindow(win, d.fb.Pix())
}

// FlushDirty sends the smallest rectangle of pages and columns that covers
// every byte modified since the last flush. Clean bytes inside that
// rectangle are sent too.
//
// Nothing is sent when no byte is dirty. The dirty set is emptied even when
// the transfer fails.
func (d *Dev) FlushDirty(ctx context.Context) error {
	defer d.fb.Drain()
	win, ok := d.fb.Window()
	if !ok {
		return nil
	}
	if err := d.waitUntilReady(ctx); err != nil {
		return err
	}
	d.log.WithField("window", win).Debug("ssd1306: flush")
	return d.sendWindow(win, d.fb.Extract(win))
}

// Update sends the whole frame buffer.
func (d *Dev) Update() error {
	return d.Flush(context.Background())
}

// UpdateDirty sends the modified part of the frame buffer.
func (d *Dev) UpdateDirty() error {
	return d.FlushDirty(context.Background())
}

// sendWindow sets the GDDRAM address window then streams data into it.
func (d *Dev) sendWindow(win framebuffer.Window, data []byte) error {
	off := int(d.screen.ColumnOffset)
	err := d.sendCommand(
		_COLUMNADDR, byte(win.StartCol+off), byte(win.EndCol+off),
		_PAGEADDR, byte(win.StartPage), byte(win.EndPage),
	)
	if err != nil {
		return err
	}
	return d.sendData(data)
}
