// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinydrv bridges the ssd1306 driver and the TinyGo drivers
// interfaces.
//
// Display lets code written against drivers.Displayer, such as tinyfont,
// render on a ssd1306.Dev. I2C goes the other way and exposes a TinyGo bus,
// like machine.I2C, as a periph i2c.Bus so NewI2C can use it.
package tinydrv

import (
	"fmt"
	"image/color"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pixel"
	"tinygo.org/x/tinyfont"

	"github.com/GermanBionicSystems/oled/ssd1306"
	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// Display implements drivers.Displayer on top of a Dev.
//
// Pixels are buffered until Display is called, which only sends the bytes
// that changed.
type Display struct {
	dev *ssd1306.Dev
}

// NewDisplay returns a Displayer drawing on dev.
func NewDisplay(dev *ssd1306.Dev) *Display {
	return &Display{dev: dev}
}

// Size implements drivers.Displayer.
func (d *Display) Size() (x, y int16) {
	r := d.dev.Bounds()
	return int16(r.Dx()), int16(r.Dy())
}

// SetPixel implements drivers.Displayer. Any color that is not black turns
// the pixel on.
func (d *Display) SetPixel(x, y int16, c color.RGBA) {
	_ = d.dev.SetPixel(int(x), int(y), lit(c), false)
}

// Display implements drivers.Displayer.
func (d *Display) Display() error {
	return d.dev.UpdateDirty()
}

// ClearDisplay turns every pixel off and updates the panel.
func (d *Display) ClearDisplay() error {
	return d.dev.Clear(true)
}

// DrawBitmap copies img at (x, y) and updates the panel.
func (d *Display) DrawBitmap(x, y int16, img pixel.Image[pixel.Monochrome]) error {
	w, h := img.Size()
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			_ = d.dev.SetPixel(int(x)+i, int(y)+j, image1bit.Bit(img.Get(i, j)), false)
		}
	}
	return d.dev.UpdateDirty()
}

// WriteLine prints s with a tinyfont font, baseline at y, and updates the
// panel.
func (d *Display) WriteLine(f tinyfont.Fonter, x, y int16, s string) error {
	tinyfont.WriteLine(d, f, x, y, s, white)
	return d.dev.UpdateDirty()
}

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

func lit(c color.RGBA) image1bit.Bit {
	return c.R != 0 || c.G != 0 || c.B != 0
}

// I2C exposes a TinyGo I²C bus as an i2c.Bus.
//
// TinyGo buses are configured once with their frequency, so SetSpeed only
// records the request.
type I2C struct {
	bus  drivers.I2C
	name string

	mu    sync.Mutex
	speed physic.Frequency
}

// NewI2C wraps bus. name is used by String.
func NewI2C(bus drivers.I2C, name string) *I2C {
	return &I2C{bus: bus, name: name}
}

func (b *I2C) String() string {
	return fmt.Sprintf("tinydrv(%s)", b.name)
}

// Tx implements i2c.Bus.
func (b *I2C) Tx(addr uint16, w, r []byte) error {
	if err := b.bus.Tx(addr, w, r); err != nil {
		return fmt.Errorf("tinydrv: %w", err)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *I2C) SetSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("tinydrv: invalid speed %s", f)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.speed = f
	return nil
}

// Speed returns the last speed requested with SetSpeed.
func (b *I2C) Speed() physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

var _ drivers.Displayer = &Display{}
var _ i2c.Bus = &I2C{}
