// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

// The SSD1306 is an OLED controller with 128x64 bits of GDDRAM. Smaller panels
// use a subset of it.
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/oled/ssd1306/framebuffer"
)

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:    128,
	H:    32,
	Addr: 0x3C,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// The I2C address of the display. Ignored on SPI.
	Addr uint16
	// Microview selects the column offset of the SparkFun MicroView 64x48
	// panel.
	Microview bool
	// Reset is the optional RES pin. When set it is pulsed low once before
	// initialization.
	Reset gpio.PinOut
	// ReadyTimeout bounds how long a transfer waits for the controller to
	// clear its busy flag. 0 waits forever, unless the context passed to
	// Flush carries a deadline.
	ReadyTimeout time.Duration
	// Logger receives debug traces. Defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// resetPulse is how long RES is held low.
var resetPulse = 10 * time.Millisecond

var errDCRequired = errors.New("ssd1306: dc pin is required")

// NewSPI returns a Dev object that communicates over SPI to a SSD1306 display
// controller.
//
// The SSD1306 can operate at up to 3.3Mhz, which is much higher than I²C. This
// permits higher refresh rates.
//
// # Wiring
//
// Connect SDA to SPI_MOSI, SCK to SPI_CLK, CS to SPI_CS and D/C to dc. Only
// the 4-wire mode is supported so dc is required.
//
// Boards without a hardware SPI port can use bitbang.New to drive the same
// lines from plain GPIO pins.
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errDCRequired
	}
	sc, err := LookupScreen(opts.W, opts.H, opts.Microview)
	if err != nil {
		return nil, err
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, err
	}
	c, err := p.Connect(3300*physic.KiloHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ssd1306: %w", err)
	}
	return newDev(c, opts, sc, true, dc)
}

// NewI2C returns a Dev object that communicates over I²C to a SSD1306 display
// controller.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	sc, err := LookupScreen(opts.W, opts.H, opts.Microview)
	if err != nil {
		return nil, err
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultOpts.Addr
	}
	// Maximum clock speed is 1/2.5µs = 400KHz.
	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		logger(opts).WithError(err).Debug("ssd1306: keeping the bus speed")
	}
	return newDev(&i2c.Dev{Bus: b, Addr: addr}, opts, sc, false, nil)
}

// Dev is an open handle to the display controller.
//
// It owns the frame buffer and the text cursor. It is not safe for concurrent
// use; a single goroutine must drive it.
type Dev struct {
	// Communication
	c   conn.Conn
	dc  gpio.PinOut
	spi bool

	screen       ScreenConfig
	rect         image.Rectangle
	readyTimeout time.Duration
	log          logrus.FieldLogger

	// Mutable
	fb     *framebuffer.Buffer
	cursor image.Point
}

func (d *Dev) String() string {
	if d.spi {
		return fmt.Sprintf("ssd1306.Dev{%s, %s, %s}", d.c, d.dc, d.rect.Max)
	}
	return fmt.Sprintf("ssd1306.Dev{%s, %s}", d.c, d.rect.Max)
}

// Screen returns the panel configuration in use.
func (d *Dev) Screen() ScreenConfig {
	return d.screen
}

// Buffer returns the frame buffer. Changes made through it are sent by the
// next Flush or FlushDirty.
func (d *Dev) Buffer() *framebuffer.Buffer {
	return d.fb
}

// TurnOn turns the panel on.
func (d *Dev) TurnOn() error {
	return d.sendCommand(_DISPLAYON)
}

// TurnOff puts the panel to sleep. GDDRAM content is kept.
func (d *Dev) TurnOff() error {
	return d.sendCommand(_DISPLAYOFF)
}

// Halt implements conn.Resource. It turns off the display.
func (d *Dev) Halt() error {
	return d.TurnOff()
}

// Dim lowers the contrast to its minimum, or restores a bright level.
func (d *Dev) Dim(dim bool) error {
	level := byte(0xCF)
	if dim {
		level = 0x00
	}
	return d.SetContrast(level)
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.sendCommand(_SETCONTRAST, level)
}

// Invert the display (black on white vs white on black).
//
// The frame buffer is not modified.
func (d *Dev) Invert(blackOnWhite bool) error {
	if blackOnWhite {
		return d.sendCommand(_INVERTDISPLAY)
	}
	return d.sendCommand(_NORMALDISPLAY)
}

// StartScroll scrolls the pages start to stop, both included.
//
// Page numbers address the 8 pages of the controller memory and only their
// low 3 bits are used, whatever the panel height.
//
// Only one scrolling operation can happen at a time. The diagonal
// orientations also scroll the whole height vertically by one row per step.
func (d *Dev) StartScroll(o Orientation, rate FrameRate, start, stop byte) error {
	return d.StartScrollContext(context.Background(), o, rate, start, stop)
}

// StartScrollContext is StartScroll with a context bounding the wait for the
// controller.
func (d *Dev) StartScrollContext(ctx context.Context, o Orientation, rate FrameRate, start, stop byte) error {
	start &= 7
	stop &= 7
	var cmd []byte
	switch o {
	case Left, Right:
		// page 28
		// <op>, dummy, <start page>, <rate>, <end page>, dummy, dummy, <ENABLE>
		cmd = []byte{byte(o), 0x00, start, byte(rate), stop, 0x00, 0xFF, _ACTIVATE_SCROLL}
	case UpRight, UpLeft:
		// page 29-30
		// 0xA3 sets the rows of the vertical scroll area: no fixed rows, all
		// the height scrolls.
		// <op>, dummy, <start page>, <rate>, <end page>, <offset>, <ENABLE>
		cmd = []byte{
			_SET_VERTICAL_SCROLL_AREA, 0x00, byte(d.rect.Dy()),
			byte(o), 0x00, start, byte(rate), stop, 0x01, _ACTIVATE_SCROLL,
		}
	default:
		return fmt.Errorf("ssd1306: invalid scroll orientation %s", o)
	}
	if err := d.waitUntilReady(ctx); err != nil {
		return err
	}
	return d.sendCommand(cmd...)
}

// StopScroll stops any scrolling previously set.
//
// The controller does not restore the content that scrolled; call Flush to
// redraw it.
func (d *Dev) StopScroll() error {
	return d.sendCommand(_DEACTIVATE_SCROLL)
}

// newDev is the common initialization code that is independent of the
// communication protocol (I²C or SPI) being used.
func newDev(c conn.Conn, opts *Opts, sc ScreenConfig, usingSPI bool, dc gpio.PinOut) (*Dev, error) {
	d := &Dev{
		c:            c,
		dc:           dc,
		spi:          usingSPI,
		screen:       sc,
		rect:         image.Rect(0, 0, opts.W, opts.H),
		readyTimeout: opts.ReadyTimeout,
		log:          logger(opts).WithField("dev", "ssd1306"),
		fb:           framebuffer.New(opts.W, opts.H),
	}
	if opts.Reset != nil {
		if err := pulseReset(opts.Reset); err != nil {
			return nil, err
		}
	}
	if err := d.sendCommand(getInitCmd(sc)...); err != nil {
		return nil, err
	}
	d.log.WithField("screen", fmt.Sprintf("%dx%d", opts.W, opts.H)).Debug("ssd1306: initialized")
	return d, nil
}

func pulseReset(p gpio.PinOut) error {
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("ssd1306: failed to pull RES low: %w", err)
	}
	time.Sleep(resetPulse)
	if err := p.Out(gpio.High); err != nil {
		return fmt.Errorf("ssd1306: failed to pull RES high: %w", err)
	}
	return nil
}

func logger(opts *Opts) logrus.FieldLogger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logrus.StandardLogger()
}

var _ display.Drawer = &Dev{}
var _ conn.Resource = &Dev{}
