// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oledsim emulates an SSD1306 controller.
//
// A Device decodes the command stream and keeps its own copy of the 128x64
// GDDRAM, so a driver can be exercised end to end without hardware. It acts
// as an I²C bus (i2c.Bus) or, with the D/C pin returned by SPI, as an SPI
// port.
//
// Only horizontal addressing mode is emulated. Scrolling is recorded but not
// animated.
package oledsim

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// GDDRAM geometry.
const (
	Columns = 128
	Pages   = 8
)

const (
	statusBusy = 0x80
	statusOff  = 0x40
)

// Device is an emulated controller.
type Device struct {
	addr uint16
	log  logrus.FieldLogger

	mu         sync.Mutex
	ram        [Pages * Columns]byte
	colStart   int
	colEnd     int
	pageStart  int
	pageEnd    int
	col, page  int
	on         bool
	inverted   bool
	scrolling  bool
	contrast   byte
	multiplex  byte
	memoryMode byte
	busyReads  int
	statusRead int
	pending    []byte
	commands   [][]byte
	dataBytes  int
}

// New returns a powered up controller answering at I²C address addr.
func New(addr uint16) *Device {
	return &Device{
		addr:      addr,
		log:       logrus.StandardLogger().WithField("dev", "oledsim"),
		colEnd:    Columns - 1,
		pageEnd:   Pages - 1,
		contrast:  0x7F,
		multiplex: 0x3F,
	}
}

// SetLogger replaces the logger used for command traces.
func (d *Device) SetLogger(l logrus.FieldLogger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = l
}

func (d *Device) String() string {
	return fmt.Sprintf("oledsim(%#x)", d.addr)
}

// SetBusy makes the next n status reads report the busy flag.
func (d *Device) SetBusy(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busyReads = n
}

// Tx implements i2c.Bus.
//
// A write starts with a control byte: 0x00 for commands, 0x40 for data. A
// read without write returns the status byte.
func (d *Device) Tx(addr uint16, w, r []byte) error {
	if addr != d.addr {
		return fmt.Errorf("oledsim: no device at address %#x", addr)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(w) != 0 {
		switch w[0] {
		case 0x00:
			d.command(w[1:])
		case 0x40:
			d.data(w[1:])
		default:
			return fmt.Errorf("oledsim: unsupported control byte %#x", w[0])
		}
	}
	if len(r) != 0 {
		r[0] = d.status()
		for i := 1; i < len(r); i++ {
			r[i] = r[0]
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (d *Device) SetSpeed(f physic.Frequency) error {
	if f > 400*physic.KiloHertz {
		return fmt.Errorf("oledsim: %s is above fast mode", f)
	}
	return nil
}

// SPI returns an SPI port wired to the controller and its D/C pin. Bytes
// are commands while D/C is low and data while it is high.
func (d *Device) SPI() (spi.PortCloser, gpio.PinOut) {
	dc := &gpiotest.Pin{N: "DC"}
	return &port{d: d, dc: dc}, dc
}

// Status returns the status byte without consuming a busy read.
func (d *Device) Status() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	var s byte
	if d.busyReads > 0 {
		s |= statusBusy
	}
	if !d.on {
		s |= statusOff
	}
	return s
}

// StatusReads returns the number of status reads served.
func (d *Device) StatusReads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusRead
}

// On reports whether the panel is on.
func (d *Device) On() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

// Inverted reports whether the panel shows black on white.
func (d *Device) Inverted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inverted
}

// Scrolling reports whether a scroll is active.
func (d *Device) Scrolling() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scrolling
}

// Contrast returns the current contrast level.
func (d *Device) Contrast() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.contrast
}

// Multiplex returns the multiplex ratio.
func (d *Device) Multiplex() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.multiplex
}

// Window returns the current column and page address window.
func (d *Device) Window() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return image.Rect(d.colStart, d.pageStart, d.colEnd+1, d.pageEnd+1)
}

// Commands returns every command received so far, opcode first.
func (d *Device) Commands() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.commands))
	copy(out, d.commands)
	return out
}

// DataBytes returns the number of GDDRAM bytes written so far.
func (d *Device) DataBytes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dataBytes
}

// RAM returns a copy of the GDDRAM, page after page.
func (d *Device) RAM() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.ram))
	copy(out, d.ram[:])
	return out
}

// Frame returns the w by h pixels visible on a panel whose first column is
// offset, as the driver would lay them out in its own frame buffer.
//
// The inverted flag is not applied.
func (d *Device) Frame(w, h, offset int) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))
	d.mu.Lock()
	defer d.mu.Unlock()
	for p := 0; p < (h+7)/8 && p < Pages; p++ {
		for x := 0; x < w && x+offset < Columns; x++ {
			img.Pix[p*w+x] = d.ram[p*Columns+x+offset]
		}
	}
	return img
}

// Visible returns what the panel shows: Frame with the inverted flag applied,
// or all pixels off when the display is off.
func (d *Device) Visible(w, h, offset int) *image1bit.VerticalLSB {
	img := d.Frame(w, h, offset)
	d.mu.Lock()
	on, inv := d.on, d.inverted
	d.mu.Unlock()
	for i := range img.Pix {
		switch {
		case !on:
			img.Pix[i] = 0
		case inv:
			img.Pix[i] = ^img.Pix[i]
		}
	}
	return img
}

func (d *Device) status() byte {
	d.statusRead++
	var s byte
	if d.busyReads > 0 {
		d.busyReads--
		s |= statusBusy
	}
	if !d.on {
		s |= statusOff
	}
	return s
}

// argLen returns the number of argument bytes that follow op.
func argLen(op byte) int {
	switch op {
	case 0x20, 0x81, 0x8D, 0xA8, 0xD3, 0xD5, 0xD9, 0xDA, 0xDB:
		return 1
	case 0x21, 0x22, 0xA3:
		return 2
	case 0x29, 0x2A:
		return 5
	case 0x26, 0x27:
		return 6
	default:
		return 0
	}
}

// command feeds command bytes to the decoder. A command may span many
// transactions.
func (d *Device) command(b []byte) {
	for _, c := range b {
		d.pending = append(d.pending, c)
		if len(d.pending) < 1+argLen(d.pending[0]) {
			continue
		}
		cmd := d.pending
		d.pending = nil
		d.commands = append(d.commands, cmd)
		d.execute(cmd)
	}
}

func (d *Device) execute(cmd []byte) {
	switch cmd[0] {
	case 0xAE:
		d.on = false
	case 0xAF:
		d.on = true
	case 0xA6:
		d.inverted = false
	case 0xA7:
		d.inverted = true
	case 0x81:
		d.contrast = cmd[1]
	case 0xA8:
		d.multiplex = cmd[1]
	case 0x20:
		d.memoryMode = cmd[1]
	case 0x21:
		d.colStart = int(cmd[1]) % Columns
		d.colEnd = int(cmd[2]) % Columns
		d.col = d.colStart
	case 0x22:
		d.pageStart = int(cmd[1]) % Pages
		d.pageEnd = int(cmd[2]) % Pages
		d.page = d.pageStart
	case 0x2E:
		d.scrolling = false
	case 0x2F:
		d.scrolling = true
	}
	d.log.WithField("cmd", fmt.Sprintf("% x", cmd)).Debug("oledsim: command")
}

// data writes b at the address pointer, wrapping inside the window.
func (d *Device) data(b []byte) {
	for _, v := range b {
		d.ram[d.page*Columns+d.col] = v
		d.dataBytes++
		if d.col == d.colEnd {
			d.col = d.colStart
			if d.page == d.pageEnd {
				d.page = d.pageStart
			} else {
				d.page = (d.page + 1) % Pages
			}
		} else {
			d.col = (d.col + 1) % Columns
		}
	}
}

// port is the SPI side of a Device.
type port struct {
	d         *Device
	dc        *gpiotest.Pin
	mu        sync.Mutex
	connected bool
}

func (p *port) String() string {
	return p.d.String()
}

func (p *port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil, errors.New("oledsim: Connect can only be called once")
	}
	if mode&^spi.NoCS != spi.Mode0 && mode&^spi.NoCS != spi.Mode3 {
		return nil, fmt.Errorf("oledsim: unsupported mode %s", mode)
	}
	if bits != 8 {
		return nil, fmt.Errorf("oledsim: unsupported bits per word %d", bits)
	}
	if f > 10*physic.MegaHertz {
		return nil, fmt.Errorf("oledsim: %s is above the rated speed", f)
	}
	p.connected = true
	return &spiConn{p: p}, nil
}

func (p *port) LimitSpeed(f physic.Frequency) error {
	return nil
}

func (p *port) Close() error {
	return nil
}

type spiConn struct {
	p *port
}

func (c *spiConn) String() string {
	return c.p.String()
}

func (c *spiConn) Duplex() conn.Duplex {
	return conn.Half
}

func (c *spiConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errors.New("oledsim: the SPI interface is write only")
	}
	d := c.p.d
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.p.dc.Read() == gpio.High {
		d.data(w)
	} else {
		d.command(w)
	}
	return nil
}

func (c *spiConn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ i2c.Bus = &Device{}
var _ spi.Conn = &spiConn{}
