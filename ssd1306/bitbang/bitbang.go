// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bitbang implements a write only SPI port over plain GPIO pins.
//
// It is meant for boards where the display is wired to arbitrary pins
// instead of a hardware SPI controller. Each bit is shifted out most
// significant bit first: clock low, data, clock high. The chip select line
// is held low for the duration of a transaction.
//
// The speed is whatever the GPIO driver can do; the requested frequency is
// only validated.
package bitbang

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Port is a bit banged SPI port.
type Port struct {
	clk  gpio.PinOut
	mosi gpio.PinOut
	cs   gpio.PinOut

	mu        sync.Mutex
	connected bool
	maxFreq   physic.Frequency
	mode      spi.Mode
}

// New returns a port using the given pins. cs may be nil when the device
// select line is tied low.
//
// The clock is set low and the device deselected.
func New(clk, mosi, cs gpio.PinOut) (*Port, error) {
	if clk == nil || mosi == nil {
		return nil, errors.New("bitbang: clk and mosi are required")
	}
	p := &Port{clk: clk, mosi: mosi, cs: cs}
	if err := clk.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bitbang: clk: %w", err)
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("bitbang: cs: %w", err)
		}
	}
	return p, nil
}

func (p *Port) String() string {
	cs := "<nil>"
	if p.cs != nil {
		cs = p.cs.String()
	}
	return fmt.Sprintf("bitbang{%s, %s, %s}", p.clk, p.mosi, cs)
}

// Connect implements spi.Port.
//
// Only mode 0 with 8 bits words is supported, optionally with LSBFirst or
// NoCS.
func (p *Port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if f < 0 {
		return nil, fmt.Errorf("bitbang: invalid frequency %s", f)
	}
	if mode&^(spi.LSBFirst|spi.NoCS|spi.HalfDuplex) != spi.Mode0 {
		return nil, fmt.Errorf("bitbang: unsupported mode %s", mode)
	}
	if bits != 8 {
		return nil, fmt.Errorf("bitbang: unsupported bits per word %d", bits)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil, errors.New("bitbang: Connect can only be called once")
	}
	p.connected = true
	p.mode = mode
	return &Conn{p: p}, nil
}

// LimitSpeed implements spi.Port.
func (p *Port) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("bitbang: invalid frequency %s", f)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxFreq = f
	return nil
}

// Close implements spi.PortCloser. It deselects the device.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	if p.cs != nil {
		return p.cs.Out(gpio.High)
	}
	return nil
}

// CLK implements spi.Pins.
func (p *Port) CLK() gpio.PinOut {
	return p.clk
}

// MOSI implements spi.Pins.
func (p *Port) MOSI() gpio.PinOut {
	return p.mosi
}

// MISO implements spi.Pins. There is none.
func (p *Port) MISO() gpio.PinIn {
	return gpio.INVALID
}

// CS implements spi.Pins.
func (p *Port) CS() gpio.PinOut {
	if p.cs == nil {
		return gpio.INVALID
	}
	return p.cs
}

// Conn is the connection returned by Port.Connect.
type Conn struct {
	p *Port
}

func (c *Conn) String() string {
	return c.p.String()
}

// Duplex implements conn.Conn.
func (c *Conn) Duplex() conn.Duplex {
	return conn.Half
}

// Tx implements conn.Conn. r must be empty.
func (c *Conn) Tx(w, r []byte) error {
	return c.TxPackets([]spi.Packet{{W: w, R: r}})
}

// TxPackets implements spi.Conn.
//
// The device stays selected between two packets when KeepCS is set on the
// first one.
func (c *Conn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if len(pkt.R) != 0 {
			return errors.New("bitbang: read is not supported")
		}
		if pkt.BitsPerWord != 0 && pkt.BitsPerWord != 8 {
			return fmt.Errorf("bitbang: unsupported bits per word %d", pkt.BitsPerWord)
		}
	}
	c.p.mu.Lock()
	defer c.p.mu.Unlock()
	eh := errorHandler{p: c.p}
	selected := false
	for _, pkt := range pkts {
		if !selected {
			eh.csOut(gpio.Low)
			selected = true
		}
		for _, b := range pkt.W {
			eh.shiftOut(b)
		}
		if !pkt.KeepCS {
			eh.csOut(gpio.High)
			selected = false
		}
	}
	if selected {
		// Never leave the device selected.
		eh.csOut(gpio.High)
	}
	return eh.err
}

// errorHandler is a wrapper for error management.
type errorHandler struct {
	p   *Port
	err error
}

func (eh *errorHandler) out(pin gpio.PinOut, l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = pin.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.p.cs == nil || eh.p.mode&spi.NoCS != 0 {
		return
	}
	eh.out(eh.p.cs, l)
}

func (eh *errorHandler) shiftOut(b byte) {
	for i := 0; i < 8; i++ {
		bit := 7 - i
		if eh.p.mode&spi.LSBFirst != 0 {
			bit = i
		}
		eh.out(eh.p.clk, gpio.Low)
		eh.out(eh.p.mosi, b&(1<<uint(bit)) != 0)
		eh.out(eh.p.clk, gpio.High)
	}
}

var _ spi.PortCloser = &Port{}
var _ spi.Pins = &Port{}
var _ spi.Conn = &Conn{}
