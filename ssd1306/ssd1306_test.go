// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/GermanBionicSystems/oled/ssd1306/framebuffer"
	"github.com/GermanBionicSystems/oled/ssd1306/glyph"
	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

const addr uint16 = 0x3C

// ready is the status byte read with the busy bit clear.
var ready = i2ctest.IO{Addr: addr, R: []byte{0x00}}

func cmdIO(c ...byte) i2ctest.IO {
	return i2ctest.IO{Addr: addr, W: append([]byte{i2cCmd}, c...)}
}

func dataIO(d ...byte) i2ctest.IO {
	return i2ctest.IO{Addr: addr, W: append([]byte{i2cData}, d...)}
}

// newI2C returns a device whose init sequence was already played back; ops
// are what the test expects next.
func newI2C(t *testing.T, opts Opts, ops ...i2ctest.IO) (*Dev, *i2ctest.Playback) {
	t.Helper()
	sc, err := LookupScreen(opts.W, opts.H, opts.Microview)
	if err != nil {
		t.Fatal(err)
	}
	all := append([]i2ctest.IO{cmdIO(getInitCmd(sc)...)}, ops...)
	pb := &i2ctest.Playback{Ops: all, DontPanic: true}
	d, err := NewI2C(pb, &opts)
	if err != nil {
		t.Fatal(err)
	}
	return d, pb
}

func closePlayback(t *testing.T, pb *i2ctest.Playback) {
	t.Helper()
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewI2C_Init(t *testing.T) {
	want := []byte{
		i2cCmd,
		0xAE,
		0xD5, 0x80,
		0xA8, 0x1F,
		0xD3, 0x00,
		0x00,
		0x8D, 0x14,
		0x20, 0x00,
		0xA1,
		0xC8,
		0xDA, 0x02,
		0x81, 0x8F,
		0xD9, 0xF1,
		0xDB, 0x40,
		0xA4,
		0xA6,
		0xAF,
	}
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{{Addr: addr, W: want}}, DontPanic: true}
	opts := DefaultOpts
	d, err := NewI2C(pb, &opts)
	if err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
	if s := d.String(); s != "ssd1306.Dev{playback(60), (128,32)}" {
		t.Fatal(s)
	}
	if d.Bounds() != image.Rect(0, 0, 128, 32) {
		t.Fatal(d.Bounds())
	}
}

func TestNewI2C_DefaultAddr(t *testing.T) {
	opts := Opts{W: 128, H: 64}
	d, pb := newI2C(t, opts)
	closePlayback(t, pb)
	if d.Screen() != (ScreenConfig{Multiplex: 0x3F, ComPins: 0x12}) {
		t.Fatal(d.Screen())
	}
}

func TestNewI2C_Unsupported(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	_, err := NewI2C(pb, &Opts{W: 100, H: 10})
	if !errors.Is(err, ErrUnsupportedGeometry) {
		t.Fatalf("err = %v", err)
	}
	closePlayback(t, pb)
}

func TestNewI2C_Reset(t *testing.T) {
	rst := &gpiotest.Pin{N: "RST", L: gpio.Low}
	opts := DefaultOpts
	opts.Reset = rst
	_, pb := newI2C(t, opts)
	closePlayback(t, pb)
	if rst.L != gpio.High {
		t.Fatal("RES must be left high")
	}
}

func TestLookupScreen(t *testing.T) {
	data := []struct {
		w, h      int
		microview bool
		want      ScreenConfig
	}{
		{128, 32, false, ScreenConfig{0x1F, 0x02, 0}},
		{128, 64, false, ScreenConfig{0x3F, 0x12, 0}},
		{96, 16, false, ScreenConfig{0x0F, 0x02, 0}},
		{64, 48, false, ScreenConfig{0x2F, 0x12, 0}},
		{64, 48, true, ScreenConfig{0x2F, 0x12, 32}},
		{128, 64, true, ScreenConfig{0x3F, 0x12, 0}},
	}
	for _, line := range data {
		got, err := LookupScreen(line.w, line.h, line.microview)
		if err != nil {
			t.Fatal(err)
		}
		if got != line.want {
			t.Fatalf("%dx%d: %#v != %#v", line.w, line.h, got, line.want)
		}
	}
	for _, s := range []image.Point{{128, 128}, {0, 0}, {64, 32}, {32, 128}} {
		if _, err := LookupScreen(s.X, s.Y, false); !errors.Is(err, ErrUnsupportedGeometry) {
			t.Fatalf("%v: err = %v", s, err)
		}
	}
}

func TestCommands(t *testing.T) {
	data := []struct {
		name string
		f    func(d *Dev) error
		want []byte
	}{
		{"TurnOn", (*Dev).TurnOn, []byte{0xAF}},
		{"TurnOff", (*Dev).TurnOff, []byte{0xAE}},
		{"Halt", (*Dev).Halt, []byte{0xAE}},
		{"Dim", func(d *Dev) error { return d.Dim(true) }, []byte{0x81, 0x00}},
		{"Bright", func(d *Dev) error { return d.Dim(false) }, []byte{0x81, 0xCF}},
		{"SetContrast", func(d *Dev) error { return d.SetContrast(0x42) }, []byte{0x81, 0x42}},
		{"Invert", func(d *Dev) error { return d.Invert(true) }, []byte{0xA7}},
		{"Normal", func(d *Dev) error { return d.Invert(false) }, []byte{0xA6}},
		{"StopScroll", (*Dev).StopScroll, []byte{0x2E}},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			d, pb := newI2C(t, DefaultOpts, cmdIO(line.want...))
			if err := line.f(d); err != nil {
				t.Fatal(err)
			}
			closePlayback(t, pb)
		})
	}
}

func TestStartScroll(t *testing.T) {
	data := []struct {
		name        string
		o           Orientation
		rate        FrameRate
		start, stop byte
		want        []byte
	}{
		{"Left", Left, FrameRate5, 0, 3, []byte{0x27, 0x00, 0x00, 0x00, 0x03, 0x00, 0xFF, 0x2F}},
		{"Right", Right, FrameRate2, 1, 2, []byte{0x26, 0x00, 0x01, 0x07, 0x02, 0x00, 0xFF, 0x2F}},
		{"UpRight", UpRight, FrameRate5, 0, 3, []byte{0xA3, 0x00, 32, 0x29, 0x00, 0x00, 0x00, 0x03, 0x01, 0x2F}},
		{"UpLeft", UpLeft, FrameRate64, 0, 0, []byte{0xA3, 0x00, 32, 0x2A, 0x00, 0x00, 0x01, 0x00, 0x01, 0x2F}},
		// Pages past the panel height still exist in the controller memory.
		{"PastPanel", Left, FrameRate5, 0, 6, []byte{0x27, 0x00, 0x00, 0x00, 0x06, 0x00, 0xFF, 0x2F}},
		{"Masked", UpLeft, FrameRate5, 9, 15, []byte{0xA3, 0x00, 32, 0x2A, 0x00, 0x01, 0x00, 0x07, 0x01, 0x2F}},
	}
	for _, line := range data {
		t.Run(line.name, func(t *testing.T) {
			d, pb := newI2C(t, DefaultOpts, ready, cmdIO(line.want...))
			if err := d.StartScroll(line.o, line.rate, line.start, line.stop); err != nil {
				t.Fatal(err)
			}
			closePlayback(t, pb)
		})
	}
}

func TestStartScroll_Invalid(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts)
	if d.StartScroll(Orientation(0x42), FrameRate5, 0, 1) == nil {
		t.Fatal("invalid orientation")
	}
	closePlayback(t, pb)
}

func TestFlushDirty_Window(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts,
		ready,
		cmdIO(0x21, 2, 5, 0x22, 0, 1),
		dataIO(0x01, 0, 0, 0, 0, 0, 0, 0x02),
	)
	if err := d.SetPixel(2, 0, image1bit.On, false); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixel(5, 9, image1bit.On, false); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateDirty(); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
	if n := d.Buffer().DirtyLen(); n != 0 {
		t.Fatalf("DirtyLen() = %d", n)
	}
}

func TestFlushDirty_Empty(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts)
	if err := d.UpdateDirty(); err != nil {
		t.Fatal(err)
	}
	if err := d.Clear(true); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
}

func TestFlushDirty_Microview(t *testing.T) {
	opts := Opts{W: 64, H: 48, Microview: true}
	d, pb := newI2C(t, opts,
		ready,
		cmdIO(0x21, 32+63, 32+63, 0x22, 5, 5),
		dataIO(0x80),
	)
	if err := d.SetPixel(63, 47, image1bit.On, true); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
}

func TestFlush(t *testing.T) {
	opts := Opts{W: 96, H: 16}
	d, pb := newI2C(t, opts,
		ready,
		cmdIO(0x21, 0, 95, 0x22, 0, 1),
		dataIO(make([]byte, 192)...),
	)
	d.Buffer().SetPixel(3, 3, image1bit.On)
	d.Buffer().Pix()[3] = 0
	if err := d.Update(); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
	if d.Buffer().DirtyLen() != 0 {
		t.Fatal("Flush must drain the dirty set")
	}
}

func TestFlush_Busy(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := DefaultOpts
	opts.Logger = logger
	busy := i2ctest.IO{Addr: addr, R: []byte{0x80}}
	d, pb := newI2C(t, opts,
		busy,
		i2ctest.IO{Addr: addr, R: []byte{0xC3}},
		i2ctest.IO{Addr: addr, R: []byte{0x43}},
		cmdIO(0x21, 0, 0, 0x22, 0, 0),
		dataIO(0x01),
	)
	if err := d.SetPixel(0, 0, image1bit.On, true); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "ssd1306: busy" {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("busy logged %d times", n)
	}
}

func TestFlush_NotReady(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts, i2ctest.IO{Addr: addr, R: []byte{0x80}})
	d.Buffer().SetPixel(0, 0, image1bit.On)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.FlushDirty(ctx)
	if !errors.Is(err, ErrNotReady) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	closePlayback(t, pb)
	if d.Buffer().DirtyLen() != 0 {
		t.Fatal("the dirty set must be drained on failure")
	}
}

func TestFlush_TransportError(t *testing.T) {
	// The playback runs out of I/O after the status read.
	d, pb := newI2C(t, DefaultOpts, ready)
	if err := d.Line(0, 0, 10, 10, image1bit.On, true); err == nil {
		t.Fatal("expected an error")
	}
	closePlayback(t, pb)
	if d.Buffer().DirtyLen() != 0 {
		t.Fatal("the dirty set must be drained on failure")
	}
}

func TestDraw(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts,
		ready,
		cmdIO(0x21, 120, 127, 0x22, 3, 3),
		dataIO(0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF),
	)
	// Partly outside the screen.
	r := image.Rect(120, 24, 136, 40)
	if err := d.Draw(r, &image.Uniform{C: image1bit.On}, image.Point{}); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
}

func TestDraw_VerticalLSB(t *testing.T) {
	src := image1bit.NewVerticalLSB(image.Rect(0, 0, 16, 16))
	src.SetBit(9, 9, image1bit.On)
	d, pb := newI2C(t, DefaultOpts,
		ready,
		cmdIO(0x21, 0, 1, 0x22, 0, 0),
		dataIO(0x00, 0x02),
	)
	if err := d.Draw(image.Rect(0, 0, 2, 8), src, image.Point{X: 8, Y: 8}); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
}

func TestWrite(t *testing.T) {
	pix := make([]byte, 192)
	pix[0] = 0xAA
	pix[191] = 0x55
	d, pb := newI2C(t, Opts{W: 96, H: 16},
		ready,
		cmdIO(0x21, 0, 95, 0x22, 0, 1),
		dataIO(pix...),
	)
	n, err := d.Write(pix)
	if err != nil || n != 192 {
		t.Fatal(n, err)
	}
	if _, err := d.Write(pix[:10]); err == nil {
		t.Fatal("expected a size error")
	}
	closePlayback(t, pb)
}

func TestGeometryFacade(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts)
	// Nothing is sent without sync.
	if err := d.Rect(0, 0, 10, 10, image1bit.On, false); err != nil {
		t.Fatal(err)
	}
	if err := d.FillRect(20, 0, 4, 4, image1bit.On, false); err != nil {
		t.Fatal(err)
	}
	if err := d.Circle(50, 16, 8, image1bit.On, false); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPixels([]framebuffer.Pixel{{X: 100, Y: 1, C: image1bit.On}}, false); err != nil {
		t.Fatal(err)
	}
	bits := make([]image1bit.Bit, 128*32)
	if err := d.Bitmap(bits[:1], false); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
	fb := d.Buffer()
	for _, p := range []image.Point{{10, 5}, {23, 3}, {58, 16}, {100, 1}} {
		if !fb.PixelAt(p.X, p.Y) {
			t.Fatalf("%v not lit", p)
		}
	}
	if fb.PixelAt(0, 0) {
		t.Fatal("Bitmap must have cleared (0,0)")
	}
}

func TestWriteString(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts)
	d.SetCursor(1, 2)
	if err := d.WriteString(glyph.Basic(), 1, "Hi", image1bit.On, false, 0, false); err != nil {
		t.Fatal(err)
	}
	if got := d.Cursor(); got != (image.Point{X: 1 + 2*(7+2), Y: 2}) {
		t.Fatalf("Cursor() = %v", got)
	}
	err := d.WriteString(glyph.Basic(), 1, "é", image1bit.On, false, 0, true)
	if !errors.Is(err, glyph.ErrGlyphNotFound) {
		t.Fatalf("err = %v", err)
	}
	closePlayback(t, pb)
}

func TestDrawQRCode(t *testing.T) {
	d, pb := newI2C(t, DefaultOpts)
	if err := d.DrawQRCode(0, 0, "hi", 2, false); err != nil {
		t.Fatal(err)
	}
	closePlayback(t, pb)
	fb := d.Buffer()
	data := []struct {
		x, y int
		want image1bit.Bit
	}{
		{0, 0, image1bit.On},  // Margin.
		{2, 2, image1bit.Off}, // Finder pattern outer ring.
		{3, 3, image1bit.On},  // Finder pattern inner ring.
		{4, 4, image1bit.Off}, // Finder pattern center.
		{24, 24, image1bit.On},
		{25, 25, image1bit.Off}, // Past the symbol.
	}
	for _, line := range data {
		if got := fb.PixelAt(line.x, line.y); got != line.want {
			t.Fatalf("(%d,%d) = %v, want %v", line.x, line.y, got, line.want)
		}
	}
}

func TestNewSPI(t *testing.T) {
	sc, _ := LookupScreen(128, 32, false)
	dc := &gpiotest.Pin{N: "DC"}
	rst := &gpiotest.Pin{N: "RST"}
	port := &spitest.Record{}
	opts := DefaultOpts
	opts.Reset = rst
	d, err := NewSPI(port, dc, &opts)
	if err != nil {
		t.Fatal(err)
	}
	if rst.L != gpio.High || dc.L != gpio.Low {
		t.Fatal("unexpected pin levels")
	}
	// SPI never polls.
	if err := d.SetPixel(0, 8, image1bit.On, true); err != nil {
		t.Fatal(err)
	}
	if dc.L != gpio.High {
		t.Fatal("data must be sent with DC high")
	}
	want := []conntest.IO{
		{W: getInitCmd(sc)},
		{W: []byte{0x21, 0, 0, 0x22, 1, 1}},
		{W: []byte{0x01}},
	}
	if diff := cmp.Diff(want, port.Ops); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if !bytes.HasPrefix([]byte(d.String()), []byte("ssd1306.Dev{")) {
		t.Fatal(d.String())
	}
}

func TestNewSPI_Errors(t *testing.T) {
	if _, err := NewSPI(&spitest.Record{}, nil, &Opts{W: 128, H: 32}); err != errDCRequired {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewSPI(&spitest.Record{}, gpio.INVALID, &Opts{W: 128, H: 32}); err != errDCRequired {
		t.Fatalf("err = %v", err)
	}
	_, err := NewSPI(&spitest.Record{}, &gpiotest.Pin{N: "DC"}, &Opts{W: 10, H: 10})
	if !errors.Is(err, ErrUnsupportedGeometry) {
		t.Fatalf("err = %v", err)
	}
}
