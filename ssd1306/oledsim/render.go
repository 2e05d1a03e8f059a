// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oledsim

import (
	"bytes"
	"image/color"
	"io"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// PreviewOpts configures a Preview.
type PreviewOpts struct {
	// W, H and Offset select the visible part of the GDDRAM.
	W, H   int
	Offset int
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Out defaults to the console. ANSI colors are only used when Out is a
	// terminal.
	Out io.Writer
}

// Preview draws what an emulated panel shows on a terminal.
type Preview struct {
	w       io.Writer
	color   bool
	palette ansi256.Palette
	width   int
	height  int
	offset  int

	lit  color.NRGBA
	dark color.NRGBA
	buf  bytes.Buffer
}

// NewPreview returns a Preview writing to opts.Out.
func NewPreview(opts *PreviewOpts) *Preview {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	pv := &Preview{
		w:       opts.Out,
		palette: *p,
		width:   opts.W,
		height:  opts.H,
		offset:  opts.Offset,
		lit:     color.NRGBA{R: 0x40, G: 0xC0, B: 0xFF, A: 255},
		dark:    color.NRGBA{A: 255},
	}
	if pv.w == nil {
		pv.w = colorable.NewColorableStdout()
		fd := os.Stdout.Fd()
		pv.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return pv
}

func (pv *Preview) String() string {
	return "oledsim.Preview"
}

// Render writes one frame of d, one line of text per row of pixels.
func (pv *Preview) Render(d *Device) error {
	img := d.Visible(pv.width, pv.height, pv.offset)
	lit := func(x, y int) bool {
		return bool(img.BitAt(x, y))
	}

	// This code is designed to minimize the amount of memory allocated per call.
	pv.buf.Reset()
	if !pv.color {
		for y := 0; y < pv.height; y++ {
			for x := 0; x < pv.width; x++ {
				if lit(x, y) {
					_ = pv.buf.WriteByte('#')
				} else {
					_ = pv.buf.WriteByte('.')
				}
			}
			_ = pv.buf.WriteByte('\n')
		}
		_, err := pv.buf.WriteTo(pv.w)
		return err
	}
	_, _ = pv.buf.WriteString("\033[0m")
	for y := 0; y < pv.height; y++ {
		for x := 0; x < pv.width; x++ {
			c := pv.dark
			if lit(x, y) {
				c = pv.lit
			}
			_, _ = io.WriteString(&pv.buf, pv.palette.Block(c))
		}
		_, _ = pv.buf.WriteString("\033[0m\n")
	}
	_, err := pv.buf.WriteTo(pv.w)
	return err
}

// Halt resets the terminal colors.
func (pv *Preview) Halt() error {
	if !pv.color {
		return nil
	}
	_, err := pv.w.Write([]byte("\033[0m"))
	return err
}
