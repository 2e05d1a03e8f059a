// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

func TestNew(t *testing.T) {
	data := []struct {
		w, h  int
		pages int
		len   int
	}{
		{128, 32, 4, 512},
		{128, 64, 8, 1024},
		{96, 16, 2, 192},
		{64, 48, 6, 384},
	}
	for _, line := range data {
		b := New(line.w, line.h)
		if b.Pages() != line.pages {
			t.Fatalf("%dx%d: Pages() = %d", line.w, line.h, b.Pages())
		}
		if len(b.Pix()) != line.len {
			t.Fatalf("%dx%d: len(Pix()) = %d", line.w, line.h, len(b.Pix()))
		}
		if b.DirtyLen() != 0 {
			t.Fatal("new buffer must be clean")
		}
	}
}

func TestSetPixel_RoundTrip(t *testing.T) {
	b := New(128, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 128; x += 3 {
			b.SetPixel(x, y, image1bit.On)
			if !b.PixelAt(x, y) {
				t.Fatalf("(%d,%d) not lit", x, y)
			}
		}
	}
	// Clearing one pixel does not disturb its neighbours in the same byte.
	b.SetPixel(3, 9, image1bit.Off)
	if b.PixelAt(3, 9) {
		t.Fatal("(3,9) still lit")
	}
	if !b.PixelAt(3, 8) || !b.PixelAt(3, 10) {
		t.Fatal("neighbours were modified")
	}
}

func TestSetPixel_Index(t *testing.T) {
	b := New(128, 32)
	b.SetPixel(5, 9, image1bit.On)
	b.SetPixel(5, 9, image1bit.On)
	b.SetPixel(0, 0, image1bit.On)
	if b.Pix()[133] != 0x02 || b.Pix()[0] != 0x01 {
		t.Fatalf("Pix = %#x %#x", b.Pix()[0], b.Pix()[133])
	}
	if diff := cmp.Diff([]int{0, 133}, b.Dirty()); diff != "" {
		t.Fatalf("Dirty() (-want +got):\n%s", diff)
	}
}

func TestSetPixel_Bounds(t *testing.T) {
	b := New(128, 32)
	// x == width is accepted and wraps to column 0 of the next page.
	b.SetPixel(128, 0, image1bit.On)
	if b.Pix()[128] != 0x01 || !b.PixelAt(0, 8) {
		t.Fatalf("Pix[128] = %#x", b.Pix()[128])
	}
	b.SetPixel(129, 0, image1bit.On)
	b.SetPixel(0, 33, image1bit.On)
	b.SetPixel(-1, 0, image1bit.On)
	b.SetPixel(0, -1, image1bit.On)
	// y == height is past the last page.
	b.SetPixel(0, 32, image1bit.On)
	b.SetPixel(128, 31, image1bit.On)
	if diff := cmp.Diff([]int{128}, b.Dirty()); diff != "" {
		t.Fatalf("Dirty() (-want +got):\n%s", diff)
	}
}

func TestSetPixels(t *testing.T) {
	b := New(64, 48)
	b.SetPixels([]Pixel{{1, 1, image1bit.On}, {2, 40, image1bit.On}, {1, 1, image1bit.Off}})
	if b.PixelAt(1, 1) || !b.PixelAt(2, 40) {
		t.Fatal("unexpected pixels")
	}
	if diff := cmp.Diff([]int{1, 5*64 + 2}, b.Dirty()); diff != "" {
		t.Fatalf("Dirty() (-want +got):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	b := New(128, 32)
	b.SetPixel(0, 0, image1bit.On)
	b.SetPixel(1, 0, image1bit.On)
	b.SetPixel(1, 0, image1bit.Off)
	b.SetPixel(127, 31, image1bit.On)
	b.Drain()

	b.Clear()
	if diff := cmp.Diff([]int{0, 511}, b.Dirty()); diff != "" {
		t.Fatalf("Dirty() (-want +got):\n%s", diff)
	}
	for i, v := range b.Pix() {
		if v != 0 {
			t.Fatalf("Pix[%d] = %#x", i, v)
		}
	}
	b.Drain()
	b.Clear()
	if b.DirtyLen() != 0 {
		t.Fatalf("second Clear() dirtied %d bytes", b.DirtyLen())
	}
}

func TestReplace(t *testing.T) {
	b := New(96, 16)
	pix := make([]byte, 192)
	pix[100] = 0xAA
	if err := b.Replace(pix); err != nil {
		t.Fatal(err)
	}
	if b.Pix()[100] != 0xAA {
		t.Fatal("not copied")
	}
	pix[100] = 0
	if b.Pix()[100] != 0xAA {
		t.Fatal("must not alias")
	}
	if b.Replace(make([]byte, 10)) == nil {
		t.Fatal("expected size error")
	}
}

func TestWindow(t *testing.T) {
	b := New(128, 32)
	if _, ok := b.Window(); ok {
		t.Fatal("empty set must not have a window")
	}
	b.SetPixel(2, 0, image1bit.On)
	b.SetPixel(5, 9, image1bit.On)
	b.Pix()[128+3] = 0x55
	w, ok := b.Window()
	if !ok {
		t.Fatal("expected a window")
	}
	want := Window{StartCol: 2, EndCol: 5, StartPage: 0, EndPage: 1}
	if diff := cmp.Diff(want, w); diff != "" {
		t.Fatalf("Window() (-want +got):\n%s", diff)
	}
	if w.Len() != 8 {
		t.Fatalf("Len() = %d", w.Len())
	}
	// Clean bytes inside the window are part of it.
	got := b.Extract(w)
	if diff := cmp.Diff([]byte{0x01, 0, 0, 0, 0, 0x55, 0, 0x02}, got); diff != "" {
		t.Fatalf("Extract() (-want +got):\n%s", diff)
	}
	b.Drain()
	if b.DirtyLen() != 0 {
		t.Fatal("Drain() left bytes")
	}
}

func TestMarkDirty(t *testing.T) {
	b := New(96, 16)
	b.MarkDirty(-1)
	b.MarkDirty(192)
	b.MarkDirty(191)
	if diff := cmp.Diff([]int{191}, b.Dirty()); diff != "" {
		t.Fatalf("Dirty() (-want +got):\n%s", diff)
	}
}
