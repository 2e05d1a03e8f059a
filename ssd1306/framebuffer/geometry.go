// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package framebuffer

import (
	"image"

	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
)

// LinePoints returns the pixels of the Bresenham line from (x0, y0) to
// (x1, y1), both ends included, in drawing order.
//
// The error term is kept doubled so that odd deltas do not need a fractional
// half step.
func LinePoints(x0, y0, x1, y1 int) []image.Point {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := -dy
	if dx > dy {
		err = dx
	}
	pts := make([]image.Point, 0, max(dx, dy)+1)
	for {
		pts = append(pts, image.Point{X: x0, Y: y0})
		if x0 == x1 && y0 == y1 {
			return pts
		}
		e2 := err
		if e2 > -2*dx {
			err -= 2 * dy
			x0 += sx
		}
		if e2 < 2*dy {
			err += 2 * dx
			y0 += sy
		}
	}
}

// Line draws a line, both ends included.
func (b *Buffer) Line(x0, y0, x1, y1 int, c image1bit.Bit) {
	for _, p := range LinePoints(x0, y0, x1, y1) {
		b.SetPixel(p.X, p.Y, c)
	}
}

// Rect draws the outline of a rectangle.
//
// The top and bottom edges span x to x+w. The side edges start one row below
// the top so the corner is not drawn twice.
func (b *Buffer) Rect(x, y, w, h int, c image1bit.Bit) {
	b.Line(x, y, x+w, y, c)
	b.Line(x, y+1, x, y+h-1, c)
	b.Line(x+w, y+1, x+w, y+h-1, c)
	b.Line(x, y+h-1, x+w, y+h-1, c)
}

// FillRect fills the w by h rectangle at (x, y), one column at a time.
func (b *Buffer) FillRect(x, y, w, h int, c image1bit.Bit) {
	if h <= 0 {
		return
	}
	for i := x; i < x+w; i++ {
		b.Line(i, y, i, y+h-1, c)
	}
}

// CirclePoints returns the points of the midpoint circle of radius r centered
// on (x0, y0), in drawing order. Points on the diagonals may repeat.
func CirclePoints(x0, y0, r int) []image.Point {
	f := 1 - r
	ddFx := 1
	ddFy := -2 * r
	x := 0
	y := r
	pts := []image.Point{
		{X: x0, Y: y0 + r},
		{X: x0, Y: y0 - r},
		{X: x0 + r, Y: y0},
		{X: x0 - r, Y: y0},
	}
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}
		x++
		ddFx += 2
		f += ddFx
		pts = append(pts,
			image.Point{X: x0 + x, Y: y0 + y},
			image.Point{X: x0 - x, Y: y0 + y},
			image.Point{X: x0 + x, Y: y0 - y},
			image.Point{X: x0 - x, Y: y0 - y},
			image.Point{X: x0 + y, Y: y0 + x},
			image.Point{X: x0 - y, Y: y0 + x},
			image.Point{X: x0 + y, Y: y0 - x},
			image.Point{X: x0 - y, Y: y0 - x},
		)
	}
	return pts
}

// Circle draws the outline of a circle.
func (b *Buffer) Circle(x0, y0, r int, c image1bit.Bit) {
	for _, p := range CirclePoints(x0, y0, r) {
		b.SetPixel(p.X, p.Y, c)
	}
}

// Bitmap draws pixels in row major order starting at the top left corner,
// wrapping every buffer width.
func (b *Buffer) Bitmap(pixels []image1bit.Bit) {
	for i, c := range pixels {
		b.SetPixel(i%b.w, i/b.w, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
