// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oled is a container for the SSD1306 monochrome OLED driver and its
// companions.
//
// The driver lives in ssd1306. It keeps a frame buffer in memory, tracks the
// bytes that changed and only sends those to the panel. See cmd/oleddemo for
// a tour that runs on hardware or in the terminal.
package oled
