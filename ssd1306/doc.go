// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 controls a monochrome OLED display via a SSD1306
// controller.
//
// The driver keeps a copy of the display memory in a frame buffer and records
// which bytes changed. Drawing methods only touch the frame buffer; a flush
// sends either the whole buffer or the smallest rectangle of pages and columns
// covering every changed byte, to economize bus bandwidth. This is especially
// important when using I²C as the bus default speed (often 100kHz) is slow
// enough to saturate the bus at less than 10 frames per second.
//
// Drawing methods take a trailing sync argument. Pass false to batch many
// primitives and flush once with UpdateDirty.
//
// The device can be driven on either I²C or SPI with 4 wires. Over I²C the
// driver reads the status byte before each transfer and waits while the busy
// bit is set. SPI is write only, the controller is assumed ready.
//
// Supported panels are 128x32, 128x64, 96x16 and 64x48, including the
// SparkFun MicroView whose 64 columns start at column 32 of the controller.
//
// Some boards expose a RES / Reset pin. If passed in Opts, it is pulsed low
// once before the initialization sequence.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
//
// "DM-OLED096-624": https://drive.google.com/file/d/0B5lkVYnewKTGaEVENlYwbDkxSGM/view
package ssd1306
