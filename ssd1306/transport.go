// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"periph.io/x/conn/v3/gpio"
)

// ErrNotReady is returned when the controller stays busy past the ready
// timeout or the context deadline.
var ErrNotReady = errors.New("ssd1306: controller not ready")

func (d *Dev) sendCommand(c ...byte) error {
	if d.spi {
		// 4-wire SPI.
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cCmd}, c...), nil)
}

func (d *Dev) sendData(c []byte) error {
	if d.spi {
		// 4-wire SPI.
		if err := d.dc.Out(gpio.High); err != nil {
			return err
		}
		return d.c.Tx(c, nil)
	}
	return d.c.Tx(append([]byte{i2cData}, c...), nil)
}

// waitUntilReady polls the status byte until the busy bit clears.
//
// Only I²C can read back from the controller; over SPI it is always
// considered ready. Between two polls the goroutine yields instead of
// sleeping.
func (d *Dev) waitUntilReady(ctx context.Context) error {
	if d.spi {
		return nil
	}
	if d.readyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.readyTimeout)
		defer cancel()
	}
	var status [1]byte
	for polls := 1; ; polls++ {
		if err := d.c.Tx(nil, status[:]); err != nil {
			return err
		}
		if status[0]&statusBusy == 0 {
			return nil
		}
		d.log.WithField("polls", polls).Debug("ssd1306: busy")
		runtime.Gosched()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
		default:
		}
	}
}
