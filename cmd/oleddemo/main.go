// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oleddemo shows what the ssd1306 driver can do.
//
// It talks to a panel over I²C, hardware SPI or bit banged SPI. With -sim the
// panel is emulated and every frame is printed on the terminal instead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"net/http"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/GermanBionicSystems/oled/ssd1306"
	"github.com/GermanBionicSystems/oled/ssd1306/bitbang"
	"github.com/GermanBionicSystems/oled/ssd1306/glyph"
	"github.com/GermanBionicSystems/oled/ssd1306/image1bit"
	"github.com/GermanBionicSystems/oled/ssd1306/oledsim"
	"github.com/GermanBionicSystems/oled/ssd1306/tinydrv"
)

type demo struct {
	dev     *ssd1306.Dev
	sim     *oledsim.Device
	preview *oledsim.Preview
	stream  *oledsim.Stream
	delay   time.Duration
	log     logrus.FieldLogger
}

// show waits for the frame to be seen.
func (d *demo) show(step string) error {
	d.log.WithField("step", step).Info("frame")
	if d.stream != nil {
		if err := d.stream.Refresh(); err != nil {
			return err
		}
	}
	if d.preview != nil {
		fmt.Printf("\n%s\n", step)
		if err := d.preview.Render(d.sim); err != nil {
			return err
		}
		if d.stream == nil {
			return nil
		}
	}
	time.Sleep(d.delay)
	return nil
}

func pin(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return p, nil
}

func mainImpl() error {
	w := flag.Int("width", 128, "display width")
	h := flag.Int("height", 64, "display height")
	microview := flag.Bool("microview", false, "SparkFun MicroView 64x48 panel")
	addr := flag.Uint("addr", 0x3C, "I²C address")
	busName := flag.String("i2c", "", "I²C bus to use")
	spiName := flag.String("spi", "", "SPI port to use instead of I²C")
	dcName := flag.String("dc", "", "D/C pin, required with -spi or -clk")
	rstName := flag.String("rst", "", "optional reset pin")
	clkName := flag.String("clk", "", "bit bang SPI over this clock pin")
	mosiName := flag.String("mosi", "", "bit bang SPI data pin")
	csName := flag.String("cs", "", "bit bang SPI chip select pin")
	simulate := flag.Bool("sim", false, "emulate the panel and print it on the terminal")
	httpAddr := flag.String("http", "", "with -sim, also stream the panel over HTTP on this address, e.g. :8080")
	ttf := flag.String("ttf", "", "TrueType font file; defaults to Go Regular")
	size := flag.Float64("size", 10, "font size in points")
	text := flag.String("text", "Hello from periph!", "text to print")
	qr := flag.String("qr", "https://periph.io", "QR code content")
	delay := flag.Duration("delay", 3*time.Second, "time each frame is shown")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	log := logrus.WithField("cmd", "oleddemo")

	opts := ssd1306.Opts{
		W:         *w,
		H:         *h,
		Addr:      uint16(*addr),
		Microview: *microview,
		Logger:    log,
	}
	d := &demo{delay: *delay, log: log}
	if *simulate {
		d.sim = oledsim.New(opts.Addr)
		dev, err := ssd1306.NewI2C(d.sim, &opts)
		if err != nil {
			return err
		}
		d.dev = dev
		d.preview = oledsim.NewPreview(&oledsim.PreviewOpts{W: *w, H: *h, Offset: int(dev.Screen().ColumnOffset)})
		defer d.preview.Halt()
		if *httpAddr != "" {
			d.stream = oledsim.NewStream(d.sim, &oledsim.StreamOpts{W: *w, H: *h, Offset: int(dev.Screen().ColumnOffset), Logger: log})
			srv := &http.Server{Addr: *httpAddr, Handler: d.stream}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Error("http server")
				}
			}()
			defer srv.Close()
			defer d.stream.Halt()
			log.WithField("addr", *httpAddr).Info("streaming")
		}
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		rst, err := pin(*rstName)
		if err != nil {
			return err
		}
		if rst != nil {
			opts.Reset = rst
		}
		switch {
		case *spiName != "" || *clkName != "":
			dc, err := pin(*dcName)
			if err != nil {
				return err
			}
			if dc == nil {
				return errors.New("-dc is required with SPI")
			}
			var p spi.PortCloser
			if *clkName != "" {
				clk, err := pin(*clkName)
				if err != nil {
					return err
				}
				mosi, err := pin(*mosiName)
				if err != nil {
					return err
				}
				if mosi == nil {
					return errors.New("-mosi is required with -clk")
				}
				var cs gpio.PinOut
				if c, err := pin(*csName); err != nil {
					return err
				} else if c != nil {
					cs = c
				}
				if p, err = bitbang.New(clk, mosi, cs); err != nil {
					return err
				}
			} else if p, err = spireg.Open(*spiName); err != nil {
				return err
			}
			defer p.Close()
			if d.dev, err = ssd1306.NewSPI(p, dc, &opts); err != nil {
				return err
			}
		default:
			b, err := i2creg.Open(*busName)
			if err != nil {
				return err
			}
			defer b.Close()
			if d.dev, err = ssd1306.NewI2C(b, &opts); err != nil {
				return err
			}
		}
	}
	log.WithField("dev", d.dev.String()).Info("ready")
	defer d.dev.Halt()

	ttfData := goregular.TTF
	if *ttf != "" {
		b, err := os.ReadFile(*ttf)
		if err != nil {
			return err
		}
		ttfData = b
	}
	f, err := glyph.ParseTrueType(ttfData, *size, glyph.ASCII)
	if err != nil {
		return err
	}
	if err := glyph.Basic().Has(*text); err != nil {
		return err
	}

	if err := d.primitives(f, *text); err != nil {
		return err
	}
	if err := d.scene(ttfData, *text); err != nil {
		return err
	}
	if err := d.code(*qr); err != nil {
		return err
	}
	return d.effects()
}

// primitives draws with the batched primitives and sends them in one go.
func (d *demo) primitives(f *glyph.Font, text string) error {
	r := d.dev.Bounds()
	_ = d.dev.Clear(false)
	_ = d.dev.Rect(0, 0, r.Dx(), r.Dy(), image1bit.On, false)
	_ = d.dev.Circle(r.Dx()-r.Dy()/2, r.Dy()/2, r.Dy()/2-3, image1bit.On, false)
	_ = d.dev.Line(2, r.Dy()-3, r.Dx()-3, 2, image1bit.On, false)
	d.dev.SetCursor(3, 3)
	if err := d.dev.WriteString(glyph.Basic(), 1, text, image1bit.On, true, 0, false); err != nil {
		return err
	}
	if err := d.dev.UpdateDirty(); err != nil {
		return err
	}
	if err := d.show("primitives"); err != nil {
		return err
	}

	_ = d.dev.Clear(false)
	d.dev.SetCursor(0, 0)
	if err := d.dev.WriteString(f, 1, text, image1bit.On, true, 0, true); err != nil {
		return err
	}
	if err := d.show("truetype glyphs"); err != nil {
		return err
	}

	td := tinydrv.NewDisplay(d.dev)
	if err := td.ClearDisplay(); err != nil {
		return err
	}
	if err := td.WriteLine(&proggy.TinySZ8pt7b, 2, int16(r.Dy()/2+4), text); err != nil {
		return err
	}
	return d.show("tinyfont")
}

// scene renders with gg and pushes the result through Draw.
func (d *demo) scene(ttfData []byte, text string) error {
	r := d.dev.Bounds()
	tt, err := truetype.Parse(ttfData)
	if err != nil {
		return err
	}
	face := truetype.NewFace(tt, &truetype.Options{Size: float64(r.Dy()) / 4})
	defer face.Close()

	dc := gg.NewContext(r.Dx(), r.Dy())
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(1, 1, float64(r.Dx()-2), float64(r.Dy()-2), 6)
	dc.Stroke()
	dc.SetFontFace(face)
	dc.DrawStringAnchored(text, float64(r.Dx())/2, float64(r.Dy())/2, 0.5, 0.5)
	if err := d.dev.Draw(r, dc.Image(), image.Point{}); err != nil {
		return err
	}
	return d.show("gg scene")
}

func (d *demo) code(content string) error {
	r := d.dev.Bounds()
	if err := d.dev.Clear(false); err != nil {
		return err
	}
	if err := d.dev.DrawQRCode(r.Dx()/2-r.Dy()/2, 0, content, 1, true); err != nil {
		return err
	}
	return d.show("qr code")
}

func (d *demo) effects() error {
	if err := d.dev.Invert(true); err != nil {
		return err
	}
	if err := d.show("inverted"); err != nil {
		return err
	}
	if err := d.dev.Invert(false); err != nil {
		return err
	}
	if err := d.dev.Dim(true); err != nil {
		return err
	}
	if err := d.show("dimmed"); err != nil {
		return err
	}
	if err := d.dev.Dim(false); err != nil {
		return err
	}
	pages := byte(d.dev.Buffer().Pages() - 1)
	if err := d.dev.StartScroll(ssd1306.Left, ssd1306.FrameRate5, 0, pages); err != nil {
		return err
	}
	if err := d.show("scrolling"); err != nil {
		return err
	}
	return d.dev.StopScroll()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "oleddemo: %s.\n", err)
		os.Exit(1)
	}
}
