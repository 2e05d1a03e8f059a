// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oledsim

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime"
	"net/http"
	"net/textproto"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// StreamOpts configures a Stream.
type StreamOpts struct {
	// W, H and Offset select the visible part of the GDDRAM.
	W, H   int
	Offset int
	// Scale is the size of one panel pixel in the served image. Defaults
	// to 4.
	Scale int
	// Logger defaults to logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// Stream serves the panel of a Device over HTTP as an endless sequence of
// PNG images ("multipart/x-mixed-replace", the MJPEG framing used by IP
// cameras). Browsers show it as a live picture.
//
// Each call to Refresh sends the current panel to every client.
type Stream struct {
	d      *Device
	w, h   int
	offset int
	scale  int
	log    logrus.FieldLogger

	mu      sync.Mutex
	frame   []byte
	clients map[*client]struct{}
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// NewStream returns a Stream of d.
func NewStream(d *Device, opts *StreamOpts) *Stream {
	s := &Stream{
		d:       d,
		w:       opts.W,
		h:       opts.H,
		offset:  opts.Offset,
		scale:   opts.Scale,
		log:     opts.Logger,
		clients: map[*client]struct{}{},
	}
	if s.scale <= 0 {
		s.scale = 4
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

func (s *Stream) String() string {
	return fmt.Sprintf("oledsim.Stream{%s}", s.d)
}

// Refresh encodes the panel and wakes up the clients.
func (s *Stream) Refresh() error {
	b, err := s.encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = b
	for c := range s.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
	return nil
}

// Snapshot returns the last frame encoded, encoding one if needed.
//
// Unlike Refresh, it does not wake up the clients.
func (s *Stream) Snapshot() ([]byte, error) {
	s.mu.Lock()
	b := s.frame
	s.mu.Unlock()
	if b != nil {
		return b, nil
	}
	b, err := s.encode()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		s.frame = b
	}
	return s.frame, nil
}

// Halt implements conn.Resource. It ends every client request.
func (s *Stream) Halt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ServeHTTP implements http.Handler.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	pw := newPartWriter(w)
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{"boundary": pw.boundary}))

	c := &client{refresh: make(chan struct{}, 1), terminate: make(chan struct{}, 1)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()
	log := s.log.WithField("remote", r.RemoteAddr)
	log.Debug("oledsim: client connected")

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Type", "image/png")
	for {
		b, err := s.Snapshot()
		if err == nil {
			err = pw.writeFrame(hdr, b)
		}
		if err != nil {
			// There is no way to report an error inside an image stream.
			log.WithError(err).Debug("oledsim: client dropped")
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Stream) encode() ([]byte, error) {
	img := s.d.Visible(s.w, s.h, s.offset)
	out := image.NewGray(image.Rect(0, 0, s.w*s.scale, s.h*s.scale))
	for y := 0; y < s.h; y++ {
		for x := 0; x < s.w; x++ {
			if !img.BitAt(x, y) {
				continue
			}
			for j := 0; j < s.scale; j++ {
				for i := 0; i < s.scale; i++ {
					out.SetGray(x*s.scale+i, y*s.scale+j, color.Gray{Y: 0xFF})
				}
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("oledsim: %w", err)
	}
	return buf.Bytes(), nil
}

// partWriter writes one MIME part per frame. mime/multipart.Writer cannot
// flush the closing boundary of a part before the next one starts.
type partWriter struct {
	w        io.Writer
	boundary string
	started  bool
}

func newPartWriter(w io.Writer) *partWriter {
	var b [24]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(err)
	}
	return &partWriter{w: w, boundary: fmt.Sprintf("%x", b[:])}
}

func (p *partWriter) writeFrame(hdr textproto.MIMEHeader, body []byte) error {
	hdr.Set("Content-Length", strconv.Itoa(len(body)))
	var buf bytes.Buffer
	if !p.started {
		fmt.Fprintf(&buf, "--%s\r\n", p.boundary)
		p.started = true
	}
	for k, vs := range hdr {
		for _, v := range vs {
			fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
		}
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	fmt.Fprintf(&buf, "\r\n--%s\r\n", p.boundary)
	_, err := buf.WriteTo(p.w)
	return err
}

var _ http.Handler = &Stream{}
