//go:build linux

package led

import (
	"fmt"
	"image"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// SPI drives a WS2811/WS2812 chain as NRZ bits over SPI via periph.io.
type SPI struct {
	mu    sync.Mutex
	dev   *nrzled.Dev
	port  interface{ Close() error }
	count int
	img   *image.NRGBA
}

// NewSPI opens the spidev port (e.g. "/dev/spidev0.0") and prepares an
// NRZ encoder for count pixels. speedHz around 2.4-3.2 MHz suits the 3x
// bit-expansion scheme.
func NewSPI(dev string, count, speedHz int) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("led: invalid pixel count %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("led: host init: %w", err)
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("led: open %s: %w", dev, err)
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      physic.Frequency(speedHz) * physic.Hertz,
	})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("led: nrzled: %w", err)
	}
	return &SPI{
		dev:   d,
		port:  port,
		count: count,
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}, nil
}

func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return fmt.Errorf("led: spi closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("led: frame length %d does not match %d pixels", len(rgb), s.count)
	}
	for i := 0; i < s.count; i++ {
		s.img.Pix[i*4+0] = rgb[i*3+0]
		s.img.Pix[i*4+1] = rgb[i*3+1]
		s.img.Pix[i*4+2] = rgb[i*3+2]
		s.img.Pix[i*4+3] = 0xFF
	}
	if err := s.dev.Draw(s.dev.Bounds(), s.img, image.Point{}); err != nil {
		return fmt.Errorf("led: spi draw: %w", err)
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Halt()
	if cerr := s.port.Close(); err == nil {
		err = cerr
	}
	s.dev = nil
	return err
}
