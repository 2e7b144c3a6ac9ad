//go:build !linux

package led

import "fmt"

type SPI struct{}

func NewSPI(dev string, count, speedHz int) (*SPI, error) {
	return nil, fmt.Errorf("led: spi driver not supported on this platform")
}

func (*SPI) Write([]byte) error { return fmt.Errorf("led: spi driver not supported on this platform") }

func (*SPI) Close() error { return nil }
