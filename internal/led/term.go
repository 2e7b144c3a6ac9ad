package led

import (
	"fmt"
	"image"
	"sync"

	"periph.io/x/extra/devices/screen"
)

// Term renders frames as ANSI color blocks in the terminal, one strip per
// frame. Handy when developing without hardware attached.
type Term struct {
	mu    sync.Mutex
	dev   *screen.Dev
	count int
	img   *image.NRGBA
}

func NewTerm(count int) (*Term, error) {
	if count <= 0 {
		return nil, fmt.Errorf("led: invalid pixel count %d", count)
	}
	return &Term{
		dev:   screen.New(count),
		count: count,
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
	}, nil
}

func (t *Term) Write(rgb []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(rgb) != t.count*3 {
		return fmt.Errorf("led: frame length %d does not match %d pixels", len(rgb), t.count)
	}
	for i := 0; i < t.count; i++ {
		t.img.Pix[i*4+0] = rgb[i*3+0]
		t.img.Pix[i*4+1] = rgb[i*3+1]
		t.img.Pix[i*4+2] = rgb[i*3+2]
		t.img.Pix[i*4+3] = 0xFF
	}
	return t.dev.Draw(t.dev.Bounds(), t.img, image.Point{})
}

func (t *Term) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev.Halt()
}
