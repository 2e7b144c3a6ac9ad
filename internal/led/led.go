package led

// Sink abstracts the LED output (SPI hardware, console preview, simulation).
type Sink interface {
	// Write pushes an RGB frame. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Sim accepts every frame and does nothing. Used when no hardware is present.
type Sim struct{}

func NewSim() *Sim               { return &Sim{} }
func (*Sim) Write([]byte) error  { return nil }
func (*Sim) Close() error        { return nil }

// Void is the degraded sink the engine falls back to after repeated hardware
// write failures. Identical to Sim, but kept distinct so logs and stats can
// tell "configured for simulation" from "gave up on hardware".
type Void struct{}

func (*Void) Write([]byte) error { return nil }
func (*Void) Close() error       { return nil }
