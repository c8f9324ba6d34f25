package nes

import "sync"

// Emulator is the host-facing aggregate: a parsed cartridge plus a
// running Bus, guarded by a mutex so a host that ticks the machine
// from one goroutine while polling audio/video from another does not
// need its own locking discipline.
type Emulator struct {
	mu   sync.Mutex
	cart *Cartridge
	bus  *Bus
}

// New parses an iNES image and constructs a machine ready to run.
// sampleRate is the host's audio output rate; AudioSample drains
// samples resampled to it.
func New(romData []byte, sampleRate float64) (*Emulator, error) {
	cart, err := ParseINES(romData)
	if err != nil {
		return nil, err
	}
	bus := NewBus(cart, sampleRate)
	bus.cpu.Trace = discardLogger{}
	return &Emulator{cart: cart, bus: bus}, nil
}

// SetLogger installs a Logger that receives illegal-opcode notices as
// the CPU decodes them. Passing nil restores the default, which
// discards them.
func (e *Emulator) SetLogger(l Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = discardLogger{}
	}
	e.bus.cpu.Trace = l
}

// Reset performs a soft reset, equivalent to the console's reset
// button.
func (e *Emulator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bus.Reset()
}

// Tick advances the machine by one master-clock cycle (one PPU dot)
// and reports whether that tick completed a frame.
func (e *Emulator) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bus.Clock()
}

// DriveOneFrame runs the machine until the next frame is fully
// composited.
func (e *Emulator) DriveOneFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bus.DriveOneFrame()
}

// Framebuffer returns a copy of the 256x240 framebuffer. Taken between
// frames (for example after DriveOneFrame) it is the most recently
// completed frame; taken mid-frame after Tick, the lines not yet
// redrawn still hold the previous frame.
func (e *Emulator) Framebuffer() *[256 * 240]RGB {
	e.mu.Lock()
	defer e.mu.Unlock()
	fb := *e.bus.ppu.Framebuffer()
	return &fb
}

// SampleRate is the audio rate this Emulator was constructed with.
func (e *Emulator) SampleRate() float64 {
	return e.bus.apu.sampleRate
}

// AudioSample drains whatever audio samples have accumulated since
// the last call.
func (e *Emulator) AudioSample() []float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bus.apu.DrainSamples()
}

// Controller sets the 8-bit button state (see the Button* constants)
// for port 0 or 1.
func (e *Emulator) Controller(port int, state byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bus.SetController(port, state)
}

// SaveState snapshots the entire machine to a byte slice.
func (e *Emulator) SaveState() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return saveState(e.bus)
}

// LoadState restores a snapshot previously produced by SaveState. On
// failure the machine is left unmodified.
func (e *Emulator) LoadState(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	backup, err := saveState(e.bus)
	if err != nil {
		return err
	}
	if err := loadState(e.bus, data); err != nil {
		_ = loadState(e.bus, backup)
		return err
	}
	return nil
}
