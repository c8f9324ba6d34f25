package ui

import (
	"time"

	"github.com/mjstead/nescore/nes"
)

// RunView drives the emulator continuously, one frame at a time,
// until the process exits.
func RunView(emu *nes.Emulator) {
	for {
		start := time.Now()
		emu.DriveOneFrame()
		if elapsed := time.Since(start); elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
		}
	}
}

// frameInterval paces DriveOneFrame to 60 frames per second (close to
// NTSC's ~60.1 Hz refresh rate) instead of running flat-out.
const frameInterval = time.Second / 60
