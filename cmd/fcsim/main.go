package main

import (
	"fmt"
	"os"

	"github.com/mjstead/nescore/nes"
	"github.com/mjstead/nescore/ui"
)

// audioSampleRate is the fixed output rate the core resamples its
// internal audio to. The portaudio stream is opened with the output
// device's default parameters, not at this rate.
const audioSampleRate = 44100.0

func main() {
	if len(os.Args) <= 1 {
		fmt.Fprintln(os.Stderr, "usage: fcsim <rom.nes>")
		os.Exit(1)
	}

	romData, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "fcsim:", err)
		os.Exit(1)
	}

	emu, err := nes.New(romData, audioSampleRate)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fcsim:", err)
		os.Exit(1)
	}

	ui.OpenWindow(emu)
}
