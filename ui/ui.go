// Package ui hosts the emulator core behind a Fyne window and a
// portaudio output stream. Neither belongs inside the core: the
// window pumps frames out of Emulator.Framebuffer and keystrokes into
// Emulator.Controller, and the audio stream drains
// Emulator.AudioSample — the core never touches either.
package ui

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne"
	"fyne.io/fyne/app"
	"fyne.io/fyne/canvas"
	"fyne.io/fyne/driver/desktop"

	"github.com/mjstead/nescore/nes"
)

// keyToButton maps a WASD+IJKU layout onto the standard NES pad.
func keyToButton(name fyne.KeyName) byte {
	switch name {
	case "J":
		return nes.ButtonA
	case "K":
		return nes.ButtonB
	case "U":
		return nes.ButtonSelect
	case "I":
		return nes.ButtonStart
	case "W":
		return nes.ButtonUp
	case "S":
		return nes.ButtonDown
	case "A":
		return nes.ButtonLeft
	case "D":
		return nes.ButtonRight
	}
	return 0
}

var pad1 byte

// displayScale is the integer pixel-doubling ratio the 256x240
// framebuffer is presented at; the NES's native resolution is too
// small to be usable on a modern display unscaled.
const displayScale = 2

// OpenWindow creates a Fyne window scaled to displayScale, starts the
// emulation loop and audio stream, and blocks until the window is
// closed.
func OpenWindow(emu *nes.Emulator) {
	myApp := app.New()
	w := myApp.NewWindow("nescore")
	w.Resize(fyne.NewSize(256*displayScale, 240*displayScale))
	myCanvas := w.Canvas()

	go RunView(emu)

	// Audio is best-effort: a headless box without a sound device
	// should still drive the core visually.
	_ = NewAudio().Start(emu)

	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if bit := keyToButton(ev.Name); bit != 0 {
				pad1 |= bit
				emu.Controller(0, pad1)
			}
		})
		deskCanvas.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if bit := keyToButton(ev.Name); bit != 0 {
				pad1 &^= bit
				emu.Controller(0, pad1)
			}
		})
	}

	go changeContent(myCanvas, emu)

	w.ShowAndRun()
}

func changeContent(can fyne.Canvas, emu *nes.Emulator) {
	for {
		time.Sleep(16 * time.Millisecond)
		frame := frameToImage(emu.Framebuffer())
		scaled := Resize(frame, 256, 240, displayScale)
		can.SetContent(canvas.NewImageFromImage(scaled))
	}
}

func frameToImage(fb *[256 * 240]nes.RGB) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 256, 240))
	for y := 0; y < 240; y++ {
		for x := 0; x < 256; x++ {
			c := fb[y*256+x]
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		}
	}
	return img
}
