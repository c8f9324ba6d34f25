package ui

import (
	"github.com/gordonklaus/portaudio"
	"github.com/mjstead/nescore/nes"
)

// Audio bridges the emulator's pulled AudioSample buffer to a
// portaudio push-callback stream via a ring channel.
type Audio struct {
	stream         *portaudio.Stream
	outputChannels int
	channel        chan float32
}

func NewAudio() *Audio {
	return &Audio{channel: make(chan float32, 8192)}
}

// Start opens the default output device with its default
// high-latency parameters and begins draining the emulator's samples
// into the portaudio callback in the background. The emulator's
// sample rate, fixed when it was constructed, is not changed here.
func (a *Audio) Start(emu *nes.Emulator) error {
	api, err := portaudio.DefaultHostApi()
	if err != nil {
		return err
	}
	parameters := portaudio.HighLatencyParameters(nil, api.DefaultOutputDevice)
	stream, err := portaudio.OpenStream(parameters, a.callback)
	if err != nil {
		return err
	}
	a.stream = stream
	a.outputChannels = parameters.Output.Channels

	go a.pump(emu)

	return stream.Start()
}

func (a *Audio) pump(emu *nes.Emulator) {
	for {
		for _, s := range emu.AudioSample() {
			a.channel <- s
		}
	}
}

func (a *Audio) Stop() error {
	return a.stream.Close()
}

func (a *Audio) callback(out []float32) {
	var sample float32
	for i := range out {
		if i%a.outputChannels == 0 {
			select {
			case sample = <-a.channel:
			default:
				sample = 0
			}
		}
		out[i] = sample
	}
}
