package nes

// cpuClockHz is the NTSC CPU clock rate the APU's sample-rate
// accumulator and audio timing are derived from.
const cpuClockHz float64 = 1789773.0

// dmaState tracks an in-flight $4014 OAM DMA transfer.
type dmaState struct {
	active     bool
	page       byte
	addr       byte
	data       byte
	readPhase  bool
	waitCycles int
}

// Bus is the master-clock hub wiring the CPU, PPU, APU, 2 KiB of
// system RAM, both controller ports, and the cartridge together. It
// implements cpuBus, ppuBus and apuBus so each component reaches the
// rest of the machine only through the narrow interface it needs.
type Bus struct {
	cpu  *CPU
	ppu  *PPU
	apu  *APU
	cart *Cartridge

	ram  [2048]byte
	ctrl [2]controller

	masterClock   uint64
	cpuCycleCount uint64
	dma           dmaState
}

// NewBus wires a freshly parsed cartridge into a running machine and
// resets it to power-on state.
func NewBus(cart *Cartridge, sampleRate float64) *Bus {
	b := &Bus{cart: cart}
	b.cpu = newCPU(b)
	b.ppu = newPPU(b)
	b.apu = newAPU(b, sampleRate)
	b.Reset()
	return b
}

func (b *Bus) Reset() {
	b.cart.Reset()
	b.cpu.Reset()
	b.ppu.Reset()
	b.ram = [2048]byte{}
	b.dma = dmaState{}
	b.masterClock = 0
	b.cpuCycleCount = 0
}

// Clock advances the machine by one PPU dot (one master-clock tick).
// The CPU and APU run at a third of that rate, so their Clock methods
// only fire every third call here.
func (b *Bus) Clock() (frameComplete bool) {
	beforeFrame := b.ppu.Frame
	b.ppu.Clock()

	if b.masterClock%3 == 0 {
		if b.dma.active {
			b.clockDMA()
		} else {
			b.cpu.Clock()
		}
		b.apu.Clock()
		b.cpu.SetIRQLine(b.cart.IRQState() || b.apu.irqPending)
		b.cpuCycleCount++
	}

	b.masterClock++
	return b.ppu.Frame != beforeFrame
}

// DriveOneFrame clocks the machine until a full frame has been
// composited into the PPU's framebuffer.
func (b *Bus) DriveOneFrame() {
	for !b.Clock() {
	}
}

func (b *Bus) startDMA(page byte) {
	b.dma = dmaState{active: true, page: page}
	if b.cpuCycleCount%2 == 1 {
		b.dma.waitCycles = 2
	} else {
		b.dma.waitCycles = 1
	}
}

// clockDMA runs one CPU-cycle slot's worth of OAM DMA work: an
// initial alignment wait, then alternating read/write halves that
// copy one byte per two CPU cycles.
func (b *Bus) clockDMA() {
	if b.dma.waitCycles > 0 {
		b.dma.waitCycles--
		return
	}
	if !b.dma.readPhase {
		b.dma.data = b.CPURead(uint16(b.dma.page)<<8 | uint16(b.dma.addr))
		b.dma.readPhase = true
		return
	}
	b.ppu.WriteOAMDMAByte(b.dma.data)
	b.dma.readPhase = false
	b.dma.addr++
	if b.dma.addr == 0 {
		b.dma.active = false
	}
}

// CPURead implements the CPU's $0000-$FFFF memory map.
func (b *Bus) CPURead(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return b.ram[addr%0x0800]
	case addr < 0x4000:
		return b.ppu.ReadRegister(0x2000 + addr%8)
	case addr == 0x4015:
		return b.apu.ReadRegister(addr)
	case addr == 0x4016:
		return b.ctrl[0].Read()
	case addr == 0x4017:
		return b.ctrl[1].Read()
	case addr >= 0x4020:
		return b.cart.CPURead(addr)
	default:
		return 0
	}
}

func (b *Bus) CPUWrite(addr uint16, data byte) {
	switch {
	case addr < 0x2000:
		b.ram[addr%0x0800] = data
	case addr < 0x4000:
		b.ppu.WriteRegister(0x2000+addr%8, data)
	case addr == 0x4014:
		b.startDMA(data)
	case addr == 0x4016:
		b.ctrl[0].Write(data)
		b.ctrl[1].Write(data)
	case addr < 0x4018:
		b.apu.WriteRegister(addr, data)
	case addr >= 0x4020:
		b.cart.CPUWrite(addr, data)
	}
}

func (b *Bus) PPURead(addr uint16) byte         { return b.cart.PPURead(addr) }
func (b *Bus) PPUWrite(addr uint16, data byte)  { b.cart.PPUWrite(addr, data) }
func (b *Bus) MirrorMode() MirrorMode           { return b.cart.MirrorMode() }
func (b *Bus) MapperScanlineTick()              { b.cart.ScanlineTick() }
func (b *Bus) RaiseNMI()                        { b.cpu.RaiseNMI() }
func (b *Bus) SetIRQLine(asserted bool)         { b.cpu.SetIRQLine(asserted) }

// SetController updates the shadow input byte for controller port 0
// or 1.
func (b *Bus) SetController(port int, state byte) {
	b.ctrl[port].SetState(state)
}

func (b *Bus) Serialize() []byte {
	buf := make([]byte, 0, 32+len(b.ram))
	buf = append(buf, byte(b.masterClock), byte(b.masterClock>>8), byte(b.masterClock>>16), byte(b.masterClock>>24),
		byte(b.masterClock>>32), byte(b.masterClock>>40), byte(b.masterClock>>48), byte(b.masterClock>>56))
	buf = append(buf, byte(b.cpuCycleCount), byte(b.cpuCycleCount>>8), byte(b.cpuCycleCount>>16), byte(b.cpuCycleCount>>24),
		byte(b.cpuCycleCount>>32), byte(b.cpuCycleCount>>40), byte(b.cpuCycleCount>>48), byte(b.cpuCycleCount>>56))
	buf = append(buf, boolByte(b.dma.active), b.dma.page, b.dma.addr, b.dma.data, boolByte(b.dma.readPhase), byte(b.dma.waitCycles))
	buf = append(buf, b.ram[:]...)
	buf = append(buf, b.ctrl[0].Serialize()...)
	buf = append(buf, b.ctrl[1].Serialize()...)
	return buf
}

func (b *Bus) Deserialize(data []byte) error {
	need := 8 + 8 + 6 + len(b.ram) + 3 + 3
	if len(data) != need {
		return ErrCorruptState
	}
	i := 0
	readByte := func() byte { v := data[i]; i++; return v }
	var master, cpuCycles uint64
	for shift := 0; shift < 64; shift += 8 {
		master |= uint64(readByte()) << shift
	}
	for shift := 0; shift < 64; shift += 8 {
		cpuCycles |= uint64(readByte()) << shift
	}
	b.masterClock = master
	b.cpuCycleCount = cpuCycles
	b.dma.active = readByte() != 0
	b.dma.page = readByte()
	b.dma.addr = readByte()
	b.dma.data = readByte()
	b.dma.readPhase = readByte() != 0
	b.dma.waitCycles = int(readByte())
	copy(b.ram[:], data[i:i+len(b.ram)])
	i += len(b.ram)
	if err := b.ctrl[0].Deserialize(data[i : i+3]); err != nil {
		return err
	}
	i += 3
	return b.ctrl[1].Deserialize(data[i : i+3])
}
