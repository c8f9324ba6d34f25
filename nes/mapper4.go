package nes

// mapper4 implements M4 (MMC3): eight bank-select registers addressed
// in even/odd pairs across four $2000 windows, PRG/CHR bank modes,
// CHR-address inversion, and a scanline IRQ counter driven by the PPU
// at dot 260 of rendering-enabled scanlines.
type mapper4 struct {
	prgBanks int
	chrBanks int
	chrRAM   bool

	regIndex  byte
	registers [8]byte
	prgMode   byte
	chrMode   byte

	reload     byte
	timerValue byte
	irqEnable  bool
	irqPending bool

	prgOffsets [4]int
	chrOffsets [8]int

	mirror MirrorMode
	sram   [0x2000]byte
}

func newMapper4(prgBanks, chrBanks int, mirror MirrorMode) *mapper4 {
	m := &mapper4{prgBanks: prgBanks, chrBanks: chrBanks, chrRAM: chrBanks == 0, mirror: mirror}
	m.prgOffsets[0] = m.getPrgOffset(0)
	m.prgOffsets[1] = m.getPrgOffset(1)
	m.prgOffsets[2] = m.getPrgOffset(-2)
	m.prgOffsets[3] = m.getPrgOffset(-1)
	return m
}

// ScanlineTick drives the MMC3 IRQ counter: reload-then-decrement,
// firing on the transition through zero unless IRQs are disabled.
func (m *mapper4) ScanlineTick() {
	if m.timerValue == 0 {
		m.timerValue = m.reload
	} else {
		m.timerValue--
		if m.timerValue == 0 && m.irqEnable {
			m.irqPending = true
		}
	}
}

func (m *mapper4) setBankSelect(value byte) {
	m.regIndex = value & 7
	m.prgMode = (value >> 6) & 1
	m.chrMode = (value >> 7) & 1
	m.calculateBank()
}

func (m *mapper4) setBankData(value byte) {
	m.registers[m.regIndex] = value
	m.calculateBank()
}

func (m *mapper4) setMirroring(value byte) {
	if value&1 != 0 {
		m.mirror = MirrorHorizontal
	} else {
		m.mirror = MirrorVertical
	}
}

func (m *mapper4) setIRQLatch(value byte) { m.reload = value }
func (m *mapper4) setIRQReload()          { m.timerValue = 0 }
func (m *mapper4) setIRQDisable()         { m.irqEnable = false; m.irqPending = false }
func (m *mapper4) setIRQEnable()          { m.irqEnable = true }

// writeRegister dispatches the four $2000-sized windows; within each,
// even addresses hit the first register of the pair and odd addresses
// the second.
func (m *mapper4) writeRegister(addr uint16, value byte) {
	even := addr%2 == 0
	switch {
	case addr <= 0x9FFF:
		if even {
			m.setBankSelect(value)
		} else {
			m.setBankData(value)
		}
	case addr <= 0xBFFF:
		if even {
			m.setMirroring(value)
		}
		// odd: PRG-RAM protect, not modelled.
	case addr <= 0xDFFF:
		if even {
			m.setIRQLatch(value)
		} else {
			m.setIRQReload()
		}
	default:
		if even {
			m.setIRQDisable()
		} else {
			m.setIRQEnable()
		}
	}
}

func (m *mapper4) getPrgOffset(value int) int {
	if value >= 0x80 {
		value -= 0x100
	}
	value %= m.prgBanks * 2
	if value < 0 {
		value += m.prgBanks * 2
	}
	return value * 0x2000
}

func (m *mapper4) getChrOffset(value int) int {
	banks := m.chrBanks * 8
	if banks == 0 {
		banks = 8
	}
	if value >= 0x80 {
		value -= 0x100
	}
	value %= banks
	if value < 0 {
		value += banks
	}
	return value * 0x0400
}

func (m *mapper4) calculateBank() {
	if m.prgMode == 0 {
		m.prgOffsets[0] = m.getPrgOffset(int(m.registers[6]))
		m.prgOffsets[1] = m.getPrgOffset(int(m.registers[7]))
		m.prgOffsets[2] = m.getPrgOffset(-2)
		m.prgOffsets[3] = m.getPrgOffset(-1)
	} else {
		m.prgOffsets[0] = m.getPrgOffset(-2)
		m.prgOffsets[1] = m.getPrgOffset(int(m.registers[7]))
		m.prgOffsets[2] = m.getPrgOffset(int(m.registers[6]))
		m.prgOffsets[3] = m.getPrgOffset(-1)
	}

	if m.chrMode == 0 {
		m.chrOffsets[0] = m.getChrOffset(int(m.registers[0]) & 0xFE)
		m.chrOffsets[1] = m.getChrOffset(int(m.registers[0]) | 0x01)
		m.chrOffsets[2] = m.getChrOffset(int(m.registers[1]) & 0xFE)
		m.chrOffsets[3] = m.getChrOffset(int(m.registers[1]) | 0x01)
		m.chrOffsets[4] = m.getChrOffset(int(m.registers[2]))
		m.chrOffsets[5] = m.getChrOffset(int(m.registers[3]))
		m.chrOffsets[6] = m.getChrOffset(int(m.registers[4]))
		m.chrOffsets[7] = m.getChrOffset(int(m.registers[5]))
	} else {
		m.chrOffsets[0] = m.getChrOffset(int(m.registers[2]))
		m.chrOffsets[1] = m.getChrOffset(int(m.registers[3]))
		m.chrOffsets[2] = m.getChrOffset(int(m.registers[4]))
		m.chrOffsets[3] = m.getChrOffset(int(m.registers[5]))
		m.chrOffsets[4] = m.getChrOffset(int(m.registers[0]) & 0xFE)
		m.chrOffsets[5] = m.getChrOffset(int(m.registers[0]) | 0x01)
		m.chrOffsets[6] = m.getChrOffset(int(m.registers[1]) & 0xFE)
		m.chrOffsets[7] = m.getChrOffset(int(m.registers[1]) | 0x01)
	}
}

func (m *mapper4) CPUMapRead(addr uint16) (uint32, bool) {
	switch {
	case addr >= 0x8000:
		bank := (addr - 0x8000) / 0x2000
		offset := (addr - 0x8000) % 0x2000
		return uint32(m.prgOffsets[bank]) + uint32(offset), true
	case addr >= 0x6000:
		return noMap, true
	}
	return 0, false
}

func (m *mapper4) CPUMapWrite(addr uint16, data byte) (uint32, bool) {
	switch {
	case addr >= 0x8000:
		m.writeRegister(addr, data)
		return noMap, true
	case addr >= 0x6000:
		m.sram[addr-0x6000] = data
		return noMap, true
	}
	return 0, false
}

func (m *mapper4) ReadDirect(addr uint16) byte {
	if addr >= 0x6000 && addr < 0x8000 {
		return m.sram[addr-0x6000]
	}
	return 0
}

func (m *mapper4) PPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	bank := addr / 0x0400
	offset := addr % 0x0400
	return uint32(m.chrOffsets[bank]) + uint32(offset), true
}

func (m *mapper4) PPUMapWrite(addr uint16, data byte) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if !m.chrRAM {
		return noMap, true
	}
	bank := addr / 0x0400
	offset := addr % 0x0400
	return uint32(m.chrOffsets[bank]) + uint32(offset), true
}

func (m *mapper4) Reset() {
	m.regIndex = 0
	m.registers = [8]byte{}
	m.prgMode = 0
	m.chrMode = 0
	m.reload = 0
	m.timerValue = 0
	m.irqEnable = false
	m.irqPending = false
	m.calculateBank()
}

func (m *mapper4) MirrorMode() MirrorMode { return m.mirror }
func (m *mapper4) IRQState() bool         { return m.irqPending }
func (m *mapper4) IRQClear()              { m.irqPending = false }

func (m *mapper4) Serialize() []byte {
	buf := make([]byte, 0, 1+4+8+1+1+1+1+2+len(m.sram))
	buf = append(buf, 1)
	buf = append(buf, m.regIndex, m.prgMode, m.chrMode, m.reload)
	buf = append(buf, m.registers[:]...)
	buf = append(buf, m.timerValue)
	if m.irqEnable {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	if m.irqPending {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, m.sram[:]...)
	return buf
}

func (m *mapper4) Deserialize(data []byte) error {
	const header = 1 + 4 + 8 + 1 + 1 + 1
	if len(data) != header+len(m.sram) {
		return ErrCorruptState
	}
	if data[0] != 1 {
		return ErrCorruptState
	}
	m.regIndex = data[1]
	m.prgMode = data[2]
	m.chrMode = data[3]
	m.reload = data[4]
	copy(m.registers[:], data[5:13])
	m.timerValue = data[13]
	m.irqEnable = data[14] != 0
	m.irqPending = data[15] != 0
	copy(m.sram[:], data[header:])
	m.calculateBank()
	return nil
}
