package nes

// mapper1 implements M1 (MMC1): a 5-bit serial shift register loaded
// one bit per CPU write to $8000-$FFFF. The fifth write copies the
// assembled value into one of four internal registers selected by the
// address range. 8 KiB of on-cartridge RAM is addressable at
// $6000-$7FFF; boards with a larger battery-backed PRG-RAM bank exist
// but aren't modelled here.
type mapper1 struct {
	prgBanks int
	chrBanks int
	chrRAM   bool

	shiftRegister byte
	ctrlRegister  byte
	prgMode       byte
	chrMode       byte
	chrBank0      byte
	chrBank1      byte
	prgBank       byte

	prgOffsets [2]int
	chrOffsets [2]int

	mirror MirrorMode
	sram   [0x2000]byte
}

func newMapper1(prgBanks, chrBanks int, mirror MirrorMode, sram []byte) *mapper1 {
	m := &mapper1{
		prgBanks: prgBanks,
		chrBanks: chrBanks,
		chrRAM:   chrBanks == 0,
		mirror:   mirror,
	}
	if len(sram) == len(m.sram) {
		copy(m.sram[:], sram)
	}
	m.shiftRegister = 0x10
	m.prgOffsets[1] = m.getPrgOffset(-1)
	return m
}

func (m *mapper1) writeRegister(addr uint16, value byte) {
	switch {
	case addr <= 0x9FFF:
		m.writeControl(value)
	case addr <= 0xBFFF:
		m.chrBank0 = value
		m.updateOffsets()
	case addr <= 0xDFFF:
		m.chrBank1 = value
		m.updateOffsets()
	default:
		m.prgBank = value & 0x0F
		m.updateOffsets()
	}
}

func (m *mapper1) writeControl(value byte) {
	m.ctrlRegister = value
	m.prgMode = (value >> 2) & 0x3
	m.chrMode = (value >> 4) & 1
	switch value & 0x3 {
	case 0:
		m.mirror = MirrorSingleLo
	case 1:
		m.mirror = MirrorSingleHi
	case 2:
		m.mirror = MirrorVertical
	case 3:
		m.mirror = MirrorHorizontal
	}
	m.updateOffsets()
}

func (m *mapper1) loadRegister(addr uint16, value byte) {
	if value&0x80 != 0 {
		m.shiftRegister = 0x10
		m.writeControl(m.ctrlRegister | 0x0C)
		return
	}
	complete := m.shiftRegister&1 == 1
	m.shiftRegister = (m.shiftRegister >> 1) | ((value & 1) << 4)
	if complete {
		m.writeRegister(addr, m.shiftRegister)
		m.shiftRegister = 0x10
	}
}

// getPrgOffset resolves a signed 16 KiB PRG bank index into a byte
// offset, wrapping negative values (-1 == last bank).
func (m *mapper1) getPrgOffset(value int) int {
	if value >= 0x80 {
		value -= 0x100
	}
	value %= m.prgBanks
	if value < 0 {
		value += m.prgBanks
	}
	return value * 0x4000
}

func (m *mapper1) getChrOffset(value int) int {
	banks := m.chrBanks * 2
	if banks == 0 {
		banks = 2
	}
	if value >= 0x80 {
		value -= 0x100
	}
	value %= banks
	if value < 0 {
		value += banks
	}
	return value * 0x1000
}

// PRG ROM bank mode: 0,1 switch 32 KiB ignoring the low bank bit;
// 2 fixes the first bank and switches the high 16 KiB;
// 3 fixes the last bank and switches the low 16 KiB.
// CHR ROM bank mode: 0 switches 8 KiB at a time; 1 switches two
// independent 4 KiB banks.
func (m *mapper1) updateOffsets() {
	switch m.prgMode {
	case 0, 1:
		m.prgOffsets[0] = m.getPrgOffset(int(m.prgBank & 0xFE))
		m.prgOffsets[1] = m.getPrgOffset(int(m.prgBank | 0x01))
	case 2:
		m.prgOffsets[0] = 0
		m.prgOffsets[1] = m.getPrgOffset(int(m.prgBank))
	case 3:
		m.prgOffsets[0] = m.getPrgOffset(int(m.prgBank))
		m.prgOffsets[1] = m.getPrgOffset(-1)
	}
	switch m.chrMode {
	case 0:
		m.chrOffsets[0] = m.getChrOffset(int(m.chrBank0 & 0xFE))
		m.chrOffsets[1] = m.getChrOffset(int(m.chrBank0 | 0x01))
	case 1:
		m.chrOffsets[0] = m.getChrOffset(int(m.chrBank0))
		m.chrOffsets[1] = m.getChrOffset(int(m.chrBank1))
	}
}

func (m *mapper1) CPUMapRead(addr uint16) (uint32, bool) {
	switch {
	case addr >= 0x8000:
		bank := (addr - 0x8000) / 0x4000
		offset := (addr - 0x8000) % 0x4000
		return uint32(m.prgOffsets[bank]) + uint32(offset), true
	case addr >= 0x6000:
		return noMap, true
	}
	return 0, false
}

func (m *mapper1) CPUMapWrite(addr uint16, data byte) (uint32, bool) {
	switch {
	case addr >= 0x8000:
		m.loadRegister(addr, data)
		return noMap, true
	case addr >= 0x6000:
		m.sram[addr-0x6000] = data
		return noMap, true
	}
	return 0, false
}

func (m *mapper1) ReadDirect(addr uint16) byte {
	if addr >= 0x6000 && addr < 0x8000 {
		return m.sram[addr-0x6000]
	}
	return 0
}

func (m *mapper1) PPUMapRead(addr uint16) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	bank := addr / 0x1000
	offset := addr % 0x1000
	return uint32(m.chrOffsets[bank]) + uint32(offset), true
}

func (m *mapper1) PPUMapWrite(addr uint16, data byte) (uint32, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	if !m.chrRAM {
		return noMap, true
	}
	bank := addr / 0x1000
	offset := addr % 0x1000
	return uint32(m.chrOffsets[bank]) + uint32(offset), true
}

func (m *mapper1) Reset() {
	m.shiftRegister = 0x10
	m.ctrlRegister = 0
	m.prgMode = 3
	m.chrMode = 0
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
	m.updateOffsets()
}

func (m *mapper1) MirrorMode() MirrorMode { return m.mirror }
func (m *mapper1) IRQState() bool         { return false }
func (m *mapper1) IRQClear()              {}
func (m *mapper1) ScanlineTick()          {}

func (m *mapper1) Serialize() []byte {
	buf := make([]byte, 0, 1+7+len(m.sram))
	buf = append(buf, 1) // format version
	buf = append(buf, m.shiftRegister, m.ctrlRegister, m.prgMode, m.chrMode,
		m.chrBank0, m.chrBank1, m.prgBank)
	buf = append(buf, m.sram[:]...)
	return buf
}

func (m *mapper1) Deserialize(data []byte) error {
	if len(data) != 1+7+len(m.sram) {
		return ErrCorruptState
	}
	if data[0] != 1 {
		return ErrCorruptState
	}
	m.shiftRegister = data[1]
	m.prgMode = data[3]
	m.chrMode = data[4]
	m.chrBank0 = data[5]
	m.chrBank1 = data[6]
	m.prgBank = data[7]
	m.writeControl(data[2])
	copy(m.sram[:], data[8:])
	return nil
}
