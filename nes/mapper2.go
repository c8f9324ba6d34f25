package nes

// mapper2 implements M2 (UxROM): any CPU write to $8000-$FFFF selects
// the 16 KiB bank mapped at $8000-$BFFF; $C000-$FFFF is fixed to the
// last bank. CHR is always 8 KiB of RAM (UxROM carts have no CHR ROM).
type mapper2 struct {
	prgBanks int
	prgLo    int
	mirror   MirrorMode
}

func newMapper2(prgBanks, chrBanks int, mirror MirrorMode) *mapper2 {
	return &mapper2{prgBanks: prgBanks, mirror: mirror}
}

func (m *mapper2) CPUMapRead(addr uint16) (uint32, bool) {
	switch {
	case addr >= 0xC000:
		return uint32(m.prgBanks-1)*0x4000 + uint32(addr-0xC000), true
	case addr >= 0x8000:
		return uint32(m.prgLo)*0x4000 + uint32(addr-0x8000), true
	}
	return 0, false
}

func (m *mapper2) CPUMapWrite(addr uint16, data byte) (uint32, bool) {
	if addr >= 0x8000 {
		m.prgLo = int(data) % m.prgBanks
		return noMap, true
	}
	return 0, false
}

func (m *mapper2) PPUMapRead(addr uint16) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *mapper2) PPUMapWrite(addr uint16, data byte) (uint32, bool) {
	if addr < 0x2000 {
		return uint32(addr), true
	}
	return 0, false
}

func (m *mapper2) ReadDirect(addr uint16) byte { return 0 }

func (m *mapper2) Reset() {
	m.prgLo = 0
}

func (m *mapper2) MirrorMode() MirrorMode { return m.mirror }
func (m *mapper2) IRQState() bool         { return false }
func (m *mapper2) IRQClear()              {}
func (m *mapper2) ScanlineTick()          {}

func (m *mapper2) Serialize() []byte {
	return []byte{1, byte(m.prgLo)}
}

func (m *mapper2) Deserialize(data []byte) error {
	if len(data) < 2 {
		return ErrCorruptState
	}
	m.prgLo = int(data[1])
	return nil
}
