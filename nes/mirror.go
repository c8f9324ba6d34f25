package nes

// mirrorLookup maps a MirrorMode and a logical nametable index (0-3,
// selected by the high bits of a PPU address within $2000-$2FFF) to
// the physical 1 KiB bank it folds onto.
var mirrorLookup = [...][4]uint16{
	MirrorHardware:   {0, 1, 2, 3},
	MirrorHorizontal: {0, 0, 1, 1},
	MirrorVertical:   {0, 1, 0, 1},
	MirrorSingleLo:   {0, 0, 0, 0},
	MirrorSingleHi:   {1, 1, 1, 1},
}

// mirrorAddress folds a $2000-$2FFF PPU address down to a physical
// offset into the PPU's 2 KiB internal nametable RAM.
func mirrorAddress(mode MirrorMode, addr uint16) uint16 {
	addr = (addr - 0x2000) % 0x1000
	table := addr / 0x0400
	offset := addr % 0x0400
	return mirrorLookup[mode][table]*0x0400 + offset
}
