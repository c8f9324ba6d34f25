package nes

// buildINES assembles a minimal iNES image for the given mapper id
// with prgBanks x 16 KiB of PRG ROM (its reset vector always points
// at $8000) and chrBanks x 8 KiB of CHR ROM (0 for CHR RAM).
// horizontal selects flags6 bit 0.
func buildINES(mapperID byte, prgBanks, chrBanks int, horizontal bool) []byte {
	prg := make([]byte, prgBanks*prgBankSize)
	// The last 6 bytes of the last bank hold the NMI, reset and IRQ
	// vectors; point the reset vector ($FFFC/$FFFD) at the start of the
	// first bank ($8000).
	last := len(prg) - 6
	prg[last+2], prg[last+3] = 0x00, 0x80

	var chr []byte
	if chrBanks > 0 {
		chr = make([]byte, chrBanks*chrBankSize)
	}

	header := make([]byte, iNESHeaderSize)
	header[0], header[1], header[2], header[3] = 'N', 'E', 'S', 0x1A
	header[4] = byte(prgBanks)
	header[5] = byte(chrBanks)
	var flags6 byte
	if !horizontal {
		flags6 |= 0x01
	}
	flags6 |= (mapperID & 0x0F) << 4
	header[6] = flags6
	header[7] = mapperID & 0xF0

	out := append([]byte{}, header...)
	out = append(out, prg...)
	out = append(out, chr...)
	return out
}
