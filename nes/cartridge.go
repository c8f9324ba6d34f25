package nes

import "encoding/binary"

const (
	iNESHeaderSize = 16
	trainerSize    = 512
	prgBankSize    = 16 * 1024
	chrBankSize    = 8 * 1024
)

// Header is the decoded iNES/NES 2.0 header.
type Header struct {
	PRGBanks int
	CHRBanks int
	Mapper   byte
	Mirror   MirrorMode
	Battery  bool
	HasTrainer bool
	NES20    bool
}

// Cartridge owns the PRG/CHR backing stores and the Mapper that
// translates CPU/PPU addresses into offsets within them.
type Cartridge struct {
	Header  Header
	PRG     []byte
	CHR     []byte
	Trainer []byte
	mapper  Mapper
}

// ParseINES decodes a 16-byte-header iNES (or NES 2.0 size-extended)
// image, validates the magic, and constructs the mapper named by the
// header. Only mapper ids {0,1,2,4} are supported.
func ParseINES(data []byte) (*Cartridge, error) {
	if len(data) < iNESHeaderSize {
		return nil, ErrInvalidRom
	}
	if data[0] != 'N' || data[1] != 'E' || data[2] != 'S' || data[3] != 0x1A {
		return nil, ErrInvalidRom
	}

	prgBanks := int(data[4])
	chrBanks := int(data[5])
	flags6 := data[6]
	flags7 := data[7]
	flags8 := data[8]

	h := Header{}
	if flags6&0x01 != 0 {
		h.Mirror = MirrorVertical
	} else {
		h.Mirror = MirrorHorizontal
	}
	h.Battery = flags6&0x02 != 0
	h.HasTrainer = flags6&0x04 != 0
	h.Mapper = (flags6 >> 4) | (flags7 & 0xF0)
	h.NES20 = flags7&0x0C == 0x08

	if h.NES20 {
		prgBanks |= (int(flags8>>5) & 0x07) << 8
		chrBanks |= (int(flags8) & 0x1F) << 8
	}
	h.PRGBanks = prgBanks
	h.CHRBanks = chrBanks

	offset := iNESHeaderSize
	var trainer []byte
	if h.HasTrainer {
		if len(data) < offset+trainerSize {
			return nil, ErrInvalidRom
		}
		trainer = make([]byte, trainerSize)
		copy(trainer, data[offset:offset+trainerSize])
		offset += trainerSize
	}

	prgSize := prgBanks * prgBankSize
	if len(data) < offset+prgSize {
		return nil, ErrInvalidRom
	}
	prg := make([]byte, prgSize)
	copy(prg, data[offset:offset+prgSize])
	offset += prgSize

	var chr []byte
	if chrBanks == 0 {
		chr = make([]byte, chrBankSize)
	} else {
		chrSize := chrBanks * chrBankSize
		if len(data) < offset+chrSize {
			return nil, ErrInvalidRom
		}
		chr = make([]byte, chrSize)
		copy(chr, data[offset:offset+chrSize])
	}

	m, err := newMapper(h.Mapper, prgBanks, chrBanks, h.Mirror, nil)
	if err != nil {
		return nil, err
	}

	return &Cartridge{Header: h, PRG: prg, CHR: chr, Trainer: trainer, mapper: m}, nil
}

func (c *Cartridge) Reset() {
	c.mapper.Reset()
}

func (c *Cartridge) MirrorMode() MirrorMode {
	return c.mapper.MirrorMode()
}

func (c *Cartridge) IRQState() bool {
	return c.mapper.IRQState()
}

func (c *Cartridge) IRQClear() {
	c.mapper.IRQClear()
}

func (c *Cartridge) ScanlineTick() {
	c.mapper.ScanlineTick()
}

func (c *Cartridge) CPURead(addr uint16) byte {
	offset, ok := c.mapper.CPUMapRead(addr)
	if !ok {
		return 0
	}
	if offset == noMap {
		return c.mapper.ReadDirect(addr)
	}
	return c.PRG[offset]
}

func (c *Cartridge) CPUWrite(addr uint16, data byte) {
	c.mapper.CPUMapWrite(addr, data)
}

func (c *Cartridge) PPURead(addr uint16) byte {
	offset, ok := c.mapper.PPUMapRead(addr)
	if !ok {
		return 0
	}
	if offset == noMap {
		return c.mapper.ReadDirect(addr)
	}
	return c.CHR[offset]
}

func (c *Cartridge) PPUWrite(addr uint16, data byte) {
	offset, ok := c.mapper.PPUMapWrite(addr, data)
	if !ok || offset == noMap {
		return
	}
	c.CHR[offset] = data
}

// Bytes reconstructs the raw iNES image this cartridge was parsed
// from (header, trainer, PRG, CHR), satisfying the round-trip
// invariant that ParseINES(cart.Bytes()) reproduces the same PRG/CHR.
func (c *Cartridge) Bytes() []byte {
	out := make([]byte, iNESHeaderSize)
	out[0], out[1], out[2], out[3] = 'N', 'E', 'S', 0x1A
	out[4] = byte(c.Header.PRGBanks)
	out[5] = byte(c.Header.CHRBanks)

	var flags6 byte
	if c.Header.Mirror == MirrorVertical {
		flags6 |= 0x01
	}
	if c.Header.Battery {
		flags6 |= 0x02
	}
	if c.Header.HasTrainer {
		flags6 |= 0x04
	}
	flags6 |= (c.Header.Mapper & 0x0F) << 4
	out[6] = flags6
	out[7] = c.Header.Mapper & 0xF0

	if c.Header.HasTrainer {
		out = append(out, c.Trainer...)
	}
	out = append(out, c.PRG...)
	if c.Header.CHRBanks != 0 {
		out = append(out, c.CHR...)
	}
	return out
}

// Serialize captures the header, trainer, and PRG/CHR backing stores
// themselves, independently of the mapper's own Serialize (which
// persists only its registers and SRAM). Without this, CHR-RAM
// content written at runtime — and any other in-place mutation of
// PRG/CHR — would be silently dropped by LoadState.
func (c *Cartridge) Serialize() []byte {
	buf := make([]byte, 0, 16+len(c.Trainer)+len(c.PRG)+len(c.CHR))
	var hdr [7]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(c.Header.PRGBanks))
	binary.LittleEndian.PutUint16(hdr[2:4], uint16(c.Header.CHRBanks))
	hdr[4] = c.Header.Mapper
	hdr[5] = byte(c.Header.Mirror)
	hdr[6] = boolByte(c.Header.Battery)<<2 | boolByte(c.Header.HasTrainer)<<1 | boolByte(c.Header.NES20)
	buf = append(buf, hdr[:]...)

	appendBlob := func(b []byte) {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, b...)
	}
	appendBlob(c.Trainer)
	appendBlob(c.PRG)
	appendBlob(c.CHR)
	return buf
}

func (c *Cartridge) Deserialize(data []byte) error {
	if len(data) < 7 {
		return ErrCorruptState
	}
	c.Header.PRGBanks = int(binary.LittleEndian.Uint16(data[0:2]))
	c.Header.CHRBanks = int(binary.LittleEndian.Uint16(data[2:4]))
	c.Header.Mapper = data[4]
	c.Header.Mirror = MirrorMode(data[5])
	flags := data[6]
	c.Header.Battery = flags&0x04 != 0
	c.Header.HasTrainer = flags&0x02 != 0
	c.Header.NES20 = flags&0x01 != 0
	data = data[7:]

	readBlob := func() ([]byte, error) {
		if len(data) < 4 {
			return nil, ErrCorruptState
		}
		n := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < n {
			return nil, ErrCorruptState
		}
		blob := make([]byte, n)
		copy(blob, data[:n])
		data = data[n:]
		return blob, nil
	}

	trainer, err := readBlob()
	if err != nil {
		return err
	}
	prg, err := readBlob()
	if err != nil {
		return err
	}
	chr, err := readBlob()
	if err != nil {
		return err
	}
	if len(data) != 0 {
		return ErrCorruptState
	}

	c.Trainer = trainer
	c.PRG = prg
	c.CHR = chr
	return nil
}
