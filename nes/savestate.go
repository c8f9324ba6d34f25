package nes

import "encoding/binary"

// saveStateVersion guards the on-disk layout; LoadState refuses to
// decode a snapshot written by an incompatible version rather than
// guess at a migration.
const saveStateVersion = 1

// saveState concatenates each component's own Serialize blob behind a
// length prefix, in a fixed order: cartridge (header, trainer,
// PRG/CHR backing stores), mapper, CPU, PPU, APU, then the bus (which
// folds in system RAM, DMA state, and both controllers).
func saveState(b *Bus) ([]byte, error) {
	var out []byte
	out = append(out, saveStateVersion)

	segments := [][]byte{
		b.cart.Serialize(),
		b.cart.mapper.Serialize(),
		b.cpu.serializeCPU(),
		b.ppu.Serialize(),
		b.apu.Serialize(),
		b.Serialize(),
	}
	for _, seg := range segments {
		var lenBuf [4]byte
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(seg)))
		out = append(out, lenBuf[:]...)
		out = append(out, seg...)
	}
	return out, nil
}

func loadState(b *Bus, data []byte) error {
	if len(data) < 1 || data[0] != saveStateVersion {
		return ErrCorruptState
	}
	data = data[1:]

	readSegment := func() ([]byte, error) {
		if len(data) < 4 {
			return nil, ErrCorruptState
		}
		n := binary.LittleEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < n {
			return nil, ErrCorruptState
		}
		seg := data[:n]
		data = data[n:]
		return seg, nil
	}

	cartBlob, err := readSegment()
	if err != nil {
		return err
	}
	mapperBlob, err := readSegment()
	if err != nil {
		return err
	}
	cpuBlob, err := readSegment()
	if err != nil {
		return err
	}
	ppuBlob, err := readSegment()
	if err != nil {
		return err
	}
	apuBlob, err := readSegment()
	if err != nil {
		return err
	}
	busBlob, err := readSegment()
	if err != nil {
		return err
	}
	if len(data) != 0 {
		return ErrCorruptState
	}

	if err := b.cart.Deserialize(cartBlob); err != nil {
		return err
	}
	if err := b.cart.mapper.Deserialize(mapperBlob); err != nil {
		return err
	}
	if err := b.cpu.deserializeCPU(cpuBlob); err != nil {
		return err
	}
	if err := b.ppu.Deserialize(ppuBlob); err != nil {
		return err
	}
	if err := b.apu.Deserialize(apuBlob); err != nil {
		return err
	}
	return b.Deserialize(busBlob)
}
