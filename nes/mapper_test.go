package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper0MirrorsSingleBank(t *testing.T) {
	m := newMapper0(1, 1, MirrorHorizontal)
	loOff, ok := m.CPUMapRead(0x8000)
	require.True(t, ok)
	hiOff, ok := m.CPUMapRead(0xC000)
	require.True(t, ok)
	assert.Equal(t, loOff, hiOff, "a single 16 KiB PRG bank must mirror into both halves of $8000-$FFFF")
}

func TestMapper1ShiftRegisterResetOnHighBitWrite(t *testing.T) {
	m := newMapper1(2, 1, MirrorHorizontal, nil)
	m.loadRegister(0x8000, 0x01)
	m.loadRegister(0x8000, 0x00)
	assert.NotEqual(t, byte(0x10), m.shiftRegister, "shift register should have advanced past its initial value")

	m.loadRegister(0x8000, 0x80) // bit 7 set: reset
	assert.EqualValues(t, 0x10, m.shiftRegister)
	assert.EqualValues(t, 3, m.prgMode, "a reset write also forces PRG mode 3 (fix last bank)")
}

func TestMapper1FiveWriteSequenceLoadsRegister(t *testing.T) {
	m := newMapper1(2, 1, MirrorHorizontal, nil)
	// Write the control register (0x8000-0x9FFF) with value 0b00011,
	// one bit per write, LSB first.
	value := byte(0b00011)
	for i := 0; i < 5; i++ {
		bit := (value >> i) & 1
		m.loadRegister(0x8000, bit)
	}
	assert.Equal(t, MirrorHorizontal, m.mirror)
}

func TestMapper1SRAMPersistsAcrossReads(t *testing.T) {
	m := newMapper1(2, 1, MirrorHorizontal, nil)
	off, ok := m.CPUMapWrite(0x6000, 0x77)
	require.True(t, ok)
	assert.Equal(t, noMap, off)
	assert.EqualValues(t, 0x77, m.ReadDirect(0x6000))
}

func TestMapper2SwitchesLowBankFixesHighBank(t *testing.T) {
	m := newMapper2(4, 0, MirrorVertical)
	lastBankOffset, _ := m.CPUMapRead(0xC000)

	m.CPUMapWrite(0x8000, 2)
	loOffset, _ := m.CPUMapRead(0x8000)
	assert.EqualValues(t, 2*0x4000, loOffset)

	fixedOffset, _ := m.CPUMapRead(0xC000)
	assert.Equal(t, lastBankOffset, fixedOffset, "the $C000-$FFFF window never moves")
}

func TestMapper4IRQFiresOnReloadTransitionThroughZero(t *testing.T) {
	m := newMapper4(8, 0, MirrorHorizontal)
	m.setIRQLatch(4)
	m.setIRQReload()
	m.setIRQEnable()

	// First tick reloads timerValue from 0 to the latch value; it then
	// takes `reload` further ticks to count down through zero.
	for i := 0; i < 5; i++ {
		m.ScanlineTick()
	}
	assert.True(t, m.IRQState())
}

func TestMapper4IRQDisableClearsPending(t *testing.T) {
	m := newMapper4(8, 0, MirrorHorizontal)
	m.setIRQLatch(1)
	m.setIRQReload()
	m.setIRQEnable()
	m.ScanlineTick()
	m.ScanlineTick()
	require.True(t, m.IRQState())

	m.setIRQDisable()
	assert.False(t, m.IRQState(), "$E000 (IRQ disable) must also acknowledge any pending IRQ")
}

func TestMapper4MirroringRegister(t *testing.T) {
	m := newMapper4(8, 0, MirrorHorizontal)
	m.setMirroring(0)
	assert.Equal(t, MirrorVertical, m.mirror)
	m.setMirroring(1)
	assert.Equal(t, MirrorHorizontal, m.mirror)
}

func TestMapperSerializeRoundTrip(t *testing.T) {
	m := newMapper1(2, 1, MirrorHorizontal, nil)
	m.CPUMapWrite(0x6000, 0x42)
	blob := m.Serialize()

	other := newMapper1(2, 1, MirrorHorizontal, nil)
	require.NoError(t, other.Deserialize(blob))
	assert.EqualValues(t, 0x42, other.ReadDirect(0x6000))
}
