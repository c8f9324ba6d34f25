package nes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatBus is a 64 KiB flat address space satisfying cpuBus, used to
// exercise the CPU in isolation from the rest of the machine.
type flatBus struct {
	mem [65536]byte
}

func (b *flatBus) CPURead(addr uint16) byte        { return b.mem[addr] }
func (b *flatBus) CPUWrite(addr uint16, data byte) { b.mem[addr] = data }

func (b *flatBus) load(addr uint16, code ...byte) {
	copy(b.mem[addr:], code)
}

func (b *flatBus) setResetVector(addr uint16) {
	b.mem[vectorReset] = byte(addr)
	b.mem[vectorReset+1] = byte(addr >> 8)
}

// stepOneInstruction first drains any countdown still pending (such as
// the 8-cycle delay Reset primes), then clocks the CPU through exactly
// one instruction or interrupt until its countdown reaches zero again.
func stepOneInstruction(c *CPU) {
	for c.cycles != 0 {
		c.Clock()
	}
	c.Clock()
	for c.cycles != 0 {
		c.Clock()
	}
}

func TestBRKPushesReturnAddressPastSignatureByte(t *testing.T) {
	bus := &flatBus{}
	bus.load(0x8000, 0x00, 0x00) // BRK, then its discarded signature byte
	bus.load(0x9000, 0x40)       // RTI, at the IRQ vector target
	bus.mem[vectorIRQ] = 0x00
	bus.mem[vectorIRQ+1] = 0x90
	bus.setResetVector(0x8000)
	c := newCPU(bus)

	stepOneInstruction(c) // BRK
	assert.Equal(t, uint16(0x9000), c.PC, "BRK vectors through $FFFE")

	stepOneInstruction(c) // RTI
	assert.Equal(t, uint16(0x8002), c.PC, "BRK must push the PC past its discarded signature byte")
}

func TestCPUReset(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	c := newCPU(bus)

	assert.Equal(t, uint16(0x8000), c.PC)
	assert.EqualValues(t, 0xFD, c.SP)
	assert.EqualValues(t, 0, c.A)
	assert.EqualValues(t, 1, c.U)
	assert.EqualValues(t, 1, c.I)
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	// JMP ($30FF): real hardware reads the high byte from $3000, not
	// $3100, because the low-byte fetch doesn't carry into the page.
	bus.load(0x8000, 0x6C, 0xFF, 0x30)
	bus.mem[0x30FF] = 0x00
	bus.mem[0x3000] = 0x40 // same page; the bug reads the high byte here, giving PC=$4000
	bus.mem[0x3100] = 0x80 // next page; a carrying fetch would give PC=$8000, must NOT be used
	c := newCPU(bus)

	stepOneInstruction(c)

	assert.Equal(t, uint16(0x4000), c.PC, "indirect JMP must wrap the high-byte fetch within the same page")
}

func TestBranchPageCrossAddsCycle(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x80FD)
	// BEQ +2: the post-fetch PC ($80FF) plus the offset crosses into
	// the $8100 page.
	bus.load(0x80FD, 0xF0, 0x02)
	c := newCPU(bus)
	c.Z = 1

	c.execute()
	require.Equal(t, uint16(0x8101), c.PC)
	assert.EqualValues(t, 2+1+1, c.cycles, "taken branch across a page boundary costs base+1(taken)+1(page cross)")
}

func TestBranchSamePageNoPageCycle(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	bus.load(0x8000, 0xF0, 0x02) // BEQ +2, target $8004, same page
	c := newCPU(bus)
	c.Z = 1

	c.execute()
	assert.EqualValues(t, 2+1, c.cycles)
}

func TestADCSignedOverflow(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	c := newCPU(bus)
	c.A = 0x50
	c.C = 0
	bus.mem[0x00] = 0x50

	c.adc(&stepInfo{address: 0x00})

	assert.EqualValues(t, 0xA0, c.A)
	assert.EqualValues(t, 1, c.V, "0x50+0x50 overflows into negative, V must be set")
	assert.EqualValues(t, 0, c.C)
}

func TestSBCBorrow(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	c := newCPU(bus)
	c.A = 0x00
	c.C = 1 // no borrow going in
	bus.mem[0x00] = 0x01

	c.sbc(&stepInfo{address: 0x00})

	assert.EqualValues(t, 0xFF, c.A)
	assert.EqualValues(t, 0, c.C, "0 - 1 borrows, clearing carry")
}

func TestCycleDebitExecutesOncePerInstruction(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	bus.load(0x8000, 0xA9, 0x42, 0xA9, 0x43) // LDA #$42; LDA #$43
	c := newCPU(bus)
	for c.cycles != 0 { // drain the 8-cycle reset delay
		c.Clock()
	}

	c.Clock() // fetch+execute LDA #$42 (2 cycles), cycles now 1
	assert.EqualValues(t, 0x42, c.A)
	c.Clock() // cycles now 0, no new instruction executed yet
	assert.EqualValues(t, 0x42, c.A)
	c.Clock() // cycles==0 on entry -> fetch+execute LDA #$43
	assert.EqualValues(t, 0x43, c.A)
}

func TestOpcodeSizesAgreeWithModeSize(t *testing.T) {
	for op := 0; op < 256; op++ {
		mode := instructionModes[op]
		require.NotZerof(t, modeSize[mode], "opcode 0x%02X decodes to a zero-size mode", op)
	}
}

func TestIRQNotServicedWhenIDisabled(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	bus.load(0x8000, 0xEA) // NOP
	c := newCPU(bus)
	c.I = 1
	c.irqLine = true

	stepOneInstruction(c)

	assert.Equal(t, uint16(0x8001), c.PC, "IRQ line high but I flag set must not divert control flow")
}

func TestNMIVectorsThroughFFFA(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	bus.mem[vectorNMI] = 0x00
	bus.mem[vectorNMI+1] = 0x90
	bus.load(0x8000, 0xEA)
	c := newCPU(bus)
	c.RaiseNMI()

	stepOneInstruction(c)

	assert.Equal(t, uint16(0x9000), c.PC)
}

func TestSaveLoadCPUStateRoundTrip(t *testing.T) {
	bus := &flatBus{}
	bus.setResetVector(0x8000)
	c := newCPU(bus)
	c.A, c.X, c.Y = 1, 2, 3
	c.PC = 0x1234
	c.TotalCycles = 987654321

	blob := c.serializeCPU()

	other := newCPU(bus)
	require.NoError(t, other.deserializeCPU(blob))
	assert.Equal(t, c.A, other.A)
	assert.Equal(t, c.X, other.X)
	assert.Equal(t, c.PC, other.PC)
	assert.Equal(t, c.TotalCycles, other.TotalCycles)
}

func TestDeserializeCPURejectsWrongLength(t *testing.T) {
	c := newCPU(&flatBus{})
	err := c.deserializeCPU([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrCorruptState)
}
