package nes

import "errors"

// Error kinds surfaced at the host boundary. tick() itself never returns
// an error: address decoding inside the core is total (unhandled reads
// yield 0, unhandled writes are ignored). No call currently returns
// ErrIllegalOpcode; illegal opcodes are reported only through Logger.
var (
	ErrInvalidRom        = errors.New("nes: invalid rom header")
	ErrUnsupportedMapper = errors.New("nes: unsupported mapper")
	ErrCorruptState      = errors.New("nes: corrupt save state")
	ErrIllegalOpcode     = errors.New("nes: illegal opcode executed")
)
