package nes

import "fmt"

// Logger receives the CPU's illegal-opcode notices. It is called from
// inside CPU.Clock as each such opcode is decoded, so a slow or
// blocking implementation slows emulation down.
type Logger interface {
	Printf(format string, args ...interface{})
}

// discardLogger is the default New installs, and what SetLogger(nil)
// restores.
type discardLogger struct{}

func (discardLogger) Printf(string, ...interface{}) {}

// stdLogger adapts fmt.Printf to the Logger interface for hosts that
// just want diagnostics on stdout with no setup.
type stdLogger struct{}

func (stdLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}
