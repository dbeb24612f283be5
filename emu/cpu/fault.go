package cpu

import (
	"errors"
	"fmt"
)

// FaultCode identifies the condition behind a Fault.
type FaultCode uint8

const (
	UnrecognizedOpcode FaultCode = iota + 1
	StackOverflow
	StackUnderflow
	MemoryFault
	RomTooLarge
	RomUnreadable
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		UnrecognizedOpcode: "unrecognized opcode",
		StackOverflow:      "stack overflow",
		StackUnderflow:     "stack underflow",
		MemoryFault:        "memory fault",
		RomTooLarge:        "rom too large",
		RomUnreadable:      "rom unreadable",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown fault (%.2x)", byte(c))
}

// Fault is returned by Step and the ROM loaders. PC and Opcode locate the
// instruction being executed, Addr is the offending memory address for a
// MemoryFault.
type Fault struct {
	Code   FaultCode
	PC     uint16
	Opcode uint16
	Addr   int
	Err    error
}

// sentinel faults for use with errors.Is
var (
	ErrUnrecognizedOpcode = &Fault{Code: UnrecognizedOpcode}
	ErrStackOverflow      = &Fault{Code: StackOverflow}
	ErrStackUnderflow     = &Fault{Code: StackUnderflow}
	ErrMemoryFault        = &Fault{Code: MemoryFault}
	ErrRomTooLarge        = &Fault{Code: RomTooLarge}
	ErrRomUnreadable      = &Fault{Code: RomUnreadable}
)

// ErrHalted is returned by Step once a fatal fault has stopped the machine.
// The error also wraps the fault that caused the halt.
var ErrHalted = errors.New("machine halted")

func (f *Fault) Error() string {
	var s string
	switch f.Code {
	case RomTooLarge, RomUnreadable:
		s = f.Code.String()
	case MemoryFault:
		s = fmt.Sprintf("%s at %.4x executing %.4x at %.4x", f.Code, f.Addr, f.Opcode, f.PC)
	default:
		s = fmt.Sprintf("%s executing %.4x at %.4x", f.Code, f.Opcode, f.PC)
	}
	if f.Err != nil {
		s += ": " + f.Err.Error()
	}
	return s
}

func (f *Fault) Unwrap() error { return f.Err }

// Is matches any Fault with the same code.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	return ok && t.Code == f.Code
}

// Fatal reports whether the fault halts the machine. Only an unrecognized
// opcode can be stepped over, and only outside strict mode.
func (f *Fault) Fatal() bool {
	return f.Code != UnrecognizedOpcode
}
