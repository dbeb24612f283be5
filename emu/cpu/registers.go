package cpu

import (
	"fmt"
	"strings"
)

const (
	RegisterCount = 16
	StackDepth    = 16

	// VF doubles as the carry, borrow and collision flag
	VF = 0xF
)

// Registers is the register file: V0-VF, the address register, the
// program counter and the call stack.
type Registers struct {
	V     [RegisterCount]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackDepth]uint16
}

// Push stores a return address on the stack.
func (r *Registers) Push(addr uint16) error {
	if int(r.SP) >= StackDepth {
		return &Fault{Code: StackOverflow}
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

// Pop removes and returns the most recent return address.
func (r *Registers) Pop() (uint16, error) {
	if r.SP == 0 {
		return 0, &Fault{Code: StackUnderflow}
	}
	r.SP--
	return r.Stack[r.SP], nil
}

func (r *Registers) setFlag(b bool) {
	if b {
		r.V[VF] = 1
	} else {
		r.V[VF] = 0
	}
}

// StackString formats the live part of the stack, oldest first.
func (r Registers) StackString() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, v := range r.Stack[:r.SP] {
		fmt.Fprintf(&b, " %.3x", v)
	}
	b.WriteString(" )")
	return b.String()
}
