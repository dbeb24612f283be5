package cpu

// Record describes one dispatched instruction. Err is the fault it raised,
// if any.
type Record struct {
	PC       uint16
	Opcode   uint16
	Mnemonic string
	Err      error
}

// Tracer receives a Record for each instruction Step dispatches.
type Tracer interface {
	Trace(r Record)
}
