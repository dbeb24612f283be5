// Package cpu implements the CHIP-8 virtual machine: memory, registers,
// timers, keypad and framebuffer, plus the fetch-decode-execute step that
// mutates them. The machine never runs by itself; a caller drives it with
// Step at the instruction rate and Tick at 60Hz.
package cpu

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// State is the execution state of an EMU.
type State uint8

const (
	Running State = iota
	AwaitingKey
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case AwaitingKey:
		return "awaiting key"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Options adjust the behaviour of an EMU.
type Options struct {
	// Strict halts the machine on an unrecognized opcode instead of
	// skipping it.
	Strict bool

	// OverflowI makes Fx1E set VF to 1 when I passes 0xFFF, and to 0
	// otherwise. VF is left alone when unset.
	OverflowI bool

	// Rand returns the random bytes used by Cxkk. A time seeded source is
	// used when nil.
	Rand func() uint8

	// Tracer, when set, receives a Record for every dispatched instruction.
	Tracer Tracer
}

// EMU is a CHIP-8 machine. It is not safe for concurrent use; other
// goroutines should be handed a Snapshot.
type EMU struct {
	opcode  uint16
	memory  Memory
	reg     Registers
	timers  Timers
	keys    Keypad
	display Framebuffer

	state   State
	waitReg uint8 //register receiving the key when AwaitingKey
	fault   error //fault that halted the machine

	rom    []byte
	opts   Options
	random func() uint8
}

// NewEMU returns a machine in its reset state with the font loaded and no
// ROM.
func NewEMU(opts Options) *EMU {
	emu := &EMU{opts: opts, random: opts.Rand}
	if emu.random == nil {
		src := rand.New(rand.NewSource(time.Now().UnixNano()))
		emu.random = func() uint8 { return uint8(src.Intn(256)) }
	}
	emu.Reset()
	return emu
}

// Reset zeroes the machine, sets PC to ProgramStart, reloads the font and
// reloads the most recently loaded ROM.
func (emu *EMU) Reset() {
	emu.opcode = 0
	emu.memory = Memory{}
	emu.reg = Registers{PC: ProgramStart}
	emu.timers = Timers{}
	emu.keys = Keypad{}
	emu.display = Framebuffer{}
	emu.state = Running
	emu.waitReg = 0
	emu.fault = nil

	emu.memory.LoadFont(FontSet)
	if emu.rom != nil {
		// the size was checked when the rom was first loaded
		_ = emu.memory.Load(emu.rom)
	}
}

// LoadROM resets the machine and loads rom at ProgramStart. A rom larger
// than the space above ProgramStart is rejected with a RomTooLarge fault
// and the machine is left as it was.
func (emu *EMU) LoadROM(rom []byte) error {
	if len(rom) > maxRomSize {
		return romTooLarge(len(rom))
	}
	emu.rom = append([]byte(nil), rom...)
	emu.Reset()
	return nil
}

// LoadROMFile reads filename and loads it with LoadROM.
func (emu *EMU) LoadROMFile(filename string) error {
	rom, err := os.ReadFile(filename)
	if err != nil {
		return &Fault{Code: RomUnreadable, Err: err}
	}
	return emu.LoadROM(rom)
}

// Step fetches, decodes and executes one instruction. It does nothing while
// the machine is waiting for a key. Faults are returned as *Fault values;
// a fatal fault, or any fault in strict mode, halts the machine and every
// later Step returns ErrHalted until Reset.
func (emu *EMU) Step() error {
	switch emu.state {
	case Halted:
		return fmt.Errorf("%w: %w", ErrHalted, emu.fault)
	case AwaitingKey:
		return nil
	}

	pc := emu.reg.PC
	opcode, err := emu.memory.ReadWord(pc)
	if err != nil {
		var f *Fault
		if errors.As(err, &f) {
			f.PC = pc
		}
		return emu.halt(err)
	}
	emu.opcode = opcode

	in := Decode(opcode)
	err = handlers[in.Op](emu, in)

	var f *Fault
	if errors.As(err, &f) {
		f.PC, f.Opcode = pc, opcode
	}
	if t := emu.opts.Tracer; t != nil {
		t.Trace(Record{PC: pc, Opcode: opcode, Mnemonic: in.String(), Err: err})
	}
	if err == nil {
		return nil
	}
	if f == nil || f.Fatal() || emu.opts.Strict {
		return emu.halt(err)
	}
	return err
}

func (emu *EMU) halt(err error) error {
	emu.state = Halted
	emu.fault = err
	return err
}

// Tick decrements the delay and sound timers. Call it at 60Hz regardless
// of how many instructions are stepped.
func (emu *EMU) Tick() {
	emu.timers.Tick()
}

// KeyDown records key k (0-F) as pressed. A machine waiting in Fx0A takes
// the key if it was not already held, and resumes. Keys above F are
// ignored.
func (emu *EMU) KeyDown(k uint8) {
	if k >= KeyCount {
		return
	}
	held := emu.keys[k]
	emu.keys[k] = true
	if emu.state == AwaitingKey && !held {
		emu.reg.V[emu.waitReg] = k
		emu.state = Running
		emu.next()
	}
}

// KeyUp records key k (0-F) as released.
func (emu *EMU) KeyUp(k uint8) {
	if k >= KeyCount {
		return
	}
	emu.keys[k] = false
}

func (emu *EMU) State() State { return emu.state }

// Fault returns the fault that halted the machine, or nil.
func (emu *EMU) Fault() error { return emu.fault }

func (emu *EMU) SoundTimer() uint8 { return emu.timers.Sound }

func (emu *EMU) DelayTimer() uint8 { return emu.timers.Delay }

// Framebuffer returns a copy of the screen.
func (emu *EMU) Framebuffer() Framebuffer { return emu.display }

// Peek reads a byte of memory.
func (emu *EMU) Peek(addr uint16) (uint8, error) {
	return emu.memory.Read(addr)
}

// Poke writes a byte of memory.
func (emu *EMU) Poke(addr uint16, v uint8) error {
	return emu.memory.Write(addr, v)
}

// Snapshot is a copy of the machine state that can be read from any
// goroutine.
type Snapshot struct {
	Registers
	Timers
	Keys    Keypad
	State   State
	Opcode  uint16
	Display Framebuffer
}

// Snapshot copies the current machine state.
func (emu *EMU) Snapshot() Snapshot {
	return Snapshot{
		Registers: emu.reg,
		Timers:    emu.timers,
		Keys:      emu.keys,
		State:     emu.state,
		Opcode:    emu.opcode,
		Display:   emu.display,
	}
}
