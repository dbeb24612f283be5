package cpu

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func words(ops ...uint16) []byte {
	var b []byte
	for _, op := range ops {
		b = append(b, byte(op>>8), byte(op))
	}
	return b
}

func newTestEMU(t *testing.T, opts Options, ops ...uint16) *EMU {
	t.Helper()
	emu := NewEMU(opts)
	if err := emu.LoadROM(words(ops...)); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	return emu
}

func step(t *testing.T, emu *EMU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := emu.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNewEMU(t *testing.T) {
	emu := NewEMU(Options{})
	if g, w := emu.reg.PC, uint16(ProgramStart); g != w {
		t.Errorf("PC = %.4x, want %.4x", g, w)
	}
	if g := emu.memory[FontAddr : FontAddr+FontSize]; !bytes.Equal(g, FontSet[:]) {
		t.Errorf("font not loaded: %x", g)
	}
	if emu.State() != Running {
		t.Errorf("state = %v, want %v", emu.State(), Running)
	}
}

func TestLoadROM(t *testing.T) {
	for _, c := range []struct {
		size int
		err  error
	}{
		{0, nil},
		{1, nil},
		{maxRomSize, nil},
		{maxRomSize + 1, ErrRomTooLarge},
		{MemorySize, ErrRomTooLarge},
	} {
		emu := NewEMU(Options{})
		emu.reg.V[3] = 9
		err := emu.LoadROM(bytes.Repeat([]byte{1}, c.size))
		if !errors.Is(err, c.err) || (c.err == nil) != (err == nil) {
			t.Errorf("LoadROM(%d bytes) = %v, want %v", c.size, err, c.err)
			continue
		}
		if err != nil {
			if emu.reg.V[3] != 9 || emu.memory[ProgramStart] != 0 {
				t.Errorf("LoadROM(%d bytes) changed the machine after failing", c.size)
			}
			continue
		}
		for i := ProgramStart; i < MemorySize; i++ {
			w := uint8(0)
			if i < ProgramStart+c.size {
				w = 1
			}
			if g := emu.memory[i]; g != w {
				t.Fatalf("memory[%.4x] = %.2x, want %.2x", i, g, w)
			}
		}
	}
}

func TestLoadROMFile(t *testing.T) {
	emu := NewEMU(Options{})
	err := emu.LoadROMFile(filepath.Join(t.TempDir(), "missing.ch8"))
	if !errors.Is(err, ErrRomUnreadable) {
		t.Errorf("LoadROMFile returned %v, want %v", err, ErrRomUnreadable)
	}
}

func TestCallReturn(t *testing.T) {
	emu := newTestEMU(t, Options{},
		0x2204, // 200: CALL 204
		0x1202, // 202: JP 202
		0x2208, // 204: CALL 208
		0x00EE, // 206: RET
		0x00EE, // 208: RET
	)
	for _, w := range []uint16{0x204, 0x208, 0x206, 0x202, 0x202} {
		step(t, emu, 1)
		if g := emu.reg.PC; g != w {
			t.Fatalf("PC = %.4x, want %.4x", g, w)
		}
	}
	if emu.reg.SP != 0 {
		t.Errorf("SP = %d, want 0", emu.reg.SP)
	}
}

func TestStackOverflow(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0x2200)
	step(t, emu, StackDepth)
	err := emu.Step()
	if !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("call %d returned %v, want %v", StackDepth+1, err, ErrStackOverflow)
	}
	if emu.State() != Halted {
		t.Errorf("state = %v, want %v", emu.State(), Halted)
	}
	err = emu.Step()
	if !errors.Is(err, ErrHalted) || !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Step after halt returned %v", err)
	}

	emu.Reset()
	if emu.State() != Running || emu.reg.SP != 0 {
		t.Errorf("Reset left state %v, SP %d", emu.State(), emu.reg.SP)
	}
}

func TestStackDepth(t *testing.T) {
	var r Registers
	for i := 0; i < StackDepth; i++ {
		if err := r.Push(uint16(i)); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}
	if err := r.Push(0); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Push past depth returned %v", err)
	}
	for i := StackDepth - 1; i >= 0; i-- {
		addr, err := r.Pop()
		if err != nil || addr != uint16(i) {
			t.Fatalf("Pop = %.4x, %v; want %.4x", addr, err, i)
		}
	}
	if _, err := r.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Pop of empty stack returned %v", err)
	}
}

func TestFetchFault(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0x1FFF)
	step(t, emu, 1)
	err := emu.Step()
	var f *Fault
	if !errors.As(err, &f) || f.Code != MemoryFault {
		t.Fatalf("fetch at 0fff returned %v", err)
	}
	if f.PC != 0xFFF || f.Addr != MemorySize {
		t.Errorf("fault at PC %.4x addr %.4x", f.PC, f.Addr)
	}
}

func TestDrawCollision(t *testing.T) {
	// I is 0 after reset, which is the sprite for digit 0
	emu := newTestEMU(t, Options{}, 0xD015, 0xD015)
	emu.reg.V[VF] = 5
	step(t, emu, 1)
	if emu.reg.V[VF] != 0 {
		t.Errorf("first draw set VF = %d, want 0", emu.reg.V[VF])
	}
	fb := emu.Framebuffer()
	for x := 0; x < 4; x++ {
		if !fb.Pixel(x, 0) {
			t.Errorf("pixel (%d, 0) not set", x)
		}
	}
	if fb.Pixel(1, 1) {
		t.Errorf("pixel (1, 1) set")
	}

	step(t, emu, 1)
	if emu.reg.V[VF] != 1 {
		t.Errorf("second draw set VF = %d, want 1", emu.reg.V[VF])
	}
	if emu.Framebuffer() != (Framebuffer{}) {
		t.Errorf("second draw did not clear the sprite")
	}
}

func TestDrawWraps(t *testing.T) {
	var fb Framebuffer
	if fb.Draw(60, 31, []uint8{0xFF, 0x80}) {
		t.Errorf("draw on blank screen reported a collision")
	}
	for _, c := range []struct {
		x, y int
		set  bool
	}{
		{60, 31, true},
		{63, 31, true},
		{0, 31, true},
		{3, 31, true},
		{4, 31, false},
		{60, 0, true},
		{61, 0, false},
	} {
		if g := fb.Pixel(c.x, c.y); g != c.set {
			t.Errorf("pixel (%d, %d) = %v, want %v", c.x, c.y, g, c.set)
		}
	}
}

func TestKeyWait(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0xF50A, 0x6101)
	step(t, emu, 1)
	if emu.State() != AwaitingKey {
		t.Fatalf("state = %v, want %v", emu.State(), AwaitingKey)
	}
	step(t, emu, 10)
	emu.KeyUp(3)
	if emu.reg.PC != 0x200 || emu.reg.V[1] != 0 {
		t.Fatalf("machine ran while awaiting a key: PC = %.4x", emu.reg.PC)
	}

	emu.KeyDown(7)
	if emu.State() != Running || emu.reg.PC != 0x202 || emu.reg.V[5] != 7 {
		t.Fatalf("after key down: state %v, PC %.4x, V5 %d", emu.State(), emu.reg.PC, emu.reg.V[5])
	}
	emu.KeyDown(8)
	if emu.reg.PC != 0x202 || emu.reg.V[5] != 7 {
		t.Errorf("second key down changed PC %.4x, V5 %d", emu.reg.PC, emu.reg.V[5])
	}
	step(t, emu, 1)
	if emu.reg.V[1] != 1 {
		t.Errorf("instruction after wait did not run")
	}
}

func TestKeyWaitHeldKey(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0xF20A)
	emu.KeyDown(2)
	step(t, emu, 1)
	emu.KeyDown(2)
	if emu.State() != AwaitingKey {
		t.Fatalf("held key completed the wait")
	}
	emu.KeyUp(2)
	emu.KeyDown(2)
	if emu.State() != Running || emu.reg.V[2] != 2 || emu.reg.PC != 0x202 {
		t.Errorf("fresh press: state %v, V2 %d, PC %.4x", emu.State(), emu.reg.V[2], emu.reg.PC)
	}
}

func TestTimersIndependentOfSteps(t *testing.T) {
	emu := newTestEMU(t, Options{},
		0x6A3C, // 200: LD VA, 60
		0xFA15, // 202: LD DT, VA
		0xFA18, // 204: LD ST, VA
		0x1206, // 206: JP 206
	)
	step(t, emu, 3)
	emu.Tick()
	step(t, emu, 1000)
	emu.Tick()
	if g := emu.DelayTimer(); g != 58 {
		t.Errorf("delay = %d, want 58", g)
	}
	if g := emu.SoundTimer(); g != 58 {
		t.Errorf("sound = %d, want 58", g)
	}
	for i := 0; i < 100; i++ {
		emu.Tick()
	}
	if emu.DelayTimer() != 0 || emu.SoundTimer() != 0 {
		t.Errorf("timers = %d, %d after decay, want 0", emu.DelayTimer(), emu.SoundTimer())
	}
}

func TestStoreLoadRoundTrip(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0xA400, 0xF755, 0xF765)
	want := [8]uint8{1, 0x80, 0xFF, 3, 0, 42, 7, 9}
	copy(emu.reg.V[:], want[:])
	step(t, emu, 2)
	for i := range want {
		emu.reg.V[i] = 0
	}
	step(t, emu, 1)
	var got [8]uint8
	copy(got[:], emu.reg.V[:8])
	if got != want {
		t.Errorf("registers = %v, want %v", got, want)
	}
	if emu.reg.I != 0x400 {
		t.Errorf("I = %.4x, want 0400", emu.reg.I)
	}
}

type traceRecorder []Record

func (r *traceRecorder) Trace(rec Record) { *r = append(*r, rec) }

func TestTracer(t *testing.T) {
	var rec traceRecorder
	emu := newTestEMU(t, Options{Tracer: &rec}, 0x6A02, 0x00FF)
	step(t, emu, 1)
	if err := emu.Step(); !errors.Is(err, ErrUnrecognizedOpcode) {
		t.Fatalf("Step returned %v", err)
	}
	if len(rec) != 2 {
		t.Fatalf("got %d records, want 2", len(rec))
	}
	if g := rec[0]; g.PC != 0x200 || g.Opcode != 0x6A02 || g.Mnemonic != "LD VA, 0x02" || g.Err != nil {
		t.Errorf("record 0 = %+v", g)
	}
	if g := rec[1]; g.PC != 0x202 || g.Mnemonic != "DW 0x00FF" || !errors.Is(g.Err, ErrUnrecognizedOpcode) {
		t.Errorf("record 1 = %+v", g)
	}
	if emu.State() != Running || emu.reg.PC != 0x204 {
		t.Errorf("unrecognized opcode left state %v, PC %.4x", emu.State(), emu.reg.PC)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0x6A02, 0x00E0)
	s := emu.Snapshot()
	step(t, emu, 1)
	if s.V[0xA] != 0 || s.PC != 0x200 {
		t.Errorf("snapshot changed with the machine: VA %d, PC %.4x", s.V[0xA], s.PC)
	}
	if s = emu.Snapshot(); s.V[0xA] != 2 || s.Opcode != 0x6A02 {
		t.Errorf("snapshot VA %d, opcode %.4x", s.V[0xA], s.Opcode)
	}
}

func TestReset(t *testing.T) {
	emu := newTestEMU(t, Options{}, 0x6A02, 0xA300, 0xFA55)
	step(t, emu, 3)
	emu.KeyDown(4)
	emu.Reset()
	s := emu.Snapshot()
	if s.V[0xA] != 0 || s.I != 0 || s.PC != ProgramStart || s.Keys[4] {
		t.Errorf("Reset left %+v", s.Registers)
	}
	if b, _ := emu.Peek(0x30A); b != 0 {
		t.Errorf("Reset left memory[030a] = %.2x", b)
	}
	if b, _ := emu.Peek(ProgramStart); b != 0x6A {
		t.Errorf("Reset did not reload the rom: %.2x", b)
	}
}

func TestPeekPoke(t *testing.T) {
	emu := NewEMU(Options{})
	if err := emu.Poke(0xFFF, 7); err != nil {
		t.Fatal(err)
	}
	if b, err := emu.Peek(0xFFF); b != 7 || err != nil {
		t.Errorf("Peek = %d, %v", b, err)
	}
	if err := emu.Poke(0x1000, 7); !errors.Is(err, ErrMemoryFault) {
		t.Errorf("Poke out of range returned %v", err)
	}
	if _, err := emu.Peek(0xFFFF); !errors.Is(err, ErrMemoryFault) {
		t.Errorf("Peek out of range returned %v", err)
	}
}
