package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beanboi7/chyp8/emu/cpu"
)

func TestFormat(t *testing.T) {
	for _, c := range []struct {
		rec  cpu.Record
		want string
	}{
		{cpu.Record{PC: 0x200, Opcode: 0x6A02, Mnemonic: "LD VA, 0x02"}, "0x0200: 6a02 LD VA, 0x02"},
		{
			cpu.Record{PC: 0x202, Opcode: 0x00FF, Mnemonic: "DW 0x00FF", Err: &cpu.Fault{Code: cpu.UnrecognizedOpcode, PC: 0x202, Opcode: 0x00FF}},
			"0x0202: 00ff unrecognized opcode executing 00ff at 0202",
		},
	} {
		if g := Format(c.rec); g != c.want {
			t.Errorf("Format(%+v) = %q, want %q", c.rec, g, c.want)
		}
	}
}

func TestTraceMachine(t *testing.T) {
	var b strings.Builder
	l := NewLog(&b)
	emu := cpu.NewEMU(cpu.Options{Tracer: l})
	if err := emu.LoadROM([]byte{0x6A, 0x02, 0x12, 0x02}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := emu.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Flush(); err != nil {
		t.Fatal(err)
	}
	want := "0x0200: 6a02 LD VA, 0x02\n0x0202: 1202 JP 0x202\n"
	if g := b.String(); g != want {
		t.Errorf("trace = %q, want %q", g, want)
	}
}

func TestOpen(t *testing.T) {
	if l := Open(""); l != nil {
		t.Errorf("Open(\"\") returned a log")
	}
	if l := Open(filepath.Join(t.TempDir(), "missing", "trace.log")); l != nil {
		t.Errorf("Open in a missing directory returned a log")
	}

	// nil logs are usable
	var l *Log
	l.Trace(cpu.Record{})
	if err := l.Close(); err != nil {
		t.Errorf("Close of nil log: %v", err)
	}

	path := filepath.Join(t.TempDir(), "trace.log")
	l = Open(path)
	if l == nil {
		t.Fatalf("Open(%q) returned nil", path)
	}
	l.Trace(cpu.Record{PC: 0x200, Opcode: 0x00E0, Mnemonic: "CLS"})
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if g, w := string(b), "0x0200: 00e0 CLS\n"; g != w {
		t.Errorf("file = %q, want %q", g, w)
	}
}
