// Package trace writes a line per dispatched instruction to a log file.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/logger"
)

// Log is a cpu.Tracer writing to a file. A nil *Log discards everything,
// so callers need not check whether tracing is enabled.
type Log struct {
	w *bufio.Writer
	c io.Closer
}

// Open creates or truncates the trace file at path. An empty path disables
// tracing, as does a file that cannot be created; in the second case the
// failure is logged and nil is returned.
func Open(path string) *Log {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Logf("trace", "tracing disabled: %v", err)
		return nil
	}
	logger.Logf("trace", "writing trace to %s", path)
	return &Log{w: bufio.NewWriter(f), c: f}
}

// NewLog returns a Log writing to w.
func NewLog(w io.Writer) *Log {
	return &Log{w: bufio.NewWriter(w)}
}

// Trace implements cpu.Tracer.
func (l *Log) Trace(r cpu.Record) {
	if l == nil {
		return
	}
	l.w.WriteString(Format(r))
	l.w.WriteByte('\n')
}

// Format returns the trace line for r, without a newline.
func Format(r cpu.Record) string {
	if r.Err != nil {
		return fmt.Sprintf("0x%.4x: %.4x %v", r.PC, r.Opcode, r.Err)
	}
	return fmt.Sprintf("0x%.4x: %.4x %s", r.PC, r.Opcode, r.Mnemonic)
}

// Flush writes out buffered lines.
func (l *Log) Flush() error {
	if l == nil {
		return nil
	}
	return l.w.Flush()
}

// Close flushes the log and closes the file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	err := l.w.Flush()
	if l.c != nil {
		if cerr := l.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
