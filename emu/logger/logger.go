// Package logger is the central log shared by every part of the emulator.
// Entries are tagged with the component that made them and kept in a
// bounded list; a repeat of the most recent entry bumps its count instead
// of adding a new one.
package logger

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// maximum number of entries kept
const maxEntries = 256

// Entry is a single line in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e Entry) String() string {
	if e.Repeated > 0 {
		return fmt.Sprintf("%s: %s (repeat x%d)", e.Tag, e.Detail, e.Repeated+1)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Detail)
}

type logger struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	echo    io.Writer
}

var central = newLogger(maxEntries)

func newLogger(max int) *logger {
	return &logger{max: max, entries: make([]Entry, 0, max)}
}

func (l *logger) log(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.entries); n > 0 {
		last := &l.entries[n-1]
		if last.Tag == tag && last.Detail == detail {
			last.Repeated++
			return
		}
	}

	e := Entry{Timestamp: time.Now(), Tag: tag, Detail: detail}
	if len(l.entries) == l.max {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.max-1]
	}
	l.entries = append(l.entries, e)

	if l.echo != nil {
		io.WriteString(l.echo, e.String()+"\n")
	}
}

func (l *logger) tail(w io.Writer, n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) || n < 0 {
		n = len(l.entries)
	}
	for _, e := range l.entries[len(l.entries)-n:] {
		io.WriteString(w, e.String()+"\n")
	}
}

func (l *logger) setEcho(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
}

func (l *logger) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// Log adds an entry to the central log.
func Log(tag, detail string) {
	central.log(tag, detail)
}

// Logf adds a formatted entry to the central log.
func Logf(tag, pattern string, args ...interface{}) {
	central.log(tag, fmt.Sprintf(pattern, args...))
}

// Tail writes the last n entries to w. A negative n writes everything.
func Tail(w io.Writer, n int) {
	central.tail(w, n)
}

// SetEcho copies every new entry to w. A nil writer stops echoing.
func SetEcho(w io.Writer) {
	central.setEcho(w)
}

// Clear removes all entries.
func Clear() {
	central.clear()
}
