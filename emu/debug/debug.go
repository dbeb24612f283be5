// Package debug is a terminal console showing the machine state while it
// runs, with a command line feeding the runner.
package debug

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/beanboi7/chyp8/emu/cpu"
)

var commands = []string{"pause", "resume", "step", "reset", "poke", "memviz", "exit"}

// Console implements runner.Observer. Observe may be called from any
// goroutine; the view is only touched through QueueUpdateDraw.
type Console struct {
	app   *tview.Application
	state *tview.TextView
	log   *tview.TextView
	input *tview.InputField
	rows  *tview.Flex

	exec    func(cmd string)
	running atomic.Bool
}

// New builds the console. Commands typed at the prompt are passed to exec.
func New(exec func(cmd string)) *Console {
	c := &Console{
		app: tview.NewApplication(),
		state: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(1000),
		input: tview.NewInputField().
			SetLabel("> "),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		exec: exec,
	}
	c.log.SetChangedFunc(func() { c.app.Draw() })
	c.state.SetBackgroundColor(tcell.ColorDarkBlue)
	c.state.SetTextColor(tcell.ColorWhite)
	c.rows.
		AddItem(c.state, 8, 0, false).
		AddItem(c.log, 0, 1, false).
		AddItem(c.input, 1, 0, true)
	c.app.SetRoot(c.rows, true)

	c.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, t) {
				entries = append(entries, cmd)
			}
		}
		return
	})
	c.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			c.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	c.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(c.input.GetText())
		if cmd == "" {
			return
		}
		c.input.SetText("")
		c.exec(cmd)
		if cmd == "exit" || cmd == "quit" {
			c.app.Stop()
		}
	})
	return c
}

// Log is the writer to echo log entries to.
func (c *Console) Log() *tview.TextView { return c.log }

// Run blocks until the console is stopped.
func (c *Console) Run() error {
	c.running.Store(true)
	defer c.running.Store(false)
	return c.app.Run()
}

func (c *Console) Stop() { c.app.Stop() }

// Observe implements runner.Observer.
func (c *Console) Observe(s cpu.Snapshot) {
	if !c.running.Load() {
		return
	}
	text := Format(s)
	c.app.QueueUpdateDraw(func() {
		switch s.State {
		case cpu.Halted:
			c.state.SetBackgroundColor(tcell.ColorDarkRed)
		case cpu.AwaitingKey:
			c.state.SetBackgroundColor(tcell.ColorDarkGreen)
		default:
			c.state.SetBackgroundColor(tcell.ColorDarkBlue)
		}
		c.state.SetText(text)
	})
}

// Format lays out registers, timers, stack and keys.
func Format(s cpu.Snapshot) string {
	var b strings.Builder
	in := cpu.Decode(s.Opcode)
	fmt.Fprintf(&b, "pc %.4x  op %.4x %-14s [%s]\n", s.PC, s.Opcode, in, s.State)
	for row := 0; row < 2; row++ {
		for i := row * 8; i < row*8+8; i++ {
			fmt.Fprintf(&b, "V%X %.2x  ", i, s.V[i])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "I  %.4x  DT %.2x  ST %.2x  SP %d\n", s.I, s.Delay, s.Sound, s.SP)
	fmt.Fprintf(&b, "stack %s\n", s.StackString())
	b.WriteString("keys ")
	for k, down := range s.Keys {
		if down {
			fmt.Fprintf(&b, "%X", k)
		} else {
			b.WriteByte('.')
		}
	}
	b.WriteByte('\n')
	return b.String()
}
