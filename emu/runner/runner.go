// Package runner drives a cpu.EMU: it steps the machine at the instruction
// rate, ticks its timers at 60Hz, routes input to it and hands its state to
// the display, speaker and observer. All machine access happens on the
// goroutine calling Run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/logger"
)

// Keypad receives key events.
type Keypad interface {
	KeyDown(k uint8)
	KeyUp(k uint8)
}

// Display shows the framebuffer and supplies key events.
type Display interface {
	// Poll reports key transitions since the last call to k.
	Poll(k Keypad)
	Render(fb *cpu.Framebuffer)
	Closed() bool
}

// Speaker plays a tone while on.
type Speaker interface {
	SetTone(on bool)
}

// Observer receives a copy of the machine state once per frame. It is
// called on the runner's goroutine and must not block for long.
type Observer interface {
	Observe(s cpu.Snapshot)
}

// Config holds the rates and the optional collaborators of a Runner.
type Config struct {
	ClockHz   int // instructions per second
	RefreshHz int // frames per second

	Display  Display
	Speaker  Speaker
	Observer Observer

	// Reload delivers replacement ROMs; each one resets the machine.
	Reload <-chan []byte
}

// ErrExit is returned by Run when the exit command is received.
var ErrExit = errors.New("exit requested")

// Runner is the caller loop for a machine.
type Runner struct {
	emu      *cpu.EMU
	cfg      Config
	clock    clock
	commands chan string
	paused   bool
	tone     bool
}

func New(emu *cpu.EMU, cfg Config) *Runner {
	if cfg.ClockHz <= 0 {
		cfg.ClockHz = 700
	}
	if cfg.RefreshHz <= 0 {
		cfg.RefreshHz = 60
	}
	return &Runner{
		emu:      emu,
		cfg:      cfg,
		clock:    newClock(cfg.ClockHz, TimerHz),
		commands: make(chan string, 16),
	}
}

// Command queues a console command for the runner's goroutine. It is safe
// to call from any goroutine and never blocks; commands arriving faster
// than they are handled are dropped.
//
// Commands are pause, resume, step, reset, poke <addr> <value>,
// memviz <file> and exit.
func (r *Runner) Command(cmd string) {
	select {
	case r.commands <- cmd:
	default:
		logger.Logf("runner", "dropped command %q", cmd)
	}
}

// Run drives the machine until ctx is done, the display is closed, the exit
// command arrives or the machine halts. A halt is returned as the fault that
// caused it; a closed display returns nil.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.cfg.RefreshHz))
	defer ticker.Stop()

	reload := r.cfg.Reload
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rom, ok := <-reload:
			if !ok {
				reload = nil
				break
			}
			r.reload(rom)
		case cmd := <-r.commands:
			if err := r.handle(cmd); err != nil {
				return err
			}
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			if err := r.frame(elapsed); err != nil {
				return err
			}
			if d := r.cfg.Display; d != nil && d.Closed() {
				return nil
			}
		}
	}
}

// frame runs the work due for elapsed wall time and presents the result.
func (r *Runner) frame(elapsed time.Duration) error {
	if d := r.cfg.Display; d != nil {
		d.Poll(r.emu)
	}
	if !r.paused {
		steps, ticks := r.clock.advance(elapsed)
		for i := 0; i < steps; i++ {
			if err := r.step(); err != nil {
				return err
			}
			if r.emu.State() == cpu.AwaitingKey {
				break
			}
		}
		for i := 0; i < ticks; i++ {
			r.emu.Tick()
		}
	}
	r.present()
	return nil
}

// step executes one instruction. Non-fatal faults are logged and
// swallowed.
func (r *Runner) step() error {
	err := r.emu.Step()
	if err == nil {
		return nil
	}
	logger.Logf("cpu", "%v", err)
	if r.emu.State() == cpu.Halted {
		return err
	}
	return nil
}

func (r *Runner) present() {
	if d := r.cfg.Display; d != nil {
		fb := r.emu.Framebuffer()
		d.Render(&fb)
	}
	if s := r.cfg.Speaker; s != nil {
		if on := r.emu.SoundTimer() > 0; on != r.tone {
			s.SetTone(on)
			r.tone = on
		}
	}
	if o := r.cfg.Observer; o != nil {
		o.Observe(r.emu.Snapshot())
	}
}

func (r *Runner) reload(rom []byte) {
	if err := r.emu.LoadROM(rom); err != nil {
		logger.Logf("runner", "reload: %v", err)
		return
	}
	r.clock.reset()
	logger.Logf("runner", "reloaded rom (%d bytes)", len(rom))
}

// handle executes a console command. Only exit returns an error.
func (r *Runner) handle(line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "":
	case "pause":
		r.paused = true
		logger.Log("runner", "paused")
	case "resume":
		r.paused = false
		r.clock.reset()
		logger.Log("runner", "resumed")
	case "step":
		if err := r.emu.Step(); err != nil {
			logger.Logf("cpu", "%v", err)
		}
	case "reset":
		r.emu.Reset()
		r.clock.reset()
		logger.Log("runner", "reset")
	case "poke":
		if err := r.poke(arg); err != nil {
			logger.Logf("runner", "poke: %v", err)
		}
	case "memviz":
		if err := r.memviz(arg); err != nil {
			logger.Logf("runner", "memviz: %v", err)
		}
	case "exit", "quit":
		return ErrExit
	default:
		logger.Logf("runner", "unknown command %q", cmd)
		return nil
	}
	r.present()
	return nil
}

func (r *Runner) poke(arg string) error {
	a, v, ok := strings.Cut(strings.TrimSpace(arg), " ")
	if !ok {
		return fmt.Errorf("usage: poke <addr> <value>")
	}
	addr, err := strconv.ParseUint(a, 16, 16)
	if err != nil {
		return err
	}
	val, err := strconv.ParseUint(strings.TrimSpace(v), 16, 8)
	if err != nil {
		return err
	}
	return r.emu.Poke(uint16(addr), uint8(val))
}

// memviz writes a graphviz dot rendering of the machine state to path.
func (r *Runner) memviz(path string) error {
	if path == "" {
		return fmt.Errorf("usage: memviz <file>")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	s := r.emu.Snapshot()
	memviz.Map(f, &s)
	logger.Logf("runner", "wrote machine state to %s", path)
	return f.Close()
}
