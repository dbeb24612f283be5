package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/faiface/pixel/pixelgl"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/beanboi7/chyp8/emu/audio"
	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/debug"
	"github.com/beanboi7/chyp8/emu/keymap"
	"github.com/beanboi7/chyp8/emu/logger"
	"github.com/beanboi7/chyp8/emu/runner"
	"github.com/beanboi7/chyp8/emu/screen"
	"github.com/beanboi7/chyp8/emu/trace"
	"github.com/beanboi7/chyp8/emu/watch"
)

const statsAddr = "localhost:12600"

var startCmd = &cobra.Command{
	Use:   "start path/ROM",
	Short: "load and start the Emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  Start,
}

// chyp8 start 'path/to/ROM' -r 60 -c 700
func Start(cmd *cobra.Command, args []string) error {
	var err error
	// pixelgl needs the main goroutine, which cobra runs commands on
	pixelgl.Run(func() {
		err = start(args[0])
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, runner.ErrExit) {
		return nil
	}
	return err
}

func start(romPath string) error {
	layout, err := keymap.Parse(viper.GetString("keys"))
	if err != nil {
		return err
	}

	opts := cpu.Options{
		Strict:    viper.GetBool("strict"),
		OverflowI: viper.GetBool("quirks.overflow_i"),
	}
	if t := trace.Open(viper.GetString("trace")); t != nil {
		defer t.Close()
		opts.Tracer = t
	}
	emu := cpu.NewEMU(opts)
	if err := emu.LoadROMFile(romPath); err != nil {
		return fmt.Errorf("loading %s: %w", romPath, err)
	}

	win, err := screen.NewWindow(viper.GetInt("scale"), layout)
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	defer win.Destroy()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := runner.Config{
		ClockHz:   viper.GetInt("clock"),
		RefreshHz: viper.GetInt("refresh"),
		Display:   win,
	}

	if path := viper.GetString("beep"); path != "" {
		b, err := audio.NewBeeper(path)
		if err != nil {
			logger.Logf("audio", "audio disabled: %v", err)
		} else {
			defer b.Close()
			cfg.Speaker = b
		}
	}

	if viper.GetBool("watch") {
		ch, err := watch.ROM(ctx, romPath)
		if err != nil {
			logger.Logf("watch", "watching disabled: %v", err)
		} else {
			cfg.Reload = ch
		}
	}

	if viper.GetBool("statsview") {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(statsAddr))
			statsview.New().Start()
		}()
		logger.Logf("stats", "stats server available at %s/debug/statsview", statsAddr)
	}

	var (
		r       *runner.Runner
		console *debug.Console
		out     io.Writer = os.Stderr
	)
	if viper.GetBool("debug") {
		console = debug.New(func(cmd string) { r.Command(cmd) })
		cfg.Observer = console
		out = console.Log()
	}
	logger.Tail(out, -1)
	logger.SetEcho(out)

	r = runner.New(emu, cfg)
	if console != nil {
		go func() {
			if err := console.Run(); err != nil {
				logger.Logf("debug", "%v", err)
			}
			logger.SetEcho(os.Stderr)
			cancel()
		}()
		defer console.Stop()
	}
	return r.Run(ctx)
}

func init() {
	f := startCmd.Flags()
	f.IntP("clock", "c", 700, "instructions executed per second")
	f.IntP("refresh", "r", 60, "sets the refresh rate of the display")
	f.Bool("strict", false, "halt on unrecognized opcodes")
	f.Bool("overflow-i", false, "set VF when ADD I, Vx passes 0xFFF")
	f.String("trace", "", "write an instruction trace to this file")
	f.String("beep", "", "mp3 file played while the sound timer runs")
	f.Bool("debug", false, "run the debug console in the terminal")
	f.Bool("watch", false, "reset with the new ROM whenever the file changes")
	f.Int("scale", 10, "window pixels per Chip-8 pixel")
	f.String("keys", keymap.Default, "keyboard keys for Chip-8 keys 0 to F")
	f.Bool("statsview", false, "serve runtime statistics on "+statsAddr)

	for key, flag := range map[string]string{
		"clock":             "clock",
		"refresh":           "refresh",
		"strict":            "strict",
		"quirks.overflow_i": "overflow-i",
		"trace":             "trace",
		"beep":              "beep",
		"debug":             "debug",
		"watch":             "watch",
		"scale":             "scale",
		"keys":              "keys",
		"statsview":         "statsview",
	} {
		cobra.CheckErr(viper.BindPFlag(key, f.Lookup(flag)))
	}
}
