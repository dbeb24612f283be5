// Package screen shows the CHIP-8 framebuffer in a pixelgl window and
// turns keyboard presses into CHIP-8 key events.
package screen

import (
	"fmt"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/keymap"
	"github.com/beanboi7/chyp8/emu/runner"
)

type Window struct {
	*pixelgl.Window
	KeyMap [cpu.KeyCount]pixelgl.Button
	imd    *imdraw.IMDraw
	scale  float64
}

// NewWindow opens a window scale times the size of the CHIP-8 screen. It
// must be called from the function passed to pixelgl.Run.
func NewWindow(scale int, layout keymap.Layout) (*Window, error) {
	if scale < 1 {
		scale = 1
	}
	var keys [cpu.KeyCount]pixelgl.Button
	for k, r := range layout {
		b, ok := buttons[r]
		if !ok {
			return nil, fmt.Errorf("no key for %q in layout %q", r, layout)
		}
		keys[k] = b
	}

	cfg := pixelgl.WindowConfig{
		Title:  "Chyp8",
		Bounds: pixel.R(0, 0, float64(cpu.ScreenWidth*scale), float64(cpu.ScreenHeight*scale)),
		VSync:  true,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, err
	}
	return &Window{
		Window: win,
		KeyMap: keys,
		imd:    imdraw.New(nil),
		scale:  float64(scale),
	}, nil
}

// Poll implements runner.Display. Key transitions are those seen by the
// last Update, which Render calls.
func (w *Window) Poll(k runner.Keypad) {
	for key, b := range w.KeyMap {
		if w.JustPressed(b) {
			k.KeyDown(uint8(key))
		}
		if w.JustReleased(b) {
			k.KeyUp(uint8(key))
		}
	}
}

// Render implements runner.Display.
func (w *Window) Render(fb *cpu.Framebuffer) {
	w.Clear(colornames.Black)
	w.imd.Clear()
	w.imd.Color = colornames.White
	s := w.scale
	for y := 0; y < cpu.ScreenHeight; y++ {
		for x := 0; x < cpu.ScreenWidth; x++ {
			if !fb.Pixel(x, y) {
				continue
			}
			// pixel's origin is the bottom left corner
			px := float64(x) * s
			py := float64(cpu.ScreenHeight-1-y) * s
			w.imd.Push(pixel.V(px, py), pixel.V(px+s, py+s))
			w.imd.Rectangle(0)
		}
	}
	w.imd.Draw(w)
	w.Update()
}

var buttons = map[rune]pixelgl.Button{
	'0': pixelgl.Key0, '1': pixelgl.Key1, '2': pixelgl.Key2, '3': pixelgl.Key3,
	'4': pixelgl.Key4, '5': pixelgl.Key5, '6': pixelgl.Key6, '7': pixelgl.Key7,
	'8': pixelgl.Key8, '9': pixelgl.Key9,
	'a': pixelgl.KeyA, 'b': pixelgl.KeyB, 'c': pixelgl.KeyC, 'd': pixelgl.KeyD,
	'e': pixelgl.KeyE, 'f': pixelgl.KeyF, 'g': pixelgl.KeyG, 'h': pixelgl.KeyH,
	'i': pixelgl.KeyI, 'j': pixelgl.KeyJ, 'k': pixelgl.KeyK, 'l': pixelgl.KeyL,
	'm': pixelgl.KeyM, 'n': pixelgl.KeyN, 'o': pixelgl.KeyO, 'p': pixelgl.KeyP,
	'q': pixelgl.KeyQ, 'r': pixelgl.KeyR, 's': pixelgl.KeyS, 't': pixelgl.KeyT,
	'u': pixelgl.KeyU, 'v': pixelgl.KeyV, 'w': pixelgl.KeyW, 'x': pixelgl.KeyX,
	'y': pixelgl.KeyY, 'z': pixelgl.KeyZ,
	',': pixelgl.KeyComma, '.': pixelgl.KeyPeriod, '/': pixelgl.KeySlash,
	';': pixelgl.KeySemicolon, '-': pixelgl.KeyMinus, '=': pixelgl.KeyEqual,
}
