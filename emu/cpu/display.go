package cpu

const (
	ScreenWidth  = 64
	ScreenHeight = 32
	KeyCount     = 16
)

// Framebuffer is the 64x32 monochrome screen, row major.
type Framebuffer [ScreenWidth * ScreenHeight]bool

func (fb *Framebuffer) Clear() {
	*fb = Framebuffer{}
}

// Pixel reports whether the pixel at (x, y) is set. Coordinates wrap.
func (fb *Framebuffer) Pixel(x, y int) bool {
	return fb[(y%ScreenHeight)*ScreenWidth+x%ScreenWidth]
}

// Draw XORs an 8 pixel wide sprite onto the screen with its top left corner
// at (x, y). Every pixel position wraps around the screen edges. It reports
// whether any set pixel was cleared.
func (fb *Framebuffer) Draw(x, y uint8, sprite []uint8) (collision bool) {
	for row, bits := range sprite {
		py := (int(y) + row) % ScreenHeight
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			i := py*ScreenWidth + (int(x)+col)%ScreenWidth
			if fb[i] {
				collision = true
			}
			fb[i] = !fb[i]
		}
	}
	return collision
}

// Timers are the delay and sound counters, decremented by Tick at 60Hz.
type Timers struct {
	Delay uint8
	Sound uint8
}

func (t *Timers) Tick() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}

// Keypad holds the state of keys 0-F, true while held down.
type Keypad [KeyCount]bool
