package console

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Buttons, as bits:
// 0 - A
// 1 - B
// 2 - Select
// 3 - Start
// 4 - Up
// 5 - Down
// 6 - Left
// 7 - Right
var keys []ebiten.Key = []ebiten.Key{
	ebiten.KeyA,     // A
	ebiten.KeyB,     // B
	ebiten.KeySpace, // Select
	ebiten.KeyEnter, // Start
	ebiten.KeyUp,    // Up
	ebiten.KeyDown,  // Down
	ebiten.KeyLeft,  // Left
	ebiten.KeyRight, // Right
}

type controller struct {
	strobe  bool
	buttons uint8
	idx     uint8
}

func (c *controller) write(val uint8) {
	c.strobe = val&0x01 == 1
	if c.strobe {
		c.poll()
	}
	c.idx = 0
}

func (c *controller) read() uint8 {
	// While strobe is held high, the real shift register continuously
	// reloads from the button lines, so every read returns A's state.
	if c.strobe {
		c.poll()
		return c.buttons & 1
	}

	if c.idx > 7 {
		return 1
	}

	ret := (c.buttons >> c.idx) & 1
	c.idx++
	return ret
}

func (c *controller) poll() {
	var buttons uint8
	for i, key := range keys {
		if ebiten.IsKeyPressed(key) {
			buttons |= 1 << i
		}
	}
	c.buttons = buttons
}
