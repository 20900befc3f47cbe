package bus

// Button bits as latched by the standard controller, in shift-out order.
const (
	ButtonA byte = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a standard NES joypad behind a 4021 shift register.
type Controller struct {
	buttons byte
	shift   byte
	strobe  bool
}

// Set replaces the held-button mask.
func (c *Controller) Set(buttons byte) {
	c.buttons = buttons
	if c.strobe {
		c.shift = buttons
	}
}

func (c *Controller) Buttons() byte { return c.buttons }

// Write handles the strobe bit written to $4016.
func (c *Controller) Write(v byte) {
	c.strobe = v&1 != 0
	if c.strobe {
		c.shift = c.buttons
	}
}

// Read shifts out the next button; after eight reads the port returns 1s.
func (c *Controller) Read() byte {
	if c.strobe {
		return c.buttons & 1
	}
	v := c.shift & 1
	c.shift = c.shift>>1 | 0x80
	return v
}
