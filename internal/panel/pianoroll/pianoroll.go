// Package pianoroll draws a scrolling note history for the tonal APU channels.
package pianoroll

import (
	"image"
	"image/color"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
)

const (
	Name   = "piano_roll"
	Width  = 480
	Height = 270

	lowestNote  = 21  // A0
	highestNote = 108 // C8
	keyHeight   = 3
	topMargin   = 3
	keysWidth   = 32
	historyLen  = Width - keysWidth

	swatchSize = 10
	swatchGap  = 4
	legendTop  = 4
)

// tracked lists the channels with a meaningful pitch, in legend order.
var tracked = [...]apu.Channel{apu.Pulse1, apu.Pulse2, apu.Triangle}

var (
	background   = color.RGBA{0x14, 0x14, 0x1C, 0xFF}
	whiteKey     = color.RGBA{0xD8, 0xD8, 0xD8, 0xFF}
	blackKey     = color.RGBA{0x28, 0x28, 0x30, 0xFF}
	octaveLine   = color.RGBA{0x24, 0x24, 0x30, 0xFF}
	hiddenSwatch = color.RGBA{0x40, 0x40, 0x48, 0xFF}
)

type note struct {
	key    int // MIDI note, 0 when silent
	volume int
}

type column [len(tracked)]note

// Roll keeps one history column per Update, newest on the right.
type Roll struct {
	canvas  *panel.Canvas
	history [historyLen]column
	head    int // index of the oldest column
	hidden  [len(tracked)]bool
}

func New() *Roll {
	r := &Roll{canvas: panel.NewCanvas(Width, Height)}
	r.render()
	return r
}

func (r *Roll) Name() string         { return Name }
func (r *Roll) Size() (int, int)     { return Width, Height }
func (r *Roll) ActiveCanvas() []byte { return r.canvas.Pix() }

// Hidden reports whether the i-th legend entry is toggled off.
func (r *Roll) Hidden(i int) bool { return i >= 0 && i < len(r.hidden) && r.hidden[i] }

func (r *Roll) HandleEvent(v state.View, e event.Event) []event.Event {
	switch ev := e.(type) {
	case event.Update:
		r.sample(v)
	case event.RequestRender:
		if panel.RenderRequested(ev, Name) {
			r.render()
		}
	case event.MouseClick:
		if mc, ok := panel.ClickFor(ev, Name); ok {
			if i, hit := swatchAt(mc.X, mc.Y); hit {
				r.hidden[i] = !r.hidden[i]
			}
		}
	}
	return nil
}

func swatchRect(i int) image.Rectangle {
	x := Width - swatchGap - (len(tracked)-i)*(swatchSize+swatchGap) + swatchGap
	return image.Rect(x, legendTop, x+swatchSize, legendTop+swatchSize)
}

func swatchAt(x, y int) (int, bool) {
	p := image.Pt(x, y)
	for i := range tracked {
		if p.In(swatchRect(i)) {
			return i, true
		}
	}
	return 0, false
}

func (r *Roll) sample(v state.View) {
	chans := v.Channels()
	var col column
	for i, ch := range tracked {
		if int(ch) >= len(chans) {
			continue
		}
		s := chans[ch]
		if !s.Enabled || s.Volume == 0 {
			continue
		}
		if key, ok := panel.MIDINote(s.Frequency); ok && key >= lowestNote && key <= highestNote {
			col[i] = note{key: key, volume: s.Volume}
		}
	}
	r.history[r.head] = col
	r.head = (r.head + 1) % historyLen
}

func noteY(key int) int { return topMargin + (highestNote-key)*keyHeight }

func isBlack(key int) bool {
	switch key % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// shade scales a channel colour toward the background by volume (0..15).
func shade(c color.RGBA, volume int) color.RGBA {
	f := 0.3 + 0.7*float64(volume)/15
	mix := func(a, b uint8) uint8 { return uint8(float64(b) + (float64(a)-float64(b))*f) }
	return color.RGBA{mix(c.R, background.R), mix(c.G, background.G), mix(c.B, background.B), 0xFF}
}

func (r *Roll) render() {
	c := r.canvas
	c.Fill(background)

	latest := r.history[(r.head+historyLen-1)%historyLen]
	for key := lowestNote; key <= highestNote; key++ {
		y := noteY(key)
		col := whiteKey
		if isBlack(key) {
			col = blackKey
		}
		for i, n := range latest {
			if n.key == key && !r.hidden[i] {
				col = panel.ChannelColors[tracked[i]]
			}
		}
		c.FillRect(image.Rect(0, y, keysWidth-2, y+keyHeight-1), col)
		if key%12 == 0 {
			c.FillRect(image.Rect(keysWidth, y+keyHeight-1, Width, y+keyHeight), octaveLine)
		}
	}

	for x := 0; x < historyLen; x++ {
		col := r.history[(r.head+x)%historyLen]
		for i, n := range col {
			if n.key == 0 || r.hidden[i] {
				continue
			}
			y := noteY(n.key)
			c.FillRect(image.Rect(keysWidth+x, y, keysWidth+x+1, y+keyHeight), shade(panel.ChannelColors[tracked[i]], n.volume))
		}
	}

	for i, ch := range tracked {
		sw := swatchRect(i)
		if r.hidden[i] {
			c.FillRect(sw, hiddenSwatch)
			continue
		}
		c.FillRect(sw, panel.ChannelColors[ch])
	}
}
