// Package apuwindow is the audio visualizer: one oscilloscope strip per APU channel.
package apuwindow

import (
	"fmt"
	"image"
	"image/color"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
)

const (
	Name   = "apu_window"
	Width  = 256
	Height = 500

	stripHeight  = Height / apu.NumChannels
	headerHeight = 16
)

var (
	background = color.RGBA{0x10, 0x10, 0x18, 0xFF}
	headerBG   = color.RGBA{0x20, 0x20, 0x2C, 0xFF}
	gridColor  = color.RGBA{0x30, 0x30, 0x40, 0xFF}
	textColor  = color.RGBA{0xE0, 0xE0, 0xE0, 0xFF}
	mutedColor = color.RGBA{0x60, 0x60, 0x60, 0xFF}
)

// Window shows each channel's recent output and pitch. Clicking a channel's
// header toggles its mute.
type Window struct {
	canvas *panel.Canvas
	states [apu.NumChannels]apu.ChannelState
	waves  [apu.NumChannels][Width]float32
}

func New() *Window {
	w := &Window{canvas: panel.NewCanvas(Width, Height)}
	for i := range w.states {
		w.states[i] = apu.ChannelState{Channel: apu.Channel(i), Name: apu.Channel(i).String()}
	}
	w.render()
	return w
}

func (w *Window) Name() string         { return Name }
func (w *Window) Size() (int, int)     { return Width, Height }
func (w *Window) ActiveCanvas() []byte { return w.canvas.Pix() }

func (w *Window) HandleEvent(v state.View, e event.Event) []event.Event {
	switch ev := e.(type) {
	case event.Update:
		w.sample(v)
	case event.RequestRender:
		if panel.RenderRequested(ev, Name) {
			w.render()
		}
	case event.MouseClick:
		if mc, ok := panel.ClickFor(ev, Name); ok {
			if ch, hit := channelAt(mc.X, mc.Y); hit {
				return []event.Event{event.ToggleChannelMute{Channel: int(ch)}}
			}
		}
	}
	return nil
}

// channelAt maps a click to the channel whose header contains it.
func channelAt(x, y int) (apu.Channel, bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0, false
	}
	if y%stripHeight >= headerHeight {
		return 0, false
	}
	return apu.Channel(y / stripHeight), true
}

func (w *Window) sample(v state.View) {
	for i, s := range v.Channels() {
		if i >= apu.NumChannels {
			break
		}
		w.states[i] = s
		v.Waveform(apu.Channel(i), w.waves[i][:])
	}
}

func (w *Window) render() {
	c := w.canvas
	c.Fill(background)
	for i := 0; i < apu.NumChannels; i++ {
		top := i * stripHeight
		w.renderStrip(top, w.states[i], w.waves[i][:])
	}
}

func (w *Window) renderStrip(top int, s apu.ChannelState, wave []float32) {
	c := w.canvas
	col := panel.ChannelColors[s.Channel]
	if s.Muted {
		col = mutedColor
	}
	c.FillRect(image.Rect(0, top, Width, top+headerHeight), headerBG)
	c.FillRect(image.Rect(0, top, 4, top+headerHeight), col)
	c.Text(8, top+1, s.Name, textColor)

	label := "--"
	if s.Enabled {
		if n, ok := panel.MIDINote(s.Frequency); ok && s.Channel != apu.Noise && s.Channel != apu.DMC {
			label = fmt.Sprintf("%-4s %7.1fHz", panel.NoteName(n), s.Frequency)
		} else {
			label = fmt.Sprintf("%7.1fHz", s.Frequency)
		}
	}
	if s.Muted {
		label = "MUTE " + label
	}
	c.Text(Width-4-panel.TextWidth(label), top+1, label, textColor)

	// scope area: baseline grid plus trace, 0 at the bottom
	scopeTop := top + headerHeight + 2
	scopeBottom := top + stripHeight - 3
	mid := (scopeTop + scopeBottom) / 2
	for x := 0; x < Width; x += 4 {
		c.Set(x, mid, gridColor)
	}
	span := float32(scopeBottom - scopeTop)
	prevY := scopeBottom - int(wave[0]*span)
	for x := 1; x < len(wave) && x < Width; x++ {
		y := scopeBottom - int(wave[x]*span)
		c.Line(x-1, prevY, x, y, col)
		prevY = y
	}
}
