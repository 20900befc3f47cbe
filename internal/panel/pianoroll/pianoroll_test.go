package pianoroll

import (
	"bytes"
	"image"
	"testing"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
)

type fakeView struct{ channels []apu.ChannelState }

func (f *fakeView) Cartridge() (state.CartridgeInfo, bool) { return state.CartridgeInfo{}, false }
func (f *fakeView) Scanline() int                          { return 0 }
func (f *fakeView) Frame() uint64                          { return 0 }
func (f *fakeView) Channels() []apu.ChannelState           { return f.channels }
func (f *fakeView) Settings() state.Settings               { return state.Settings{} }
func (f *fakeView) Waveform(apu.Channel, []float32) int    { return 0 }

// playing returns a view where pulse 1 holds A4 at full volume.
func playing() *fakeView {
	v := &fakeView{channels: make([]apu.ChannelState, apu.NumChannels)}
	v.channels[apu.Pulse1] = apu.ChannelState{Channel: apu.Pulse1, Enabled: true, Frequency: 440, Volume: 15}
	return v
}

func TestSizeAndCanvas(t *testing.T) {
	r := New()
	if w, h := r.Size(); w != 480 || h != 270 {
		t.Fatalf("size got %dx%d", w, h)
	}
	if n := len(r.ActiveCanvas()); n != Width*Height*4 {
		t.Fatalf("canvas bytes %d", n)
	}
}

func TestUpdateScrollsHistory(t *testing.T) {
	r := New()
	v := playing()
	r.HandleEvent(v, event.Update{})
	r.HandleEvent(v, event.RequestRender{Panel: Name})
	img := r.canvas.Image()
	y := noteY(69) + 1
	want := panel.ChannelColors[apu.Pulse1]
	if got := img.RGBAAt(Width-1, y); got != want {
		t.Fatalf("newest column at A4 got %v want %v", got, want)
	}
	if got := img.RGBAAt(Width-2, y); got == want {
		t.Fatalf("only one column should be filled after one Update")
	}
	if got := img.RGBAAt(5, y); got != want {
		t.Fatalf("keyboard key for the playing note not highlighted: %v", got)
	}
}

func TestLegendClickHidesChannelLocally(t *testing.T) {
	r := New()
	v := playing()
	r.HandleEvent(v, event.Update{})
	sw := swatchRect(0)
	out := r.HandleEvent(v, event.MouseClick{Panel: Name, X: sw.Min.X + 1, Y: sw.Min.Y + 1})
	if len(out) != 0 {
		t.Fatalf("legend click must not emit events, got %v", out)
	}
	if !r.Hidden(0) {
		t.Fatalf("pulse 1 not hidden")
	}
	r.HandleEvent(v, event.RequestRender{})
	if got := r.canvas.Image().RGBAAt(Width-1, noteY(69)+1); got == panel.ChannelColors[apu.Pulse1] {
		t.Fatalf("hidden channel still drawn")
	}
}

func TestClickOutsideLegendIgnored(t *testing.T) {
	r := New()
	v := playing()
	r.HandleEvent(v, event.Update{})
	r.HandleEvent(v, event.RequestRender{})
	before := append([]byte(nil), r.ActiveCanvas()...)
	for _, mc := range []event.MouseClick{
		{Panel: Name, X: 100, Y: 100},
		{Panel: Name, X: Width + 5, Y: 5},
		{Panel: "apu_window", X: swatchRect(0).Min.X + 1, Y: legendTop + 1},
	} {
		if out := r.HandleEvent(v, mc); len(out) != 0 {
			t.Fatalf("click %+v produced events", mc)
		}
	}
	for i := range tracked {
		if r.Hidden(i) {
			t.Fatalf("channel %d hidden by a stray click", i)
		}
	}
	r.HandleEvent(v, event.RequestRender{})
	if !bytes.Equal(before, r.ActiveCanvas()) {
		t.Fatalf("stray clicks changed the rendering")
	}
}

func TestSwatchesInsidePanel(t *testing.T) {
	bounds := image.Rect(0, 0, Width, Height)
	for i := range tracked {
		if !swatchRect(i).In(bounds) {
			t.Fatalf("swatch %d at %v outside panel", i, swatchRect(i))
		}
	}
	if noteY(lowestNote)+keyHeight > Height {
		t.Fatalf("keyboard overflows panel")
	}
}
