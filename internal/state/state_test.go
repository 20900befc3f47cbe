package state

import (
	"bytes"
	"testing"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/testrom"
)

func load(t *testing.T, r *Runtime, rom, sram []byte) []event.Event {
	t.Helper()
	return r.HandleEvent(event.NewLoadCartridge(rom, sram))
}

func TestLoadCartridgeEmitsLoaded(t *testing.T) {
	r := New(Settings{}, nil)
	out := load(t, r, testrom.Build(testrom.Options{Mapper: 1, Battery: true}), nil)
	if len(out) != 1 {
		t.Fatalf("follow-ups got %d want 1", len(out))
	}
	got, ok := out[0].(event.CartridgeLoaded)
	if !ok || got.Mapper != 1 || !got.Battery || got.PRGBanks != 1 {
		t.Fatalf("follow-up got %#v", out[0])
	}
	if info, ok := r.View().Cartridge(); !ok || info.MapperStr != "MMC1 (SxROM)" {
		t.Fatalf("view cartridge got %+v %v", info, ok)
	}
}

func TestMalformedCartridgeKeepsPriorState(t *testing.T) {
	r := New(Settings{}, nil)
	load(t, r, testrom.Build(testrom.Options{Marker: 0x11}), nil)
	r.HandleEvent(event.RunFrame{})
	before := r.Machine()
	frame := r.Frame()

	out := load(t, r, []byte{'N', 'E', 'S'}, nil)
	if len(out) != 1 || out[0].Kind() != event.KindCartridgeRejected {
		t.Fatalf("follow-ups got %v", out)
	}
	if r.Machine() != before || r.Frame() != frame {
		t.Fatalf("rejected load replaced the machine")
	}
	if got := r.Machine().Peek(0x9000); got != 0x11 {
		t.Fatalf("marker got %02X want 11", got)
	}
}

func TestReloadReplacesStateAndDropsSRAM(t *testing.T) {
	r := New(Settings{}, nil)
	rom := testrom.Build(testrom.Options{Mapper: 1, Battery: true, Marker: 1})
	save := make([]byte, 0x2000)
	save[0] = 0x42
	load(t, r, rom, save)
	if got := r.SRAM(); got[0] != 0x42 {
		t.Fatalf("SRAM with load got %02X", got[0])
	}
	r.HandleEvent(event.RunFrame{})

	load(t, r, testrom.Build(testrom.Options{Mapper: 1, Battery: true, Marker: 2}), nil)
	if r.Frame() != 0 {
		t.Fatalf("frame counter carried over: %d", r.Frame())
	}
	if got := r.Machine().Peek(0x9000); got != 2 {
		t.Fatalf("marker got %d want 2", got)
	}
	if got := r.SRAM(); got[0] != 0 {
		t.Fatalf("SRAM carried over: %02X", got[0])
	}
	save[0] = 0x77
	r.HandleEvent(event.NewLoadSRAM(save))
	if got := r.SRAM(); got[0] != 0x77 {
		t.Fatalf("LoadSRAM got %02X want 77", got[0])
	}
	r.HandleEvent(event.NewLoadSRAM([]byte{0x55}))
	if got := r.SRAM(); got[0] != 0x77 {
		t.Fatalf("short LoadSRAM applied: %02X", got[0])
	}
}

func TestWrongSizeSRAMRejectsLoad(t *testing.T) {
	r := New(Settings{}, nil)
	load(t, r, testrom.Build(testrom.Options{Marker: 0x11}), nil)
	before := r.Machine()

	battery := testrom.Build(testrom.Options{Mapper: 1, Battery: true, Marker: 0x22})
	for _, n := range []int{1, 0x2000 + 100} {
		out := load(t, r, battery, make([]byte, n))
		if len(out) != 1 {
			t.Fatalf("%d bytes: follow-ups got %v", n, out)
		}
		rej, ok := out[0].(event.CartridgeRejected)
		if !ok || !rej.BadSRAM {
			t.Fatalf("%d bytes: follow-up got %#v", n, out[0])
		}
		if r.Machine() != before {
			t.Fatalf("%d bytes: rejected load replaced the machine", n)
		}
	}
	if out := load(t, r, battery, make([]byte, 0x2000)); out[0].Kind() != event.KindCartridgeLoaded {
		t.Fatalf("exact size got %v", out)
	}
}

func TestSettingsSurviveReload(t *testing.T) {
	r := New(Settings{SampleRate: 48000, BufferSize: 1024}, nil)
	r.HandleEvent(event.ToggleChannelMute{Channel: int(apu.Triangle)})
	load(t, r, testrom.Minimal(), nil)
	m := r.Machine()
	if m.AudioSampleRate() != 48000 || m.AudioBufferSize() != 1024 {
		t.Fatalf("audio settings got %d/%d", m.AudioSampleRate(), m.AudioBufferSize())
	}
	if !m.Channels()[apu.Triangle].Muted {
		t.Fatalf("triangle mute lost on reload")
	}
	r.HandleEvent(event.ToggleChannelMute{Channel: int(apu.Triangle)})
	if r.Settings().Muted[apu.Triangle] {
		t.Fatalf("second toggle should unmute")
	}
	if out := r.HandleEvent(event.ToggleChannelMute{Channel: 42}); out != nil {
		t.Fatalf("bad channel produced %v", out)
	}
}

func TestRunScanlineAndFrame(t *testing.T) {
	r := New(Settings{}, nil)
	load(t, r, testrom.Minimal(), nil)
	start := r.Scanline()
	r.HandleEvent(event.RunScanline{})
	if r.Scanline() == start {
		t.Fatalf("RunScanline did not advance")
	}
	r.HandleEvent(event.RunFrame{})
	if r.Scanline() != emu.VBlankScanline {
		t.Fatalf("RunFrame ended at %d", r.Scanline())
	}
}

func TestResetRestartsProgram(t *testing.T) {
	r := New(Settings{}, nil)
	load(t, r, testrom.Minimal(), nil)
	r.HandleEvent(event.RunFrame{})
	r.HandleEvent(event.Reset{})
	if pc := r.Machine().CPU().PC; pc != 0x8000 {
		t.Fatalf("PC after reset got %#04x", pc)
	}
}

func TestViewIgnoresUnrelatedEvents(t *testing.T) {
	r := New(Settings{}, nil)
	screen := append([]byte(nil), r.Screen()...)
	for _, e := range []event.Event{event.Update{}, event.RequestRender{}, event.MouseClick{X: 1, Y: 1}} {
		if out := r.HandleEvent(e); out != nil {
			t.Fatalf("%v produced %v", e.Kind(), out)
		}
	}
	if !bytes.Equal(screen, r.Screen()) {
		t.Fatalf("screen changed without stepping")
	}
}
