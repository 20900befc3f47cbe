package emu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/testrom"
)

func mustMachine(t *testing.T, rom []byte) *Machine {
	t.Helper()
	m, err := FromROM(rom, Config{})
	if err != nil {
		t.Fatalf("FromROM: %v", err)
	}
	return m
}

func TestFromROMRejectsGarbage(t *testing.T) {
	_, err := FromROM([]byte("not a rom"), Config{})
	if !errors.Is(err, cart.ErrBadMagic) {
		t.Fatalf("got %v want ErrBadMagic", err)
	}
}

func TestRunFrameStopsAtVBlank(t *testing.T) {
	m := mustMachine(t, testrom.Minimal())
	m.RunFrame()
	if m.Scanline() != VBlankScanline {
		t.Fatalf("scanline got %d want %d", m.Scanline(), VBlankScanline)
	}
	f := m.Frame()
	// parked on the sentinel: the next call must run a whole frame, not return
	m.RunFrame()
	if m.Scanline() != VBlankScanline || m.Frame() != f+1 {
		t.Fatalf("second frame: scanline=%d frame=%d want %d/%d", m.Scanline(), m.Frame(), VBlankScanline, f+1)
	}
}

func TestRunScanlineAdvances(t *testing.T) {
	m := mustMachine(t, testrom.Minimal())
	start := m.Scanline()
	m.RunScanline()
	if m.Scanline() == start {
		t.Fatalf("scanline did not change from %d", start)
	}
}

func TestNMICountsFrames(t *testing.T) {
	m := mustMachine(t, testrom.Minimal())
	for i := 0; i < 4; i++ {
		m.RunFrame()
	}
	if got := m.Peek(0x0010); got < 3 {
		t.Fatalf("NMI counter got %d want >= 3", got)
	}
}

func TestRunFrameMatchesScanlineLoop(t *testing.T) {
	a := mustMachine(t, testrom.Minimal())
	b := mustMachine(t, testrom.Minimal())
	for i := 0; i < 3; i++ {
		a.RunFrame()
		for b.Scanline() == VBlankScanline {
			b.RunScanline()
		}
		for b.Scanline() != VBlankScanline {
			b.RunScanline()
		}
	}
	if !bytes.Equal(a.Screen(), b.Screen()) {
		t.Fatalf("atomic and scanline stepping diverged")
	}
}

func TestEmptySlotStillSteps(t *testing.T) {
	m := New(Config{})
	if m.HasCartridge() {
		t.Fatalf("empty machine reports a cartridge")
	}
	m.RunFrame()
	if m.Scanline() != VBlankScanline {
		t.Fatalf("scanline got %d", m.Scanline())
	}
	if m.HasSRAM() || m.SRAM() != nil || m.SetSRAM([]byte{1}) {
		t.Fatalf("empty machine must not expose SRAM")
	}
}

func TestSRAMRoundTrip(t *testing.T) {
	m := mustMachine(t, testrom.Build(testrom.Options{Mapper: 1, Battery: true}))
	if !m.HasSRAM() {
		t.Fatalf("battery cart should report SRAM")
	}
	if m.SRAMSize() != 0x2000 {
		t.Fatalf("SRAMSize got %d want 8192", m.SRAMSize())
	}
	save := make([]byte, 0x2000)
	save[0], save[1] = 0xDE, 0xAD
	if !m.SetSRAM(save) {
		t.Fatalf("SetSRAM refused")
	}
	for _, n := range []int{2, 0x2001} {
		if m.SetSRAM(make([]byte, n)) {
			t.Fatalf("SetSRAM accepted %d bytes", n)
		}
	}
	got := m.SRAM()
	if len(got) != 0x2000 || got[0] != 0xDE || got[1] != 0xAD {
		t.Fatalf("SRAM got len=%d", len(got))
	}
	if plain := mustMachine(t, testrom.Minimal()); plain.HasSRAM() {
		t.Fatalf("cart without battery reports SRAM")
	}
}

func TestSetInputIgnoresBadPlayer(t *testing.T) {
	m := mustMachine(t, testrom.Minimal())
	m.SetInput(5, 0xFF)
	m.SetButtons(1, Buttons{A: true, Right: true})
	if got := m.Bus().Pads[1].Buttons(); got != 0x81 {
		t.Fatalf("player 2 mask got %02X want 81", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	if cfg.SampleRate != 44100 || cfg.BufferSize != 4096 {
		t.Fatalf("Defaults got %+v", cfg)
	}
	m := New(Config{})
	if m.AudioSampleRate() != 44100 || m.AudioBufferSize() != 4096 {
		t.Fatalf("defaults got %d/%d", m.AudioSampleRate(), m.AudioBufferSize())
	}
}

func TestAudioProducedWhileRunning(t *testing.T) {
	m := mustMachine(t, testrom.Minimal())
	m.RunFrame()
	if s := m.ConsumeAudioSamples(); len(s) == 0 {
		t.Fatalf("no samples after one frame")
	}
}

func TestStepRunsOneInstruction(t *testing.T) {
	m := mustMachine(t, testrom.Minimal())
	before := m.CPU().Cycles
	pc := m.CPU().PC
	if n := m.Step(); n < 2 {
		t.Fatalf("Step got %d cycles", n)
	}
	if m.CPU().PC == pc || m.CPU().Cycles <= before {
		t.Fatalf("CPU did not advance: PC %04X cycles %d", m.CPU().PC, m.CPU().Cycles)
	}
	if New(Config{}).Step() != 0 {
		t.Fatalf("empty slot executed an instruction")
	}
}
