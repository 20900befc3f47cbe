package emu

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/bus"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cpu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/ppu"
)

// VBlankScanline is the scanline on which the PPU raises vblank. Frame stepping
// uses it as the frame-boundary sentinel.
const VBlankScanline = ppu.VBlankLine

type Buttons struct {
	A, B, Select, Start   bool
	Up, Down, Left, Right bool
}

// Mask packs the buttons in controller shift order.
func (b Buttons) Mask() byte {
	var mask byte
	if b.A {
		mask |= bus.ButtonA
	}
	if b.B {
		mask |= bus.ButtonB
	}
	if b.Select {
		mask |= bus.ButtonSelect
	}
	if b.Start {
		mask |= bus.ButtonStart
	}
	if b.Up {
		mask |= bus.ButtonUp
	}
	if b.Down {
		mask |= bus.ButtonDown
	}
	if b.Left {
		mask |= bus.ButtonLeft
	}
	if b.Right {
		mask |= bus.ButtonRight
	}
	return mask
}

// Machine is one powered-on console: CPU, bus, PPU, APU and an optional cartridge.
type Machine struct {
	cfg    Config
	bus    *bus.Bus
	cpu    *cpu.CPU
	cart   cart.Cartridge
	header *cart.Header
}

// New creates a console with an empty cartridge slot. Only the PPU runs until a
// cartridge is present.
func New(cfg Config) *Machine {
	cfg.Defaults()
	return newMachine(cfg, nil, nil)
}

// FromROM parses rom and powers on a console with it inserted.
func FromROM(rom []byte, cfg Config) (*Machine, error) {
	c, h, err := cart.NewCartridge(rom)
	if err != nil {
		return nil, fmt.Errorf("load cartridge: %w", err)
	}
	cfg.Defaults()
	return newMachine(cfg, c, h), nil
}

func newMachine(cfg Config, c cart.Cartridge, h *cart.Header) *Machine {
	b := bus.New(c)
	b.APU.SetSampleRate(cfg.SampleRate)
	b.APU.SetBufferSize(cfg.BufferSize)
	m := &Machine{cfg: cfg, bus: b, cart: c, header: h}
	m.cpu = cpu.New(b)
	b.PPU.SetNMI(m.cpu.TriggerNMI)
	if c != nil {
		m.cpu.Reset()
	}
	return m
}

// Header returns the parsed iNES header, or nil with no cartridge.
func (m *Machine) Header() *cart.Header { return m.header }

// HasCartridge reports whether a cartridge is inserted.
func (m *Machine) HasCartridge() bool { return m != nil && m.cart != nil }

// Reset is the console's reset button: CPU and PPU restart, APU channels silence.
func (m *Machine) Reset() {
	m.bus.PPU.Reset()
	m.bus.APU.Reset()
	if m.cart != nil {
		m.cpu.Reset()
	}
}

// Step executes one CPU instruction and advances the rest of the system by the
// same number of cycles. With no cartridge it does nothing and returns 0.
func (m *Machine) Step() int {
	if m.cart == nil {
		return 0
	}
	m.cpu.SetIRQ(m.bus.APU.IRQ())
	if m.cfg.Trace != nil {
		fmt.Fprintln(m.cfg.Trace, m.cpu.Trace())
	}
	cycles := m.cpu.Step()
	m.bus.Tick(cycles)
	if s := m.bus.TakeStall(); s > 0 {
		m.cpu.Stall(s)
	}
	return cycles
}

// RunScanline runs until the PPU moves to a different scanline. The instruction
// straddling the boundary completes, so the PPU may be a few dots into the next line.
func (m *Machine) RunScanline() {
	start := m.bus.PPU.Scanline()
	if m.cart == nil {
		for m.bus.PPU.Scanline() == start {
			m.bus.PPU.Tick(1)
		}
		return
	}
	for m.bus.PPU.Scanline() == start {
		m.Step()
	}
}

// RunFrame steps scanline by scanline until the next arrival at VBlankScanline,
// first leaving it if the machine is parked there.
func (m *Machine) RunFrame() {
	for m.Scanline() == VBlankScanline {
		m.RunScanline()
	}
	for m.Scanline() != VBlankScanline {
		m.RunScanline()
	}
}

func (m *Machine) Scanline() int { return m.bus.PPU.Scanline() }

// Frame returns the number of completed PPU frames.
func (m *Machine) Frame() uint64 { return m.bus.PPU.Frame() }

// Screen returns the live 256x240 palette-index framebuffer. Callers must not modify it.
func (m *Machine) Screen() []byte { return m.bus.PPU.Screen[:] }

// SetInput sets the held buttons for player 0 or 1; other indices are ignored.
func (m *Machine) SetInput(player int, mask byte) {
	if player < 0 || player >= len(m.bus.Pads) {
		return
	}
	m.bus.Pads[player].Set(mask)
}

func (m *Machine) SetButtons(player int, b Buttons) { m.SetInput(player, b.Mask()) }

// Audio

func (m *Machine) SetAudioSampleRate(hz int) { m.bus.APU.SetSampleRate(hz) }
func (m *Machine) AudioSampleRate() int      { return m.bus.APU.SampleRate() }
func (m *Machine) SetAudioBufferSize(n int)  { m.bus.APU.SetBufferSize(n) }
func (m *Machine) AudioBufferSize() int      { return m.bus.APU.BufferSize() }
func (m *Machine) AudioBufferFull() bool     { return m.bus.APU.BufferFull() }
func (m *Machine) ConsumeAudioSamples() []int16 {
	return m.bus.APU.ConsumeSamples()
}

func (m *Machine) SetChannelMuted(ch apu.Channel, muted bool) { m.bus.APU.SetMuted(ch, muted) }
func (m *Machine) Channels() []apu.ChannelState               { return m.bus.APU.Channels() }

// Waveform copies recent output levels of ch; see apu.APU.Waveform.
func (m *Machine) Waveform(ch apu.Channel, dst []float32) int {
	return m.bus.APU.Waveform(ch, dst)
}

// SRAM

// HasSRAM reports whether the cartridge has battery-backed PRG RAM.
func (m *Machine) HasSRAM() bool {
	if m == nil || m.cart == nil {
		return false
	}
	bb, ok := m.cart.(cart.BatteryBacked)
	return ok && bb.HasBattery()
}

// SRAM returns a copy of battery-backed RAM, or nil when there is none.
func (m *Machine) SRAM() []byte {
	if !m.HasSRAM() {
		return nil
	}
	return m.cart.(cart.BatteryBacked).SaveRAM()
}

// SRAMSize is the length of battery-backed RAM, or 0 when there is none.
func (m *Machine) SRAMSize() int {
	if !m.HasSRAM() {
		return 0
	}
	return m.cart.(cart.BatteryBacked).RAMSize()
}

// SetSRAM loads save data into the cartridge and reports whether it was
// applied. Data must be exactly SRAMSize bytes.
func (m *Machine) SetSRAM(data []byte) bool {
	if !m.HasSRAM() || len(data) != m.SRAMSize() {
		return false
	}
	m.cart.(cart.BatteryBacked).LoadRAM(data)
	return true
}

// Tools

// CPU exposes the processor for test runners and monitors.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Bus exposes the system bus for test runners and monitors.
func (m *Machine) Bus() *bus.Bus { return m.bus }

// Peek reads work RAM or cartridge space without register side effects.
// PPU and APU registers read as 0.
func (m *Machine) Peek(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return m.bus.RAM()[addr&0x07FF]
	case addr >= 0x4020 && m.cart != nil:
		return m.cart.CPURead(addr)
	default:
		return 0
	}
}
