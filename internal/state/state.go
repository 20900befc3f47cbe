// Package state owns the running console and the user settings that outlive it.
package state

import (
	"fmt"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"go.uber.org/zap"
)

// Settings survive cartridge reloads.
type Settings struct {
	SampleRate int
	BufferSize int
	Muted      [apu.NumChannels]bool
}

// Defaults fills zero values.
func (s *Settings) Defaults() {
	if s.SampleRate <= 0 {
		s.SampleRate = apu.DefaultSampleRate
	}
	if s.BufferSize <= 0 {
		s.BufferSize = apu.DefaultBufferSize
	}
}

// CartridgeInfo describes the inserted cartridge.
type CartridgeInfo struct {
	Mapper    int
	MapperStr string
	PRGBanks  int
	CHRBanks  int
	Battery   bool
}

// View is the read-only face of the runtime handed to panels.
type View interface {
	Cartridge() (CartridgeInfo, bool)
	Scanline() int
	Frame() uint64
	Channels() []apu.ChannelState
	// Waveform copies recent normalized output levels of ch into dst, oldest first.
	Waveform(ch apu.Channel, dst []float32) int
	Settings() Settings
}

// Runtime is the single owner of the emulated machine.
type Runtime struct {
	machine  *emu.Machine
	settings Settings
	log      *zap.Logger
}

// New returns a runtime with an empty cartridge slot. A nil logger disables logging.
func New(settings Settings, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings.Defaults()
	r := &Runtime{settings: settings, log: logger.Named("runtime")}
	r.machine = emu.New(r.emuConfig())
	r.applySettings()
	return r
}

func (r *Runtime) emuConfig() emu.Config {
	return emu.Config{SampleRate: r.settings.SampleRate, BufferSize: r.settings.BufferSize}
}

func (r *Runtime) applySettings() {
	r.machine.SetAudioSampleRate(r.settings.SampleRate)
	r.machine.SetAudioBufferSize(r.settings.BufferSize)
	for ch, muted := range r.settings.Muted {
		r.machine.SetChannelMuted(apu.Channel(ch), muted)
	}
}

// HandleEvent applies e and returns follow-up events. It never fails: bad input
// becomes a log line and, for cartridges, a CartridgeRejected event.
func (r *Runtime) HandleEvent(e event.Event) []event.Event {
	switch ev := e.(type) {
	case event.LoadCartridge:
		return r.loadCartridge(ev)
	case event.LoadSRAM:
		if !r.machine.SetSRAM(ev.Data) {
			r.log.Warn("save memory ignored",
				zap.Int("bytes", len(ev.Data)),
				zap.Int("want", r.machine.SRAMSize()))
		}
	case event.Reset:
		r.machine.Reset()
	case event.RunScanline:
		r.machine.RunScanline()
	case event.RunFrame:
		r.machine.RunFrame()
	case event.ToggleChannelMute:
		if ev.Channel < 0 || ev.Channel >= apu.NumChannels {
			r.log.Warn("mute toggle for unknown channel", zap.Int("channel", ev.Channel))
			return nil
		}
		r.settings.Muted[ev.Channel] = !r.settings.Muted[ev.Channel]
		r.machine.SetChannelMuted(apu.Channel(ev.Channel), r.settings.Muted[ev.Channel])
	}
	return nil
}

func (r *Runtime) loadCartridge(ev event.LoadCartridge) []event.Event {
	m, err := emu.FromROM(ev.ROM, r.emuConfig())
	if err != nil {
		r.log.Warn("cartridge rejected, keeping current state", zap.Error(err), zap.Int("bytes", len(ev.ROM)))
		return []event.Event{event.CartridgeRejected{Reason: err.Error()}}
	}
	if ev.SRAM != nil && m.HasSRAM() && len(ev.SRAM) != m.SRAMSize() {
		r.log.Warn("save memory size mismatch, keeping current state",
			zap.Int("bytes", len(ev.SRAM)),
			zap.Int("want", m.SRAMSize()))
		return []event.Event{event.CartridgeRejected{
			Reason:  fmt.Sprintf("save memory is %d bytes, cartridge has %d", len(ev.SRAM), m.SRAMSize()),
			BadSRAM: true,
		}}
	}
	r.machine = m
	r.applySettings()
	if ev.SRAM != nil && !m.SetSRAM(ev.SRAM) {
		r.log.Debug("save memory supplied for a cartridge without battery RAM")
	}
	h := m.Header()
	r.log.Info("cartridge loaded",
		zap.String("mapper", h.MapperStr),
		zap.Int("prg_banks", h.PRGBanks),
		zap.Int("chr_banks", h.CHRBanks),
		zap.Bool("battery", h.Battery))
	return []event.Event{event.CartridgeLoaded{
		Mapper:   h.Mapper,
		PRGBanks: h.PRGBanks,
		CHRBanks: h.CHRBanks,
		Battery:  h.Battery,
	}}
}

// View returns the read-only view panels receive.
func (r *Runtime) View() View { return view{r} }

// Boundary helpers. These are plain accessors rather than events because they
// only forward scalars or buffers.

func (r *Runtime) Screen() []byte                 { return r.machine.Screen() }
func (r *Runtime) HasCartridge() bool             { return r.machine.HasCartridge() }
func (r *Runtime) SetInput(player int, mask byte) { r.machine.SetInput(player, mask) }
func (r *Runtime) HasSRAM() bool                  { return r.machine.HasSRAM() }
func (r *Runtime) SRAM() []byte                   { return r.machine.SRAM() }
func (r *Runtime) SRAMSize() int                  { return r.machine.SRAMSize() }
func (r *Runtime) AudioBufferFull() bool          { return r.machine.AudioBufferFull() }
func (r *Runtime) ConsumeAudioSamples() []int16   { return r.machine.ConsumeAudioSamples() }
func (r *Runtime) Scanline() int                  { return r.machine.Scanline() }
func (r *Runtime) Frame() uint64                  { return r.machine.Frame() }
func (r *Runtime) Channels() []apu.ChannelState   { return r.machine.Channels() }
func (r *Runtime) Settings() Settings             { return r.settings }
func (r *Runtime) Machine() *emu.Machine          { return r.machine }

// SetSampleRate stores the rate in settings and applies it to the running machine.
func (r *Runtime) SetSampleRate(hz int) {
	r.settings.SampleRate = hz
	r.settings.Defaults()
	r.machine.SetAudioSampleRate(r.settings.SampleRate)
}

// SetBufferSize stores the block size in settings and applies it to the running machine.
func (r *Runtime) SetBufferSize(n int) {
	r.settings.BufferSize = n
	r.settings.Defaults()
	r.machine.SetAudioBufferSize(r.settings.BufferSize)
}

type view struct{ r *Runtime }

func (v view) Cartridge() (CartridgeInfo, bool) {
	h := v.r.machine.Header()
	if h == nil {
		return CartridgeInfo{}, false
	}
	return CartridgeInfo{
		Mapper:    h.Mapper,
		MapperStr: h.MapperStr,
		PRGBanks:  h.PRGBanks,
		CHRBanks:  h.CHRBanks,
		Battery:   h.Battery,
	}, true
}

func (v view) Scanline() int                { return v.r.machine.Scanline() }
func (v view) Frame() uint64                { return v.r.machine.Frame() }
func (v view) Channels() []apu.ChannelState { return v.r.machine.Channels() }
func (v view) Settings() Settings           { return v.r.settings }

func (v view) Waveform(ch apu.Channel, dst []float32) int {
	return v.r.machine.Waveform(ch, dst)
}
