// Package host is the in-process boundary an embedder drives: load a
// cartridge, step frames, copy pixels out and feed input and audio settings in.
//
// All state lives in one Context and calls into it must not overlap: every
// call runs to completion under a single lock, and a call that finds the lock
// already held panics instead of waiting. That includes a panel calling back
// into the Context from inside a cascade.
package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/compositor"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/emu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/eventbus"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel/apuwindow"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel/pianoroll"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
	"go.uber.org/zap"
)

var (
	ErrBadCartridge = errors.New("cartridge rejected")
	ErrUnknownPanel = errors.New("unknown panel")
	ErrBadPlayer    = errors.New("player index out of range")
	ErrNoSRAM       = errors.New("cartridge has no save memory")
	ErrSRAMSize     = errors.New("save memory size mismatch")
)

// Players is the number of controller ports.
const Players = 2

type Config struct {
	SampleRate int
	BufferSize int
	// AtomicFrameStep resolves one RunFrame per StepFrame instead of one
	// RunScanline event per scanline. The pixels are identical; panels just
	// see fewer events.
	AtomicFrameStep bool
	MaxCascade      int
	// Overlay defaults to the built-in scanline texture.
	Overlay *compositor.Overlay
	// Panels in dispatch order. Nil installs the APU window and the piano roll.
	Panels []panel.Panel
	Logger *zap.Logger
}

// Defaults fills zero values.
func (c *Config) Defaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = apu.DefaultSampleRate
	}
	if c.BufferSize <= 0 {
		c.BufferSize = apu.DefaultBufferSize
	}
	if c.MaxCascade <= 0 {
		c.MaxCascade = eventbus.DefaultMaxEvents
	}
	if c.Panels == nil {
		c.Panels = []panel.Panel{apuwindow.New(), pianoroll.New()}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// PanelInfo describes a registered panel.
type PanelInfo struct {
	Name          string
	Width, Height int
}

type Context struct {
	mu sync.Mutex

	cfg     Config
	runtime *state.Runtime
	panels  *panel.Registry
	bus     *eventbus.Bus
	overlay *compositor.Overlay
	log     *zap.Logger

	// set by the bus tap while a load cascade runs
	rejected []event.CartridgeRejected
}

func New(cfg Config) (*Context, error) {
	cfg.Defaults()
	reg, err := panel.NewRegistry(cfg.Panels...)
	if err != nil {
		return nil, err
	}
	ov := cfg.Overlay
	if ov == nil {
		if ov, err = compositor.DefaultOverlay(); err != nil {
			return nil, err
		}
	}
	c := &Context{
		cfg:     cfg,
		panels:  reg,
		overlay: ov,
		log:     cfg.Logger.Named("host"),
	}
	c.runtime = state.New(state.Settings{SampleRate: cfg.SampleRate, BufferSize: cfg.BufferSize}, cfg.Logger)
	c.bus = eventbus.New(c.runtime, reg,
		eventbus.WithMaxEvents(cfg.MaxCascade),
		eventbus.WithLogger(cfg.Logger),
		eventbus.WithTap(c.observe))
	return c, nil
}

func (c *Context) lock() {
	if !c.mu.TryLock() {
		panic("host: Context called while another call is in progress")
	}
}

func (c *Context) observe(e event.Event) {
	if r, ok := e.(event.CartridgeRejected); ok {
		c.rejected = append(c.rejected, r)
	}
}

func (c *Context) resolve(events ...event.Event) error {
	return c.bus.Resolve(events...)
}

// LoadCartridge replaces the running console with rom. A malformed image
// leaves the previous console untouched and returns an error wrapping
// ErrBadCartridge.
func (c *Context) LoadCartridge(rom []byte) error {
	return c.LoadCartridgeWithSRAM(rom, nil)
}

// LoadCartridgeWithSRAM is LoadCartridge with battery RAM restored from sram.
// A non-nil sram for a battery cartridge must match its RAM size exactly,
// otherwise nothing is loaded and the error wraps ErrSRAMSize as well.
func (c *Context) LoadCartridgeWithSRAM(rom, sram []byte) error {
	c.lock()
	defer c.mu.Unlock()

	c.rejected = c.rejected[:0]
	if err := c.resolve(event.NewLoadCartridge(rom, sram)); err != nil {
		return err
	}
	if len(c.rejected) > 0 {
		r := c.rejected[0]
		if r.BadSRAM {
			return fmt.Errorf("%w: %w: %s", ErrBadCartridge, ErrSRAMSize, r.Reason)
		}
		return fmt.Errorf("%w: %s", ErrBadCartridge, r.Reason)
	}
	return nil
}

func (c *Context) Reset() error {
	c.lock()
	defer c.mu.Unlock()
	return c.resolve(event.Reset{})
}

// StepFrame runs the console up to the start of the next vertical blank and
// then lets the panels sample the new state.
func (c *Context) StepFrame() error {
	c.lock()
	defer c.mu.Unlock()

	if c.runtime.HasCartridge() {
		if c.cfg.AtomicFrameStep {
			if err := c.resolve(event.RunFrame{}); err != nil {
				return err
			}
		} else {
			for c.runtime.Scanline() == emu.VBlankScanline {
				if err := c.resolve(event.RunScanline{}); err != nil {
					return err
				}
			}
			for c.runtime.Scanline() != emu.VBlankScanline {
				if err := c.resolve(event.RunScanline{}); err != nil {
					return err
				}
			}
		}
	}
	return c.resolve(event.Update{})
}

// DrawScreen writes the composed 256x240 RGBA frame into dst.
func (c *Context) DrawScreen(dst []byte) error {
	c.lock()
	defer c.mu.Unlock()
	return compositor.Compose(dst, c.runtime.Screen(), c.overlay)
}

// DrawPanel renders the named panel and copies its canvas into dst, which
// must be exactly width*height*4 bytes.
func (c *Context) DrawPanel(name string, dst []byte) error {
	c.lock()
	defer c.mu.Unlock()

	p, ok := c.panels.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	w, h := p.Size()
	if len(dst) != w*h*4 {
		return fmt.Errorf("%w: panel %s needs %d bytes, got %d", compositor.ErrBufferSize, name, w*h*4, len(dst))
	}
	if err := c.resolve(event.RequestRender{Panel: name}); err != nil {
		return err
	}
	canvas := p.ActiveCanvas()
	if len(canvas) != len(dst) {
		return fmt.Errorf("%w: panel %s drew %d bytes for a %dx%d canvas", compositor.ErrBufferSize, name, len(canvas), w, h)
	}
	copy(dst, canvas)
	return nil
}

// Panels lists registered panels in dispatch order.
func (c *Context) Panels() []PanelInfo {
	c.lock()
	defer c.mu.Unlock()

	var out []PanelInfo
	for _, p := range c.panels.Panels() {
		w, h := p.Size()
		out = append(out, PanelInfo{Name: p.Name(), Width: w, Height: h})
	}
	return out
}

// PanelClick forwards a click at panel-local (x, y) to the bus.
func (c *Context) PanelClick(name string, x, y int) error {
	c.lock()
	defer c.mu.Unlock()

	if _, ok := c.panels.Lookup(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	return c.resolve(event.MouseClick{Panel: name, X: x, Y: y})
}

// ToggleChannelMute flips the mute flag of an APU channel, the same way a
// click on its header in the APU window does.
func (c *Context) ToggleChannelMute(ch apu.Channel) error {
	if ch < 0 || ch >= apu.NumChannels {
		return fmt.Errorf("unknown channel %d", ch)
	}
	c.lock()
	defer c.mu.Unlock()
	return c.resolve(event.ToggleChannelMute{Channel: int(ch)})
}

// SetInput latches the button mask (A, B, Select, Start, Up, Down, Left,
// Right from bit 0) for player 0 or 1.
func (c *Context) SetInput(player int, buttons uint8) error {
	if player < 0 || player >= Players {
		return fmt.Errorf("%w: %d", ErrBadPlayer, player)
	}
	c.lock()
	defer c.mu.Unlock()
	c.runtime.SetInput(player, buttons)
	return nil
}

func (c *Context) SetAudioSampleRate(hz int) {
	c.lock()
	defer c.mu.Unlock()
	c.runtime.SetSampleRate(hz)
}

func (c *Context) AudioSampleRate() int {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.Settings().SampleRate
}

func (c *Context) SetAudioBufferSize(n int) {
	c.lock()
	defer c.mu.Unlock()
	c.runtime.SetBufferSize(n)
}

func (c *Context) AudioBufferSize() int {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.Settings().BufferSize
}

func (c *Context) AudioBufferFull() bool {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.AudioBufferFull()
}

// ConsumeAudioSamples returns and clears every pending mono sample.
func (c *Context) ConsumeAudioSamples() []int16 {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.ConsumeAudioSamples()
}

func (c *Context) HasSRAM() bool {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.HasSRAM()
}

// SRAM returns a copy of battery RAM, or nil.
func (c *Context) SRAM() []byte {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.SRAM()
}

// SetSRAM restores battery RAM into the current cartridge. data must be
// exactly as long as SRAM returns.
func (c *Context) SetSRAM(data []byte) error {
	c.lock()
	defer c.mu.Unlock()

	if !c.runtime.HasSRAM() {
		return ErrNoSRAM
	}
	if n := c.runtime.SRAMSize(); len(data) != n {
		return fmt.Errorf("%w: cartridge has %d bytes, got %d", ErrSRAMSize, n, len(data))
	}
	return c.resolve(event.NewLoadSRAM(data))
}

func (c *Context) Scanline() int {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.Scanline()
}

func (c *Context) FrameCount() uint64 {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.Frame()
}

func (c *Context) Channels() []apu.ChannelState {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.Channels()
}

// HasCartridge reports whether a cartridge has been loaded successfully.
func (c *Context) HasCartridge() bool {
	c.lock()
	defer c.mu.Unlock()
	return c.runtime.HasCartridge()
}
