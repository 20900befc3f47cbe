// Package event defines the closed set of messages exchanged on the event bus.
//
// Events are values. Constructors copy any byte slices they are given, and
// handlers must treat received events as read-only.
package event

import "fmt"

// Kind discriminates the event variants.
type Kind int

const (
	KindLoadCartridge Kind = iota
	KindLoadSRAM
	KindReset
	KindRunScanline
	KindRunFrame
	KindUpdate
	KindRequestRender
	KindMouseClick
	KindToggleChannelMute
	KindCartridgeLoaded
	KindCartridgeRejected
)

var kindNames = [...]string{
	KindLoadCartridge:     "LoadCartridge",
	KindLoadSRAM:          "LoadSRAM",
	KindReset:             "Reset",
	KindRunScanline:       "RunScanline",
	KindRunFrame:          "RunFrame",
	KindUpdate:            "Update",
	KindRequestRender:     "RequestRender",
	KindMouseClick:        "MouseClick",
	KindToggleChannelMute: "ToggleChannelMute",
	KindCartridgeLoaded:   "CartridgeLoaded",
	KindCartridgeRejected: "CartridgeRejected",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is implemented only by the types in this package.
type Event interface {
	Kind() Kind
	event()
}

// LoadCartridge replaces the running cartridge. SRAM, when non-nil, is applied
// to the new cartridge's battery RAM.
type LoadCartridge struct {
	ROM  []byte
	SRAM []byte
}

// LoadSRAM re-applies save memory to the current cartridge.
type LoadSRAM struct {
	Data []byte
}

// Reset presses the console's reset button.
type Reset struct{}

// RunScanline advances emulation by one scanline.
type RunScanline struct{}

// RunFrame advances emulation to the next vblank in one step.
type RunFrame struct{}

// Update is the once-per-frame tick on which panels sample runtime state.
type Update struct{}

// RequestRender asks panels to redraw their canvas. An empty Panel addresses every panel.
type RequestRender struct {
	Panel string
}

// MouseClick is a click in panel-local pixel coordinates.
type MouseClick struct {
	Panel string
	X, Y  int
}

// ToggleChannelMute flips the mute state of one APU channel.
type ToggleChannelMute struct {
	Channel int
}

// CartridgeLoaded reports a successful LoadCartridge.
type CartridgeLoaded struct {
	Mapper   int
	PRGBanks int
	CHRBanks int
	Battery  bool
}

// CartridgeRejected reports a LoadCartridge that left the previous cartridge running.
type CartridgeRejected struct {
	Reason string
	// BadSRAM is set when the image was fine but the supplied save memory
	// did not match the cartridge's RAM size.
	BadSRAM bool
}

func (LoadCartridge) Kind() Kind     { return KindLoadCartridge }
func (LoadSRAM) Kind() Kind          { return KindLoadSRAM }
func (Reset) Kind() Kind             { return KindReset }
func (RunScanline) Kind() Kind       { return KindRunScanline }
func (RunFrame) Kind() Kind          { return KindRunFrame }
func (Update) Kind() Kind            { return KindUpdate }
func (RequestRender) Kind() Kind     { return KindRequestRender }
func (MouseClick) Kind() Kind        { return KindMouseClick }
func (ToggleChannelMute) Kind() Kind { return KindToggleChannelMute }
func (CartridgeLoaded) Kind() Kind   { return KindCartridgeLoaded }
func (CartridgeRejected) Kind() Kind { return KindCartridgeRejected }

func (LoadCartridge) event()     {}
func (LoadSRAM) event()          {}
func (Reset) event()             {}
func (RunScanline) event()       {}
func (RunFrame) event()          {}
func (Update) event()            {}
func (RequestRender) event()     {}
func (MouseClick) event()        {}
func (ToggleChannelMute) event() {}
func (CartridgeLoaded) event()   {}
func (CartridgeRejected) event() {}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// NewLoadCartridge copies rom and sram so later caller writes cannot reach the event.
func NewLoadCartridge(rom, sram []byte) LoadCartridge {
	return LoadCartridge{ROM: clone(rom), SRAM: clone(sram)}
}

// NewLoadSRAM copies data into a LoadSRAM event.
func NewLoadSRAM(data []byte) LoadSRAM {
	return LoadSRAM{Data: clone(data)}
}

// Describe renders an event for logs without dumping payload bytes.
func Describe(e Event) string {
	switch v := e.(type) {
	case LoadCartridge:
		return fmt.Sprintf("LoadCartridge(rom=%dB sram=%dB)", len(v.ROM), len(v.SRAM))
	case LoadSRAM:
		return fmt.Sprintf("LoadSRAM(%dB)", len(v.Data))
	case RequestRender:
		if v.Panel == "" {
			return "RequestRender(*)"
		}
		return "RequestRender(" + v.Panel + ")"
	case MouseClick:
		return fmt.Sprintf("MouseClick(%s %d,%d)", v.Panel, v.X, v.Y)
	case ToggleChannelMute:
		return fmt.Sprintf("ToggleChannelMute(%d)", v.Channel)
	case CartridgeLoaded:
		return fmt.Sprintf("CartridgeLoaded(mapper=%d prg=%d chr=%d battery=%t)", v.Mapper, v.PRGBanks, v.CHRBanks, v.Battery)
	case CartridgeRejected:
		return "CartridgeRejected(" + v.Reason + ")"
	case nil:
		return "<nil>"
	default:
		return e.Kind().String()
	}
}
