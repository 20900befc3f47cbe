package ppu

import "github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cart"

// Screen geometry and frame timing (NTSC).
const (
	Width          = 256
	Height         = 240
	DotsPerLine    = 341
	LinesPerFrame  = 262
	VBlankLine     = 241
	PreRenderLine  = 261
	lastVisibleRow = Height - 1
)

// Memory is the cartridge side of the PPU bus: pattern tables and mirroring control.
type Memory interface {
	PPURead(addr uint16) byte
	PPUWrite(addr uint16, value byte)
	Mirroring() cart.Mirroring
}

// NMIFunc is invoked when the PPU raises NMI at the start of vertical blank.
type NMIFunc func()

// PPU models the 2C02: registers, VRAM/OAM/palette memory and a scanline renderer
// that emits 6-bit palette indices into Screen.
type PPU struct {
	mem Memory
	nmi NMIFunc

	nametables [0x1000]byte
	palette    [32]byte
	oam        [256]byte

	ctrl    byte // $2000
	mask    byte // $2001
	status  byte // $2002
	oamAddr byte // $2003

	// Loopy scroll registers.
	v, t uint16
	x    byte
	w    bool

	readBuf byte
	openBus byte

	scanline int
	dot      int
	frame    uint64
	odd      bool

	// Screen holds one palette index (0..63) per pixel, row-major.
	Screen [Width * Height]byte

	// scratch for the current line
	bgLine [Width]byte
}

func New(mem Memory, nmi NMIFunc) *PPU {
	p := &PPU{mem: mem, nmi: nmi}
	p.Reset()
	return p
}

// Reset returns the PPU to its power-up state. Pattern memory lives on the cartridge and is untouched.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status, p.oamAddr = 0, 0, 0, 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuf = 0
	p.scanline, p.dot = 0, 0
	p.odd = false
}

// SetMemory attaches (or detaches, with nil) the cartridge side of the PPU bus.
func (p *PPU) SetMemory(mem Memory) { p.mem = mem }

// Scanline returns the current scanline (0..261).
func (p *PPU) Scanline() int { return p.scanline }

// Dot returns the current dot within the scanline (0..340).
func (p *PPU) Dot() int { return p.dot }

// Frame returns the number of completed frames.
func (p *PPU) Frame() uint64 { return p.frame }

// InVBlank reports the vblank flag as $2002 would show it.
func (p *PPU) InVBlank() bool { return p.status&0x80 != 0 }

func (p *PPU) renderingEnabled() bool { return p.mask&0x18 != 0 }

// CPURead handles reads of $2000-$3FFF (mirrored every 8 bytes).
func (p *PPU) CPURead(addr uint16) byte {
	switch addr & 7 {
	case 2:
		v := p.status&0xE0 | p.openBus&0x1F
		p.status &^= 0x80
		p.w = false
		p.openBus = v
		return v
	case 4:
		p.openBus = p.oam[p.oamAddr]
		return p.openBus
	case 7:
		a := p.v & 0x3FFF
		var v byte
		if a >= 0x3F00 {
			v = p.readPalette(a)
			// the buffer is filled with the nametable byte underneath the palette
			p.readBuf = p.read(a - 0x1000)
		} else {
			v = p.readBuf
			p.readBuf = p.read(a)
		}
		p.incrementV()
		p.openBus = v
		return v
	default:
		return p.openBus
	}
}

// CPUWrite handles writes to $2000-$3FFF (mirrored every 8 bytes).
func (p *PPU) CPUWrite(addr uint16, value byte) {
	p.openBus = value
	switch addr & 7 {
	case 0:
		prev := p.ctrl
		p.ctrl = value
		p.t = p.t&0xF3FF | uint16(value&0x03)<<10
		// enabling NMI while the vblank flag is set fires immediately
		if prev&0x80 == 0 && value&0x80 != 0 && p.status&0x80 != 0 && p.nmi != nil {
			p.nmi()
		}
	case 1:
		p.mask = value
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		if !p.w {
			p.t = p.t&0xFFE0 | uint16(value)>>3
			p.x = value & 0x07
		} else {
			p.t = p.t&0x8FFF | uint16(value&0x07)<<12
			p.t = p.t&0xFC1F | uint16(value&0xF8)<<2
		}
		p.w = !p.w
	case 6:
		if !p.w {
			p.t = p.t&0x80FF | uint16(value&0x3F)<<8
		} else {
			p.t = p.t&0xFF00 | uint16(value)
			p.v = p.t
		}
		p.w = !p.w
	case 7:
		p.write(p.v&0x3FFF, value)
		p.incrementV()
	}
}

// WriteOAMDMA copies a 256-byte page into OAM starting at OAMADDR ($4014).
func (p *PPU) WriteOAMDMA(page []byte) {
	for _, b := range page {
		p.oam[p.oamAddr] = b
		p.oamAddr++
	}
}

func (p *PPU) incrementV() {
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// read covers the PPU address space $0000-$3FFF.
func (p *PPU) read(addr uint16) byte {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.mem == nil {
			return 0
		}
		return p.mem.PPURead(addr)
	case addr < 0x3F00:
		return p.nametables[p.nametableIndex(addr)]
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) write(addr uint16, value byte) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.mem != nil {
			p.mem.PPUWrite(addr, value)
		}
	case addr < 0x3F00:
		p.nametables[p.nametableIndex(addr)] = value
	default:
		p.palette[paletteIndex(addr)] = value & 0x3F
	}
}

var mirrorLUT = [...][4]uint16{
	cart.MirrorHorizontal:  {0, 0, 1, 1},
	cart.MirrorVertical:    {0, 1, 0, 1},
	cart.MirrorSingleLower: {0, 0, 0, 0},
	cart.MirrorSingleUpper: {1, 1, 1, 1},
	cart.MirrorFourScreen:  {0, 1, 2, 3},
}

func (p *PPU) nametableIndex(addr uint16) uint16 {
	addr = (addr - 0x2000) & 0x0FFF
	table := addr / 0x0400
	mode := cart.MirrorHorizontal
	if p.mem != nil {
		mode = p.mem.Mirroring()
	}
	if int(mode) >= len(mirrorLUT) {
		mode = cart.MirrorHorizontal
	}
	return mirrorLUT[mode][table]*0x0400 + addr&0x03FF
}

// paletteIndex folds $3F10/$3F14/$3F18/$3F1C onto their background counterparts.
func paletteIndex(addr uint16) uint16 {
	i := addr & 0x1F
	if i >= 0x10 && i&0x03 == 0 {
		i -= 0x10
	}
	return i
}

func (p *PPU) readPalette(addr uint16) byte {
	v := p.palette[paletteIndex(addr)]
	if p.mask&0x01 != 0 {
		v &= 0x30
	}
	return v
}

// Tick advances the PPU by the given number of dots (three per CPU cycle).
func (p *PPU) Tick(dots int) {
	for i := 0; i < dots; i++ {
		p.tickDot()
	}
}

func (p *PPU) tickDot() {
	rendering := p.renderingEnabled()
	visible := p.scanline <= lastVisibleRow
	pre := p.scanline == PreRenderLine

	switch {
	case p.scanline == VBlankLine && p.dot == 1:
		p.status |= 0x80
		if p.ctrl&0x80 != 0 && p.nmi != nil {
			p.nmi()
		}
	case pre && p.dot == 1:
		p.status &^= 0xE0
	}

	if visible && p.dot == 256 {
		p.renderLine(p.scanline)
	}
	if rendering && (visible || pre) {
		switch {
		case p.dot == 256:
			p.incrementY()
		case p.dot == 257:
			p.copyX()
		case pre && p.dot == 280:
			p.copyY()
		}
	}

	p.dot++
	// odd frames drop the last dot of the pre-render line while rendering
	if pre && p.odd && rendering && p.dot == 340 {
		p.dot++
	}
	if p.dot >= DotsPerLine {
		p.dot = 0
		p.scanline++
		if p.scanline >= LinesPerFrame {
			p.scanline = 0
			p.frame++
			p.odd = !p.odd
		}
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

func (p *PPU) copyX() { p.v = p.v&0xFBE0 | p.t&0x041F }
func (p *PPU) copyY() { p.v = p.v&0x841F | p.t&0x7BE0 }

// SetNMI installs the NMI callback.
func (p *PPU) SetNMI(nmi NMIFunc) { p.nmi = nmi }
