package cart

import (
	"errors"
	"fmt"
)

// ErrUnsupportedMapper is returned for mapper numbers without a board implementation.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// Cartridge defines the minimal interface the CPU bus and PPU need for banking.
// CPU addresses cover 0x4020-0xFFFF, PPU addresses cover the pattern tables 0x0000-0x1FFF.
type Cartridge interface {
	CPURead(addr uint16) byte
	CPUWrite(addr uint16, value byte)
	PPURead(addr uint16) byte
	PPUWrite(addr uint16, value byte)
	// Mirroring reports the current nametable arrangement; mappers may change it at runtime.
	Mirroring() Mirroring
}

// BatteryBacked is implemented by every board; HasBattery tells whether PRG RAM
// should be persisted. SaveRAM returns a copy, LoadRAM copies in as much as fits.
type BatteryBacked interface {
	HasBattery() bool
	RAMSize() int
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// NewCartridge parses the iNES header and picks a board implementation for its mapper.
func NewCartridge(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}
	prg, chr := h.split(rom)
	b := newBoard(h, prg, chr)
	switch h.Mapper {
	case 0:
		return &NROM{board: b}, h, nil
	case 1:
		return NewMMC1(b), h, nil
	case 2:
		return &UxROM{board: b}, h, nil
	case 3:
		return &CNROM{board: b}, h, nil
	default:
		return nil, h, fmt.Errorf("%w: %d", ErrUnsupportedMapper, h.Mapper)
	}
}

// board holds the memories every mapper shares. CHR RAM replaces CHR ROM when the
// header declares zero CHR banks.
type board struct {
	prg     []byte
	chr     []byte
	chrRAM  bool
	prgRAM  []byte
	mirror  Mirroring
	battery bool
}

func newBoard(h *Header, prg, chr []byte) board {
	b := board{
		prg:     prg,
		chr:     chr,
		mirror:  h.Mirroring,
		battery: h.Battery,
		prgRAM:  make([]byte, h.PRGRAMSize),
	}
	if len(chr) == 0 {
		b.chr = make([]byte, 0x2000)
		b.chrRAM = true
	}
	return b
}

func (b *board) Mirroring() Mirroring { return b.mirror }

func (b *board) readPRGRAM(addr uint16) byte {
	if len(b.prgRAM) == 0 {
		return 0
	}
	return b.prgRAM[int(addr-0x6000)%len(b.prgRAM)]
}

func (b *board) writePRGRAM(addr uint16, value byte) {
	if len(b.prgRAM) == 0 {
		return
	}
	b.prgRAM[int(addr-0x6000)%len(b.prgRAM)] = value
}

func (b *board) readCHR(off int) byte {
	return b.chr[off%len(b.chr)]
}

func (b *board) PPUWrite(addr uint16, value byte) {
	if b.chrRAM {
		b.chr[int(addr)&0x1FFF] = value
	}
}

func (b *board) HasBattery() bool { return b.battery }
func (b *board) RAMSize() int     { return len(b.prgRAM) }

func (b *board) SaveRAM() []byte {
	out := make([]byte, len(b.prgRAM))
	copy(out, b.prgRAM)
	return out
}

func (b *board) LoadRAM(data []byte) { copy(b.prgRAM, data) }

// prgBank16 returns the byte at off within the 16 KiB PRG bank, wrapping bank
// numbers past the end of PRG ROM.
func (b *board) prgBank16(bank int, off uint16) byte {
	banks := len(b.prg) / 0x4000
	if banks == 0 {
		return 0
	}
	bank %= banks
	if bank < 0 {
		bank += banks
	}
	return b.prg[bank*0x4000+int(off&0x3FFF)]
}
