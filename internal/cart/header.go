package cart

import (
	"bytes"
	"errors"
	"fmt"
)

const headerSize = 16

var inesMagic = []byte{'N', 'E', 'S', 0x1A}

var (
	// ErrTooSmall is returned when the image cannot even hold the 16-byte header.
	ErrTooSmall = errors.New("ROM too small to contain iNES header")
	// ErrBadMagic is returned when the image does not start with "NES\x1A".
	ErrBadMagic = errors.New("missing iNES magic")
	// ErrTruncated is returned when PRG/CHR data declared by the header is missing.
	ErrTruncated = errors.New("ROM shorter than declared PRG/CHR size")
	// ErrNoPRG is returned for headers that declare zero PRG banks.
	ErrNoPRG = errors.New("header declares no PRG ROM")
)

// Mirroring is the nametable arrangement the cartridge wires up.
type Mirroring byte

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingleLower
	MirrorSingleUpper
	MirrorFourScreen
)

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingleLower:
		return "single-lower"
	case MirrorSingleUpper:
		return "single-upper"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}

type Header struct {
	PRGBanks  int // 16 KiB units
	CHRBanks  int // 8 KiB units, 0 means CHR RAM
	Mapper    int
	Submapper int
	Mirroring Mirroring
	Battery   bool
	Trainer   bool
	NES2      bool

	// Decoded helpers (for logs)
	PRGSizeBytes int
	CHRSizeBytes int
	PRGRAMSize   int
	MapperStr    string
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerSize {
		return nil, ErrTooSmall
	}
	if !bytes.Equal(rom[0:4], inesMagic) {
		return nil, ErrBadMagic
	}
	f6, f7 := rom[6], rom[7]

	h := &Header{
		PRGBanks: int(rom[4]),
		CHRBanks: int(rom[5]),
		Mapper:   int(f6>>4) | int(f7&0xF0),
		Battery:  f6&0x02 != 0,
		Trainer:  f6&0x04 != 0,
		NES2:     f7&0x0C == 0x08,
	}
	switch {
	case f6&0x08 != 0:
		h.Mirroring = MirrorFourScreen
	case f6&0x01 != 0:
		h.Mirroring = MirrorVertical
	default:
		h.Mirroring = MirrorHorizontal
	}

	if h.NES2 {
		// NES 2.0 extends mapper and size fields; exponent-multiplier sizes are not supported.
		h.Mapper |= int(rom[8]&0x0F) << 8
		h.Submapper = int(rom[8] >> 4)
		h.PRGBanks |= int(rom[9]&0x0F) << 8
		h.CHRBanks |= int(rom[9]>>4) << 8
		if shift := rom[10] & 0x0F; shift != 0 {
			h.PRGRAMSize = 64 << shift
		}
		if shift := rom[10] >> 4; shift != 0 {
			h.PRGRAMSize += 64 << shift
		}
	} else {
		h.PRGRAMSize = int(rom[8]) * 0x2000
	}
	if h.PRGRAMSize == 0 {
		// Most iNES 1.0 dumps leave byte 8 at zero and still expect 8 KiB of work RAM.
		h.PRGRAMSize = 0x2000
	}

	if h.PRGBanks == 0 {
		return nil, ErrNoPRG
	}
	h.PRGSizeBytes = h.PRGBanks * 0x4000
	h.CHRSizeBytes = h.CHRBanks * 0x2000
	h.MapperStr = mapperString(h.Mapper)

	need := headerSize + h.PRGSizeBytes + h.CHRSizeBytes
	if h.Trainer {
		need += 512
	}
	if len(rom) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncated, len(rom), need)
	}
	return h, nil
}

// split returns the PRG and CHR slices of a validated image.
func (h *Header) split(rom []byte) (prg, chr []byte) {
	off := headerSize
	if h.Trainer {
		off += 512
	}
	prg = rom[off : off+h.PRGSizeBytes]
	off += h.PRGSizeBytes
	chr = rom[off : off+h.CHRSizeBytes]
	return prg, chr
}

func mapperString(n int) string {
	switch n {
	case 0:
		return "NROM"
	case 1:
		return "MMC1 (SxROM)"
	case 2:
		return "UxROM"
	case 3:
		return "CNROM"
	case 4:
		return "MMC3 (TxROM)"
	default:
		return "Other/unknown"
	}
}
