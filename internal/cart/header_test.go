package cart

import (
	"errors"
	"testing"
)

// buildROM assembles an iNES image with PRG bank n filled with byte n+1 and CHR
// bank n filled with 0x80|n.
func buildROM(mapper, prgBanks, chrBanks int, flags6 byte) []byte {
	rom := make([]byte, headerSize+prgBanks*0x4000+chrBanks*0x2000)
	copy(rom, inesMagic)
	rom[4] = byte(prgBanks)
	rom[5] = byte(chrBanks)
	rom[6] = flags6 | byte(mapper&0x0F)<<4
	rom[7] = byte(mapper & 0xF0)
	off := headerSize
	for b := 0; b < prgBanks; b++ {
		for i := 0; i < 0x4000; i++ {
			rom[off+i] = byte(b + 1)
		}
		off += 0x4000
	}
	for b := 0; b < chrBanks; b++ {
		for i := 0; i < 0x2000; i++ {
			rom[off+i] = 0x80 | byte(b)
		}
		off += 0x2000
	}
	return rom
}

func TestParseHeaderFields(t *testing.T) {
	rom := buildROM(1, 8, 2, 0x03)
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Mapper != 1 || h.PRGBanks != 8 || h.CHRBanks != 2 {
		t.Fatalf("got mapper=%d prg=%d chr=%d", h.Mapper, h.PRGBanks, h.CHRBanks)
	}
	if !h.Battery {
		t.Fatalf("battery flag not decoded")
	}
	if h.Mirroring != MirrorVertical {
		t.Fatalf("mirroring got %v want vertical", h.Mirroring)
	}
	if h.PRGRAMSize != 0x2000 {
		t.Fatalf("PRG RAM size got %d want 8192", h.PRGRAMSize)
	}
	if h.MapperStr != "MMC1 (SxROM)" {
		t.Fatalf("mapper string %q", h.MapperStr)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	cases := []struct {
		name string
		rom  []byte
		want error
	}{
		{"empty", nil, ErrTooSmall},
		{"short", make([]byte, 8), ErrTooSmall},
		{"magic", make([]byte, 64), ErrBadMagic},
		{"truncated", buildROM(0, 2, 1, 0)[:headerSize+0x4000], ErrTruncated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseHeader(tc.rom); !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
		})
	}
}

func TestParseHeaderNoPRG(t *testing.T) {
	rom := buildROM(0, 0, 1, 0)
	if _, err := ParseHeader(rom); !errors.Is(err, ErrNoPRG) {
		t.Fatalf("got %v want ErrNoPRG", err)
	}
}

func TestTrainerSkipped(t *testing.T) {
	base := buildROM(0, 1, 1, 0)
	rom := make([]byte, 0, len(base)+512)
	rom = append(rom, base[:headerSize]...)
	rom[6] |= 0x04
	rom = append(rom, make([]byte, 512)...)
	rom = append(rom, base[headerSize:]...)
	c, _, err := NewCartridge(rom)
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	if got := c.CPURead(0x8000); got != 0x01 {
		t.Fatalf("PRG after trainer got %02X want 01", got)
	}
}

func TestUnsupportedMapper(t *testing.T) {
	rom := buildROM(4, 2, 1, 0)
	_, h, err := NewCartridge(rom)
	if !errors.Is(err, ErrUnsupportedMapper) {
		t.Fatalf("got %v want ErrUnsupportedMapper", err)
	}
	if h == nil || h.Mapper != 4 {
		t.Fatalf("header should still be returned for diagnostics")
	}
}
