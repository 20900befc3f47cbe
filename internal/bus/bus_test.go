package bus

import (
	"testing"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cart"
)

func buildNROM() []byte {
	rom := make([]byte, 16+0x4000+0x2000)
	copy(rom, []byte{'N', 'E', 'S', 0x1A, 1, 1})
	rom[16] = 0xA5
	return rom
}

func newBusWithCart(t *testing.T) *Bus {
	t.Helper()
	c, _, err := cart.NewCartridge(buildNROM())
	if err != nil {
		t.Fatalf("NewCartridge: %v", err)
	}
	return New(c)
}

func TestBus_RAMMirrors(t *testing.T) {
	b := New(nil)
	b.Write(0x0001, 0x99)
	for _, a := range []uint16{0x0801, 0x1001, 0x1801} {
		if got := b.Read(a); got != 0x99 {
			t.Fatalf("mirror %#04x got %02x want 99", a, got)
		}
	}
}

func TestBus_CartridgeMapping(t *testing.T) {
	b := newBusWithCart(t)
	if got := b.Read(0x8000); got != 0xA5 {
		t.Fatalf("PRG read got %02x want A5", got)
	}
	if got := b.Read(0xC000); got != 0xA5 {
		t.Fatalf("NROM-128 mirror got %02x want A5", got)
	}
	b.Write(0x6000, 0x12)
	if got := b.Read(0x6000); got != 0x12 {
		t.Fatalf("PRG RAM got %02x want 12", got)
	}
}

func TestBus_NoCartridgeReadsZero(t *testing.T) {
	b := New(nil)
	if got := b.Read(0x8000); got != 0 {
		t.Fatalf("empty slot got %02x", got)
	}
	b.Write(0x8000, 1) // must not panic
}

func TestBus_PPURegisterMirror(t *testing.T) {
	b := New(nil)
	b.Write(0x2006, 0x3F)
	b.Write(0x2006, 0x01)
	b.Write(0x3FFF, 0x16) // $2007 mirror
	b.Write(0x2006, 0x3F)
	b.Write(0x2006, 0x01)
	if got := b.Read(0x2007); got != 0x16 {
		t.Fatalf("palette via mirror got %02x want 16", got)
	}
}

func TestBus_OAMDMAStall(t *testing.T) {
	b := New(nil)
	for i := 0; i < 256; i++ {
		b.Write(0x0200+uint16(i), byte(i))
	}
	b.Write(0x2003, 0)
	b.Write(0x4014, 0x02)
	if s := b.TakeStall(); s != 513 {
		t.Fatalf("DMA stall got %d want 513", s)
	}
	if s := b.TakeStall(); s != 0 {
		t.Fatalf("stall not cleared: %d", s)
	}
	b.Write(0x2003, 0x10)
	if got := b.Read(0x2004); got != 0x10 {
		t.Fatalf("OAM[0x10] got %02x want 10", got)
	}
}

func TestBus_TickAdvancesPPU(t *testing.T) {
	b := New(nil)
	b.Tick(114)
	if b.PPU.Scanline() != 1 {
		t.Fatalf("after 342 dots scanline got %d want 1", b.PPU.Scanline())
	}
}
