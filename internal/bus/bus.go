package bus

import (
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/ppu"
)

// Bus is the CPU address space: 2 KiB work RAM, PPU and APU registers,
// controller ports and the cartridge.
type Bus struct {
	ram  [0x800]byte
	cart cart.Cartridge

	PPU  *ppu.PPU
	APU  *apu.APU
	Pads [2]Controller

	// stall accumulates CPU cycles owed to OAM DMA and DMC fetches
	stall int
	// cycles counts CPU cycles seen by Tick; DMA alignment depends on parity
	cycles uint64
}

// New wires a bus around c. A nil cartridge leaves $4020-$FFFF unmapped.
func New(c cart.Cartridge) *Bus {
	b := &Bus{cart: c}
	var mem ppu.Memory
	if c != nil {
		mem = c
	}
	b.PPU = ppu.New(mem, nil)
	b.APU = apu.New(apu.DefaultSampleRate)
	b.APU.SetDMCReader(b.Read)
	return b
}

// Cartridge returns the inserted cartridge (nil when empty).
func (b *Bus) Cartridge() cart.Cartridge { return b.cart }

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return b.ram[addr&0x07FF]
	case addr < 0x4000:
		return b.PPU.CPURead(addr)
	case addr == 0x4015:
		return b.APU.CPURead(addr)
	case addr == 0x4016:
		return b.Pads[0].Read() | 0x40
	case addr == 0x4017:
		return b.Pads[1].Read() | 0x40
	case addr < 0x4020:
		return 0 // write-only APU/IO
	default:
		if b.cart == nil {
			return 0
		}
		return b.cart.CPURead(addr)
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.CPUWrite(addr, value)
	case addr == 0x4014:
		b.oamDMA(value)
	case addr == 0x4016:
		b.Pads[0].Write(value)
		b.Pads[1].Write(value)
	case addr < 0x4018:
		b.APU.CPUWrite(addr, value)
	case addr < 0x4020:
		// test-mode registers
	default:
		if b.cart != nil {
			b.cart.CPUWrite(addr, value)
		}
	}
}

func (b *Bus) oamDMA(page byte) {
	var buf [256]byte
	base := uint16(page) << 8
	for i := range buf {
		buf[i] = b.Read(base + uint16(i))
	}
	b.PPU.WriteOAMDMA(buf[:])
	b.stall += 513
	if b.cycles&1 == 1 {
		b.stall++
	}
}

// Tick advances the PPU (three dots per cycle) and APU by CPU cycles.
func (b *Bus) Tick(cycles int) {
	b.cycles += uint64(cycles)
	b.PPU.Tick(cycles * 3)
	b.stall += b.APU.Tick(cycles)
}

// TakeStall returns and clears the CPU cycles owed to DMA.
func (b *Bus) TakeStall() int {
	n := b.stall
	b.stall = 0
	return n
}

// RAM exposes work RAM for tools (test-ROM status bytes, monitors).
func (b *Bus) RAM() []byte { return b.ram[:] }
