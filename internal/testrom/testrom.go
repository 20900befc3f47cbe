// Package testrom assembles tiny iNES images for tests and headless smoke runs.
package testrom

// Options controls the generated image.
type Options struct {
	Mapper  int
	Battery bool
	// Marker is stored at $9000 so tests can tell two cartridges apart.
	Marker byte
	// CHRRAM omits CHR ROM so the board supplies 8 KiB of CHR RAM.
	CHRRAM bool
}

// program enables NMI and rendering, then spins. The NMI handler counts frames in $10.
var program = []byte{
	0x78,             // SEI
	0xD8,             // CLD
	0xA2, 0xFF,       // LDX #$FF
	0x9A,             // TXS
	0xA9, 0x80,       // LDA #$80
	0x8D, 0x00, 0x20, // STA $2000
	0xA9, 0x1E,       // LDA #$1E
	0x8D, 0x01, 0x20, // STA $2001
	0x4C, 0x0F, 0x80, // JMP $800F
}

const (
	nmiHandler = 0x0020
	irqHandler = 0x0030
)

// Build returns a 16 KiB PRG image with 8 KiB CHR (unless CHRRAM).
func Build(o Options) []byte {
	chrBanks := 1
	if o.CHRRAM {
		chrBanks = 0
	}
	rom := make([]byte, 16+0x4000+chrBanks*0x2000)
	copy(rom, []byte{'N', 'E', 'S', 0x1A})
	rom[4] = 1
	rom[5] = byte(chrBanks)
	rom[6] = byte(o.Mapper&0x0F) << 4
	if o.Battery {
		rom[6] |= 0x02
	}
	rom[7] = byte(o.Mapper & 0xF0)

	prg := rom[16 : 16+0x4000]
	copy(prg, program)
	prg[nmiHandler] = 0xE6 // INC $10
	prg[nmiHandler+1] = 0x10
	prg[nmiHandler+2] = 0x40 // RTI
	prg[irqHandler] = 0x40   // RTI
	prg[0x1000] = o.Marker

	put16 := func(off int, v uint16) {
		prg[off] = byte(v)
		prg[off+1] = byte(v >> 8)
	}
	put16(0x3FFA, 0x8000+nmiHandler)
	put16(0x3FFC, 0x8000)
	put16(0x3FFE, 0x8000+irqHandler)

	if chrBanks > 0 {
		chr := rom[16+0x4000:]
		// tile 0 is solid colour 1 so an enabled background is never blank
		for r := 0; r < 8; r++ {
			chr[r] = 0xFF
		}
	}
	return rom
}

// Minimal is an NROM image with default options.
func Minimal() []byte { return Build(Options{}) }
