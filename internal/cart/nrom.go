package cart

// NROM is mapper 0: 16 or 32 KiB PRG without banking, 8 KiB CHR.
type NROM struct {
	board
}

func (c *NROM) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000:
		return c.prg[int(addr-0x8000)%len(c.prg)]
	case addr >= 0x6000:
		return c.readPRGRAM(addr)
	default:
		return 0
	}
}

func (c *NROM) CPUWrite(addr uint16, value byte) {
	if addr >= 0x6000 && addr < 0x8000 {
		c.writePRGRAM(addr, value)
	}
}

func (c *NROM) PPURead(addr uint16) byte { return c.readCHR(int(addr) & 0x1FFF) }
