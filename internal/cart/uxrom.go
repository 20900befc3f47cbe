package cart

// UxROM is mapper 2: switchable 16 KiB bank at $8000, last bank fixed at $C000.
type UxROM struct {
	board
	bank byte
}

func (c *UxROM) CPURead(addr uint16) byte {
	switch {
	case addr >= 0xC000:
		return c.prgBank16(-1, addr)
	case addr >= 0x8000:
		return c.prgBank16(int(c.bank), addr)
	case addr >= 0x6000:
		return c.readPRGRAM(addr)
	default:
		return 0
	}
}

func (c *UxROM) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000:
		c.bank = value
	case addr >= 0x6000:
		c.writePRGRAM(addr, value)
	}
}

func (c *UxROM) PPURead(addr uint16) byte { return c.readCHR(int(addr) & 0x1FFF) }
