package cart

// CNROM is mapper 3: fixed PRG, switchable 8 KiB CHR bank.
type CNROM struct {
	board
	chrBank byte
}

func (c *CNROM) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000:
		return c.prg[int(addr-0x8000)%len(c.prg)]
	case addr >= 0x6000:
		return c.readPRGRAM(addr)
	default:
		return 0
	}
}

func (c *CNROM) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000:
		c.chrBank = value & 0x03
	case addr >= 0x6000:
		c.writePRGRAM(addr, value)
	}
}

func (c *CNROM) PPURead(addr uint16) byte {
	return c.readCHR(int(c.chrBank)*0x2000 + int(addr&0x1FFF))
}
