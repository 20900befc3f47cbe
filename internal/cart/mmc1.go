package cart

// MMC1 is mapper 1. Registers are loaded serially through a 5-bit shift register;
// a write with bit 7 set resets it and forces PRG mode 3.
type MMC1 struct {
	board

	shift    byte
	count    int
	control  byte
	chrBank0 byte
	chrBank1 byte
	prgBank  byte
}

func NewMMC1(b board) *MMC1 {
	m := &MMC1{board: b, control: 0x0C}
	m.applyMirroring()
	return m
}

func (m *MMC1) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000:
		bank := int(m.prgBank & 0x0F)
		switch (m.control >> 2) & 0x03 {
		case 0, 1: // 32 KiB mode ignores the low bit
			bank &^= 1
			if addr >= 0xC000 {
				bank++
			}
		case 2: // first bank fixed at $8000
			if addr < 0xC000 {
				bank = 0
			}
		case 3: // last bank fixed at $C000
			if addr >= 0xC000 {
				bank = -1
			}
		}
		return m.prgBank16(bank, addr)
	case addr >= 0x6000:
		if m.prgBank&0x10 != 0 {
			return 0
		}
		return m.readPRGRAM(addr)
	default:
		return 0
	}
}

func (m *MMC1) CPUWrite(addr uint16, value byte) {
	if addr < 0x8000 {
		if addr >= 0x6000 && m.prgBank&0x10 == 0 {
			m.writePRGRAM(addr, value)
		}
		return
	}
	if value&0x80 != 0 {
		m.shift, m.count = 0, 0
		m.control |= 0x0C
		return
	}
	m.shift |= (value & 1) << m.count
	m.count++
	if m.count < 5 {
		return
	}
	v := m.shift
	m.shift, m.count = 0, 0
	switch {
	case addr < 0xA000:
		m.control = v
		m.applyMirroring()
	case addr < 0xC000:
		m.chrBank0 = v
	case addr < 0xE000:
		m.chrBank1 = v
	default:
		m.prgBank = v
	}
}

func (m *MMC1) PPURead(addr uint16) byte {
	return m.readCHR(m.chrOffset(addr))
}

func (m *MMC1) PPUWrite(addr uint16, value byte) {
	if m.chrRAM {
		m.chr[m.chrOffset(addr)%len(m.chr)] = value
	}
}

func (m *MMC1) chrOffset(addr uint16) int {
	addr &= 0x1FFF
	if m.control&0x10 == 0 {
		return int(m.chrBank0&^1)*0x1000 + int(addr)
	}
	if addr < 0x1000 {
		return int(m.chrBank0)*0x1000 + int(addr)
	}
	return int(m.chrBank1)*0x1000 + int(addr-0x1000)
}

func (m *MMC1) applyMirroring() {
	switch m.control & 0x03 {
	case 0:
		m.mirror = MirrorSingleLower
	case 1:
		m.mirror = MirrorSingleUpper
	case 2:
		m.mirror = MirrorVertical
	case 3:
		m.mirror = MirrorHorizontal
	}
}
