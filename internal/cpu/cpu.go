package cpu

// Memory is the CPU's view of the address space. The system bus implements it;
// tests use a flat 64 KiB array.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Status flag bits.
const (
	flagC byte = 1 << 0
	flagZ byte = 1 << 1
	flagI byte = 1 << 2
	flagD byte = 1 << 3
	flagB byte = 1 << 4
	flagU byte = 1 << 5
	flagV byte = 1 << 6
	flagN byte = 1 << 7
)

// Interrupt vectors.
const (
	vecNMI   uint16 = 0xFFFA
	vecReset uint16 = 0xFFFC
	vecIRQ   uint16 = 0xFFFE
)

// CPU implements the Ricoh 2A03 core (a 6502 without decimal mode).
type CPU struct {
	A, X, Y byte
	P       byte
	SP      byte
	PC      uint16

	// Cycles counts CPU cycles since power-on.
	Cycles uint64

	nmiPending bool
	irqLine    bool
	stall      int

	mem Memory
}

// New creates a CPU attached to mem. Call Reset before stepping.
func New(mem Memory) *CPU {
	return &CPU{mem: mem, SP: 0xFD, P: flagU | flagI}
}

// SetPC allows tests or a runner to set the program counter.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Memory exposes the attached address space for tools.
func (c *CPU) Memory() Memory { return c.mem }

// Reset loads PC from the reset vector and applies the 2A03 power-up register state.
func (c *CPU) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = flagU | flagI
	c.PC = c.read16(vecReset)
	c.nmiPending = false
	c.irqLine = false
	c.stall = 0
	c.Cycles = 7
}

// TriggerNMI latches a non-maskable interrupt; it is taken before the next instruction.
func (c *CPU) TriggerNMI() { c.nmiPending = true }

// SetIRQ drives the level-sensitive IRQ line.
func (c *CPU) SetIRQ(asserted bool) { c.irqLine = asserted }

// Stall suspends execution for n cycles (OAM DMA).
func (c *CPU) Stall(n int) { c.stall += n }

func (c *CPU) read8(addr uint16) byte     { return c.mem.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.mem.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

// read16bug reproduces the JMP ($xxFF) page-wrap quirk.
func (c *CPU) read16bug(addr uint16) uint16 {
	hiAddr := (addr & 0xFF00) | uint16(byte(addr)+1)
	return uint16(c.read8(addr)) | uint16(c.read8(hiAddr))<<8
}

func (c *CPU) push8(v byte) {
	c.write8(0x0100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop8() byte {
	c.SP++
	return c.read8(0x0100 | uint16(c.SP))
}

func (c *CPU) push16(v uint16) {
	c.push8(byte(v >> 8))
	c.push8(byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.pop8())
	hi := uint16(c.pop8())
	return lo | hi<<8
}

func (c *CPU) flag(f byte) bool { return c.P&f != 0 }

func (c *CPU) setFlag(f byte, on bool) {
	if on {
		c.P |= f
	} else {
		c.P &^= f
	}
}

func (c *CPU) setZN(v byte) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x80 != 0)
}

func (c *CPU) interrupt(vector uint16, brk bool) {
	c.push16(c.PC)
	p := c.P | flagU
	if brk {
		p |= flagB
	} else {
		p &^= flagB
	}
	c.push8(p)
	c.P |= flagI
	c.PC = c.read16(vector)
}

// Step executes one instruction (or services a pending interrupt, or burns one
// stall cycle) and returns the CPU cycles consumed.
func (c *CPU) Step() (cycles int) {
	defer func() { c.Cycles += uint64(cycles) }()

	if c.stall > 0 {
		c.stall--
		return 1
	}
	if c.nmiPending {
		c.nmiPending = false
		c.interrupt(vecNMI, false)
		return 7
	}
	if c.irqLine && !c.flag(flagI) {
		c.interrupt(vecIRQ, false)
		return 7
	}

	op := c.fetch8()
	info := &opTable[op]
	addr, crossed := c.operand(info.mode)
	cycles = int(info.cycles)
	if crossed && info.pagePenalty {
		cycles++
	}
	cycles += c.execute(info.name, info.mode, addr)
	return cycles
}

func pagesDiffer(a, b uint16) bool { return a&0xFF00 != b&0xFF00 }

// operand resolves the effective address for mode and advances PC past the operand.
func (c *CPU) operand(mode addrMode) (addr uint16, crossed bool) {
	switch mode {
	case modeImm:
		addr = c.PC
		c.PC++
	case modeZP:
		addr = uint16(c.fetch8())
	case modeZPX:
		addr = uint16(c.fetch8() + c.X)
	case modeZPY:
		addr = uint16(c.fetch8() + c.Y)
	case modeAbs:
		addr = c.fetch16()
	case modeAbsX:
		base := c.fetch16()
		addr = base + uint16(c.X)
		crossed = pagesDiffer(base, addr)
	case modeAbsY:
		base := c.fetch16()
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	case modeInd:
		addr = c.read16bug(c.fetch16())
	case modeIndX:
		zp := c.fetch8() + c.X
		addr = c.read16bug(uint16(zp))
	case modeIndY:
		zp := c.fetch8()
		base := c.read16bug(uint16(zp))
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	case modeRel:
		off := int8(c.fetch8())
		addr = uint16(int32(c.PC) + int32(off))
	}
	return addr, crossed
}

// branch jumps to addr when cond holds and returns the extra cycles taken.
func (c *CPU) branch(cond bool, addr uint16) int {
	if !cond {
		return 0
	}
	extra := 1
	if pagesDiffer(c.PC, addr) {
		extra++
	}
	c.PC = addr
	return extra
}

func (c *CPU) compare(a, b byte) {
	c.setZN(a - b)
	c.setFlag(flagC, a >= b)
}

func (c *CPU) adc(v byte) {
	carry := uint16(0)
	if c.flag(flagC) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	r := byte(sum)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagV, (c.A^r)&(v^r)&0x80 != 0)
	c.A = r
	c.setZN(r)
}

func (c *CPU) sbc(v byte) { c.adc(^v) }

func (c *CPU) asl(v byte) byte {
	c.setFlag(flagC, v&0x80 != 0)
	v <<= 1
	c.setZN(v)
	return v
}

func (c *CPU) lsr(v byte) byte {
	c.setFlag(flagC, v&0x01 != 0)
	v >>= 1
	c.setZN(v)
	return v
}

func (c *CPU) rol(v byte) byte {
	in := c.P & flagC
	c.setFlag(flagC, v&0x80 != 0)
	v = v<<1 | in
	c.setZN(v)
	return v
}

func (c *CPU) ror(v byte) byte {
	in := (c.P & flagC) << 7
	c.setFlag(flagC, v&0x01 != 0)
	v = v>>1 | in
	c.setZN(v)
	return v
}

// modify applies f to the accumulator or to memory at addr, as the mode dictates.
func (c *CPU) modify(mode addrMode, addr uint16, f func(byte) byte) byte {
	if mode == modeAcc {
		c.A = f(c.A)
		return c.A
	}
	v := f(c.read8(addr))
	c.write8(addr, v)
	return v
}

// execute performs the operation and returns any extra cycles (branches).
func (c *CPU) execute(name mnemonic, mode addrMode, addr uint16) int {
	switch name {
	case opADC:
		c.adc(c.read8(addr))
	case opAND:
		c.A &= c.read8(addr)
		c.setZN(c.A)
	case opASL:
		c.modify(mode, addr, c.asl)
	case opBCC:
		return c.branch(!c.flag(flagC), addr)
	case opBCS:
		return c.branch(c.flag(flagC), addr)
	case opBEQ:
		return c.branch(c.flag(flagZ), addr)
	case opBIT:
		v := c.read8(addr)
		c.setFlag(flagZ, c.A&v == 0)
		c.setFlag(flagV, v&0x40 != 0)
		c.setFlag(flagN, v&0x80 != 0)
	case opBMI:
		return c.branch(c.flag(flagN), addr)
	case opBNE:
		return c.branch(!c.flag(flagZ), addr)
	case opBPL:
		return c.branch(!c.flag(flagN), addr)
	case opBRK:
		c.PC++
		c.interrupt(vecIRQ, true)
	case opBVC:
		return c.branch(!c.flag(flagV), addr)
	case opBVS:
		return c.branch(c.flag(flagV), addr)
	case opCLC:
		c.setFlag(flagC, false)
	case opCLD:
		c.setFlag(flagD, false)
	case opCLI:
		c.setFlag(flagI, false)
	case opCLV:
		c.setFlag(flagV, false)
	case opCMP:
		c.compare(c.A, c.read8(addr))
	case opCPX:
		c.compare(c.X, c.read8(addr))
	case opCPY:
		c.compare(c.Y, c.read8(addr))
	case opDEC:
		v := c.read8(addr) - 1
		c.write8(addr, v)
		c.setZN(v)
	case opDEX:
		c.X--
		c.setZN(c.X)
	case opDEY:
		c.Y--
		c.setZN(c.Y)
	case opEOR:
		c.A ^= c.read8(addr)
		c.setZN(c.A)
	case opINC:
		v := c.read8(addr) + 1
		c.write8(addr, v)
		c.setZN(v)
	case opINX:
		c.X++
		c.setZN(c.X)
	case opINY:
		c.Y++
		c.setZN(c.Y)
	case opJMP:
		c.PC = addr
	case opJSR:
		c.push16(c.PC - 1)
		c.PC = addr
	case opLDA:
		c.A = c.read8(addr)
		c.setZN(c.A)
	case opLDX:
		c.X = c.read8(addr)
		c.setZN(c.X)
	case opLDY:
		c.Y = c.read8(addr)
		c.setZN(c.Y)
	case opLSR:
		c.modify(mode, addr, c.lsr)
	case opNOP:
		if mode != modeImp && mode != modeAcc {
			c.read8(addr)
		}
	case opORA:
		c.A |= c.read8(addr)
		c.setZN(c.A)
	case opPHA:
		c.push8(c.A)
	case opPHP:
		c.push8(c.P | flagB | flagU)
	case opPLA:
		c.A = c.pop8()
		c.setZN(c.A)
	case opPLP:
		c.P = c.pop8()&^flagB | flagU
	case opROL:
		c.modify(mode, addr, c.rol)
	case opROR:
		c.modify(mode, addr, c.ror)
	case opRTI:
		c.P = c.pop8()&^flagB | flagU
		c.PC = c.pop16()
	case opRTS:
		c.PC = c.pop16() + 1
	case opSBC:
		c.sbc(c.read8(addr))
	case opSEC:
		c.setFlag(flagC, true)
	case opSED:
		c.setFlag(flagD, true)
	case opSEI:
		c.setFlag(flagI, true)
	case opSTA:
		c.write8(addr, c.A)
	case opSTX:
		c.write8(addr, c.X)
	case opSTY:
		c.write8(addr, c.Y)
	case opTAX:
		c.X = c.A
		c.setZN(c.X)
	case opTAY:
		c.Y = c.A
		c.setZN(c.Y)
	case opTSX:
		c.X = c.SP
		c.setZN(c.X)
	case opTXA:
		c.A = c.X
		c.setZN(c.A)
	case opTXS:
		c.SP = c.X
	case opTYA:
		c.A = c.Y
		c.setZN(c.A)

	// Undocumented opcodes used by commercial games and nestest.
	case opLAX:
		c.A = c.read8(addr)
		c.X = c.A
		c.setZN(c.A)
	case opSAX:
		c.write8(addr, c.A&c.X)
	case opDCP:
		v := c.read8(addr) - 1
		c.write8(addr, v)
		c.compare(c.A, v)
	case opISB:
		v := c.read8(addr) + 1
		c.write8(addr, v)
		c.sbc(v)
	case opSLO:
		v := c.modify(mode, addr, c.asl)
		c.A |= v
		c.setZN(c.A)
	case opRLA:
		v := c.modify(mode, addr, c.rol)
		c.A &= v
		c.setZN(c.A)
	case opSRE:
		v := c.modify(mode, addr, c.lsr)
		c.A ^= v
		c.setZN(c.A)
	case opRRA:
		v := c.modify(mode, addr, c.ror)
		c.adc(v)
	case opANC:
		c.A &= c.read8(addr)
		c.setZN(c.A)
		c.setFlag(flagC, c.A&0x80 != 0)
	case opALR:
		c.A &= c.read8(addr)
		c.A = c.lsr(c.A)
	case opKIL:
		// Jammed: hold PC on the opcode so the core spins in place.
		c.PC--
	}
	return 0
}
