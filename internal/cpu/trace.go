package cpu

import "fmt"

func operandSize(m addrMode) uint16 {
	switch m {
	case modeImp, modeAcc:
		return 0
	case modeAbs, modeAbsX, modeAbsY, modeInd:
		return 2
	default:
		return 1
	}
}

// Disassemble decodes the instruction at pc without side effects on CPU state.
// It returns the text and the instruction length in bytes.
func (c *CPU) Disassemble(pc uint16) (string, uint16) {
	op := c.read8(pc)
	info := opTable[op]
	n := operandSize(info.mode)
	var lo, hi byte
	if n >= 1 {
		lo = c.read8(pc + 1)
	}
	if n == 2 {
		hi = c.read8(pc + 2)
	}
	w := uint16(hi)<<8 | uint16(lo)
	var arg string
	switch info.mode {
	case modeAcc:
		arg = " A"
	case modeImm:
		arg = fmt.Sprintf(" #$%02X", lo)
	case modeZP:
		arg = fmt.Sprintf(" $%02X", lo)
	case modeZPX:
		arg = fmt.Sprintf(" $%02X,X", lo)
	case modeZPY:
		arg = fmt.Sprintf(" $%02X,Y", lo)
	case modeAbs:
		arg = fmt.Sprintf(" $%04X", w)
	case modeAbsX:
		arg = fmt.Sprintf(" $%04X,X", w)
	case modeAbsY:
		arg = fmt.Sprintf(" $%04X,Y", w)
	case modeInd:
		arg = fmt.Sprintf(" ($%04X)", w)
	case modeIndX:
		arg = fmt.Sprintf(" ($%02X,X)", lo)
	case modeIndY:
		arg = fmt.Sprintf(" ($%02X),Y", lo)
	case modeRel:
		arg = fmt.Sprintf(" $%04X", uint16(int32(pc)+2+int32(int8(lo))))
	}
	return info.name.String() + arg, 1 + n
}

// Trace formats the registers and next instruction in a nestest-like layout.
func (c *CPU) Trace() string {
	text, _ := c.Disassemble(c.PC)
	return fmt.Sprintf("%04X  %-16s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		c.PC, text, c.A, c.X, c.Y, c.P, c.SP, c.Cycles)
}
