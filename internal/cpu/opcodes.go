package cpu

// Opcode matrix for the 2A03, including the stable undocumented opcodes.

type addrMode byte

const (
	modeImp addrMode = iota
	modeAcc
	modeImm
	modeZP
	modeZPX
	modeZPY
	modeAbs
	modeAbsX
	modeAbsY
	modeInd
	modeIndX
	modeIndY
	modeRel
)

type mnemonic byte

const (
	opADC mnemonic = iota
	opALR
	opANC
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDCP
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opISB
	opJMP
	opJSR
	opKIL
	opLAX
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opRLA
	opROL
	opROR
	opRRA
	opRTI
	opRTS
	opSAX
	opSBC
	opSEC
	opSED
	opSEI
	opSLO
	opSRE
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA
)

var mnemonicNames = [...]string{
	opADC: "ADC",
	opALR: "ALR",
	opANC: "ANC",
	opAND: "AND",
	opASL: "ASL",
	opBCC: "BCC",
	opBCS: "BCS",
	opBEQ: "BEQ",
	opBIT: "BIT",
	opBMI: "BMI",
	opBNE: "BNE",
	opBPL: "BPL",
	opBRK: "BRK",
	opBVC: "BVC",
	opBVS: "BVS",
	opCLC: "CLC",
	opCLD: "CLD",
	opCLI: "CLI",
	opCLV: "CLV",
	opCMP: "CMP",
	opCPX: "CPX",
	opCPY: "CPY",
	opDCP: "DCP",
	opDEC: "DEC",
	opDEX: "DEX",
	opDEY: "DEY",
	opEOR: "EOR",
	opINC: "INC",
	opINX: "INX",
	opINY: "INY",
	opISB: "ISB",
	opJMP: "JMP",
	opJSR: "JSR",
	opKIL: "KIL",
	opLAX: "LAX",
	opLDA: "LDA",
	opLDX: "LDX",
	opLDY: "LDY",
	opLSR: "LSR",
	opNOP: "NOP",
	opORA: "ORA",
	opPHA: "PHA",
	opPHP: "PHP",
	opPLA: "PLA",
	opPLP: "PLP",
	opRLA: "RLA",
	opROL: "ROL",
	opROR: "ROR",
	opRRA: "RRA",
	opRTI: "RTI",
	opRTS: "RTS",
	opSAX: "SAX",
	opSBC: "SBC",
	opSEC: "SEC",
	opSED: "SED",
	opSEI: "SEI",
	opSLO: "SLO",
	opSRE: "SRE",
	opSTA: "STA",
	opSTX: "STX",
	opSTY: "STY",
	opTAX: "TAX",
	opTAY: "TAY",
	opTSX: "TSX",
	opTXA: "TXA",
	opTXS: "TXS",
	opTYA: "TYA",
}

func (m mnemonic) String() string {
	if int(m) < len(mnemonicNames) {
		return mnemonicNames[m]
	}
	return "???"
}

type opInfo struct {
	name        mnemonic
	mode        addrMode
	cycles      byte
	pagePenalty bool
}

var opTable = [256]opInfo{
	0x00: {opBRK, modeImp, 7, false},
	0x01: {opORA, modeIndX, 6, false},
	0x02: {opKIL, modeImp, 2, false},
	0x03: {opSLO, modeIndX, 8, false},
	0x04: {opNOP, modeZP, 3, false},
	0x05: {opORA, modeZP, 3, false},
	0x06: {opASL, modeZP, 5, false},
	0x07: {opSLO, modeZP, 5, false},
	0x08: {opPHP, modeImp, 3, false},
	0x09: {opORA, modeImm, 2, false},
	0x0A: {opASL, modeAcc, 2, false},
	0x0B: {opANC, modeImm, 2, false},
	0x0C: {opNOP, modeAbs, 4, false},
	0x0D: {opORA, modeAbs, 4, false},
	0x0E: {opASL, modeAbs, 6, false},
	0x0F: {opSLO, modeAbs, 6, false},
	0x10: {opBPL, modeRel, 2, false},
	0x11: {opORA, modeIndY, 5, true},
	0x12: {opKIL, modeImp, 2, false},
	0x13: {opSLO, modeIndY, 8, false},
	0x14: {opNOP, modeZPX, 4, false},
	0x15: {opORA, modeZPX, 4, false},
	0x16: {opASL, modeZPX, 6, false},
	0x17: {opSLO, modeZPX, 6, false},
	0x18: {opCLC, modeImp, 2, false},
	0x19: {opORA, modeAbsY, 4, true},
	0x1A: {opNOP, modeImp, 2, false},
	0x1B: {opSLO, modeAbsY, 7, false},
	0x1C: {opNOP, modeAbsX, 4, true},
	0x1D: {opORA, modeAbsX, 4, true},
	0x1E: {opASL, modeAbsX, 7, false},
	0x1F: {opSLO, modeAbsX, 7, false},
	0x20: {opJSR, modeAbs, 6, false},
	0x21: {opAND, modeIndX, 6, false},
	0x22: {opKIL, modeImp, 2, false},
	0x23: {opRLA, modeIndX, 8, false},
	0x24: {opBIT, modeZP, 3, false},
	0x25: {opAND, modeZP, 3, false},
	0x26: {opROL, modeZP, 5, false},
	0x27: {opRLA, modeZP, 5, false},
	0x28: {opPLP, modeImp, 4, false},
	0x29: {opAND, modeImm, 2, false},
	0x2A: {opROL, modeAcc, 2, false},
	0x2B: {opANC, modeImm, 2, false},
	0x2C: {opBIT, modeAbs, 4, false},
	0x2D: {opAND, modeAbs, 4, false},
	0x2E: {opROL, modeAbs, 6, false},
	0x2F: {opRLA, modeAbs, 6, false},
	0x30: {opBMI, modeRel, 2, false},
	0x31: {opAND, modeIndY, 5, true},
	0x32: {opKIL, modeImp, 2, false},
	0x33: {opRLA, modeIndY, 8, false},
	0x34: {opNOP, modeZPX, 4, false},
	0x35: {opAND, modeZPX, 4, false},
	0x36: {opROL, modeZPX, 6, false},
	0x37: {opRLA, modeZPX, 6, false},
	0x38: {opSEC, modeImp, 2, false},
	0x39: {opAND, modeAbsY, 4, true},
	0x3A: {opNOP, modeImp, 2, false},
	0x3B: {opRLA, modeAbsY, 7, false},
	0x3C: {opNOP, modeAbsX, 4, true},
	0x3D: {opAND, modeAbsX, 4, true},
	0x3E: {opROL, modeAbsX, 7, false},
	0x3F: {opRLA, modeAbsX, 7, false},
	0x40: {opRTI, modeImp, 6, false},
	0x41: {opEOR, modeIndX, 6, false},
	0x42: {opKIL, modeImp, 2, false},
	0x43: {opSRE, modeIndX, 8, false},
	0x44: {opNOP, modeZP, 3, false},
	0x45: {opEOR, modeZP, 3, false},
	0x46: {opLSR, modeZP, 5, false},
	0x47: {opSRE, modeZP, 5, false},
	0x48: {opPHA, modeImp, 3, false},
	0x49: {opEOR, modeImm, 2, false},
	0x4A: {opLSR, modeAcc, 2, false},
	0x4B: {opALR, modeImm, 2, false},
	0x4C: {opJMP, modeAbs, 3, false},
	0x4D: {opEOR, modeAbs, 4, false},
	0x4E: {opLSR, modeAbs, 6, false},
	0x4F: {opSRE, modeAbs, 6, false},
	0x50: {opBVC, modeRel, 2, false},
	0x51: {opEOR, modeIndY, 5, true},
	0x52: {opKIL, modeImp, 2, false},
	0x53: {opSRE, modeIndY, 8, false},
	0x54: {opNOP, modeZPX, 4, false},
	0x55: {opEOR, modeZPX, 4, false},
	0x56: {opLSR, modeZPX, 6, false},
	0x57: {opSRE, modeZPX, 6, false},
	0x58: {opCLI, modeImp, 2, false},
	0x59: {opEOR, modeAbsY, 4, true},
	0x5A: {opNOP, modeImp, 2, false},
	0x5B: {opSRE, modeAbsY, 7, false},
	0x5C: {opNOP, modeAbsX, 4, true},
	0x5D: {opEOR, modeAbsX, 4, true},
	0x5E: {opLSR, modeAbsX, 7, false},
	0x5F: {opSRE, modeAbsX, 7, false},
	0x60: {opRTS, modeImp, 6, false},
	0x61: {opADC, modeIndX, 6, false},
	0x62: {opKIL, modeImp, 2, false},
	0x63: {opRRA, modeIndX, 8, false},
	0x64: {opNOP, modeZP, 3, false},
	0x65: {opADC, modeZP, 3, false},
	0x66: {opROR, modeZP, 5, false},
	0x67: {opRRA, modeZP, 5, false},
	0x68: {opPLA, modeImp, 4, false},
	0x69: {opADC, modeImm, 2, false},
	0x6A: {opROR, modeAcc, 2, false},
	0x6B: {opNOP, modeImm, 2, false},
	0x6C: {opJMP, modeInd, 5, false},
	0x6D: {opADC, modeAbs, 4, false},
	0x6E: {opROR, modeAbs, 6, false},
	0x6F: {opRRA, modeAbs, 6, false},
	0x70: {opBVS, modeRel, 2, false},
	0x71: {opADC, modeIndY, 5, true},
	0x72: {opKIL, modeImp, 2, false},
	0x73: {opRRA, modeIndY, 8, false},
	0x74: {opNOP, modeZPX, 4, false},
	0x75: {opADC, modeZPX, 4, false},
	0x76: {opROR, modeZPX, 6, false},
	0x77: {opRRA, modeZPX, 6, false},
	0x78: {opSEI, modeImp, 2, false},
	0x79: {opADC, modeAbsY, 4, true},
	0x7A: {opNOP, modeImp, 2, false},
	0x7B: {opRRA, modeAbsY, 7, false},
	0x7C: {opNOP, modeAbsX, 4, true},
	0x7D: {opADC, modeAbsX, 4, true},
	0x7E: {opROR, modeAbsX, 7, false},
	0x7F: {opRRA, modeAbsX, 7, false},
	0x80: {opNOP, modeImm, 2, false},
	0x81: {opSTA, modeIndX, 6, false},
	0x82: {opNOP, modeImm, 2, false},
	0x83: {opSAX, modeIndX, 6, false},
	0x84: {opSTY, modeZP, 3, false},
	0x85: {opSTA, modeZP, 3, false},
	0x86: {opSTX, modeZP, 3, false},
	0x87: {opSAX, modeZP, 3, false},
	0x88: {opDEY, modeImp, 2, false},
	0x89: {opNOP, modeImm, 2, false},
	0x8A: {opTXA, modeImp, 2, false},
	0x8B: {opNOP, modeImm, 2, false},
	0x8C: {opSTY, modeAbs, 4, false},
	0x8D: {opSTA, modeAbs, 4, false},
	0x8E: {opSTX, modeAbs, 4, false},
	0x8F: {opSAX, modeAbs, 4, false},
	0x90: {opBCC, modeRel, 2, false},
	0x91: {opSTA, modeIndY, 6, false},
	0x92: {opKIL, modeImp, 2, false},
	0x93: {opNOP, modeIndY, 6, false},
	0x94: {opSTY, modeZPX, 4, false},
	0x95: {opSTA, modeZPX, 4, false},
	0x96: {opSTX, modeZPY, 4, false},
	0x97: {opSAX, modeZPY, 4, false},
	0x98: {opTYA, modeImp, 2, false},
	0x99: {opSTA, modeAbsY, 5, false},
	0x9A: {opTXS, modeImp, 2, false},
	0x9B: {opNOP, modeAbsY, 5, false},
	0x9C: {opNOP, modeAbsX, 5, false},
	0x9D: {opSTA, modeAbsX, 5, false},
	0x9E: {opNOP, modeAbsY, 5, false},
	0x9F: {opNOP, modeAbsY, 5, false},
	0xA0: {opLDY, modeImm, 2, false},
	0xA1: {opLDA, modeIndX, 6, false},
	0xA2: {opLDX, modeImm, 2, false},
	0xA3: {opLAX, modeIndX, 6, false},
	0xA4: {opLDY, modeZP, 3, false},
	0xA5: {opLDA, modeZP, 3, false},
	0xA6: {opLDX, modeZP, 3, false},
	0xA7: {opLAX, modeZP, 3, false},
	0xA8: {opTAY, modeImp, 2, false},
	0xA9: {opLDA, modeImm, 2, false},
	0xAA: {opTAX, modeImp, 2, false},
	0xAB: {opLAX, modeImm, 2, false},
	0xAC: {opLDY, modeAbs, 4, false},
	0xAD: {opLDA, modeAbs, 4, false},
	0xAE: {opLDX, modeAbs, 4, false},
	0xAF: {opLAX, modeAbs, 4, false},
	0xB0: {opBCS, modeRel, 2, false},
	0xB1: {opLDA, modeIndY, 5, true},
	0xB2: {opKIL, modeImp, 2, false},
	0xB3: {opLAX, modeIndY, 5, true},
	0xB4: {opLDY, modeZPX, 4, false},
	0xB5: {opLDA, modeZPX, 4, false},
	0xB6: {opLDX, modeZPY, 4, false},
	0xB7: {opLAX, modeZPY, 4, false},
	0xB8: {opCLV, modeImp, 2, false},
	0xB9: {opLDA, modeAbsY, 4, true},
	0xBA: {opTSX, modeImp, 2, false},
	0xBB: {opNOP, modeAbsY, 4, true},
	0xBC: {opLDY, modeAbsX, 4, true},
	0xBD: {opLDA, modeAbsX, 4, true},
	0xBE: {opLDX, modeAbsY, 4, true},
	0xBF: {opLAX, modeAbsY, 4, true},
	0xC0: {opCPY, modeImm, 2, false},
	0xC1: {opCMP, modeIndX, 6, false},
	0xC2: {opNOP, modeImm, 2, false},
	0xC3: {opDCP, modeIndX, 8, false},
	0xC4: {opCPY, modeZP, 3, false},
	0xC5: {opCMP, modeZP, 3, false},
	0xC6: {opDEC, modeZP, 5, false},
	0xC7: {opDCP, modeZP, 5, false},
	0xC8: {opINY, modeImp, 2, false},
	0xC9: {opCMP, modeImm, 2, false},
	0xCA: {opDEX, modeImp, 2, false},
	0xCB: {opNOP, modeImm, 2, false},
	0xCC: {opCPY, modeAbs, 4, false},
	0xCD: {opCMP, modeAbs, 4, false},
	0xCE: {opDEC, modeAbs, 6, false},
	0xCF: {opDCP, modeAbs, 6, false},
	0xD0: {opBNE, modeRel, 2, false},
	0xD1: {opCMP, modeIndY, 5, true},
	0xD2: {opKIL, modeImp, 2, false},
	0xD3: {opDCP, modeIndY, 8, false},
	0xD4: {opNOP, modeZPX, 4, false},
	0xD5: {opCMP, modeZPX, 4, false},
	0xD6: {opDEC, modeZPX, 6, false},
	0xD7: {opDCP, modeZPX, 6, false},
	0xD8: {opCLD, modeImp, 2, false},
	0xD9: {opCMP, modeAbsY, 4, true},
	0xDA: {opNOP, modeImp, 2, false},
	0xDB: {opDCP, modeAbsY, 7, false},
	0xDC: {opNOP, modeAbsX, 4, true},
	0xDD: {opCMP, modeAbsX, 4, true},
	0xDE: {opDEC, modeAbsX, 7, false},
	0xDF: {opDCP, modeAbsX, 7, false},
	0xE0: {opCPX, modeImm, 2, false},
	0xE1: {opSBC, modeIndX, 6, false},
	0xE2: {opNOP, modeImm, 2, false},
	0xE3: {opISB, modeIndX, 8, false},
	0xE4: {opCPX, modeZP, 3, false},
	0xE5: {opSBC, modeZP, 3, false},
	0xE6: {opINC, modeZP, 5, false},
	0xE7: {opISB, modeZP, 5, false},
	0xE8: {opINX, modeImp, 2, false},
	0xE9: {opSBC, modeImm, 2, false},
	0xEA: {opNOP, modeImp, 2, false},
	0xEB: {opSBC, modeImm, 2, false},
	0xEC: {opCPX, modeAbs, 4, false},
	0xED: {opSBC, modeAbs, 4, false},
	0xEE: {opINC, modeAbs, 6, false},
	0xEF: {opISB, modeAbs, 6, false},
	0xF0: {opBEQ, modeRel, 2, false},
	0xF1: {opSBC, modeIndY, 5, true},
	0xF2: {opKIL, modeImp, 2, false},
	0xF3: {opISB, modeIndY, 8, false},
	0xF4: {opNOP, modeZPX, 4, false},
	0xF5: {opSBC, modeZPX, 4, false},
	0xF6: {opINC, modeZPX, 6, false},
	0xF7: {opISB, modeZPX, 6, false},
	0xF8: {opSED, modeImp, 2, false},
	0xF9: {opSBC, modeAbsY, 4, true},
	0xFA: {opNOP, modeImp, 2, false},
	0xFB: {opISB, modeAbsY, 7, false},
	0xFC: {opNOP, modeAbsX, 4, true},
	0xFD: {opSBC, modeAbsX, 4, true},
	0xFE: {opINC, modeAbsX, 7, false},
	0xFF: {opISB, modeAbsX, 7, false},
}
