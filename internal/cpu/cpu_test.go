package cpu

import (
	"strings"
	"testing"
)

type flatMem [0x10000]byte

func (m *flatMem) Read(addr uint16) byte     { return m[addr] }
func (m *flatMem) Write(addr uint16, v byte) { m[addr] = v }

// newCPUWithProgram loads code at $8000 and points the reset vector at it.
func newCPUWithProgram(code []byte) (*CPU, *flatMem) {
	m := &flatMem{}
	copy(m[0x8000:], code)
	m[0xFFFC] = 0x00
	m[0xFFFD] = 0x80
	c := New(m)
	c.Reset()
	return c, m
}

func TestCPU_ResetVector(t *testing.T) {
	c, _ := newCPUWithProgram(nil)
	if c.PC != 0x8000 {
		t.Fatalf("PC after reset got %#04x want 0x8000", c.PC)
	}
	if c.SP != 0xFD || c.P&flagI == 0 {
		t.Fatalf("power-up SP=%02X P=%02X", c.SP, c.P)
	}
}

func TestCPU_NopCycles(t *testing.T) {
	c, _ := newCPUWithProgram([]byte{0xEA})
	if cycles := c.Step(); cycles != 2 {
		t.Fatalf("NOP cycles got %d want 2", cycles)
	}
	if c.PC != 0x8001 {
		t.Fatalf("PC after NOP got %#04x want 0x8001", c.PC)
	}
}

func TestCPU_LDA_STA_Flags(t *testing.T) {
	// LDA #$00; LDA #$80; STA $0200
	c, m := newCPUWithProgram([]byte{0xA9, 0x00, 0xA9, 0x80, 0x8D, 0x00, 0x02})
	c.Step()
	if c.P&flagZ == 0 {
		t.Fatalf("Z not set after LDA #0")
	}
	c.Step()
	if c.P&flagN == 0 || c.P&flagZ != 0 {
		t.Fatalf("LDA #$80 flags P=%02X", c.P)
	}
	if cyc := c.Step(); cyc != 4 {
		t.Fatalf("STA abs cycles got %d want 4", cyc)
	}
	if m[0x0200] != 0x80 {
		t.Fatalf("RAM $0200 got %02X want 80", m[0x0200])
	}
}

func TestCPU_ADC_SBC_Overflow(t *testing.T) {
	// CLC; LDA #$50; ADC #$50; SEC; SBC #$F0
	c, _ := newCPUWithProgram([]byte{0x18, 0xA9, 0x50, 0x69, 0x50, 0x38, 0xE9, 0xF0})
	c.Step()
	c.Step()
	c.Step()
	if c.A != 0xA0 || c.P&flagV == 0 || c.P&flagC != 0 {
		t.Fatalf("ADC got A=%02X P=%02X want A=A0 V=1 C=0", c.A, c.P)
	}
	c.Step()
	c.Step()
	if c.A != 0xB0 || c.P&flagC != 0 {
		t.Fatalf("SBC got A=%02X P=%02X want A=B0 C=0", c.A, c.P)
	}
}

func TestCPU_BranchPageCross(t *testing.T) {
	m := &flatMem{}
	// at $80F0: BNE +$20 -> $8112 crosses a page
	m[0x80F0] = 0xD0
	m[0x80F1] = 0x20
	c := New(m)
	c.SetPC(0x80F0)
	if cyc := c.Step(); cyc != 4 {
		t.Fatalf("taken branch with page cross cycles got %d want 4", cyc)
	}
	if c.PC != 0x8112 {
		t.Fatalf("branch target got %#04x want 0x8112", c.PC)
	}
}

func TestCPU_JSR_RTS(t *testing.T) {
	// JSR $8005; NOP; NOP; (pad) ; at $8005: RTS
	c, _ := newCPUWithProgram([]byte{0x20, 0x05, 0x80, 0xEA, 0xEA, 0x60})
	c.Step()
	if c.PC != 0x8005 || c.SP != 0xFB {
		t.Fatalf("after JSR PC=%#04x SP=%02X", c.PC, c.SP)
	}
	c.Step()
	if c.PC != 0x8003 || c.SP != 0xFD {
		t.Fatalf("after RTS PC=%#04x SP=%02X", c.PC, c.SP)
	}
}

func TestCPU_JMPIndirectPageBug(t *testing.T) {
	c, m := newCPUWithProgram([]byte{0x6C, 0xFF, 0x02})
	m[0x02FF] = 0x34
	m[0x0200] = 0x12
	m[0x0300] = 0x99
	c.Step()
	if c.PC != 0x1234 {
		t.Fatalf("JMP ($02FF) got %#04x want 0x1234", c.PC)
	}
}

func TestCPU_NMI(t *testing.T) {
	c, m := newCPUWithProgram([]byte{0xEA})
	m[0xFFFA] = 0x00
	m[0xFFFB] = 0x90
	c.TriggerNMI()
	if cyc := c.Step(); cyc != 7 {
		t.Fatalf("NMI cycles got %d want 7", cyc)
	}
	if c.PC != 0x9000 {
		t.Fatalf("NMI vector got %#04x want 0x9000", c.PC)
	}
	if pushed := m[0x01FB]; pushed&flagB != 0 {
		t.Fatalf("NMI pushed B flag: %02X", pushed)
	}
}

func TestCPU_IRQMasked(t *testing.T) {
	c, m := newCPUWithProgram([]byte{0xEA, 0x58, 0xEA})
	m[0xFFFE] = 0x00
	m[0xFFFF] = 0xA0
	c.SetIRQ(true)
	c.Step() // I set after reset: NOP runs
	if c.PC != 0x8001 {
		t.Fatalf("masked IRQ taken, PC=%#04x", c.PC)
	}
	c.Step() // CLI
	c.Step()
	if c.PC != 0xA000 {
		t.Fatalf("IRQ not taken, PC=%#04x", c.PC)
	}
}

func TestCPU_Stall(t *testing.T) {
	c, _ := newCPUWithProgram([]byte{0xEA})
	c.Stall(3)
	for i := 0; i < 3; i++ {
		if cyc := c.Step(); cyc != 1 || c.PC != 0x8000 {
			t.Fatalf("stall step %d cycles=%d PC=%#04x", i, cyc, c.PC)
		}
	}
	c.Step()
	if c.PC != 0x8001 {
		t.Fatalf("after stall PC got %#04x", c.PC)
	}
}

func TestCPU_UndocumentedLAX_DCP(t *testing.T) {
	// LAX $10; DCP $11
	c, m := newCPUWithProgram([]byte{0xA7, 0x10, 0xC7, 0x11})
	m[0x10] = 0x42
	m[0x11] = 0x43
	c.Step()
	if c.A != 0x42 || c.X != 0x42 {
		t.Fatalf("LAX got A=%02X X=%02X", c.A, c.X)
	}
	c.Step()
	if m[0x11] != 0x42 || c.P&flagZ == 0 || c.P&flagC == 0 {
		t.Fatalf("DCP got mem=%02X P=%02X", m[0x11], c.P)
	}
}

func TestCPU_Trace(t *testing.T) {
	c, _ := newCPUWithProgram([]byte{0xBD, 0x34, 0x12})
	tr := c.Trace()
	if !strings.HasPrefix(tr, "8000  LDA $1234,X") {
		t.Fatalf("trace got %q", tr)
	}
	if _, n := c.Disassemble(0x8000); n != 3 {
		t.Fatalf("length got %d want 3", n)
	}
}
