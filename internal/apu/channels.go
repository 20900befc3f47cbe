package apu

var lengthTable = [32]byte{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

var dutyTable = [4][8]byte{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]byte{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var dmcRates = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54,
}

type envelope struct {
	start    bool
	loop     bool
	constant bool
	period   byte
	divider  byte
	decay    byte
}

func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decay = 15
		e.divider = e.period
		return
	}
	if e.divider > 0 {
		e.divider--
		return
	}
	e.divider = e.period
	if e.decay > 0 {
		e.decay--
	} else if e.loop {
		e.decay = 15
	}
}

func (e *envelope) volume() byte {
	if e.constant {
		return e.period
	}
	return e.decay
}

type pulse struct {
	channel byte // 1 or 2; pulse 1 negates with one's complement
	enabled bool
	duty    byte
	step    byte
	env     envelope
	length  byte
	halt    bool

	timer  uint16
	period uint16

	sweepEnabled bool
	sweepPeriod  byte
	sweepNegate  bool
	sweepShift   byte
	sweepDivider byte
	sweepReload  bool
}

func (p *pulse) write(reg uint16, v byte) {
	switch reg {
	case 0:
		p.duty = v >> 6
		p.halt = v&0x20 != 0
		p.env.loop = p.halt
		p.env.constant = v&0x10 != 0
		p.env.period = v & 0x0F
	case 1:
		p.sweepEnabled = v&0x80 != 0
		p.sweepPeriod = (v >> 4) & 0x07
		p.sweepNegate = v&0x08 != 0
		p.sweepShift = v & 0x07
		p.sweepReload = true
	case 2:
		p.period = p.period&0x0700 | uint16(v)
	case 3:
		p.period = p.period&0x00FF | uint16(v&0x07)<<8
		if p.enabled {
			p.length = lengthTable[v>>3]
		}
		p.step = 0
		p.env.start = true
	}
}

func (p *pulse) setEnabled(on bool) {
	p.enabled = on
	if !on {
		p.length = 0
	}
}

func (p *pulse) clockTimer() {
	if p.timer == 0 {
		p.timer = p.period
		p.step = (p.step + 1) & 7
	} else {
		p.timer--
	}
}

func (p *pulse) clockLength() {
	if !p.halt && p.length > 0 {
		p.length--
	}
}

func (p *pulse) sweepTarget() int {
	delta := int(p.period >> p.sweepShift)
	if p.sweepNegate {
		delta = -delta
		if p.channel == 1 {
			delta--
		}
	}
	return int(p.period) + delta
}

func (p *pulse) clockSweep() {
	target := p.sweepTarget()
	if p.sweepDivider == 0 && p.sweepEnabled && p.sweepShift > 0 && p.period >= 8 && target <= 0x7FF {
		p.period = uint16(target)
	}
	if p.sweepDivider == 0 || p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	} else {
		p.sweepDivider--
	}
}

func (p *pulse) silenced() bool {
	return !p.enabled || p.length == 0 || p.period < 8 || p.sweepTarget() > 0x7FF
}

func (p *pulse) output() byte {
	if p.silenced() || dutyTable[p.duty][p.step] == 0 {
		return 0
	}
	return p.env.volume()
}

type triangle struct {
	enabled bool
	control bool
	length  byte

	linearReload  byte
	linearCounter byte
	linearFlag    bool

	timer  uint16
	period uint16
	step   byte
}

func (t *triangle) write(reg uint16, v byte) {
	switch reg {
	case 0:
		t.control = v&0x80 != 0
		t.linearReload = v & 0x7F
	case 2:
		t.period = t.period&0x0700 | uint16(v)
	case 3:
		t.period = t.period&0x00FF | uint16(v&0x07)<<8
		if t.enabled {
			t.length = lengthTable[v>>3]
		}
		t.linearFlag = true
	}
}

func (t *triangle) setEnabled(on bool) {
	t.enabled = on
	if !on {
		t.length = 0
	}
}

func (t *triangle) clockTimer() {
	if t.timer == 0 {
		t.timer = t.period
		if t.length > 0 && t.linearCounter > 0 {
			t.step = (t.step + 1) & 31
		}
	} else {
		t.timer--
	}
}

func (t *triangle) clockLinear() {
	if t.linearFlag {
		t.linearCounter = t.linearReload
	} else if t.linearCounter > 0 {
		t.linearCounter--
	}
	if !t.control {
		t.linearFlag = false
	}
}

func (t *triangle) clockLength() {
	if !t.control && t.length > 0 {
		t.length--
	}
}

func (t *triangle) active() bool {
	return t.enabled && t.length > 0 && t.linearCounter > 0 && t.period >= 2
}

// output holds the last sequencer value when halted, like the hardware DAC.
func (t *triangle) output() byte {
	if !t.enabled {
		return 0
	}
	return triangleTable[t.step]
}

type noise struct {
	enabled bool
	env     envelope
	length  byte
	halt    bool
	mode    bool
	shift   uint16
	timer   uint16
	period  uint16
}

func (n *noise) write(reg uint16, v byte) {
	switch reg {
	case 0:
		n.halt = v&0x20 != 0
		n.env.loop = n.halt
		n.env.constant = v&0x10 != 0
		n.env.period = v & 0x0F
	case 2:
		n.mode = v&0x80 != 0
		n.period = noisePeriods[v&0x0F]
	case 3:
		if n.enabled {
			n.length = lengthTable[v>>3]
		}
		n.env.start = true
	}
}

func (n *noise) setEnabled(on bool) {
	n.enabled = on
	if !on {
		n.length = 0
	}
}

// clockTimer runs at APU rate; noise periods are listed in CPU cycles, hence the halving.
func (n *noise) clockTimer() {
	if n.timer == 0 {
		n.timer = n.period / 2
		bit := uint16(1)
		if n.mode {
			bit = 6
		}
		fb := (n.shift ^ (n.shift >> bit)) & 1
		n.shift = n.shift>>1 | fb<<14
	} else {
		n.timer--
	}
}

func (n *noise) clockLength() {
	if !n.halt && n.length > 0 {
		n.length--
	}
}

func (n *noise) output() byte {
	if !n.enabled || n.length == 0 || n.shift&1 != 0 {
		return 0
	}
	return n.env.volume()
}

type dmc struct {
	enabled bool
	irqOn   bool
	loop    bool
	irq     bool
	level   byte

	rateIndex byte
	timer     uint16

	sampleAddr uint16
	sampleLen  uint16
	current    uint16
	remaining  uint16

	buffer    byte
	hasBuffer bool
	shift     byte
	bits      byte
	silence   bool

	reader func(addr uint16) byte
}

func (d *dmc) write(reg uint16, v byte) {
	switch reg {
	case 0:
		d.irqOn = v&0x80 != 0
		d.loop = v&0x40 != 0
		d.rateIndex = v & 0x0F
		if !d.irqOn {
			d.irq = false
		}
	case 1:
		d.level = v & 0x7F
	case 2:
		d.sampleAddr = 0xC000 | uint16(v)<<6
	case 3:
		d.sampleLen = uint16(v)<<4 | 1
	}
}

func (d *dmc) setEnabled(on bool) {
	d.enabled = on
	if !on {
		d.remaining = 0
		return
	}
	if d.remaining == 0 {
		d.restart()
	}
}

func (d *dmc) restart() {
	d.current = d.sampleAddr
	d.remaining = d.sampleLen
}

// clockTimer runs at APU rate and returns CPU cycles stolen by a sample fetch.
func (d *dmc) clockTimer() int {
	stall := 0
	if !d.hasBuffer && d.remaining > 0 && d.reader != nil {
		stall = d.fetch()
	}
	if d.timer > 0 {
		d.timer--
		return stall
	}
	d.timer = dmcRates[d.rateIndex]/2 - 1
	if d.bits == 0 {
		d.bits = 8
		d.silence = !d.hasBuffer
		if d.hasBuffer {
			d.shift = d.buffer
			d.hasBuffer = false
		}
	}
	if !d.silence {
		if d.shift&1 != 0 {
			if d.level <= 125 {
				d.level += 2
			}
		} else if d.level >= 2 {
			d.level -= 2
		}
	}
	d.shift >>= 1
	d.bits--
	return stall
}

func (d *dmc) fetch() int {
	d.buffer = d.reader(d.current)
	d.hasBuffer = true
	d.current++
	if d.current == 0 {
		d.current = 0x8000
	}
	d.remaining--
	if d.remaining == 0 {
		if d.loop {
			d.restart()
		} else if d.irqOn {
			d.irq = true
		}
	}
	return 4
}

func (d *dmc) output() byte { return d.level }
