package apu

import "math"

// CPU frequency in Hz (NTSC 2A03)
const cpuHz = 1789773

// Defaults match a typical 44.1 kHz output device fed in 4096-sample blocks.
const (
	DefaultSampleRate = 44100
	DefaultBufferSize = 4096

	// pending samples are capped so an unconsumed stream cannot grow without bound
	maxPendingBlocks = 4
	historyLen       = 1024
)

// frame counter step points in CPU cycles
const (
	fcStep1 = 7457
	fcStep2 = 14913
	fcStep3 = 22371
	fcStep4 = 29829
	fcStep5 = 37281
)

// APU is the 2A03 audio unit: two pulse channels, triangle, noise and DMC
// mixed through the non-linear DAC approximation into mono int16 samples.
type APU struct {
	pulse1   pulse
	pulse2   pulse
	triangle triangle
	noise    noise
	dmc      dmc

	// frame counter ($4017)
	fiveStep   bool
	irqInhibit bool
	frameIRQ   bool
	fcCycle    int
	cycle      uint64

	// sample generation
	sampleRate      int
	cyclesPerSample float64
	cycAccum        float64
	hpPrevIn        float64
	hpPrevOut       float64

	bufferSize int
	pending    []int16

	muted   [NumChannels]bool
	history [NumChannels][historyLen]float32
	histPos int
}

var pulseTable [31]float64
var tndTable [203]float64

func init() {
	for i := 1; i < len(pulseTable); i++ {
		pulseTable[i] = 95.52 / (8128.0/float64(i) + 100)
	}
	for i := 1; i < len(tndTable); i++ {
		tndTable[i] = 163.67 / (24329.0/float64(i) + 100)
	}
}

// New creates an APU producing samples at sampleRate (DefaultSampleRate when <= 0).
func New(sampleRate int) *APU {
	a := &APU{bufferSize: DefaultBufferSize}
	a.SetSampleRate(sampleRate)
	a.Reset()
	return a
}

// Reset silences every channel. Sample rate, buffer size and mutes are kept.
func (a *APU) Reset() {
	a.pulse1 = pulse{channel: 1}
	a.pulse2 = pulse{channel: 2}
	a.triangle = triangle{}
	reader := a.dmc.reader
	a.dmc = dmc{reader: reader}
	a.noise = noise{shift: 1}
	a.fiveStep, a.irqInhibit, a.frameIRQ = false, false, false
	a.fcCycle = 0
	a.pending = a.pending[:0]
}

// SetSampleRate changes the output rate; values <= 0 select DefaultSampleRate.
func (a *APU) SetSampleRate(hz int) {
	if hz <= 0 {
		hz = DefaultSampleRate
	}
	a.sampleRate = hz
	a.cyclesPerSample = float64(cpuHz) / float64(hz)
}

func (a *APU) SampleRate() int { return a.sampleRate }

// SetBufferSize sets the block size that BufferFull reports against; values <= 0 select DefaultBufferSize.
func (a *APU) SetBufferSize(n int) {
	if n <= 0 {
		n = DefaultBufferSize
	}
	a.bufferSize = n
}

func (a *APU) BufferSize() int { return a.bufferSize }

// BufferFull reports whether at least one block of BufferSize samples is pending.
func (a *APU) BufferFull() bool { return len(a.pending) >= a.bufferSize }

// ConsumeSamples returns every pending sample and empties the buffer.
func (a *APU) ConsumeSamples() []int16 {
	if len(a.pending) == 0 {
		return nil
	}
	out := make([]int16, len(a.pending))
	copy(out, a.pending)
	a.pending = a.pending[:0]
	return out
}

// SetDMCReader installs the function the DMC uses to fetch sample bytes from CPU memory.
func (a *APU) SetDMCReader(r func(addr uint16) byte) { a.dmc.reader = r }

// IRQ reports whether the frame counter or DMC is asserting the CPU IRQ line.
func (a *APU) IRQ() bool { return a.frameIRQ || a.dmc.irq }

// CPURead handles $4015; other APU registers are write-only.
func (a *APU) CPURead(addr uint16) byte {
	if addr != 0x4015 {
		return 0
	}
	var v byte
	if a.pulse1.length > 0 {
		v |= 0x01
	}
	if a.pulse2.length > 0 {
		v |= 0x02
	}
	if a.triangle.length > 0 {
		v |= 0x04
	}
	if a.noise.length > 0 {
		v |= 0x08
	}
	if a.dmc.remaining > 0 {
		v |= 0x10
	}
	if a.frameIRQ {
		v |= 0x40
	}
	if a.dmc.irq {
		v |= 0x80
	}
	a.frameIRQ = false
	return v
}

// CPUWrite handles $4000-$4013, $4015 and $4017.
func (a *APU) CPUWrite(addr uint16, v byte) {
	switch {
	case addr <= 0x4003:
		a.pulse1.write(addr&3, v)
	case addr <= 0x4007:
		a.pulse2.write(addr&3, v)
	case addr <= 0x400B:
		a.triangle.write(addr&3, v)
	case addr <= 0x400F:
		a.noise.write(addr&3, v)
	case addr <= 0x4013:
		a.dmc.write(addr&3, v)
	case addr == 0x4015:
		a.pulse1.setEnabled(v&0x01 != 0)
		a.pulse2.setEnabled(v&0x02 != 0)
		a.triangle.setEnabled(v&0x04 != 0)
		a.noise.setEnabled(v&0x08 != 0)
		a.dmc.setEnabled(v&0x10 != 0)
		a.dmc.irq = false
	case addr == 0x4017:
		a.fiveStep = v&0x80 != 0
		a.irqInhibit = v&0x40 != 0
		if a.irqInhibit {
			a.frameIRQ = false
		}
		a.fcCycle = 0
		if a.fiveStep {
			a.quarterFrame()
			a.halfFrame()
		}
	}
}

// Tick advances the APU by the given number of CPU cycles and pushes PCM samples when due.
// It returns the CPU cycles the DMC stole for sample fetches.
func (a *APU) Tick(cycles int) (stall int) {
	for i := 0; i < cycles; i++ {
		a.cycle++
		a.triangle.clockTimer()
		if a.cycle&1 == 0 {
			a.pulse1.clockTimer()
			a.pulse2.clockTimer()
			a.noise.clockTimer()
			stall += a.dmc.clockTimer()
		}
		a.stepFrameCounter()

		a.cycAccum++
		if a.cycAccum >= a.cyclesPerSample {
			a.cycAccum -= a.cyclesPerSample
			a.emitSample()
		}
	}
	return stall
}

func (a *APU) stepFrameCounter() {
	a.fcCycle++
	switch a.fcCycle {
	case fcStep1, fcStep3:
		a.quarterFrame()
	case fcStep2:
		a.quarterFrame()
		a.halfFrame()
	case fcStep4:
		if !a.fiveStep {
			a.quarterFrame()
			a.halfFrame()
			if !a.irqInhibit {
				a.frameIRQ = true
			}
			a.fcCycle = 0
		}
	case fcStep5:
		a.quarterFrame()
		a.halfFrame()
		a.fcCycle = 0
	}
}

func (a *APU) quarterFrame() {
	a.pulse1.env.clock()
	a.pulse2.env.clock()
	a.noise.env.clock()
	a.triangle.clockLinear()
}

func (a *APU) halfFrame() {
	a.pulse1.clockLength()
	a.pulse2.clockLength()
	a.triangle.clockLength()
	a.noise.clockLength()
	a.pulse1.clockSweep()
	a.pulse2.clockSweep()
}

// levels returns each channel's current DAC input, zeroed for muted channels.
func (a *APU) levels() [NumChannels]byte {
	l := [NumChannels]byte{
		Pulse1:   a.pulse1.output(),
		Pulse2:   a.pulse2.output(),
		Triangle: a.triangle.output(),
		Noise:    a.noise.output(),
		DMC:      a.dmc.output(),
	}
	for ch := range l {
		if a.muted[ch] {
			l[ch] = 0
		}
	}
	return l
}

func (a *APU) emitSample() {
	l := a.levels()
	out := pulseTable[l[Pulse1]+l[Pulse2]] + tndTable[3*int(l[Triangle])+2*int(l[Noise])+int(l[DMC])]

	// one-pole high-pass removes the DAC's DC offset
	y := out - a.hpPrevIn + 0.996*a.hpPrevOut
	a.hpPrevIn, a.hpPrevOut = out, y
	s := math.Max(-1, math.Min(1, y*1.5))

	a.recordHistory()
	if len(a.pending) >= a.bufferSize*maxPendingBlocks {
		return // drop if the consumer stalls
	}
	a.pending = append(a.pending, int16(s*32767))
}
