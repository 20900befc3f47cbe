package apu

import "testing"

func TestSampleRateProducesExpectedCount(t *testing.T) {
	a := New(44100)
	a.Tick(cpuHz / 10)
	got := len(a.ConsumeSamples())
	if got < 4400 || got > 4420 {
		t.Fatalf("samples for 100ms got %d want ~4410", got)
	}
	if s := a.ConsumeSamples(); s != nil {
		t.Fatalf("second consume should be empty, got %d", len(s))
	}
}

func TestBufferFullFlag(t *testing.T) {
	a := New(44100)
	a.SetBufferSize(100)
	if a.BufferFull() {
		t.Fatalf("fresh APU reports full")
	}
	a.Tick(int(a.cyclesPerSample*100) + 50)
	if !a.BufferFull() {
		t.Fatalf("expected full after 100 samples, pending=%d", len(a.pending))
	}
	a.ConsumeSamples()
	if a.BufferFull() {
		t.Fatalf("consume must clear full flag")
	}
}

func TestDefaultsOnInvalidSettings(t *testing.T) {
	a := New(0)
	if a.SampleRate() != DefaultSampleRate {
		t.Fatalf("sample rate got %d", a.SampleRate())
	}
	a.SetBufferSize(-5)
	if a.BufferSize() != DefaultBufferSize {
		t.Fatalf("buffer size got %d", a.BufferSize())
	}
}

func TestPendingIsBounded(t *testing.T) {
	a := New(44100)
	a.SetBufferSize(64)
	a.Tick(cpuHz)
	if n := len(a.pending); n > 64*maxPendingBlocks {
		t.Fatalf("pending grew to %d", n)
	}
}

// startPulse1 plays a constant-volume 50% duty tone on pulse 1.
func startPulse1(a *APU) {
	a.CPUWrite(0x4015, 0x01)
	a.CPUWrite(0x4000, 0xBF) // duty 2, halt, constant volume 15
	a.CPUWrite(0x4002, 0xFD)
	a.CPUWrite(0x4003, 0x00) // period 0x0FD, length loaded
}

func TestPulseStatusAndChannelState(t *testing.T) {
	a := New(44100)
	startPulse1(a)
	if a.CPURead(0x4015)&0x01 == 0 {
		t.Fatalf("$4015 should report pulse 1 length > 0")
	}
	s := a.ChannelState(Pulse1)
	if !s.Enabled || s.Volume != 15 || s.Period != 0x0FD {
		t.Fatalf("state got %+v", s)
	}
	if s.Frequency < 440 || s.Frequency > 442 {
		t.Fatalf("frequency got %.2f want ~440", s.Frequency)
	}
	a.CPUWrite(0x4015, 0x00)
	if a.ChannelState(Pulse1).Enabled {
		t.Fatalf("disabling via $4015 should silence pulse 1")
	}
}

func TestMuteSilencesMixButNotHistory(t *testing.T) {
	a := New(44100)
	startPulse1(a)
	a.SetMuted(Pulse1, true)
	if !a.Muted(Pulse1) || !a.ChannelState(Pulse1).Muted {
		t.Fatalf("mute not reported")
	}
	a.Tick(20000)
	if l := a.levels(); l[Pulse1] != 0 {
		t.Fatalf("muted level got %d", l[Pulse1])
	}
	wave := make([]float32, 256)
	if n := a.Waveform(Pulse1, wave); n != 256 {
		t.Fatalf("waveform length %d", n)
	}
	high := false
	for _, v := range wave {
		if v > 0.9 {
			high = true
		}
	}
	if !high {
		t.Fatalf("muted channel history should still show the square wave")
	}
}

func TestFrameIRQ(t *testing.T) {
	a := New(44100)
	a.Tick(fcStep4 + 1)
	if !a.IRQ() {
		t.Fatalf("frame IRQ not raised in 4-step mode")
	}
	if a.CPURead(0x4015)&0x40 == 0 {
		t.Fatalf("$4015 bit 6 not set")
	}
	if a.IRQ() {
		t.Fatalf("reading $4015 must acknowledge the frame IRQ")
	}
	a.CPUWrite(0x4017, 0x40)
	a.Tick(fcStep4 + 1)
	if a.IRQ() {
		t.Fatalf("IRQ inhibit ignored")
	}
}

func TestChannelNames(t *testing.T) {
	if Triangle.String() != "Triangle" || Channel(9).String() != "unknown" {
		t.Fatalf("names: %q %q", Triangle, Channel(9))
	}
	if len(New(0).Channels()) != NumChannels {
		t.Fatalf("Channels length")
	}
}
