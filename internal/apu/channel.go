package apu

// Channel identifies one of the five 2A03 sound generators.
type Channel int

const (
	Pulse1 Channel = iota
	Pulse2
	Triangle
	Noise
	DMC
	NumChannels = 5
)

var channelNames = [NumChannels]string{"Pulse 1", "Pulse 2", "Triangle", "Noise", "DMC"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return "unknown"
	}
	return channelNames[c]
}

// ChannelState is a snapshot of one channel for visualizers.
type ChannelState struct {
	Channel   Channel
	Name      string
	Enabled   bool // producing sound right now
	Muted     bool
	Period    int
	Frequency float64 // Hz; 0 when not meaningful
	Volume    int     // 0..15
	Duty      int     // pulse duty index, noise mode bit
}

// SetMuted removes (or restores) a channel from the mix. Waveform history still records it.
func (a *APU) SetMuted(ch Channel, muted bool) {
	if ch < 0 || int(ch) >= NumChannels {
		return
	}
	a.muted[ch] = muted
}

func (a *APU) Muted(ch Channel) bool {
	if ch < 0 || int(ch) >= NumChannels {
		return false
	}
	return a.muted[ch]
}

// Channels returns a snapshot of every channel in Channel order.
func (a *APU) Channels() []ChannelState {
	out := make([]ChannelState, NumChannels)
	for i := range out {
		out[i] = a.ChannelState(Channel(i))
	}
	return out
}

func (a *APU) ChannelState(ch Channel) ChannelState {
	s := ChannelState{Channel: ch, Name: ch.String()}
	if ch < 0 || int(ch) >= NumChannels {
		return s
	}
	s.Muted = a.muted[ch]
	switch ch {
	case Pulse1, Pulse2:
		p := &a.pulse1
		if ch == Pulse2 {
			p = &a.pulse2
		}
		s.Enabled = !p.silenced()
		s.Period = int(p.period)
		s.Frequency = float64(cpuHz) / (16 * float64(p.period+1))
		s.Volume = int(p.env.volume())
		s.Duty = int(p.duty)
	case Triangle:
		t := &a.triangle
		s.Enabled = t.active()
		s.Period = int(t.period)
		s.Frequency = float64(cpuHz) / (32 * float64(t.period+1))
		if s.Enabled {
			s.Volume = 15
		}
	case Noise:
		n := &a.noise
		s.Enabled = n.enabled && n.length > 0
		s.Period = int(n.period)
		if n.period > 0 {
			s.Frequency = float64(cpuHz) / float64(n.period)
		}
		s.Volume = int(n.env.volume())
		if n.mode {
			s.Duty = 1
		}
	case DMC:
		d := &a.dmc
		s.Enabled = d.remaining > 0
		s.Period = int(dmcRates[d.rateIndex])
		s.Frequency = float64(cpuHz) / float64(dmcRates[d.rateIndex])
		s.Volume = int(d.level >> 3)
	}
	if !s.Enabled {
		s.Volume = 0
	}
	return s
}

// recordHistory stores unmuted levels so muted channels stay visible in scopes.
func (a *APU) recordHistory() {
	raw := [NumChannels]float32{
		float32(a.pulse1.output()) / 15,
		float32(a.pulse2.output()) / 15,
		float32(a.triangle.output()) / 15,
		float32(a.noise.output()) / 15,
		float32(a.dmc.output()) / 127,
	}
	for ch := range raw {
		a.history[ch][a.histPos] = raw[ch]
	}
	a.histPos = (a.histPos + 1) % historyLen
}

// Waveform copies up to len(dst) of the most recent normalized (0..1) output
// levels of ch into dst, oldest first, and returns the number written.
func (a *APU) Waveform(ch Channel, dst []float32) int {
	if ch < 0 || int(ch) >= NumChannels {
		return 0
	}
	n := len(dst)
	if n > historyLen {
		n = historyLen
	}
	start := a.histPos - n
	if start < 0 {
		start += historyLen
	}
	for i := 0; i < n; i++ {
		dst[i] = a.history[ch][(start+i)%historyLen]
	}
	return n
}
