package emu

import (
	"io"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
)

// Config contains settings that affect emulation behavior.
type Config struct {
	SampleRate int       // audio output rate in Hz
	BufferSize int       // samples per audio block
	Trace      io.Writer // log CPU instructions when non-nil
}

// Defaults fills zero values.
func (c *Config) Defaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = apu.DefaultSampleRate
	}
	if c.BufferSize <= 0 {
		c.BufferSize = apu.DefaultBufferSize
	}
}
