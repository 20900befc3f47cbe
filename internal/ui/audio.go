package ui

import (
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// maxChunkFrames bounds one Read so the player never buffers far ahead.
const maxChunkFrames = 2048

// sampleStream implements io.Reader over mono samples pushed by the game
// loop, duplicating them into 16-bit little-endian stereo frames. The player
// reads from its own goroutine, so the stream keeps a private queue and never
// touches the host.
type sampleStream struct {
	mu      sync.Mutex
	pending []int16
	// queue bound in samples; older samples are dropped past it
	limit int
	muted *atomic.Bool
	// stats
	underruns int
	dropped   int
}

func newSampleStream(rate int, muted *atomic.Bool) *sampleStream {
	return &sampleStream{limit: rate / 4, muted: muted}
}

// push queues samples produced by the last Update.
func (s *sampleStream) push(samples []int16) {
	if len(samples) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, samples...)
	if over := len(s.pending) - s.limit; s.limit > 0 && over > 0 {
		s.pending = s.pending[:copy(s.pending, s.pending[over:])]
		s.dropped += over
	}
}

// take moves up to n queued samples into dst and returns them.
func (s *sampleStream) take(dst []int16, n int) []int16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n = min(n, len(s.pending))
	dst = append(dst[:0], s.pending[:n]...)
	s.pending = s.pending[:copy(s.pending, s.pending[n:])]
	return dst
}

func (s *sampleStream) Read(p []byte) (int, error) {
	if len(p) < 4 {
		clear(p)
		return len(p), nil
	}
	frames := min(len(p)/4, maxChunkFrames)

	var chunk []int16
	deadline := time.Now().Add(10 * time.Millisecond)
	for {
		chunk = s.take(chunk, frames)
		if len(chunk) > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if len(chunk) == 0 {
		// keep the device fed with a short silence rather than blocking
		n := min(frames, 256) * 4
		clear(p[:n])
		s.underruns++
		return n, nil
	}

	silent := s.muted != nil && s.muted.Load()
	for i, v := range chunk {
		if silent {
			v = 0
		}
		binary.LittleEndian.PutUint16(p[i*4:], uint16(v))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(v))
	}
	return len(chunk) * 4, nil
}

func (a *App) startAudio() error {
	rate := a.host.AudioSampleRate()
	a.audioCtx = audio.NewContext(rate)
	a.stream = newSampleStream(rate, &a.muted)
	p, err := a.audioCtx.NewPlayer(a.stream)
	if err != nil {
		a.stream = nil
		return err
	}
	p.SetBufferSize(time.Duration(a.cfg.AudioBufferMs) * time.Millisecond)
	p.Play()
	a.player = p
	return nil
}

// pumpAudio hands samples from the frames just stepped to the player.
func (a *App) pumpAudio() {
	samples := a.host.ConsumeAudioSamples()
	if a.stream != nil {
		a.stream.push(samples)
	}
}
