package panel

import (
	"image/color"
	"math"
	"strconv"
)

// ChannelColors gives each APU channel a stable colour across panels.
var ChannelColors = [...]color.RGBA{
	{0xE8, 0x4A, 0x5F, 0xFF}, // pulse 1
	{0xFF, 0xA6, 0x3D, 0xFF}, // pulse 2
	{0x4A, 0xC2, 0xE8, 0xFF}, // triangle
	{0xC8, 0xC8, 0xC8, 0xFF}, // noise
	{0x9B, 0x6B, 0xE8, 0xFF}, // dmc
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MIDINote maps a frequency to the nearest MIDI note number (A4 = 69 = 440 Hz).
func MIDINote(freq float64) (int, bool) {
	if freq <= 0 || math.IsInf(freq, 0) || math.IsNaN(freq) {
		return 0, false
	}
	n := int(math.Round(69 + 12*math.Log2(freq/440)))
	if n < 0 || n > 127 {
		return 0, false
	}
	return n, true
}

// NoteName formats a MIDI note as e.g. "A4"; out-of-range notes render as "--".
func NoteName(note int) string {
	if note < 0 || note > 127 {
		return "--"
	}
	octave := note/12 - 1
	return noteNames[note%12] + strconv.Itoa(octave)
}
