package ui

// Config contains window/input/audio related settings.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
	// Panels shows the APU window and piano roll beside the game.
	Panels bool
	// AudioBufferMs is the player's internal buffer, roughly.
	AudioBufferMs int
	// AutosaveFrames is how often battery RAM is written back, in frames.
	// Zero disables autosave; the save is still flushed on exit.
	AutosaveFrames int
	ROMsDir        string // starting directory of the Open ROM dialog
	ScreenshotDir  string
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "nesemu"
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.AudioBufferMs <= 0 {
		c.AudioBufferMs = 40
	}
	if c.AutosaveFrames < 0 {
		c.AutosaveFrames = 0
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "."
	}
}

// DefaultAutosaveFrames is ten seconds of NTSC frames.
const DefaultAutosaveFrames = 600
