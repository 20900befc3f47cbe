package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/apu"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/compositor"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/host"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/panel"
)

const frameInterval = time.Second / 60

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	screenStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))
)

type keyMap struct {
	Pause key.Binding
	Step  key.Binding
	Reset key.Binding
	Mute  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Step, k.Reset, k.Mute, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Pause: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
	Step:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "step frame")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Mute:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "mute channel")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	host   *host.Context
	name   string
	help   help.Model
	pix    []byte
	paused bool
	err    error

	width, height int

	fps       float64
	lastTick  time.Time
	frameTime time.Duration
}

func newModel(h *host.Context, name string) *model {
	return &model{host: h, name: name, help: help.New(), pix: make([]byte, compositor.BufferSize)}
}

func (m *model) Init() tea.Cmd { return tick() }

func (m *model) step() {
	start := time.Now()
	if err := m.host.StepFrame(); err != nil {
		m.err = err
		return
	}
	m.frameTime = time.Since(start)
	// nobody plays the samples; drop them so the queue stays bounded
	m.host.ConsumeAudioSamples()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, keys.Step):
			if m.paused {
				m.step()
			}
		case key.Matches(msg, keys.Reset):
			m.err = m.host.Reset()
		case key.Matches(msg, keys.Mute):
			ch := apu.Channel(msg.String()[0] - '1')
			m.err = m.host.ToggleChannelMute(ch)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tickMsg:
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			if dt := now.Sub(m.lastTick).Seconds(); dt > 0 {
				m.fps = 0.9*m.fps + 0.1/dt
			}
		}
		m.lastTick = now
		if !m.paused {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nesmon " + m.name))
	b.WriteString("\n\n")

	status := fmt.Sprintf("frame %d  scanline %3d  %5.1f fps  %s/frame",
		m.host.FrameCount(), m.host.Scanline(), m.fps, m.frameTime.Truncate(time.Microsecond))
	if m.paused {
		status += "  PAUSED"
	}
	b.WriteString(labelStyle.Render(status))
	b.WriteString("\n\n")

	cols, rows := previewSize(m.width, m.height)
	if err := m.host.DrawScreen(m.pix); err == nil {
		screen := screenStyle.Render(preview(m.pix, cols, rows))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, screen, "  ", channelTable(m.host.Channels())))
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

// previewSize picks the largest preview that leaves room for the channel
// table and the chrome around it.
func previewSize(w, h int) (cols, rows int) {
	cols, rows = 64, 24
	if w > 0 {
		cols = min(max((w-48)/2*2, 16), 128)
	}
	if h > 0 {
		rows = min(max(h-10, 8), 60)
	}
	return cols, rows
}

const ramp = " .:-=+*#%@"

// preview renders the RGBA screen as ASCII art, averaging luminance per cell.
func preview(pix []byte, cols, rows int) string {
	var b strings.Builder
	for r := 0; r < rows; r++ {
		y0, y1 := r*compositor.Height/rows, (r+1)*compositor.Height/rows
		for c := 0; c < cols; c++ {
			x0, x1 := c*compositor.Width/cols, (c+1)*compositor.Width/cols
			var sum, n int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					i := (y*compositor.Width + x) * 4
					sum += (299*int(pix[i]) + 587*int(pix[i+1]) + 114*int(pix[i+2])) / 1000
					n++
				}
			}
			lum := 0
			if n > 0 {
				lum = sum / n
			}
			b.WriteByte(ramp[lum*(len(ramp)-1)/255])
		}
		if r < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func bar(v, maxV, width int) string {
	n := 0
	if maxV > 0 {
		n = min(v, maxV) * width / maxV
	}
	return strings.Repeat("█", n) + strings.Repeat("·", width-n)
}

func channelTable(states []apu.ChannelState) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-3s %-9s %-5s %9s  %-16s", "#", "channel", "note", "freq", "volume")))
	for i, s := range states {
		note := "--"
		if n, ok := panel.MIDINote(s.Frequency); ok && s.Enabled {
			note = panel.NoteName(n)
		}
		freq := "-"
		if s.Frequency > 0 {
			freq = fmt.Sprintf("%.1fHz", s.Frequency)
		}
		vol := s.Volume
		if !s.Enabled {
			vol = 0
		}
		line := fmt.Sprintf("%-3d %-9s %-5s %9s  %s", i+1, s.Name, note, freq, bar(vol, 15, 15))
		if s.Muted {
			line = mutedStyle.Render(line + " muted")
		}
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// report is the non-interactive mode: run frames and print a summary.
func report(w io.Writer, h *host.Context, name string, frames int) error {
	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := h.StepFrame(); err != nil {
			return err
		}
		h.ConsumeAudioSamples()
	}
	elapsed := time.Since(start)
	pix := make([]byte, compositor.BufferSize)
	if err := h.DrawScreen(pix); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d frames in %s\n\n", name, frames, elapsed.Truncate(time.Millisecond))
	fmt.Fprintln(w, preview(pix, 64, 24))
	fmt.Fprintln(w)
	fmt.Fprintln(w, channelTable(h.Channels()))
	return nil
}
