// Command nesmon runs a ROM without a window and shows the console state in
// the terminal: channel activity, notes and a coarse picture of the screen.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/host"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/romloader"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM (.nes or archive)")
	frames := flag.Int("frames", 600, "frames to run when stdout is not a terminal")
	logPath := flag.String("log", "", "write logs to this file (the terminal is taken by the UI)")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "-rom is required")
		os.Exit(2)
	}

	log := zap.NewNop()
	if *logPath != "" {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{*logPath}
		l, err := cfg.Build()
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			os.Exit(1)
		}
		log = l
	}
	defer log.Sync()

	img, err := romloader.Load(*romPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	h, err := host.New(host.Config{Logger: log})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := h.LoadCartridge(img.Data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := report(os.Stdout, h, img.Name, *frames); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	m := newModel(h, img.Name)
	if w, hgt, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		m.width, m.height = w, hgt
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
