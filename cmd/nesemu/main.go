package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/crc32"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/cart"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/compositor"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/host"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/romloader"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/savestore"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/ui"
	"go.uber.org/zap"
)

type CLIFlags struct {
	ROMPath string
	Scale   int
	Title   string
	Verbose bool
	Panels  bool
	Atomic  bool
	Overlay string // PNG overlay replacing the built-in scanlines
	NoScan  bool   // disable the overlay entirely
	SaveRAM bool
	SaveDir string

	// headless
	Headless bool
	Frames   int
	PNGOut   string
	Expect   string // expected framebuffer CRC32 hex (e.g., "1a2b3c4d")
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.nes, or a zip/7z/rar/gz archive holding one)")
	flag.IntVar(&f.Scale, "scale", 2, "window scale")
	flag.StringVar(&f.Title, "title", "nesemu", "window title")
	flag.BoolVar(&f.Verbose, "v", false, "development logging")
	flag.BoolVar(&f.Panels, "panels", true, "show the APU window and piano roll")
	flag.BoolVar(&f.Atomic, "atomic", false, "step whole frames instead of scanline events")
	flag.StringVar(&f.Overlay, "overlay", "", "overlay image blended over the screen")
	flag.BoolVar(&f.NoScan, "noscanlines", false, "draw plain palette colours")
	flag.BoolVar(&f.SaveRAM, "save", true, "persist battery RAM")
	flag.StringVar(&f.SaveDir, "savedir", "", "battery RAM directory (default: user config dir)")

	flag.BoolVar(&f.Headless, "headless", false, "run without a window")
	flag.IntVar(&f.Frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.PNGOut, "outpng", "", "write last framebuffer to PNG at path")
	flag.StringVar(&f.Expect, "expect", "", "assert framebuffer CRC32 (hex)")
	flag.Parse()
	return f
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func overlay(f CLIFlags) (*compositor.Overlay, error) {
	switch {
	case f.NoScan:
		return compositor.OpaqueOverlay(), nil
	case f.Overlay != "":
		r, err := os.Open(f.Overlay)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return compositor.LoadOverlay(r)
	}
	return nil, nil
}

func openSaves(f CLIFlags, log *zap.Logger) (*savestore.Store, error) {
	if !f.SaveRAM {
		return nil, nil
	}
	dir := f.SaveDir
	if dir == "" {
		d, err := savestore.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return savestore.Open(dir, log)
}

func runHeadless(h *host.Context, frames int, pngPath, expectCRC string, log *zap.Logger) error {
	if frames <= 0 {
		frames = 1
	}

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := h.StepFrame(); err != nil {
			return err
		}
		h.ConsumeAudioSamples()
	}
	dur := time.Since(start)

	fb := make([]byte, compositor.BufferSize)
	if err := h.DrawScreen(fb); err != nil {
		return err
	}
	crc := crc32.ChecksumIEEE(fb)
	log.Info("headless run",
		zap.Int("frames", frames),
		zap.Duration("elapsed", dur.Truncate(time.Millisecond)),
		zap.Float64("fps", float64(frames)/dur.Seconds()),
		zap.String("fb_crc32", fmt.Sprintf("%08x", crc)))

	if pngPath != "" {
		if err := writePNG(fb, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Info("wrote screenshot", zap.String("path", pngPath))
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		if got := fmt.Sprintf("%08x", crc); got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

func writePNG(pix []byte, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, compositor.Image(pix))
}

func main() {
	f := parseFlags()
	log, err := newLogger(f.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ov, err := overlay(f)
	if err != nil {
		log.Fatal("load overlay", zap.Error(err))
	}
	h, err := host.New(host.Config{AtomicFrameStep: f.Atomic, Overlay: ov, Logger: log})
	if err != nil {
		log.Fatal("create host", zap.Error(err))
	}
	saves, err := openSaves(f, log)
	if err != nil {
		log.Warn("battery saves disabled", zap.Error(err))
	}

	if f.Headless {
		if f.ROMPath == "" {
			log.Fatal("-rom is required with -headless")
		}
		img, err := romloader.Load(f.ROMPath)
		if err != nil {
			log.Fatal("read ROM", zap.Error(err))
		}
		if hdr, err := cart.ParseHeader(img.Data); err == nil {
			log.Info("ROM", zap.String("name", img.Name), zap.String("mapper", hdr.MapperStr),
				zap.Int("prg_banks", hdr.PRGBanks), zap.Int("chr_banks", hdr.CHRBanks), zap.Bool("battery", hdr.Battery))
		}
		var sram []byte
		if saves != nil {
			sram, _ = saves.Load(img.Data)
		}
		err = h.LoadCartridgeWithSRAM(img.Data, sram)
		if errors.Is(err, host.ErrSRAMSize) {
			log.Warn("save does not fit this cartridge, starting without it", zap.Error(err))
			err = h.LoadCartridge(img.Data)
		}
		if err != nil {
			log.Fatal("load cartridge", zap.Error(err))
		}
		if err := runHeadless(h, f.Frames, f.PNGOut, f.Expect, log); err != nil {
			log.Fatal("headless", zap.Error(err))
		}
		if saves != nil && h.HasSRAM() {
			if err := saves.Save(img.Data, h.SRAM()); err != nil {
				log.Error("write save", zap.Error(err))
			}
		}
		return
	}

	app := ui.NewApp(ui.Config{
		Title:          f.Title,
		Scale:          f.Scale,
		Panels:         f.Panels,
		AutosaveFrames: ui.DefaultAutosaveFrames,
	}, h, saves, log)
	if f.ROMPath != "" {
		if err := app.LoadFile(f.ROMPath); err != nil {
			log.Error("load ROM", zap.String("path", f.ROMPath), zap.Error(err))
		}
	}
	if err := app.Run(); err != nil {
		log.Fatal("ui", zap.Error(err))
	}
}
