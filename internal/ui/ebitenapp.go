// Package ui is the desktop front end: one window showing the game screen
// and the host's panels, with keyboard, gamepad, mouse and audio wired to a
// host.Context.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/compositor"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/host"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/romloader"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/savestore"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/ui/layout"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
)

// surface is a region of the window backed by a texture.
type surface struct {
	layout.Region
	pix []byte
	tex *ebiten.Image
}

type App struct {
	cfg   Config
	host  *host.Context
	saves *savestore.Store
	log   *zap.Logger

	surfaces []surface
	regions  []layout.Region
	w, h     int
	gamepads []ebiten.GamepadID

	rom      []byte
	romName  string
	lastSave []byte
	frames   int

	paused bool
	fast   bool
	muted  atomic.Bool

	showMenu bool
	menuIdx  int
	toastMsg string
	toastEnd time.Time
	opened   chan string

	audioCtx *audio.Context
	player   *audio.Player
	stream   *sampleStream
}

// NewApp sizes the window for h's panels. saves may be nil to disable
// persistence; logger may be nil.
func NewApp(cfg Config, h *host.Context, saves *savestore.Store, logger *zap.Logger) *App {
	cfg.Defaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, host: h, saves: saves, log: logger.Named("ui"), opened: make(chan string, 1)}

	var panels []host.PanelInfo
	if cfg.Panels {
		panels = h.Panels()
	}
	a.regions, a.w, a.h = layout.Arrange(panels)
	for _, r := range a.regions {
		a.surfaces = append(a.surfaces, surface{
			Region: r,
			pix:    make([]byte, r.Rect.Dx()*r.Rect.Dy()*4),
			tex:    ebiten.NewImage(r.Rect.Dx(), r.Rect.Dy()),
		})
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(a.w*cfg.Scale, a.h*cfg.Scale)
	return a
}

// Run blocks until the window closes and flushes battery RAM on the way out.
func (a *App) Run() error {
	if err := a.startAudio(); err != nil {
		a.log.Warn("audio unavailable", zap.Error(err))
	}
	err := ebiten.RunGame(a)
	a.flushSave()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// LoadFile loads a ROM or archive from disk along with its battery save.
func (a *App) LoadFile(path string) error {
	img, err := romloader.Load(path)
	if err != nil {
		return err
	}
	a.flushSave()

	var sram []byte
	if a.saves != nil {
		if sram, err = a.saves.Load(img.Data); err != nil {
			a.log.Warn("ignoring unreadable save", zap.Error(err))
			sram = nil
		}
	}
	err = a.host.LoadCartridgeWithSRAM(img.Data, sram)
	if errors.Is(err, host.ErrSRAMSize) {
		a.log.Warn("save does not fit this cartridge, starting without it", zap.Error(err))
		err = a.host.LoadCartridge(img.Data)
	}
	if err != nil {
		return err
	}
	a.rom, a.romName = img.Data, img.Name
	a.lastSave = a.host.SRAM()
	a.frames = 0
	ebiten.SetWindowTitle(a.cfg.Title + " - " + img.Name)
	a.log.Info("loaded ROM",
		zap.String("name", img.Name),
		zap.String("container", string(img.Container)),
		zap.String("save", savestore.Key(img.Data)))
	return nil
}

// flushSave writes battery RAM when it changed since the last write.
func (a *App) flushSave() {
	if a.saves == nil || a.rom == nil || !a.host.HasSRAM() {
		return
	}
	cur := a.host.SRAM()
	if bytes.Equal(cur, a.lastSave) {
		return
	}
	if err := a.saves.Save(a.rom, cur); err != nil {
		a.log.Error("autosave failed", zap.Error(err))
		return
	}
	a.lastSave = cur
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastEnd = time.Now().Add(2 * time.Second)
}

func (a *App) Update() error {
	select {
	case path := <-a.opened:
		if err := a.LoadFile(path); err != nil {
			a.toast("Load failed: " + err.Error())
		} else {
			a.toast("Loaded " + a.romName)
		}
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		a.showMenu = !a.showMenu
		a.menuIdx = 0
	}
	if a.showMenu {
		return a.updateMenu()
	}

	a.pollInput()
	a.handleClicks()

	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		a.openDialog()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.muted.Store(!a.muted.Load())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		_ = a.host.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if name, err := a.saveScreenshot(); err != nil {
			a.toast("Screenshot failed: " + err.Error())
		} else {
			a.toast("Saved " + name)
		}
	}
	a.fast = ebiten.IsKeyPressed(ebiten.KeyTab)

	steps := 0
	switch {
	case a.paused && inpututil.IsKeyJustPressed(ebiten.KeyN):
		steps = 1
	case a.paused:
	case a.fast:
		steps = 4
	default:
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if err := a.host.StepFrame(); err != nil {
			return err
		}
		a.frames++
		if a.cfg.AutosaveFrames > 0 && a.frames%a.cfg.AutosaveFrames == 0 {
			a.flushSave()
		}
	}
	a.pumpAudio()
	return nil
}

// handleClicks forwards left clicks on a panel in panel-local coordinates.
func (a *App) handleClicks() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	r, local, ok := layout.Hit(a.regions, x, y)
	if !ok || r.Name == "" {
		return
	}
	if err := a.host.PanelClick(r.Name, local.X, local.Y); err != nil {
		a.log.Warn("panel click", zap.String("panel", r.Name), zap.Error(err))
	}
}

func (a *App) Draw(screen *ebiten.Image) {
	for i := range a.surfaces {
		s := &a.surfaces[i]
		var err error
		if s.Name == "" {
			err = a.host.DrawScreen(s.pix)
		} else {
			err = a.host.DrawPanel(s.Name, s.pix)
		}
		if err != nil {
			a.log.Error("draw", zap.String("panel", s.Name), zap.Error(err))
			continue
		}
		s.tex.WritePixels(s.pix)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(s.Rect.Min.X), float64(s.Rect.Min.Y))
		screen.DrawImage(s.tex, op)
	}

	if a.showMenu {
		a.drawMenu(screen)
	} else if a.romName == "" {
		ebitenutil.DebugPrintAt(screen, "O: open ROM  Esc: menu", 8, 8)
	}
	if a.paused && !a.showMenu {
		ebitenutil.DebugPrintAt(screen, "PAUSED (N: step)", 8, compositor.Height-20)
	}
	if a.toastMsg != "" && time.Now().Before(a.toastEnd) {
		ebitenutil.DebugPrintAt(screen, a.toastMsg, 8, compositor.Height-36)
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return a.w, a.h }

func (a *App) saveScreenshot() (string, error) {
	pix := make([]byte, compositor.BufferSize)
	if err := a.host.DrawScreen(pix); err != nil {
		return "", err
	}
	name := fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	f, err := os.Create(filepath.Join(a.cfg.ScreenshotDir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, compositor.Image(pix))
}
