package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"
)

var menuItems = []string{
	"Resume",
	"Open ROM...",
	"Reset",
	"Toggle sound",
	"Save battery RAM",
	"Quit",
}

func (a *App) updateMenu() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && a.menuIdx > 0 {
		a.menuIdx--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && a.menuIdx < len(menuItems)-1 {
		a.menuIdx++
	}
	if !inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		return nil
	}
	a.showMenu = false
	switch a.menuIdx {
	case 1:
		a.openDialog()
	case 2:
		_ = a.host.Reset()
		a.toast("Reset")
	case 3:
		a.muted.Store(!a.muted.Load())
		if a.muted.Load() {
			a.toast("Sound off")
		} else {
			a.toast("Sound on")
		}
	case 4:
		if !a.host.HasSRAM() {
			a.toast("Cartridge has no battery RAM")
			break
		}
		a.flushSave()
		a.toast("Saved")
	case 5:
		return ebiten.Termination
	}
	return nil
}

func (a *App) drawMenu(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(a.w), float32(a.h), color.RGBA{0, 0, 0, 160}, false)
	ebitenutil.DebugPrintAt(screen, "Menu:", 10, 10)
	for i, s := range menuItems {
		prefix := "  "
		if i == a.menuIdx {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+s, 10, 24+i*14)
	}
}

// openDialog shows the native file picker off the game loop; Update picks
// up the chosen path.
func (a *App) openDialog() {
	go func() {
		path, err := dialog.File().
			Title("Open ROM").
			Filter("NES ROMs and archives", "nes", "zip", "7z", "rar", "gz").
			SetStartDir(a.cfg.ROMsDir).
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				a.log.Warn("file dialog", zap.Error(err))
			}
			return
		}
		select {
		case a.opened <- path:
		default:
		}
	}()
}
