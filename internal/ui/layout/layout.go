// Package layout places the game screen and panels in one window.
package layout

import (
	"image"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/compositor"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/host"
)

// Region is a rectangle of the window owned by the game screen or a panel.
// An empty Name is the game screen.
type Region struct {
	Name string
	Rect image.Rectangle
}

// Arrange stacks the screen and every landscape panel in a left column and
// the portrait panels in a right column.
func Arrange(panels []host.PanelInfo) (regions []Region, w, h int) {
	regions = append(regions, Region{Rect: image.Rect(0, 0, compositor.Width, compositor.Height)})
	leftW, leftY := compositor.Width, compositor.Height
	var right []host.PanelInfo
	for _, p := range panels {
		if p.Width < p.Height {
			right = append(right, p)
			continue
		}
		regions = append(regions, Region{p.Name, image.Rect(0, leftY, p.Width, leftY+p.Height)})
		leftY += p.Height
		leftW = max(leftW, p.Width)
	}
	x, rightW := leftW, 0
	for _, p := range right {
		regions = append(regions, Region{p.Name, image.Rect(x, 0, x+p.Width, p.Height)})
		x += p.Width
		rightW += p.Width
		h = max(h, p.Height)
	}
	return regions, leftW + rightW, max(h, leftY)
}

// Hit returns the region under (x, y) and the point in its local coordinates.
func Hit(regions []Region, x, y int) (Region, image.Point, bool) {
	pt := image.Pt(x, y)
	for _, r := range regions {
		if pt.In(r.Rect) {
			return r, pt.Sub(r.Rect.Min), true
		}
	}
	return Region{}, image.Point{}, false
}
