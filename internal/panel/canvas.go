package panel

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is an RGBA drawing surface backing a panel.
type Canvas struct {
	img *image.RGBA
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (c *Canvas) Image() *image.RGBA { return c.img }

// Pix returns the backing bytes, row-major RGBA with no padding.
func (c *Canvas) Pix() []byte { return c.img.Pix }

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *Canvas) Fill(col color.RGBA) { c.FillRect(c.img.Bounds(), col) }

func (c *Canvas) FillRect(r image.Rectangle, col color.RGBA) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Canvas) Set(x, y int, col color.RGBA) { c.img.SetRGBA(x, y, col) }

// Line draws with Bresenham's algorithm; pixels outside the canvas are clipped.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// LineHeight is the advance between text rows drawn with Text.
const LineHeight = 13

// Text draws s with its top-left corner at (x, y) in the 7x13 fixed font.
func (c *Canvas) Text(x, y int, s string, col color.RGBA) {
	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + basicfont.Face7x13.Ascent)},
	}
	d.DrawString(s)
}

// TextWidth returns the advance of s in pixels.
func TextWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Round()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
