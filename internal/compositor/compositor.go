// Package compositor turns the PPU's indexed framebuffer into RGBA pixels,
// blending an overlay texture over the palette colours.
package compositor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"sync"

	xdraw "golang.org/x/image/draw"
)

const (
	Width      = 256
	Height     = 240
	BufferSize = Width * Height * 4
)

var ErrBufferSize = errors.New("pixel buffer has the wrong size")

// NTSCPalette is the 2C02 master palette, 64 RGB triples.
var NTSCPalette = [64 * 3]byte{
	0x66, 0x66, 0x66, 0x00, 0x2A, 0x88, 0x14, 0x12, 0xA7, 0x3B, 0x00, 0xA4,
	0x5C, 0x00, 0x7E, 0x6E, 0x00, 0x40, 0x6C, 0x06, 0x00, 0x56, 0x1D, 0x00,
	0x33, 0x35, 0x00, 0x0B, 0x48, 0x00, 0x00, 0x52, 0x00, 0x00, 0x4F, 0x08,
	0x00, 0x40, 0x4D, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	0xAD, 0xAD, 0xAD, 0x15, 0x5F, 0xD9, 0x42, 0x40, 0xFF, 0x75, 0x27, 0xFE,
	0xA0, 0x1A, 0xCC, 0xB7, 0x1E, 0x7B, 0xB5, 0x31, 0x20, 0x99, 0x4E, 0x00,
	0x6B, 0x6D, 0x00, 0x38, 0x87, 0x00, 0x0C, 0x93, 0x00, 0x00, 0x8F, 0x32,
	0x00, 0x7C, 0x8D, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	0xFF, 0xFE, 0xFF, 0x64, 0xB0, 0xFF, 0x92, 0x90, 0xFF, 0xC6, 0x76, 0xFF,
	0xF3, 0x6A, 0xFF, 0xFE, 0x6E, 0xCC, 0xFE, 0x81, 0x70, 0xEA, 0x9E, 0x22,
	0xBC, 0xBE, 0x00, 0x88, 0xD8, 0x00, 0x5C, 0xE4, 0x30, 0x45, 0xE0, 0x82,
	0x48, 0xCD, 0xDE, 0x4F, 0x4F, 0x4F, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	0xFF, 0xFE, 0xFF, 0xC0, 0xDF, 0xFF, 0xD3, 0xD2, 0xFF, 0xE8, 0xC8, 0xFF,
	0xFB, 0xC2, 0xFF, 0xFE, 0xC4, 0xEA, 0xFE, 0xCC, 0xC5, 0xF7, 0xD8, 0xA5,
	0xE4, 0xE5, 0x94, 0xCF, 0xEF, 0x96, 0xBD, 0xF4, 0xAB, 0xB3, 0xF3, 0xCC,
	0xB5, 0xEB, 0xF2, 0xB8, 0xB8, 0xB8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// PaletteColor returns the RGB colour of a palette index (low 6 bits).
func PaletteColor(index byte) color.RGBA {
	p := int(index&0x3F) * 3
	return color.RGBA{NTSCPalette[p], NTSCPalette[p+1], NTSCPalette[p+2], 0xFF}
}

// Overlay is an immutable 256x240 texture. Its RGB channels scale the palette
// colour of the pixel underneath; its alpha is ignored. Texels are stored
// non-premultiplied.
type Overlay struct {
	pix []byte
}

//go:embed assets/overlay.png
var overlayPNG []byte

var (
	defaultOnce    sync.Once
	defaultOverlay *Overlay
	defaultErr     error

	opaqueOnce    sync.Once
	opaqueOverlay *Overlay
)

// DefaultOverlay returns the built-in scanline texture. It is decoded on first
// use and shared afterwards.
func DefaultOverlay() (*Overlay, error) {
	defaultOnce.Do(func() {
		defaultOverlay, defaultErr = LoadOverlay(bytes.NewReader(overlayPNG))
		if defaultErr != nil {
			defaultErr = fmt.Errorf("decode built-in overlay: %w", defaultErr)
		}
	})
	return defaultOverlay, defaultErr
}

// OpaqueOverlay leaves palette colours untouched.
func OpaqueOverlay() *Overlay {
	opaqueOnce.Do(func() {
		pix := make([]byte, BufferSize)
		for i := range pix {
			pix[i] = 0xFF
		}
		opaqueOverlay = &Overlay{pix: pix}
	})
	return opaqueOverlay
}

// LoadOverlay decodes an image and scales it to 256x240 if needed.
func LoadOverlay(r io.Reader) (*Overlay, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return NewOverlay(img), nil
}

// NewOverlay copies img into an overlay, nearest-neighbour scaled to 256x240.
func NewOverlay(img image.Image) *Overlay {
	src := straight(img)
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	if src.Rect.Dx() == Width && src.Rect.Dy() == Height {
		xdraw.Draw(dst, dst.Bounds(), src, src.Rect.Min, xdraw.Src)
	} else {
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Rect, xdraw.Src, nil)
	}
	return &Overlay{pix: dst.Pix}
}

// straight returns the non-premultiplied pixels of img behind an RGBA header.
// RGBA to RGBA copies and nearest-neighbour scales move bytes unchanged, so
// translucent texels keep their full colour.
func straight(img image.Image) *image.RGBA {
	n, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		n = image.NewNRGBA(b)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				n.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
			}
		}
	}
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}

// At returns the overlay texel at (x, y).
func (o *Overlay) At(x, y int) color.NRGBA {
	i := (y*Width + x) * 4
	return color.NRGBA{o.pix[i], o.pix[i+1], o.pix[i+2], o.pix[i+3]}
}

// Compose writes the RGBA image of screen (256*240 palette indices) into dst.
// Each channel is base*overlay/255 and alpha is always 255. dst must be
// exactly BufferSize bytes; on error nothing is written. A nil overlay means
// OpaqueOverlay.
func Compose(dst, screen []byte, ov *Overlay) error {
	if len(dst) != BufferSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBufferSize, len(dst), BufferSize)
	}
	if len(screen) < Width*Height {
		return fmt.Errorf("%w: screen has %d pixels, want %d", ErrBufferSize, len(screen), Width*Height)
	}
	if ov == nil {
		ov = OpaqueOverlay()
	}
	for i := 0; i < Width*Height; i++ {
		p := int(screen[i]&0x3F) * 3
		o := ov.pix[i*4 : i*4+3 : i*4+3]
		d := dst[i*4 : i*4+4 : i*4+4]
		d[0] = byte(uint16(NTSCPalette[p]) * uint16(o[0]) / 255)
		d[1] = byte(uint16(NTSCPalette[p+1]) * uint16(o[1]) / 255)
		d[2] = byte(uint16(NTSCPalette[p+2]) * uint16(o[2]) / 255)
		d[3] = 0xFF
	}
	return nil
}

// Image wraps a composed buffer as an image without copying.
func Image(buf []byte) *image.RGBA {
	return &image.RGBA{Pix: buf, Stride: Width * 4, Rect: image.Rect(0, 0, Width, Height)}
}
