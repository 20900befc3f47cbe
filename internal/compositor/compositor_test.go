package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testScreen() []byte {
	s := make([]byte, Width*Height)
	for i := range s {
		s[i] = byte(i*7) & 0x3F
	}
	return s
}

func TestComposeOpaqueIsPalette(t *testing.T) {
	screen := testScreen()
	dst := make([]byte, BufferSize)
	if err := Compose(dst, screen, OpaqueOverlay()); err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for i, idx := range screen {
		want := PaletteColor(idx)
		got := color.RGBA{dst[i*4], dst[i*4+1], dst[i*4+2], dst[i*4+3]}
		if got != want {
			t.Fatalf("pixel %d (index %02X): got %v want %v", i, idx, got, want)
		}
	}
}

func TestComposeMasksIndex(t *testing.T) {
	screen := make([]byte, Width*Height)
	screen[0] = 0xC1 // upper bits carry emphasis/garbage
	dst := make([]byte, BufferSize)
	if err := Compose(dst, screen, nil); err != nil {
		t.Fatal(err)
	}
	if want := PaletteColor(0x01); dst[0] != want.R || dst[1] != want.G || dst[2] != want.B {
		t.Fatalf("got %v want %v", dst[:4], want)
	}
}

func TestComposeMultiplies(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	ov := NewOverlay(img)
	screen := make([]byte, Width*Height)
	for i := range screen {
		screen[i] = 0x20 // FF FE FF
	}
	dst := make([]byte, BufferSize)
	if err := Compose(dst, screen, ov); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 128 || dst[1] != 127 || dst[2] != 128 || dst[3] != 255 {
		t.Fatalf("got %v want [128 127 128 255]", dst[:4])
	}
}

func TestComposeRejectsWrongSize(t *testing.T) {
	for _, n := range []int{0, BufferSize - 1, BufferSize + 4} {
		dst := bytes.Repeat([]byte{0xAA}, n)
		err := Compose(dst, testScreen(), nil)
		if !errors.Is(err, ErrBufferSize) {
			t.Fatalf("len %d: got %v want ErrBufferSize", n, err)
		}
		for i, b := range dst {
			if b != 0xAA {
				t.Fatalf("len %d: byte %d written on error", n, i)
			}
		}
	}
}

func TestComposeIdempotent(t *testing.T) {
	ov, err := DefaultOverlay()
	if err != nil {
		t.Fatal(err)
	}
	screen := testScreen()
	a := make([]byte, BufferSize)
	b := make([]byte, BufferSize)
	Compose(a, screen, ov)
	Compose(b, screen, ov)
	Compose(b, screen, ov)
	if !bytes.Equal(a, b) {
		t.Fatalf("repeated composition differs")
	}
}

func TestDefaultOverlayScanlines(t *testing.T) {
	ov, err := DefaultOverlay()
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := DefaultOverlay(); again != ov {
		t.Fatalf("default overlay decoded twice")
	}
	if c := ov.At(10, 0); c.R != 255 {
		t.Fatalf("even row got %v want full intensity", c)
	}
	if c := ov.At(10, 1); c.R >= 255 {
		t.Fatalf("odd row got %v want darkened", c)
	}
}

func TestLoadOverlayScales(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 2, 2))
	small.Set(0, 0, color.RGBA{255, 0, 0, 255})
	small.Set(1, 0, color.RGBA{0, 255, 0, 255})
	small.Set(0, 1, color.RGBA{0, 0, 255, 255})
	small.Set(1, 1, color.RGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, small); err != nil {
		t.Fatal(err)
	}
	ov, err := LoadOverlay(&buf)
	if err != nil {
		t.Fatalf("LoadOverlay: %v", err)
	}
	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, color.NRGBA{255, 0, 0, 255}},
		{255, 0, color.NRGBA{0, 255, 0, 255}},
		{0, 239, color.NRGBA{0, 0, 255, 255}},
		{200, 200, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := ov.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d,%d) got %v want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestTranslucentOverlayKeepsColour(t *testing.T) {
	for _, size := range []image.Point{{Width, Height}, {4, 4}} {
		img := image.NewNRGBA(image.Rectangle{Max: size})
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 200, 0, 128
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		ov, err := LoadOverlay(&buf)
		if err != nil {
			t.Fatalf("LoadOverlay: %v", err)
		}
		want := color.NRGBA{255, 200, 0, 128}
		if got := ov.At(0, 0); got != want {
			t.Fatalf("%v: At got %v want %v", size, got, want)
		}

		screen := make([]byte, Width*Height)
		screen[0] = 0x30
		dst := make([]byte, BufferSize)
		if err := Compose(dst, screen, ov); err != nil {
			t.Fatal(err)
		}
		c := PaletteColor(0x30)
		if dst[0] != c.R || dst[1] != byte(uint16(c.G)*200/255) || dst[2] != 0 || dst[3] != 0xFF {
			t.Fatalf("%v: composed % X from %v", size, dst[:4], c)
		}
	}
}

func TestNewOverlayZeroAlphaKeepsColour(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 0})
	if got := NewOverlay(img).At(128, 120); got != (color.NRGBA{10, 20, 30, 0}) {
		t.Fatalf("At got %v", got)
	}
}

func TestLoadOverlayRejectsGarbage(t *testing.T) {
	if _, err := LoadOverlay(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatalf("expected decode error")
	}
}
