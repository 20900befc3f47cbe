package panel

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/event"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/state"
)

type stub struct{ name string }

func (s stub) Name() string                                      { return s.name }
func (s stub) Size() (int, int)                                  { return 1, 1 }
func (s stub) HandleEvent(state.View, event.Event) []event.Event { return nil }
func (s stub) ActiveCanvas() []byte                              { return make([]byte, 4) }

func TestRegistryOrderAndLookup(t *testing.T) {
	r, err := NewRegistry(stub{"b"}, stub{"a"}, stub{"c"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	var names []string
	for _, p := range r.Panels() {
		names = append(names, p.Name())
	}
	if len(names) != 3 || names[0] != "b" || names[1] != "a" || names[2] != "c" {
		t.Fatalf("order got %v", names)
	}
	if p, ok := r.Lookup("a"); !ok || p.Name() != "a" {
		t.Fatalf("lookup a failed")
	}
	if _, ok := r.Lookup("zzz"); ok {
		t.Fatalf("lookup of unknown panel succeeded")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(stub{"x"}, stub{"x"})
	if !errors.Is(err, ErrDuplicatePanel) {
		t.Fatalf("got %v want ErrDuplicatePanel", err)
	}
}

func TestAddressing(t *testing.T) {
	if !RenderRequested(event.RequestRender{}, "a") || !RenderRequested(event.RequestRender{Panel: "a"}, "a") {
		t.Fatalf("render request not recognised")
	}
	if RenderRequested(event.RequestRender{Panel: "b"}, "a") || RenderRequested(event.Update{}, "a") {
		t.Fatalf("render request misaddressed")
	}
	if _, ok := ClickFor(event.MouseClick{Panel: "b", X: 1}, "a"); ok {
		t.Fatalf("click for b accepted by a")
	}
	if mc, ok := ClickFor(event.MouseClick{Panel: "a", X: 5, Y: 6}, "a"); !ok || mc.X != 5 || mc.Y != 6 {
		t.Fatalf("click lost: %+v %v", mc, ok)
	}
}

func TestCanvasDrawing(t *testing.T) {
	c := NewCanvas(16, 16)
	red := color.RGBA{255, 0, 0, 255}
	c.Fill(color.RGBA{0, 0, 0, 255})
	c.FillRect(image.Rect(0, 0, 2, 2), red)
	if got := c.Image().RGBAAt(1, 1); got != red {
		t.Fatalf("fill rect got %v", got)
	}
	c.Line(0, 15, 15, 15, red)
	if got := c.Image().RGBAAt(8, 15); got != red {
		t.Fatalf("line pixel got %v", got)
	}
	c.Line(-5, -5, 20, 20, red) // clipped, must not panic
	if len(c.Pix()) != 16*16*4 {
		t.Fatalf("pix length %d", len(c.Pix()))
	}
	if TextWidth("abc") != 21 {
		t.Fatalf("text width got %d want 21", TextWidth("abc"))
	}
	c.Text(0, 0, "A", red)
}
