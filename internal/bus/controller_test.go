package bus

import "testing"

func TestController_ShiftOrder(t *testing.T) {
	b := New(nil)
	b.Pads[0].Set(ButtonA | ButtonStart | ButtonRight)
	b.Write(0x4016, 1)
	b.Write(0x4016, 0)
	want := []byte{1, 0, 0, 1, 0, 0, 0, 1}
	for i, w := range want {
		if got := b.Read(0x4016) & 1; got != w {
			t.Fatalf("bit %d got %d want %d", i, got, w)
		}
	}
	if got := b.Read(0x4016) & 1; got != 1 {
		t.Fatalf("after eight reads got %d want 1", got)
	}
}

func TestController_StrobeHeldReturnsA(t *testing.T) {
	var c Controller
	c.Write(1)
	c.Set(ButtonA)
	for i := 0; i < 3; i++ {
		if c.Read() != 1 {
			t.Fatalf("strobe held should keep returning A")
		}
	}
}

func TestController_SecondPort(t *testing.T) {
	b := New(nil)
	b.Pads[1].Set(ButtonB)
	b.Write(0x4016, 1)
	b.Write(0x4016, 0)
	b.Read(0x4017)
	if got := b.Read(0x4017) & 1; got != 1 {
		t.Fatalf("player 2 B got %d want 1", got)
	}
}
