package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/compositor"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/host"
	"github.com/FabianRolfMatthiasNoll/NESEmulator/internal/testrom"
)

func TestPreviewExtremes(t *testing.T) {
	black := make([]byte, compositor.BufferSize)
	white := bytes.Repeat([]byte{255}, compositor.BufferSize)
	if got := preview(black, 4, 2); got != "    \n    " {
		t.Fatalf("black preview %q", got)
	}
	if got := preview(white, 4, 2); got != "@@@@\n@@@@" {
		t.Fatalf("white preview %q", got)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		v, max, w int
		want      string
	}{
		{0, 15, 3, "···"},
		{15, 15, 3, "███"},
		{20, 15, 2, "██"},
		{5, 0, 2, "··"},
	}
	for _, tt := range tests {
		if got := bar(tt.v, tt.max, tt.w); got != tt.want {
			t.Errorf("bar(%d,%d,%d) got %q want %q", tt.v, tt.max, tt.w, got, tt.want)
		}
	}
}

func TestReport(t *testing.T) {
	h, err := host.New(host.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.LoadCartridge(testrom.Minimal()); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := report(&out, h, "test.nes", 2); err != nil {
		t.Fatalf("report: %v", err)
	}
	if h.FrameCount() < 1 {
		t.Fatalf("frames not run")
	}
	for _, want := range []string{"test.nes: 2 frames", "Pulse 1", "DMC"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, out.String())
		}
	}
}
