package savestore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestKey(t *testing.T) {
	// crc32("123456789") is the standard check value
	if got := Key([]byte("123456789")); got != "cbf43926" {
		t.Fatalf("got %s want cbf43926", got)
	}
}

func TestSaveLoad(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "saves"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rom := []byte("rom image")
	if data, err := s.Load(rom); err != nil || data != nil {
		t.Fatalf("empty store got %v, %v", data, err)
	}
	if err := s.Save(rom, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(rom, []byte{4, 5}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(rom)
	if err != nil || !bytes.Equal(got, []byte{4, 5}) {
		t.Fatalf("Load got % X, %v", got, err)
	}
	// another rom has its own slot
	if other, _ := s.Load([]byte("other")); other != nil {
		t.Fatalf("unrelated rom got a save")
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 1 || entries[0].Name() != Key(rom)+".sav" {
		t.Fatalf("directory holds %v", entries)
	}
}
