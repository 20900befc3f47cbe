// Package savestore persists battery-backed cartridge RAM, one file per ROM
// keyed by the CRC32 of the ROM image.
package savestore

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const ext = ".sav"

// Store is a directory of save files.
type Store struct {
	dir string
	log *zap.Logger
}

// DefaultDir is <user config dir>/nesemu/saves.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "nesemu", "saves"), nil
}

// Open creates dir if needed. A nil logger disables logging.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, log: logger.Named("savestore")}, nil
}

func (s *Store) Dir() string { return s.dir }

// Key is the CRC32 of rom as eight lowercase hex digits.
func Key(rom []byte) string { return fmt.Sprintf("%08x", crc32.ChecksumIEEE(rom)) }

// Path returns the save file used for rom.
func (s *Store) Path(rom []byte) string { return filepath.Join(s.dir, Key(rom)+ext) }

// Load returns the saved RAM for rom, or nil with no error if nothing was saved.
func (s *Store) Load(rom []byte) ([]byte, error) {
	path := s.Path(rom)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read save %s: %w", filepath.Base(path), err)
	}
	s.log.Debug("loaded save", zap.String("path", path), zap.Int("bytes", len(data)))
	return data, nil
}

// Save writes data for rom through a temp file and rename, so a crash never
// leaves a truncated save behind.
func (s *Store) Save(rom, data []byte) error {
	path := s.Path(rom)
	tmp, err := os.CreateTemp(s.dir, Key(rom)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace save: %w", err)
	}
	s.log.Debug("wrote save", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
