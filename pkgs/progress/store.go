package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Store persists the full progress record under a fixed key per player.
// A missing or corrupt record is reported as absent, never as an error:
// callers fall back to the default state.
type Store interface {
	Load(ctx context.Context, playerAddr string) (State, bool, error)
	Save(ctx context.Context, playerAddr string, st State) error
}

// FileStore keeps one JSON record on disk. It is the single-player
// local store used by the CLI; the player address is folded into the
// filename so switching wallets does not clobber another record.
type FileStore struct {
	Dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create progress dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (fs *FileStore) path(playerAddr string) string {
	return filepath.Join(fs.Dir, fmt.Sprintf("progress-%s.json", playerAddr))
}

func (fs *FileStore) Load(_ context.Context, playerAddr string) (State, bool, error) {
	data, err := os.ReadFile(fs.path(playerAddr))
	if errors.Is(err, os.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("failed to read progress record: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		log.WithError(err).Warn("Corrupt progress record, falling back to defaults")
		return State{}, false, nil
	}

	return st, true, nil
}

func (fs *FileStore) Save(_ context.Context, playerAddr string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal progress record: %w", err)
	}

	// Write-then-rename so a crash mid-write never corrupts the record.
	tmp := fs.path(playerAddr) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write progress record: %w", err)
	}
	if err := os.Rename(tmp, fs.path(playerAddr)); err != nil {
		return fmt.Errorf("failed to replace progress record: %w", err)
	}

	return nil
}
