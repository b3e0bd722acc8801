package highscore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore persists a single local high score, for the terminal host.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileRecord struct {
	HighScore int       `json:"high_score"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored high score. A missing file is a score of 0.
func (f *FileStore) Load() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileStore) load() (int, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return 0, fmt.Errorf("decode high score %s: %w", f.path, err)
	}
	return rec.HighScore, nil
}

// Record stores score if it beats the saved one and reports whether it did.
func (f *FileStore) Record(score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.load()
	if err != nil {
		// unreadable file: overwrite it rather than lose the new score
		current = 0
	}
	if score <= current {
		return false, nil
	}

	b, err := json.Marshal(fileRecord{HighScore: score, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return false, err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create high score dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return false, fmt.Errorf("write high score: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return false, fmt.Errorf("replace high score: %w", err)
	}
	return true, nil
}
