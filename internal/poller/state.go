package poller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/meeting-twin/internal/logger"
)

// Record is the last processed fingerprint.
type Record struct {
	Fingerprint string    `yaml:"fingerprint"`
	SeenAt      time.Time `yaml:"seen_at"`
}

// StateStore keeps the last processed fingerprint.
type StateStore interface {
	Last() (Record, bool)
	Save(r Record) error
}

// MemoryStore keeps state in process memory only; it is lost on restart.
type MemoryStore struct {
	mu  sync.Mutex
	rec Record
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Last() (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec, s.set
}

func (s *MemoryStore) Save(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec, s.set = r, true
	return nil
}

// FileStore persists state as YAML so a restart does not reprocess the
// last handled content. The in-memory copy is updated even when the write
// fails. Records saved by another process sharing the file are picked up
// on the next Last; a version that cannot be read is logged and the last
// good record is kept.
type FileStore struct {
	mem    MemoryStore
	path   string
	logger logger.Logger

	mu      sync.Mutex
	modTime time.Time
}

// NewFileStore loads path if it exists.
func NewFileStore(path string, log logger.Logger) (*FileStore, error) {
	s := &FileStore{path: path, logger: log}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Last() (Record, bool) {
	if err := s.reload(); err != nil {
		s.logger.Warn(context.Background(), "Keeping last known poller state: %v", err)
	}
	return s.mem.Last()
}

func (s *FileStore) Save(r Record) error {
	_ = s.mem.Save(r)

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("encode poller state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write poller state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace poller state: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

// reload reads the file when it changed since the last read or write.
func (s *FileStore) reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat poller state: %w", err)
	}
	if !info.ModTime().After(s.modTime) {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read poller state: %w", err)
	}

	// a malformed version is reported once, not on every poll
	s.modTime = info.ModTime()

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parse poller state %s: %w", s.path, err)
	}
	if rec.Fingerprint != "" {
		_ = s.mem.Save(rec)
	}
	return nil
}
