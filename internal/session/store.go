package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a store holds no session under a name
var ErrNotFound = errors.New("session not found")

// Entry describes a stored session without its measurements
type Entry struct {
	Name           string
	ID             string
	SeriesFilename string
	SavedAt        time.Time
}

// Store keeps named session snapshots
type Store interface {
	// Put stores snap under name, replacing any previous one
	Put(ctx context.Context, name string, snap *Snapshot) error
	// Get returns the snapshot stored under name
	Get(ctx context.Context, name string) (*Snapshot, error)
	// List returns all stored sessions, newest first
	List(ctx context.Context) ([]Entry, error)
	Close() error
}

// FileStore keeps sessions as .dcmstate files in one directory
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store in dir, creating the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, strings.TrimSuffix(name, Extension)+Extension)
}

func (s *FileStore) Put(ctx context.Context, name string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Save(s.path(name), snap)
}

func (s *FileStore) Get(ctx context.Context, name string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	if !exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return Load(path)
}

func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(s.dir, "*"+Extension))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		snap, err := Load(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:           strings.TrimSuffix(filepath.Base(f), Extension),
			ID:             snap.ID,
			SeriesFilename: snap.SeriesFilename,
			SavedAt:        snap.SavedAt,
		})
	}
	sortEntries(entries)
	return entries, nil
}

func (s *FileStore) Close() error { return nil }

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SavedAt.Equal(entries[j].SavedAt) {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].SavedAt.After(entries[j].SavedAt)
	})
}
