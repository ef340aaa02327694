package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

// State is the full persisted record for the task store: both collections,
// the freshness timestamp, and the sync configuration. Field names are stable
// for backward readability.
type State struct {
	Tasks         []model.Task `json:"tasks"`
	ArchivedTasks []model.Task `json:"archivedTasks"`
	LastUpdate    string       `json:"lastUpdate,omitempty"`
	GistID        string       `json:"gistId,omitempty"`
	Token         string       `json:"token,omitempty"`
}

// Envelope returns the sync envelope view of the state. The sync
// configuration never leaves the local record.
func (s *State) Envelope() model.Envelope {
	return model.Envelope{
		Tasks:         s.Tasks,
		ArchivedTasks: s.ArchivedTasks,
		LastUpdate:    s.LastUpdate,
	}
}

// Store persists a State as a single JSON file.
type Store struct {
	Path string
	mu   sync.Mutex
	log  *zap.SugaredLogger
}

func New(path string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{Path: path, log: log}
}

// Load reads the persisted state. It fails soft: a missing or malformed file
// yields an empty state so a corrupt record can never brick the app. Parse
// failures are logged, never returned.
func (s *Store) Load() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &State{}

	f, err := os.Open(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warnw("could not open local store, starting empty", "path", s.Path, "error", err)
		}
		return state
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(state); err != nil {
		s.log.Warnw("could not parse local store, starting empty", "path", s.Path, "error", err)
		return &State{}
	}
	return state
}

// Save overwrites the persisted record with the full current state. The write
// goes through a temp file and rename so a crash mid-write never leaves a
// truncated record behind.
func (s *Store) Save(state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmpPath := s.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
