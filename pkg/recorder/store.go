package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adminGCT4545/browserpilot/pkg/automation"
)

// storeFile mirrors the persisted layout: a single keyed map of sequence id
// to sequence record.
type storeFile struct {
	Sequences map[string]automation.Sequence `json:"browserActionSequences"`
}

// Store persists named action sequences to a JSON file. Sequences are
// independent of any live session: they survive daemon restarts and are
// only removed by explicit delete.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a sequence store at path. An empty path defaults to
// ~/.browserpilot/sequences.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".browserpilot", "sequences.json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &Store{path: path}, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Save persists a new sequence. The name must be non-empty and the action
// list non-empty; actions are copied so later buffer edits cannot mutate
// the stored record.
func (s *Store) Save(name string, actions []automation.RecordedAction) (*automation.Sequence, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("sequence name is required")
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("sequence must contain at least one action")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	seq := automation.Sequence{
		ID:      uuid.New().String(),
		Name:    name,
		Actions: append([]automation.RecordedAction(nil), actions...),
		Created: time.Now(),
	}

	data.Sequences[seq.ID] = seq
	if err := s.persist(data); err != nil {
		return nil, err
	}

	return &seq, nil
}

// List returns all stored sequences, oldest first.
func (s *Store) List() ([]automation.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]automation.Sequence, 0, len(data.Sequences))
	for _, seq := range data.Sequences {
		out = append(out, seq)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

// Get retrieves one sequence by id.
func (s *Store) Get(id string) (*automation.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, err
	}

	seq, ok := data.Sequences[id]
	if !ok {
		return nil, fmt.Errorf("sequence %q not found", id)
	}
	return &seq, nil
}

// Delete permanently removes a sequence.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := data.Sequences[id]; !ok {
		return fmt.Errorf("sequence %q not found", id)
	}

	delete(data.Sequences, id)
	return s.persist(data)
}

func (s *Store) load() (*storeFile, error) {
	data := &storeFile{Sequences: make(map[string]automation.Sequence)}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("failed to read sequence store: %w", err)
	}

	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse sequence store %s: %w", s.path, err)
	}
	if data.Sequences == nil {
		data.Sequences = make(map[string]automation.Sequence)
	}
	return data, nil
}

func (s *Store) persist(data *storeFile) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sequence store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write sequence store: %w", err)
	}
	return nil
}
