package courses

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store persists the course roster as a single JSON document
// {"courses": [...]}. Every mutation re-reads the whole file, changes one
// entry, and writes the whole file back, so edits made externally between
// polls are not lost. There is no locking against concurrent external
// writers; the file is assumed to be owned by a single coursewatch process.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the roster file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the roster file path.
func (s *Store) Path() string { return s.path }

type rosterFile struct {
	Courses []Course `json:"courses"`
}

// Load reads the full roster. Order is preserved.
func (s *Store) Load() ([]Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Course, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var roster rosterFile
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to decode roster file %s: %w", s.path, err)
	}
	return roster.Courses, nil
}

// Save writes the full roster atomically (temp file + rename).
func (s *Store) Save(cs []Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cs)
}

func (s *Store) save(cs []Course) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create roster directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp roster file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rosterFile{Courses: cs}); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode roster: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp roster file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp roster file: %w", err)
	}

	return nil
}

// Update re-reads the roster, applies mutate to the course with the given id,
// and writes the roster back. Unknown ids are an error.
func (s *Store) Update(id string, mutate func(*Course)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for i := range cs {
		if cs[i].ID == id {
			mutate(&cs[i])
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("course %q not found in roster", id)
	}

	return s.save(cs)
}

// MarkBooked deactivates a course after a successful booking and records the
// booking instant.
func (s *Store) MarkBooked(id string, at time.Time) error {
	return s.Update(id, func(c *Course) {
		c.Active = false
		booked := at
		c.BookingDate = &booked
	})
}

// Reactivate re-arms a previously booked course and clears its booking
// bookkeeping.
func (s *Store) Reactivate(id string) error {
	return s.Update(id, func(c *Course) {
		c.Active = true
		c.BookingDate = nil
	})
}
