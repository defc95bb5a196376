package tags

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryStore is a Source held in memory, optionally persisted as YAML.
type MemoryStore struct {
	mu    sync.RWMutex
	byTag map[string]map[int64]struct{}
}

var _ Source = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byTag: make(map[string]map[int64]struct{})}
}

// LoadFile reads a store saved by SaveFile. A missing file yields an empty store.
func LoadFile(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading tags: %w", err)
	}

	var raw map[string][]int64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing tags: %w", err)
	}
	for tag, ids := range raw {
		for _, id := range ids {
			s.add(tag, id)
		}
	}
	return s, nil
}

// SaveFile writes the store as a YAML map of tag to account IDs.
func (s *MemoryStore) SaveFile(path string) error {
	s.mu.RLock()
	raw := make(map[string][]int64, len(s.byTag))
	for tag, ids := range s.byTag {
		raw[tag] = slices.Sorted(maps.Keys(ids))
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tags: %w", err)
	}
	return nil
}

func (s *MemoryStore) TaggedWith(_ context.Context, tag string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.byTag[tag])), nil
}

func (s *MemoryStore) TagsInUse(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.byTag)), nil
}

func (s *MemoryStore) TagsOf(_ context.Context, accountID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for tag, ids := range s.byTag {
		if _, ok := ids[accountID]; ok {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (s *MemoryStore) Tag(_ context.Context, accountID int64, tags ...string) error {
	if err := validTags(tags); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		s.add(tag, accountID)
	}
	return nil
}

func (s *MemoryStore) Untag(_ context.Context, accountID int64, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tag := range tags {
		ids := s.byTag[tag]
		delete(ids, accountID)
		if len(ids) == 0 {
			delete(s.byTag, tag)
		}
	}
	return nil
}

func (s *MemoryStore) add(tag string, id int64) {
	ids, ok := s.byTag[tag]
	if !ok {
		ids = make(map[int64]struct{})
		s.byTag[tag] = ids
	}
	ids[id] = struct{}{}
}

func validTags(tags []string) error {
	for _, t := range tags {
		if strings.TrimSpace(t) == "" || strings.ContainsAny(t, " \t\n") {
			return fmt.Errorf("invalid tag %q", t)
		}
	}
	return nil
}
