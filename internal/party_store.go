package internal

import (
	"context"
	"sync"
)

// PartyStore persists party records. Exactly one backend is chosen at
// startup; there is no fallback between backends.
type PartyStore interface {
	// Put inserts a party and returns the stored record with its initial
	// version.
	Put(ctx context.Context, p Party) (Party, error)
	// Get returns ErrPartyNotFound for unknown ids.
	Get(ctx context.Context, id string) (Party, error)
	// CompareAndSwapMembers replaces the member list if the stored version
	// still equals expectedVersion, recomputing status and bumping the
	// version. Returns ErrVersionConflict when it lost to a concurrent
	// update.
	CompareAndSwapMembers(ctx context.Context, id string, expectedVersion int64, members []string) (Party, error)
	// List returns a snapshot of all parties.
	List(ctx context.Context) ([]Party, error)
}

// MemoryPartyStore keeps parties in a mutex-guarded map. Safe for
// concurrent use; insertion order is preserved for listings.
type MemoryPartyStore struct {
	mu      sync.RWMutex
	parties map[string]Party
	order   []string
}

var _ PartyStore = (*MemoryPartyStore)(nil)

func NewMemoryPartyStore() *MemoryPartyStore {
	return &MemoryPartyStore{parties: make(map[string]Party)}
}

func (s *MemoryPartyStore) Put(_ context.Context, p Party) (Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.Version = 1
	if _, exists := s.parties[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.parties[p.ID] = cloneParty(p)
	return p, nil
}

func (s *MemoryPartyStore) Get(_ context.Context, id string) (Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.parties[id]
	if !ok {
		return Party{}, ErrPartyNotFound
	}
	return cloneParty(p), nil
}

func (s *MemoryPartyStore) CompareAndSwapMembers(_ context.Context, id string, expectedVersion int64, members []string) (Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[id]
	if !ok {
		return Party{}, ErrPartyNotFound
	}
	if p.Version != expectedVersion {
		return Party{}, ErrVersionConflict
	}

	p.Members = append([]string(nil), members...)
	p.RecomputeStatus()
	p.Version++
	s.parties[id] = cloneParty(p)
	return p, nil
}

func (s *MemoryPartyStore) List(_ context.Context) ([]Party, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Party, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneParty(s.parties[id]))
	}
	return out, nil
}

func cloneParty(p Party) Party {
	p.Members = append([]string(nil), p.Members...)
	if p.GameContext != nil {
		ctx := make(map[string]any, len(p.GameContext))
		for k, v := range p.GameContext {
			ctx[k] = v
		}
		p.GameContext = ctx
	}
	return p
}
