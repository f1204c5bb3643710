package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
)

type record struct {
	mu   sync.Mutex
	cred entity.Credential
}

func (r *record) load() entity.Credential {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cred.Clone()
}

// CredentialStore maps credential ids to records.
//
// Single-record mutations hold the store read lock plus the record lock, so
// they serialize per id while other ids proceed. UpdateAll holds the store
// write lock for its whole duration.
type CredentialStore struct {
	mu      sync.RWMutex
	records map[int64]*record
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{records: map[int64]*record{}}
}

// Create stores c at revision 1 or later; an existing id is a conflict.
func (s *CredentialStore) Create(_ context.Context, c entity.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[c.ID]; ok {
		return goerror.ErrConflict
	}

	stored := c.Clone()
	stored.Revision = max(stored.Revision, 1)
	s.records[c.ID] = &record{cred: stored}
	return nil
}

func (s *CredentialStore) Get(_ context.Context, id int64) (entity.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return entity.Credential{}, goerror.ErrNotFound
	}
	return r.load(), nil
}

// Snapshot returns a point-in-time copy of every credential ordered by
// issuance then id.
func (s *CredentialStore) Snapshot(_ context.Context) []entity.Credential {
	s.mu.RLock()
	out := make([]entity.Credential, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.load())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, compare)
	return out
}

// Update applies fn to the record under its lock. When fn fails the record is
// left untouched.
func (s *CredentialStore) Update(_ context.Context, id int64, fn func(c *entity.Credential) error) (entity.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return entity.Credential{}, goerror.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.cred.Clone()
	if err := fn(&next); err != nil {
		return entity.Credential{}, err
	}
	next.ID = r.cred.ID
	next.Revision = r.cred.Revision + 1

	r.cred = next
	return next.Clone(), nil
}

// UpdateAll applies fn to every credential matching keep under the store
// write lock. Either every change is committed or none is.
func (s *CredentialStore) UpdateAll(_ context.Context, keep func(c entity.Credential) bool, fn func(c *entity.Credential) error) ([]entity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[int64]entity.Credential)
	for id, r := range s.records {
		if !keep(r.cred) {
			continue
		}

		next := r.cred.Clone()
		if err := fn(&next); err != nil {
			return nil, err
		}
		next.ID = id
		next.Revision = r.cred.Revision + 1
		staged[id] = next
	}

	out := make([]entity.Credential, 0, len(staged))
	for id, next := range staged {
		s.records[id].cred = next
		out = append(out, next.Clone())
	}

	slices.SortFunc(out, compare)
	return out, nil
}

// Delete removes the credential and returns its last state.
func (s *CredentialStore) Delete(_ context.Context, id int64) (entity.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return entity.Credential{}, goerror.ErrNotFound
	}

	delete(s.records, id)
	return r.cred.Clone(), nil
}

func (s *CredentialStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func compare(a, b entity.Credential) int {
	switch {
	case entity.Less(a, b):
		return -1
	case entity.Less(b, a):
		return 1
	default:
		return 0
	}
}
