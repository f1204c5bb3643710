package memory

import (
	"context"
	"iter"
	"sync"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
)

// AuditLog is an append-only, insertion-ordered list of access attempts.
type AuditLog struct {
	mu      sync.RWMutex
	seq     uint64
	entries []entity.AccessAttempt
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Append assigns the next sequence number and stores the attempt.
func (l *AuditLog) Append(_ context.Context, a entity.AccessAttempt) entity.AccessAttempt {
	if a.PrincipalID != nil {
		id := *a.PrincipalID
		a.PrincipalID = &id
	}

	l.mu.Lock()
	l.seq++
	a.Seq = l.seq
	l.entries = append(l.entries, a)
	l.mu.Unlock()

	return a
}

// Attempts yields entries matching filter oldest first. The sequence sees the
// log as of the moment iteration starts and can be ranged over again.
func (l *AuditLog) Attempts(filter entity.OutcomeFilter) iter.Seq[entity.AccessAttempt] {
	return func(yield func(entity.AccessAttempt) bool) {
		l.mu.RLock()
		entries := l.entries
		l.mu.RUnlock()

		for _, a := range entries {
			if !filter.Match(a.Outcome) {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// Latest yields entries matching filter newest first.
func (l *AuditLog) Latest(filter entity.OutcomeFilter) iter.Seq[entity.AccessAttempt] {
	return func(yield func(entity.AccessAttempt) bool) {
		l.mu.RLock()
		entries := l.entries
		l.mu.RUnlock()

		for i := len(entries) - 1; i >= 0; i-- {
			if !filter.Match(entries[i].Outcome) {
				continue
			}
			if !yield(entries[i]) {
				return
			}
		}
	}
}

func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
