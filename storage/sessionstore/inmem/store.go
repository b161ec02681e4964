// Package inmemstore keeps session records in process memory. Meant for DEV
// and tests; records do not survive a gateway restart.
package inmemstore

import (
	"context"
	"sync"
	"time"

	"github.com/unipress/portal/core/session"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]session.Record
}

var (
	_ session.Store  = (*Store)(nil)
	_ session.Purger = (*Store)(nil)
)

func New() *Store {
	return &Store{records: make(map[string]session.Record)}
}

func (s *Store) Save(_ context.Context, rec session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SID] = rec
	return nil
}

func (s *Store) Get(_ context.Context, sid string) (session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sid]
	if !ok {
		return session.Record{}, session.ErrRecordNotFound
	}
	return rec, nil
}

func (s *Store) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sid)
	return nil
}

func (s *Store) PurgeExpired(_ context.Context) (int, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for sid, rec := range s.records {
		if now.After(rec.ExpiresAt) {
			delete(s.records, sid)
			n++
		}
	}
	return n, nil
}

// Len reports how many records are held; used by tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
