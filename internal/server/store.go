package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/exsanitize-go/pkg/exsanitize/models"
)

// ResultStore keeps recent results in memory so their workbooks can be
// downloaded after the upload request returns. It holds at most max
// entries, evicting the oldest first, and drops entries older than ttl.
type ResultStore struct {
	mu      sync.RWMutex
	entries map[string]storedResult
	order   []string
	max     int
	ttl     time.Duration
	now     func() time.Time
}

type storedResult struct {
	result  *models.Result
	created time.Time
}

// NewResultStore creates a store bounded by maxEntries and ttl.
func NewResultStore(maxEntries int, ttl time.Duration) *ResultStore {
	return &ResultStore{
		entries: make(map[string]storedResult),
		max:     maxEntries,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores r and returns its id.
func (s *ResultStore) Put(r *models.Result) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	for len(s.order) >= s.max && len(s.order) > 0 {
		delete(s.entries, s.order[0])
		s.order = s.order[1:]
	}
	s.entries[id] = storedResult{result: r, created: s.now()}
	s.order = append(s.order, id)
	return id
}

// Get returns the result stored under id, if present and not expired.
func (s *ResultStore) Get(id string) (*models.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || s.now().Sub(e.created) > s.ttl {
		return nil, false
	}
	return e.result, true
}

// Len returns the number of stored results, including expired ones not yet
// evicted.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *ResultStore) expireLocked() {
	now := s.now()
	i := 0
	for ; i < len(s.order); i++ {
		if now.Sub(s.entries[s.order[i]].created) <= s.ttl {
			break
		}
		delete(s.entries, s.order[i])
	}
	s.order = s.order[i:]
}
