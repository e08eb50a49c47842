package jobs

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a job ID is unknown or already cleaned up.
// Subscribing never creates a job, so a subscriber that races a finished and
// expired job gets this error instead of hanging on an empty channel.
var ErrNotFound = errors.New("job not found")

// mailboxCap bounds the per-job event channel. A worker emits well under
// this many events over its lifetime, so Publish never blocks.
const mailboxCap = 64

type job struct {
	events    chan Event
	createdAt time.Time
}

// Store is the in-memory job registry. Each job owns one bounded event
// mailbox, written only by its worker and drained by at most one subscriber.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*job
	ttl  time.Duration
}

// NewStore creates a job store. Jobs that are never drained are expired
// after ttl by a background janitor so finished-but-unread terminal events
// are retained for a grace period instead of leaking forever.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		jobs: make(map[string]*job),
		ttl:  ttl,
	}
	go s.janitor()
	return s
}

// Create allocates a new job and its progress mailbox, returning the job ID
func (s *Store) Create() string {
	id := uuid.NewString()

	s.mu.Lock()
	s.jobs[id] = &job{
		events:    make(chan Event, mailboxCap),
		createdAt: time.Now(),
	}
	s.mu.Unlock()

	return id
}

// Publish appends an event to a job's mailbox in FIFO order
func (s *Store) Publish(id string, ev Event) error {
	s.mu.Lock()
	j, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	// The mailbox capacity is sized well above the event count of one job,
	// so this send does not block the worker.
	j.events <- ev
	return nil
}

// Subscribe returns the event channel of a job. The channel is owned by a
// single subscriber; events are delivered at most once.
func (s *Store) Subscribe(id string) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return j.events, nil
}

// Remove discards a job's state. Called by the subscriber once a terminal
// event has been delivered.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

// Len returns the number of live jobs
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *Store) janitor() {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for id, j := range s.jobs {
			if now.Sub(j.createdAt) > s.ttl {
				delete(s.jobs, id)
				log.Printf("[JobStore] Expired undrained job %s", id)
			}
		}
		s.mu.Unlock()
	}
}
