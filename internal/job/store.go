// Package job keeps batch runs and their cancellation hooks in memory for
// a host application embedding the pipeline.
package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store manages runs in memory.
type Store struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	cancels map[string]context.CancelFunc
}

// NewStore creates a new run store.
func NewStore() *Store {
	return &Store{
		runs:    make(map[string]*Run),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Create registers a new run and returns its ID.
func (s *Store) Create(r *Run) string {
	r.ID = uuid.New().String()
	r.Status = StatusQueued

	s.mu.Lock()
	s.runs[r.ID] = r
	s.mu.Unlock()
	return r.ID
}

// Get retrieves a run by ID.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return r, nil
}

// UpdateStatus updates a run's status and stamps start/finish times.
func (s *Store) UpdateStatus(id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("run not found: %s", id)
	}

	r.Status = status
	now := time.Now()

	switch status {
	case StatusRunning:
		if r.StartedAt == nil {
			r.StartedAt = &now
		}
	case StatusSucceeded, StatusFailed, StatusCanceled:
		if r.FinishedAt == nil {
			r.FinishedAt = &now
		}
	}

	return nil
}

// SetTotal records the input row count once it is known.
func (s *Store) SetTotal(id string, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.runs[id]; ok {
		r.RowsTotal = total
	}
}

// UpdateProgress updates the rendered/failed row counters.
func (s *Store) UpdateProgress(id string, rendered, failed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.runs[id]; ok {
		r.RowsRendered = rendered
		r.RowsFailed = failed
	}
}

// UpdateError records a run's last error message.
func (s *Store) UpdateError(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return
	}

	if err != nil {
		r.LastError = err.Error()
	} else {
		r.LastError = ""
	}
}

// SetCancel registers a cancel function for a run.
func (s *Store) SetCancel(id string, cf context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("run not found: %s", id)
	}

	s.cancels[id] = cf
	return nil
}

// ClearCancel removes the cancel function for a run.
func (s *Store) ClearCancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cancels, id)
}

// Cancel cancels a run. Cancellation is cooperative: the orchestrator
// checks its context between rows, so a cancel takes effect at the next
// row boundary.
func (s *Store) Cancel(id string) error {
	var cf context.CancelFunc

	s.mu.Lock()
	r, ok := s.runs[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("run not found: %s", id)
	}

	if r.Status == StatusSucceeded || r.Status == StatusFailed || r.Status == StatusCanceled {
		s.mu.Unlock()
		return fmt.Errorf("run already finished: %s", r.Status)
	}

	if cancelFunc, exists := s.cancels[id]; exists {
		cf = cancelFunc
	}

	r.Status = StatusCanceled
	now := time.Now()
	r.FinishedAt = &now
	s.mu.Unlock()

	// Call cancel function outside of lock.
	if cf != nil {
		cf()
	}

	return nil
}
