// Package operation tracks node runs requested over HTTP. An Operation moves
// through a linear lifecycle:
//
//	pending → running → complete | failed.
//
// A complete operation carries the payload the node emitted, or none when the
// node reached no result (for example because the bucket does not exist).
package operation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomasbasham/gcsflow/internal/flow"
)

// Status represents the lifecycle state of an operation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
)

// Kind names the node an operation runs.
type Kind string

const (
	KindUpload       Kind = "upload"
	KindUploadStream Kind = "upload-stream"
	KindCreateBucket Kind = "create-bucket"
)

// Operation represents a single node run.
type Operation struct {
	ID        string       `json:"id"`
	Kind      Kind         `json:"kind"`
	Status    Status       `json:"status"`
	Message   flow.Message `json:"message"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Payload is the emitted result. Nil until the operation completes, and
	// nil afterwards if the node emitted nothing.
	Payload *bool `json:"payload"`

	// Error is non-empty if the operation reached StatusFailed.
	Error string `json:"error,omitempty"`
}

// Store is the interface for persisting and retrieving operations.
type Store interface {
	Create(kind Kind, msg flow.Message) (*Operation, error)
	Get(id string) (*Operation, error)
	MarkRunning(id string) error
	MarkComplete(id string, payload *bool) error
	MarkFailed(id string, err error) error
}

// MemoryStore is a concurrency-safe in-memory Store implementation.
type MemoryStore struct {
	mu  sync.RWMutex
	ops map[string]*Operation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ops: make(map[string]*Operation)}
}

func (s *MemoryStore) Create(kind Kind, msg flow.Message) (*Operation, error) {
	now := time.Now()
	op := &Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    StatusPending,
		Message:   msg,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.ops[op.ID] = op
	s.mu.Unlock()

	c := *op
	return &c, nil
}

func (s *MemoryStore) Get(id string) (*Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	op, ok := s.ops[id]
	if !ok {
		return nil, fmt.Errorf("operation %q not found", id)
	}
	// Return a copy to prevent callers from mutating internal state.
	c := *op
	if op.Payload != nil {
		p := *op.Payload
		c.Payload = &p
	}
	return &c, nil
}

func (s *MemoryStore) MarkRunning(id string) error {
	return s.update(id, func(op *Operation) {
		op.Status = StatusRunning
	})
}

func (s *MemoryStore) MarkComplete(id string, payload *bool) error {
	return s.update(id, func(op *Operation) {
		op.Status = StatusComplete
		if payload != nil {
			p := *payload
			op.Payload = &p
		}
	})
}

func (s *MemoryStore) MarkFailed(id string, err error) error {
	return s.update(id, func(op *Operation) {
		op.Status = StatusFailed
		op.Error = err.Error()
	})
}

func (s *MemoryStore) update(id string, fn func(*Operation)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.ops[id]
	if !ok {
		return fmt.Errorf("operation %q not found", id)
	}
	fn(op)
	op.UpdatedAt = time.Now()
	return nil
}
