package journal

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("journal: store is closed")

// Store persists events per stream. Implementations must assign
// contiguous sequence numbers starting at 1 within each stream.
type Store interface {
	// Append persists events to a stream and stamps their Seq and
	// Stream fields. It returns the last assigned sequence number.
	Append(ctx context.Context, stream string, events ...*Event) (uint64, error)

	// Read returns all events of a stream with Seq >= fromSeq, in
	// sequence order. fromSeq zero reads the whole stream.
	Read(ctx context.Context, stream string, fromSeq uint64) ([]*Event, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-process Store. Useful for tests and for systems
// that do not need durable records.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]*Event
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]*Event)}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, stream string, events ...*Event) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	seq := uint64(len(s.streams[stream]))
	for _, e := range events {
		seq++
		e.Seq = seq
		e.Stream = stream
		s.streams[stream] = append(s.streams[stream], e)
	}
	return seq, nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, stream string, fromSeq uint64) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	all := s.streams[stream]
	var out []*Event
	for _, e := range all {
		if e.Seq >= fromSeq {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
