// Package inmemory provides a history.Driver held in process memory.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/legalqa/pkg/history"
)

// Driver implements history.Driver using a slice guarded by a RWMutex.
type Driver struct {
	// mu serializes appends so sequence numbers are assigned without gaps and
	// lets readers share access.
	mu sync.RWMutex

	entries []history.Entry

	// lastID is the last assigned sequence number. It survives Clear.
	lastID int64
}

// NewDriver creates an empty in-memory history.
func NewDriver() *Driver {
	return &Driver{}
}

// Append records an exchange under the write lock.
func (d *Driver) Append(_ context.Context, question, answer string) (*history.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastID++
	e := history.Entry{
		ID:        d.lastID,
		Question:  question,
		Answer:    answer,
		Timestamp: history.Now(),
	}
	d.entries = append(d.entries, e)

	return &e, nil
}

// List returns copies of the last limit entries, oldest first.
func (d *Driver) List(_ context.Context, limit int) ([]*history.Entry, error) {
	if limit <= 0 {
		return []*history.Entry{}, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	start := max(0, len(d.entries)-limit)
	out := make([]*history.Entry, 0, len(d.entries)-start)
	for _, e := range d.entries[start:] {
		out = append(out, &e)
	}
	return out, nil
}

// Clear discards every entry.
func (d *Driver) Clear(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = nil
	return nil
}

// Count returns the number of stored entries.
func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.entries), nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
