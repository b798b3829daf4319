package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/legalqa/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ExchangeEvent

	// FailPublish causes Publish to return an error.
	FailPublish bool

	// PanicPublish makes Publish panic with this value when not nil.
	PanicPublish any

	Closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.ExchangeEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.PanicPublish != nil {
		panic(m.PanicPublish)
	}
	if m.FailPublish {
		return errors.New("mock publish failure")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events in order.
func (m *MockPublisher) Events() []*eventstream.ExchangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.ExchangeEvent(nil), m.events...)
}

func (m *MockPublisher) Close() error {
	m.Closed = true
	return nil
}

var _ eventstream.Publisher = (*MockPublisher)(nil)
