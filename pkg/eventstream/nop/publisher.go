// Package nop discards exchange events. It backs events.provider "nop" and
// services built without a publisher.
package nop

import (
	"context"

	"github.com/papercomputeco/legalqa/pkg/eventstream"
)

type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish drops event. A nil event is still rejected so callers see the same
// contract as the kafka publisher.
func (*Publisher) Publish(_ context.Context, event *eventstream.ExchangeEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

func (*Publisher) Close() error { return nil }

var _ eventstream.Publisher = (*Publisher)(nil)
