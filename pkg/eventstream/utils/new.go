// Package eventstreamutils builds an eventstream.Publisher from configuration.
package eventstreamutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/legalqa/pkg/eventstream"
	"github.com/papercomputeco/legalqa/pkg/eventstream/kafka"
	"github.com/papercomputeco/legalqa/pkg/eventstream/nop"
)

const (
	ProviderNop   = "nop"
	ProviderKafka = "kafka"
)

type NewPublisherOpts struct {
	ProviderType string
	Brokers      []string
	Topic        string
	Logger       *slog.Logger
}

// NewPublisher returns the nop publisher for an empty provider.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "", ProviderNop:
		return nop.NewPublisher(), nil
	case ProviderKafka:
		return kafka.NewPublisher(kafka.Config{Brokers: o.Brokers, Topic: o.Topic}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported events provider: %q", o.ProviderType)
	}
}
