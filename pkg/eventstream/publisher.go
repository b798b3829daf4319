// Package eventstream publishes answered exchanges to an event stream
// backend so downstream consumers can follow usage without reading history.
package eventstream

import (
	"context"
	"errors"
)

// ErrNilEvent is returned by Publish when handed a nil event.
var ErrNilEvent = errors.New("nil exchange event")

// Publisher sends exchange events. A failed Publish is logged by the caller
// and never fails the question it describes.
type Publisher interface {
	Publish(ctx context.Context, event *ExchangeEvent) error
	Close() error
}
