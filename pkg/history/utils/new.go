// Package historyutils builds history drivers from configuration.
package historyutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/legalqa/pkg/history"
	"github.com/papercomputeco/legalqa/pkg/history/inmemory"
	"github.com/papercomputeco/legalqa/pkg/history/postgres"
	"github.com/papercomputeco/legalqa/pkg/history/sqlite"
)

type NewDriverOpts struct {
	// ProviderType is one of "memory", "sqlite" or "postgres".
	ProviderType string
	SQLitePath   string
	PostgresDSN  string
}

func NewDriver(ctx context.Context, o *NewDriverOpts) (history.Driver, error) {
	switch o.ProviderType {
	case "", "memory":
		return inmemory.NewDriver(), nil
	case "sqlite":
		if o.SQLitePath == "" {
			return nil, errors.New("sqlite history provider requires a database path")
		}
		return sqlite.NewDriver(o.SQLitePath)
	case "postgres":
		if o.PostgresDSN == "" {
			return nil, errors.New("postgres history provider requires a connection string")
		}
		return postgres.NewDriver(ctx, o.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported history provider: %s", o.ProviderType)
	}
}
