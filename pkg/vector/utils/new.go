// Package vectorutils builds a vector.Driver from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/legalqa/pkg/vector"
	"github.com/papercomputeco/legalqa/pkg/vector/chroma"
	"github.com/papercomputeco/legalqa/pkg/vector/qdrant"
	"github.com/papercomputeco/legalqa/pkg/vector/sqlitevec"
)

const (
	ProviderSQLite = "sqlite"
	ProviderQdrant = "qdrant"
	ProviderChroma = "chroma"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// Target is a database path for sqlite and a server address otherwise.
	Target     string
	Collection string
	Dimensions uint
	Logger     *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case ProviderSQLite:
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderQdrant:
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:         o.Target,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.Collection,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("%w: %q", vector.ErrNotImplemented, o.ProviderType)
	}
}
