// Package embeddingutils builds an embeddings.Embedder from configuration.
package embeddingutils

import (
	"fmt"

	"github.com/papercomputeco/legalqa/pkg/embeddings"
	"github.com/papercomputeco/legalqa/pkg/embeddings/ollama"
)

// ProviderOllama is the only embedding provider so far.
const ProviderOllama = "ollama"

type NewEmbedderOpts struct {
	ProviderType string

	// TargetURL is the provider base URL; empty uses the provider default.
	TargetURL string
	Model     string
}

// NewEmbedder returns the embedder named by o.ProviderType.
func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case ProviderOllama:
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q (supported: %s)", o.ProviderType, ProviderOllama)
	}
}
