package vector

import "errors"

var (
	// ErrNotFound is returned when a document is not found in the vector store.
	ErrNotFound = errors.New("document not found")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrDimensions is returned when an embedding does not match the store's
	// configured size.
	ErrDimensions = errors.New("embedding dimensions mismatch")

	// ErrNotImplemented is returned for an unknown provider name.
	ErrNotImplemented = errors.New("vector store provider not implemented")
)
