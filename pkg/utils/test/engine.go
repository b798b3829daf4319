package testutils

import (
	"context"

	"github.com/papercomputeco/legalqa/pkg/engine"
	"github.com/papercomputeco/legalqa/pkg/lexical"
)

// MockEngine returns fixed results, or fails the way it is told to.
type MockEngine struct {
	Results []lexical.Result
	Err     error

	// LimitedErr fails only calls with k > 0, the capped source lookups.
	LimitedErr error

	// Panic makes Retrieve panic with this value when not nil.
	Panic any

	// LastK is the k of the latest Retrieve call.
	LastK int
}

func (m *MockEngine) Name() string {
	return "mock"
}

func (m *MockEngine) Retrieve(_ context.Context, _ string, k int) ([]lexical.Result, error) {
	m.LastK = k
	if m.Panic != nil {
		panic(m.Panic)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if k > 0 && m.LimitedErr != nil {
		return nil, m.LimitedErr
	}
	if k > 0 && len(m.Results) > k {
		return m.Results[:k], nil
	}
	return m.Results, nil
}

var _ engine.Engine = (*MockEngine)(nil)
