package testutils

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/papercomputeco/legalqa/pkg/vector"
)

// MockVectorDriver is an in-memory vector driver ranking by cosine distance.
type MockVectorDriver struct {
	mu sync.Mutex

	order     []string
	documents map[string]vector.Document

	// FailQuery causes Query to return vector.ErrConnection.
	FailQuery bool

	// AddBatches records the size of every Add call.
	AddBatches []int
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{documents: make(map[string]vector.Document)}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddBatches = append(m.AddBatches, len(docs))
	for _, doc := range docs {
		if _, ok := m.documents[doc.ID]; !ok {
			m.order = append(m.order, doc.ID)
		}
		m.documents[doc.ID] = doc
	}
	return nil
}

func cosineDistance(a, b []float32) float32 {
	if len(a) != len(b) {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}

func (m *MockVectorDriver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailQuery {
		return nil, errors.Join(vector.ErrConnection, errors.New("mock query failure"))
	}
	if topK <= 0 {
		topK = vector.DefaultTopK
	}

	results := make([]vector.QueryResult, 0, len(m.order))
	for _, id := range m.order {
		doc := m.documents[id]
		results = append(results, vector.QueryResult{Document: doc, Distance: cosineDistance(embedding, doc.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var docs []vector.Document
	for _, id := range ids {
		if doc, ok := m.documents[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.documents, id)
	}
	kept := m.order[:0]
	for _, id := range m.order {
		if _, ok := m.documents[id]; ok {
			kept = append(kept, id)
		}
	}
	m.order = kept
	return nil
}

// Len returns the number of stored documents.
func (m *MockVectorDriver) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.documents)
}

func (m *MockVectorDriver) Close() error {
	return nil
}

var _ vector.Driver = (*MockVectorDriver)(nil)
