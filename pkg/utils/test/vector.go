package testutils

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/papercomputeco/mentor/pkg/vector"
)

// MockVectorDriver is an in-memory vector driver ranking by cosine
// similarity. Errors can be injected per operation.
type MockVectorDriver struct {
	mu    sync.Mutex
	order []string
	docs  map[string]vector.Document

	FailAdd    error
	FailQuery  error
	FailDelete error
	FailList   error

	// Queries counts Query calls.
	Queries int
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		docs: make(map[string]vector.Document),
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAdd != nil {
		return m.FailAdd
	}

	for _, doc := range docs {
		if _, ok := m.docs[doc.ID]; !ok {
			m.order = append(m.order, doc.ID)
		}
		m.docs[doc.ID] = doc
	}
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries++
	if m.FailQuery != nil {
		return nil, m.FailQuery
	}

	results := make([]vector.QueryResult, 0, len(m.order))
	for _, id := range m.order {
		doc := m.docs[id]
		results = append(results, vector.QueryResult{
			Document: doc,
			Score:    cosine(embedding, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var docs []vector.Document
	for _, id := range ids {
		if doc, ok := m.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}

	for _, id := range ids {
		delete(m.docs, id)
	}
	m.order = slices.DeleteFunc(m.order, func(id string) bool {
		_, ok := m.docs[id]
		return !ok
	})
	return nil
}

func (m *MockVectorDriver) ListIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailList != nil {
		return nil, m.FailList
	}
	return slices.Clone(m.order), nil
}

// Documents returns every stored document in insertion order.
func (m *MockVectorDriver) Documents() []vector.Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make([]vector.Document, 0, len(m.order))
	for _, id := range m.order {
		docs = append(docs, m.docs[id])
	}
	return docs
}

func (m *MockVectorDriver) Close() error {
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
