package mocks

import (
	"fmt"
	"sync"
)

// MockIDGenerator hands out sequential, lexically ordered ids
// so that tests can rely on creation order matching id order.
type MockIDGenerator struct {
	GenerateFunc func() string
	Prefix       string

	mu      sync.Mutex
	counter int
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{Prefix: "id"}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	prefix := m.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%06d", prefix, m.counter)
}
