package notify

import (
	"context"
	"fmt"
	"sync"
)

// MockNotifier records sends in memory and fails for configured destinations.
// Used in tests and local dev when no channel credentials are configured.
type MockNotifier struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func NewMockNotifier(failFor ...string) *MockNotifier {
	m := &MockNotifier{failFor: make(map[string]bool)}
	for _, d := range failFor {
		m.failFor[d] = true
	}
	return m
}

func (m *MockNotifier) Send(_ context.Context, _, _, destination string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[destination] {
		return fmt.Errorf("mock send to %s failed", destination)
	}
	m.sent = append(m.sent, destination)
	return nil
}

// Sent returns the destinations successfully sent to, in send order.
func (m *MockNotifier) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}
