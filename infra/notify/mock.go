package notify

import (
	"fmt"
	"sync"
)

// MockNotifier records published messages for tests.
type MockNotifier struct {
	mu        sync.Mutex
	Published []Message
	Fail      bool
	Closed    bool
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// PublishRunSummary records the message or returns an error if configured to fail.
func (m *MockNotifier) PublishRunSummary(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Published = append(m.Published, msg)
	return nil
}

// Close marks the notifier closed.
func (m *MockNotifier) Close() {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}

// Snapshot returns a copy of the published messages.
func (m *MockNotifier) Snapshot() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.Published))
	copy(out, m.Published)
	return out
}
