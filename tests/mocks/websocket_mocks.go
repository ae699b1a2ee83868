package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// EventRecord records an event published through the mock publisher
type EventRecord struct {
	Type          string
	ApplicationID uint
	Payload       interface{}
}

// MockEventPublisher implements services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
	mu     sync.Mutex
	Events []EventRecord
}

// NewMockEventPublisher creates a new MockEventPublisher instance
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]EventRecord, 0),
	}
}

// BroadcastApplicationEvent records the event
func (m *MockEventPublisher) BroadcastApplicationEvent(eventType string, applicationID uint, payload interface{}) {
	m.Called(eventType, applicationID, payload)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EventRecord{
		Type:          eventType,
		ApplicationID: applicationID,
		Payload:       payload,
	})
}

// GetEvents returns all recorded events
func (m *MockEventPublisher) GetEvents() []EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventRecord, len(m.Events))
	copy(out, m.Events)
	return out
}
