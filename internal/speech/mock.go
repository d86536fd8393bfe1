package speech

import (
	"context"
	"sync"
	"time"
)

// MockSpeaker records what it was asked to say.
type MockSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	err     error
	delay   time.Duration
	onSpeak func(text string)
}

// NewMockSpeaker creates a MockSpeaker.
func NewMockSpeaker() *MockSpeaker {
	return &MockSpeaker{}
}

// SetError sets the error returned by Speak.
func (m *MockSpeaker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDelay makes Speak block for d before returning.
func (m *MockSpeaker) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// OnSpeak registers a callback run when Speak finishes playback.
func (m *MockSpeaker) OnSpeak(fn func(text string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSpeak = fn
}

func (m *MockSpeaker) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	delay, err, hook := m.delay, m.err, m.onSpeak
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	m.spoken = append(m.spoken, text)
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}
	return err
}

// Spoken returns a copy of everything spoken so far.
func (m *MockSpeaker) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}
