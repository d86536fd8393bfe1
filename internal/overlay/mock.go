package overlay

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDisplay records shown frames and replays scripted key presses.
type MockDisplay struct {
	mu         sync.Mutex
	shown      int
	keys       map[int]int
	polls      int
	closeCalls int
}

// NewMockDisplay creates a MockDisplay with no scripted keys.
func NewMockDisplay() *MockDisplay {
	return &MockDisplay{keys: make(map[int]int)}
}

// PressAt makes the n-th PollKey call (1-based) return key.
func (d *MockDisplay) PressAt(n, key int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[n] = key
}

func (d *MockDisplay) Show(frame *gocv.Mat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shown++
}

func (d *MockDisplay) PollKey() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polls++
	if key, ok := d.keys[d.polls]; ok {
		return key
	}
	return -1
}

func (d *MockDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeCalls++
	return nil
}

// Shown returns how many frames were shown.
func (d *MockDisplay) Shown() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shown
}

// CloseCalls returns how many times Close was called.
func (d *MockDisplay) CloseCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCalls
}
