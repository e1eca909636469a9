package testutils

import "sync/atomic"

// Counter tracks how many times something happened. It is safe for concurrent use, so it can
// be shared between handler goroutines and the test body.
type Counter interface {
	// Increment adds one and returns the new value
	Increment() int
	// Get returns the current value
	Get() int
}

type counter struct {
	value atomic.Int64
}

// NewCounter creates a Counter starting at 0
func NewCounter() Counter {
	return &counter{}
}

func (m *counter) Increment() int {
	return int(m.value.Add(1))
}

func (m *counter) Get() int {
	return int(m.value.Load())
}
