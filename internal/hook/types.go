// Package hook runs external executables when text is announced.
//
// A hook lives in its own directory under the hooks directory and is
// described by a hook.json manifest. For every event it subscribes to, the
// hook executable receives one Event as JSON on stdin and answers with one
// Response as JSON on stdout.
package hook

import (
	"encoding/json"
	"time"
)

// EventAnnounce is sent after a matched word has been spoken.
const EventAnnounce = "announce"

// Manifest describes a hook's metadata and subscriptions.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Subscribes reports whether the hook wants the given event type.
// A manifest without events receives every event.
func (m Manifest) Subscribes(event string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Event is the payload written to a hook's stdin.
type Event struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	X          int             `json:"x"`
	Y          int             `json:"y"`
	Distance   float64         `json:"distance"`
	Timestamp  time.Time       `json:"timestamp"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Response represents the response from a hook execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook represents a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
