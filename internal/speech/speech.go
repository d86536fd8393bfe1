// Package speech announces text aloud.
package speech

import (
	"context"
	"errors"
)

// ErrNoSynthesizer is returned when no speech synthesizer can be found.
var ErrNoSynthesizer = errors.New("no speech synthesizer found")

// ErrEmptyCommand is returned for a custom command with no program name.
var ErrEmptyCommand = errors.New("speech command is empty")

// ErrSuppressed is returned by wrappers that deliberately skip speaking,
// so callers can tell a skipped announcement from a spoken one.
var ErrSuppressed = errors.New("speech suppressed")

// Speaker speaks text aloud. Speak blocks until playback has finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}
