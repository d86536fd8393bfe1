// Package app runs the capture, recognition and announcement loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/ayusman/pointread/internal/capture"
	"github.com/ayusman/pointread/internal/detector"
	"github.com/ayusman/pointread/internal/hook"
	"github.com/ayusman/pointread/internal/ocr"
	"github.com/ayusman/pointread/internal/overlay"
	"github.com/ayusman/pointread/internal/pointing"
	"github.com/ayusman/pointread/internal/speech"
	"github.com/ayusman/pointread/internal/store"
	"gocv.io/x/gocv"
)

// State is the lifecycle state of the loop.
type State int32

const (
	// StateRunning is the initial state; frames are being processed or will be.
	StateRunning State = iota
	// StateTerminated is final; every resource has been released.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// ErrTerminated is returned by Run on an App that already finished.
var ErrTerminated = errors.New("app already terminated")

// Config holds the loop tunables.
type Config struct {
	// Threshold is the pointing distance in pixels. Non-positive selects
	// pointing.DefaultThreshold.
	Threshold float64
}

// HistoryWriter persists announcements.
type HistoryWriter interface {
	Create(a *store.Announcement) error
}

// HookDispatcher runs announcement hooks.
type HookDispatcher interface {
	Dispatch(ctx context.Context, event hook.Event) int
}

// Observer receives finished results from the loop. Implementations must
// return quickly and must not keep frame after returning.
type Observer interface {
	OnFrame(frame *gocv.Mat, result FrameResult)
	OnAnnouncement(a *store.Announcement)
}

// Deps are the components the loop drives. Camera, Detector, Recognizer and
// Speaker are required.
type Deps struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Recognizer ocr.Recognizer
	Speaker    speech.Speaker
	Display    overlay.Display
	Painter    *overlay.Painter
	History    HistoryWriter
	Hooks      HookDispatcher
	Observers  []Observer
}

// FrameResult summarizes one processed frame.
type FrameResult struct {
	Hands   []detector.HandLandmarks
	Regions []ocr.TextRegion
	Tips    []image.Point
	Matches []pointing.Match
}

// App is the main loop. Every component is owned by the App once passed to
// New and released by it exactly once.
type App struct {
	config    Config
	camera    capture.Camera
	detector  detector.Detector
	ocr       ocr.Recognizer
	speaker   speech.Speaker
	display   overlay.Display
	painter   *overlay.Painter
	resolver  *pointing.Resolver
	history   HistoryWriter
	hooks     HookDispatcher
	observers []Observer

	state     atomic.Int32
	frames    atomic.Int64
	spoken    atomic.Int64
	closeOnce sync.Once
	closeErr  error
}

// New creates an App from explicit components.
func New(config Config, deps Deps) (*App, error) {
	switch {
	case deps.Camera == nil:
		return nil, errors.New("app: camera is required")
	case deps.Detector == nil:
		return nil, errors.New("app: detector is required")
	case deps.Recognizer == nil:
		return nil, errors.New("app: recognizer is required")
	case deps.Speaker == nil:
		return nil, errors.New("app: speaker is required")
	}

	display := deps.Display
	if display == nil {
		display = overlay.Headless{}
	}
	painter := deps.Painter
	if painter == nil {
		painter = overlay.NewPainter(overlay.DefaultStyle())
	}

	return &App{
		config:    config,
		camera:    deps.Camera,
		detector:  deps.Detector,
		ocr:       deps.Recognizer,
		speaker:   deps.Speaker,
		display:   display,
		painter:   painter,
		resolver:  pointing.NewResolver(config.Threshold),
		history:   deps.History,
		hooks:     deps.Hooks,
		observers: deps.Observers,
	}, nil
}

// State returns the current lifecycle state.
func (a *App) State() State {
	return State(a.state.Load())
}

// FramesProcessed returns how many frames went through ProcessFrame.
func (a *App) FramesProcessed() int64 {
	return a.frames.Load()
}

// Announcements returns how many matches were announced.
func (a *App) Announcements() int64 {
	return a.spoken.Load()
}

// Threshold returns the effective pointing distance.
func (a *App) Threshold() float64 {
	return a.resolver.Threshold
}

// Close releases every component. It is safe to call more than once and
// after Run returned.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		if err := a.camera.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close camera: %w", err))
		}
		if err := a.display.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close display: %w", err))
		}
		if err := a.detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close detector: %w", err))
		}
		if err := a.ocr.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close recognizer: %w", err))
		}
		a.closeErr = errors.Join(errs...)
		a.state.Store(int32(StateTerminated))
	})
	return a.closeErr
}
