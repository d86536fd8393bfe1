package overlay

import (
	"sync"

	"gocv.io/x/gocv"
)

// KeyEsc is the key code that stops the pipeline.
const KeyEsc = 27

// DefaultWindowTitle is the title of the preview window.
const DefaultWindowTitle = "Real-Time OCR + Finger Detection"

// Display shows annotated frames and reports operator key presses.
type Display interface {
	Show(frame *gocv.Mat)
	// PollKey waits briefly for a key press and returns its code, or -1.
	PollKey() int
	Close() error
}

// Window is a Display backed by an OpenCV HighGUI window.
type Window struct {
	window *gocv.Window
	mu     sync.Mutex
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	if title == "" {
		title = DefaultWindowTitle
	}
	return &Window{window: gocv.NewWindow(title)}
}

func (w *Window) Show(frame *gocv.Mat) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil || frame == nil || frame.Empty() {
		return
	}
	w.window.IMShow(*frame)
}

// PollKey returns the low byte of the pressed key, or -1 if none.
func (w *Window) PollKey() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return -1
	}
	key := w.window.WaitKey(1)
	if key < 0 {
		return -1
	}
	return key & 0xFF
}

// Close destroys the window. Further calls are no-ops.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}

// Headless is a Display that renders nowhere and never reports a key.
type Headless struct{}

func (Headless) Show(frame *gocv.Mat) {}
func (Headless) PollKey() int         { return -1 }
func (Headless) Close() error         { return nil }
