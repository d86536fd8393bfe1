// Package capture reads frames from a webcam through GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	DefaultDeviceID = 0
	DefaultFPS      = 30
	DefaultWidth    = 640
	DefaultHeight   = 480
)

var (
	// ErrCameraNotOpen is returned when reading before Open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEndOfStream is returned when the device can no longer supply frames.
	ErrEndOfStream = errors.New("end of stream")

	// ErrOpen wraps device open failures.
	ErrOpen = errors.New("cannot open camera")
)

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	// ReadFrame returns the next frame. The caller owns the returned Mat
	// and must close it.
	ReadFrame() (*gocv.Mat, error)
	Close() error
}

// Options configures a Webcam. Zero values select the defaults.
type Options struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	return o
}

// Webcam captures from a local video device.
type Webcam struct {
	opts    Options
	mu      sync.Mutex
	capture *gocv.VideoCapture
	size    image.Point
}

// NewWebcam returns an unopened webcam.
func NewWebcam(opts Options) *Webcam {
	return &Webcam{opts: opts.withDefaults()}
}

// Open opens the device and requests the configured resolution and rate.
// Opening an already open webcam is a no-op.
func (w *Webcam) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(w.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("%w %d: %v", ErrOpen, w.opts.DeviceID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w %d", ErrOpen, w.opts.DeviceID)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(w.opts.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(w.opts.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(w.opts.FPS))

	// Drivers may not honor the request
	w.size = image.Pt(int(vc.Get(gocv.VideoCaptureFrameWidth)), int(vc.Get(gocv.VideoCaptureFrameHeight)))
	w.capture = vc
	return nil
}

// ReadFrame reads one frame. A failed or empty read is reported as
// ErrEndOfStream; there is no retry.
func (w *Webcam) ReadFrame() (*gocv.Mat, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := w.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}
	return &mat, nil
}

// Close releases the device. It is safe to call more than once.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.capture == nil {
		return nil
	}
	err := w.capture.Close()
	w.capture = nil
	return err
}

// IsOpen reports whether the device is open.
func (w *Webcam) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.capture != nil
}

// Size returns the resolution the driver settled on, or the zero point
// before Open.
func (w *Webcam) Size() image.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Options returns the effective options.
func (w *Webcam) Options() Options {
	return w.opts
}
