package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/pointread/internal/capture"
	"github.com/ayusman/pointread/internal/detector"
	"github.com/ayusman/pointread/internal/hook"
	"github.com/ayusman/pointread/internal/ocr"
	"github.com/ayusman/pointread/internal/overlay"
	"github.com/ayusman/pointread/internal/speech"
	"github.com/ayusman/pointread/internal/store"
	"gocv.io/x/gocv"
)

// newFrames returns n blank 640x480 BGR frames closed at test cleanup.
func newFrames(t *testing.T, n int) []*gocv.Mat {
	t.Helper()

	frames := make([]*gocv.Mat, n)
	for i := range frames {
		m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	t.Cleanup(func() {
		for _, f := range frames {
			f.Close()
		}
	})
	return frames
}

type fixture struct {
	camera     *capture.MockCamera
	detector   *detector.MockDetector
	recognizer *ocr.MockRecognizer
	speaker    *speech.MockSpeaker
	display    *overlay.MockDisplay
}

func newFixture(t *testing.T, frames int) *fixture {
	t.Helper()
	return &fixture{
		camera:     capture.NewMockCamera(newFrames(t, frames), false),
		detector:   detector.NewMockDetector(),
		recognizer: ocr.NewMockRecognizer(),
		speaker:    speech.NewMockSpeaker(),
		display:    overlay.NewMockDisplay(),
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Camera:     f.camera,
		Detector:   f.detector,
		Recognizer: f.recognizer,
		Speaker:    f.speaker,
		Display:    f.display,
	}
}

func (f *fixture) app(t *testing.T, extra func(*Deps)) *App {
	t.Helper()

	deps := f.deps()
	if extra != nil {
		extra(&deps)
	}
	a, err := New(Config{}, deps)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

type recordingObserver struct {
	mu            sync.Mutex
	frames        int
	matches       int
	announcements []*store.Announcement
}

func (o *recordingObserver) OnFrame(frame *gocv.Mat, result FrameResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.frames++
	o.matches += len(result.Matches)
}

func (o *recordingObserver) OnAnnouncement(a *store.Announcement) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.announcements = append(o.announcements, a)
}

type recordingDispatcher struct {
	events []hook.Event
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event hook.Event) int {
	d.events = append(d.events, event)
	return 1
}

func TestNew_RequiresComponents(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		name   string
		mutate func(*Deps)
	}{
		{"camera", func(d *Deps) { d.Camera = nil }},
		{"detector", func(d *Deps) { d.Detector = nil }},
		{"recognizer", func(d *Deps) { d.Recognizer = nil }},
		{"speaker", func(d *Deps) { d.Speaker = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := f.deps()
			tt.mutate(&deps)
			if _, err := New(Config{}, deps); err == nil || !strings.Contains(err.Error(), tt.name) {
				t.Errorf("New() error = %v, want missing %s", err, tt.name)
			}
		})
	}

	t.Run("defaults", func(t *testing.T) {
		deps := f.deps()
		deps.Display = nil
		a, err := New(Config{}, deps)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if a.Threshold() != 100 {
			t.Errorf("Threshold() = %f, want 100", a.Threshold())
		}
		if a.State() != StateRunning {
			t.Errorf("State() = %s, want running", a.State())
		}
	})
}

func TestApp_Run_ProcessesEveryFrameThenTerminates(t *testing.T) {
	const n = 4
	f := newFixture(t, n)
	a := f.app(t, nil)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := a.FramesProcessed(); got != n {
		t.Errorf("FramesProcessed() = %d, want %d", got, n)
	}
	if got := f.display.Shown(); got != n {
		t.Errorf("display showed %d frames, want %d", got, n)
	}
	if a.State() != StateTerminated {
		t.Errorf("State() = %s, want terminated", a.State())
	}

	if err := a.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if got := f.camera.CloseCalls(); got != 1 {
		t.Errorf("camera closed %d times, want 1", got)
	}
	if got := f.display.CloseCalls(); got != 1 {
		t.Errorf("display closed %d times, want 1", got)
	}

	if err := a.Run(context.Background()); !errors.Is(err, ErrTerminated) {
		t.Errorf("Run() after termination error = %v, want ErrTerminated", err)
	}
}

func TestApp_Run_EscTerminates(t *testing.T) {
	f := newFixture(t, 5)
	f.display.PressAt(2, overlay.KeyEsc)
	a := f.app(t, nil)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := a.FramesProcessed(); got != 2 {
		t.Errorf("FramesProcessed() = %d, want 2", got)
	}
	if got := f.camera.CloseCalls(); got != 1 {
		t.Errorf("camera closed %d times, want 1", got)
	}
}

func TestApp_Run_OtherKeysContinue(t *testing.T) {
	f := newFixture(t, 3)
	f.display.PressAt(1, 'q')
	a := f.app(t, nil)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := a.FramesProcessed(); got != 3 {
		t.Errorf("FramesProcessed() = %d, want 3", got)
	}
}

func TestApp_Run_ContextCancel(t *testing.T) {
	f := newFixture(t, 1)
	f.camera = capture.NewMockCamera(newFrames(t, 1), true)

	ctx, cancel := context.WithCancel(context.Background())
	f.camera.OnRead(func(n int) {
		if n == 3 {
			cancel()
		}
	})
	a := f.app(t, nil)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}

	if got := a.FramesProcessed(); got != 3 {
		t.Errorf("FramesProcessed() = %d, want 3", got)
	}
	if got := f.camera.CloseCalls(); got != 1 {
		t.Errorf("camera closed %d times, want 1", got)
	}
}

func TestApp_ProcessFrame_EmptyInputs(t *testing.T) {
	tests := []struct {
		name    string
		hands   []detector.HandLandmarks
		regions []ocr.TextRegion
	}{
		{
			name:    "no hands",
			regions: []ocr.TextRegion{ocr.RegionAt("word", 320, 120, 60, 20)},
		},
		{
			name:  "no regions",
			hands: []detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.25)},
		},
		{
			name: "nothing at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 1)
			f.detector.SetHands(tt.hands)
			f.recognizer.SetRegions(tt.regions)
			a := f.app(t, nil)

			frame := newFrames(t, 1)[0]
			result := a.ProcessFrame(context.Background(), frame)

			if len(result.Matches) != 0 {
				t.Errorf("expected no matches, got %d", len(result.Matches))
			}
			if len(f.speaker.Spoken()) != 0 {
				t.Errorf("expected no speech, got %v", f.speaker.Spoken())
			}
			if len(result.Tips) != len(tt.hands) {
				t.Errorf("tips = %d, want one per hand (%d)", len(result.Tips), len(tt.hands))
			}
		})
	}
}

func TestApp_ProcessFrame_AnnouncesNearestWord(t *testing.T) {
	f := newFixture(t, 1)
	// Fingertip lands on (320, 120)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.25)})
	f.recognizer.SetRegions([]ocr.TextRegion{
		ocr.RegionAt("far", 600, 400, 40, 20),
		ocr.RegionAt("near", 330, 120, 40, 20),
	})

	s, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	observer := &recordingObserver{}
	hooks := &recordingDispatcher{}
	a := f.app(t, func(d *Deps) {
		d.History = s.Announcements()
		d.Hooks = hooks
		d.Observers = []Observer{observer}
	})

	frame := newFrames(t, 1)[0]
	result := a.ProcessFrame(context.Background(), frame)

	if len(result.Matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(result.Matches))
	}
	m := result.Matches[0]
	if m.Region.Text != "near" || m.Index != 1 || m.Distance != 10 {
		t.Errorf("match = %+v, want near at index 1, distance 10", m)
	}
	if got := strings.Join(f.speaker.Spoken(), ","); got != "near" {
		t.Errorf("spoken = %q, want near", got)
	}

	list, err := s.Announcements().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Text != "near" || list[0].TipX != 320 || list[0].TipY != 120 {
		t.Errorf("history = %+v", list)
	}

	if len(hooks.events) != 1 || hooks.events[0].Type != hook.EventAnnounce || hooks.events[0].Text != "near" {
		t.Errorf("hook events = %+v", hooks.events)
	}
	if len(observer.announcements) != 1 || observer.announcements[0].ID != list[0].ID {
		t.Errorf("observer announcements = %+v", observer.announcements)
	}
	if a.Announcements() != 1 {
		t.Errorf("Announcements() = %d, want 1", a.Announcements())
	}
}

func TestApp_SuppressedSpeechIsNotAnnounced(t *testing.T) {
	tests := []struct {
		name      string
		wrap      func(speech.Speaker) speech.Speaker
		wantSpoke int
		wantAnn   int
	}{
		{
			name:      "repeat inside cooldown window",
			wrap:      func(s speech.Speaker) speech.Speaker { return speech.NewCooldown(s, time.Hour) },
			wantSpoke: 1,
			wantAnn:   1,
		},
		{
			name: "muted",
			wrap: func(s speech.Speaker) speech.Speaker {
				m := speech.NewMutable(s)
				m.SetMuted(true)
				return m
			},
			wantSpoke: 0,
			wantAnn:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 3)
			f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.25)})
			f.recognizer.SetRegions([]ocr.TextRegion{ocr.RegionAt("same", 320, 120, 40, 20)})

			s, err := store.New(filepath.Join(t.TempDir(), "history.db"))
			if err != nil {
				t.Fatalf("store.New() error = %v", err)
			}
			defer s.Close()

			observer := &recordingObserver{}
			hooks := &recordingDispatcher{}
			a := f.app(t, func(d *Deps) {
				d.Speaker = tt.wrap(f.speaker)
				d.History = s.Announcements()
				d.Hooks = hooks
				d.Observers = []Observer{observer}
			})

			if err := a.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := len(f.speaker.Spoken()); got != tt.wantSpoke {
				t.Errorf("spoken %d times, want %d", got, tt.wantSpoke)
			}
			if n, _ := s.Announcements().Count(); n != tt.wantAnn {
				t.Errorf("history rows = %d, want %d", n, tt.wantAnn)
			}
			if got := len(hooks.events); got != tt.wantAnn {
				t.Errorf("hook events = %d, want %d", got, tt.wantAnn)
			}
			if got := len(observer.announcements); got != tt.wantAnn {
				t.Errorf("observer announcements = %d, want %d", got, tt.wantAnn)
			}
			if got := a.Announcements(); got != int64(tt.wantAnn) {
				t.Errorf("Announcements() = %d, want %d", got, tt.wantAnn)
			}
			// Frames still show the match even when speech is skipped
			if observer.matches != 3 {
				t.Errorf("observed matches = %d, want 3", observer.matches)
			}
		})
	}
}

func TestApp_ProcessFrame_OneMatchPerHand(t *testing.T) {
	f := newFixture(t, 1)
	f.detector.SetHands([]detector.HandLandmarks{
		detector.PointingLandmarks(0.5, 0.25),
		detector.PointingLandmarks(0.1, 0.9),
	})
	f.recognizer.SetRegions([]ocr.TextRegion{
		ocr.RegionAt("top", 320, 120, 40, 20),
		ocr.RegionAt("also-top", 330, 125, 40, 20),
		ocr.RegionAt("bottom", 64, 432, 40, 20),
	})
	a := f.app(t, nil)

	result := a.ProcessFrame(context.Background(), newFrames(t, 1)[0])

	if len(result.Matches) != 2 {
		t.Fatalf("expected one match per hand, got %d", len(result.Matches))
	}
	if got := strings.Join(f.speaker.Spoken(), ","); got != "top,bottom" {
		t.Errorf("spoken = %q, want top,bottom", got)
	}
}

func TestApp_ProcessFrame_TipsWithoutMatchesAreKept(t *testing.T) {
	f := newFixture(t, 1)
	f.detector.SetHands([]detector.HandLandmarks{
		detector.PointingLandmarks(0.1, 0.1),
		detector.PointingLandmarks(0.5, 0.25),
	})
	f.recognizer.SetRegions([]ocr.TextRegion{ocr.RegionAt("word", 322, 121, 40, 20)})
	a := f.app(t, nil)

	result := a.ProcessFrame(context.Background(), newFrames(t, 1)[0])

	if len(result.Tips) != 2 {
		t.Fatalf("tips = %v, want one per hand", result.Tips)
	}
	if len(result.Matches) != 1 || result.Matches[0].Tip != result.Tips[1] {
		t.Errorf("matches = %+v, want only the second hand", result.Matches)
	}
	if got := strings.Join(f.speaker.Spoken(), ","); got != "word" {
		t.Errorf("spoken = %q, want word", got)
	}
}

func TestApp_ProcessFrame_RecognizerErrors(t *testing.T) {
	f := newFixture(t, 1)
	f.detector.SetError(errors.New("service crashed"))
	f.recognizer.SetError(errors.New("tesseract crashed"))
	a := f.app(t, nil)

	result := a.ProcessFrame(context.Background(), newFrames(t, 1)[0])

	if result.Hands != nil || result.Regions != nil {
		t.Errorf("expected empty results, got %+v", result)
	}
	if a.FramesProcessed() != 1 {
		t.Errorf("FramesProcessed() = %d, want 1", a.FramesProcessed())
	}
}

func TestApp_SpeechErrorDoesNotStopLoop(t *testing.T) {
	f := newFixture(t, 3)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.25)})
	f.recognizer.SetRegions([]ocr.TextRegion{ocr.RegionAt("word", 320, 120, 40, 20)})
	f.speaker.SetError(errors.New("no audio device"))
	a := f.app(t, nil)

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := a.FramesProcessed(); got != 3 {
		t.Errorf("FramesProcessed() = %d, want 3", got)
	}
	if got := len(f.speaker.Spoken()); got != 3 {
		t.Errorf("speech attempted %d times, want 3", got)
	}
}

func TestApp_SpeechBlocksNextFrame(t *testing.T) {
	const n = 3
	f := newFixture(t, n)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.25)})
	f.recognizer.SetRegions([]ocr.TextRegion{ocr.RegionAt("word", 320, 120, 40, 20)})
	f.speaker.SetDelay(30 * time.Millisecond)

	var mu sync.Mutex
	var events []string
	record := func(e string) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	}
	f.camera.OnRead(func(n int) { record(fmt.Sprintf("read%d", n)) })
	f.speaker.OnSpeak(func(text string) { record("spoke") })

	a := f.app(t, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "read1,spoke,read2,spoke,read3,spoke"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestApp_ObserversSeeEveryFrame(t *testing.T) {
	f := newFixture(t, 2)
	f.detector.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(0.5, 0.25)})
	f.recognizer.SetRegions([]ocr.TextRegion{ocr.RegionAt("word", 320, 120, 40, 20)})

	observer := &recordingObserver{}
	a := f.app(t, func(d *Deps) { d.Observers = []Observer{observer} })

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if observer.frames != 2 || observer.matches != 2 || len(observer.announcements) != 2 {
		t.Errorf("observer saw frames=%d matches=%d announcements=%d, want 2 each",
			observer.frames, observer.matches, len(observer.announcements))
	}
}

func TestApp_Run_CameraOpenFailure(t *testing.T) {
	f := newFixture(t, 0)
	cam := &failingCamera{MockCamera: f.camera}
	a := f.app(t, func(d *Deps) { d.Camera = cam })

	err := a.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "open camera") {
		t.Fatalf("Run() error = %v, want open camera failure", err)
	}
	if a.State() != StateTerminated {
		t.Errorf("State() = %s, want terminated", a.State())
	}
	if a.FramesProcessed() != 0 {
		t.Errorf("FramesProcessed() = %d, want 0", a.FramesProcessed())
	}
}

type failingCamera struct {
	*capture.MockCamera
}

func (c *failingCamera) Open() error {
	return errors.New("device busy")
}
