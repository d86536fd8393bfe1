package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pointread/internal/hook"
	"github.com/ayusman/pointread/internal/overlay"
	"github.com/ayusman/pointread/internal/pointing"
	"github.com/ayusman/pointread/internal/speech"
	"github.com/ayusman/pointread/internal/store"
	"gocv.io/x/gocv"
)

// Run opens the camera and processes frames until the stream ends, ESC is
// pressed in the display or ctx is done. Every component is released before
// Run returns. Only a camera that cannot be opened is reported as an error.
//
// Per iteration:
// 1. Read a frame (any read failure terminates)
// 2. ProcessFrame: detect, recognize, draw, resolve and announce
// 3. Show the annotated frame and hand it to observers
// 4. Poll the display for ESC
func (a *App) Run(ctx context.Context) error {
	if a.State() == StateTerminated {
		return ErrTerminated
	}
	defer a.Close()

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	log.Println("Detection loop started")
	defer func() {
		log.Printf("Detection loop stopped after %d frames", a.FramesProcessed())
	}()

	for {
		if err := ctx.Err(); err != nil {
			log.Printf("Stopping: %v", err)
			return nil
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			log.Printf("Frame capture ended: %v", err)
			return nil
		}

		result := a.ProcessFrame(ctx, frame)
		a.display.Show(frame)
		for _, o := range a.observers {
			o.OnFrame(frame, result)
		}
		frame.Close()

		if key := a.display.PollKey(); key == overlay.KeyEsc {
			log.Println("ESC pressed, exiting")
			return nil
		}
	}
}

// ProcessFrame runs both recognizers on frame, draws the overlay onto it and
// announces every match before returning. Recognizer failures are logged and
// treated as empty results.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat) FrameResult {
	defer a.frames.Add(1)

	var result FrameResult

	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Hand detection error: %v", err)
		hands = nil
	}
	result.Hands = hands

	regions, err := a.ocr.Recognize(frame)
	if err != nil {
		log.Printf("Text recognition error: %v", err)
		regions = nil
	}
	result.Regions = regions

	a.painter.DrawRegions(frame, regions)

	width, height := frameSize(frame)
	for i := range hands {
		hand := &hands[i]
		a.painter.DrawHand(frame, hand)

		tip := pointing.Fingertip(hand, width, height)
		a.painter.DrawFingertip(frame, tip)
		result.Tips = append(result.Tips, tip)
	}

	// One match at most per tip, in hand order
	result.Matches = a.resolver.ResolveAll(result.Tips, regions)
	for _, m := range result.Matches {
		a.painter.DrawMatch(frame, m)
		a.announce(ctx, m)
	}

	return result
}

// announce speaks the matched text and then fans the announcement out to
// history, hooks and observers. Speech blocks until playback finishes.
// A match the speaker suppresses (muted or repeated) is not an
// announcement and goes nowhere else.
func (a *App) announce(ctx context.Context, m pointing.Match) {
	log.Printf("Pointing at: %s", m.Region.Text)

	err := a.speaker.Speak(ctx, m.Region.Text)
	if errors.Is(err, speech.ErrSuppressed) {
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Speech error: %v", err)
	}
	a.spoken.Add(1)

	ann := &store.Announcement{
		ID:         uuid.New().String(),
		Text:       m.Region.Text,
		Confidence: m.Region.Confidence,
		TipX:       m.Tip.X,
		TipY:       m.Tip.Y,
		Distance:   m.Distance,
		CreatedAt:  time.Now(),
	}

	if a.history != nil {
		if err := a.history.Create(ann); err != nil {
			log.Printf("Failed to record announcement: %v", err)
		}
	}

	if a.hooks != nil {
		a.hooks.Dispatch(ctx, hook.Event{
			Type:       hook.EventAnnounce,
			ID:         ann.ID,
			Text:       ann.Text,
			Confidence: ann.Confidence,
			X:          ann.TipX,
			Y:          ann.TipY,
			Distance:   ann.Distance,
			Timestamp:  ann.CreatedAt,
		})
	}

	for _, o := range a.observers {
		o.OnAnnouncement(ann)
	}
}

func frameSize(frame *gocv.Mat) (int, int) {
	if frame == nil {
		return 0, 0
	}
	return frame.Cols(), frame.Rows()
}
