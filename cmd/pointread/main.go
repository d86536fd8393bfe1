package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/pointread/internal/app"
	"github.com/ayusman/pointread/internal/capture"
	"github.com/ayusman/pointread/internal/config"
	"github.com/ayusman/pointread/internal/detector"
	"github.com/ayusman/pointread/internal/hook"
	"github.com/ayusman/pointread/internal/ocr"
	"github.com/ayusman/pointread/internal/overlay"
	"github.com/ayusman/pointread/internal/server"
	"github.com/ayusman/pointread/internal/speech"
	"github.com/ayusman/pointread/internal/store"
	"github.com/ayusman/pointread/internal/tray"
)

// The preview window and the tray both need the main OS thread.
func init() {
	runtime.LockOSThread()
}

// cleanup runs release functions in reverse order of registration, once.
type cleanup struct {
	fns []func()
}

func (c *cleanup) add(fn func()) {
	c.fns = append(c.fns, fn)
}

func (c *cleanup) run() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
	c.fns = nil
}

func main() {
	flags, err := config.ParseFlags("pointread", os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("pointread - point at a word to hear it")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Everything that can fail without side effects is checked before any
	// resource is opened.
	style, err := overlay.DefaultStyle().WithColors(cfg.Display.Colors)
	if err != nil {
		log.Fatalf("Invalid overlay colors: %v", err)
	}

	var listener net.Listener
	if cfg.Listen != "" {
		listener, err = net.Listen("tcp", cfg.Listen)
		if err != nil {
			log.Fatalf("Failed to listen on %s: %v", cfg.Listen, err)
		}
	}

	// opened releases what was opened so far when startup fails later
	var opened cleanup
	fatalf := func(format string, args ...any) {
		opened.run()
		log.Fatalf(format, args...)
	}
	if listener != nil {
		opened.add(func() { listener.Close() })
	}

	// Optional history store
	var st *store.Store
	if cfg.History != "" {
		st, err = store.New(cfg.History)
		if err != nil {
			fatalf("Failed to open history %s: %v", cfg.History, err)
		}
		defer st.Close()
		opened.add(func() { st.Close() })
		log.Printf("Recording announcements to %s", cfg.History)
	}

	// Speech: synthesizer -> repeat cooldown -> mute switch
	synth, err := speech.NewCommandSpeaker(cfg.Speech.Config)
	if err != nil {
		fatalf("Failed to initialize speech: %v", err)
	}
	log.Printf("Speaking with %s", synth)

	speaker := speech.NewMutable(speech.NewCooldown(synth, time.Duration(cfg.Speech.RepeatCooldown)))
	muted := cfg.Speech.Muted
	if st != nil {
		muted = st.Settings().GetBool(store.SettingMuted, muted)
	}
	speaker.SetMuted(muted)

	handDetector, err := detector.NewMediaPipeDetector(cfg.Detector.Detector())
	if err != nil {
		fatalf("Hand detector unavailable: %v", err)
	}
	opened.add(func() { handDetector.Close() })

	recognizer, err := ocr.NewTesseractRecognizer(cfg.OCR)
	if err != nil {
		fatalf("Failed to initialize OCR: %v", err)
	}
	opened.add(func() { recognizer.Close() })

	var display overlay.Display = overlay.Headless{}
	if !cfg.Display.Headless {
		display = overlay.NewWindow(cfg.Display.WindowTitle)
	}

	deps := app.Deps{
		Camera:     capture.NewWebcam(capture.Options{DeviceID: cfg.CameraID, Width: cfg.Width, Height: cfg.Height}),
		Detector:   handDetector,
		Recognizer: recognizer,
		Speaker:    speaker,
		Display:    display,
		Painter:    overlay.NewPainter(style),
	}
	if st != nil {
		deps.History = st.Announcements()
	}

	// Optional announcement hooks
	if cfg.Hooks.Dir != "" {
		hooks := hook.NewManager(cfg.Hooks.Dir, hook.NewExecutor(time.Duration(cfg.Hooks.TimeoutMs)*time.Millisecond))
		if err := hooks.Discover(); err != nil {
			log.Printf("Failed to discover hooks in %s: %v", cfg.Hooks.Dir, err)
		}
		log.Printf("Loaded %d hooks from %s", len(hooks.List()), cfg.Hooks.Dir)
		deps.Hooks = hooks
	}

	// Optional live view server
	var srv *server.Server
	if listener != nil {
		l := listener
		hub := server.NewHub()
		deps.Observers = append(deps.Observers, hub)
		srv = server.New(server.Config{Store: st, Hub: hub})

		log.Printf("Live view on http://%s/api/stream", l.Addr())
		go func() {
			if err := srv.Serve(l); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	// Optional tray
	var tr *tray.Tray
	if cfg.Tray {
		tr = tray.New(muted)
		tr.OnMute(func(m bool) {
			speaker.SetMuted(m)
			log.Printf("Speech muted: %v", m)
			if st != nil {
				if err := st.Settings().SetBool(store.SettingMuted, m); err != nil {
					log.Printf("Failed to save mute setting: %v", err)
				}
			}
		})
		tr.OnQuit(stop)
		deps.Observers = append(deps.Observers, tr)
	}

	a, err := app.New(app.Config{Threshold: cfg.Threshold}, deps)
	if err != nil {
		fatalf("Failed to create app: %v", err)
	}

	var runErr error
	if tr != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			runErr = a.Run(ctx)
			tr.Quit()
		}()
		tr.Run()
		stop()
		<-done
	} else {
		runErr = a.Run(ctx)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown: %v", err)
		}
		cancel()
	}

	if runErr != nil {
		if st != nil {
			st.Close()
		}
		log.Fatalf("Failed to start: %v", runErr)
	}
	log.Printf("Done: %d frames, %d announcements", a.FramesProcessed(), a.Announcements())
}
