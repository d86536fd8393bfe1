package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// Flags holds parsed command-line values and which of them were set.
type Flags struct {
	ConfigPath string

	CameraID       int
	Threshold      float64
	MaxHands       int
	Lang           string
	Headless       bool
	Listen         string
	History        string
	Hooks          string
	Tray           bool
	RepeatCooldown time.Duration
	SpeechCmd      string

	set map[string]bool
}

// Set reports whether the named flag was given on the command line.
func (f Flags) Set(name string) bool {
	return f.set[name]
}

// ParseFlags parses args (without the program name). Usage goes to out.
func ParseFlags(name string, args []string, out io.Writer) (Flags, error) {
	var f Flags

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringVar(&f.ConfigPath, "config", "", "path to JSON config file (default ./"+DefaultFile+" if present)")
	fs.IntVar(&f.CameraID, "camera", 0, "camera device index")
	fs.Float64Var(&f.Threshold, "threshold", 0, "max fingertip to word distance in pixels (default 100)")
	fs.IntVar(&f.MaxHands, "max-hands", 0, "maximum number of hands to track (default 1)")
	fs.StringVar(&f.Lang, "lang", "", "comma-separated Tesseract languages (default eng)")
	fs.BoolVar(&f.Headless, "headless", false, "do not open a preview window")
	fs.StringVar(&f.Listen, "listen", "", "serve live view and history on this address, e.g. 127.0.0.1:8750")
	fs.StringVar(&f.History, "history", "", "record announcements in this SQLite file")
	fs.StringVar(&f.Hooks, "hooks", "", "run announcement hooks found in this directory")
	fs.BoolVar(&f.Tray, "tray", false, "show a system tray menu (implies -headless)")
	fs.DurationVar(&f.RepeatCooldown, "repeat-cooldown", 0, "suppress repeating the same word within this window (0 repeats every frame)")
	fs.StringVar(&f.SpeechCmd, "speech-cmd", "", "custom synthesizer command; the word is appended as last argument")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	if fs.NArg() > 0 {
		return Flags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, nil
}

// apply copies explicitly set flags onto cfg.
func (f Flags) apply(cfg *Config) {
	if f.Set("camera") {
		cfg.CameraID = f.CameraID
	}
	if f.Set("threshold") {
		cfg.Threshold = f.Threshold
	}
	if f.Set("max-hands") {
		cfg.Detector.MaxHands = f.MaxHands
	}
	if f.Set("lang") {
		cfg.OCR.Languages = splitList(f.Lang)
	}
	if f.Set("headless") {
		cfg.Display.Headless = f.Headless
	}
	if f.Set("listen") {
		cfg.Listen = f.Listen
	}
	if f.Set("history") {
		cfg.History = f.History
	}
	if f.Set("hooks") {
		cfg.Hooks.Dir = f.Hooks
	}
	if f.Set("tray") {
		cfg.Tray = f.Tray
	}
	if f.Set("repeat-cooldown") {
		cfg.Speech.RepeatCooldown = Duration(f.RepeatCooldown)
	}
	if f.Set("speech-cmd") {
		cfg.Speech.Command = f.SpeechCmd
	}

	// the tray owns the main thread, which a preview window also needs
	if cfg.Tray {
		cfg.Display.Headless = true
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '+' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
