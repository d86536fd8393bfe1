// Package config loads pointread settings from a JSON file and command-line
// flags. Flags that were set explicitly override the file; the file overrides
// the built-in defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ayusman/pointread/internal/detector"
	"github.com/ayusman/pointread/internal/ocr"
	"github.com/ayusman/pointread/internal/overlay"
	"github.com/ayusman/pointread/internal/pointing"
	"github.com/ayusman/pointread/internal/speech"
)

const (
	// ErrCodeNotFound means an explicitly named config file does not exist.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid means the file cannot be read or parsed, or a field is out of range.
	ErrCodeInvalid = "config_invalid"
)

// DefaultFile is read from the working directory when -config is not given.
const DefaultFile = "pointread.json"

// Error is a configuration error carrying a machine-readable code.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Path)
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code from err, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Duration is a time.Duration written as a Go duration string ("1.5s")
// or a number of seconds in JSON.
type Duration time.Duration

// UnmarshalJSON accepts "2s" style strings and plain numbers of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(v)
		return nil
	}

	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds: %s", b)
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// DetectorConfig configures the hand landmark service.
type DetectorConfig struct {
	MaxHands               int     `json:"max_hands"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
	ScriptPath             string  `json:"script_path"`
}

// Detector converts to the detector package configuration.
func (c DetectorConfig) Detector() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinDetectionConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
		ScriptPath:      c.ScriptPath,
	}
}

// SpeechConfig configures the synthesizer and repeat suppression.
type SpeechConfig struct {
	speech.Config
	RepeatCooldown Duration `json:"repeat_cooldown"`
	Muted          bool     `json:"muted"`
}

// DisplayConfig configures the preview window.
type DisplayConfig struct {
	Headless    bool           `json:"headless"`
	WindowTitle string         `json:"window_title"`
	Colors      overlay.Colors `json:"colors"`
}

// HookConfig configures announcement hooks.
type HookConfig struct {
	Dir       string `json:"dir"`
	TimeoutMs int    `json:"timeout_ms"`
}

// Config is the effective configuration.
type Config struct {
	CameraID  int     `json:"camera"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Threshold float64 `json:"threshold"`

	Detector DetectorConfig `json:"detector"`
	OCR      ocr.Config     `json:"ocr"`
	Speech   SpeechConfig   `json:"speech"`
	Display  DisplayConfig  `json:"display"`
	Hooks    HookConfig     `json:"hooks"`

	// History is the SQLite file for announcement history; empty disables it.
	History string `json:"history"`
	// Listen is the live view server address; empty disables it.
	Listen string `json:"listen"`
	Tray   bool   `json:"tray"`
}

// Default returns the reference configuration: camera 0 at 640x480, one hand,
// English OCR, a 100 pixel threshold and every optional component off.
func Default() Config {
	det := detector.DefaultConfig()
	return Config{
		CameraID:  0,
		Width:     640,
		Height:    480,
		Threshold: pointing.DefaultThreshold,
		Detector: DetectorConfig{
			MaxHands:               det.MaxHands,
			MinDetectionConfidence: det.MinConfidence,
			MinTrackingConfidence:  det.MinTrackingConf,
		},
		OCR: ocr.DefaultConfig(),
		Display: DisplayConfig{
			WindowTitle: overlay.DefaultWindowTitle,
		},
		Hooks: HookConfig{
			TimeoutMs: 5000,
		},
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	var problems []string
	if c.CameraID < 0 {
		problems = append(problems, fmt.Sprintf("camera must be >= 0, got %d", c.CameraID))
	}
	if c.Width <= 0 || c.Height <= 0 {
		problems = append(problems, fmt.Sprintf("width and height must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.Threshold <= 0 {
		problems = append(problems, fmt.Sprintf("threshold must be positive, got %g", c.Threshold))
	}
	if c.Detector.MaxHands < 1 {
		problems = append(problems, fmt.Sprintf("detector.max_hands must be >= 1, got %d", c.Detector.MaxHands))
	}
	for name, v := range map[string]float64{
		"detector.min_detection_confidence": c.Detector.MinDetectionConfidence,
		"detector.min_tracking_confidence":  c.Detector.MinTrackingConfidence,
		"ocr.min_confidence":                c.OCR.MinConfidence,
	} {
		if v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be within [0,1], got %g", name, v))
		}
	}
	if len(c.OCR.Languages) == 0 {
		problems = append(problems, "ocr.languages must not be empty")
	}
	if c.OCR.Preprocess.Scale <= 0 {
		problems = append(problems, fmt.Sprintf("ocr.preprocess.scale must be positive, got %g", c.OCR.Preprocess.Scale))
	}
	if c.OCR.Preprocess.Contrast < -1 || c.OCR.Preprocess.Contrast > 1 {
		problems = append(problems, fmt.Sprintf("ocr.preprocess.contrast must be within [-1,1], got %g", c.OCR.Preprocess.Contrast))
	}
	if c.Speech.RepeatCooldown < 0 {
		problems = append(problems, "speech.repeat_cooldown must not be negative")
	}
	if c.Speech.Command != "" && strings.TrimSpace(c.Speech.Command) == "" {
		problems = append(problems, "speech.command must not be blank")
	}
	if c.Speech.Rate < 0 {
		problems = append(problems, fmt.Sprintf("speech.rate must not be negative, got %d", c.Speech.Rate))
	}
	if _, err := overlay.DefaultStyle().WithColors(c.Display.Colors); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) == 0 {
		return nil
	}
	// map iteration above is unordered
	sort.Strings(problems)
	return errors.New(strings.Join(problems, "; "))
}

// Load reads the config file and merges flags over it. An explicitly named
// file must exist; the default file is optional.
func Load(f Flags) (Config, error) {
	cfg := Default()

	path := f.ConfigPath
	if path == "" {
		path = DefaultFile
	}

	exists, err := readFile(path, &cfg)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	if !exists && f.ConfigPath != "" {
		return Config{}, &Error{Code: ErrCodeNotFound, Path: path, Err: os.ErrNotExist}
	}

	f.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		src := ""
		if exists {
			src = path
		}
		return Config{}, &Error{Code: ErrCodeInvalid, Path: src, Err: err}
	}
	return cfg, nil
}

// readFile decodes path over cfg. A missing file is not an error.
func readFile(path string, cfg *Config) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, cfg); err != nil {
		return true, err
	}
	return true, nil
}
