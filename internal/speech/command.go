package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// Config selects and tunes the synthesizer.
type Config struct {
	// Command is a custom synthesizer command line. The text is appended as
	// the last argument. Empty selects the platform default.
	Command string `json:"command"`

	// Voice is passed to engines that support voice selection.
	Voice string `json:"voice"`

	// Rate is the speaking rate in words per minute (0 keeps the engine default).
	Rate int `json:"rate"`
}

// CommandSpeaker speaks by running an external synthesizer process and
// waiting for it to exit.
type CommandSpeaker struct {
	name  string
	args  []string
	stdin bool
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// NewCommandSpeaker resolves the synthesizer for cfg on the current platform.
func NewCommandSpeaker(cfg Config) (*CommandSpeaker, error) {
	return newCommandSpeaker(cfg, runtime.GOOS)
}

func newCommandSpeaker(cfg Config, goos string) (*CommandSpeaker, error) {
	if cfg.Command != "" {
		fields := strings.Fields(cfg.Command)
		if len(fields) == 0 {
			return nil, ErrEmptyCommand
		}
		path, err := lookPath(fields[0])
		if err != nil {
			return nil, fmt.Errorf("speech command %q: %w", fields[0], err)
		}
		return &CommandSpeaker{name: path, args: fields[1:]}, nil
	}

	switch goos {
	case "darwin":
		if path, err := lookPath("say"); err == nil {
			args := []string{}
			if cfg.Voice != "" {
				args = append(args, "-v", cfg.Voice)
			}
			if cfg.Rate > 0 {
				args = append(args, "-r", strconv.Itoa(cfg.Rate))
			}
			return &CommandSpeaker{name: path, args: args}, nil
		}

	case "windows":
		if path, err := lookPath("powershell"); err == nil {
			script := "Add-Type -AssemblyName System.Speech; " +
				"$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; "
			if cfg.Voice != "" {
				script += "$s.SelectVoice('" + strings.ReplaceAll(cfg.Voice, "'", "''") + "'); "
			}
			script += "$s.Speak([Console]::In.ReadToEnd())"
			return &CommandSpeaker{
				name:  path,
				args:  []string{"-NoProfile", "-NonInteractive", "-Command", script},
				stdin: true,
			}, nil
		}

	default:
		for _, engine := range []string{"espeak-ng", "espeak"} {
			path, err := lookPath(engine)
			if err != nil {
				continue
			}
			args := []string{}
			if cfg.Voice != "" {
				args = append(args, "-v", cfg.Voice)
			}
			if cfg.Rate > 0 {
				args = append(args, "-s", strconv.Itoa(cfg.Rate))
			}
			return &CommandSpeaker{name: path, args: args}, nil
		}
		if path, err := lookPath("spd-say"); err == nil {
			// -w waits until the message has been spoken
			args := []string{"-w"}
			if cfg.Voice != "" {
				args = append(args, "-y", cfg.Voice)
			}
			return &CommandSpeaker{name: path, args: args}, nil
		}
	}

	return nil, ErrNoSynthesizer
}

// Speak runs the synthesizer and blocks until it exits.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	var cmd *exec.Cmd
	if s.stdin {
		cmd = exec.CommandContext(ctx, s.name, s.args...)
		cmd.Stdin = strings.NewReader(text)
	} else {
		args := append([]string{}, s.args...)
		if acceptsDashDash(s.name) {
			args = append(args, "--")
		}
		args = append(args, text)
		cmd = exec.CommandContext(ctx, s.name, args...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("speech synthesis failed: %w, stderr: %s", err, msg)
		}
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	return nil
}

// String describes the command for logging.
func (s *CommandSpeaker) String() string {
	return strings.TrimSpace(s.name + " " + strings.Join(s.args, " "))
}

// acceptsDashDash reports whether the engine understands "--" as the end of
// options, which keeps text starting with "-" from being read as a flag.
func acceptsDashDash(path string) bool {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	switch base {
	case "say", "spd-say", "espeak", "espeak-ng":
		return true
	}
	return false
}
