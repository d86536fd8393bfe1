// Command transcript is an announcement hook that appends every spoken word
// to a text file, one line per announcement.
//
// Build it next to its manifest:
//
//	go build -o hooks/transcript/transcript ./hooks/transcript
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/pointread/internal/hook"
)

// Config is read from the "config" field of hook.json.
type Config struct {
	// Path of the transcript file; relative paths resolve against the hook directory.
	Path string `json:"path"`
}

const defaultPath = "transcript.txt"

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		writeResponse(os.Stdout, hook.Response{Success: false, Error: err.Error()})
	}
}

func run(in io.Reader, out io.Writer) error {
	var event hook.Event
	if err := json.NewDecoder(in).Decode(&event); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}

	if event.Type != hook.EventAnnounce {
		return fmt.Errorf("unsupported event: %s", event.Type)
	}

	cfg := Config{Path: defaultPath}
	if len(event.Config) > 0 {
		if err := json.Unmarshal(event.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := appendLine(cfg.Path, formatLine(event)); err != nil {
		return err
	}

	writeResponse(out, hook.Response{Success: true})
	return nil
}

// formatLine renders "<RFC3339 time>\t<text>\t(<x>,<y>)".
func formatLine(e hook.Event) string {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return fmt.Sprintf("%s\t%s\t(%d,%d)\n", ts.Format(time.RFC3339), e.Text, e.X, e.Y)
}

func appendLine(path, line string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// writeResponse writes a response to stdout.
func writeResponse(w io.Writer, resp hook.Response) {
	json.NewEncoder(w).Encode(resp)
}
