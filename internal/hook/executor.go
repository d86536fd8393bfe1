package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single hook run.
const DefaultTimeout = 5 * time.Second

// maxStderr caps how much hook stderr ends up in an error message.
const maxStderr = 512

// ErrTimeout is returned when a hook outlives the executor timeout.
var ErrTimeout = errors.New("hook timed out")

// Executor runs one hook process per event. The event is written to the
// process stdin as JSON and a Response is read back from stdout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor returns an Executor. A non-positive timeout selects
// DefaultTimeout.
func NewExecutor(timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{timeout: timeout}
}

// Timeout returns the per-run limit.
func (e *Executor) Timeout() time.Duration {
	return e.timeout
}

// Execute runs h for event. The manifest config travels with the event.
func (e *Executor) Execute(ctx context.Context, h *Hook, event Event) (*Response, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	event.Config = h.Manifest.Config
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	cmd := exec.CommandContext(runCtx, h.Executable)
	cmd.Dir = h.Path
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w: %s after %v", ErrTimeout, h.Manifest.Name, e.timeout)
	}
	if runErr != nil {
		if msg := tail(stderr.String(), maxStderr); msg != "" {
			return nil, fmt.Errorf("hook %s failed: %w, stderr: %s", h.Manifest.Name, runErr, msg)
		}
		return nil, fmt.Errorf("hook %s failed: %w", h.Manifest.Name, runErr)
	}

	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hook response from %s: %w", h.Manifest.Name, err)
	}
	return &resp, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return "..." + s[len(s)-n:]
	}
	return s
}
