package detector

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PointingLandmarks(0.5, 0.25), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPointingLandmarks(t *testing.T) {
	hand := PointingLandmarks(0.5, 0.25)

	t.Run("index tip at requested position", func(t *testing.T) {
		tip := hand.IndexFingertip()
		if tip.X != 0.5 || tip.Y != 0.25 {
			t.Errorf("index tip = (%f, %f), want (0.5, 0.25)", tip.X, tip.Y)
		}
	})

	t.Run("index finger is the highest point", func(t *testing.T) {
		tipY := hand.Points[IndexTip].Y
		for i, p := range hand.Points {
			if i != IndexTip && p.Y <= tipY {
				t.Errorf("landmark %d at Y=%f is not below the index tip (Y=%f)", i, p.Y, tipY)
			}
		}
	})
}

func TestOpenPalmLandmarks(t *testing.T) {
	landmarks := OpenPalmLandmarks()

	if landmarks.Handedness != "Right" {
		t.Errorf("expected handedness Right, got %s", landmarks.Handedness)
	}

	minExtension := 0.2
	fingers := []struct {
		name     string
		mcp, tip int
	}{
		{"index", IndexMCP, IndexTip},
		{"middle", MiddleMCP, MiddleTip},
		{"ring", RingMCP, RingTip},
		{"pinky", PinkyMCP, PinkyTip},
	}
	for _, f := range fingers {
		ext := landmarks.Points[f.mcp].Y - landmarks.Points[f.tip].Y
		if ext < minExtension {
			t.Errorf("%s finger not extended enough (extension: %f)", f.name, ext)
		}
	}
}

func TestHandConnections(t *testing.T) {
	if len(HandConnections) != 21 {
		t.Errorf("expected 21 skeleton edges, got %d", len(HandConnections))
	}

	touched := make(map[int]bool)
	for _, c := range HandConnections {
		if c.From < 0 || c.From >= NumLandmarks || c.To < 0 || c.To >= NumLandmarks {
			t.Fatalf("connection %v out of range", c)
		}
		touched[c.From] = true
		touched[c.To] = true
	}
	if len(touched) != NumLandmarks {
		t.Errorf("skeleton touches %d landmarks, want %d", len(touched), NumLandmarks)
	}
}

func TestCapHands(t *testing.T) {
	hands := []HandLandmarks{OpenPalmLandmarks(), PointingLandmarks(0.1, 0.1), OpenPalmLandmarks()}

	tests := []struct {
		name string
		max  int
		want int
	}{
		{"cap to one", 1, 1},
		{"cap above count", 5, 3},
		{"zero keeps all", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(capHands(hands, tt.max)); got != tt.want {
				t.Errorf("capHands(%d) len = %d, want %d", tt.max, got, tt.want)
			}
		})
	}
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = filepath.Join(t.TempDir(), "missing.py")

	if _, err := NewMediaPipeDetector(cfg); err == nil {
		t.Error("expected error for missing script")
	}
}

// fakeService answers every frame with one hand whose landmarks all sit at
// (0.25, 0.5) and echoes the received payload length as the score.
const fakeService = `import sys, json, struct
args = sys.argv[1:]
max_hands = int(args[args.index("--max-hands") + 1])
inp = sys.stdin.buffer
while True:
    hdr = inp.read(4)
    if len(hdr) < 4:
        break
    n = struct.unpack(">I", hdr)[0]
    inp.read(n)
    hand = {"points": [{"x": 0.25, "y": 0.5, "z": 0.0}] * 21, "handedness": "Left", "score": float(n)}
    sys.stdout.write(json.dumps({"hands": [hand] * (max_hands + 1)}) + "\n")
    sys.stdout.flush()
`

func TestMediaPipeDetector_Protocol(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}

	script := filepath.Join(t.TempDir(), "fake_service.py")
	if err := os.WriteFile(script, []byte(fakeService), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	cfg := DefaultConfig()
	cfg.ScriptPath = script
	d, err := NewMediaPipeDetector(cfg)
	if err != nil {
		t.Fatalf("NewMediaPipeDetector() error = %v", err)
	}
	d.pythonPath = "python3"
	defer d.Close()

	for i := 0; i < 2; i++ {
		hands, err := d.detectJPEG([]byte("abcde"))
		if err != nil {
			t.Fatalf("detectJPEG() error = %v", err)
		}
		// Service returns MaxHands+1 hands; the detector caps them.
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand after cap, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" || hands[0].Score != 5 {
			t.Errorf("unexpected hand %+v", hands[0])
		}
		if tip := hands[0].IndexFingertip(); tip.X != 0.25 || tip.Y != 0.5 {
			t.Errorf("index tip = %+v, want (0.25, 0.5)", tip)
		}
	}

	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFirstExisting(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	rel := filepath.Join("scripts", serviceScript)

	if got := firstExisting([]string{a, b}, rel); got != "" {
		t.Errorf("firstExisting() with no match = %q, want empty", got)
	}

	want := filepath.Join(b, rel)
	if err := os.MkdirAll(filepath.Dir(want), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(want, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if got := firstExisting([]string{a, b}, rel); got != want {
		t.Errorf("firstExisting() = %q, want %q", got, want)
	}
}
