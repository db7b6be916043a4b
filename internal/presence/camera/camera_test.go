package camera

import (
	"os"
	"testing"

	"github.com/eyeremote/eyeremote/internal/presence"

	"github.com/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Width != 640 || cfg.Height != 480 || cfg.FPS != 30 {
		t.Errorf("capture = %dx%d@%d, want 640x480@30", cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.MaxTargets != 1 {
		t.Errorf("MaxTargets = %d, want 1", cfg.MaxTargets)
	}
}

func TestNewClampsMaxTargets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTargets = 0
	if o := New(cfg); o.config.MaxTargets != 1 {
		t.Errorf("MaxTargets = %d, want 1", o.config.MaxTargets)
	}
}

func TestOpen_MissingCascade(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FaceCascade = "/nonexistent/face.xml"

	_, err := New(cfg).Open(0)
	if !errors.Is(err, presence.ErrInit) {
		t.Fatalf("Open() error = %v, want ErrInit", err)
	}
}

// Needs a webcam and the system cascades; skipped otherwise.
func TestOpen_RealCamera(t *testing.T) {
	if _, err := os.Stat(DefaultFaceCascade); err != nil {
		t.Skip("Haar cascades not installed")
	}
	if len(ListCameras()) == 0 {
		t.Skip("no camera available")
	}

	src, err := New(DefaultConfig()).Open(0)
	if err != nil {
		t.Skipf("camera not usable: %v", err)
	}
	defer src.Close()

	present, err := src.Poll()
	if err != nil {
		t.Logf("Poll() error = %v", err)
	}
	t.Logf("presence: %v", present)

	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if _, err := src.Poll(); !errors.Is(err, presence.ErrPoll) {
		t.Errorf("Poll() after Close error = %v, want ErrPoll", err)
	}
}
