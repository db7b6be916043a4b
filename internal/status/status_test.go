package status

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eyeremote/eyeremote/internal/controller"
)

func TestWriterAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	write := Writer(path, "x11", t.Logf)
	write(controller.Status{
		State:         controller.Running,
		SessionID:     "abc",
		Target:        "vlc",
		Stable:        true,
		LastPresentAt: now,
		UpdatedAt:     now,
	})

	snap, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if snap.State != "running" || snap.Target != "vlc" || !snap.Stable || snap.Backend != "x11" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if !snap.LastPresentAt.Equal(now) || snap.PID != os.Getpid() {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}

	if err := Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := Remove(path); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected error")
	}
}
