package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    Settings
		wantErr bool
	}{
		{
			name: "missing file gives defaults",
			file: "absent.json",
			want: DefaultSettings(),
		},
		{
			name:    "json overrides",
			file:    "a.json",
			content: `{"timeout_seconds": 5, "target_app": "vlc", "max_targets": 2}`,
			want: Settings{
				TimeoutSeconds: 5, MaxTargets: 2, TargetApp: "vlc",
				PresentThreshold: 2, AbsentThreshold: 3,
			},
		},
		{
			name:    "unparsable timeout keeps default",
			file:    "b.json",
			content: `{"timeout_seconds": "soon", "device_index": 1}`,
			want: Settings{
				TimeoutSeconds: 3, MaxTargets: 1, TargetApp: "Any", DeviceIndex: 1,
				PresentThreshold: 2, AbsentThreshold: 3,
			},
		},
		{
			name:    "numeric strings and unknown keys",
			file:    "c.json",
			content: `{"absent_threshold": "4", "theme": "dark"}`,
			want: Settings{
				TimeoutSeconds: 3, MaxTargets: 1, TargetApp: "Any",
				PresentThreshold: 2, AbsentThreshold: 4,
			},
		},
		{
			name:    "fractional value keeps default",
			file:    "d.json",
			content: `{"present_threshold": 1.5}`,
			want:    DefaultSettings(),
		},
		{
			name:    "yaml document",
			file:    "e.yaml",
			content: "timeout_seconds: 7\ntarget_app: mpv\n",
			want: Settings{
				TimeoutSeconds: 7, MaxTargets: 1, TargetApp: "mpv",
				PresentThreshold: 2, AbsentThreshold: 3,
			},
		},
		{
			name:    "broken json",
			file:    "f.json",
			content: `{"timeout_seconds": `,
			want:    DefaultSettings(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if tt.content != "" {
				writeFile(t, path, tt.content)
			}
			got, err := LoadFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("LoadFile() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettings_Timeout(t *testing.T) {
	tests := []struct {
		seconds int
		want    time.Duration
	}{
		{0, 3 * time.Second},
		{-4, 3 * time.Second},
		{1, time.Second},
		{30, 30 * time.Second},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		s.TimeoutSeconds = tt.seconds
		if got := s.Timeout(); got != tt.want {
			t.Errorf("Timeout(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestSaveExportImport(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.File = filepath.Join(dir, "nested", "config.json")

	if err := cfg.Set("target_app", "spotify"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := Default()
	reloaded.File = cfg.File
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reloaded.Settings.TargetApp != "spotify" {
		t.Errorf("TargetApp = %q, want spotify", reloaded.Settings.TargetApp)
	}

	exported := filepath.Join(dir, "export.yaml")
	if err := cfg.Export(exported); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if err := cfg.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if cfg.Settings != DefaultSettings() {
		t.Errorf("Settings after Reset = %+v", cfg.Settings)
	}

	if err := cfg.Import(exported); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if cfg.Settings.TargetApp != "spotify" {
		t.Errorf("TargetApp after Import = %q, want spotify", cfg.Settings.TargetApp)
	}

	if err := cfg.Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Import() of a missing file should fail")
	}
}

func TestImport_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.File = filepath.Join(dir, "config.json")

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, `{"max_targets": 0}`)
	if err := cfg.Import(bad); err == nil {
		t.Fatal("Import() should reject max_targets 0")
	}
	if cfg.Settings != DefaultSettings() {
		t.Errorf("Settings changed by a failed import: %+v", cfg.Settings)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"timeout_seconds", "5", false},
		{"target_app", "Any", false},
		{"device_index", "-1", true},
		{"present_threshold", "0", true},
		{"volume", "3", true},
		{"absent_threshold", "x", true},
	}
	for _, tt := range tests {
		cfg := Default()
		err := cfg.Set(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Set(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
		if err != nil && cfg.Settings != DefaultSettings() {
			t.Errorf("Set(%q, %q) changed settings on error", tt.key, tt.value)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EYEREMOTE_TIMEOUT", "9")
	t.Setenv("EYEREMOTE_TARGET_APP", "vlc")
	t.Setenv("EYEREMOTE_POLL_INTERVAL_MS", "200")
	t.Setenv("EYEREMOTE_ABSENT_THRESHOLD", "zero")
	t.Setenv("EYEREMOTE_PID_FILE", "/tmp/test.pid")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Settings.TimeoutSeconds != 9 {
		t.Errorf("TimeoutSeconds = %d, want 9", cfg.Settings.TimeoutSeconds)
	}
	if cfg.Settings.TargetApp != "vlc" {
		t.Errorf("TargetApp = %q, want vlc", cfg.Settings.TargetApp)
	}
	if cfg.Tracker.PollInterval != 200*time.Millisecond {
		t.Errorf("PollInterval = %v, want 200ms", cfg.Tracker.PollInterval)
	}
	if cfg.Settings.AbsentThreshold != 3 {
		t.Errorf("AbsentThreshold = %d, want default 3", cfg.Settings.AbsentThreshold)
	}
	if cfg.Daemon.PIDFile != "/tmp/test.pid" {
		t.Errorf("PIDFile = %q", cfg.Daemon.PIDFile)
	}
}

func TestNew_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"timeout_seconds": 4, "target_app": "mpv"}`)
	t.Setenv("EYEREMOTE_CONFIG", path)
	t.Setenv("EYEREMOTE_TARGET_APP", "vlc")

	cfg := New()
	if cfg.File != path {
		t.Errorf("File = %q, want %q", cfg.File, path)
	}
	if cfg.Settings.TimeoutSeconds != 4 {
		t.Errorf("TimeoutSeconds = %d, want 4 from file", cfg.Settings.TimeoutSeconds)
	}
	if cfg.Settings.TargetApp != "vlc" {
		t.Errorf("TargetApp = %q, want vlc from env", cfg.Settings.TargetApp)
	}

	opts := cfg.ControllerOptions()
	if opts.Timeout != 4*time.Second || opts.Target.Name() != "vlc" {
		t.Errorf("ControllerOptions() = %+v", opts)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeFile(t, path, `{"timeout_seconds": 3}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Settings, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(s Settings) { changes <- s })
	}()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, `{"timeout_seconds": "bad", "max_targets": 0}`) // invalid, skipped
	time.Sleep(150 * time.Millisecond)
	writeFile(t, path, `{"timeout_seconds": 8}`)

	select {
	case s := <-changes:
		if s.TimeoutSeconds != 8 {
			t.Errorf("TimeoutSeconds = %d, want 8", s.TimeoutSeconds)
		}
	case <-time.After(3 * time.Second):
		t.Skip("no file event delivered; filesystem may not support inotify")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Watch() did not return after cancel")
	}
}
