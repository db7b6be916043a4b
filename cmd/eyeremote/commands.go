package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eyeremote/eyeremote/internal/config"
	"github.com/eyeremote/eyeremote/internal/daemon"
	"github.com/eyeremote/eyeremote/internal/database"
	"github.com/eyeremote/eyeremote/internal/presence/camera"
	"github.com/eyeremote/eyeremote/internal/reporter"
	"github.com/eyeremote/eyeremote/internal/status"
	"github.com/eyeremote/eyeremote/pkg/detector"
	"github.com/eyeremote/eyeremote/pkg/utils"
)

// Helper programs used by the Linux window backends and notifications.
var helperPrograms = []string{
	"xdotool", "wmctrl", "xprop", "swaymsg", "hyprctl", "gdbus", "kdotool", "notify-send",
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
		fmt.Printf("Database: %s\n", cfg.Database.Path)
	}

	if running {
		snap, err := status.Read(cfg.Status.Path)
		if err != nil {
			fmt.Printf("\nNo detection snapshot: %v\n", err)
		} else {
			fmt.Printf("\nDetection:\n")
			fmt.Printf("  State: %s\n", snap.State)
			fmt.Printf("  Target: %s\n", snap.Target)
			fmt.Printf("  Backend: %s\n", snap.Backend)
			fmt.Printf("  Stable: %v\n", snap.Stable)
			fmt.Printf("  Paused by eyeremote: %v\n", snap.Paused)
			if !snap.LastPresentAt.IsZero() {
				fmt.Printf("  Last seen: %s ago\n", time.Since(snap.LastPresentAt).Round(time.Second))
			}
			if snap.LastError != "" {
				fmt.Printf("  Last error: %s\n", snap.LastError)
			}
			fmt.Printf("  Updated: %s\n", snap.Timestamp.Format(time.RFC3339))
		}
	}

	if db, err := database.Connect(cfg.Database.Path); err == nil {
		repo := database.NewRepository(db)
		if ev, err := repo.GetLatestEvent(); err == nil && ev != nil {
			fmt.Printf("\nLast Event: %s  [%s] %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Component, ev.Kind)
		}
		if errs, err := repo.GetRecentErrors(3); err == nil && len(errs) > 0 {
			fmt.Printf("\nRecent Errors:\n")
			for _, e := range errs {
				fmt.Printf("  %s  %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.ErrorMsg)
			}
		}
		db.Close()
	}

	// Foreground application is shown even when not running
	det, err := detector.New()
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return
	}
	defer det.Close()

	name, err := det.GetForegroundProcessName()
	if err == nil {
		fmt.Printf("\nCurrent Window:\n")
		fmt.Printf("  App: %s\n", name)
		fmt.Printf("  Media app: %v\n", utils.IsMediaApp(name))
		fmt.Printf("  Display: %s\n", det.GetDisplayServer())
	}
}

func testToggle(args []string) {
	delay := 3 * time.Second
	if len(args) > 0 {
		secs, err := strconv.Atoi(args[0])
		if err != nil || secs < 0 {
			log.Fatalf("Invalid delay %q: expected whole seconds", args[0])
		}
		delay = time.Duration(secs) * time.Second
	}

	cfg := mustConfig()
	a, err := openApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.close()

	ctrl := a.newController()
	fmt.Printf("Target: %s\n", cfg.Settings.TargetApp)
	fmt.Printf("Send methods: %s\n", strings.Join(ctrl.Methods(), " -> "))
	if delay > 0 {
		fmt.Printf("Sending play/pause in %v...\n", delay)
		time.Sleep(delay)
	}

	res := ctrl.SendToggle(true)
	for _, at := range res.Attempts {
		switch {
		case at.Skipped:
			fmt.Printf("  %-12s skipped\n", at.Method)
		case at.Err != nil:
			fmt.Printf("  %-12s failed: %v\n", at.Method, at.Err)
		default:
			fmt.Printf("  %-12s sent\n", at.Method)
		}
	}

	if !res.Sent {
		fmt.Printf("Toggle not sent: %v\n", res.Err)
		os.Exit(1)
	}
	fmt.Printf("Toggle sent via %s\n", res.Method)
}

func generateReport(args []string) {
	periodType := "day"
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
			continue
		}
		periodType = arg
	}

	cfg := config.New()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rep := reporter.New(database.NewRepository(db))

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}

	if jsonOutput {
		jsonStr, err := rep.FormatReportJSON(report)
		if err != nil {
			log.Fatalf("Failed to format JSON: %v", err)
		}
		fmt.Println(jsonStr)
	} else {
		fmt.Println(rep.FormatReportText(report))
	}
}

func listEvents(args []string) {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			log.Fatalf("Invalid event count %q", args[0])
		}
		limit = n
	}

	cfg := config.New()
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	evs, err := database.NewRepository(db).GetRecentEvents(limit)
	if err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}
	if len(evs) == 0 {
		fmt.Println("No events recorded")
		return
	}
	fmt.Print(reporter.FormatEvents(evs))
}

func listCameras() {
	found := camera.ListCameras()
	if len(found) == 0 {
		fmt.Println("No cameras found")
		return
	}
	cfg := config.New()
	for _, idx := range found {
		marker := ""
		if idx == cfg.Settings.DeviceIndex {
			marker = " (selected)"
		}
		fmt.Printf("  Camera %d%s\n", idx, marker)
	}
}

func listApps() {
	det, err := detector.New()
	if err != nil {
		log.Fatalf("Window detection unavailable: %v", err)
	}
	defer det.Close()

	procs, err := det.ListProcesses()
	if err != nil {
		log.Fatalf("Failed to list processes: %v", err)
	}

	seen := map[string]bool{}
	var apps []string
	for _, p := range procs {
		name := utils.CleanProcessName(p.Name)
		if !utils.IsMediaApp(name) || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		apps = append(apps, name)
	}
	sort.Strings(apps)

	if len(apps) == 0 {
		fmt.Println("No media applications running")
		return
	}
	fmt.Println("Running media applications:")
	for _, name := range apps {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("\nUse: eyeremote config set target_app <name>")
}

func manageConfig(args []string) {
	cfg := config.New()

	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "show":
		fmt.Printf("Settings file: %s\n\n", cfg.File)
		settings := cfg.Settings.Map()
		for _, key := range config.Keys {
			fmt.Printf("  %-20s %v\n", key, settings[key])
		}
		fmt.Printf("\nPoll Interval: %v\n", cfg.Tracker.PollInterval)
		fmt.Printf("Database: %s\n", cfg.Database.Path)

	case "set":
		if len(args) != 3 {
			log.Fatalf("Usage: %s config set <key> <value>", appName)
		}
		if err := cfg.Set(args[1], args[2]); err != nil {
			log.Fatalf("Failed to change setting: %v", err)
		}
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to save settings: %v", err)
		}
		fmt.Printf("%s = %s\n", args[1], args[2])

	case "reset":
		if err := cfg.Reset(); err != nil {
			log.Fatalf("Failed to reset settings: %v", err)
		}
		fmt.Println("Settings restored to defaults")

	case "export":
		if len(args) != 2 {
			log.Fatalf("Usage: %s config export <file>", appName)
		}
		if err := cfg.Export(args[1]); err != nil {
			log.Fatalf("Failed to export settings: %v", err)
		}
		fmt.Printf("Settings exported to %s\n", args[1])

	case "import":
		if len(args) != 2 {
			log.Fatalf("Usage: %s config import <file>", appName)
		}
		if err := cfg.Import(args[1]); err != nil {
			log.Fatalf("Failed to import settings: %v", err)
		}
		fmt.Printf("Settings imported from %s\n", args[1])

	default:
		log.Fatalf("Unknown config command: %s", sub)
	}
}

func runDoctor() {
	cfg := mustConfig()

	fmt.Printf("Display server: %s\n", detector.DetectDisplayServer())

	a, err := openApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.close()

	if a.platform == nil {
		fmt.Println("Window backend: unavailable (target gating fails open)")
	} else {
		fmt.Printf("Window backend: %s\n", detector.Describe(a.platform))
		if name, err := a.platform.GetForegroundProcessName(); err != nil {
			fmt.Printf("  Foreground query: failed: %v\n", err)
		} else {
			fmt.Printf("  Foreground query: ok (%s)\n", name)
		}
	}

	fmt.Println("\nHelper programs:")
	for _, name := range helperPrograms {
		if path, err := exec.LookPath(name); err == nil {
			fmt.Printf("  %-12s %s\n", name, path)
		} else {
			fmt.Printf("  %-12s not found\n", name)
		}
	}

	fmt.Printf("\nSend methods: %s\n", strings.Join(a.newController().Methods(), " -> "))

	fmt.Println("\nDetector files:")
	for _, path := range []string{cfg.Camera.FaceCascade, cfg.Camera.EyeCascade} {
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("  %s: missing\n", path)
		} else {
			fmt.Printf("  %s: ok\n", path)
		}
	}

	fmt.Printf("\nCameras: %v\n", camera.ListCameras())
	fmt.Printf("Settings file: %s\n", cfg.File)
	fmt.Printf("Database: %s\n", cfg.Database.Path)
}

func clearDatabase() {
	cfg := config.New()

	// Prompt for confirmation
	fmt.Print("This will delete all recorded events. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.NewRepository(db).Clear(); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}

	fmt.Println("Database cleared successfully")
}
