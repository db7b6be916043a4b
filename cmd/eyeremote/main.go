package main

import (
	"fmt"
	"os"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "eyeremote"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "start":
		startDaemon()
	case "run":
		runForeground()
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "test":
		testToggle(args)
	case "report":
		generateReport(args)
	case "events":
		listEvents(args)
	case "cameras":
		listCameras()
	case "apps":
		listApps()
	case "config":
		manageConfig(args)
	case "doctor":
		runDoctor()
	case "clear":
		clearDatabase()
	case "version":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`eyeremote - Pause media when you look away

Usage:
  eyeremote <command> [options]

Commands:
  start                      Start attention detection in the background
  run                        Run attention detection in the foreground
  stop                       Stop the background process
  status                     Show detection state and the focused application
  test [seconds]             Send one play/pause toggle after a delay (default 3)
  report [period] [--json]   Summarise pauses and time away (day, week, month)
  events [n]                 List the n most recent events (default 20)
  cameras                    List camera device indices that open
  apps                       List running media applications for target_app
  config show                Show the effective configuration
  config set <key> <value>   Change one setting
  config reset               Restore default settings
  config export <file>       Write settings to a .json or .yaml file
  config import <file>       Load settings from a .json or .yaml file
  doctor                     Check window backends, helpers and send methods
  clear                      Delete all stored events
  version                    Show version information
  help                       Show this help message

Settings (config set):
  timeout_seconds            Seconds away before pausing (default 3)
  target_app                 Application to control, or Any (default Any)
  device_index               Camera device index (default 0)
  max_targets                Faces inspected per frame (default 1)
  present_threshold          Readings to confirm presence (default 2)
  absent_threshold           Readings to confirm absence (default 3)

Environment Variables:
  EYEREMOTE_CONFIG           Settings file path
  EYEREMOTE_DB_PATH          Database file path
  EYEREMOTE_TIMEOUT          Overrides timeout_seconds
  EYEREMOTE_TARGET_APP       Overrides target_app
  EYEREMOTE_DEVICE_INDEX     Overrides device_index
  EYEREMOTE_POLL_INTERVAL_MS Poll interval in milliseconds (10-5000)
  EYEREMOTE_PID_FILE         PID file path
  EYEREMOTE_STATUS_FILE      Status snapshot path
  EYEREMOTE_LOG_FILE         Log file of the background process
  EYEREMOTE_FACE_CASCADE     Haar cascade for faces
  EYEREMOTE_EYE_CASCADE      Haar cascade for eyes

Version: %s
`, version)
}
