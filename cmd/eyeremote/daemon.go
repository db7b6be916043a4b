package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eyeremote/eyeremote/internal/config"
	"github.com/eyeremote/eyeremote/internal/controller"
	"github.com/eyeremote/eyeremote/internal/daemon"
	"github.com/eyeremote/eyeremote/internal/status"

	"github.com/pkg/errors"
)

// Events older than this are pruned when detection starts.
const eventRetention = 90 * 24 * time.Hour

func startDaemon() {
	cfg := mustConfig()

	// Check if already running
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Detection is already running (PID: %d)", pid)
	}

	// Parent process: start the detached child and exit
	if os.Getenv("EYEREMOTE_DAEMON_CHILD") != "1" {
		daemonize(cfg)
		return
	}

	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	if err := serve(cfg, dm); err != nil {
		log.Fatalf("Detection failed: %v", err)
	}
}

func runForeground() {
	cfg := mustConfig()

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Detection is already running (PID: %d)", pid)
	}

	if err := serve(cfg, dm); err != nil {
		log.Fatalf("Detection failed: %v", err)
	}
}

// serve runs detection until SIGINT or SIGTERM. A change to the settings
// file restarts the session with the new settings.
func serve(cfg *config.Config, dm *daemon.Daemon) error {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if err := dm.WritePID(); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	defer dm.RemovePID()
	defer status.Remove(cfg.Status.Path)

	if n, err := a.repo.DeleteOldEvents(time.Now().Add(-eventRetention)); err != nil {
		log.Printf("Failed to prune old events: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d events older than %v", n, eventRetention)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reloads := make(chan config.Settings, 1)
	go func() {
		err := config.Watch(ctx, cfg.File, func(s config.Settings) {
			// keep only the newest settings
			select {
			case <-reloads:
			default:
			}
			reloads <- s
		})
		if err != nil {
			log.Printf("Config hot reload disabled: %v", err)
		}
	}()

	log.Printf("Starting %s %s (backend: %s)", appName, version, a.backend())
	log.Print(cfg.String())

	ctrl, err := startController(a)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Received shutdown signal")
			stopController(ctrl)
			log.Println("Detection stopped successfully")
			return nil

		case s := <-reloads:
			log.Println("Settings changed, restarting detection")
			stopController(ctrl)
			cfg.Settings = s
			config.LoadFromEnv(cfg) // environment still wins over the file
			if ctrl, err = startController(a); err != nil {
				return err
			}
		}
	}
}

func startController(a *app) (*controller.Controller, error) {
	ctrl := a.newController()
	ctrl.OnStatus(status.Writer(a.cfg.Status.Path, a.backend(), log.Printf))
	ctrl.OnStatus(func(st controller.Status) {
		if st.State == controller.Idle && st.LastError != "" {
			log.Printf("Detection is idle: %s", st.LastError)
		}
	})

	if err := ctrl.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start detection")
	}
	return ctrl, nil
}

func stopController(ctrl *controller.Controller) {
	if err := ctrl.Stop(); err != nil && !errors.Is(err, controller.ErrNotRunning) {
		log.Printf("Failed to stop detection: %v", err)
	}
	ctrl.Wait()
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Detection is not running")
		return
	}

	fmt.Printf("Stopping detection (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop detection: %v", err)
	}

	fmt.Println("Detection stopped successfully")
}

func daemonize(cfg *config.Config) {
	env := append(os.Environ(), "EYEREMOTE_DAEMON_CHILD=1")

	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys:   detachedAttr(),
	}

	process, err := os.StartProcess(exe, []string{exe, "start"}, procAttr)
	if err != nil {
		log.Fatalf("Failed to start background process: %v", err)
	}

	fmt.Printf("Detection started (PID: %d)\n", process.Pid)
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
}
