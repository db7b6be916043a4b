package main

import (
	"log"

	"github.com/eyeremote/eyeremote/internal/config"
	"github.com/eyeremote/eyeremote/internal/controller"
	"github.com/eyeremote/eyeremote/internal/database"
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/internal/notify"
	"github.com/eyeremote/eyeremote/internal/presence/camera"
	"github.com/eyeremote/eyeremote/pkg/detector"
	"github.com/eyeremote/eyeremote/pkg/mediakey"
	"github.com/eyeremote/eyeremote/pkg/window"

	"github.com/pkg/errors"
)

// app bundles the long-lived collaborators shared by the commands.
type app struct {
	cfg      *config.Config
	db       *database.DB
	repo     *database.Repository
	platform window.Platform
	notifier *notify.Notifier
	recorder events.Recorder
}

func openApp(cfg *config.Config) (*app, error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize database")
	}

	platform, err := detector.New()
	if err != nil {
		log.Printf("Window backend unavailable, target gating will fail open: %v", err)
	}

	repo := database.NewRepository(db)
	return &app{
		cfg:      cfg,
		db:       db,
		repo:     repo,
		platform: platform,
		notifier: notify.New(),
		recorder: events.Multi{events.Logger{}, events.NewStore(repo)},
	}, nil
}

func (a *app) backend() string {
	if a.platform == nil {
		return "none"
	}
	return a.platform.GetDisplayServer()
}

func (a *app) cameraConfig() camera.Config {
	cc := camera.DefaultConfig()
	cc.FaceCascade = a.cfg.Camera.FaceCascade
	cc.EyeCascade = a.cfg.Camera.EyeCascade
	cc.MaxTargets = a.cfg.Settings.MaxTargets
	return cc
}

// newController builds a controller from the current settings. Settings are
// fixed per controller, so a settings change needs a new one.
func (a *app) newController() *controller.Controller {
	return controller.New(a.cfg.ControllerOptions(), controller.Deps{
		Oracle:   camera.New(a.cameraConfig()),
		Platform: a.platform,
		Keys:     mediakey.NewRobotGo(),
		Warner:   a.notifier,
		Recorder: a.recorder,
		Errors:   a.repo,
	})
}

func (a *app) close() {
	if a.platform != nil {
		if err := a.platform.Close(); err != nil {
			log.Printf("Error closing window backend: %v", err)
		}
	}
	if err := a.db.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

func mustConfig() *config.Config {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}
