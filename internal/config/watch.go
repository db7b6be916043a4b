package config

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// writeSettle gives editors time to finish writing before the file is read.
const writeSettle = 50 * time.Millisecond

// Watch reloads the settings file whenever it changes and calls onChange with
// the new settings when they differ from the previous ones. Invalid documents
// are logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(Settings)) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Printf("Failed to close config watcher: %v", err)
		}
	}()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", dir)
	}

	last, err := LoadFile(path)
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("config watcher closed")
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			time.Sleep(writeSettle)

			next, err := LoadFile(path)
			if err != nil {
				log.Printf("Warning: ignoring config change: %v", err)
				continue
			}
			if err := next.Validate(); err != nil {
				log.Printf("Warning: ignoring invalid config change: %v", err)
				continue
			}
			if next == last {
				continue
			}
			last = next
			log.Printf("Config file %s changed", path)
			onChange(next)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("config watcher closed")
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}
