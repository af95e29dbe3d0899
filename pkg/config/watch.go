package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/termserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// debounceDelay groups the burst of events an editor save produces.
const debounceDelay = 100 * time.Millisecond

// Watch reloads the config at path whenever it changes and passes it to
// onChange. The parent directory is watched so files replaced by rename are
// picked up too. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	log.Debugf("Watching config file: %s", abs)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Config watcher error: %v", err)

		case <-debounce:
			debounce = nil
			if !utils.FileExists(abs) {
				log.Debugf("Config file %s removed, keeping current config", abs)
				continue
			}
			cfg, err := LoadConfig(abs)
			if err != nil {
				log.Warnf("Failed to reload config from %s: %v", abs, err)
				continue
			}
			log.Debugf("Reloaded config from %s", abs)
			onChange(cfg)
		}
	}
}
