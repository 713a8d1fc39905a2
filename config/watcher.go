package config

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch reloads the config file on every write and hands the fresh
// config to onChange. Only settings the receivers re-read take effect
// at runtime, the rest needs a restart. The returned func stops the
// watcher.
func Watch(logger *slog.Logger, path string, onChange func(*AppConfig)) (func() error, error) {
	if path == "" {
		// Load without an explicit path lets viper discover the file.
		path = viper.ConfigFileUsed()
	}
	if path == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					cnfg, err := Load(path)
					if err != nil {
						logger.Error("error reloading config", slog.Any("error", err))
						continue
					}
					logger.Info("config reloaded", slog.String("path", event.Name))
					onChange(cnfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug("error watching config", slog.Any("error", err))
			}
		}
	}()

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config: %w", err)
	}

	return watcher.Close, nil
}
