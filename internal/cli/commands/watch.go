package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/layerlint/pkg/scan"
)

// watchCheck runs the check, then re-runs it after Go sources or go.mod
// change. It returns when ctx is cancelled.
func watchCheck(ctx context.Context, cctx *CommandContext, dir string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchTree(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	runOnce := func() {
		out, err := cctx.Check(ctx, dir)
		if err != nil {
			if ctx.Err() == nil {
				cctx.Renderer.Error(err.Error())
			}
			return
		}
		if err := renderCheck(cctx, dir, out); err != nil {
			cctx.Logger.Warn("failed to render check", slog.String("error", err.Error()))
		}
	}
	runOnce()

	// Debounce re-runs; the check itself runs on this goroutine only
	trigger := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				// New directories are watched as they appear
				_ = watchTree(watcher, event.Name)
			}
			cctx.Logger.Debug("change detected", slog.String("path", event.Name), slog.String("op", event.Op.String()))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case <-trigger:
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cctx.Logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchTree adds dir and every scanned subdirectory to the watcher.
// Paths that are not directories are ignored.
func watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && scan.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// relevantChange reports whether an event can change the check result.
func relevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if filepath.Ext(base) == ".go" || base == "go.mod" {
		return true
	}
	// Directories have no extension; created ones must be walked
	return event.Has(fsnotify.Create) && filepath.Ext(base) == ""
}
