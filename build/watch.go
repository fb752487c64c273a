package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/natural"
	"go.uber.org/zap"

	"svgsprite/common"
	"svgsprite/config"
)

// Watcher keeps spritesheet up to date with source directory.
type Watcher struct {
	Root     string
	Debounce time.Duration
	Builder  *Builder
	Config   *config.SpriteConfig
	Log      *zap.Logger
}

// Run watches source directory until context is cancelled. Changes are
// collected until no new events arrive for Debounce interval, then affected
// documents are recompiled (or forgotten) and results flushed.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create watcher: %w", err)
	}
	defer fw.Close()

	if _, err := w.addTree(fw, w.Root); err != nil {
		return fmt.Errorf("unable to watch directory: %w", err)
	}
	w.Log.Info("Watching for changes", zap.String("dir", w.Root), zap.Duration("debounce", w.Debounce))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Warn("Watcher reported error", zap.Error(err))

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || w.Builder.Produced(ev.Name) {
				continue
			}
			w.Log.Debug("Change detected", zap.Stringer("event", ev))

			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					// files could be created before watch was added
					files, err := w.addTree(fw, ev.Name)
					if err != nil {
						w.Log.Warn("Unable to watch directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					for _, f := range files {
						pending[f] = struct{}{}
					}
					timer.Reset(w.Debounce)
					continue
				}
			}
			if w.Config.HasExtension(filepath.Ext(ev.Name)) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				pending[ev.Name] = struct{}{}
				timer.Reset(w.Debounce)
			}

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]struct{})
			if err := w.Refresh(ctx, paths); err != nil {
				w.Log.Error("Unable to refresh spritesheet", zap.Error(err))
			}
		}
	}
}

// addTree adds directory and all its subdirectories to the watch list and
// returns eligible files found there.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.Log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			return fw.Add(path)
		}
		if info.Mode().IsRegular() && w.Config.HasExtension(filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Refresh brings listed paths up to date: existing eligible files are
// recompiled, vanished ones are forgotten together with everything under
// them. Builder outputs are ignored. Spritesheet and affected stubs are
// written out afterwards.
func (w *Watcher) Refresh(ctx context.Context, paths []string) error {
	sort.Slice(paths, func(i, j int) bool {
		return natural.Less(paths[i], paths[j])
	})

	var changed []string
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.Builder.Produced(p) {
			w.Log.Debug("Skipping build output", zap.String("path", p))
			continue
		}

		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			w.Log.Warn("Skipping path outside of source", zap.String("path", p), zap.Error(err))
			continue
		}
		id := filepath.ToSlash(rel)

		fi, err := os.Stat(p)
		switch {
		case os.IsNotExist(err):
			if w.Builder.Remove(id) {
				w.Log.Info("Document removed", zap.String("doc", id))
			} else if n := w.Builder.RemoveTree(id); n > 0 {
				w.Log.Info("Directory removed", zap.String("dir", id), zap.Int("documents", n))
			}
		case err != nil:
			w.Log.Warn("Skipping path", zap.String("path", p), zap.Error(err))
		case fi.Mode().IsRegular() && w.Config.HasExtension(filepath.Ext(p)):
			data, err := os.ReadFile(p)
			if err != nil {
				w.Log.Warn("Unable to read file", zap.String("file", p), zap.Error(err))
				continue
			}
			doc := Document{ID: id, Name: documentName(id, w.Config.TransliterateNames), Origin: p, Data: data}
			if err := w.Builder.Update(doc); err != nil {
				// keep serving previous version
				w.Log.Error("Unable to update document", zap.String("doc", id), zap.Error(err))
				continue
			}
			w.Log.Info("Document updated", zap.String("doc", id))
			changed = append(changed, id)
		}
	}

	if _, err := w.Builder.Flush(); err != nil {
		return err
	}
	if len(changed) > 0 || w.Config.Mode == common.OutputModeAsset {
		if err := w.Builder.WriteStubs(changed...); err != nil {
			return fmt.Errorf("unable to write stubs: %w", err)
		}
	}
	w.Builder.storeDump()
	return nil
}
