package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/charts/pkg/errors"
)

// Watch calls fn with the reloaded file every time the file at path is
// written or replaced, until ctx is done. Parse errors are passed to fn and
// do not stop the watch.
//
// The parent directory is watched so editors that save by renaming a temp
// file over the original are seen.
func Watch(ctx context.Context, path string, fn func(*File, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap("config.Watch", errors.KindConfig, err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap("config.Watch", errors.KindConfig, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap("config.Watch", errors.KindConfig, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			fn(Load(abs))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, errors.Wrap("config.Watch", errors.KindConfig, err))
		}
	}
}
