// Package watch reloads a ROM file when it changes on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/beanboi7/chyp8/emu/logger"
)

// settle is how long a file must be quiet before it is read again.
const settle = 100 * time.Millisecond

// ROM watches the directory holding path and sends the new contents of
// path each time it is written. The channel is closed, and the watcher
// released, when ctx is done.
func ROM(ctx context.Context, path string) (<-chan []byte, error) {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Watch(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	ch := make(chan []byte)
	go func() {
		defer close(ch)
		defer w.Close()
		var reload <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.Event:
				if ev == nil {
					return
				}
				if filepath.Clean(ev.Name) == path && !ev.IsAttrib() && !ev.IsDelete() {
					reload = time.After(settle)
				}
			case err := <-w.Error:
				if err != nil {
					logger.Logf("watch", "%v", err)
				}
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(path)
				if err != nil {
					logger.Logf("watch", "%v", err)
					break
				}
				logger.Logf("watch", "reloading %s", filepath.Base(path))
				select {
				case ch <- rom:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
