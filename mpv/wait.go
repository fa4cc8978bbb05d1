package mpv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/tr1v3r/pkg/log"
)

// WaitForSocket blocks until a unix socket exists at path or ctx is done.
// mpv creates the socket when it starts with --input-ipc-server.
func WaitForSocket(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating socket watcher fail: %w", err)
	}
	defer watcher.Close()

	// watch before checking so a socket created in between is not missed
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s fail: %w", filepath.Dir(path), err)
	}
	if isSocket(path) {
		return nil
	}

	log.CtxInfo(ctx, "waiting for mpv ipc socket %s", path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("socket watcher closed")
			}
			if filepath.Clean(ev.Name) == path && ev.Has(fsnotify.Create) && isSocket(path) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("socket watcher closed")
			}
			log.CtxError(ctx, "socket watcher error: %v", err)
		}
	}
}

func isSocket(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode()&os.ModeSocket != 0
}
