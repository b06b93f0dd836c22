package pubsite

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/pubsite/logger"
)

// Watcher calls back when files under its directories change. Bursts of
// events, such as an editor saving through a temp file, are collapsed into
// one call once the tree has been quiet for Debounce.
type Watcher struct {
	Dirs     []string
	Ignore   []string // directories whose events are dropped, e.g. the output
	Debounce time.Duration
	Log      logger.Logger
}

// Run watches until ctx is cancelled. onChange runs on the watcher's
// goroutine, so a slow rebuild delays, rather than overlaps, the next one.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	log := w.Log
	if log == nil {
		log = logger.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	for _, dir := range w.Dirs {
		if err := w.addTree(fsw, dir); err != nil {
			return err
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, ev.Name); err != nil {
						log.Warn("watch directory", logger.String("path", ev.Name), logger.Error(err))
					}
				}
			}
			log.Debug("change", logger.String("path", ev.Name), logger.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", logger.Error(err))
		case <-fire:
			fire = nil
			onChange(ctx)
		}
	}
}

// addTree watches dir and every directory below it. A missing dir is
// skipped so an optional assets directory need not exist.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) || (path != dir && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.Ignore {
		ign, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if abs == ign || strings.HasPrefix(abs, ign+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
