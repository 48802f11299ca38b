package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/neuralmap-cli/internal/adapters/driven/source"
	"github.com/custodia-labs/neuralmap-cli/internal/core/ports/driven"
	"github.com/custodia-labs/neuralmap-cli/internal/logger"
)

// DefaultDebounce is how long the watcher waits for more changes before signalling.
const DefaultDebounce = 200 * time.Millisecond

// Verify interface compliance.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// Watcher signals when files under a project directory change.
// Directories are watched recursively; new directories are added as they appear.
type Watcher struct {
	debounce time.Duration
}

// NewWatcher creates a watcher. A non-positive debounce uses DefaultDebounce.
func NewWatcher(debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{debounce: debounce}
}

// Watch starts watching location. The returned channel receives one value per
// debounced batch of changes and is closed when ctx is done. Signals are
// coalesced: a slow reader sees at most one pending value.
func (w *Watcher) Watch(ctx context.Context, location string) (<-chan struct{}, error) {
	root, err := resolveRoot(location)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := addRecursive(fw, root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	out := make(chan struct{}, 1)
	go w.loop(ctx, fw, root, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, root string, out chan<- struct{}) {
	defer close(out)
	defer fw.Close()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if ignored(root, event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(fw, event.Name); err != nil {
						logger.Debug("watch %s: %v", event.Name, err)
					}
				}
			}
			logger.Debug("change detected: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case out <- struct{}{}:
			default:
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error: %v", err)
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && source.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

// ignored reports whether a changed path falls under a skipped entry.
func ignored(root, name string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	return source.SkipPath(filepath.ToSlash(rel))
}
