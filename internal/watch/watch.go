// Package watch re-converts localization files as they change in the
// input directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rtl-reshaper/internal/batch"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Converted int
	Failed    int
	LastFile  string
}

// Watcher converts a file once it has been quiet for the debounce period
// after a create or write event.
type Watcher struct {
	driver   *batch.Driver
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	stats   Stats
}

// New starts watching the driver's input directory. Events arriving after
// New returns are picked up by Run.
func New(driver *batch.Driver, debounce time.Duration) (*Watcher, error) {
	opts := driver.Options()
	if err := os.MkdirAll(opts.InputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create input directory: %w", err)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(opts.InputDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", opts.InputDir, err)
	}

	return &Watcher{
		driver:   driver,
		watcher:  fw,
		debounce: debounce,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	log.Info().
		Str("input", w.driver.Options().InputDir).
		Str("output", w.driver.Options().OutputDir).
		Msg("Watching for changes")

	tick := w.debounce / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			log.Error().Err(err).Msg("Watcher error")

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

// Stats returns a snapshot of the watcher's counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	name := filepath.Base(event.Name)
	if !w.driver.Matches(name) {
		return
	}

	log.Debug().Str("file", name).Str("op", event.Op.String()).Msg("Change detected")

	w.mu.Lock()
	w.pending[name] = time.Now()
	w.stats.Events++
	w.mu.Unlock()
}

// flush converts every pending file that has been quiet long enough.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var due []string
	for name, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			due = append(due, name)
			delete(w.pending, name)
		}
	}
	w.mu.Unlock()

	for _, name := range due {
		job := w.driver.JobFor(name)
		if info, err := os.Stat(job.InputPath); err != nil || info.IsDir() {
			continue
		}

		res := w.driver.ProcessFile(ctx, job)

		w.mu.Lock()
		w.stats.LastFile = name
		if res.Err != nil {
			w.stats.Failed++
		} else {
			w.stats.Converted++
		}
		w.mu.Unlock()
	}
}
