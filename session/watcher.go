package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/meysamhadeli/kotpad/syntax"
)

// WatchRules watches the rules file and invokes onReload with the freshly
// loaded RuleSet whenever it is written or recreated. A reload of a now
// broken file delivers nil, which downgrades highlighting to plain, the
// same degradation as the initial load. The watch ends when ctx is
// cancelled.
func WatchRules(ctx context.Context, path string, onReload func(*syntax.RuleSet)) error {
	if path == "" {
		return fmt.Errorf("no rules file to watch")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve rules path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rules watcher: %w", err)
	}
	// Watch the directory: editors replace files on save, which would drop
	// a watch on the file itself.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch rules directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					onReload(syntax.LoadRules(abs))
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}
