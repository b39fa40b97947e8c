package catalog

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors a catalog file and calls onChange with the freshly
// loaded snapshot each time it is rewritten. It runs until ctx is
// cancelled.
//
// A failed reload (unreadable file, invalid tiers) is logged and the
// previous snapshot stays active; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Catalog)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	log.Printf("catalog: watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save atomically via rename, which shows up
			// as Create rather than Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cat, err := Load(path)
			if err != nil {
				log.Printf("catalog: reload failed, keeping previous snapshot: %v", err)
				continue
			}

			log.Printf("catalog: reloaded %s", path)
			onChange(cat)

			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("catalog: watcher error: %v", err)
		}
	}
}
