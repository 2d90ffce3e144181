package index

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify, filtering to Perl source files and feeding
// every create/write/remove/rename into a coordinator via the
// notify_change -> clear+reindex -> notify_parse_complete contract.
type Watcher struct {
	w *fsnotify.Watcher
	c *Coordinator
}

// NewWatcher starts watching root (recursively) for Perl source
// changes, reporting them to c.
func NewWatcher(root string, c *Coordinator) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watcher := &Watcher{w: fw, c: c}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fw.Close()
		return nil, err
	}

	go watcher.loop()
	return watcher, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case _, ok := <-w.w.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !isPerlSource(ev.Name) {
		return
	}
	uri := "file://" + ev.Name

	switch {
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		w.c.ApplyFileChange(uri, "", true)
	case ev.Op&fsnotify.Write != 0, ev.Op&fsnotify.Create != 0:
		content, err := os.ReadFile(ev.Name)
		if err != nil {
			return
		}
		w.c.ApplyFileChange(uri, string(content), false)
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.w.Close() }
