// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Reloads the config file into a ConfigStore whenever it changes on disk.

package control

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher follows one config file.
type Watcher struct {
	w     *fsnotify.Watcher
	path  string
	store *ConfigStore
	erC   chan error
	done  chan struct{}
}

// WatchConfig starts watching path. The parent directory is watched so that
// editors replacing the file by rename are followed too.
func WatchConfig(path string, store *ConfigStore) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{w: fw, path: path, store: store, erC: make(chan error, 1), done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		log.Printf("[control] config reload failed, keeping previous: %v", err)
		w.report(err)
		return
	}
	w.store.Set(cfg)
}

func (w *Watcher) report(err error) {
	select {
	case w.erC <- err:
	default:
	}
}

// Errors delivers reload and watch errors; only the latest unread one is kept.
func (w *Watcher) Errors() <-chan error { return w.erC }

// Close stops watching and waits for the loop to exit.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
