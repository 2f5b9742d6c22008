// Package watcher reloads a file through a Loader whenever it changes on
// disk. Used to hot-reload the message catalog without restarting the bot.
package watcher

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

type Loader interface {
	Load(path string) error
}

type Watcher struct {
	stop chan struct{}
	done chan error
}

// LoadAndWatch loads path once and keeps reloading it on writes. The parent
// directory is watched rather than the file itself: editors typically
// replace the file, which would otherwise drop the watch.
func LoadAndWatch(path string, loader Loader) (*Watcher, error) {
	if err := loader.Load(path); err != nil {
		return nil, errors.Wrap(err, "initial load")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fs watcher")
	}
	if err = fsWatcher.Add(filepath.Dir(path)); err != nil {
		return nil, errors.Wrap(err, "watch dir")
	}

	stop := make(chan struct{})
	done := make(chan error)
	go func() {
		for {
			select {
			case event := <-fsWatcher.Events:
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := loader.Load(path); err != nil {
					log.Println(errors.Wrap(err, "reload watched file"))
				}
			case err := <-fsWatcher.Errors:
				log.Println(errors.Wrap(err, "watch file"))
			case <-stop:
				done <- fsWatcher.Close()
				return
			}
		}
	}()
	return &Watcher{stop: stop, done: done}, nil
}

func (w *Watcher) Close() error {
	close(w.stop)
	return <-w.done
}
