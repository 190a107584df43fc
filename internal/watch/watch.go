// Package watch reports changes to descriptor JSON files.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce drops repeat events for the same file inside this window.
const Debounce = 100 * time.Millisecond

// Watcher forwards debounced descriptor changes from fsnotify. Events carries
// the path of each changed *.json file and Errors the watcher's errors; both
// are closed by Close.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	doneCh  chan struct{}
	once    sync.Once
}

// New watches each of dirs (not recursively) until Close is called.
func New(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := newWatcher(w)
	go watcher.run(w.Events, w.Errors)
	return watcher, nil
}

func newWatcher(w *fsnotify.Watcher) *Watcher {
	return &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Close stops the watcher and closes Events and Errors. Later calls return nil.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.doneCh
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run(events <-chan fsnotify.Event, errs <-chan error) {
	defer close(w.doneCh)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isDescriptor(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < Debounce {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			// Errors are queued like events; only Close stops the send.
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func isDescriptor(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}
