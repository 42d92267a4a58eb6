package config

import (
	"path/filepath"
	"sync"

	"github.com/achilleasa/lumen/log"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher reloads a configuration file whenever it changes on disk. Each
// successfully parsed revision is delivered on the Changes channel; only
// the most recent revision is buffered.
type Watcher struct {
	logger  log.Logger
	path    string
	fsw     *fsnotify.Watcher
	changes chan *Config

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Start watching a local configuration file.
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: could not create watcher")
	}

	// Editors often replace files instead of writing them in place so we
	// watch the parent directory and filter by name.
	path = filepath.Clean(path)
	if err = fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "config: could not watch %q", path)
	}

	w := &Watcher{
		logger:  log.New("config"),
		path:    path,
		fsw:     fsw,
		changes: make(chan *Config, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Get the channel that receives reloaded configurations.
func (w *Watcher) Changes() <-chan *Config {
	return w.changes
}

// Stop watching.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warningf("watch error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warningf("ignoring changes to %q: %v", w.path, err)
		return
	}

	w.logger.Noticef("reloaded %q", w.path)

	// Replace any revision that has not been consumed yet.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- cfg:
	case <-w.done:
	}
}
