package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reloads the config file on change and hands the fresh snapshot to
// the registered callback, so hosts can rebuild their scanner with newly
// compiled patterns.
type Watcher struct {
	path     string
	onChange func(*Config)
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// NewWatcher starts watching path. onChange runs on the watcher goroutine;
// callbacks must be quick or hand off to their own goroutine.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{path: path, onChange: onChange, fw: fw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				log.Error().Err(err).Str("path", w.path).Msg("Failed reloading changed config, keeping previous one")
				continue
			}
			log.Info().Str("path", w.path).Msg("Config file changed, reloaded")
			w.onChange(cfg)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Config watcher error")
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
