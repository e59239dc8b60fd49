package config

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Live holds the current configuration and is safe for concurrent use.
type Live struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewLive wraps cfg.
func NewLive(cfg *Config) *Live {
	return &Live{cfg: cfg}
}

// Get returns the current configuration. Callers must not modify it.
func (l *Live) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// apply swaps in the settings that can change without a restart.
func (l *Live) apply(next *Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cfg := *l.cfg
	cfg.Goals = next.Goals
	cfg.Server.Debug = next.Server.Debug
	l.cfg = &cfg
}

// Watcher reloads the config file into a Live when it changes.
type Watcher struct {
	path    string
	live    *Live
	watcher *fsnotify.Watcher
}

// NewWatcher watches the directory of path, so editors that replace the
// file instead of writing it are seen too.
func NewWatcher(path string, live *Live) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{path: filepath.Clean(path), live: live, watcher: w}, nil
}

// Watch blocks until Close is called.
func (fw *Watcher) Watch() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				log.Printf("Modified file: %s", event.Name)
				fw.reload()
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Config watcher error: %v", err)
		}
	}
}

func (fw *Watcher) reload() {
	cfg, err := LoadConfig(fw.path)
	if err != nil {
		log.Printf("Ignoring invalid config change: %v", err)
		return
	}
	fw.live.apply(cfg)
	log.Printf("Config reloaded: goals version %s, debug %v", cfg.Goals.Version, cfg.Server.Debug)
}

// Close stops the watcher.
func (fw *Watcher) Close() error {
	return fw.watcher.Close()
}
