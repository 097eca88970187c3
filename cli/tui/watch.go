package tui

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"rtcview/cli/loader"
	"rtcview/schema"
)

// fileReloadedMsg carries the result of re-importing a watched file.
type fileReloadedMsg struct {
	doc *schema.Document
	err error
}

// Watcher re-imports one file whenever it changes on disk. The parent
// directory is watched because editors often replace files instead of
// writing them in place.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
}

func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &Watcher{watcher: w, path: abs, debounce: debounce}, nil
}

func (w *Watcher) Path() string { return w.path }

// Next waits for the next change to the file, lets further events settle for
// the debounce window, and reloads it. It returns nil once the watcher is
// closed.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(event) {
					continue
				}
				w.settle()
				doc, err := loader.LoadReport(w.path)
				log.Debug("file reloaded", "path", w.path, "op", event.Op.String(), "error", err)
				return fileReloadedMsg{doc: doc, err: err}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				log.Warn("file watcher error", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// settle drains events until none arrive for the debounce window.
func (w *Watcher) settle() {
	if w.debounce <= 0 {
		return
	}
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			return
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
