package discovery

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes manifest roots and reports changed candidate ids so the
// registry can reload them. Only manifest writes and creations trigger
// notifications; removals are ignored because a vanished manifest simply
// stops being discovered on the next full scan.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(id string)
	logger   *zap.Logger
	done     chan struct{}
}

// NewWatcher starts watching the given roots and their first-level category
// folders. onChange receives the candidate id derived from the changed
// manifest path.
func NewWatcher(roots []string, onChange func(id string), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}

	for _, root := range roots {
		if err := fw.Add(root); err != nil {
			logger.Warn("cannot watch root", zap.String("root", root), zap.Error(err))
			continue
		}
		for _, sub := range categoryFolders(root) {
			if err := fw.Add(sub); err != nil {
				logger.Warn("cannot watch category folder",
					zap.String("folder", sub), zap.Error(err))
			}
		}
	}

	go w.run(roots)
	return w, nil
}

func (w *Watcher) run(roots []string) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			id := candidateIDForPath(event.Name, roots)
			if id == "" {
				continue
			}
			w.logger.Info("manifest changed",
				zap.String("unit", id), zap.String("path", event.Name))
			w.onChange(id)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// candidateIDForPath derives the candidate id a manifest path would be
// discovered under: the file name, prefixed by the category folder when the
// manifest sits one level below a root.
func candidateIDForPath(path string, roots []string) string {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		name := strings.TrimSuffix(parts[len(parts)-1], ".json")
		switch len(parts) {
		case 1:
			if isReserved(parts[0]) {
				return ""
			}
			return name
		case 2:
			if isReserved(parts[0]) || isReserved(parts[1]) {
				return ""
			}
			return parts[0] + "." + name
		case 3:
			// category/pkg/manifest.json — packaged candidate.
			if parts[2] != PackageMarker || isReserved(parts[0]) || isReserved(parts[1]) {
				return ""
			}
			return parts[0] + "." + parts[1]
		}
	}
	return ""
}

func categoryFolders(root string) []string {
	matches, err := filepath.Glob(filepath.Join(root, "*"))
	if err != nil {
		return nil
	}
	var out []string
	for _, m := range matches {
		if isReserved(filepath.Base(m)) {
			continue
		}
		if info, err := filepath.Glob(filepath.Join(m, "*")); err == nil && info != nil {
			out = append(out, m)
		}
	}
	return out
}
