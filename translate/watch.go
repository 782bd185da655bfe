package translate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch reloads the dictionary of a locale whenever its file under dir is
// created or written, and forgets it when the file is removed or renamed. A
// reload also refreshes the shared cache. Watch blocks until ctx is done.
func (t *Translator) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Warnf("translate: failed to close watcher: %v", err)
		}
	}()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.WithField("dir", dir).Info("translate: watching locale directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			locale, ok := localeFromFile(event.Name)
			if !ok {
				continue
			}

			switch {
			case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
				log.WithField("locale", locale).Debug("translate: dictionary changed, reloading")
				t.Dictionary(ctx, locale, true)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				log.WithField("locale", locale).Debug("translate: dictionary removed")
				t.Forget(locale)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			log.WithError(err).Warn("translate: watcher error")
		}
	}
}

func localeFromFile(path string) (string, bool) {
	locale, ok := strings.CutSuffix(filepath.Base(path), ".csv")
	if !ok || locale == "" {
		return "", false
	}
	if checkLocaleName(locale) != nil {
		return "", false
	}
	return locale, true
}
