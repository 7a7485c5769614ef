package infinote

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// WatchBackups watches a directory for backup JSON files being dropped or
// rewritten and emits each successfully parsed document. Rapid write events
// for the same file are debounced so half-written files settle before the
// import is attempted; files that fail validation are logged and skipped.
// Close the returned io.Closer to stop watching; the channel then closes.
func WatchBackups(dir string, log zerolog.Logger) (<-chan *Document, io.Closer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	docs := make(chan *Document, 4)

	go func() {
		// One debounce timer per file path so concurrent drops don't
		// cancel each other.
		timers := make(map[string]*time.Timer)
		const debounce = 100 * time.Millisecond

		var closed bool
		var mu sync.Mutex

		defer func() {
			mu.Lock()
			closed = true
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
			close(docs)
		}()

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".json") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				path := event.Name

				mu.Lock()
				if t := timers[path]; t != nil {
					t.Stop()
				}
				timers[path] = time.AfterFunc(debounce, func() {
					doc, err := ReadBackupFile(path)

					mu.Lock()
					defer mu.Unlock()
					if closed {
						return
					}
					delete(timers, path)

					if err != nil {
						log.Warn().Err(err).Str("path", path).Msg("ignoring backup file")
						return
					}
					select {
					case docs <- doc:
					default:
						// Consumer is behind, replace the oldest import.
						select {
						case <-docs:
						default:
						}
						select {
						case docs <- doc:
						default:
						}
					}
				})
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("backup watcher error")
			}
		}
	}()

	return docs, watcher, nil
}
