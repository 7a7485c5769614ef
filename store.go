package infinote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound reports that a store holds no saved document.
var ErrNotFound = errors.New("infinote: no saved document")

// documentKey is the fixed singleton id the whole document is stored under.
const documentKey = "infinote-board"

// Store persists the document as one opaque serialized value.
type Store interface {
	// Save overwrites the stored document.
	Save(ctx context.Context, data []byte) error
	// Load returns the stored document, or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)
	Close() error
}

// --- SQLite record store (primary) ---

// RecordStore is the primary store: a SQLite keyed record table holding the
// entire document under a fixed key.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore opens (creating if needed) the SQLite database at path.
func NewRecordStore(path string) (*RecordStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &RecordStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *RecordStore) initSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS board_document (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`)
	return err
}

// Save upserts the document under the fixed singleton key.
func (s *RecordStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO board_document (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, documentKey, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Load reads the document back, or ErrNotFound when the row is missing.
func (s *RecordStore) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM board_document WHERE id = ?`, documentKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return []byte(data), nil
}

// Close closes the underlying database.
func (s *RecordStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Text-blob file store (fallback) ---

// BlobStore is the fallback store: the serialized document as a single text
// file, written atomically via rename.
type BlobStore struct {
	Path string
}

// NewBlobStore creates a blob store at path. Parent directories are created
// on the first save.
func NewBlobStore(path string) *BlobStore {
	return &BlobStore{Path: path}
}

// Save writes the document to a temp file and renames it into place.
func (s *BlobStore) Save(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(s.Path), err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Load reads the document file, or ErrNotFound when absent.
func (s *BlobStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

// Close is a no-op for the file store.
func (s *BlobStore) Close() error { return nil }

// --- Tiered primary/fallback store ---

// TieredStore tries a primary store and falls back to a secondary on any
// failure or miss. Fallbacks are logged, never surfaced mid-interaction.
type TieredStore struct {
	Primary  Store
	Fallback Store
	Log      zerolog.Logger
}

// NewTieredStore combines a primary and fallback store.
func NewTieredStore(primary, fallback Store, log zerolog.Logger) *TieredStore {
	return &TieredStore{Primary: primary, Fallback: fallback, Log: log}
}

// Save writes to the primary, falling back on failure. An error is returned
// only when both stores fail; that save cycle is then simply lost.
func (s *TieredStore) Save(ctx context.Context, data []byte) error {
	err := s.Primary.Save(ctx, data)
	if err == nil {
		return nil
	}
	s.Log.Warn().Err(err).Msg("primary store save failed, using fallback")
	if ferr := s.Fallback.Save(ctx, data); ferr != nil {
		return fmt.Errorf("primary: %w; fallback: %w", err, ferr)
	}
	return nil
}

// Load tries the primary first, then the fallback on failure or miss.
func (s *TieredStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.Primary.Load(ctx)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.Log.Warn().Err(err).Msg("primary store load failed, trying fallback")
	}
	return s.Fallback.Load(ctx)
}

// Close closes both stores, returning the first error.
func (s *TieredStore) Close() error {
	err := s.Primary.Close()
	if ferr := s.Fallback.Close(); err == nil {
		err = ferr
	}
	return err
}

// --- Async debounced saver ---

const (
	defaultSaveDebounce = 500 * time.Millisecond
	saveTimeout         = 5 * time.Second

	// saveSizeWarn is the serialized document size past which the saver
	// starts warning that the board is outgrowing its storage.
	saveSizeWarn = 4 << 20
)

// Saver issues fire-and-forget document writes. Callers schedule snapshots
// and move on; the UI never waits for a write. Snapshots are issued to the
// store in schedule order and coalesced latest-wins while one is being
// debounced — the document is a full overwrite, so only the newest matters.
// Identical consecutive snapshots (by content hash) are skipped.
type Saver struct {
	store    Store
	log      zerolog.Logger
	debounce time.Duration

	ch         chan []byte
	done       chan struct{}
	lastHash   uint64
	sizeWarned bool
	closed     bool
	once       sync.Once
}

// NewSaver starts the background writer. A zero debounce uses the default.
func NewSaver(store Store, debounce time.Duration, log zerolog.Logger) *Saver {
	if debounce <= 0 {
		debounce = defaultSaveDebounce
	}
	s := &Saver{
		store:    store,
		log:      log,
		debounce: debounce,
		ch:       make(chan []byte, 1),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Schedule queues the document for saving. Best-effort and non-blocking:
// serialization failures are logged and that cycle is dropped. Call from
// the same goroutine as Close; scheduling on a closed saver is a no-op.
func (s *Saver) Schedule(doc *Document) {
	if s.closed {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal document for save")
		return
	}
	h := xxhash.Sum64(data)
	if h == s.lastHash {
		return // nothing changed since the last scheduled snapshot
	}
	s.lastHash = h

	if len(data) > saveSizeWarn && !s.sizeWarned {
		s.sizeWarned = true
		s.log.Warn().Int("bytes", len(data)).Msg("document is getting large")
	} else if len(data) <= saveSizeWarn {
		s.sizeWarned = false
	}

	// Latest-wins: replace any snapshot still waiting in the channel.
	for {
		select {
		case s.ch <- data:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// Close flushes any pending snapshot and stops the writer.
func (s *Saver) Close() {
	s.once.Do(func() {
		s.closed = true
		close(s.ch)
	})
	<-s.done
}

func (s *Saver) run() {
	defer close(s.done)
	for data := range s.ch {
		// Debounce: wait for quiet, adopting any newer snapshot.
	settle:
		for {
			select {
			case newer, ok := <-s.ch:
				if !ok {
					s.write(data)
					return
				}
				data = newer
			case <-time.After(s.debounce):
				break settle
			}
		}
		s.write(data)
	}
}

func (s *Saver) write(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.store.Save(ctx, data); err != nil {
		// Both tiers failed: this cycle is lost; the next mutation retries.
		s.log.Error().Err(err).Msg("document save failed")
	}
}
