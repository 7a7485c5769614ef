package infinote

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// memStore is an in-memory Store for exercising the tiered and async layers.
type memStore struct {
	mu       sync.Mutex
	data     []byte
	saves    int
	failSave bool
	failLoad bool
}

func (m *memStore) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("save refused")
	}
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memStore) Load(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, errors.New("load refused")
	}
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) snapshot() ([]byte, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...), m.saves
}

func TestBlobStoreRoundtrip(t *testing.T) {
	s := NewBlobStore(filepath.Join(t.TempDir(), "nested", "board.json"))
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(fresh) = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	data, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":2}` {
		t.Errorf("Load = %s, want the overwrite", data)
	}
}

func TestRecordStoreRoundtrip(t *testing.T) {
	s, err := NewRecordStore(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(fresh) = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, []byte(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	// Every save is a full overwrite of the single record.
	if err := s.Save(ctx, []byte(`{"v":2}`)); err != nil {
		t.Fatal(err)
	}
	data, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"v":2}` {
		t.Errorf("Load = %s, want the upsert", data)
	}
}

func TestTieredStoreFallsBackOnSave(t *testing.T) {
	primary := &memStore{failSave: true}
	fallback := &memStore{}
	s := NewTieredStore(primary, fallback, zerolog.Nop())

	if err := s.Save(context.Background(), []byte("doc")); err != nil {
		t.Fatalf("Save = %v, want fallback to absorb it", err)
	}
	if data, _ := fallback.snapshot(); string(data) != "doc" {
		t.Errorf("fallback data = %q, want %q", data, "doc")
	}
}

func TestTieredStoreFallsBackOnLoad(t *testing.T) {
	primary := &memStore{failLoad: true}
	fallback := &memStore{data: []byte("saved")}
	s := NewTieredStore(primary, fallback, zerolog.Nop())

	data, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "saved" {
		t.Errorf("Load = %q, want fallback data", data)
	}
}

func TestTieredStoreMissFallsThrough(t *testing.T) {
	s := NewTieredStore(&memStore{}, &memStore{}, zerolog.Nop())
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load = %v, want ErrNotFound from both tiers", err)
	}
}

func TestTieredStoreBothFailing(t *testing.T) {
	s := NewTieredStore(&memStore{failSave: true}, &memStore{failSave: true}, zerolog.Nop())
	if err := s.Save(context.Background(), []byte("doc")); err == nil {
		t.Error("Save = nil, want error when both tiers fail")
	}
}

func TestSaverFlushesOnClose(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, time.Millisecond, zerolog.Nop())

	doc := NewDocument()
	doc.CreateNote(Vec2{1, 2}, testTime())
	s.Schedule(doc)
	s.Close()

	data, saves := store.snapshot()
	if saves != 1 {
		t.Fatalf("saves = %d, want 1", saves)
	}
	var restored Document
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatal(err)
	}
	if len(restored.Notes) != 1 || restored.Notes[0].Position != (Vec2{1, 2}) {
		t.Errorf("restored = %+v", restored.Notes)
	}
}

func TestSaverSkipsUnchangedSnapshots(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, time.Millisecond, zerolog.Nop())

	doc := NewDocument()
	doc.CreateNote(Vec2{1, 2}, testTime())
	s.Schedule(doc)
	s.Schedule(doc) // identical content, skipped by hash
	s.Close()

	if _, saves := store.snapshot(); saves != 1 {
		t.Errorf("saves = %d, want 1 for identical snapshots", saves)
	}
}

func TestSaverScheduleAfterCloseIsNoOp(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, time.Millisecond, zerolog.Nop())

	doc := NewDocument()
	doc.CreateNote(Vec2{1, 2}, testTime())
	s.Schedule(doc)
	s.Close()

	doc.CreateNote(Vec2{3, 4}, testTime())
	s.Schedule(doc) // must not panic or write

	if _, saves := store.snapshot(); saves != 1 {
		t.Errorf("saves = %d, want 1", saves)
	}
}

func TestSaverCoalescesLatestWins(t *testing.T) {
	store := &memStore{}
	s := NewSaver(store, 50*time.Millisecond, zerolog.Nop())

	doc := NewDocument()
	for i := 0; i < 5; i++ {
		doc.CreateNote(Vec2{float64(i), 0}, testTime())
		s.Schedule(doc)
	}
	s.Close()

	data, _ := store.snapshot()
	var restored Document
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatal(err)
	}
	if len(restored.Notes) != 5 {
		t.Errorf("restored %d notes, want the newest snapshot with 5", len(restored.Notes))
	}
}
