package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/milight-hub/internal/bulb"
	"github.com/nerrad567/milight-hub/internal/infrastructure/database"
	_ "github.com/nerrad567/milight-hub/migrations"
)

// mockRepository is an in-memory Repository with injectable save failures.
type mockRepository struct {
	mu      sync.Mutex
	rows    map[bulb.Key][]byte
	failFor map[bulb.Key]bool
	saves   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[bulb.Key][]byte), failFor: make(map[bulb.Key]bool)}
}

func (m *mockRepository) Save(_ context.Context, key bulb.Key, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failFor[key] {
		return errors.New("disk full")
	}
	m.rows[key] = append([]byte(nil), snapshot...)
	return nil
}

func (m *mockRepository) Load(_ context.Context, key bulb.Key) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.rows[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *mockRepository) LoadAll(_ context.Context) (map[bulb.Key][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[bulb.Key][]byte, len(m.rows))
	for k, v := range m.rows {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepository) Delete(_ context.Context, key bulb.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, key)
	return nil
}

type mockLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *mockLogger) Debug(string, ...any) {}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

var (
	keyA = bulb.Key{DeviceType: "rgb_cct", DeviceID: 0x0002, GroupID: 1}
	keyB = bulb.Key{DeviceType: "rgb_cct", DeviceID: 0x0002, GroupID: 2}
)

func TestStore_GetIsLazy(t *testing.T) {
	s := NewStore(nil)
	if _, ok := s.Lookup(keyA); ok {
		t.Fatal("Lookup() found a state before first reference")
	}
	first := s.Get(keyA)
	if s.Get(keyA) != first {
		t.Error("Get() should return the same state for the same key")
	}
	s.Get(keyB)
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	keys := s.Keys()
	if keys[0] != keyA || keys[1] != keyB {
		t.Errorf("Keys() = %v, want sorted", keys)
	}
}

func TestStore_NilRepository(t *testing.T) {
	s := NewStore(nil)
	s.Get(keyA)
	if n, err := s.Flush(context.Background()); n != 0 || err != nil {
		t.Errorf("Flush() = %d, %v; want 0, nil", n, err)
	}
	if n, err := s.Restore(context.Background()); n != 0 || err != nil {
		t.Errorf("Restore() = %d, %v; want 0, nil", n, err)
	}
}

func TestStore_FlushWritesDirtyOnly(t *testing.T) {
	repo := newMockRepository()
	s := NewStore(repo)
	ctx := context.Background()

	s.Get(keyA).Patch(bulb.Request{State: bulb.String("ON")})
	s.Get(keyB)

	n, err := s.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Flush() wrote %d, want 2", n)
	}

	n, _ = s.Flush(ctx)
	if n != 0 {
		t.Errorf("second Flush() wrote %d, want 0", n)
	}

	s.Get(keyA).Patch(bulb.Request{Level: bulb.Int(20)})
	n, _ = s.Flush(ctx)
	if n != 1 {
		t.Errorf("Flush() after change wrote %d, want 1", n)
	}
	if repo.saves != 3 {
		t.Errorf("repository saves = %d, want 3", repo.saves)
	}
}

func TestStore_FlushFailureStaysDirty(t *testing.T) {
	repo := newMockRepository()
	repo.failFor[keyB] = true
	s := NewStore(repo)

	s.Get(keyA)
	s.Get(keyB)

	n, err := s.Flush(context.Background())
	if err == nil {
		t.Fatal("Flush() expected error")
	}
	if n != 1 {
		t.Errorf("Flush() wrote %d, want 1", n)
	}
	if s.Get(keyA).Dirty() {
		t.Error("saved state should be clean")
	}
	if !s.Get(keyB).Dirty() {
		t.Error("failed state should stay dirty")
	}
}

func TestStore_Restore(t *testing.T) {
	repo := newMockRepository()
	logger := &mockLogger{}
	ctx := context.Background()

	src := NewStore(repo)
	src.Get(keyA).Patch(bulb.Request{State: bulb.String("ON"), Mode: bulb.Int(2)})
	if _, err := src.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	repo.rows[keyB] = []byte("{broken")

	dst := NewStore(repo)
	dst.SetLogger(logger)
	n, err := dst.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Restore() = %d, want 1", n)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %v, want one for the broken snapshot", logger.warns)
	}

	st, ok := dst.Lookup(keyA)
	if !ok {
		t.Fatal("restored state missing")
	}
	if st.Dirty() {
		t.Error("restored state should be clean")
	}
	if m, _ := st.Mode(); m != 2 {
		t.Errorf("Mode() = %d, want 2", m)
	}
}

func setupRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestSQLiteRepository_SaveLoad(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, keyA, []byte(`{"state":true}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, keyA, []byte(`{"state":false}`)); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, err := repo.Load(ctx, keyA)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != `{"state":false}` {
		t.Errorf("Load() = %s, want the overwritten snapshot", got)
	}

	if _, err := repo.Load(ctx, keyB); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_LoadAllDelete(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	high := bulb.Key{DeviceType: "rgb_cct", DeviceID: 0xFFFF, GroupID: 8}
	for _, k := range []bulb.Key{keyA, keyB, high} {
		if err := repo.Save(ctx, k, []byte(`{}`)); err != nil {
			t.Fatalf("Save(%s) error = %v", k, err)
		}
	}

	all, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("LoadAll() returned %d rows, want 3", len(all))
	}
	if _, ok := all[high]; !ok {
		t.Error("LoadAll() lost the 0xFFFF device id")
	}

	if err := repo.Delete(ctx, keyB); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, keyB); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
	all, _ = repo.LoadAll(ctx)
	if len(all) != 2 {
		t.Errorf("LoadAll() after delete returned %d rows, want 2", len(all))
	}
}

func TestSQLiteRepository_InvalidKey(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, bulb.Key{}, []byte(`{}`)); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Save() error = %v, want ErrInvalidKey", err)
	}
	if _, err := repo.Load(ctx, bulb.Key{}); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Load() error = %v, want ErrInvalidKey", err)
	}
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	src := NewStore(repo)
	src.Get(keyA).Patch(bulb.Request{State: bulb.String("ON"), Hue: bulb.Int(240), Saturation: bulb.Int(60)})
	if _, err := src.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	dst := NewStore(repo)
	if _, err := dst.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	want := src.Get(keyA).Project(Fields)
	got := dst.Get(keyA).Project(Fields)
	if len(got) != len(want) || got["hue"] != want["hue"] || got["state"] != "ON" {
		t.Errorf("restored projection = %v, want %v", got, want)
	}
}
