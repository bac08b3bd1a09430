package library

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/muurk/ledbadge/internal/display"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sub", "library.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	_, path := openTestStore(t)

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	var applied int
	if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied migrations = %d, want 2", applied)
	}
}

func TestOpenTwiceIsIdempotent(t *testing.T) {
	_, path := openTestStore(t)

	again, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = again.Close()
}

func TestSaveAndGet(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, nil, "welcome", display.NewRequest("WELCOME", 3, "curtain", "border", "flashing"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("Save() should assign an id")
	}

	got, err := store.Get(ctx, "welcome")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != saved.ID || got.Text != "WELCOME" || got.Speed != 3 || got.Mode != "curtain" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Effects) != 2 || got.Effects[0] != "flashing" || got.Effects[1] != "border" {
		t.Errorf("Effects = %v, want [flashing border]", got.Effects)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	// The stored request must validate back into the same command
	cmd, err := display.NewValidator().ValidateRequest(got.Request())
	if err != nil {
		t.Fatalf("re-validate: %v", err)
	}
	if cmd.Mode() != display.ModeCurtain || !cmd.Effects().Has(display.EffectBorder) {
		t.Errorf("command = %v", cmd)
	}
}

func TestSaveValidatesFirst(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Save(ctx, nil, "bad", display.NewRequest("X", 9, "left"))
	if !display.IsKind(err, display.ErrSpeedOutOfRange) {
		t.Fatalf("Save() error = %v, want SpeedOutOfRange", err)
	}

	limited := &display.Validator{MaxTextLength: 3}
	if _, err := store.Save(ctx, limited, "long", display.NewRequest("TOO LONG", 1, "left")); !display.IsKind(err, display.ErrTextTooLong) {
		t.Errorf("Save() error = %v, want TextTooLong", err)
	}

	if msgs, _ := store.List(ctx); len(msgs) != 0 {
		t.Errorf("invalid messages were stored: %v", msgs)
	}

	if _, err := store.Save(ctx, nil, "", display.NewRequest("X", 1, "left")); err == nil {
		t.Error("Save() should require a name")
	}
}

func TestSaveReplacesByName(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, nil, "greeting", display.NewRequest("HI", 1, "left"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := store.Save(ctx, nil, "greeting", display.NewRequest("HELLO", 5, "right"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replacing should keep the id: %s != %s", second.ID, first.ID)
	}

	got, _ := store.Get(ctx, "greeting")
	if got.Text != "HELLO" || got.Mode != "right" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestListOrderedByName(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"c", "a", "b"} {
		if _, err := store.Save(ctx, nil, name, display.NewRequest(name, 0, "fast")); err != nil {
			t.Fatalf("Save(%s) error = %v", name, err)
		}
	}

	msgs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(msgs) != 3 || msgs[0].Name != "a" || msgs[1].Name != "b" || msgs[2].Name != "c" {
		t.Errorf("List() = %v", msgs)
	}
}

func TestDelete(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, _ = store.Save(ctx, nil, "gone", display.NewRequest("BYE", 2, "drop"))

	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestMarkPlayed(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, _ = store.Save(ctx, nil, "a", display.NewRequest("A", 0, "left"))
	if err := store.MarkPlayed(ctx, "a", "a", "missing"); err != nil {
		t.Fatalf("MarkPlayed() error = %v", err)
	}

	got, _ := store.Get(ctx, "a")
	if got.PlayCount != 2 {
		t.Errorf("PlayCount = %d, want 2", got.PlayCount)
	}
	if got.LastPlayedAt.IsZero() {
		t.Error("LastPlayedAt should be set")
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE x (id INTEGER);\n-- +migrate Down\nDROP TABLE x;\n"
	got := extractUpMigration(content)
	if got != "\nCREATE TABLE x (id INTEGER);\n" {
		t.Errorf("extractUpMigration() = %q", got)
	}
	if extractUpMigration("SELECT 1;") != "SELECT 1;" {
		t.Error("content without markers should be returned unchanged")
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil store = %v", err)
	}
	if _, err := s.List(context.Background()); err == nil {
		t.Error("List() on nil store should fail")
	}
}
