package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/muurk/ledbadge/internal/display"
	"github.com/muurk/ledbadge/internal/library/migrations"
)

// ErrNotFound is returned when no message has the requested name.
var ErrNotFound = errors.New("saved message not found")

// Message is a saved display message.
type Message struct {
	ID           string
	Name         string
	Text         string
	Speed        int
	Mode         string
	Effects      []string
	PlayCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastPlayedAt time.Time
}

// Request converts the message back into a display request.
func (m Message) Request() display.Request {
	return display.NewRequest(m.Text, float64(m.Speed), m.Mode, m.Effects...)
}

// Store provides SQLite-backed persistence for saved messages.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a library database, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0700); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save validates req with v and stores it under name, replacing any
// message with the same name.
func (s *Store) Save(ctx context.Context, v *display.Validator, name string, req display.Request) (Message, error) {
	if s == nil || s.sqlDB == nil {
		return Message{}, fmt.Errorf("storage is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Message{}, fmt.Errorf("message name is required")
	}

	cmd, err := v.ValidateRequest(req)
	if err != nil {
		return Message{}, err
	}

	now := time.Now().UTC()
	msg := Message{
		ID:        uuid.NewString(),
		Name:      name,
		Text:      cmd.Text(),
		Speed:     int(cmd.Speed()),
		Mode:      cmd.Mode().String(),
		Effects:   cmd.Effects().Names(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// On conflict the original id and created_at are kept
	row := s.sqlDB.QueryRowContext(ctx,
		`INSERT INTO messages (id, name, text, speed, mode, effects, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		    text = excluded.text,
		    speed = excluded.speed,
		    mode = excluded.mode,
		    effects = excluded.effects,
		    updated_at = excluded.updated_at
		 RETURNING id, created_at, play_count, last_played_at`,
		msg.ID, msg.Name, msg.Text, msg.Speed, msg.Mode,
		strings.Join(msg.Effects, ","),
		timeToUnixMillis(msg.CreatedAt), timeToUnixMillis(msg.UpdatedAt),
	)

	var createdAt, lastPlayed int64
	if err := row.Scan(&msg.ID, &createdAt, &msg.PlayCount, &lastPlayed); err != nil {
		return Message{}, fmt.Errorf("save message: %w", err)
	}
	msg.CreatedAt = unixMillisToTime(createdAt)
	msg.LastPlayedAt = unixMillisToTime(lastPlayed)
	return msg, nil
}

// Get loads a message by name.
func (s *Store) Get(ctx context.Context, name string) (Message, error) {
	if s == nil || s.sqlDB == nil {
		return Message{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE name = ?`,
		strings.TrimSpace(name),
	)
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Message{}, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// List returns all saved messages ordered by name.
func (s *Store) List(ctx context.Context) ([]Message, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+messageColumns+` FROM messages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

// Delete removes a message by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM messages WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return nil
}

// MarkPlayed bumps the play counter of the named messages.
func (s *Store) MarkPlayed(ctx context.Context, names ...string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	now := timeToUnixMillis(time.Now().UTC())
	for _, name := range names {
		if _, err := s.sqlDB.ExecContext(ctx,
			`UPDATE messages SET play_count = play_count + 1, last_played_at = ? WHERE name = ?`,
			now, strings.TrimSpace(name),
		); err != nil {
			return fmt.Errorf("mark played: %w", err)
		}
	}
	return nil
}

const messageColumns = `id, name, text, speed, mode, effects, play_count, created_at, updated_at, last_played_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var msg Message
	var effects string
	var createdAt, updatedAt, lastPlayed int64
	if err := row.Scan(
		&msg.ID,
		&msg.Name,
		&msg.Text,
		&msg.Speed,
		&msg.Mode,
		&effects,
		&msg.PlayCount,
		&createdAt,
		&updatedAt,
		&lastPlayed,
	); err != nil {
		return Message{}, err
	}
	if effects != "" {
		msg.Effects = strings.Split(effects, ",")
	}
	msg.CreatedAt = unixMillisToTime(createdAt)
	msg.UpdatedAt = unixMillisToTime(updatedAt)
	msg.LastPlayedAt = unixMillisToTime(lastPlayed)
	return msg, nil
}

func timeToUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMilli()
}

func unixMillisToTime(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(v).UTC()
}
