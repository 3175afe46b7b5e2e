package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fuzichat/fuzichat-server/internal/store"
)

const schema = `
	CREATE TABLE IF NOT EXISTS messages (
		id           TEXT PRIMARY KEY,
		author       TEXT NOT NULL DEFAULT '',
		text         TEXT NOT NULL DEFAULT '',
		image_url    TEXT NOT NULL DEFAULT '',
		video_url    TEXT NOT NULL DEFAULT '',
		sticker_id   TEXT NOT NULL DEFAULT '',
		is_moderator BOOLEAN NOT NULL DEFAULT 0,
		is_deleted   BOOLEAN NOT NULL DEFAULT 0,
		created_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at);
`

// SQLiteStore implements store.MessageStore on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and applies the schema.
// Use ":memory:" for an ephemeral store.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert persists a draft and returns the stored record.
func (s *SQLiteStore) Insert(ctx context.Context, draft store.MessageDraft) (*store.Message, error) {
	query := `
		INSERT INTO messages (id, author, text, image_url, video_url, sticker_id, is_moderator, is_deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`
	id := uuid.NewString()
	createdAt := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, query,
		id,
		draft.Author,
		draft.Text,
		draft.ImageURL,
		draft.VideoURL,
		draft.StickerID,
		draft.IsModerator,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	return s.GetByID(ctx, id)
}

// ListRecent returns the most recent limit messages, oldest first.
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]*store.Message, error) {
	query := `
		SELECT id, author, text, image_url, video_url, sticker_id, is_moderator, is_deleted, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	var messages []*store.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// The query returns newest first; history is delivered oldest first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// GetByID retrieves a message by id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*store.Message, error) {
	query := `
		SELECT id, author, text, image_url, video_url, sticker_id, is_moderator, is_deleted, created_at
		FROM messages
		WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	return msg, nil
}

// MarkDeleted applies the soft-delete transform and returns the updated record.
func (s *SQLiteStore) MarkDeleted(ctx context.Context, id, placeholder string) (*store.Message, error) {
	query := `
		UPDATE messages
		SET text = ?, image_url = '', video_url = '', sticker_id = '', is_deleted = 1
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, placeholder, id)
	if err != nil {
		return nil, fmt.Errorf("mark message deleted: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*store.Message, error) {
	var msg store.Message
	err := row.Scan(
		&msg.ID,
		&msg.Author,
		&msg.Text,
		&msg.ImageURL,
		&msg.VideoURL,
		&msg.StickerID,
		&msg.IsModerator,
		&msg.IsDeleted,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return &msg, nil
}
