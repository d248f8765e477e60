package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// createdAtLayout is fixed-width so that created_at sorts as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// NoticeRepo stores announcements.
type NoticeRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewNoticeRepo creates a new NoticeRepo.
func NewNoticeRepo(db *sql.DB) *NoticeRepo {
	return &NoticeRepo{db: db, now: time.Now}
}

// Latest returns the newest announcement, or ErrNotFound when there is none.
func (r *NoticeRepo) Latest(ctx context.Context) (*NoticeRecord, error) {
	records, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return &records[0], nil
}

// List returns up to limit announcements, newest first.
func (r *NoticeRepo) List(ctx context.Context, limit int) ([]NoticeRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, content, created_at FROM announcements ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []NoticeRecord{}
	for rows.Next() {
		var rec NoticeRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		rec.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}

	return records, nil
}

// Insert stores a new announcement with a fresh UUID and returns it.
func (r *NoticeRepo) Insert(ctx context.Context, title, content string) (*NoticeRecord, error) {
	rec := &NoticeRecord{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		CreatedAt: r.now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO announcements (id, title, content, created_at) VALUES (?, ?, ?, ?)",
		rec.ID, rec.Title, rec.Content, rec.CreatedAt.Format(createdAtLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert announcement: %w", err)
	}

	return rec, nil
}

// Get returns one announcement by id.
func (r *NoticeRepo) Get(ctx context.Context, id string) (*NoticeRecord, error) {
	var rec NoticeRecord
	var createdAt string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, content, created_at FROM announcements WHERE id = ?", id,
	).Scan(&rec.ID, &rec.Title, &rec.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query announcement: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &rec, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(createdAtLayout, s)
	if err != nil {
		// Rows written by hand may use SQLite's own format
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return time.Parse(time.RFC3339Nano, s)
		}
	}
	return t, nil
}
