package service

import (
	"context"
	"errors"

	"sidebar-toolkit/internal/notice"
	"sidebar-toolkit/internal/storage"
)

// sqliteNoticeStore adapts storage.NoticeRepo to NoticeStore.
type sqliteNoticeStore struct {
	repo *storage.NoticeRepo
}

// NewSQLiteNoticeStore returns a NoticeStore backed by the local database.
func NewSQLiteNoticeStore(repo *storage.NoticeRepo) NoticeStore {
	return &sqliteNoticeStore{repo: repo}
}

func toItem(rec *storage.NoticeRecord) *notice.Item {
	return &notice.Item{ID: rec.ID, Title: rec.Title, Content: rec.Content, CreatedAt: rec.CreatedAt}
}

func (s *sqliteNoticeStore) Latest(ctx context.Context) (*notice.Item, error) {
	rec, err := s.repo.Latest(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toItem(rec), nil
}

func (s *sqliteNoticeStore) List(ctx context.Context, limit int) ([]notice.Item, error) {
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]notice.Item, 0, len(records))
	for i := range records {
		items = append(items, *toItem(&records[i]))
	}
	return items, nil
}

func (s *sqliteNoticeStore) Insert(ctx context.Context, title, content string) (*notice.Item, error) {
	rec, err := s.repo.Insert(ctx, title, content)
	if err != nil {
		return nil, err
	}
	return toItem(rec), nil
}
