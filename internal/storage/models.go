package storage

import "time"

// NoticeRecord is an announcement row.
type NoticeRecord struct {
	ID        string // UUID
	Title     string
	Content   string // raw body, HTML or plain text
	CreatedAt time.Time
}
