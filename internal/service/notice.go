package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_notice_store.go -package=mocks sidebar-toolkit/internal/service NoticeStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_notice_service.go -package=mocks sidebar-toolkit/internal/service NoticeService

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/notice"
)

// NoticeListLimit caps the admin history listing.
const NoticeListLimit = 50

// NoticeStore persists announcements.
type NoticeStore interface {
	// Latest returns the newest announcement, or nil when there is none.
	Latest(ctx context.Context) (*notice.Item, error)
	// List returns up to limit announcements, newest first.
	List(ctx context.Context, limit int) ([]notice.Item, error)
	// Insert stores a new announcement and returns it as stored.
	Insert(ctx context.Context, title, content string) (*notice.Item, error)
}

// NoticeService publishes announcements behind a password-derived token.
type NoticeService interface {
	// Login exchanges the admin password for a token.
	Login(ctx context.Context, password string) (string, error)
	// Authorize reports whether token is a valid admin token.
	Authorize(ctx context.Context, token string) error
	// List returns the latest announcements for an authorised admin.
	List(ctx context.Context, token string) ([]notice.Item, error)
	// Publish stores a new announcement for an authorised admin.
	Publish(ctx context.Context, token, title, content string) (*notice.Item, error)
	// Latest returns the newest announcement, or nil. It needs no token.
	Latest(ctx context.Context) (*notice.Item, error)
}

type noticeService struct {
	store  NoticeStore
	secret string
	now    func() time.Time
}

// NewNoticeService creates a NoticeService. adminPassword both checks logins
// and signs tokens.
func NewNoticeService(store NoticeStore, adminPassword string) NoticeService {
	return &noticeService{
		store:  store,
		secret: adminPassword,
		now:    time.Now,
	}
}

func (s *noticeService) Login(ctx context.Context, password string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if s.secret == "" {
		return "", ErrMissingSecret
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(password)), []byte(s.secret)) != 1 {
		logger.WarnContext(ctx, "admin login rejected")
		return "", ErrBadPassword
	}

	token, err := notice.MakeToken(s.secret, notice.NewPayload(s.now()))
	if err != nil {
		return "", WrapError(err, "failed to issue token")
	}
	logger.InfoContext(ctx, "admin logged in")
	return token, nil
}

func (s *noticeService) Authorize(ctx context.Context, token string) error {
	return s.authorize(token)
}

func (s *noticeService) authorize(token string) error {
	if s.secret == "" {
		return ErrMissingSecret
	}
	if _, ok := notice.VerifyToken(s.secret, token, s.now()); !ok {
		return ErrUnauthorized
	}
	return nil
}

func (s *noticeService) List(ctx context.Context, token string) ([]notice.Item, error) {
	if err := s.authorize(token); err != nil {
		return nil, err
	}

	items, err := s.store.List(ctx, NoticeListLimit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list notices", "error", err)
		return nil, WrapError(err, "failed to list notices")
	}
	if items == nil {
		items = []notice.Item{}
	}
	return items, nil
}

func (s *noticeService) Publish(ctx context.Context, token, title, content string) (*notice.Item, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.authorize(token); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" && content == "" {
		return nil, &ValidationError{Field: "content", Message: "empty"}
	}

	item, err := s.store.Insert(ctx, title, content)
	if err != nil {
		logger.ErrorContext(ctx, "failed to publish notice", "error", err)
		return nil, WrapError(err, "failed to publish notice")
	}
	logger.InfoContext(ctx, "notice published", "id", item.ID, "title_length", len(title), "content_length", len(content))
	return item, nil
}

func (s *noticeService) Latest(ctx context.Context) (*notice.Item, error) {
	item, err := s.store.Latest(ctx)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to fetch latest notice", "error", err)
		return nil, WrapError(err, "failed to fetch latest notice")
	}
	return item, nil
}
