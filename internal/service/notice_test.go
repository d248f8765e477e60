package service_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sidebar-toolkit/internal/notice"
	"sidebar-toolkit/internal/service"
	"sidebar-toolkit/internal/service/mocks"
	"sidebar-toolkit/internal/storage"

	"go.uber.org/mock/gomock"
)

const adminPassword = "hunter2"

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := notice.MakeToken(adminPassword, notice.NewPayload(time.Now()))
	if err != nil {
		t.Fatalf("MakeToken() error = %v", err)
	}
	return tok
}

func TestNoticeService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewNoticeService(mocks.NewMockNoticeStore(ctrl), adminPassword)

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct", password: adminPassword},
		{name: "surrounding whitespace trimmed", password: "  hunter2\n"},
		{name: "wrong", password: "hunter3", wantErr: service.ErrBadPassword},
		{name: "empty", password: "", wantErr: service.ErrBadPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(testContext(), tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if _, ok := notice.VerifyToken(adminPassword, token, time.Now()); !ok {
				t.Error("Login() returned a token that does not verify")
			}
		})
	}
}

func TestNoticeService_ListRequiresToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockNoticeStore(ctrl)
	svc := service.NewNoticeService(store, adminPassword)

	expired, _ := notice.MakeToken(adminPassword, notice.Payload{Exp: time.Now().Add(-time.Minute).UnixMilli()})
	foreign, _ := notice.MakeToken("other", notice.NewPayload(time.Now()))

	for _, tok := range []string{"", "garbage", expired, foreign} {
		if _, err := svc.List(testContext(), tok); !errors.Is(err, service.ErrUnauthorized) {
			t.Errorf("List(%q) error = %v, want ErrUnauthorized", tok, err)
		}
	}

	store.EXPECT().List(gomock.Any(), service.NoticeListLimit).Return(nil, nil)
	items, err := svc.List(testContext(), validToken(t))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if items == nil {
		t.Error("List() returned nil, want empty slice")
	}
}

func TestNoticeService_Publish(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		content   string
		mockSetup func(*mocks.MockNoticeStore)
		checkErr  func(error) bool
	}{
		{
			name:    "trimmed and stored",
			title:   "  Maintenance ",
			content: " tonight\n",
			mockSetup: func(m *mocks.MockNoticeStore) {
				m.EXPECT().
					Insert(gomock.Any(), "Maintenance", "tonight").
					Return(&notice.Item{ID: "1", Title: "Maintenance", Content: "tonight"}, nil)
			},
		},
		{
			name:    "title only",
			title:   "Heads up",
			content: "",
			mockSetup: func(m *mocks.MockNoticeStore) {
				m.EXPECT().Insert(gomock.Any(), "Heads up", "").Return(&notice.Item{ID: "2"}, nil)
			},
		},
		{
			name:      "both empty",
			title:     "  ",
			content:   "\n",
			mockSetup: func(m *mocks.MockNoticeStore) {},
			checkErr: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Message == "empty"
			},
		},
		{
			name:    "store failure keeps its cause",
			title:   "t",
			content: "c",
			mockSetup: func(m *mocks.MockNoticeStore) {
				m.EXPECT().Insert(gomock.Any(), "t", "c").Return(nil, storage.ErrNotFound)
			},
			checkErr: func(err error) bool {
				return errors.Is(err, storage.ErrNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			store := mocks.NewMockNoticeStore(ctrl)
			tt.mockSetup(store)
			svc := service.NewNoticeService(store, adminPassword)

			item, err := svc.Publish(testContext(), validToken(t), tt.title, tt.content)
			if tt.checkErr != nil {
				if err == nil || !tt.checkErr(err) {
					t.Errorf("Publish() error = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			if item == nil || item.ID == "" {
				t.Errorf("Publish() item = %+v", item)
			}
		})
	}
}

func TestNoticeService_PublishUnauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewNoticeService(mocks.NewMockNoticeStore(ctrl), adminPassword)
	if _, err := svc.Publish(testContext(), "nope", "t", "c"); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("Publish() error = %v, want ErrUnauthorized", err)
	}
}

func TestNoticeService_Authorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewNoticeService(mocks.NewMockNoticeStore(ctrl), adminPassword)
	if err := svc.Authorize(testContext(), validToken(t)); err != nil {
		t.Errorf("Authorize() error = %v", err)
	}
	if err := svc.Authorize(testContext(), ""); !errors.Is(err, service.ErrUnauthorized) {
		t.Errorf("Authorize() error = %v, want ErrUnauthorized", err)
	}

	noSecret := service.NewNoticeService(mocks.NewMockNoticeStore(ctrl), "")
	if err := noSecret.Authorize(testContext(), "x"); !errors.Is(err, service.ErrMissingSecret) {
		t.Errorf("Authorize() error = %v, want ErrMissingSecret", err)
	}
}

func TestSQLiteNoticeStore(t *testing.T) {
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	svc := service.NewNoticeService(service.NewSQLiteNoticeStore(storage.NewNoticeRepo(db)), adminPassword)

	latest, err := svc.Latest(testContext())
	if err != nil || latest != nil {
		t.Fatalf("Latest() on empty store = %+v, %v; want nil, nil", latest, err)
	}

	published, err := svc.Publish(testContext(), validToken(t), "Hello", "<b>world</b>")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	latest, err = svc.Latest(testContext())
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest == nil || latest.ID != published.ID || latest.Content != "<b>world</b>" {
		t.Errorf("Latest() = %+v, want %+v", latest, published)
	}

	items, err := svc.List(testContext(), validToken(t))
	if err != nil || len(items) != 1 {
		t.Errorf("List() = %+v, %v", items, err)
	}
}
