package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"sidebar-toolkit/internal/llm"
	"sidebar-toolkit/internal/service"
	"sidebar-toolkit/internal/service/mocks"
	"sidebar-toolkit/internal/settings"
	"sidebar-toolkit/internal/storage"

	"go.uber.org/mock/gomock"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testContext returns a context for testing.
func testContext() context.Context {
	return context.Background()
}

// newSettings returns a settings store on a fresh SQLite database.
func newSettings(t *testing.T) *settings.Store {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return settings.New(storage.NewBlobRepo(db))
}

var testConn = settings.Connection{APIBase: "http://llm.local", APIKey: "sk-test", Model: "test-model"}

func TestNewChatService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewChatService(mocks.NewMockLLMClient(ctrl), newSettings(t))
	if svc == nil {
		t.Fatal("NewChatService() returned nil")
	}
}

func TestChatService_Send(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		conn         settings.Connection
		mockSetup    func(*mocks.MockLLMClient)
		wantErr      bool
		checkErrType func(error) bool
		wantLast     string
		wantLen      int
	}{
		{
			name:    "successful chat",
			message: "  Hello, world!  ",
			conn:    testConn,
			mockSetup: func(m *mocks.MockLLMClient) {
				m.EXPECT().
					Chat(gomock.Any(), llm.Config{APIBase: "http://llm.local", APIKey: "sk-test", Model: "test-model"},
						[]llm.Message{{Role: "user", Content: "Hello, world!"}}).
					Return("Hi there!", nil)
			},
			wantLast: "Hi there!",
			wantLen:  2,
		},
		{
			name:      "empty message",
			message:   "   ",
			conn:      testConn,
			mockSetup: func(m *mocks.MockLLMClient) {},
			wantErr:   true,
			checkErrType: func(err error) bool {
				var validationErr *service.ValidationError
				return errors.As(err, &validationErr) && validationErr.Field == "message"
			},
		},
		{
			name:      "missing settings become an inline error",
			message:   "Hello",
			conn:      settings.Connection{APIBase: "http://llm.local"},
			mockSetup: func(m *mocks.MockLLMClient) {},
			wantLast:  "Error: " + service.MissingConnectionMessage,
			wantLen:   2,
		},
		{
			name:    "LLM client error becomes an inline error",
			message: "Hello",
			conn:    testConn,
			mockSetup: func(m *mocks.MockLLMClient) {
				m.EXPECT().
					Chat(gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("HTTP 500"))
			},
			wantLast: "Error: HTTP 500",
			wantLen:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockLLMClient := mocks.NewMockLLMClient(ctrl)
			store := newSettings(t)
			store.SaveConnection(testContext(), tt.conn)
			svc := service.NewChatService(mockLLMClient, store)
			tt.mockSetup(mockLLMClient)

			msgs, err := svc.Send(testContext(), tt.message)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Send() expected error, got nil")
					return
				}
				if tt.checkErrType != nil && !tt.checkErrType(err) {
					t.Errorf("Send() error type mismatch: %v", err)
				}
				if len(store.Messages(testContext())) != 0 {
					t.Error("Send() stored a rejected message")
				}
				return
			}

			if err != nil {
				t.Fatalf("Send() unexpected error: %v", err)
			}
			if len(msgs) != tt.wantLen {
				t.Fatalf("Send() transcript length = %d, want %d", len(msgs), tt.wantLen)
			}
			last := msgs[len(msgs)-1]
			if last.Role != settings.RoleAssistant || last.Content != tt.wantLast {
				t.Errorf("Send() last message = %+v, want assistant %q", last, tt.wantLast)
			}
			if saved := store.Messages(testContext()); len(saved) != len(msgs) {
				t.Errorf("saved transcript length = %d, want %d", len(saved), len(msgs))
			}
		})
	}
}

func TestChatService_SendCarriesHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLMClient := mocks.NewMockLLMClient(ctrl)
	store := newSettings(t)
	store.SaveConnection(testContext(), testConn)
	svc := service.NewChatService(mockLLMClient, store)

	gomock.InOrder(
		mockLLMClient.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Len(1)).Return("one", nil),
		mockLLMClient.EXPECT().Chat(gomock.Any(), gomock.Any(), gomock.Len(3)).Return("two", nil),
	)

	if _, err := svc.Send(testContext(), "first"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	msgs, err := svc.Send(testContext(), "second")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(msgs) != 4 || msgs[3].Content != "two" {
		t.Errorf("transcript = %+v", msgs)
	}
}

func TestChatService_StreamSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLMClient := mocks.NewMockLLMClient(ctrl)
	store := newSettings(t)
	store.SaveConnection(testContext(), testConn)
	svc := service.NewChatService(mockLLMClient, store)

	mockLLMClient.EXPECT().
		StreamChat(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cfg llm.Config, msgs []llm.Message, callback func(chunk string) error) error {
			for _, chunk := range []string{"Hello", " ", "world", "!"} {
				if err := callback(chunk); err != nil {
					return err
				}
			}
			return nil
		})

	var received []string
	msgs, err := svc.StreamSend(testContext(), "Hello", func(chunk string) error {
		received = append(received, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("StreamSend() error = %v", err)
	}
	if strings.Join(received, "") != "Hello world!" {
		t.Errorf("StreamSend() chunks = %v", received)
	}
	if got := msgs[len(msgs)-1].Content; got != "Hello world!" {
		t.Errorf("StreamSend() stored reply = %q", got)
	}
}

func TestChatService_Regenerate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLMClient := mocks.NewMockLLMClient(ctrl)
	store := newSettings(t)
	store.SaveConnection(testContext(), testConn)
	svc := service.NewChatService(mockLLMClient, store)

	if _, err := svc.Regenerate(testContext()); err == nil {
		t.Error("Regenerate() on empty transcript expected error")
	}

	store.SaveMessages(testContext(), []settings.Message{
		{Role: settings.RoleUser, Content: "q"},
		{Role: settings.RoleAssistant, Content: "Error: HTTP 502"},
	})

	mockLLMClient.EXPECT().
		Chat(gomock.Any(), gomock.Any(), []llm.Message{{Role: "user", Content: "q"}}).
		Return("fresh answer", nil)

	msgs, err := svc.Regenerate(testContext())
	if err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	if len(msgs) != 2 || msgs[1].Content != "fresh answer" {
		t.Errorf("Regenerate() transcript = %+v", msgs)
	}
}

func TestChatService_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newSettings(t)
	store.SaveMessages(testContext(), []settings.Message{{Role: settings.RoleUser, Content: "q"}})
	svc := service.NewChatService(mocks.NewMockLLMClient(ctrl), store)

	svc.Clear(testContext())
	if got := svc.History(testContext()); len(got) != 0 {
		t.Errorf("History() after Clear = %+v", got)
	}
}

func TestChatService_Models(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLMClient := mocks.NewMockLLMClient(ctrl)
	store := newSettings(t)
	store.SaveConnection(testContext(), testConn)
	svc := service.NewChatService(mockLLMClient, store)

	mockLLMClient.EXPECT().ListModels(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := svc.Models(testContext())
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("Models() error = %v, want ErrExternalService", err)
	}
}
