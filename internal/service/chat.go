package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks sidebar-toolkit/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService sidebar-toolkit/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"sidebar-toolkit/internal/contextutil"
	"sidebar-toolkit/internal/llm"
	"sidebar-toolkit/internal/settings"
)

// MissingConnectionMessage is shown when the chat settings are incomplete.
const MissingConnectionMessage = "Please fill in the API base, API key and model first"

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Chat sends the conversation and returns the reply.
	Chat(ctx context.Context, cfg llm.Config, messages []llm.Message) (string, error)
	// StreamChat sends the conversation and streams the reply via callback.
	StreamChat(ctx context.Context, cfg llm.Config, messages []llm.Message, callback func(chunk string) error) error
	// ListModels returns the models the endpoint offers.
	ListModels(ctx context.Context, cfg llm.Config) ([]string, error)
}

// ChatSettings persists the connection and the transcript.
type ChatSettings interface {
	Connection(ctx context.Context) settings.Connection
	Messages(ctx context.Context) []settings.Message
	SaveMessages(ctx context.Context, msgs []settings.Message)
}

// ChatService runs the chat tool. Model failures never surface as errors:
// they are appended to the transcript as an assistant message.
type ChatService interface {
	// History returns the saved transcript.
	History(ctx context.Context) []settings.Message
	// Send appends message, asks the model and appends the reply.
	Send(ctx context.Context, message string) ([]settings.Message, error)
	// StreamSend is Send with the reply streamed via callback as it arrives.
	StreamSend(ctx context.Context, message string, callback func(chunk string) error) ([]settings.Message, error)
	// Regenerate drops the last assistant message and asks again.
	Regenerate(ctx context.Context) ([]settings.Message, error)
	// Clear empties the transcript.
	Clear(ctx context.Context)
	// Models lists the models of the configured endpoint.
	Models(ctx context.Context) ([]string, error)
}

// chatService implements ChatService.
type chatService struct {
	llmClient LLMClient
	settings  ChatSettings

	// Serialises transcript updates.
	mu sync.Mutex
}

// NewChatService creates a new ChatService.
func NewChatService(llmClient LLMClient, chatSettings ChatSettings) ChatService {
	return &chatService{
		llmClient: llmClient,
		settings:  chatSettings,
	}
}

func (s *chatService) History(ctx context.Context) []settings.Message {
	return s.settings.Messages(ctx)
}

func (s *chatService) Send(ctx context.Context, message string) ([]settings.Message, error) {
	return s.send(ctx, message, nil)
}

func (s *chatService) StreamSend(ctx context.Context, message string, callback func(chunk string) error) ([]settings.Message, error) {
	if callback == nil {
		return nil, &ValidationError{Field: "callback", Message: "cannot be nil"}
	}
	return s.send(ctx, message, callback)
}

func (s *chatService) send(ctx context.Context, message string, callback func(string) error) ([]settings.Message, error) {
	logger := contextutil.LoggerFromContext(ctx)

	message = strings.TrimSpace(message)
	if message == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return nil, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := append(s.settings.Messages(ctx), settings.Message{Role: settings.RoleUser, Content: message})
	s.settings.SaveMessages(ctx, msgs)

	msgs = s.reply(ctx, msgs, callback)
	logger.InfoContext(ctx, "chat message processed", "message_length", len(message), "transcript_length", len(msgs))
	return msgs, nil
}

func (s *chatService) Regenerate(ctx context.Context) ([]settings.Message, error) {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.settings.Messages(ctx)
	last := -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == settings.RoleAssistant {
			last = i
			break
		}
	}
	if last < 0 {
		logger.WarnContext(ctx, "regenerate without an assistant message")
		return nil, &ValidationError{Field: "history", Message: "no assistant message to regenerate"}
	}

	msgs = append(msgs[:last:last], msgs[last+1:]...)
	s.settings.SaveMessages(ctx, msgs)

	msgs = s.reply(ctx, msgs, nil)
	logger.InfoContext(ctx, "chat reply regenerated", "transcript_length", len(msgs))
	return msgs, nil
}

// reply asks the model about msgs, appends the answer (or the failure) and saves.
func (s *chatService) reply(ctx context.Context, msgs []settings.Message, callback func(string) error) []settings.Message {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := s.ask(ctx, msgs, callback)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		content = "Error: " + errorText(err)
	}

	msgs = append(msgs, settings.Message{Role: settings.RoleAssistant, Content: content})
	s.settings.SaveMessages(ctx, msgs)
	return msgs
}

func (s *chatService) ask(ctx context.Context, msgs []settings.Message, callback func(string) error) (string, error) {
	conn := s.settings.Connection(ctx)
	cfg := llm.Config{APIBase: conn.APIBase, APIKey: conn.APIKey, Model: conn.Model}
	if !cfg.Complete() {
		return "", llm.ErrIncompleteConfig
	}

	history := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	if callback == nil {
		return s.llmClient.Chat(ctx, cfg, history)
	}

	var sb strings.Builder
	err := s.llmClient.StreamChat(ctx, cfg, history, func(chunk string) error {
		sb.WriteString(chunk)
		return callback(chunk)
	})
	return sb.String(), err
}

func errorText(err error) string {
	if errors.Is(err, llm.ErrIncompleteConfig) {
		return MissingConnectionMessage
	}
	return err.Error()
}

func (s *chatService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.SaveMessages(ctx, []settings.Message{})
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "chat history cleared")
}

func (s *chatService) Models(ctx context.Context) ([]string, error) {
	conn := s.settings.Connection(ctx)
	models, err := s.llmClient.ListModels(ctx, llm.Config{APIBase: conn.APIBase, APIKey: conn.APIKey, Model: conn.Model})
	if errors.Is(err, llm.ErrIncompleteConfig) {
		return nil, &ValidationError{Field: "connection", Message: "api base and api key are required"}
	}
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to list models", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return models, nil
}
