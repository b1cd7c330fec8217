package chat

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

// Service handles chat business logic.
type Service struct {
	repo      Repository
	generator Generator
	validate  *validator.Validate
}

// NewService builds a Service instance. A nil generator falls back to the
// echo generator.
func NewService(repo Repository, generator Generator) *Service {
	if generator == nil {
		generator = EchoGenerator{}
	}
	return &Service{repo: repo, generator: generator, validate: validator.New()}
}

// ListSessions returns sessions matching the filters plus the unfiltered
// total.
func (s *Service) ListSessions(ctx context.Context, filters ListFilters) ([]Session, int, error) {
	return s.repo.ListSessions(ctx, filters)
}

// GetSession returns one session.
func (s *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return s.repo.GetSession(ctx, id)
}

// CreateSession opens a new session.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (Session, error) {
	if err := s.validate.Struct(input); err != nil {
		return Session{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return s.repo.CreateSession(ctx, Session{
		ID:      uuid.NewString(),
		Title:   input.Title,
		AgentID: input.AgentID,
	})
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// Messages returns the session transcript.
func (s *Service) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID)
}

// Send stores the user message, generates the assistant reply while emitting
// deltas, and stores the completed reply. It returns the assistant message.
func (s *Service) Send(ctx context.Context, sessionID string, input SendMessageInput, emit func(delta string) error) (Message, error) {
	if err := s.validate.Struct(input); err != nil {
		return Message{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return Message{}, err
	}

	if _, err := s.repo.AppendMessage(ctx, Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      RoleUser,
		Content:   input.Content,
	}); err != nil {
		return Message{}, err
	}

	history, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return Message{}, err
	}

	reply, err := s.generator.Generate(ctx, history, emit)
	if err != nil {
		return Message{}, err
	}

	return s.repo.AppendMessage(ctx, Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      RoleAssistant,
		Content:   reply,
	})
}
