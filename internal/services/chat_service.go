// Package services – ChatService
//
// This file implements ChatService, which answers one user message within a
// chat session. It validates the prompt, moves the session into the
// awaiting-reply state, builds the completion payload (persona plus the
// serialized menu, then the whole conversation) and records the assistant
// turn. A failed completion never surfaces as an error: it becomes an
// apology turn so the conversation can continue.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/caked-with-love/internal/completion"
	"github.com/tbourn/caked-with-love/internal/domain"
	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/session"
)

// DefaultPersona opens every system message; the catalog JSON follows it.
const DefaultPersona = "You are a friendly assistant for a home bakery called 'Caked with Love'. " +
	"Always reply in INR. Use the following menu and pricing for all responses:"

// ApologyPrefix starts the assistant turn recorded when a completion fails.
const ApologyPrefix = "Sorry, something went wrong: "

// ChatService coordinates a session's turn log with the completion API.
type ChatService struct {
	Client  completion.Client
	Catalog *menu.Catalog

	// Persona overrides DefaultPersona when non-empty.
	Persona string
	// MaxPromptRunes caps user messages; <= 0 disables the check.
	MaxPromptRunes int

	// Now is the clock used for turn timestamps (tests).
	Now func() time.Time
}

// NewChatService constructs a ChatService with the default persona.
func NewChatService(client completion.Client, catalog *menu.Catalog, maxPromptRunes int) *ChatService {
	return &ChatService{
		Client:         client,
		Catalog:        catalog,
		Persona:        DefaultPersona,
		MaxPromptRunes: maxPromptRunes,
		Now:            time.Now,
	}
}

// Send appends the user's text to sess, asks the completion API for a reply
// given the full history and appends the reply. It returns the assistant turn.
//
// Validation failures (ErrEmptyPrompt, ErrTooLong) and ErrSessionBusy leave
// the session untouched. Any completion failure is converted into an assistant
// turn starting with ApologyPrefix; on return the session is always Idle again.
func (s *ChatService) Send(ctx context.Context, sess *session.Session, text string) (domain.ChatTurn, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(attribute.String("session.id", sess.ID)),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatTurn{}, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(text) > s.MaxPromptRunes {
		return domain.ChatTurn{}, ErrTooLong
	}

	turns, err := sess.Begin(domain.ChatTurn{
		Speaker:   domain.SpeakerUser,
		Text:      text,
		CreatedAt: s.now(),
	})
	if errors.Is(err, session.ErrBusy) {
		return domain.ChatTurn{}, ErrSessionBusy
	}
	if err != nil {
		return domain.ChatTurn{}, err
	}
	span.SetAttributes(attribute.Int("session.turns", len(turns)))

	reply, err := s.Client.Complete(ctx, BuildMessages(s.persona(), s.Catalog, turns))
	if err != nil {
		loggerFrom(ctx).Warn().
			Err(err).
			Str("session_id", sess.ID).
			Str("kind", string(completion.KindOf(err))).
			Bool("timeout", completion.IsTimeout(err)).
			Msg("completion failed")
		span.RecordError(err)
		reply = ApologyPrefix + err.Error()
	}

	out := domain.ChatTurn{
		Speaker:   domain.SpeakerAssistant,
		Text:      reply,
		CreatedAt: s.now(),
	}
	if err := sess.Complete(out); err != nil {
		return domain.ChatTurn{}, err
	}
	return out, nil
}

// BuildMessages returns the completion payload for a conversation: a system
// message (persona, blank line, catalog JSON) followed by every turn in order.
func BuildMessages(persona string, catalog *menu.Catalog, turns []domain.ChatTurn) []completion.Message {
	out := make([]completion.Message, 0, len(turns)+1)
	out = append(out, completion.Message{
		Role:    completion.RoleSystem,
		Content: persona + "\n\n" + catalog.JSON(),
	})
	for _, t := range turns {
		role := completion.RoleUser
		if t.Speaker == domain.SpeakerAssistant {
			role = completion.RoleAssistant
		}
		out = append(out, completion.Message{Role: role, Content: t.Text})
	}
	return out
}

func (s *ChatService) persona() string {
	if s.Persona != "" {
		return s.Persona
	}
	return DefaultPersona
}

func (s *ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// loggerFrom returns the request-scoped logger stored in ctx, falling back to
// the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}
