package messages

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/assistant"
)

const (
	refreshCommand = "/refresh"

	thinkingMessage      = "Thinking... 🤔"
	stillThinkingMessage = "Still working on your previous question, please wait"
	refreshingMessage    = "Pulling fresh exchange rates..."
	stillRefreshMessage  = "Rates are already being refreshed"
	refreshedMessage     = "Exchange rates updated ✅ See /rates"
	refreshFailedMessage = "Could not update exchange rates, the previous ones are kept"
	somethingWrongPrefix = "Sorry, something wrong happened...\n"
)

type messageSender interface {
	SendMessage(text string, userID int64) error
}

type MessageHandler interface {
	Knows(cmd string) bool
	HandleMessage(ctx context.Context, cmd, arg string) (string, error)
}

type asker interface {
	Ask(ctx context.Context, tail []assistant.Turn) string
}

type refresher interface {
	Refresh(ctx context.Context) error
}

type Message struct {
	Text   string
	UserID int64
}

type completionKind int

const (
	assistantCompletion completionKind = iota
	refreshCompletion
)

// Completion is the result of background work, delivered back to the control loop.
type Completion struct {
	UserID int64
	Text   string
	kind   completionKind
}

// Service holds the conversation and in-flight flags. HandleIncomingMessage
// and HandleCompletion must be called from one goroutine.
type Service struct {
	tgClient     messageSender
	handler      MessageHandler
	assistant    asker
	rates        refresher
	historyTurns int

	conversation assistant.Conversation
	asking       bool
	refreshing   bool
	completions  chan Completion
}

func NewService(tgClient messageSender, handler MessageHandler, assistant asker, rates refresher, historyTurns int) *Service {
	return &Service{
		tgClient:     tgClient,
		handler:      handler,
		assistant:    assistant,
		rates:        rates,
		historyTurns: historyTurns,
		// one slot per kind of background job in flight
		completions: make(chan Completion, 2),
	}
}

func (s *Service) Completions() <-chan Completion {
	return s.completions
}

func (s *Service) HandleIncomingMessage(ctx context.Context, msg Message) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "handleMessage")
	defer span.Finish()

	cmd, arg := parseCommand(msg.Text)
	label := cmd
	if cmd != "" && cmd != refreshCommand && !s.handler.Knows(cmd) {
		label = "unknown"
	}

	start := time.Now()
	err := s.handle(ctx, cmd, arg, msg.UserID)
	elapsed := time.Since(start)

	observeResponse(label, elapsed, err != nil)
	if err != nil {
		ext.Error.Set(span, true)
	}
	return err
}

func (s *Service) handle(ctx context.Context, cmd, arg string, userID int64) error {
	switch cmd {
	case "":
		return s.startAsking(ctx, arg, userID)
	case refreshCommand:
		return s.startRefresh(ctx, userID)
	}

	resp, err := s.handler.HandleMessage(ctx, cmd, arg)
	if err != nil {
		_ = s.tgClient.SendMessage(somethingWrongPrefix+resp, userID)
		return err
	}
	return s.tgClient.SendMessage(resp, userID)
}

func (s *Service) startAsking(ctx context.Context, question string, userID int64) error {
	if question == "" {
		return nil
	}
	if s.asking {
		return s.tgClient.SendMessage(stillThinkingMessage, userID)
	}

	s.conversation.Append(assistant.RoleUser, question)
	tail := s.conversation.Tail(s.historyTurns)
	s.asking = true

	bg := context.WithoutCancel(ctx)
	go func() {
		text := s.assistant.Ask(bg, tail)
		s.completions <- Completion{UserID: userID, Text: text, kind: assistantCompletion}
	}()
	return s.tgClient.SendMessage(thinkingMessage, userID)
}

func (s *Service) startRefresh(ctx context.Context, userID int64) error {
	if s.refreshing {
		return s.tgClient.SendMessage(stillRefreshMessage, userID)
	}
	s.refreshing = true

	bg := context.WithoutCancel(ctx)
	go func() {
		text := refreshedMessage
		if err := s.rates.Refresh(bg); err != nil {
			logger.Error("manual rates refresh failed", zap.Error(err))
			text = refreshFailedMessage
		}
		s.completions <- Completion{UserID: userID, Text: text, kind: refreshCompletion}
	}()
	return s.tgClient.SendMessage(refreshingMessage, userID)
}

// HandleCompletion applies background results to the conversation and replies.
func (s *Service) HandleCompletion(_ context.Context, c Completion) error {
	switch c.kind {
	case assistantCompletion:
		s.asking = false
		s.conversation.Append(assistant.RoleAssistant, c.Text)
	case refreshCompletion:
		s.refreshing = false
	}
	return s.tgClient.SendMessage(c.Text, c.UserID)
}
