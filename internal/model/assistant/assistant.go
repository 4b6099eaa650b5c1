package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
	"max.ks1230/travel-finances-bot/internal/model/reports"
)

const defaultTimeout = 30 * time.Second

const (
	msgNotConfigured = "The assistant is not configured yet. Set GEMINI_API_KEY and restart the bot."
	msgTimeout       = "The assistant took too long to answer. Please try again."
	msgUnreachable   = "Could not reach the assistant service. Check the connection and try again."
	msgNoData        = "Could not read your spending data right now. Please try again."
	msgServiceError  = "The assistant service returned an error (%d): %s"
)

type summarizer interface {
	Summary(ctx context.Context) (reports.Summary, error)
}

type chatClient interface {
	GenerateContent(ctx context.Context, body []byte) ([]byte, error)
}

type config interface {
	generationConfig
	Timeout() time.Duration
}

type Assistant struct {
	reports summarizer
	client  chatClient
	config  config
}

func New(config config, reports summarizer, client chatClient) *Assistant {
	return &Assistant{
		reports: reports,
		client:  client,
		config:  config,
	}
}

// BuildSnapshot reads settings and totals at call time.
func (a *Assistant) BuildSnapshot(ctx context.Context) (Snapshot, error) {
	s, err := a.reports.Summary(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "build snapshot")
	}
	return snapshotOf(s), nil
}

// Ask answers the last user turn of tail. It blocks for at most the
// configured timeout and always returns text to show the user.
func (a *Assistant) Ask(ctx context.Context, tail []Turn) string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "assistant ask")
	defer span.Finish()

	start := time.Now()
	text, status := a.ask(ctx, tail)
	askDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	return text
}

func (a *Assistant) ask(ctx context.Context, tail []Turn) (string, string) {
	snap, err := a.BuildSnapshot(ctx)
	if err != nil {
		logger.Error("assistant snapshot failed", zap.Error(err))
		return msgNoData, "snapshot_error"
	}

	body, err := json.Marshal(BuildPrompt(a.config, snap, tail))
	if err != nil {
		logger.Error("assistant prompt encoding failed", zap.Error(err))
		return FallbackReply, "encode_error"
	}

	timeout := a.config.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := a.client.GenerateContent(ctx, body)
	if err != nil {
		logger.Warn("assistant request failed", zap.Error(err))
		return describe(err)
	}
	return FormatReply(raw), "success"
}

func describe(err error) (string, string) {
	var (
		sErr *customerr.ServiceError
		nErr net.Error
	)
	switch {
	case errors.Is(err, customerr.ErrMissingAPIKey):
		return msgNotConfigured, "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout, "timeout"
	case errors.As(err, &nErr) && nErr.Timeout():
		return msgTimeout, "timeout"
	case errors.As(err, &sErr):
		return fmt.Sprintf(msgServiceError, sErr.Status, sErr.Message), "status_error"
	default:
		return msgUnreachable, "transport_error"
	}
}
