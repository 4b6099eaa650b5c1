package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

const generatePath = "%s/%s:generateContent"

type config interface {
	URL() string
	Model() string
	ApiKey() string
}

// Client posts prebuilt generateContent bodies. Deadlines come from the caller's context.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func New(config config) *Client {
	return &Client{
		endpoint: fmt.Sprintf(generatePath, strings.TrimRight(config.URL(), "/"), config.Model()),
		apiKey:   config.ApiKey(),
		http:     &http.Client{},
	}
}

// GenerateContent returns the raw response body of a 200 reply.
func (c *Client) GenerateContent(ctx context.Context, body []byte) ([]byte, error) {
	if c.apiKey == "" {
		return nil, customerr.ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building gemini request")
	}
	req.Header.Set("Content-Type", "application/json")
	q := req.URL.Query()
	q.Add("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting gemini")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading gemini response")
	}

	if res.StatusCode != http.StatusOK {
		msg := "unknown error"
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
			msg = e.Error.Message
		}
		logger.Warn("gemini error response", zap.Int("status", res.StatusCode), zap.String("message", msg))
		return nil, &customerr.ServiceError{Service: "gemini", Status: res.StatusCode, Message: msg}
	}
	return raw, nil
}
