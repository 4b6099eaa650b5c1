package ratesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/logger"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

const (
	latestRatesPath = "%s/%s/latest/%s"
	successResult   = "success"
	defaultTimeout  = 10 * time.Second
)

type config interface {
	URL() string
	ApiKey() string
	Timeout() time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type ratesResponse struct {
	Result    string             `json:"result"`
	ErrorType string             `json:"error-type"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"conversion_rates"`
}

func New(config config) *Client {
	timeout := config.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(config.URL(), "/"),
		apiKey:  config.ApiKey(),
		http:    &http.Client{Timeout: timeout},
	}
}

// GetRates returns units of each currency per one unit of base.
func (c *Client) GetRates(ctx context.Context, base currency.Code) (map[string]float64, error) {
	if c.apiKey == "" {
		return nil, customerr.ErrMissingAPIKey
	}

	url := fmt.Sprintf(latestRatesPath, c.baseURL, c.apiKey, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building rates request")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "requesting rates")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading rates response")
	}
	logger.Debug("new response from rates api", zap.Int("status", res.StatusCode), zap.Int("bytes", len(body)))

	if res.StatusCode != http.StatusOK {
		return nil, &customerr.ServiceError{Service: "rates api", Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
	}

	rates := ratesResponse{}
	if err = json.Unmarshal(body, &rates); err != nil {
		return nil, errors.Wrap(err, "unmarshalling response")
	}
	if rates.Result != successResult {
		return nil, errors.Errorf("error from rates api (result = %q, error-type = %q)", rates.Result, rates.ErrorType)
	}
	if rates.Rates == nil {
		return nil, errors.New("rates api response has no conversion_rates")
	}
	return rates.Rates, nil
}
