package ratesapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/travel-finances-bot/internal/entity/currency"
	"max.ks1230/travel-finances-bot/internal/model/customerr"
)

type testConfig struct {
	url     string
	key     string
	timeout time.Duration
}

func (c testConfig) URL() string            { return c.url }
func (c testConfig) ApiKey() string         { return c.key }
func (c testConfig) Timeout() time.Duration { return c.timeout }

func serve(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v6/secret/latest/IDR", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_OnSuccessResponse_ShouldReturnRates(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"result":"success","base_code":"IDR","conversion_rates":{"IDR":1,"USD":0.000061}}`)
	client := New(testConfig{url: srv.URL + "/v6/", key: "secret"})

	rates, err := client.GetRates(context.Background(), currency.IDR)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"IDR": 1, "USD": 0.000061}, rates)
}

func Test_OnBadPayload_ShouldFail(t *testing.T) {
	cases := map[string]string{
		"error result":  `{"result":"error","error-type":"invalid-key"}`,
		"missing rates": `{"result":"success"}`,
		"malformed":     `{"result":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, body)
			client := New(testConfig{url: srv.URL + "/v6", key: "secret"})

			_, err := client.GetRates(context.Background(), currency.IDR)
			assert.Error(t, err)
		})
	}
}

func Test_OnNonOKStatus_ShouldReturnServiceError(t *testing.T) {
	srv := serve(t, http.StatusForbidden, `{}`)
	client := New(testConfig{url: srv.URL + "/v6", key: "secret"})

	_, err := client.GetRates(context.Background(), currency.IDR)

	var sErr *customerr.ServiceError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, http.StatusForbidden, sErr.Status)
}

func Test_OnSlowServer_ShouldTimeOut(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	client := New(testConfig{url: srv.URL + "/v6", key: "secret", timeout: 50 * time.Millisecond})

	_, err := client.GetRates(context.Background(), currency.IDR)
	assert.Error(t, err)
}

func Test_OnMissingKey_ShouldNotCallServer(t *testing.T) {
	client := New(testConfig{url: "http://127.0.0.1:0"})

	_, err := client.GetRates(context.Background(), currency.IDR)
	assert.ErrorIs(t, err, customerr.ErrMissingAPIKey)
}
