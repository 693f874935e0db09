package gateway_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketing-service/config"
	"ticketing-service/internal/pkg/gateway"
	"ticketing-service/internal/pkg/httpclient"
	log_internal "ticketing-service/internal/pkg/log"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newClient(baseURL string) gateway.Client {
	cfgHTTP := &config.HttpClientConfig{
		Type:                "consecutive",
		Timeout:             5 * time.Second,
		Threshold:           10,
		ConsecutiveFailures: 5,
	}
	cb := httpclient.InitCircuitBreaker(cfgHTTP, cfgHTTP.Type)
	hc := httpclient.InitHttpClient(cfgHTTP, cb)

	logZap := log_internal.SetupLogger()
	log_internal.Init(logZap)

	return gateway.NewClient(&config.GatewayConfig{
		BaseURL:       baseURL,
		MerchantID:    "merchant-1",
		SecretKey:     "secret",
		WebhookSecret: "webhook-secret",
		Currency:      "USD",
		Timeout:       5 * time.Second,
	}, hc, log_internal.GetLogger())
}

func sign(body []byte, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func TestCreateSession(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/sessions", r.URL.Path)
			assert.Equal(t, "merchant-1", r.Header.Get("X-Merchant-ID"))
			assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
			assert.NotEmpty(t, r.Header.Get("X-Signature"))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"session_id":"sess_1","payload":{"redirect_url":"https://pay.example.com/sess_1"}}`))
		}))
		defer srv.Close()

		c := newClient(srv.URL)
		session, err := c.CreateSession(context.Background(), &gateway.CreateSessionRequest{
			OrderID:        "order-1",
			Amount:         decimal.NewFromInt(100),
			Currency:       "USD",
			CustomerName:   "John Doe",
			CustomerEmail:  "john@example.com",
			ReturnURL:      "https://shop.example.com/return",
			IdempotencyKey: "idem-1",
		})

		assert.NoError(t, err)
		assert.Equal(t, "sess_1", session.SessionID)
		assert.NotEmpty(t, session.Payload)
	})

	t.Run("provider rejects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid merchant"}`))
		}))
		defer srv.Close()

		c := newClient(srv.URL)
		_, err := c.CreateSession(context.Background(), &gateway.CreateSessionRequest{OrderID: "order-1"})

		assert.Error(t, err)
	})
}

func TestQueryStatus(t *testing.T) {
	t.Run("charged", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/orders/order-1", r.URL.Path)
			w.Write([]byte(`{"status":"charged","amount":130,"transaction_id":"txn_1"}`))
		}))
		defer srv.Close()

		c := newClient(srv.URL)
		status, err := c.QueryStatus(context.Background(), "order-1")

		assert.NoError(t, err)
		assert.Equal(t, gateway.StatusCharged, status.Status)
		assert.True(t, status.Amount.Equal(decimal.NewFromInt(130)))
		assert.Equal(t, "txn_1", status.TransactionID)
		assert.NotEmpty(t, status.Raw)
	})

	t.Run("gateway down", func(t *testing.T) {
		c := newClient("http://127.0.0.1:1")
		_, err := c.QueryStatus(context.Background(), "order-1")

		assert.Error(t, err)
	})
}

func TestVerifySignature(t *testing.T) {
	c := newClient("http://unused")
	body := []byte(`{"order_id":"order-1","status":"charged"}`)

	t.Run("valid signature", func(t *testing.T) {
		assert.True(t, c.VerifySignature(body, sign(body, "webhook-secret")))
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.False(t, c.VerifySignature(body, sign(body, "other-secret")))
	})

	t.Run("tampered body", func(t *testing.T) {
		sig := sign(body, "webhook-secret")
		tampered := []byte(`{"order_id":"order-1","status":"charged","amount":1}`)
		assert.False(t, c.VerifySignature(tampered, sig))
	})

	t.Run("empty signature", func(t *testing.T) {
		assert.False(t, c.VerifySignature(body, ""))
	})
}
