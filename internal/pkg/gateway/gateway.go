package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticketing-service/config"
	"ticketing-service/internal/pkg/log"
	"ticketing-service/internal/pkg/observability"

	"github.com/goccy/go-json"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/shopspring/decimal"
	"go.elastic.co/apm"
)

// Gateway order statuses as reported by the payment provider. Anything not
// listed here is treated as unrecognized and never confirms a payment.
const (
	StatusCharged        = "charged"
	StatusProcessing     = "processing"
	StatusAuthenticating = "authenticating"
	StatusNew            = "new"
	StatusDeclined       = "declined"
	StatusAuthFailed     = "authentication_failed"
	StatusAuthRejected   = "authorization_failed"
)

type CreateSessionRequest struct {
	OrderID        string          `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	CustomerName   string          `json:"customer_name"`
	CustomerEmail  string          `json:"customer_email"`
	ReturnURL      string          `json:"return_url"`
	IdempotencyKey string          `json:"-"`
}

// Session is the provider's representation of a charge attempt. Payload is
// kept opaque so the client UI can be resumed without re-creating a session.
type Session struct {
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

type OrderStatus struct {
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	Raw           []byte          `json:"-"`
}

// Client is the injected gateway capability. CreateSession is not safe to
// retry without a fresh idempotency key; QueryStatus is always safe to retry.
type Client interface {
	CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error)
	QueryStatus(ctx context.Context, orderID string) (*OrderStatus, error)
	VerifySignature(rawBody []byte, signatureHeader string) bool
}

type client struct {
	cfg *config.GatewayConfig
	hc  *circuit.HTTPClient
	log log.Logger
}

func NewClient(cfg *config.GatewayConfig, hc *circuit.HTTPClient, logger log.Logger) Client {
	return &client{
		cfg: cfg,
		hc:  hc,
		log: logger,
	}
}

func (c *client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	span, ctx := apm.StartSpan(ctx, "gateway.CreateSession", "external.http")
	defer span.End()

	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal session request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Merchant-ID", c.cfg.MerchantID)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	httpReq.Header.Set("X-Signature", hmac256(body, []byte(c.cfg.SecretKey)))

	resp, err := c.hc.Do(httpReq)
	observability.TrackGatewayRequest("create_session", start, err)
	if err != nil {
		return nil, fmt.Errorf("gateway: create session: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read session response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.log.Error(ctx, "gateway create session rejected", resp.StatusCode, string(raw))
		return nil, fmt.Errorf("gateway: create session status %d", resp.StatusCode)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("gateway: decode session response: %w", err)
	}
	if len(session.Payload) == 0 {
		session.Payload = raw
	}

	return &session, nil
}

func (c *client) QueryStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	span, ctx := apm.StartSpan(ctx, "gateway.QueryStatus", "external.http")
	defer span.End()

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/orders/%s", c.cfg.BaseURL, orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build status request: %w", err)
	}
	httpReq.Header.Set("X-Merchant-ID", c.cfg.MerchantID)
	httpReq.Header.Set("X-Signature", hmac256([]byte(orderID), []byte(c.cfg.SecretKey)))

	resp, err := c.hc.Do(httpReq)
	observability.TrackGatewayRequest("query_status", start, err)
	if err != nil {
		return nil, fmt.Errorf("gateway: query status: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error(ctx, "gateway query status rejected", resp.StatusCode, string(raw))
		return nil, fmt.Errorf("gateway: query status %d", resp.StatusCode)
	}

	var status OrderStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("gateway: decode status response: %w", err)
	}
	status.Raw = raw

	return &status, nil
}

// VerifySignature authenticates an inbound webhook body against the shared
// webhook secret. The comparison is constant time.
func (c *client) VerifySignature(rawBody []byte, signatureHeader string) bool {
	if signatureHeader == "" {
		return false
	}
	expected := hmac256(rawBody, []byte(c.cfg.WebhookSecret))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

func hmac256(body, key []byte) string {
	hash := hmac.New(sha256.New, key)
	hash.Write(body)
	return hex.EncodeToString(hash.Sum(nil))
}
