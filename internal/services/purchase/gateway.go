package purchase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrGatewayUnavailable marks purchase-initiation failures the user can
// simply retry; nothing has been recorded on our side.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// PaymentIntent is the gateway's handle for one pending payment. ID keys
// the reconciliation webhook; ClientSecret goes back to the client to
// finish the payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// Gateway abstracts the external payment provider. Event authenticity and
// signature checks happen upstream of this service.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (PaymentIntent, error)
}

// HTTPGateway talks to the payment provider's REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (PaymentIntent, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amountCents,
		"currency": "usd",
		"metadata": metadata,
	})
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("marshal intent request: %w", err)
	}

	url := g.baseURL + "/v1/payment_intents"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("new intent request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("call gateway: %w: %w", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return PaymentIntent{}, fmt.Errorf("gateway returned %d: %w", resp.StatusCode, ErrGatewayUnavailable)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return PaymentIntent{}, fmt.Errorf("gateway rejected intent: %d (%s)", resp.StatusCode, string(body))
	}

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}

	err = json.Unmarshal(body, &out)
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("decode gateway response: %w", err)
	}

	return PaymentIntent{ID: out.ID, ClientSecret: out.ClientSecret}, nil
}
