// Package transport sends order payloads to the remote order endpoint.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/core/ports"
)

// OrderRequest is the wire body. total is a JSON number.
type OrderRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
	CartSummary string          `json:"cartSummary"`
	Total       json.RawMessage `json:"total"`
}

// NewOrderRequest maps a payload to its wire form.
func NewOrderRequest(p domain.OrderPayload) OrderRequest {
	return OrderRequest{
		Name:        p.Buyer.Name,
		Email:       p.Buyer.Email,
		Phone:       p.Buyer.Phone,
		Address:     p.Buyer.Address,
		CartSummary: p.OrderSummary,
		Total:       json.RawMessage(p.Total.String()),
	}
}

// EncodeOrder renders the JSON body sent for p.
func EncodeOrder(p domain.OrderPayload) ([]byte, error) {
	body, err := json.Marshal(NewOrderRequest(p))
	if err != nil {
		return nil, fmt.Errorf("transport: encode order: %w", err)
	}
	return body, nil
}

// HTTPTransport POSTs one JSON payload per Send. The response status and body
// are never inspected: any completed exchange counts as delivered.
type HTTPTransport struct {
	endpoint string
	client   *http.Client
}

var _ ports.OrderTransport = (*HTTPTransport)(nil)

// NewHTTPTransport builds a transport for endpoint. A nil client gets a
// default one instrumented with OpenTelemetry.
func NewHTTPTransport(endpoint string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPTransport{endpoint: endpoint, client: client}
}

func (t *HTTPTransport) Send(ctx context.Context, payload domain.OrderPayload) error {
	body, err := EncodeOrder(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: post %s: %w", t.endpoint, err)
	}
	// the body is never read, not even drained
	_ = resp.Body.Close()
	return nil
}
