// Package gateway implements the provider service client over HTTP.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"payflow/internal/application/payment/providergateway"
	apperrors "payflow/internal/shared/errors"
)

type ProviderClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewProviderClient(baseURL string, timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreatePaymentLink posts the payment to the provider service. A transport
// failure or timeout is upstream_unavailable; a non-200 response is
// upstream_rejected. Both leave the caller to fail the payment.
func (c *ProviderClient) CreatePaymentLink(ctx context.Context, req providergateway.PaymentLinkRequest) (*providergateway.PaymentLinkResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment link request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payment-links", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment link request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError("provider unreachable", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUpstreamRejectedError("provider URL generation failed",
			fmt.Sprintf("status=%d", resp.StatusCode))
	}

	var linkResp providergateway.PaymentLinkResponse
	if err := json.NewDecoder(resp.Body).Decode(&linkResp); err != nil {
		return nil, apperrors.NewUpstreamRejectedError("invalid provider response", err.Error())
	}

	return &linkResp, nil
}
