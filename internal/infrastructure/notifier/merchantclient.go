// Package notifier implements the merchant callback client. Response codes
// classify the outcome: <400 accepted, 429 transient throttling, other 4xx
// permanent rejection, 5xx or a transport error transient.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"payflow/internal/domain/payment"
	apperrors "payflow/internal/shared/errors"
)

type MerchantClient struct {
	callbackURL string
	httpClient  *http.Client
}

func NewMerchantClient(callbackURL string, timeout time.Duration) *MerchantClient {
	return &MerchantClient{
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Notify posts the payment DTO to the merchant callback endpoint.
func (c *MerchantClient) Notify(ctx context.Context, dto payment.DTO) error {
	body, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("failed to marshal payment dto: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build merchant callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamUnavailableError("merchant unreachable", err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 400:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		// Merchant-side backpressure is transient, not a rejection.
		return apperrors.NewRateLimitedError("merchant throttled notification",
			fmt.Sprintf("status=%d", resp.StatusCode))
	case resp.StatusCode < 500:
		return apperrors.NewUpstreamRejectedError("merchant rejected notification",
			fmt.Sprintf("status=%d", resp.StatusCode))
	default:
		return apperrors.NewUpstreamUnavailableError("merchant callback failed",
			fmt.Sprintf("status=%d", resp.StatusCode))
	}
}
