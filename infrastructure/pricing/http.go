package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gmartincasals/clean-orders/domain/shared"
	"github.com/gmartincasals/clean-orders/ports"
)

// HTTPClient is the production Pricing adapter: it asks an external price
// catalog service, the external collaborator the spec's non-goals leave
// unspecified beyond this interface (§1).
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds an HTTPClient against baseURL with a bounded
// request timeout.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
	}
}

type priceResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PriceFor fetches GET {baseURL}/prices/{productID}. A 404 maps to
// ports.ErrProductNotPriced; any other failure is an infra error.
func (h *HTTPClient) PriceFor(ctx context.Context, productID string) (shared.Money, error) {
	endpoint := fmt.Sprintf("%s/prices/%s", h.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return shared.Money{}, fmt.Errorf("build pricing request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return shared.Money{}, fmt.Errorf("call pricing service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.Money{}, ports.ErrProductNotPriced
	}
	if resp.StatusCode != http.StatusOK {
		return shared.Money{}, fmt.Errorf("pricing service returned status %d", resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return shared.Money{}, fmt.Errorf("decode pricing response: %w", err)
	}

	currency, err := shared.NewCurrency(body.Currency)
	if err != nil {
		return shared.Money{}, fmt.Errorf("invalid currency in pricing response: %w", err)
	}
	return shared.NewMoney(body.Amount, currency)
}

var _ ports.Pricing = (*HTTPClient)(nil)
