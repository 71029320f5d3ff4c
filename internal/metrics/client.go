package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finboard/report_engine/internal/apperrors"
)

const dateLayout = "2006-01-02"

// Client talks to the external metrics lookup service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a metrics client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type metricValueResponse struct {
	Value *decimal.Decimal `json:"value"`
}

type metricDigestResponse struct {
	Digest string `json:"digest"`
}

// GetMetricValue looks up one metric value for a business and period. A nil
// value means the metric has no reading for the period.
func (c *Client) GetMetricValue(ctx context.Context, businessID, code string, start, end time.Time) (*decimal.Decimal, error) {
	var out metricValueResponse
	if err := c.get(ctx, "/v1/metrics/value", url.Values{
		"business_id": {businessID},
		"code":        {code},
		"start":       {start.Format(dateLayout)},
		"end":         {end.Format(dateLayout)},
	}, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// GetDigest returns the service-side fingerprint over a business's metrics for
// the period; the digest tracker compares it verbatim.
func (c *Client) GetDigest(ctx context.Context, businessID string, start, end time.Time) (string, error) {
	var out metricDigestResponse
	if err := c.get(ctx, "/v1/metrics/digest", url.Values{
		"business_id": {businessID},
		"start":       {start.Format(dateLayout)},
		"end":         {end.Format(dateLayout)},
	}, &out); err != nil {
		return "", err
	}
	return out.Digest, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build metrics request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: metrics lookup: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: metrics service returned %d", apperrors.ErrExternalService, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode metrics response: %v", apperrors.ErrExternalService, err)
	}
	return nil
}
