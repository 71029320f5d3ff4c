package ledgerexport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/finboard/report_engine/internal/apperrors"
	"github.com/finboard/report_engine/internal/core/domain"
)

// Client fetches raw export documents from the ledger export source over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an export client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchExport requests one export document by (company, kind, date range,
// account-type filter). Transport or status failures surface as
// ErrExternalService so the caller aborts the whole refresh.
func (c *Client) FetchExport(ctx context.Context, companyID string, kind domain.LedgerKind, start, end time.Time, accountTypeFilter string) (*Document, error) {
	q := url.Values{}
	q.Set("company_id", companyID)
	q.Set("kind", string(kind))
	q.Set("start_date", start.Format(exportDateLayout))
	q.Set("end_date", end.Format(exportDateLayout))
	if accountTypeFilter != "" {
		q.Set("account_type", accountTypeFilter)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/exports?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch ledger export: %v", apperrors.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ledger export source returned %d", apperrors.ErrExternalService, resp.StatusCode)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode export document: %v", apperrors.ErrMalformedExport, err)
	}
	return &doc, nil
}
