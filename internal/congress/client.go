// Billsync - Congress.gov Ingestion Resilience for FedBillX
// Copyright 2026 FedBillX contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fedbillx/billsync

/*
client.go - Congress.gov API Client

This file provides the core Client struct and response types for
communicating with the Congress.gov v3 REST API.

Client Features:
  - HTTP client with 30-second timeout
  - api_key query parameter authentication
  - JSON response parsing
  - Remaining-quota header monitoring (X-RateLimit-Remaining)

The hosted API enforces 1,000 requests per hour per key and surfaces the
remaining quota on every response. This client only observes that header;
admission control, retry, and circuit breaking live in ResilientClient.

API Methods in this file:
  - NewClient(): Create authenticated client
  - ListBills(): Fetch a page of recently updated bills
  - GetBill(): Fetch one bill's detail record

Related Files:
  - resilient_client.go: rate-limited, circuit-protected wrapper
*/

//nolint:staticcheck // File documentation, not package doc
package congress

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/fedbillx/billsync/internal/logging"
)

// DefaultBaseURL is the hosted Congress.gov v3 API root.
const DefaultBaseURL = "https://api.congress.gov/v3"

// lowQuotaThreshold triggers a warning when the hourly request quota
// reported by the API drops below it.
const lowQuotaThreshold = 10

// Client handles communication with the Congress.gov API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientConfig holds construction options for Client.
type ClientConfig struct {
	// BaseURL overrides the hosted API root, mainly for tests.
	BaseURL string

	// APIKey is the api.data.gov key sent with every request.
	APIKey string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration
}

// NewClient creates an authenticated Congress.gov API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("congress: API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// BillListResponse is the top-level response from /bill.
type BillListResponse struct {
	Bills      []Bill     `json:"bills"`
	Pagination Pagination `json:"pagination"`
}

// Pagination carries Congress.gov's offset-based paging fields.
type Pagination struct {
	Count int    `json:"count"`
	Next  string `json:"next,omitempty"`
}

// Bill is one entry in a bill list response.
type Bill struct {
	Congress       int    `json:"congress"`
	Type           string `json:"type"`   // "HR", "S", "HJRES", ...
	Number         string `json:"number"` // bill number within the congress
	Title          string `json:"title"`
	OriginChamber  string `json:"originChamber,omitempty"`
	UpdateDate     string `json:"updateDate,omitempty"`
	URL            string `json:"url,omitempty"`

	LatestAction *BillAction `json:"latestAction,omitempty"`
}

// BillAction is the most recent recorded action on a bill.
type BillAction struct {
	ActionDate string `json:"actionDate"`
	Text       string `json:"text"`
}

// BillDetailResponse is the top-level response from /bill/{congress}/{type}/{number}.
type BillDetailResponse struct {
	Bill BillDetail `json:"bill"`
}

// BillDetail is the full record for one bill.
type BillDetail struct {
	Congress       int         `json:"congress"`
	Type           string      `json:"type"`
	Number         string      `json:"number"`
	Title          string      `json:"title"`
	OriginChamber  string      `json:"originChamber,omitempty"`
	IntroducedDate string      `json:"introducedDate,omitempty"`
	UpdateDate     string      `json:"updateDate,omitempty"`
	LatestAction   *BillAction `json:"latestAction,omitempty"`
	PolicyArea     *PolicyArea `json:"policyArea,omitempty"`
	Sponsors       []Sponsor   `json:"sponsors,omitempty"`
}

// PolicyArea is the single policy-area classification Congress.gov assigns.
type PolicyArea struct {
	Name string `json:"name"`
}

// Sponsor identifies a bill sponsor.
type Sponsor struct {
	BioguideID string `json:"bioguideId"`
	FullName   string `json:"fullName"`
	Party      string `json:"party,omitempty"`
	State      string `json:"state,omitempty"`
}

// ListBillsOptions controls /bill paging.
type ListBillsOptions struct {
	// Limit is the page size, 1-250. Defaults to 20 when zero.
	Limit int

	// Offset is the zero-based record offset.
	Offset int
}

// ListBills fetches one page of bills ordered by most recent update.
func (c *Client) ListBills(ctx context.Context, opts ListBillsOptions) (*BillListResponse, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var result BillListResponse
	if err := c.doRequest(ctx, "/bill", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetBill fetches the detail record for one bill, e.g. GetBill(ctx, 118, "hr", "3076").
func (c *Client) GetBill(ctx context.Context, congress int, billType, number string) (*BillDetailResponse, error) {
	path := fmt.Sprintf("/bill/%d/%s/%s", congress, url.PathEscape(billType), url.PathEscape(number))

	var result BillDetailResponse
	if err := c.doRequest(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doRequest executes a GET against the API and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("format", "json")
	query.Set("api_key", c.apiKey)
	req.URL.RawQuery = query.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("congress API request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	c.checkQuota(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// checkQuota warns when the remaining hourly quota reported by the API
// runs low.
func (c *Client) checkQuota(resp *http.Response) {
	raw := resp.Header.Get("X-RateLimit-Remaining")
	if raw == "" {
		return
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	if remaining < lowQuotaThreshold {
		logging.Warn().
			Int("remaining", remaining).
			Msg("[CONGRESS API] Hourly request quota nearly exhausted")
	}
}

// APIError is a non-200 response from the Congress.gov API.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("congress API %s returned status %d", e.Path, e.StatusCode)
}
