package afas

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

var (
	// ErrNotConfigured means the AFAS credentials are missing from the
	// environment; nothing can be fetched.
	ErrNotConfigured = errors.New("afas credentials not configured")

	// ErrConnectorUnavailable means a connector request failed or returned a
	// non-success status after all retries.
	ErrConnectorUnavailable = errors.New("afas connector unavailable")
)

// Connector identifiers as used in sync/analyze requests.
const (
	ConnectorItems           = "items"
	ConnectorSalesPrice      = "sales_price"
	ConnectorStock           = "stock"
	ConnectorCumulativeSales = "cumulative_sales"
	ConnectorUnits           = "units"
)

// Connector describes one AFAS GetConnector.
type Connector struct {
	ID      string
	Name    string
	Label   string
	OrderBy string
}

// Connectors is the registry of the five EOL dashboard connectors.
var Connectors = map[string]Connector{
	ConnectorItems:           {ID: ConnectorItems, Name: "EOL_dashboard_Items", Label: "Dashboard Items", OrderBy: "Type_item"},
	ConnectorSalesPrice:      {ID: ConnectorSalesPrice, Name: "EOL_dashboard_General_SalesPrice", Label: "General Sales Price", OrderBy: "Type_item"},
	ConnectorStock:           {ID: ConnectorStock, Name: "EOL_dashboard_Items_Stock", Label: "Stock", OrderBy: "Type_item"},
	ConnectorCumulativeSales: {ID: ConnectorCumulativeSales, Name: "EOL_dashboard_Cumulative_Sales", Label: "Cumulative Sales", OrderBy: "Jaar"},
	ConnectorUnits:           {ID: ConnectorUnits, Name: "EOL_dashboard_Unit_Per_Item", Label: "Unit Per Item", OrderBy: "ItemType"},
}

// Config holds the AFAS connection settings for one run. Build it once per
// run and do not mutate it afterwards.
type Config struct {
	EnvironmentID    string
	Token            string
	BaseURL          string // Overrides the derived AFAS URL; used in tests
	PageSize         int
	RetryAttempts    int // Retries per page request, on top of the first try
	FetchConcurrency int // Parallel connector fetches; 1 = sequential (rate-limit friendly)
}

// ConfigFromEnv builds a Config from AFAS_* environment variables.
func ConfigFromEnv() (*Config, error) {
	token := os.Getenv("AFAS_TOKEN")
	envID := os.Getenv("AFAS_ENVIRONMENT_ID")
	if token == "" || envID == "" {
		return nil, ErrNotConfigured
	}

	return &Config{
		EnvironmentID:    envID,
		Token:            token,
		PageSize:         envInt("AFAS_PAGE_SIZE", 1000),
		RetryAttempts:    envInt("AFAS_RETRY_ATTEMPTS", 2),
		FetchConcurrency: envInt("AFAS_FETCH_CONCURRENCY", 1),
	}, nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Client talks to the AFAS Profit REST services.
type Client struct {
	cfg        *Config
	http       *http.Client
	baseURL    string
	authHeader string
}

// NewClient builds a Client from a Config. The token is sent base64-encoded
// in an AfasToken authorization header.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.rest.afas.online/profitrestservices/connectors", cfg.EnvironmentID)
	}

	return &Client{
		cfg:        cfg,
		http:       &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		authHeader: "AfasToken " + base64.StdEncoding.EncodeToString([]byte(cfg.Token)),
	}
}

// envelope is the AFAS GetConnector response body.
type envelope[T any] struct {
	Skip int `json:"skip"`
	Take int `json:"take"`
	Rows []T `json:"rows"`
}

// get issues one request with bounded retry. Transient failures are retried
// with a linearly growing pause so a flaky page does not fail the connector.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", c.authHeader)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrConnectorUnavailable, lastErr)
}

// fetchPaged pulls every record of one connector in pages of cfg.PageSize.
// A short page signals the final page. When maxRecords > 0 the result is
// truncated to exactly maxRecords (test/sampling mode).
func fetchPaged[T any](ctx context.Context, c *Client, conn Connector, maxRecords int) ([]T, error) {
	var all []T
	skip := 0
	take := c.cfg.PageSize

	for {
		if maxRecords > 0 && len(all) >= maxRecords {
			break
		}

		params := url.Values{}
		params.Set("skip", strconv.Itoa(skip))
		params.Set("take", strconv.Itoa(take))
		params.Set("orderbyfieldids", conn.OrderBy)

		body, err := c.get(ctx, c.baseURL+"/"+conn.Name+"?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", conn.Label, err)
		}

		var page envelope[T]
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%s: decode response: %w", conn.Label, err)
		}

		all = append(all, page.Rows...)

		// Fewer rows than requested means this was the last page.
		if len(page.Rows) < take {
			break
		}
		skip += take
	}

	if maxRecords > 0 && len(all) > maxRecords {
		all = all[:maxRecords]
	}
	return all, nil
}

// FetchItems pulls all rows of the Items connector.
func (c *Client) FetchItems(ctx context.Context, maxRecords int) ([]Item, error) {
	return fetchPaged[Item](ctx, c, Connectors[ConnectorItems], maxRecords)
}

// FetchPrices pulls all rows of the General Sales Price connector.
func (c *Client) FetchPrices(ctx context.Context) ([]SalesPrice, error) {
	return fetchPaged[SalesPrice](ctx, c, Connectors[ConnectorSalesPrice], 0)
}

// FetchStock pulls all rows of the Stock connector.
func (c *Client) FetchStock(ctx context.Context) ([]Stock, error) {
	return fetchPaged[Stock](ctx, c, Connectors[ConnectorStock], 0)
}

// FetchSales pulls all rows of the Cumulative Sales connector.
func (c *Client) FetchSales(ctx context.Context) ([]CumulativeSales, error) {
	return fetchPaged[CumulativeSales](ctx, c, Connectors[ConnectorCumulativeSales], 0)
}

// FetchUnits pulls all rows of the Unit Per Item connector.
func (c *Client) FetchUnits(ctx context.Context) ([]UnitPerItem, error) {
	return fetchPaged[UnitPerItem](ctx, c, Connectors[ConnectorUnits], 0)
}

// RawOptions are the query parameters accepted by the raw probe fetch.
type RawOptions struct {
	Skip            int
	Take            int
	FilterFieldIDs  string
	FilterValues    string
	OperatorTypes   string
	OrderByFieldIDs string
	FilterJSON      string
}

// FetchRaw issues a single unprocessed page request against any connector
// name and returns the decoded response body. Used by the probe and analyze
// endpoints to explore connector structure.
func (c *Client) FetchRaw(ctx context.Context, connectorName string, opts RawOptions) (map[string]interface{}, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(opts.Skip))
	params.Set("take", strconv.Itoa(opts.Take))
	if opts.FilterFieldIDs != "" {
		params.Set("filterfieldids", opts.FilterFieldIDs)
	}
	if opts.FilterValues != "" {
		params.Set("filtervalues", opts.FilterValues)
	}
	if opts.OperatorTypes != "" {
		params.Set("operatortypes", opts.OperatorTypes)
	}
	if opts.OrderByFieldIDs != "" {
		params.Set("orderbyfieldids", opts.OrderByFieldIDs)
	}
	if opts.FilterJSON != "" {
		params.Set("filterjson", opts.FilterJSON)
	}

	body, err := c.get(ctx, c.baseURL+"/"+connectorName+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", connectorName, err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", connectorName, err)
	}
	return decoded, nil
}
