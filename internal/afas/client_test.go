package afas

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(&Config{
		Token:         "test-token",
		BaseURL:       srv.URL,
		PageSize:      1000,
		RetryAttempts: 0,
	})
}

func pageResponse(w http.ResponseWriter, rows []Item) {
	json.NewEncoder(w).Encode(map[string]interface{}{"rows": rows})
}

func makeItems(n int, prefix string) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ItemCode: fmt.Sprintf("%s%04d", prefix, i)}
	}
	return items
}

func TestFetchPagedAccumulatesUntilShortPage(t *testing.T) {
	requests := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		switch skip {
		case 0, 1000:
			pageResponse(w, makeItems(1000, "P"))
		case 2000:
			pageResponse(w, makeItems(400, "P"))
		default:
			t.Fatalf("unexpected skip %d", skip)
		}
	})

	items, err := client.FetchItems(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 2400)
	assert.Equal(t, 3, requests, "short page must terminate the loop")
}

func TestFetchPagedTruncatesToMaxRecords(t *testing.T) {
	requests := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		pageResponse(w, makeItems(1000, "P"))
	})

	items, err := client.FetchItems(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, items, 50)
	assert.Equal(t, 1, requests, "the cap must stop paging early")
}

func TestFetchPagedEmptyFirstPage(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		pageResponse(w, nil)
	})

	items, err := client.FetchItems(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchPagedSendsAfasTokenHeader(t *testing.T) {
	wantAuth := "AfasToken " + base64.StdEncoding.EncodeToString([]byte("test-token"))
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "Type_item", r.URL.Query().Get("orderbyfieldids"))
		pageResponse(w, nil)
	})

	_, err := client.FetchItems(context.Background(), 0)
	require.NoError(t, err)
}

func TestFetchPagedConnectorUnavailable(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchItems(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectorUnavailable)
	assert.Contains(t, err.Error(), "Dashboard Items")
}

func TestFetchPagedRetriesTransientFailure(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		pageResponse(w, makeItems(5, "P"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(&Config{
		Token:         "test-token",
		BaseURL:       srv.URL,
		PageSize:      1000,
		RetryAttempts: 2,
	})

	items, err := client.FetchItems(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, 2, requests)
}

func TestFetchRawPassesFilterParams(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "5", q.Get("skip"))
		assert.Equal(t, "10", q.Get("take"))
		assert.Equal(t, "ItemCode", q.Get("filterfieldids"))
		assert.Equal(t, "ABC", q.Get("filtervalues"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"skip": 5, "take": 10,
			"rows": []map[string]interface{}{{"ItemCode": "ABC"}},
		})
	})

	body, err := client.FetchRaw(context.Background(), "EOL_dashboard_Items", RawOptions{
		Skip:           5,
		Take:           10,
		FilterFieldIDs: "ItemCode",
		FilterValues:   "ABC",
	})
	require.NoError(t, err)

	rows, ok := body["rows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, rows, 1)
}

func TestConfigFromEnvMissingCredentials(t *testing.T) {
	t.Setenv("AFAS_TOKEN", "")
	t.Setenv("AFAS_ENVIRONMENT_ID", "")

	_, err := ConfigFromEnv()
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("AFAS_TOKEN", "tok")
	t.Setenv("AFAS_ENVIRONMENT_ID", "12345")
	t.Setenv("AFAS_PAGE_SIZE", "")
	t.Setenv("AFAS_RETRY_ATTEMPTS", "")
	t.Setenv("AFAS_FETCH_CONCURRENCY", "")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.PageSize)
	assert.Equal(t, 2, cfg.RetryAttempts)
	assert.Equal(t, 1, cfg.FetchConcurrency)
}
