package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"go-eol-dashboard/internal/afas"
	"go-eol-dashboard/internal/model"
	"go-eol-dashboard/internal/phase"
	"go-eol-dashboard/internal/repository"
	"go-eol-dashboard/internal/ws"
)

// ErrMissingRequiredSource means a sync run was requested without the Items
// connector, which provides the product codes everything else joins against.
var ErrMissingRequiredSource = errors.New("items connector is required for sync")

const (
	// Upsert chunk size; matches the store's comfortable statement width.
	syncChunkSize = 100
	// Limits of 1..50 switch a run into test/sampling mode.
	testModeMaxLimit = 50
	// How many error samples the summary carries back to the operator.
	errorSampleSize = 10
)

// Fetcher is the connector surface the sync pipeline consumes. Satisfied by
// *afas.Client; faked in tests.
type Fetcher interface {
	FetchItems(ctx context.Context, maxRecords int) ([]afas.Item, error)
	FetchPrices(ctx context.Context) ([]afas.SalesPrice, error)
	FetchStock(ctx context.Context) ([]afas.Stock, error)
	FetchSales(ctx context.Context) ([]afas.CumulativeSales, error)
	FetchUnits(ctx context.Context) ([]afas.UnitPerItem, error)
	FetchRaw(ctx context.Context, connectorName string, opts afas.RawOptions) (map[string]interface{}, error)
}

// SyncOptions selects what a run fetches. An empty Connectors list means all
// five; a Limit of 1..50 enables test mode.
type SyncOptions struct {
	Limit      int
	Connectors []string
}

// SyncError attributes one failed product to its error message.
type SyncError struct {
	ProductCode string `json:"product_code"`
	Error       string `json:"error"`
}

// ConnectorError records an optional connector that could not be fetched.
type ConnectorError struct {
	Connector string `json:"connector"`
	Error     string `json:"error"`
}

// SyncSummary carries the headline counts of a run.
type SyncSummary struct {
	TotalProducts int `json:"total_products"`
	Updated       int `json:"updated"`
	Errors        int `json:"errors"`
}

// SyncResult is the structured outcome of one sync run. Partial success is a
// first-class outcome: Success stays true when individual chunks or items
// failed, with the failures listed in Errors.
type SyncResult struct {
	Success         bool             `json:"success"`
	TestMode        bool             `json:"test_mode"`
	Timestamp       time.Time        `json:"timestamp"`
	DurationMs      int64            `json:"duration_ms"`
	Summary         SyncSummary      `json:"summary"`
	SourceCounts    map[string]int   `json:"source_counts"`
	Errors          []SyncError      `json:"errors"`
	TotalErrors     int              `json:"total_errors"`
	ConnectorErrors []ConnectorError `json:"connector_errors,omitempty"`
}

// ConnectorAnalysis is one connector's structure report.
type ConnectorAnalysis struct {
	Connector   string                 `json:"connector"`
	Label       string                 `json:"label"`
	Success     bool                   `json:"success"`
	Error       string                 `json:"error,omitempty"`
	RecordCount int                    `json:"record_count"`
	Fields      []string               `json:"fields,omitempty"`
	Sample      map[string]interface{} `json:"sample,omitempty"`
}

type SyncService interface {
	Run(ctx context.Context, opts SyncOptions) (*SyncResult, error)
	Analyze(ctx context.Context, connectors []string) ([]ConnectorAnalysis, error)
	Probe(ctx context.Context, connectorName string, opts afas.RawOptions) (map[string]interface{}, error)
}

type syncService struct {
	productRepo repository.ProductRepository
	hub         *ws.Hub

	// newFetcher builds the connector client for one run; the config is
	// constructed once per run and never mutated (swapped out in tests).
	newFetcher func() (Fetcher, *afas.Config, error)

	chunkSize        int
	writeConcurrency int
	now              func() time.Time
}

func NewSyncService(productRepo repository.ProductRepository, hub *ws.Hub) SyncService {
	return &syncService{
		productRepo: productRepo,
		hub:         hub,
		newFetcher: func() (Fetcher, *afas.Config, error) {
			cfg, err := afas.ConfigFromEnv()
			if err != nil {
				return nil, nil, err
			}
			return afas.NewClient(cfg), cfg, nil
		},
		chunkSize:        syncChunkSize,
		writeConcurrency: envInt("SYNC_WRITE_CONCURRENCY", 1),
		now:              time.Now,
	}
}

// connectorSelection normalizes the requested connector subset. Items is
// mandatory: it is the source of product codes and the block flag.
func connectorSelection(requested []string) (map[string]bool, error) {
	selected := make(map[string]bool)
	if len(requested) == 0 {
		for id := range afas.Connectors {
			selected[id] = true
		}
		return selected, nil
	}
	for _, id := range requested {
		if _, ok := afas.Connectors[id]; ok {
			selected[id] = true
		}
	}
	if !selected[afas.ConnectorItems] {
		return nil, ErrMissingRequiredSource
	}
	return selected, nil
}

// rawData is one run's accumulated connector record sets.
type rawData struct {
	items  []afas.Item
	prices []afas.SalesPrice
	stock  []afas.Stock
	sales  []afas.CumulativeSales
	units  []afas.UnitPerItem
}

func (s *syncService) Run(ctx context.Context, opts SyncOptions) (*SyncResult, error) {
	start := s.now()

	selected, err := connectorSelection(opts.Connectors)
	if err != nil {
		return nil, err
	}

	fetcher, cfg, err := s.newFetcher()
	if err != nil {
		return nil, err
	}

	testMode := opts.Limit > 0 && opts.Limit <= testModeMaxLimit
	maxRecords := 0
	if testMode {
		maxRecords = opts.Limit
	}
	log.Printf("Starting AFAS sync (test_mode=%v, connectors=%d)", testMode, len(selected))

	raw, connectorErrs, err := s.fetchAll(ctx, fetcher, cfg, selected, maxRecords)
	if err != nil {
		return nil, err
	}

	// Blocked products never enter the dashboard.
	active := raw.items[:0:0]
	for _, item := range raw.items {
		if !item.Blocked {
			active = append(active, item)
		}
	}
	log.Printf("Items fetched: %d total, %d active", len(raw.items), len(active))

	// Manual EOL dates live only in the store; load them so classification
	// sees what operators have curated.
	eolDates, err := s.loadEOLDates()
	if err != nil {
		return nil, fmt.Errorf("load existing products: %w", err)
	}

	products, itemErrs := s.reconcileAll(ctx, active, raw, eolDates)

	updated, writeErrs := s.writeChunks(ctx, products)

	allErrs := append(itemErrs, writeErrs...)
	result := &SyncResult{
		Success:    true,
		TestMode:   testMode,
		Timestamp:  s.now(),
		DurationMs: s.now().Sub(start).Milliseconds(),
		Summary: SyncSummary{
			TotalProducts: len(active),
			Updated:       updated,
			Errors:        len(allErrs),
		},
		SourceCounts: map[string]int{
			"items":  len(active),
			"prices": len(raw.prices),
			"stock":  len(raw.stock),
			"sales":  len(raw.sales),
			"units":  len(raw.units),
		},
		Errors:          sampleErrors(allErrs, errorSampleSize),
		TotalErrors:     len(allErrs),
		ConnectorErrors: connectorErrs,
	}

	go s.hub.BroadcastEvent(map[string]interface{}{
		"type":    "sync_completed",
		"summary": result.Summary,
	})

	log.Printf("Sync completed in %dms: %d updated, %d errors", result.DurationMs, updated, len(allErrs))
	return result, nil
}

// fetchAll pulls the selected connectors. The concurrency cap defaults to 1,
// which preserves the strictly sequential fetching the ERP's rate limits
// expect; raising AFAS_FETCH_CONCURRENCY makes the fetches overlap. An Items
// failure is fatal; any other connector degrades to an empty set with a
// recorded connector error so the remaining sources still load.
func (s *syncService) fetchAll(ctx context.Context, fetcher Fetcher, cfg *afas.Config, selected map[string]bool, maxRecords int) (*rawData, []ConnectorError, error) {
	raw := &rawData{}
	var (
		mu            sync.Mutex
		connectorErrs []ConnectorError
		itemsErr      error
	)

	concurrency := 1
	if cfg != nil && cfg.FetchConcurrency > 0 {
		concurrency = cfg.FetchConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	degrade := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		connectorErrs = append(connectorErrs, ConnectorError{Connector: id, Error: err.Error()})
		log.Printf("Connector %s failed, continuing with empty set: %v", id, err)
	}

	g.Go(func() error {
		var err error
		raw.items, err = fetcher.FetchItems(gctx, maxRecords)
		if err != nil {
			itemsErr = err
		}
		return nil
	})
	if selected[afas.ConnectorSalesPrice] {
		g.Go(func() error {
			var err error
			if raw.prices, err = fetcher.FetchPrices(gctx); err != nil {
				degrade(afas.ConnectorSalesPrice, err)
			}
			return nil
		})
	}
	if selected[afas.ConnectorStock] {
		g.Go(func() error {
			var err error
			if raw.stock, err = fetcher.FetchStock(gctx); err != nil {
				degrade(afas.ConnectorStock, err)
			}
			return nil
		})
	}
	if selected[afas.ConnectorCumulativeSales] {
		g.Go(func() error {
			var err error
			if raw.sales, err = fetcher.FetchSales(gctx); err != nil {
				degrade(afas.ConnectorCumulativeSales, err)
			}
			return nil
		})
	}
	if selected[afas.ConnectorUnits] {
		g.Go(func() error {
			var err error
			if raw.units, err = fetcher.FetchUnits(gctx); err != nil {
				degrade(afas.ConnectorUnits, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if itemsErr != nil {
		return nil, nil, fmt.Errorf("items: %w", itemsErr)
	}
	return raw, connectorErrs, nil
}

// loadEOLDates maps product codes to their manually curated EOL dates.
func (s *syncService) loadEOLDates() (map[string]*time.Time, error) {
	existing, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	dates := make(map[string]*time.Time, len(existing))
	for i := range existing {
		dates[existing[i].ProductCode] = existing[i].EOLDate
	}
	return dates, nil
}

// reconcileAll merges and classifies every item. Items share no mutable
// state, so the work is spread over a worker pool bounded by the core count.
// A failure for one item never aborts the others.
func (s *syncService) reconcileAll(ctx context.Context, items []afas.Item, raw *rawData, eolDates map[string]*time.Time) ([]model.Product, []SyncError) {
	now := s.now()
	products := make([]model.Product, len(items))
	ok := make([]bool, len(items))

	var (
		mu       sync.Mutex
		itemErrs []SyncError
	)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range items {
		i := i
		g.Go(func() error {
			item := items[i]
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					itemErrs = append(itemErrs, SyncError{ProductCode: item.ItemCode, Error: fmt.Sprintf("transform: %v", r)})
					mu.Unlock()
				}
			}()

			p := afas.Reconcile(item, raw.prices, raw.stock, raw.sales, raw.units, now)
			p.CurrentPhase = int(phase.Calculate(p.StockRegular, p.MonthlySales, eolDates[p.ProductCode], now))
			products[i] = p
			ok[i] = true
			return nil
		})
	}
	g.Wait()

	out := products[:0]
	for i := range products {
		if ok[i] {
			out = append(out, products[i])
		}
	}
	return out, itemErrs
}

// writeChunks upserts products in fixed-size chunks. A failing chunk
// attributes its error to every record in that chunk and the remaining
// chunks still execute.
func (s *syncService) writeChunks(ctx context.Context, products []model.Product) (int, []SyncError) {
	var (
		mu        sync.Mutex
		updated   int
		writeErrs []SyncError
	)

	g, _ := errgroup.WithContext(ctx)
	concurrency := s.writeConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for start := 0; start < len(products); start += s.chunkSize {
		chunk := products[start:min(start+s.chunkSize, len(products))]
		g.Go(func() error {
			if err := s.productRepo.UpsertBatch(chunk); err != nil {
				mu.Lock()
				for i := range chunk {
					writeErrs = append(writeErrs, SyncError{ProductCode: chunk[i].ProductCode, Error: err.Error()})
				}
				mu.Unlock()
				return nil
			}
			mu.Lock()
			updated += len(chunk)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	// Concurrent chunks may finish out of order; keep the error list stable
	// for operators.
	sort.Slice(writeErrs, func(i, j int) bool { return writeErrs[i].ProductCode < writeErrs[j].ProductCode })
	return updated, writeErrs
}

func sampleErrors(errs []SyncError, n int) []SyncError {
	if len(errs) <= n {
		return errs
	}
	return errs[:n]
}

// Analyze probes each selected connector with a small sample fetch and
// reports its field structure. Connector failures are isolated: one
// unreachable source does not block analysis of the others.
func (s *syncService) Analyze(ctx context.Context, connectors []string) ([]ConnectorAnalysis, error) {
	fetcher, _, err := s.newFetcher()
	if err != nil {
		return nil, err
	}

	ids := connectors
	if len(ids) == 0 {
		ids = []string{
			afas.ConnectorCumulativeSales, afas.ConnectorSalesPrice,
			afas.ConnectorItems, afas.ConnectorStock, afas.ConnectorUnits,
		}
	}

	var results []ConnectorAnalysis
	for _, id := range ids {
		conn, ok := afas.Connectors[id]
		if !ok {
			continue
		}

		analysis := ConnectorAnalysis{Connector: id, Label: conn.Label}
		body, err := fetcher.FetchRaw(ctx, conn.Name, afas.RawOptions{Take: 10, OrderByFieldIDs: conn.OrderBy})
		if err != nil {
			analysis.Error = err.Error()
			results = append(results, analysis)
			continue
		}

		rows, _ := body["rows"].([]interface{})
		analysis.Success = true
		analysis.RecordCount = len(rows)
		if len(rows) > 0 {
			if sample, ok := rows[0].(map[string]interface{}); ok {
				analysis.Sample = sample
				for field := range sample {
					analysis.Fields = append(analysis.Fields, field)
				}
				sort.Strings(analysis.Fields)
			}
		}
		results = append(results, analysis)
	}
	return results, nil
}

// Probe passes a single raw page request through to any connector, exposing
// the AFAS filter parameters for data exploration.
func (s *syncService) Probe(ctx context.Context, connectorName string, opts afas.RawOptions) (map[string]interface{}, error) {
	fetcher, _, err := s.newFetcher()
	if err != nil {
		return nil, err
	}
	return fetcher.FetchRaw(ctx, connectorName, opts)
}
