package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-eol-dashboard/internal/filter"
	"go-eol-dashboard/internal/model"
	"go-eol-dashboard/internal/phase"
)

type fakeHistoryRepo struct {
	entries []model.PhaseHistory
}

func (r *fakeHistoryRepo) Create(entry *model.PhaseHistory) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) FindByProductCode(code string) ([]model.PhaseHistory, error) {
	var out []model.PhaseHistory
	for _, e := range r.entries {
		if e.ProductCode == code {
			out = append(out, e)
		}
	}
	return out, nil
}

func storedProduct(code string, stock, sales int, eol *time.Time) model.Product {
	p := model.Product{
		ProductName:  "Widget " + code,
		StockRegular: stock,
		MonthlySales: sales,
		EOLDate:      eol,
	}
	p.ProductCode = code
	p.CurrentPhase = int(phase.Calculate(stock, sales, eol, syncNow))
	return p
}

func newTestProductService(repo *fakeProductRepo, history *fakeHistoryRepo) *productService {
	return &productService{
		productRepo: repo,
		historyRepo: history,
		now:         func() time.Time { return syncNow },
	}
}

func TestGetComputesDerivedFields(t *testing.T) {
	eol := syncNow.AddDate(0, 0, -100)
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, &eol)}}
	svc := newTestProductService(repo, nil)

	view, err := svc.Get("P-000")
	require.NoError(t, err)

	require.NotNil(t, view.MonthsOfStock)
	assert.Equal(t, 7.5, *view.MonthsOfStock)
	require.NotNil(t, view.DaysSinceEOL)
	assert.Equal(t, 100, *view.DaysSinceEOL)
	assert.Equal(t, int(phase.PhasingOut), view.CalculatedPhase)
}

func TestGetUnknownProduct(t *testing.T) {
	svc := newTestProductService(&fakeProductRepo{}, nil)
	_, err := svc.Get("nope")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateSetsAndClearsEOLDate(t *testing.T) {
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, nil)}}
	history := &fakeHistoryRepo{}
	svc := newTestProductService(repo, history)

	eol := syncNow.AddDate(0, 0, -10)
	view, err := svc.Update("P-000", &ProductUpdate{EOLDate: &eol})
	require.NoError(t, err)
	assert.Equal(t, int(phase.PhasingOut), view.CurrentPhase)

	view, err = svc.Update("P-000", &ProductUpdate{ClearEOLDate: true})
	require.NoError(t, err)
	assert.Nil(t, view.EOLDate)
	assert.Equal(t, int(phase.InStock), view.CurrentPhase)
}

func TestUpdateRecordsPhaseTransition(t *testing.T) {
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, nil)}}
	history := &fakeHistoryRepo{}
	svc := newTestProductService(repo, history)

	eol := syncNow.AddDate(0, 0, -400)
	_, err := svc.Update("P-000", &ProductUpdate{EOLDate: &eol})
	require.NoError(t, err)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, "P-000", entry.ProductCode)
	assert.Equal(t, int(phase.InStock), entry.FromPhase)
	assert.Equal(t, int(phase.ActionRequired), entry.ToPhase)
	require.NotNil(t, entry.Reason)
	assert.Equal(t, "manual edit", *entry.Reason)
}

func TestUpdateWithoutPhaseChangeWritesNoHistory(t *testing.T) {
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, nil)}}
	history := &fakeHistoryRepo{}
	svc := newTestProductService(repo, history)

	name := "Renamed Widget"
	view, err := svc.Update("P-000", &ProductUpdate{ProductName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Widget", view.ProductName)
	assert.Empty(t, history.entries)
}

func TestApplyWebhookAcceptsLegacyFieldNames(t *testing.T) {
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, nil)}}
	svc := newTestProductService(repo, &fakeHistoryRepo{})

	stock := 12
	rrp := 9.99
	view, err := svc.ApplyWebhook(&WebhookUpdate{
		ProductCode:   "P-000",
		StockQuantity: &stock,
		Rrp:           &rrp,
	})
	require.NoError(t, err)

	assert.Equal(t, 12, view.StockRegular, "legacy stock_quantity maps to stock_regular")
	require.NotNil(t, view.RrpEUR)
	assert.Equal(t, 9.99, *view.RrpEUR, "legacy rrp maps to rrp_eur")
}

func TestApplyWebhookCanonicalWinsOverLegacy(t *testing.T) {
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, nil)}}
	svc := newTestProductService(repo, &fakeHistoryRepo{})

	legacy, canonical := 5, 8
	view, err := svc.ApplyWebhook(&WebhookUpdate{
		ProductCode:   "P-000",
		StockQuantity: &legacy,
		StockRegular:  &canonical,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, view.StockRegular)
}

func TestApplyWebhookReclassifies(t *testing.T) {
	eol := syncNow.AddDate(0, 0, -10)
	repo := &fakeProductRepo{existing: []model.Product{storedProduct("P-000", 30, 4, &eol)}}
	history := &fakeHistoryRepo{}
	svc := newTestProductService(repo, history)

	zero := 0
	view, err := svc.ApplyWebhook(&WebhookUpdate{ProductCode: "P-000", StockQuantity: &zero})
	require.NoError(t, err)

	assert.Equal(t, int(phase.StockDepleted), view.CurrentPhase)
	require.Len(t, history.entries, 1)
	assert.Equal(t, "webhook update", *history.entries[0].Reason)
}

func TestApplyWebhookRequiresProductCode(t *testing.T) {
	svc := newTestProductService(&fakeProductRepo{}, nil)
	_, err := svc.ApplyWebhook(&WebhookUpdate{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProductCode")
	assert.Contains(t, err.Error(), "required")
}

func TestApplyWebhookUnknownProduct(t *testing.T) {
	svc := newTestProductService(&fakeProductRepo{}, nil)
	_, err := svc.ApplyWebhook(&WebhookUpdate{ProductCode: "nope"})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestSearchFiltersStoredProducts(t *testing.T) {
	eol := syncNow.AddDate(0, 0, -400)
	repo := &fakeProductRepo{existing: []model.Product{
		storedProduct("P-000", 30, 4, nil),
		storedProduct("P-001", 30, 4, &eol),
		storedProduct("P-002", 0, 4, nil),
	}}
	svc := newTestProductService(repo, nil)

	groups := []filter.Group{{Logic: filter.LogicAnd, Conditions: []filter.Condition{
		{Field: "calculated_phase", Type: filter.FieldNumber, Operator: "equals", Value: float64(phase.ActionRequired)},
	}}}

	views, err := svc.Search(groups, filter.LogicAnd)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "P-001", views[0].ProductCode)

	// No groups means no filtering.
	views, err = svc.Search(nil, filter.LogicAnd)
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestImportSuppliers(t *testing.T) {
	repo := &fakeProductRepo{existing: []model.Product{
		storedProduct("P-000", 1, 1, nil),
		storedProduct("P-001", 1, 1, nil),
	}}
	svc := newTestProductService(repo, nil)

	result, err := svc.ImportSuppliers(map[string]string{
		"P-000":   "Acme BV",
		"UNKNOWN": "Ghost Corp",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Matched)
	assert.Equal(t, 1, result.Unmatched)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "Acme BV", repo.suppliers["P-000"])
}
