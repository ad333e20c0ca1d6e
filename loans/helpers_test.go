package loans_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/loans/loanstest"
	"Gin_postgres_redis_loan_inventory/models"
)

const (
	employeeID = "emp-1"
	actorID    = "clerk-1"
	laptopID   = "asset-laptop"
	screenID   = "asset-screen"
	cablesID   = "stock-cables"
)

var pngImage = []byte("\x89PNG\r\n\x1a\nfake-signature")

type fixture struct {
	ctx     context.Context
	store   *loanstest.Store
	sigs    *loanstest.Signatures
	effects *loanstest.Effects
	svc     *loans.Service
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := loanstest.NewStore()
	store.AddEmployee(models.Employee{ID: employeeID, FirstName: "Ada", LastName: "Lovelace"})
	store.AddAssetItem(models.AssetItem{ID: laptopID, Tag: "LAP-001", AssetModelID: "model-laptop"})
	store.AddAssetItem(models.AssetItem{ID: screenID, Tag: "SCR-001", AssetModelID: "model-screen"})
	store.AddStockItem(models.StockItem{ID: cablesID, Quantity: 10, AssetModelID: "model-cable"})

	var seq atomic.Int64
	f := &fixture{
		ctx:     context.Background(),
		store:   store,
		sigs:    &loanstest.Signatures{},
		effects: &loanstest.Effects{},
		clock:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	f.svc = loans.NewService(store, f.sigs, f.effects,
		loans.WithClock(func() time.Time { return f.clock }),
		loans.WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
	)
	return f
}

func (f *fixture) openLoan(t *testing.T) *models.Loan {
	t.Helper()
	loan, err := f.svc.Open(f.ctx, employeeID, actorID)
	require.NoError(t, err)
	return loan
}

func (f *fixture) addAsset(t *testing.T, loanID, itemID string) *models.LoanLine {
	t.Helper()
	line, err := f.svc.AddLine(f.ctx, loanID, loans.LineSelector{AssetItemID: itemID}, actorID)
	require.NoError(t, err)
	return line
}

func (f *fixture) addStock(t *testing.T, loanID, itemID string, qty int) *models.LoanLine {
	t.Helper()
	line, err := f.svc.AddLine(f.ctx, loanID, loans.LineSelector{StockItemID: itemID, Quantity: qty}, actorID)
	require.NoError(t, err)
	return line
}

func (f *fixture) signBoth(t *testing.T, loanID string) {
	t.Helper()
	_, err := f.svc.SignPickup(f.ctx, loanID, pngImage, actorID)
	require.NoError(t, err)
	_, err = f.svc.SignReturn(f.ctx, loanID, pngImage, actorID)
	require.NoError(t, err)
}

func (f *fixture) assetStatus(t *testing.T, id string) models.AssetStatus {
	t.Helper()
	it, ok := f.store.AssetItem(id)
	require.True(t, ok, "asset item %s should exist", id)
	return it.Status
}

func (f *fixture) stockLoaned(t *testing.T, id string) int {
	t.Helper()
	it, ok := f.store.StockItem(id)
	require.True(t, ok, "stock item %s should exist", id)
	return it.Loaned
}

// assertInventoryInvariants checks availability and stock conservation
// against the lines of OPEN loans.
func (f *fixture) assertInventoryInvariants(t *testing.T) {
	t.Helper()

	assetRefs := map[string]int{}
	stockSum := map[string]int{}
	for _, line := range f.store.OpenLines() {
		switch target := line.Target().(type) {
		case models.AssetTarget:
			assetRefs[target.ID]++
		case models.StockTarget:
			stockSum[target.ID] += target.Quantity
		}
	}

	for _, it := range f.store.AssetItems() {
		refs := assetRefs[it.ID]
		assert.LessOrEqual(t, refs, 1, "asset %s is on more than one open line", it.ID)
		if it.Status == models.AssetLoaned {
			assert.Equal(t, 1, refs, "asset %s is PRETE without an open line", it.ID)
		}
		if refs == 1 {
			assert.NotEqual(t, models.AssetInStock, it.Status, "asset %s is on an open line but EN_STOCK", it.ID)
		}
	}
	for _, it := range f.store.StockItems() {
		assert.Equal(t, stockSum[it.ID], it.Loaned, "stock %s loaned counter drifted", it.ID)
		assert.GreaterOrEqual(t, it.Loaned, 0)
		assert.LessOrEqual(t, it.Loaned, it.Quantity)
	}
}
