// Package loanstest provides in-memory doubles for the loans ports.
package loanstest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/models"
)

type state struct {
	employees map[string]models.Employee
	assets    map[string]models.AssetItem
	stocks    map[string]models.StockItem
	loans     map[string]models.Loan
	lines     map[string]models.LoanLine
	lineSeq   map[string]int
	seq       int
}

func (s *state) clone() *state {
	return &state{
		employees: maps.Clone(s.employees),
		assets:    maps.Clone(s.assets),
		stocks:    maps.Clone(s.stocks),
		loans:     maps.Clone(s.loans),
		lines:     maps.Clone(s.lines),
		lineSeq:   maps.Clone(s.lineSeq),
		seq:       s.seq,
	}
}

// Store is a loans.Store that serializes transactions with one mutex and
// commits by swapping in the working copy.
type Store struct {
	mu sync.Mutex
	st *state

	// FailOn makes the named Tx method return the given error, to exercise
	// rollback paths.
	FailOn map[string]error

	commits atomic.Int64
}

func NewStore() *Store {
	return &Store{st: &state{
		employees: map[string]models.Employee{},
		assets:    map[string]models.AssetItem{},
		stocks:    map[string]models.StockItem{},
		loans:     map[string]models.Loan{},
		lines:     map[string]models.LoanLine{},
		lineSeq:   map[string]int{},
	}}
}

func (s *Store) InTx(ctx context.Context, fn func(tx loans.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&memTx{st: work, failOn: s.FailOn}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	s.commits.Add(1)
	return nil
}

// Commits counts successful transactions.
func (s *Store) Commits() int64 { return s.commits.Load() }

// Seeding and inspection helpers. They bypass transactions.

func (s *Store) AddEmployee(e models.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.employees[e.ID] = e
}

func (s *Store) AddAssetItem(it models.AssetItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.Status == "" {
		it.Status = models.AssetInStock
	}
	s.st.assets[it.ID] = it
}

func (s *Store) AddStockItem(it models.StockItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stocks[it.ID] = it
}

// SetAssetStatus flips a status behind the ledger's back, the way a manual
// database edit would.
func (s *Store) SetAssetStatus(id string, status models.AssetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.st.assets[id]
	it.Status = status
	s.st.assets[id] = it
}

func (s *Store) AssetItem(id string) (models.AssetItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.assets[id]
	return it, ok
}

func (s *Store) StockItem(id string) (models.StockItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.stocks[id]
	return it, ok
}

func (s *Store) Loan(id string) (models.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.st.loans[id]
	return l, ok
}

func (s *Store) AssetItems() []models.AssetItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.st.assets))
}

func (s *Store) StockItems() []models.StockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.st.stocks))
}

// OpenLines returns every line that belongs to an OPEN loan.
func (s *Store) OpenLines() []models.LoanLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.LoanLine
	for _, line := range s.st.lines {
		if s.st.loans[line.LoanID].Status == models.LoanOpen {
			out = append(out, line)
		}
	}
	return out
}

func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.lines)
}

type memTx struct {
	st     *state
	failOn map[string]error
}

func (t *memTx) fail(op string) error {
	if err, ok := t.failOn[op]; ok {
		return err
	}
	return nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", loans.ErrNotFound, kind, id)
}

func (t *memTx) EmployeeExists(id string) (bool, error) {
	if err := t.fail("EmployeeExists"); err != nil {
		return false, err
	}
	_, ok := t.st.employees[id]
	return ok, nil
}

func (t *memTx) CreateLoan(l *models.Loan) error {
	if err := t.fail("CreateLoan"); err != nil {
		return err
	}
	row := *l
	row.Lines = nil
	t.st.loans[l.ID] = row
	return nil
}

func (t *memTx) LockLoan(id string) (*models.Loan, error) {
	if err := t.fail("LockLoan"); err != nil {
		return nil, err
	}
	l, ok := t.st.loans[id]
	if !ok {
		return nil, notFound("loan", id)
	}
	return &l, nil
}

func (t *memTx) LoadLoan(id string) (*models.Loan, error) {
	l, ok := t.st.loans[id]
	if !ok {
		return nil, notFound("loan", id)
	}
	lines, _ := t.Lines(id)
	for i := range lines {
		if lines[i].AssetItemID != nil {
			if it, ok := t.st.assets[*lines[i].AssetItemID]; ok {
				lines[i].AssetItem = &it
			}
		}
		if lines[i].StockItemID != nil {
			if it, ok := t.st.stocks[*lines[i].StockItemID]; ok {
				lines[i].StockItem = &it
			}
		}
	}
	l.Lines = lines
	return &l, nil
}

func (t *memTx) FindLoans(f loans.ListFilter) ([]models.Loan, error) {
	var out []models.Loan
	for _, l := range t.st.loans {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.EmployeeID != "" && l.EmployeeID != f.EmployeeID {
			continue
		}
		full, _ := t.LoadLoan(l.ID)
		out = append(out, *full)
	}
	slices.SortFunc(out, func(a, b models.Loan) int { return b.OpenedAt.Compare(a.OpenedAt) })
	return out, nil
}

func (t *memTx) UpdateLoan(l *models.Loan) error {
	if err := t.fail("UpdateLoan"); err != nil {
		return err
	}
	row, ok := t.st.loans[l.ID]
	if !ok {
		return notFound("loan", l.ID)
	}
	row.Status = l.Status
	row.ClosedAt = l.ClosedAt
	row.PickupSignatureURL, row.PickupSignedAt = l.PickupSignatureURL, l.PickupSignedAt
	row.ReturnSignatureURL, row.ReturnSignedAt = l.ReturnSignatureURL, l.ReturnSignedAt
	t.st.loans[l.ID] = row
	return nil
}

func (t *memTx) DeleteLoan(id string) error {
	if err := t.fail("DeleteLoan"); err != nil {
		return err
	}
	delete(t.st.loans, id)
	return nil
}

func (t *memTx) Lines(loanID string) ([]models.LoanLine, error) {
	if err := t.fail("Lines"); err != nil {
		return nil, err
	}
	var out []models.LoanLine
	for _, line := range t.st.lines {
		if line.LoanID == loanID {
			out = append(out, line)
		}
	}
	slices.SortFunc(out, func(a, b models.LoanLine) int { return t.st.lineSeq[a.ID] - t.st.lineSeq[b.ID] })
	return out, nil
}

func (t *memTx) Line(id string) (*models.LoanLine, error) {
	line, ok := t.st.lines[id]
	if !ok {
		return nil, notFound("loan line", id)
	}
	return &line, nil
}

func (t *memTx) CreateLine(line *models.LoanLine) error {
	if err := t.fail("CreateLine"); err != nil {
		return err
	}
	row := *line
	row.AssetItem, row.StockItem = nil, nil
	t.st.seq++
	t.st.lines[row.ID] = row
	t.st.lineSeq[row.ID] = t.st.seq
	return nil
}

func (t *memTx) DeleteLine(id string) error {
	if err := t.fail("DeleteLine"); err != nil {
		return err
	}
	delete(t.st.lines, id)
	delete(t.st.lineSeq, id)
	return nil
}

func (t *memTx) DeleteLines(loanID string) error {
	if err := t.fail("DeleteLines"); err != nil {
		return err
	}
	for id, line := range t.st.lines {
		if line.LoanID == loanID {
			delete(t.st.lines, id)
			delete(t.st.lineSeq, id)
		}
	}
	return nil
}

func (t *memTx) CountOpenAssetLines(assetItemID, excludeLoanID string) (int64, error) {
	var n int64
	for _, line := range t.st.lines {
		if line.AssetItemID == nil || *line.AssetItemID != assetItemID || line.LoanID == excludeLoanID {
			continue
		}
		if t.st.loans[line.LoanID].Status == models.LoanOpen {
			n++
		}
	}
	return n, nil
}

func (t *memTx) LockAssetItem(id string) (*models.AssetItem, error) {
	if err := t.fail("LockAssetItem"); err != nil {
		return nil, err
	}
	it, ok := t.st.assets[id]
	if !ok {
		return nil, notFound("asset item", id)
	}
	return &it, nil
}

func (t *memTx) LockStockItem(id string) (*models.StockItem, error) {
	if err := t.fail("LockStockItem"); err != nil {
		return nil, err
	}
	it, ok := t.st.stocks[id]
	if !ok {
		return nil, notFound("stock item", id)
	}
	return &it, nil
}

func (t *memTx) UpdateAssetStatus(id string, status models.AssetStatus) error {
	if err := t.fail("UpdateAssetStatus"); err != nil {
		return err
	}
	it, ok := t.st.assets[id]
	if !ok {
		return notFound("asset item", id)
	}
	it.Status = status
	t.st.assets[id] = it
	return nil
}

func (t *memTx) UpdateStockItem(item *models.StockItem) error {
	if err := t.fail("UpdateStockItem"); err != nil {
		return err
	}
	if _, ok := t.st.stocks[item.ID]; !ok {
		return notFound("stock item", item.ID)
	}
	t.st.stocks[item.ID] = *item
	return nil
}
