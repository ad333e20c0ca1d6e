package loans

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_loan_inventory/models"

	"github.com/google/uuid"
)

// Service is the loan/inventory consistency engine. Every mutation runs in
// one Store transaction; audit entries and signature-file cleanup are handed
// to Effects only after the transaction has committed.
type Service struct {
	store      Store
	ledger     Ledger
	signatures SignatureStore
	effects    Effects

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

func NewService(store Store, signatures SignatureStore, effects Effects, opts ...Option) *Service {
	s := &Service{
		store:      store,
		signatures: signatures,
		effects:    effects,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open creates an OPEN loan with no lines for an existing employee.
func (s *Service) Open(ctx context.Context, employeeID, actorID string) (*models.Loan, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employeeId is required", ErrValidation)
	}
	var loan *models.Loan
	err := s.store.InTx(ctx, func(tx Tx) error {
		ok, err := tx.EmployeeExists(employeeID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: employee %s", ErrNotFound, employeeID)
		}
		l := &models.Loan{
			ID:          s.newID(),
			EmployeeID:  employeeID,
			CreatedByID: actorID,
			Status:      models.LoanOpen,
			OpenedAt:    s.now(),
			Lines:       []models.LoanLine{},
		}
		if err := tx.CreateLoan(l); err != nil {
			return err
		}
		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.effects.Audit(AuditEntry{
		Action: models.AuditCreate, Table: models.LoanTable, RecordID: loan.ID,
		NewValues: *loan, ActorID: actorID,
	})
	return loan, nil
}

func (s *Service) Get(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan *models.Loan
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		loan, err = tx.LoadLoan(loanID)
		return err
	})
	return loan, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Loan, error) {
	if f.Status != "" && f.Status != models.LoanOpen && f.Status != models.LoanClosed {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	var out []models.Loan
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		out, err = tx.FindLoans(f)
		return err
	})
	return out, err
}

// MarkAssetStatus flips an asset item to HS, REPARATION or back to EN_STOCK.
func (s *Service) MarkAssetStatus(ctx context.Context, itemID string, status models.AssetStatus, actorID string) (*models.AssetItem, error) {
	var ch ItemChange
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		ch, err = s.ledger.MarkAssetStatus(tx, itemID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ch.Changed {
		s.effects.Audit(ch.audit(actorID))
	}
	return ch.Asset, nil
}

func (s *Service) AdjustStockQuantity(ctx context.Context, itemID string, quantity int, actorID string) (*models.StockItem, error) {
	var ch ItemChange
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		ch, err = s.ledger.AdjustStockQuantity(tx, itemID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ch.Changed {
		s.effects.Audit(ch.audit(actorID))
	}
	return ch.Stock, nil
}

func (s *Service) auditChanges(changes []ItemChange, actorID string) {
	for _, ch := range changes {
		if ch.Changed {
			s.effects.Audit(ch.audit(actorID))
		}
	}
}
