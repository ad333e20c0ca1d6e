package loans

import (
	"context"

	"Gin_postgres_redis_loan_inventory/models"
)

// Store runs fn inside one database transaction. A non-nil error from fn,
// or a cancelled ctx, rolls everything back.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the persistence surface the core needs. Lock* methods take a row
// lock held until the transaction ends. Lookups of missing rows return an
// error wrapping ErrNotFound.
type Tx interface {
	EmployeeExists(id string) (bool, error)

	CreateLoan(l *models.Loan) error
	LockLoan(id string) (*models.Loan, error)
	// LoadLoan reads a loan with its lines and their item snapshots, no lock.
	LoadLoan(id string) (*models.Loan, error)
	FindLoans(f ListFilter) ([]models.Loan, error)
	// UpdateLoan writes status, closedAt and both signature pairs.
	UpdateLoan(l *models.Loan) error
	DeleteLoan(id string) error

	// Lines returns the loan's lines in insertion order.
	Lines(loanID string) ([]models.LoanLine, error)
	Line(id string) (*models.LoanLine, error)
	CreateLine(line *models.LoanLine) error
	DeleteLine(id string) error
	DeleteLines(loanID string) error
	// CountOpenAssetLines counts lines on OPEN loans other than excludeLoanID
	// that reference the asset item.
	CountOpenAssetLines(assetItemID, excludeLoanID string) (int64, error)

	LockAssetItem(id string) (*models.AssetItem, error)
	LockStockItem(id string) (*models.StockItem, error)
	UpdateAssetStatus(id string, status models.AssetStatus) error
	UpdateStockItem(item *models.StockItem) error
}

type ListFilter struct {
	Status     models.LoanStatus
	EmployeeID string
}

// SignatureStore keeps signature images and hands back their URL.
type SignatureStore interface {
	Save(ctx context.Context, image []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// AuditRecorder persists one audit entry.
type AuditRecorder interface {
	Record(ctx context.Context, e AuditEntry) error
}

// Effects receives post-commit housekeeping. Implementations must not block
// and must not report failures back to the caller.
type Effects interface {
	Audit(e AuditEntry)
	DeleteSignature(url string)
}

type AuditEntry struct {
	Action    models.AuditAction
	Table     string
	RecordID  string
	OldValues any
	NewValues any
	ActorID   string
}
