package loans

import (
	"context"
	"fmt"

	"Gin_postgres_redis_loan_inventory/models"
)

// Close moves an OPEN loan to CLOSED once Gate passes. Items are left as
// they are: signing as returned and checking back into stock are separate
// facts, and lines are released only through RemoveLine or deletion.
//
// Closing a CLOSED loan is an error, not a no-op.
func (s *Service) Close(ctx context.Context, loanID, actorID string) (*models.Loan, error) {
	var (
		loan   *models.Loan
		before models.Loan
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		l, err := tx.LockLoan(loanID)
		if err != nil {
			return err
		}
		if !l.IsOpen() {
			return fmt.Errorf("%w: loan %s", ErrAlreadyClosed, l.ID)
		}
		lines, err := tx.Lines(l.ID)
		if err != nil {
			return err
		}
		if err := Gate(*l, len(lines)); err != nil {
			return err
		}
		before = *l
		now := s.now()
		l.Status = models.LoanClosed
		l.ClosedAt = &now
		if err := tx.UpdateLoan(l); err != nil {
			return err
		}
		loan, err = tx.LoadLoan(l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.effects.Audit(AuditEntry{
		Action: models.AuditUpdate, Table: models.LoanTable, RecordID: loan.ID,
		OldValues: before, NewValues: *loan, ActorID: actorID,
	})
	return loan, nil
}
