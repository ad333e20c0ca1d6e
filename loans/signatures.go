package loans

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_loan_inventory/models"
)

type signatureSlot int

const (
	pickupSlot signatureSlot = iota
	returnSlot
)

func (s signatureSlot) String() string {
	if s == pickupSlot {
		return "pickup"
	}
	return "return"
}

func (s signatureSlot) fields(l *models.Loan) (**string, **time.Time) {
	if s == pickupSlot {
		return &l.PickupSignatureURL, &l.PickupSignedAt
	}
	return &l.ReturnSignatureURL, &l.ReturnSignedAt
}

// SignPickup stores the borrower's pickup signature on an OPEN loan.
func (s *Service) SignPickup(ctx context.Context, loanID string, image []byte, actorID string) (*models.Loan, error) {
	return s.sign(ctx, loanID, image, actorID, pickupSlot)
}

// SignReturn stores the return signature. The pickup signature must exist.
// Signing does not release any item.
func (s *Service) SignReturn(ctx context.Context, loanID string, image []byte, actorID string) (*models.Loan, error) {
	return s.sign(ctx, loanID, image, actorID, returnSlot)
}

func (s *Service) sign(ctx context.Context, loanID string, image []byte, actorID string, slot signatureSlot) (*models.Loan, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: %s signature image is empty", ErrValidation, slot)
	}
	url, err := s.signatures.Save(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("save %s signature: %w", slot, err)
	}

	var (
		loan     *models.Loan
		before   models.Loan
		replaced *string
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		l, err := tx.LockLoan(loanID)
		if err != nil {
			return err
		}
		if !l.IsOpen() {
			return fmt.Errorf("%w: loan %s is %s", ErrLoanNotOpen, l.ID, l.Status)
		}
		if slot == returnSlot && l.PickupSignatureURL == nil {
			return fmt.Errorf("%w: loan %s has no pickup signature", ErrMissingSignature, l.ID)
		}
		before = *l
		urlField, atField := slot.fields(l)
		replaced = *urlField
		now := s.now()
		*urlField, *atField = &url, &now
		if err := tx.UpdateLoan(l); err != nil {
			return err
		}
		loan, err = tx.LoadLoan(l.ID)
		return err
	})
	if err != nil {
		s.effects.DeleteSignature(url)
		return nil, err
	}
	if replaced != nil {
		s.effects.DeleteSignature(*replaced)
	}
	s.effects.Audit(AuditEntry{
		Action: models.AuditUpdate, Table: models.LoanTable, RecordID: loan.ID,
		OldValues: before, NewValues: *loan, ActorID: actorID,
	})
	return loan, nil
}

// Gate is the close precondition: at least one line and both signatures.
func Gate(l models.Loan, lineCount int) error {
	switch {
	case lineCount == 0:
		return fmt.Errorf("%w: loan %s", ErrEmptyLoan, l.ID)
	case l.PickupSignatureURL == nil:
		return fmt.Errorf("%w: loan %s has no pickup signature", ErrMissingSignature, l.ID)
	case l.ReturnSignatureURL == nil:
		return fmt.Errorf("%w: loan %s has no return signature", ErrMissingSignature, l.ID)
	}
	return nil
}
