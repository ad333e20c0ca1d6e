package loans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"Gin_postgres_redis_loan_inventory/models"
)

// LineSelector is the raw request for a new line: exactly one of the two ids.
// Quantity is required for stock and must be 0 or 1 for an asset.
type LineSelector struct {
	AssetItemID string
	StockItemID string
	Quantity    int
}

// Target validates the selector and turns it into a LineTarget.
func (sel LineSelector) Target() (models.LineTarget, error) {
	asset := strings.TrimSpace(sel.AssetItemID)
	stock := strings.TrimSpace(sel.StockItemID)
	switch {
	case asset != "" && stock != "":
		return nil, fmt.Errorf("%w: set either assetItemId or stockItemId, not both", ErrValidation)
	case asset == "" && stock == "":
		return nil, fmt.Errorf("%w: assetItemId or stockItemId is required", ErrValidation)
	case sel.Quantity < 0:
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	case asset != "":
		if sel.Quantity > 1 {
			return nil, fmt.Errorf("%w: an asset line has quantity 1", ErrValidation)
		}
		return models.AssetTarget{ID: asset}, nil
	}
	if sel.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	return models.StockTarget{ID: stock, Quantity: sel.Quantity}, nil
}

// AddLine reserves the selected item and attaches it to an OPEN loan. The
// returned line carries the item as it is after the reservation.
func (s *Service) AddLine(ctx context.Context, loanID string, sel LineSelector, actorID string) (*models.LoanLine, error) {
	target, err := sel.Target()
	if err != nil {
		return nil, err
	}
	var (
		line *models.LoanLine
		ch   ItemChange
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		loan, err := tx.LockLoan(loanID)
		if err != nil {
			return err
		}
		if !loan.IsOpen() {
			return fmt.Errorf("%w: loan %s is %s", ErrLoanNotOpen, loan.ID, loan.Status)
		}
		ch, err = s.ledger.Reserve(tx, target)
		if errors.Is(err, ErrUnavailable) {
			if _, ok := target.(models.AssetTarget); ok {
				return fmt.Errorf("%w: %w", ErrItemAlreadyLoaned, err)
			}
			return fmt.Errorf("%w: %w", ErrInsufficientStock, err)
		}
		if err != nil {
			return err
		}
		l := models.NewLoanLine(s.newID(), loan.ID, target)
		l.AddedAt = s.now()
		if err := tx.CreateLine(&l); err != nil {
			return err
		}
		l.AssetItem, l.StockItem = ch.Asset, ch.Stock
		line = &l
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.effects.Audit(AuditEntry{
		Action: models.AuditCreate, Table: models.LoanLineTable, RecordID: line.ID,
		NewValues: *line, ActorID: actorID,
	})
	s.auditChanges([]ItemChange{ch}, actorID)
	return line, nil
}

// RemoveLine releases the line's item and deletes the line in the same
// transaction. Lines of CLOSED loans are history and cannot be removed.
func (s *Service) RemoveLine(ctx context.Context, loanID, lineID, actorID string) (*models.Loan, error) {
	var (
		loan    *models.Loan
		removed models.LoanLine
		ch      ItemChange
	)
	err := s.store.InTx(ctx, func(tx Tx) error {
		l, err := tx.LockLoan(loanID)
		if err != nil {
			return err
		}
		if !l.IsOpen() {
			return fmt.Errorf("%w: loan %s is %s", ErrLoanNotOpen, l.ID, l.Status)
		}
		line, err := tx.Line(lineID)
		if err != nil {
			return err
		}
		if line.LoanID != l.ID {
			return fmt.Errorf("%w: line %s on loan %s", ErrNotFound, lineID, l.ID)
		}
		target := line.Target()
		if target == nil {
			return fmt.Errorf("line %s references no item", line.ID)
		}
		if ch, err = s.ledger.Release(tx, target); err != nil {
			return err
		}
		if err := tx.DeleteLine(line.ID); err != nil {
			return err
		}
		removed = *line
		loan, err = tx.LoadLoan(l.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.effects.Audit(AuditEntry{
		Action: models.AuditDelete, Table: models.LoanLineTable, RecordID: removed.ID,
		OldValues: removed, ActorID: actorID,
	})
	s.auditChanges([]ItemChange{ch}, actorID)
	return loan, nil
}
