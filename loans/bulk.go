package loans

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"Gin_postgres_redis_loan_inventory/models"
)

// DeleteLoans reverts and deletes every loan in ids inside one transaction.
// One missing id aborts the whole batch. All loans are locked in id order
// before any item row, and item rows are then locked in item order.
func (s *Service) DeleteLoans(ctx context.Context, ids []string, actorID string) (int, error) {
	return s.deleteLoans(ctx, ids, actorID, nil)
}

// DeleteLoan is the single-loan path. A CLOSED loan carrying a signature is
// kept for the audit trail.
func (s *Service) DeleteLoan(ctx context.Context, loanID, actorID string) error {
	_, err := s.deleteLoans(ctx, []string{loanID}, actorID, func(l *models.Loan) error {
		if !l.IsOpen() && l.HasSignature() {
			return fmt.Errorf("%w: loan %s", ErrCannotDeleteSignedLoan, l.ID)
		}
		return nil
	})
	return err
}

func normalizeIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no loan ids given", ErrValidation)
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("%w: empty loan id", ErrValidation)
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func (s *Service) deleteLoans(ctx context.Context, ids []string, actorID string, guard func(*models.Loan) error) (int, error) {
	ids, err := normalizeIDs(ids)
	if err != nil {
		return 0, err
	}
	var (
		deleted []models.Loan
		changes []ItemChange
	)
	err = s.store.InTx(ctx, func(tx Tx) error {
		deleted, changes = nil, nil
		// 先按 id 顺序锁住全部借用单，再锁物品：与 AddLine/RemoveLine 的
		// loan -> item 顺序一致
		var pending []lineRef
		for _, id := range ids {
			l, err := tx.LockLoan(id)
			if err != nil {
				return err
			}
			if guard != nil {
				if err := guard(l); err != nil {
					return err
				}
			}
			lines, err := tx.Lines(l.ID)
			if err != nil {
				return err
			}
			l.Lines = lines
			deleted = append(deleted, *l)
			for _, line := range lines {
				pending = append(pending, lineRef{loanID: l.ID, line: line})
			}
		}

		// 物品按固定顺序加锁，两个批次之间也不会互相等待
		slices.SortStableFunc(pending, func(a, b lineRef) int { return strings.Compare(a.lockKey(), b.lockKey()) })
		for _, p := range pending {
			ch, err := s.releaseForDeletion(tx, p.loanID, p.line)
			if err != nil {
				return err
			}
			changes = append(changes, ch)
		}

		for _, l := range deleted {
			if err := tx.DeleteLines(l.ID); err != nil {
				return err
			}
			if err := tx.DeleteLoan(l.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, l := range deleted {
		for _, url := range l.SignatureURLs() {
			s.effects.DeleteSignature(url)
		}
		s.effects.Audit(AuditEntry{
			Action: models.AuditDelete, Table: models.LoanTable, RecordID: l.ID,
			OldValues: l, ActorID: actorID,
		})
	}
	s.auditChanges(changes, actorID)
	return len(deleted), nil
}

// releaseForDeletion releases a line of a loan being deleted. An asset that a
// different OPEN loan now holds is left alone; that can only happen when a
// closed loan's item was put back in stock by hand and loaned again.
func (s *Service) releaseForDeletion(tx Tx, loanID string, line models.LoanLine) (ItemChange, error) {
	target := line.Target()
	if target == nil {
		return ItemChange{}, nil
	}
	if at, ok := target.(models.AssetTarget); ok {
		n, err := tx.CountOpenAssetLines(at.ID, loanID)
		if err != nil {
			return ItemChange{}, err
		}
		if n > 0 {
			return ItemChange{}, nil
		}
	}
	return s.ledger.Release(tx, target)
}

type lineRef struct {
	loanID string
	line   models.LoanLine
}

func (r lineRef) lockKey() string {
	switch t := r.line.Target().(type) {
	case models.AssetTarget:
		return "asset:" + t.ID
	case models.StockTarget:
		return "stock:" + t.ID
	}
	return ""
}
