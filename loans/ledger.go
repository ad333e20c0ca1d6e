package loans

import (
	"errors"
	"fmt"

	"Gin_postgres_redis_loan_inventory/models"
)

// Ledger is the only writer of AssetItem.Status and StockItem.Loaned. Every
// method runs inside the caller's transaction and locks the item row first.
type Ledger struct{}

// ItemChange describes what a ledger call did to one item row.
type ItemChange struct {
	Asset   *models.AssetItem
	Stock   *models.StockItem
	Changed bool
	before  any
}

func (c ItemChange) audit(actorID string) AuditEntry {
	e := AuditEntry{Action: models.AuditUpdate, OldValues: c.before, ActorID: actorID}
	switch {
	case c.Asset != nil:
		e.Table, e.RecordID, e.NewValues = models.AssetItemTable, c.Asset.ID, *c.Asset
	case c.Stock != nil:
		e.Table, e.RecordID, e.NewValues = models.StockItemTable, c.Stock.ID, *c.Stock
	}
	return e
}

// Reserve marks the target unavailable for other loans. It fails with
// ErrUnavailable when an asset is not EN_STOCK or when fewer than the
// requested stock units are free.
func (Ledger) Reserve(tx Tx, t models.LineTarget) (ItemChange, error) {
	switch t := t.(type) {
	case models.AssetTarget:
		it, err := tx.LockAssetItem(t.ID)
		if err != nil {
			return ItemChange{}, err
		}
		if it.Status != models.AssetInStock {
			return ItemChange{}, fmt.Errorf("%w: asset item %s is %s", ErrUnavailable, it.ID, it.Status)
		}
		before := *it
		if err := tx.UpdateAssetStatus(it.ID, models.AssetLoaned); err != nil {
			return ItemChange{}, err
		}
		it.Status = models.AssetLoaned
		return ItemChange{Asset: it, Changed: true, before: before}, nil

	case models.StockTarget:
		if t.Quantity <= 0 {
			return ItemChange{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		it, err := tx.LockStockItem(t.ID)
		if err != nil {
			return ItemChange{}, err
		}
		if it.Available() < t.Quantity {
			return ItemChange{}, fmt.Errorf("%w: stock item %s has %d free, %d requested",
				ErrUnavailable, it.ID, it.Available(), t.Quantity)
		}
		before := *it
		it.Loaned += t.Quantity
		if err := tx.UpdateStockItem(it); err != nil {
			return ItemChange{}, err
		}
		return ItemChange{Stock: it, Changed: true, before: before}, nil
	}
	return ItemChange{}, fmt.Errorf("%w: unknown line target %T", ErrValidation, t)
}

// Release undoes a reservation. An asset only goes back to EN_STOCK from
// PRETE; HS and REPARATION outlive the loan. Stock is floored at zero. An item
// row that no longer exists has nothing to release.
func (Ledger) Release(tx Tx, t models.LineTarget) (ItemChange, error) {
	switch t := t.(type) {
	case models.AssetTarget:
		it, err := tx.LockAssetItem(t.ID)
		if errors.Is(err, ErrNotFound) {
			return ItemChange{}, nil
		}
		if err != nil {
			return ItemChange{}, err
		}
		if it.Status != models.AssetLoaned {
			return ItemChange{Asset: it}, nil
		}
		before := *it
		if err := tx.UpdateAssetStatus(it.ID, models.AssetInStock); err != nil {
			return ItemChange{}, err
		}
		it.Status = models.AssetInStock
		return ItemChange{Asset: it, Changed: true, before: before}, nil

	case models.StockTarget:
		it, err := tx.LockStockItem(t.ID)
		if errors.Is(err, ErrNotFound) {
			return ItemChange{}, nil
		}
		if err != nil {
			return ItemChange{}, err
		}
		before := *it
		it.Loaned = max(it.Loaned-t.Quantity, 0)
		if it.Loaned == before.Loaned {
			return ItemChange{Stock: it}, nil
		}
		if err := tx.UpdateStockItem(it); err != nil {
			return ItemChange{}, err
		}
		return ItemChange{Stock: it, Changed: true, before: before}, nil
	}
	return ItemChange{}, fmt.Errorf("%w: unknown line target %T", ErrValidation, t)
}

// MarkAssetStatus is the manual status change used by inventory staff.
// PRETE can only be reached through Reserve. Putting an item back to
// EN_STOCK while an open line still references it restores PRETE instead.
func (Ledger) MarkAssetStatus(tx Tx, id string, status models.AssetStatus) (ItemChange, error) {
	if !status.Valid() || status == models.AssetLoaned {
		return ItemChange{}, fmt.Errorf("%w: status %q cannot be set manually", ErrValidation, status)
	}
	it, err := tx.LockAssetItem(id)
	if err != nil {
		return ItemChange{}, err
	}
	if status == models.AssetInStock {
		n, err := tx.CountOpenAssetLines(id, "")
		if err != nil {
			return ItemChange{}, err
		}
		if n > 0 {
			status = models.AssetLoaned
		}
	}
	if it.Status == status {
		return ItemChange{Asset: it}, nil
	}
	before := *it
	if err := tx.UpdateAssetStatus(id, status); err != nil {
		return ItemChange{}, err
	}
	it.Status = status
	return ItemChange{Asset: it, Changed: true, before: before}, nil
}

// AdjustStockQuantity changes the total count; it never drops below what is
// currently loaned.
func (Ledger) AdjustStockQuantity(tx Tx, id string, quantity int) (ItemChange, error) {
	if quantity < 0 {
		return ItemChange{}, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	it, err := tx.LockStockItem(id)
	if err != nil {
		return ItemChange{}, err
	}
	if quantity < it.Loaned {
		return ItemChange{}, fmt.Errorf("%w: quantity %d is below loaned %d", ErrValidation, quantity, it.Loaned)
	}
	if quantity == it.Quantity {
		return ItemChange{Stock: it}, nil
	}
	before := *it
	it.Quantity = quantity
	if err := tx.UpdateStockItem(it); err != nil {
		return ItemChange{}, err
	}
	return ItemChange{Stock: it, Changed: true, before: before}, nil
}
