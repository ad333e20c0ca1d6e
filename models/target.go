package models

// LineTarget is what a loan line points at: exactly one asset item or one
// stock item with a quantity. The unexported marker keeps the set closed.
type LineTarget interface {
	ItemID() string
	isLineTarget()
}

type AssetTarget struct {
	ID string
}

type StockTarget struct {
	ID       string
	Quantity int
}

func (t AssetTarget) ItemID() string { return t.ID }
func (t StockTarget) ItemID() string { return t.ID }

func (AssetTarget) isLineTarget() {}
func (StockTarget) isLineTarget() {}

// Target 把持久化的两列还原成 LineTarget；两列都为空时返回 nil
func (l LoanLine) Target() LineTarget {
	switch {
	case l.AssetItemID != nil:
		return AssetTarget{ID: *l.AssetItemID}
	case l.StockItemID != nil:
		return StockTarget{ID: *l.StockItemID, Quantity: l.Quantity}
	}
	return nil
}

// NewLoanLine 按 LineTarget 填充互斥的外键列
func NewLoanLine(id, loanID string, t LineTarget) LoanLine {
	line := LoanLine{ID: id, LoanID: loanID, Quantity: 1}
	switch t := t.(type) {
	case AssetTarget:
		itemID := t.ID
		line.AssetItemID = &itemID
	case StockTarget:
		itemID := t.ID
		line.StockItemID = &itemID
		line.Quantity = t.Quantity
	}
	return line
}
