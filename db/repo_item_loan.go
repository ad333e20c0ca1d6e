package db

import (
	"time"

	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormTx 实现 loans.Tx；所有 Lock* 都是 SELECT ... FOR UPDATE
type gormTx struct{ db *gorm.DB }

var forUpdate = clause.Locking{Strength: "UPDATE"}

// 非法 UUID 直接当作不存在，避免 postgres 报类型错误
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("added_at ASC, id ASC") }).
		Preload("Lines.AssetItem").
		Preload("Lines.StockItem")
}

func (t *gormTx) EmployeeExists(id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var n int64
	err := t.db.Model(&models.Employee{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Loans

func (t *gormTx) CreateLoan(l *models.Loan) error {
	return t.db.Omit(clause.Associations).Create(l).Error
}

func (t *gormTx) LockLoan(id string) (*models.Loan, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "loan", id)
	}
	var l models.Loan
	if err := t.db.Clauses(forUpdate).First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "loan", id)
	}
	return &l, nil
}

func (t *gormTx) LoadLoan(id string) (*models.Loan, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "loan", id)
	}
	var l models.Loan
	if err := withLines(t.db).First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "loan", id)
	}
	return &l, nil
}

func (t *gormTx) FindLoans(f loans.ListFilter) ([]models.Loan, error) {
	q := withLines(t.db).Model(&models.Loan{}).Order("opened_at DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EmployeeID != "" {
		if !validID(f.EmployeeID) {
			return []models.Loan{}, nil
		}
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

func (t *gormTx) UpdateLoan(l *models.Loan) error {
	return t.db.Model(&models.Loan{}).
		Where("id = ?", l.ID).
		Updates(map[string]any{
			"status":               l.Status,
			"closed_at":            l.ClosedAt,
			"pickup_signature_url": l.PickupSignatureURL,
			"pickup_signed_at":     l.PickupSignedAt,
			"return_signature_url": l.ReturnSignatureURL,
			"return_signed_at":     l.ReturnSignedAt,
			"updated_at":           time.Now(),
		}).Error
}

func (t *gormTx) DeleteLoan(id string) error {
	return t.db.Delete(&models.Loan{}, "id = ?", id).Error
}

// Lines

func (t *gormTx) Lines(loanID string) ([]models.LoanLine, error) {
	var lines []models.LoanLine
	err := t.db.Where("loan_id = ?", loanID).Order("added_at ASC, id ASC").Find(&lines).Error
	return lines, err
}

func (t *gormTx) Line(id string) (*models.LoanLine, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "loan line", id)
	}
	var line models.LoanLine
	if err := t.db.First(&line, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "loan line", id)
	}
	return &line, nil
}

func (t *gormTx) CreateLine(line *models.LoanLine) error {
	return t.db.Omit(clause.Associations).Create(line).Error
}

func (t *gormTx) DeleteLine(id string) error {
	return t.db.Delete(&models.LoanLine{}, "id = ?", id).Error
}

func (t *gormTx) DeleteLines(loanID string) error {
	return t.db.Where("loan_id = ?", loanID).Delete(&models.LoanLine{}).Error
}

func (t *gormTx) CountOpenAssetLines(assetItemID, excludeLoanID string) (int64, error) {
	q := t.db.Table(models.LoanLineTable+" ll").
		Joins("JOIN "+models.LoanTable+" l ON l.id = ll.loan_id").
		Where("ll.asset_item_id = ? AND l.status = ?", assetItemID, models.LoanOpen)
	if excludeLoanID != "" {
		q = q.Where("ll.loan_id <> ?", excludeLoanID)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Items

func (t *gormTx) LockAssetItem(id string) (*models.AssetItem, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "asset item", id)
	}
	var it models.AssetItem
	if err := t.db.Clauses(forUpdate).First(&it, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "asset item", id)
	}
	return &it, nil
}

func (t *gormTx) LockStockItem(id string) (*models.StockItem, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "stock item", id)
	}
	var it models.StockItem
	if err := t.db.Clauses(forUpdate).First(&it, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "stock item", id)
	}
	return &it, nil
}

func (t *gormTx) UpdateAssetStatus(id string, status models.AssetStatus) error {
	return t.db.Model(&models.AssetItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (t *gormTx) UpdateStockItem(item *models.StockItem) error {
	return t.db.Model(&models.StockItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"quantity":   item.Quantity,
			"loaned":     item.Loaned,
			"updated_at": time.Now(),
		}).Error
}
