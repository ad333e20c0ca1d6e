// db/repo_items_admin.go
package db

import (
	"Gin_postgres_redis_loan_inventory/models"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicate = errors.New("duplicate value")
	ErrInUse     = errors.New("record is referenced by loans")
)

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// Employees

func (r *Repo) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*e.Email))
		e.Email = &email
	}
	return duplicate(r.DB.WithContext(ctx).Create(e).Error)
}

func (r *Repo) ListEmployees(ctx context.Context, q string) ([]models.Employee, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Employee{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	var out []models.Employee
	err := tx.Order("last_name, first_name").Find(&out).Error
	return out, err
}

// 有借用记录（无论是否关闭）的员工不能删除；返回被删除的行供审计
func (r *Repo) DeleteEmployee(ctx context.Context, id string) (*models.Employee, error) {
	if !validID(id) {
		return nil, notFound(gorm.ErrRecordNotFound, "employee", id)
	}
	var e models.Employee
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&e, "id = ?", id).Error; err != nil {
			return notFound(err, "employee", id)
		}
		var n int64
		if err := tx.Model(&models.Loan{}).Where("employee_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrInUse
		}
		return tx.Delete(&models.Employee{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Asset models

func (r *Repo) CreateAssetModel(ctx context.Context, m *models.AssetModel) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *Repo) ListAssetModels(ctx context.Context) ([]models.AssetModel, error) {
	var out []models.AssetModel
	err := r.DB.WithContext(ctx).Order("type, brand, model").Find(&out).Error
	return out, err
}

func (r *Repo) assetModelExists(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound(gorm.ErrRecordNotFound, "asset model", id)
	}
	var m models.AssetModel
	return notFound(r.DB.WithContext(ctx).Select("id").First(&m, "id = ?", id).Error, "asset model", id)
}

// Items：新建时状态固定为 EN_STOCK / loaned = 0，之后只能经 Ledger 修改

func (r *Repo) CreateAssetItem(ctx context.Context, it *models.AssetItem) error {
	if err := r.assetModelExists(ctx, it.AssetModelID); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.Status = models.AssetInStock
	return duplicate(r.DB.WithContext(ctx).Create(it).Error)
}

func (r *Repo) CreateStockItem(ctx context.Context, it *models.StockItem) error {
	if err := r.assetModelExists(ctx, it.AssetModelID); err != nil {
		return err
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.Loaned = 0
	return r.DB.WithContext(ctx).Create(it).Error
}

func (r *Repo) ListStockItems(ctx context.Context) ([]models.StockItem, error) {
	var out []models.StockItem
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

type AdminItemRow struct {
	// Item fields
	ID           string             `json:"id"`
	Tag          string             `json:"tag"`
	Serial       *string            `json:"serial,omitempty"`
	Status       models.AssetStatus `json:"status"`
	AssetModelID string             `json:"assetModelId"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`

	// Current open loan (nullable)
	LoanID     *string    `json:"loanId,omitempty"`
	EmployeeID *string    `json:"employeeId,omitempty"`
	FirstName  *string    `json:"firstName,omitempty"`
	LastName   *string    `json:"lastName,omitempty"`
	OpenedAt   *time.Time `json:"openedAt,omitempty"`
}

type AdminItemsQuery struct {
	Q      string // 模糊搜索：tag/serial
	Status string // "", EN_STOCK, PRETE, HS, REPARATION
}

// ListAssetItemsWithCurrentLoan 列出资产及其当前未关闭借用（若有）
func (r *Repo) ListAssetItemsWithCurrentLoan(ctx context.Context, q AdminItemsQuery) ([]AdminItemRow, error) {
	db := r.DB.WithContext(ctx)

	// 子查询：每件资产在 OPEN 借用上的那一行
	sub := db.
		Table(models.LoanLineTable+" ll").
		Select(`
			DISTINCT ON (ll.asset_item_id)
			ll.asset_item_id, l.id AS loan_id, l.employee_id, l.opened_at
		`).
		Joins("JOIN "+models.LoanTable+" l ON l.id = ll.loan_id").
		Where("ll.asset_item_id IS NOT NULL AND l.status = ?", models.LoanOpen).
		Order("ll.asset_item_id, l.opened_at DESC")

	qry := db.
		Table(models.AssetItemTable+" i").
		Select(`
			i.id, i.tag, i.serial, i.status, i.asset_model_id, i.created_at, i.updated_at,
			ol.loan_id, ol.employee_id, ol.opened_at,
			e.first_name, e.last_name
		`).
		Joins("LEFT JOIN (?) AS ol ON ol.asset_item_id = i.id", sub).
		Joins("LEFT JOIN " + models.EmployeeTable + " e ON e.id = ol.employee_id")

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(i.tag) LIKE ? OR LOWER(COALESCE(i.serial, '')) LIKE ?", pat, pat)
	}
	if q.Status != "" {
		qry = qry.Where("i.status = ?", q.Status)
	}

	var rows []AdminItemRow
	if err := qry.Order("i.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
