// controllers/srv.go
package controllers

import (
	"context"
	"log/slog"

	"Gin_postgres_redis_loan_inventory/app"
	"Gin_postgres_redis_loan_inventory/db"
	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/models"

	"github.com/gin-gonic/gin"
)

// Catalog 是目录类的普通 CRUD（员工、型号、物品、审计查询），由 *db.Repo 实现
type Catalog interface {
	CreateEmployee(ctx context.Context, e *models.Employee) error
	ListEmployees(ctx context.Context, q string) ([]models.Employee, error)
	DeleteEmployee(ctx context.Context, id string) (*models.Employee, error)

	CreateAssetModel(ctx context.Context, m *models.AssetModel) error
	ListAssetModels(ctx context.Context) ([]models.AssetModel, error)
	CreateAssetItem(ctx context.Context, it *models.AssetItem) error
	ListAssetItemsWithCurrentLoan(ctx context.Context, q db.AdminItemsQuery) ([]db.AdminItemRow, error)
	CreateStockItem(ctx context.Context, it *models.StockItem) error
	ListStockItems(ctx context.Context) ([]models.StockItem, error)

	ListAuditLogs(ctx context.Context, q db.AuditQuery) ([]models.AuditLog, error)
}

type Srv struct {
	Loans   *loans.Service
	Catalog Catalog
	Effects loans.Effects
	Logger  *slog.Logger
}

func NewSrv(svc *loans.Service, catalog Catalog, effects loans.Effects, logger *slog.Logger) *Srv {
	return &Srv{Loans: svc, Catalog: catalog, Effects: effects, Logger: logger}
}

func GetSrv(a *app.App) *Srv { return NewSrv(a.Loans, a.Repo, a.Effects, a.Logger) }

// audit 目录类改动也走同一个后置审计队列
func (s *Srv) audit(c *gin.Context, action models.AuditAction, table, recordID string, oldValues, newValues any) {
	s.Effects.Audit(loans.AuditEntry{
		Action: action, Table: table, RecordID: recordID,
		OldValues: oldValues, NewValues: newValues, ActorID: app.ActorID(c),
	})
}
