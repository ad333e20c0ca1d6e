package db

import (
	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/models"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Record 实现 loans.AuditRecorder；只在事务提交之后由 Dispatcher 调用
func (r *Repo) Record(ctx context.Context, e loans.AuditEntry) error {
	oldValues, err := jsonValue(e.OldValues)
	if err != nil {
		return fmt.Errorf("encode old values: %w", err)
	}
	newValues, err := jsonValue(e.NewValues)
	if err != nil {
		return fmt.Errorf("encode new values: %w", err)
	}
	row := &models.AuditLog{
		ID:        uuid.NewString(),
		Action:    e.Action,
		Table:     e.Table,
		RecordID:  e.RecordID,
		OldValues: oldValues,
		NewValues: newValues,
		ActorID:   e.ActorID,
	}
	if err := r.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func jsonValue(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

type AuditQuery struct {
	Table    string
	RecordID string
	Limit    int
}

func (r *Repo) ListAuditLogs(ctx context.Context, q AuditQuery) ([]models.AuditLog, error) {
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 100
	}
	tx := r.DB.WithContext(ctx).Model(&models.AuditLog{}).Order("created_at DESC").Limit(q.Limit)
	if q.Table != "" {
		tx = tx.Where("table_name = ?", q.Table)
	}
	if q.RecordID != "" {
		tx = tx.Where("record_id = ?", q.RecordID)
	}
	var out []models.AuditLog
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
