package db

import (
	"Gin_postgres_redis_loan_inventory/loans"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// InTx 在 READ COMMITTED 事务中执行 fn；请求取消时 ctx 让事务回滚
func (r *Repo) InTx(ctx context.Context, fn func(tx loans.Tx) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

// 统一把 gorm 的未找到转换成领域错误
func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", loans.ErrNotFound, kind, id)
	}
	return err
}
