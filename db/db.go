package db

import (
	"Gin_postgres_redis_loan_inventory/models"
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func DSNFromEnv() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
}

// ConnectDB 连接并迁移
func ConnectDB(dsn string) (*gorm.DB, error) {
	conn, err := Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate models: %w", err)
	}
	return conn, nil
}

func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Employee{},
		&models.AssetModel{},
		&models.AssetItem{},
		&models.StockItem{},
		&models.Loan{},
		&models.LoanLine{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// 行级约束：资产线与库存线二选一，数量为正
	if err := db.Exec(fmt.Sprintf(`
	  DO $$ BEGIN
	    ALTER TABLE %s ADD CONSTRAINT %s_one_target
	      CHECK ((asset_item_id IS NULL) <> (stock_item_id IS NULL) AND quantity > 0);
	  EXCEPTION WHEN duplicate_object THEN NULL;
	  END $$;
	`, models.LoanLineTable, models.LoanLineTable)).Error; err != nil {
		return err
	}

	// 库存：0 <= loaned <= quantity
	if err := db.Exec(fmt.Sprintf(`
	  DO $$ BEGIN
	    ALTER TABLE %s ADD CONSTRAINT %s_loaned_range
	      CHECK (loaned >= 0 AND loaned <= quantity);
	  EXCEPTION WHEN duplicate_object THEN NULL;
	  END $$;
	`, models.StockItemTable, models.StockItemTable)).Error; err != nil {
		return err
	}

	// 查询当前借用更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_loan_added
	  ON %s (loan_id, added_at);
	`, models.LoanLineTable, models.LoanLineTable)).Error; err != nil {
		return err
	}

	return nil
}
