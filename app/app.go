package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_loan_inventory/db"
	"Gin_postgres_redis_loan_inventory/idempotency"
	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/signature"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config
	Logger *slog.Logger

	Repo        *db.Repo
	Signatures  *signature.FileStore
	Effects     *loans.Dispatcher
	Loans       *loans.Service
	Idempotency *idempotency.Store
}

// Config 从环境变量读取
type Config struct {
	DatabaseDSN      string
	RedisAddr        string
	RedisPwd         string
	WebOrigin        string
	Port             string
	SignatureDir     string
	SignatureBaseURL string
	IdempotencyTTL   time.Duration
	EffectWorkers    int
	EffectQueueSize  int
	LogLevel         slog.Level
}

func MustNew() *App {
	a, err := New(loadConfig())
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	return a
}

func New(cfg Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected")

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	// --- Signatures ---
	sigs, err := signature.NewFileStore(cfg.SignatureDir, cfg.SignatureBaseURL)
	if err != nil {
		return nil, err
	}

	// --- Core ---
	repo := db.NewRepo(dbConn)
	effects := loans.NewDispatcher(repo, sigs, logger, cfg.EffectQueueSize)
	effects.Start(cfg.EffectWorkers)

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Config: cfg, Logger: logger,
		Repo:        repo,
		Signatures:  sigs,
		Effects:     effects,
		Loans:       loans.NewService(repo, sigs, effects),
		Idempotency: idempotency.NewStore(rdb, cfg.IdempotencyTTL),
	}, nil
}

// Close 先排空后置任务（审计要写 DB），再关连接
func (a *App) Close() {
	a.Effects.Close()
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	getInt := func(k string, def int) int {
		n, err := strconv.Atoi(os.Getenv(k))
		if err != nil || n <= 0 {
			return def
		}
		return n
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(get("LOG_LEVEL", "INFO"))); err != nil {
		level = slog.LevelInfo
	}
	return Config{
		DatabaseDSN:      db.DSNFromEnv(),
		RedisAddr:        get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:         os.Getenv("REDIS_PASSWORD"),
		WebOrigin:        get("WEB_ORIGIN", "http://localhost:5173"),
		Port:             get("PORT", "3001"),
		SignatureDir:     get("SIGNATURE_DIR", "uploads/signatures"),
		SignatureBaseURL: strings.TrimRight(get("SIGNATURE_BASE_URL", "/uploads/signatures"), "/"),
		IdempotencyTTL:   time.Duration(getInt("IDEMPOTENCY_TTL_SECONDS", 86400)) * time.Second,
		EffectWorkers:    getInt("EFFECT_WORKERS", 4),
		EffectQueueSize:  getInt("EFFECT_QUEUE_SIZE", 1024),
		LogLevel:         level,
	}
}
