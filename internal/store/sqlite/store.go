package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carlo/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// RunStore 用 gorm + sqlite 持久化估值记录。
type RunStore struct {
	db *gorm.DB
}

func NewRunStore(path string) (*RunStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	// DSN 使用 modernc 风格的 _pragma 参数，走纯 Go 的 "sqlite" 驱动。
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return NewRunStoreFromDB(db)
}

func NewRunStoreFromDB(db *gorm.DB) (*RunStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db 不能为空")
	}
	if err := db.AutoMigrate(&model.PricingRunModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &RunStore{db: db}, nil
}

func (s *RunStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *RunStore) Create(ctx context.Context, run *model.PricingRunModel) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id 不能为空")
	}
	now := time.Now().Unix()
	run.CreatedAtUnix = now
	run.UpdatedAtUnix = now
	return s.db.WithContext(ctx).Create(run).Error
}

// Update 按 ID 回写状态与结果字段。
func (s *RunStore) Update(ctx context.Context, run *model.PricingRunModel) error {
	if run == nil || strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id 不能为空")
	}
	run.UpdatedAtUnix = time.Now().Unix()
	return s.db.WithContext(ctx).
		Model(&model.PricingRunModel{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{
			"status":         run.Status,
			"estimate":       run.Estimate,
			"std_error":      run.StdError,
			"analytic_price": run.AnalyticPrice,
			"elapsed_ms":     run.ElapsedMS,
			"error_msg":      run.ErrorMsg,
			"updated_at":     run.UpdatedAtUnix,
		}).Error
}

func (s *RunStore) Get(ctx context.Context, id string) (*model.PricingRunModel, error) {
	var run model.PricingRunModel
	err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List 按创建时间倒序返回最近 limit 条。
func (s *RunStore) List(ctx context.Context, limit int) ([]model.PricingRunModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []model.PricingRunModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
