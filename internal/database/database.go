package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/config"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime int // 秒
	ConnMaxIdleTime int // 秒
}

// BuildDSN 构建 PostgreSQL DSN
func BuildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// GetPoolConfig 获取连接池配置
func GetPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: 3600, // 1 小时
		ConnMaxIdleTime: 600,  // 10 分钟
	}
}

// Connect 连接数据库
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// 从配置中读取连接池参数,如果没有配置则使用默认值
	poolConfig := GetPoolConfig()
	if cfg.MaxIdleConns > 0 {
		poolConfig.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxOpenConns = cfg.MaxOpenConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.ConnMaxLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolConfig.ConnMaxIdleTime = cfg.ConnMaxIdleTime
	}

	sqlDB.SetMaxIdleConns(poolConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(poolConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(poolConfig.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(poolConfig.ConnMaxIdleTime) * time.Second)

	return db, nil
}

// Migrate 执行数据库迁移
func Migrate(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// SQLite 不支持 jsonb,需要手动创建表
	// GORM SQLite dialector 的名称可能是 "sqlite" 或 "sqlite3"
	if dialector == "sqlite" || dialector == "sqlite3" {
		// 手动创建 SQLite 表（使用 TEXT 替代 jsonb）
		if err := createSQLiteTables(db); err != nil {
			return fmt.Errorf("failed to create SQLite tables: %w", err)
		}
	} else {
		// PostgreSQL 等其他数据库使用 AutoMigrate
		if err := db.AutoMigrate(
			&model.ProjectModel{},
			&model.AssetModel{},
			&model.TaskModel{},
			&model.AnnotationModel{},
			&model.LabelModel{},
			&model.ExportModel{},
			&model.NotificationModel{},
		); err != nil {
			return fmt.Errorf("failed to auto migrate: %w", err)
		}
	}

	// 创建索引
	if err := CreateIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createSQLiteTables 为 SQLite 手动创建表（使用 TEXT 替代 jsonb）
func createSQLiteTables(db *gorm.DB) error {
	// 创建 projects 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			tool_type VARCHAR(32) NOT NULL,
			annotation_type VARCHAR(32),
			status VARCHAR(32) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}

	// 创建 assets 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS assets (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			url TEXT,
			type VARCHAR(32) NOT NULL,
			metadata TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create assets table: %w", err)
	}

	// 创建 tasks 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			asset_id VARCHAR(64) NOT NULL,
			status VARCHAR(32) NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			assigned_to VARCHAR(64),
			queued_at DATETIME,
			assigned_at DATETIME,
			started_at DATETIME,
			completed_at DATETIME,
			time_spent BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}

	// 创建 annotations 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS annotations (
			id VARCHAR(64) PRIMARY KEY,
			task_id VARCHAR(64) NOT NULL,
			label_id VARCHAR(64) NOT NULL,
			type VARCHAR(32) NOT NULL,
			data TEXT NOT NULL,
			status VARCHAR(32) NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create annotations table: %w", err)
	}

	// 创建 labels 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS labels (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			name VARCHAR(255) NOT NULL,
			color VARCHAR(16),
			description TEXT,
			shortcut VARCHAR(8),
			order_index INTEGER NOT NULL DEFAULT 0,
			attributes TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create labels table: %w", err)
	}

	// 创建 exports 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS exports (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			format VARCHAR(32) NOT NULL,
			version INTEGER NOT NULL,
			filename VARCHAR(255) NOT NULL,
			file_url TEXT NOT NULL,
			file_size BIGINT NOT NULL,
			options TEXT,
			status_filter VARCHAR(32) NOT NULL,
			task_count INTEGER NOT NULL,
			annotation_count INTEGER NOT NULL,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create exports table: %w", err)
	}

	// 创建 notifications 表
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS notifications (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			type VARCHAR(32) NOT NULL,
			title VARCHAR(255) NOT NULL,
			message TEXT,
			project_id VARCHAR(64),
			task_id VARCHAR(64),
			data TEXT,
			read BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}

	return nil
}

// CreateIndexes 创建数据库索引
func CreateIndexes(db *gorm.DB) error {
	// 检测数据库类型
	dialector := db.Dialector.Name()

	// tasks 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_project_status ON tasks(project_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_project_status: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_assigned_to: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tasks_queued_at ON tasks(queued_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_tasks_queued_at: %w", err)
	}

	// annotations 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_annotations_task_id ON annotations(task_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_annotations_task_id: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_annotations_label_id ON annotations(label_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_annotations_label_id: %w", err)
	}

	// labels 表索引
	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_labels_project_name ON labels(project_id, name)").Error; err != nil {
		return fmt.Errorf("failed to create idx_labels_project_name: %w", err)
	}

	// exports 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_exports_project_format ON exports(project_id, format)").Error; err != nil {
		return fmt.Errorf("failed to create idx_exports_project_format: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_exports_expires_at ON exports(expires_at)").Error; err != nil {
		return fmt.Errorf("failed to create idx_exports_expires_at: %w", err)
	}

	// notifications 表索引
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id)").Error; err != nil {
		return fmt.Errorf("failed to create idx_notifications_user_id: %w", err)
	}

	// PostgreSQL 特定的 GIN 索引
	if dialector == "postgres" {
		// JSONB 字段的 GIN 索引
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_annotations_data_gin ON annotations USING GIN (data)").Error; err != nil {
			return fmt.Errorf("failed to create idx_annotations_data_gin: %w", err)
		}
		if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_assets_metadata_gin ON assets USING GIN (metadata)").Error; err != nil {
			return fmt.Errorf("failed to create idx_assets_metadata_gin: %w", err)
		}
	}

	return nil
}

// ConnectWithRetry 带重试的数据库连接
func ConnectWithRetry(cfg config.DatabaseConfig, maxRetries int, retryInterval time.Duration) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < maxRetries; i++ {
		db, err = Connect(cfg)
		if err == nil {
			return db, nil
		}

		// 如果不是最后一次重试,等待后重试
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
			retryInterval *= 2 // 指数退避
		}
	}

	return nil, fmt.Errorf("failed to connect database after %d retries: %w", maxRetries, err)
}

// CheckHealth 检查数据库连接健康状态
func CheckHealth(db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}

	return true
}
