package model

import (
	"errors"
	"time"
)

// ExportModel 导出记录数据模型
// 一次成功导出创建一条记录,创建后不再修改
// 过期后文件不可下载(基于时间判断,不主动清理)
type ExportModel struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)"`
	ProjectID       string    `gorm:"type:varchar(64);not null;index"`
	Format          string    `gorm:"type:varchar(32);not null;index"`
	Version         int       `gorm:"type:int;not null"` // 按项目+格式单调递增
	Filename        string    `gorm:"type:varchar(255);not null"`
	FileURL         string    `gorm:"type:text;not null"` // 对象存储中的对象名
	FileSize        int64     `gorm:"type:bigint;not null"`
	Options         []byte    `gorm:"type:jsonb"`                // 导出选项快照
	StatusFilter    string    `gorm:"type:varchar(32);not null"` // all 或 completed
	TaskCount       int       `gorm:"type:int;not null"`
	AnnotationCount int       `gorm:"type:int;not null"`
	ExpiresAt       time.Time `gorm:"not null;index"`
	CreatedAt       time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (ExportModel) TableName() string {
	return "exports"
}

// Validate 验证导出记录模型
func (em *ExportModel) Validate() error {
	if em.ID == "" {
		return errors.New("export ID is required")
	}
	if em.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if em.Format == "" {
		return errors.New("export format is required")
	}
	return nil
}

// Expired 判断导出文件是否已过保留期
func (em *ExportModel) Expired(now time.Time) bool {
	return now.After(em.ExpiresAt)
}
