package model

import (
	"errors"
	"time"
)

// 任务状态
// rejected 是面向 UI 的别名,持久化前归一化为 label
const (
	StatusPrelabel  = "prelabel"
	StatusLabel     = "label"
	StatusReview    = "review"
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
)

// NormalizeStatus 归一化任务状态
// rejected 映射回 label,其余原样返回
func NormalizeStatus(status string) string {
	if status == StatusRejected {
		return StatusLabel
	}
	return status
}

// IsValidStatus 判断是否为合法的任务状态(含 rejected 别名)
func IsValidStatus(status string) bool {
	switch status {
	case StatusPrelabel, StatusLabel, StatusReview, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// TaskModel 任务数据模型
// 一个任务是针对单个资产的一个工作单元,状态只通过状态机变更
type TaskModel struct {
	ID          string     `gorm:"primaryKey;type:varchar(64)"`
	ProjectID   string     `gorm:"type:varchar(64);not null;index"`
	AssetID     string     `gorm:"type:varchar(64);not null;index"`
	Status      string     `gorm:"type:varchar(32);not null;index"` // 任务状态
	Priority    int        `gorm:"type:int;not null;default:0"`     // 优先级,越大越先调度
	AssignedTo  *string    `gorm:"type:varchar(64);index"`          // 当前领取人
	QueuedAt    *time.Time // 入队时间,创建时设置
	AssignedAt  *time.Time // 领取时间
	StartedAt   *time.Time // 进入 label 阶段时间
	CompletedAt *time.Time // 完成时间
	TimeSpent   int64      `gorm:"type:bigint;not null;default:0"` // 累计耗时(秒),单调不减
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null;index"`
}

// TableName 指定表名
func (TaskModel) TableName() string {
	return "tasks"
}

// Validate 验证任务模型
func (tm *TaskModel) Validate() error {
	if tm.ID == "" {
		return errors.New("task ID is required")
	}
	if tm.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if tm.AssetID == "" {
		return errors.New("asset ID is required")
	}
	if !IsValidStatus(tm.Status) {
		return errors.New("invalid task status")
	}
	return nil
}
