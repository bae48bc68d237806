package model

import (
	"errors"
	"time"
)

// 通知类型
const (
	NotificationLabelingComplete = "labeling_complete"
	NotificationProjectComplete  = "project_complete"
	NotificationExportReady      = "export_ready"
)

// NotificationModel 通知数据模型
// 每用户最多保留 100 条,超出部分按时间裁剪
type NotificationModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `gorm:"type:varchar(64);not null;index"`
	Type      string    `gorm:"type:varchar(32);not null"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Message   string    `gorm:"type:text"`
	ProjectID string    `gorm:"type:varchar(64);index"`
	TaskID    string    `gorm:"type:varchar(64)"`
	Data      []byte    `gorm:"type:jsonb"` // 附加上下文
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (NotificationModel) TableName() string {
	return "notifications"
}

// Validate 验证通知模型
func (nm *NotificationModel) Validate() error {
	if nm.ID == "" {
		return errors.New("notification ID is required")
	}
	if nm.UserID == "" {
		return errors.New("user ID is required")
	}
	if nm.Type == "" {
		return errors.New("notification type is required")
	}
	return nil
}
