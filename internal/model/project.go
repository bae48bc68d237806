package model

import (
	"errors"
	"time"
)

// 项目标注工具类型
const (
	ToolTypeImage    = "image"
	ToolTypeText     = "text"
	ToolTypeAudio    = "audio"
	ToolTypeVideo    = "video"
	ToolTypeDocument = "document"
)

// ProjectModel 项目数据模型
type ProjectModel struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Description    string    `gorm:"type:text"`
	ToolType       string    `gorm:"type:varchar(32);not null;index"` // 标注工具类型: image, text, audio, video, document
	AnnotationType string    `gorm:"type:varchar(32)"`                // 默认标注类型: bounding-box, polygon 等
	Status         string    `gorm:"type:varchar(32);not null"`       // 项目状态
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName 指定表名
func (ProjectModel) TableName() string {
	return "projects"
}

// Validate 验证项目模型
func (pm *ProjectModel) Validate() error {
	if pm.ID == "" {
		return errors.New("project ID is required")
	}
	if pm.Name == "" {
		return errors.New("project name is required")
	}
	if pm.ToolType == "" {
		return errors.New("project tool type is required")
	}
	return nil
}
