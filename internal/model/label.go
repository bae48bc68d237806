package model

import (
	"encoding/json"
	"errors"
	"time"
)

// 标签附加属性字段类型
const (
	AttributeTypeText     = "text"
	AttributeTypeSelect   = "select"
	AttributeTypeRadio    = "radio"
	AttributeTypeCheckbox = "checkbox"
	AttributeTypeNumber   = "number"
)

// LabelAttribute 标签附加属性定义
// 每个属性携带类型和校验约束
type LabelAttribute struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // text, select, radio, checkbox, number
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// LabelModel 标签数据模型
// 标签名在项目内唯一;仍被标注引用的标签不可物理删除
type LabelModel struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)"`
	ProjectID   string    `gorm:"type:varchar(64);not null;index:idx_labels_project_name,unique"`
	Name        string    `gorm:"type:varchar(255);not null;index:idx_labels_project_name,unique"`
	Color       string    `gorm:"type:varchar(16)"`
	Description string    `gorm:"type:text"`
	Shortcut    string    `gorm:"type:varchar(8)"`
	OrderIndex  int       `gorm:"type:int;not null;default:0"` // 排序序号
	Attributes  []byte    `gorm:"type:jsonb"`                  // 附加属性定义列表
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName 指定表名
func (LabelModel) TableName() string {
	return "labels"
}

// Validate 验证标签模型
func (lm *LabelModel) Validate() error {
	if lm.ID == "" {
		return errors.New("label ID is required")
	}
	if lm.ProjectID == "" {
		return errors.New("project ID is required")
	}
	if lm.Name == "" {
		return errors.New("label name is required")
	}
	return nil
}

// AttributeList 解析附加属性定义
func (lm *LabelModel) AttributeList() ([]LabelAttribute, error) {
	if len(lm.Attributes) == 0 {
		return nil, nil
	}
	var attrs []LabelAttribute
	if err := json.Unmarshal(lm.Attributes, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
