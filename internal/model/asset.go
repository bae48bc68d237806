package model

import (
	"encoding/json"
	"time"
)

// 资产缺少尺寸元数据时使用的回退值
// 归一化会因此产生近似坐标,导出器不应因缺少尺寸而失败
const (
	DefaultAssetWidth  = 1920
	DefaultAssetHeight = 1080
)

// AssetModel 资产数据模型
// 一个资产对应一个上传的文件(图片、文本、音视频、文档)
type AssetModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	ProjectID string    `gorm:"type:varchar(64);not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	URL       string    `gorm:"type:text"`
	Type      string    `gorm:"type:varchar(32);not null"` // 资产类型: image, text 等
	Metadata  []byte    `gorm:"type:jsonb"`                // 开放元数据(width/height 等)
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (AssetModel) TableName() string {
	return "assets"
}

// MetadataMap 解析元数据为通用 map
// 元数据为空或不合法时返回空 map
func (am *AssetModel) MetadataMap() map[string]interface{} {
	meta := map[string]interface{}{}
	if len(am.Metadata) == 0 {
		return meta
	}
	_ = json.Unmarshal(am.Metadata, &meta)
	return meta
}

// Dimensions 返回资产的像素尺寸
// 元数据缺少 width/height 时回退到 1920×1080
func (am *AssetModel) Dimensions() (float64, float64) {
	meta := am.MetadataMap()
	width := float64(DefaultAssetWidth)
	height := float64(DefaultAssetHeight)
	if w, ok := meta["width"].(float64); ok && w > 0 {
		width = w
	}
	if h, ok := meta["height"].(float64); ok && h > 0 {
		height = h
	}
	return width, height
}
