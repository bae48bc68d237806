package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/geometry"
)

// 标注类型标签
const (
	AnnotationTypeBbox           = "bbox"
	AnnotationTypePolygon        = "polygon"
	AnnotationTypePoint          = "point"
	AnnotationTypeLine           = "line"
	AnnotationTypeTextSpan       = "text-span"
	AnnotationTypeSentiment      = "sentiment"
	AnnotationTypeClassification = "classification"
	AnnotationTypeEmotion        = "emotion"
	AnnotationTypeRLHFRanking    = "rlhf-ranking"
)

// AnnotationModel 标注数据模型
// Data 字段按 Type 标签承载不同形状的载荷,解码见 DecodePayload
type AnnotationModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	TaskID    string    `gorm:"type:varchar(64);not null;index"`
	LabelID   string    `gorm:"type:varchar(64);not null;index"`
	Type      string    `gorm:"type:varchar(32);not null"`          // 标注类型标签
	Data      []byte    `gorm:"type:jsonb;not null"`                // 类型相关载荷
	Status    string    `gorm:"type:varchar(32);not null;default:'pending'"` // 标注状态,默认 pending
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (AnnotationModel) TableName() string {
	return "annotations"
}

// Validate 验证标注模型
func (am *AnnotationModel) Validate() error {
	if am.ID == "" {
		return errors.New("annotation ID is required")
	}
	if am.TaskID == "" {
		return errors.New("task ID is required")
	}
	if am.LabelID == "" {
		return errors.New("label ID is required")
	}
	if am.Type == "" {
		return errors.New("annotation type is required")
	}
	return nil
}

// DataMap 解析载荷为通用 map,用于 JSON 导出的原样展开
func (am *AnnotationModel) DataMap() map[string]interface{} {
	data := map[string]interface{}{}
	if len(am.Data) == 0 {
		return data
	}
	_ = json.Unmarshal(am.Data, &data)
	return data
}

// Payload 标注载荷的标签联合
// 每个变体对应一个标注类型,导出引擎按变体做穷尽匹配
type Payload interface {
	isPayload()
}

// BboxPayload 边界框载荷
type BboxPayload struct {
	Bbox geometry.Bbox `json:"bbox"`
}

// PolygonPayload 多边形载荷,顶点为有序 [x, y] 对
type PolygonPayload struct {
	Polygon [][]float64 `json:"polygon"`
}

// PointPayload 点载荷
type PointPayload struct {
	Point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"point"`
}

// LinePayload 线载荷,顶点为有序 [x, y] 对
type LinePayload struct {
	Line [][]float64 `json:"line"`
}

// TextSpanPayload 文本区间载荷
type TextSpanPayload struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// SentimentPayload 情感判断载荷
type SentimentPayload struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score,omitempty"`
}

// ClassificationPayload 分类判断载荷
type ClassificationPayload struct {
	Categories []string `json:"categories"`
}

// EmotionPayload 情绪判断载荷
type EmotionPayload struct {
	Emotions []string `json:"emotions"`
}

// RLHFRankingPayload RLHF 排序载荷,responseId 按偏好排序
type RLHFRankingPayload struct {
	Ranking []string `json:"ranking"`
}

func (BboxPayload) isPayload()           {}
func (PolygonPayload) isPayload()        {}
func (PointPayload) isPayload()          {}
func (LinePayload) isPayload()           {}
func (TextSpanPayload) isPayload()       {}
func (SentimentPayload) isPayload()      {}
func (ClassificationPayload) isPayload() {}
func (EmotionPayload) isPayload()        {}
func (RLHFRankingPayload) isPayload()    {}

// DecodePayload 按类型标签解码载荷
func (am *AnnotationModel) DecodePayload() (Payload, error) {
	switch am.Type {
	case AnnotationTypeBbox:
		var p BboxPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode bbox payload: %w", err)
		}
		return p, nil
	case AnnotationTypePolygon:
		var p PolygonPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode polygon payload: %w", err)
		}
		return p, nil
	case AnnotationTypePoint:
		var p PointPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode point payload: %w", err)
		}
		return p, nil
	case AnnotationTypeLine:
		var p LinePayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode line payload: %w", err)
		}
		return p, nil
	case AnnotationTypeTextSpan:
		var p TextSpanPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode text-span payload: %w", err)
		}
		return p, nil
	case AnnotationTypeSentiment:
		var p SentimentPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode sentiment payload: %w", err)
		}
		return p, nil
	case AnnotationTypeClassification:
		var p ClassificationPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode classification payload: %w", err)
		}
		return p, nil
	case AnnotationTypeEmotion:
		var p EmotionPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode emotion payload: %w", err)
		}
		return p, nil
	case AnnotationTypeRLHFRanking:
		var p RLHFRankingPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return nil, fmt.Errorf("failed to decode rlhf-ranking payload: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown annotation type %q", am.Type)
}

// GeometryBbox 提取标注的边界框几何
// bbox 直接返回,polygon 返回轴对齐外接矩形,其余类型返回 false
func (am *AnnotationModel) GeometryBbox() (geometry.Bbox, bool) {
	switch am.Type {
	case AnnotationTypeBbox:
		var p BboxPayload
		if err := json.Unmarshal(am.Data, &p); err != nil {
			return geometry.Bbox{}, false
		}
		return p.Bbox, true
	case AnnotationTypePolygon:
		poly, ok := am.GeometryPolygon()
		if !ok || len(poly) == 0 {
			return geometry.Bbox{}, false
		}
		return geometry.PolygonToBbox(poly), true
	}
	return geometry.Bbox{}, false
}

// GeometryPolygon 提取标注的多边形顶点,仅 polygon 类型有效
func (am *AnnotationModel) GeometryPolygon() ([][]float64, bool) {
	if am.Type != AnnotationTypePolygon {
		return nil, false
	}
	var p PolygonPayload
	if err := json.Unmarshal(am.Data, &p); err != nil {
		return nil, false
	}
	return p.Polygon, true
}
