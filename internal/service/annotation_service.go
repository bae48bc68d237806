package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/metrics"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AnnotationInput 标注写入载荷
type AnnotationInput struct {
	LabelID string                 `json:"labelId" binding:"required"`
	Type    string                 `json:"type" binding:"required"`
	Data    map[string]interface{} `json:"data" binding:"required"`
}

// AnnotationService 标注服务接口
// 保存语义是按任务全量替换:删除旧集合并重建新集合
type AnnotationService interface {
	ReplaceForTask(ctx context.Context, taskID string, inputs []AnnotationInput) ([]*model.AnnotationModel, error)
	ListByTask(taskID string) ([]*model.AnnotationModel, error)
}

// annotationService 标注服务实现
type annotationService struct {
	annotationRepo repository.AnnotationRepository
	taskRepo       repository.TaskRepository
	labelRepo      repository.LabelRepository
}

// NewAnnotationService 创建标注服务
func NewAnnotationService(
	annotationRepo repository.AnnotationRepository,
	taskRepo repository.TaskRepository,
	labelRepo repository.LabelRepository,
) AnnotationService {
	return &annotationService{
		annotationRepo: annotationRepo,
		taskRepo:       taskRepo,
		labelRepo:      labelRepo,
	}
}

// validAnnotationTypes 合法的标注类型集合
var validAnnotationTypes = map[string]bool{
	model.AnnotationTypeBbox:           true,
	model.AnnotationTypePolygon:        true,
	model.AnnotationTypePoint:          true,
	model.AnnotationTypeLine:           true,
	model.AnnotationTypeTextSpan:       true,
	model.AnnotationTypeSentiment:      true,
	model.AnnotationTypeClassification: true,
	model.AnnotationTypeEmotion:        true,
	model.AnnotationTypeRLHFRanking:    true,
}

// ReplaceForTask 全量替换任务的标注集
// 删除与重建在同一事务内完成,失败时原集合保持不变
func (s *annotationService) ReplaceForTask(ctx context.Context, taskID string, inputs []AnnotationInput) ([]*model.AnnotationModel, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", taskID)
		}
		return nil, err
	}

	now := time.Now()
	annotations := make([]*model.AnnotationModel, 0, len(inputs))
	for _, input := range inputs {
		if !validAnnotationTypes[input.Type] {
			return nil, apperr.NewValidation("invalid annotation type %q", input.Type)
		}
		if input.LabelID == "" {
			return nil, apperr.NewValidation("label ID is required")
		}

		label, err := s.labelRepo.FindByID(input.LabelID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NewNotFound("label", input.LabelID)
			}
			return nil, err
		}
		if label.ProjectID != task.ProjectID {
			return nil, apperr.NewValidation("label %q does not belong to project %q", input.LabelID, task.ProjectID)
		}

		data, err := json.Marshal(input.Data)
		if err != nil {
			return nil, apperr.NewValidation("invalid annotation data: %v", err)
		}

		annotations = append(annotations, &model.AnnotationModel{
			ID:        uuid.New().String(),
			TaskID:    taskID,
			LabelID:   input.LabelID,
			Type:      input.Type,
			Data:      data,
			Status:    "pending",
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.annotationRepo.ReplaceForTask(taskID, annotations); err != nil {
		return nil, err
	}

	metrics.RecordAnnotationReplace()

	logrus.WithFields(logrus.Fields{
		"task_id": taskID,
		"count":   len(annotations),
	}).Info("annotations replaced")

	return annotations, nil
}

// ListByTask 查询任务的标注列表
func (s *annotationService) ListByTask(taskID string) ([]*model.AnnotationModel, error) {
	return s.annotationRepo.FindByTask(taskID)
}
