package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/lumax90/pixlhub-gin/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LabelInput 标签创建载荷
type LabelInput struct {
	Name        string                 `json:"name" binding:"required"`
	Color       string                 `json:"color"`
	Description string                 `json:"description"`
	Shortcut    string                 `json:"shortcut"`
	OrderIndex  int                    `json:"orderIndex"`
	Attributes  []model.LabelAttribute `json:"attributes"`
}

// LabelService 标签服务接口
type LabelService interface {
	Create(ctx context.Context, projectID string, input LabelInput) (*model.LabelModel, error)
	Get(id string) (*model.LabelModel, error)
	ListByProject(projectID string) ([]*model.LabelModel, error)
	Delete(ctx context.Context, id string) error
}

// labelService 标签服务实现
type labelService struct {
	labelRepo      repository.LabelRepository
	annotationRepo repository.AnnotationRepository
	projectRepo    repository.ProjectRepository
}

// NewLabelService 创建标签服务
func NewLabelService(
	labelRepo repository.LabelRepository,
	annotationRepo repository.AnnotationRepository,
	projectRepo repository.ProjectRepository,
) LabelService {
	return &labelService{
		labelRepo:      labelRepo,
		annotationRepo: annotationRepo,
		projectRepo:    projectRepo,
	}
}

// Create 创建标签
// 标签名在项目内唯一
func (s *labelService) Create(ctx context.Context, projectID string, input LabelInput) (*model.LabelModel, error) {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("project", projectID)
		}
		return nil, err
	}

	if err := utils.ValidateName(input.Name); err != nil {
		return nil, apperr.NewValidation("invalid label name: %v", err)
	}

	exists, err := s.labelRepo.ExistsByName(projectID, input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.NewValidation("label %q already exists in project", input.Name)
	}

	var attributes []byte
	if len(input.Attributes) > 0 {
		attributes, err = json.Marshal(input.Attributes)
		if err != nil {
			return nil, apperr.NewValidation("invalid label attributes: %v", err)
		}
	}

	now := time.Now()
	label := &model.LabelModel{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Name:        input.Name,
		Color:       input.Color,
		Description: input.Description,
		Shortcut:    input.Shortcut,
		OrderIndex:  input.OrderIndex,
		Attributes:  attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := label.Validate(); err != nil {
		return nil, apperr.NewValidation("%s", err.Error())
	}
	if err := s.labelRepo.Create(label); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"label_id":   label.ID,
		"project_id": projectID,
		"name":       input.Name,
	}).Info("label created")

	return label, nil
}

// Get 查询标签
func (s *labelService) Get(id string) (*model.LabelModel, error) {
	label, err := s.labelRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("label", id)
		}
		return nil, err
	}
	return label, nil
}

// ListByProject 查询项目的标签列表
func (s *labelService) ListByProject(projectID string) ([]*model.LabelModel, error) {
	return s.labelRepo.FindByProject(projectID)
}

// Delete 删除标签
// 仍被标注引用的标签不可删除
func (s *labelService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	count, err := s.annotationRepo.CountByLabel(id)
	if err != nil {
		return err
	}
	if count > 0 {
		logrus.WithFields(logrus.Fields{
			"label_id": id,
			"count":    count,
		}).Warn("label delete blocked by existing annotations")
		return apperr.NewInvalidState("label %q is referenced by %d annotations", id, count)
	}

	return s.labelRepo.Delete(id)
}
