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

// ProjectInput 项目创建载荷
type ProjectInput struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	ToolType       string `json:"toolType" binding:"required"`
	AnnotationType string `json:"annotationType"`
}

// AssetInput 资产登记载荷
type AssetInput struct {
	Name     string                 `json:"name" binding:"required"`
	URL      string                 `json:"url"`
	Type     string                 `json:"type" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ProjectService 项目服务接口
type ProjectService interface {
	Create(ctx context.Context, input ProjectInput) (*model.ProjectModel, error)
	Get(id string) (*model.ProjectModel, error)
	List() ([]*model.ProjectModel, error)
	Delete(ctx context.Context, id string) error
	AddAsset(ctx context.Context, projectID string, input AssetInput) (*model.AssetModel, error)
	ListAssets(projectID string) ([]*model.AssetModel, error)
}

// projectService 项目服务实现
type projectService struct {
	projectRepo repository.ProjectRepository
	assetRepo   repository.AssetRepository
}

// NewProjectService 创建项目服务
func NewProjectService(projectRepo repository.ProjectRepository, assetRepo repository.AssetRepository) ProjectService {
	return &projectService{projectRepo: projectRepo, assetRepo: assetRepo}
}

// validToolTypes 合法的标注工具类型集合
var validToolTypes = map[string]bool{
	model.ToolTypeImage:    true,
	model.ToolTypeText:     true,
	model.ToolTypeAudio:    true,
	model.ToolTypeVideo:    true,
	model.ToolTypeDocument: true,
}

// Create 创建项目
func (s *projectService) Create(ctx context.Context, input ProjectInput) (*model.ProjectModel, error) {
	if !validToolTypes[input.ToolType] {
		return nil, apperr.NewValidation("invalid tool type %q", input.ToolType)
	}
	if err := utils.ValidateName(input.Name); err != nil {
		return nil, apperr.NewValidation("invalid project name: %v", err)
	}

	now := time.Now()
	project := &model.ProjectModel{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Description:    input.Description,
		ToolType:       input.ToolType,
		AnnotationType: input.AnnotationType,
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := project.Validate(); err != nil {
		return nil, apperr.NewValidation("%s", err.Error())
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"project_id": project.ID,
		"tool_type":  project.ToolType,
	}).Info("project created")

	return project, nil
}

// Get 查询项目
func (s *projectService) Get(id string) (*model.ProjectModel, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("project", id)
		}
		return nil, err
	}
	return project, nil
}

// List 查询项目列表
func (s *projectService) List() ([]*model.ProjectModel, error) {
	return s.projectRepo.FindAll()
}

// Delete 删除项目及其所有关联数据
func (s *projectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.projectRepo.Delete(id)
}

// AddAsset 向项目登记资产
func (s *projectService) AddAsset(ctx context.Context, projectID string, input AssetInput) (*model.AssetModel, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}

	var metadata []byte
	if len(input.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(input.Metadata)
		if err != nil {
			return nil, apperr.NewValidation("invalid asset metadata: %v", err)
		}
	}

	asset := &model.AssetModel{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      input.Name,
		URL:       input.URL,
		Type:      input.Type,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	if err := s.assetRepo.Create(asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// ListAssets 查询项目的资产列表
func (s *projectService) ListAssets(projectID string) ([]*model.AssetModel, error) {
	if _, err := s.Get(projectID); err != nil {
		return nil, err
	}
	return s.assetRepo.FindByProject(projectID)
}
