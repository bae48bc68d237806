package repository

import (
	"errors"

	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// ExportRepository 导出记录仓储接口
type ExportRepository interface {
	Create(export *model.ExportModel) error
	FindByID(id string) (*model.ExportModel, error)
	FindByProject(projectID string) ([]*model.ExportModel, error)
	LatestVersion(projectID string, format string) (int, error)
}

// exportRepository 导出记录仓储实现
type exportRepository struct {
	db *gorm.DB
}

// NewExportRepository 创建导出记录仓储
func NewExportRepository(db *gorm.DB) ExportRepository {
	return &exportRepository{db: db}
}

// Create 创建导出记录
func (r *exportRepository) Create(export *model.ExportModel) error {
	return r.db.Create(export).Error
}

// FindByID 根据 ID 查找导出记录
func (r *exportRepository) FindByID(id string) (*model.ExportModel, error) {
	var export model.ExportModel
	if err := r.db.Where("id = ?", id).First(&export).Error; err != nil {
		return nil, err
	}
	return &export, nil
}

// FindByProject 查找项目的导出历史,最近的在前
func (r *exportRepository) FindByProject(projectID string) ([]*model.ExportModel, error) {
	var exports []*model.ExportModel
	err := r.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&exports).Error
	return exports, err
}

// LatestVersion 查询项目+格式下的最新版本号,无记录时返回 0
func (r *exportRepository) LatestVersion(projectID string, format string) (int, error) {
	var export model.ExportModel
	err := r.db.Where("project_id = ? AND format = ?", projectID, format).
		Order("version DESC").
		First(&export).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return export.Version, nil
}
