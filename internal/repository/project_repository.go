package repository

import (
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	Create(project *model.ProjectModel) error
	FindByID(id string) (*model.ProjectModel, error)
	FindAll() ([]*model.ProjectModel, error)
	Delete(id string) error
}

// projectRepository 项目仓储实现
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create 创建项目
func (r *projectRepository) Create(project *model.ProjectModel) error {
	return r.db.Create(project).Error
}

// FindByID 根据 ID 查找项目
func (r *projectRepository) FindByID(id string) (*model.ProjectModel, error) {
	var project model.ProjectModel
	if err := r.db.Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindAll 查找所有项目
func (r *projectRepository) FindAll() ([]*model.ProjectModel, error) {
	var projects []*model.ProjectModel
	err := r.db.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// Delete 级联删除项目及其任务、标注、标签、资产
func (r *projectRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id IN (?)",
			tx.Model(&model.TaskModel{}).Select("id").Where("project_id = ?", id),
		).Delete(&model.AnnotationModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.TaskModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.LabelModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.AssetModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.ProjectModel{}).Error
	})
}
