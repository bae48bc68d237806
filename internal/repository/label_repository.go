package repository

import (
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// LabelRepository 标签仓储接口
type LabelRepository interface {
	Create(label *model.LabelModel) error
	FindByID(id string) (*model.LabelModel, error)
	FindByProject(projectID string) ([]*model.LabelModel, error)
	ExistsByName(projectID string, name string) (bool, error)
	Delete(id string) error
}

// labelRepository 标签仓储实现
type labelRepository struct {
	db *gorm.DB
}

// NewLabelRepository 创建标签仓储
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &labelRepository{db: db}
}

// Create 创建标签
func (r *labelRepository) Create(label *model.LabelModel) error {
	return r.db.Create(label).Error
}

// FindByID 根据 ID 查找标签
func (r *labelRepository) FindByID(id string) (*model.LabelModel, error) {
	var label model.LabelModel
	if err := r.db.Where("id = ?", id).First(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// FindByProject 查找项目的全部标签,按排序序号排列
func (r *labelRepository) FindByProject(projectID string) ([]*model.LabelModel, error) {
	var labels []*model.LabelModel
	err := r.db.Where("project_id = ?", projectID).Order("order_index ASC").Find(&labels).Error
	return labels, err
}

// ExistsByName 判断项目内是否已存在同名标签
func (r *labelRepository) ExistsByName(projectID string, name string) (bool, error) {
	var count int64
	err := r.db.Model(&model.LabelModel{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Count(&count).Error
	return count > 0, err
}

// Delete 删除标签
func (r *labelRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.LabelModel{}).Error
}
