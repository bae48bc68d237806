package repository

import (
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// AnnotationRepository 标注仓储接口
type AnnotationRepository interface {
	FindByTask(taskID string) ([]*model.AnnotationModel, error)
	FindByTasks(taskIDs []string) ([]*model.AnnotationModel, error)
	ReplaceForTask(taskID string, annotations []*model.AnnotationModel) error
	DeleteByTask(taskID string) error
	CountByLabel(labelID string) (int64, error)
}

// annotationRepository 标注仓储实现
type annotationRepository struct {
	db *gorm.DB
}

// NewAnnotationRepository 创建标注仓储
func NewAnnotationRepository(db *gorm.DB) AnnotationRepository {
	return &annotationRepository{db: db}
}

// FindByTask 查找任务的全部标注
func (r *annotationRepository) FindByTask(taskID string) ([]*model.AnnotationModel, error) {
	var annotations []*model.AnnotationModel
	err := r.db.Where("task_id = ?", taskID).Order("created_at ASC").Find(&annotations).Error
	return annotations, err
}

// FindByTasks 查找多个任务的全部标注
func (r *annotationRepository) FindByTasks(taskIDs []string) ([]*model.AnnotationModel, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var annotations []*model.AnnotationModel
	err := r.db.Where("task_id IN ?", taskIDs).Order("created_at ASC").Find(&annotations).Error
	return annotations, err
}

// ReplaceForTask 全量替换任务的标注集
// 删除与重建包在同一事务内,崩溃不会丢失标注
func (r *annotationRepository) ReplaceForTask(taskID string, annotations []*model.AnnotationModel) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.AnnotationModel{}).Error; err != nil {
			return err
		}
		if len(annotations) == 0 {
			return nil
		}
		return tx.Create(annotations).Error
	})
}

// DeleteByTask 删除任务的全部标注
func (r *annotationRepository) DeleteByTask(taskID string) error {
	return r.db.Where("task_id = ?", taskID).Delete(&model.AnnotationModel{}).Error
}

// CountByLabel 统计引用指定标签的标注数
func (r *annotationRepository) CountByLabel(labelID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.AnnotationModel{}).Where("label_id = ?", labelID).Count(&count).Error
	return count, err
}
