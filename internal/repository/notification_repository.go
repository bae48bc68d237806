package repository

import (
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	Create(notification *model.NotificationModel) error
	FindByUser(userID string) ([]*model.NotificationModel, error)
	TrimToLimit(userID string, limit int) error
	MarkRead(id string) error
}

// notificationRepository 通知仓储实现
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create 创建通知
func (r *notificationRepository) Create(notification *model.NotificationModel) error {
	return r.db.Create(notification).Error
}

// FindByUser 查找用户的全部通知,最近的在前
func (r *notificationRepository) FindByUser(userID string) ([]*model.NotificationModel, error) {
	var notifications []*model.NotificationModel
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

// TrimToLimit 裁剪用户通知到上限,删除最旧的超出部分
func (r *notificationRepository) TrimToLimit(userID string, limit int) error {
	var ids []string
	err := r.db.Model(&model.NotificationModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.Where("id IN ?", ids).Delete(&model.NotificationModel{}).Error
}

// MarkRead 标记通知为已读
func (r *notificationRepository) MarkRead(id string) error {
	return r.db.Model(&model.NotificationModel{}).Where("id = ?", id).
		Update("read", true).Error
}
