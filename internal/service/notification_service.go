package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lumax90/pixlhub-gin/internal/metrics"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/lumax90/pixlhub-gin/internal/websocket"
	"github.com/sirupsen/logrus"
)

// 每用户保留的最大通知数,超出后裁剪最旧的
const maxNotificationsPerUser = 100

// NotificationService 通知服务接口
// 通知是尽力而为的副作用:失败只记日志,不向调用方传播
type NotificationService interface {
	Notify(ctx context.Context, notification *model.NotificationModel) error
	NotifyLabelingComplete(ctx context.Context, userIDs []string, projectID string)
	NotifyProjectComplete(ctx context.Context, userIDs []string, projectID string)
	NotifyExportReady(ctx context.Context, userID string, export *model.ExportModel, downloadURL string)
	ListByUser(userID string) ([]*model.NotificationModel, error)
	MarkRead(id string) error
}

// notificationService 通知服务实现
type notificationService struct {
	repo repository.NotificationRepository
	hub  *websocket.Hub
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository, hub *websocket.Hub) NotificationService {
	return &notificationService{repo: repo, hub: hub}
}

// notificationMessage WebSocket 推送的通知载荷
type notificationMessage struct {
	Type         string                 `json:"type"`
	Notification map[string]interface{} `json:"notification"`
}

// Notify 持久化一条通知并推送给在线客户端
// 持久化后裁剪该用户的通知到保留上限
func (s *notificationService) Notify(ctx context.Context, notification *model.NotificationModel) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if err := notification.Validate(); err != nil {
		return err
	}

	// 1. 持久化
	if err := s.repo.Create(notification); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	// 2. 裁剪到保留上限
	if err := s.repo.TrimToLimit(notification.UserID, maxNotificationsPerUser); err != nil {
		logrus.WithError(err).WithField("user_id", notification.UserID).
			Warn("failed to trim notifications")
	}

	// 3. 推送给在线客户端
	s.push(notification)

	metrics.RecordNotification(notification.Type)
	return nil
}

// push 将通知推送到用户的 WebSocket 连接
func (s *notificationService) push(notification *model.NotificationModel) {
	if s.hub == nil {
		return
	}

	msg := notificationMessage{
		Type: "notification",
		Notification: map[string]interface{}{
			"id":        notification.ID,
			"type":      notification.Type,
			"title":     notification.Title,
			"message":   notification.Message,
			"projectId": notification.ProjectID,
			"taskId":    notification.TaskID,
			"createdAt": notification.CreatedAt,
		},
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal notification message")
		return
	}
	s.hub.BroadcastToUser(notification.UserID, payload)
}

// NotifyLabelingComplete 通知标注阶段完成
func (s *notificationService) NotifyLabelingComplete(ctx context.Context, userIDs []string, projectID string) {
	for _, userID := range userIDs {
		n := &model.NotificationModel{
			UserID:    userID,
			Type:      model.NotificationLabelingComplete,
			Title:     "Labeling complete",
			Message:   "All labeling tasks in the project have been completed",
			ProjectID: projectID,
		}
		if err := s.Notify(ctx, n); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id":    userID,
				"project_id": projectID,
			}).Warn("failed to send labeling-complete notification")
		}
	}
}

// NotifyProjectComplete 通知项目完成
func (s *notificationService) NotifyProjectComplete(ctx context.Context, userIDs []string, projectID string) {
	for _, userID := range userIDs {
		n := &model.NotificationModel{
			UserID:    userID,
			Type:      model.NotificationProjectComplete,
			Title:     "Project complete",
			Message:   "All tasks in the project have been completed and reviewed",
			ProjectID: projectID,
		}
		if err := s.Notify(ctx, n); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id":    userID,
				"project_id": projectID,
			}).Warn("failed to send project-complete notification")
		}
	}
}

// NotifyExportReady 通知导出文件就绪
func (s *notificationService) NotifyExportReady(ctx context.Context, userID string, export *model.ExportModel, downloadURL string) {
	data, _ := json.Marshal(map[string]interface{}{
		"exportId":    export.ID,
		"format":      export.Format,
		"version":     export.Version,
		"downloadUrl": downloadURL,
	})
	n := &model.NotificationModel{
		UserID:    userID,
		Type:      model.NotificationExportReady,
		Title:     "Export ready",
		Message:   fmt.Sprintf("Export %s (v%d) is ready for download", export.Format, export.Version),
		ProjectID: export.ProjectID,
		Data:      data,
	}
	if err := s.Notify(ctx, n); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":   userID,
			"export_id": export.ID,
		}).Warn("failed to send export-ready notification")
	}
}

// ListByUser 查询用户的通知列表
func (s *notificationService) ListByUser(userID string) ([]*model.NotificationModel, error) {
	return s.repo.FindByUser(userID)
}

// MarkRead 标记通知为已读
func (s *notificationService) MarkRead(id string) error {
	return s.repo.MarkRead(id)
}
