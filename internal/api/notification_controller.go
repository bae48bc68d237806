package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/service"
)

// NotificationController 通知控制器
type NotificationController struct {
	notificationService service.NotificationService
}

// NewNotificationController 创建通知控制器
func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List 查询当前用户的通知列表
// GET /api/v1/notifications
func (ctrl *NotificationController) List(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		Error(c, http.StatusBadRequest, "invalid request", "X-User-ID header is required")
		return
	}

	notifications, err := ctrl.notificationService.ListByUser(userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, notifications)
}

// MarkRead 标记通知为已读
// POST /api/v1/notifications/:id/read
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	if err := ctrl.notificationService.MarkRead(c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
