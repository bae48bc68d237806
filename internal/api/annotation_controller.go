package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/service"
)

// AnnotationController 标注控制器
type AnnotationController struct {
	annotationService service.AnnotationService
}

// NewAnnotationController 创建标注控制器
func NewAnnotationController(annotationService service.AnnotationService) *AnnotationController {
	return &AnnotationController{annotationService: annotationService}
}

// ReplaceRequest 标注保存请求
// 保存语义是全量替换,提交的集合成为任务的全部标注
type ReplaceRequest struct {
	Annotations []service.AnnotationInput `json:"annotations"`
}

// Replace 全量替换任务标注
// PUT /api/v1/tasks/:id/annotations
func (ctrl *AnnotationController) Replace(c *gin.Context) {
	var req ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	annotations, err := ctrl.annotationService.ReplaceForTask(c.Request.Context(), c.Param("id"), req.Annotations)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, annotations)
}

// List 查询任务标注列表
// GET /api/v1/tasks/:id/annotations
func (ctrl *AnnotationController) List(c *gin.Context) {
	annotations, err := ctrl.annotationService.ListByTask(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, annotations)
}
