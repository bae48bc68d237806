package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/service"
)

// LabelController 标签控制器
type LabelController struct {
	labelService service.LabelService
}

// NewLabelController 创建标签控制器
func NewLabelController(labelService service.LabelService) *LabelController {
	return &LabelController{labelService: labelService}
}

// Create 创建标签
// POST /api/v1/projects/:id/labels
func (ctrl *LabelController) Create(c *gin.Context) {
	var input service.LabelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	label, err := ctrl.labelService.Create(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, label)
}

// List 查询项目标签列表
// GET /api/v1/projects/:id/labels
func (ctrl *LabelController) List(c *gin.Context) {
	labels, err := ctrl.labelService.ListByProject(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, labels)
}

// Delete 删除标签
// DELETE /api/v1/labels/:id
func (ctrl *LabelController) Delete(c *gin.Context) {
	if err := ctrl.labelService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
