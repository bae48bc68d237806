package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/service"
)

// ExportController 导出控制器
type ExportController struct {
	exportService service.ExportService
}

// NewExportController 创建导出控制器
func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// ExportRequest 导出请求
type ExportRequest struct {
	Format  string                `json:"format" binding:"required"`
	Options service.ExportOptions `json:"options"`
}

// Run 执行完整导出流程
// POST /api/v1/projects/:id/exports
func (ctrl *ExportController) Run(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	userID := c.GetHeader("X-User-ID")
	export, downloadURL, err := ctrl.exportService.Run(c.Request.Context(), c.Param("id"), userID, req.Format, req.Options)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, gin.H{
		"export":      export,
		"downloadUrl": downloadURL,
	})
}

// Preview 生成导出预览
// POST /api/v1/projects/:id/exports/preview
func (ctrl *ExportController) Preview(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			Error(c, http.StatusBadRequest, "invalid request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	preview, err := ctrl.exportService.Preview(c.Request.Context(), c.Param("id"), req.Format, req.Options, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, preview)
}

// List 查询项目导出历史
// GET /api/v1/projects/:id/exports
func (ctrl *ExportController) List(c *gin.Context) {
	exports, err := ctrl.exportService.ListByProject(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, exports)
}

// Download 获取导出文件下载链接
// GET /api/v1/exports/:id/download
func (ctrl *ExportController) Download(c *gin.Context) {
	url, err := ctrl.exportService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"downloadUrl": url})
}
