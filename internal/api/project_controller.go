package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/service"
)

// ProjectController 项目控制器
type ProjectController struct {
	projectService service.ProjectService
}

// NewProjectController 创建项目控制器
func NewProjectController(projectService service.ProjectService) *ProjectController {
	return &ProjectController{projectService: projectService}
}

// Create 创建项目
// POST /api/v1/projects
func (ctrl *ProjectController) Create(c *gin.Context) {
	var input service.ProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	project, err := ctrl.projectService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, project)
}

// Get 查询项目
// GET /api/v1/projects/:id
func (ctrl *ProjectController) Get(c *gin.Context) {
	project, err := ctrl.projectService.Get(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, project)
}

// List 查询项目列表
// GET /api/v1/projects
func (ctrl *ProjectController) List(c *gin.Context) {
	projects, err := ctrl.projectService.List()
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, projects)
}

// Delete 删除项目
// DELETE /api/v1/projects/:id
func (ctrl *ProjectController) Delete(c *gin.Context) {
	if err := ctrl.projectService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// AddAsset 向项目登记资产
// POST /api/v1/projects/:id/assets
func (ctrl *ProjectController) AddAsset(c *gin.Context) {
	var input service.AssetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	asset, err := ctrl.projectService.AddAsset(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, asset)
}

// ListAssets 查询项目资产列表
// GET /api/v1/projects/:id/assets
func (ctrl *ProjectController) ListAssets(c *gin.Context) {
	assets, err := ctrl.projectService.ListAssets(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, assets)
}
