package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/lumax90/pixlhub-gin/internal/service"
)

// TaskController 任务控制器
type TaskController struct {
	taskService service.TaskService
}

// NewTaskController 创建任务控制器
func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{taskService: taskService}
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	AssetID  string `json:"assetId" binding:"required"`
	Priority int    `json:"priority"`
}

// Create 基于资产创建任务
// POST /api/v1/projects/:id/tasks
func (ctrl *TaskController) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := ctrl.taskService.CreateFromAsset(c.Request.Context(), c.Param("id"), req.AssetID, req.Priority)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, task)
}

// Get 查询任务
// GET /api/v1/tasks/:id
func (ctrl *TaskController) Get(c *gin.Context) {
	task, err := ctrl.taskService.Get(c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// List 查询项目任务列表
// GET /api/v1/projects/:id/tasks
func (ctrl *TaskController) List(c *gin.Context) {
	filter := &repository.TaskFilter{}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []string{status}
	}
	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}

	tasks, err := ctrl.taskService.List(c.Param("id"), filter)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, tasks)
}

// TransitionRequest 状态变更请求
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// Transition 变更任务状态
// POST /api/v1/tasks/:id/transition
func (ctrl *TaskController) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := ctrl.taskService.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// BulkTransitionRequest 批量状态变更请求
type BulkTransitionRequest struct {
	TaskIDs            []string `json:"taskIds" binding:"required"`
	Status             string   `json:"status" binding:"required"`
	RemoveAnnotations  bool     `json:"removeAnnotations"`
	RemoveAssignees    bool     `json:"removeAssignees"`
	RemoveStageHistory bool     `json:"removeStageHistory"`
}

// BulkTransition 批量变更任务状态
// POST /api/v1/tasks/bulk-transition
func (ctrl *TaskController) BulkTransition(c *gin.Context) {
	var req BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := ctrl.taskService.BulkTransition(c.Request.Context(), req.TaskIDs, req.Status, service.BulkOptions{
		RemoveAnnotations:  req.RemoveAnnotations,
		RemoveAssignees:    req.RemoveAssignees,
		RemoveStageHistory: req.RemoveStageHistory,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// ReviewRequest 审核决策请求
type ReviewRequest struct {
	Decision string `json:"decision" binding:"required"`
}

// Review 执行审核决策
// POST /api/v1/tasks/:id/review
func (ctrl *TaskController) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := ctrl.taskService.ReviewDecision(c.Request.Context(), c.Param("id"), req.Decision)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// AssignRequest 任务领取请求
type AssignRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// Assign 领取任务
// POST /api/v1/tasks/:id/assign
func (ctrl *TaskController) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := ctrl.taskService.Assign(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// AddTimeRequest 耗时累加请求
type AddTimeRequest struct {
	Seconds int64 `json:"seconds"`
}

// AddTime 累加任务耗时
// POST /api/v1/tasks/:id/time
func (ctrl *TaskController) AddTime(c *gin.Context) {
	var req AddTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	task, err := ctrl.taskService.AddTime(c.Request.Context(), c.Param("id"), req.Seconds)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// Next 领取下一个待处理任务
// GET /api/v1/projects/:id/tasks/next
func (ctrl *TaskController) Next(c *gin.Context) {
	status := c.DefaultQuery("status", "label")

	task, err := ctrl.taskService.NextTask(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// QueueStats 查询项目队列统计
// GET /api/v1/projects/:id/queue-stats
func (ctrl *TaskController) QueueStats(c *gin.Context) {
	stats, err := ctrl.taskService.GetQueueStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stats)
}
