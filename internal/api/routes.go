package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/config"
	"github.com/lumax90/pixlhub-gin/internal/websocket"
)

// Controllers 路由注册所需的控制器集合
type Controllers struct {
	Health       *HealthController
	Project      *ProjectController
	Task         *TaskController
	Annotation   *AnnotationController
	Label        *LabelController
	Export       *ExportController
	Notification *NotificationController
	Hub          *websocket.Hub
}

// SetupRouter 构建 gin 引擎并注册全部路由
func SetupRouter(cfg *config.Config, ctrl Controllers) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogMiddleware())
	r.Use(SecurityHeadersMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	r.Use(ErrorHandlerMiddleware())

	// 运维端点
	r.GET("/health", ctrl.Health.Check)
	r.GET("/metrics", MetricsHandler)
	r.GET("/ws", websocket.WebSocketHandler(ctrl.Hub))

	v1 := r.Group("/api/v1")
	{
		// 项目
		v1.POST("/projects", ctrl.Project.Create)
		v1.GET("/projects", ctrl.Project.List)
		v1.GET("/projects/:id", ctrl.Project.Get)
		v1.DELETE("/projects/:id", ctrl.Project.Delete)
		v1.POST("/projects/:id/assets", ctrl.Project.AddAsset)
		v1.GET("/projects/:id/assets", ctrl.Project.ListAssets)

		// 标签
		v1.POST("/projects/:id/labels", ctrl.Label.Create)
		v1.GET("/projects/:id/labels", ctrl.Label.List)
		v1.DELETE("/labels/:id", ctrl.Label.Delete)

		// 任务
		v1.POST("/projects/:id/tasks", ctrl.Task.Create)
		v1.GET("/projects/:id/tasks", ctrl.Task.List)
		v1.GET("/projects/:id/tasks/next", ctrl.Task.Next)
		v1.GET("/projects/:id/queue-stats", ctrl.Task.QueueStats)
		v1.GET("/tasks/:id", ctrl.Task.Get)
		v1.POST("/tasks/:id/transition", ctrl.Task.Transition)
		v1.POST("/tasks/bulk-transition", ctrl.Task.BulkTransition)
		v1.POST("/tasks/:id/review", ctrl.Task.Review)
		v1.POST("/tasks/:id/assign", ctrl.Task.Assign)
		v1.POST("/tasks/:id/time", ctrl.Task.AddTime)

		// 标注
		v1.PUT("/tasks/:id/annotations", ctrl.Annotation.Replace)
		v1.GET("/tasks/:id/annotations", ctrl.Annotation.List)

		// 导出
		v1.POST("/projects/:id/exports", ctrl.Export.Run)
		v1.POST("/projects/:id/exports/preview", ctrl.Export.Preview)
		v1.GET("/projects/:id/exports", ctrl.Export.List)
		v1.GET("/exports/:id/download", ctrl.Export.Download)

		// 通知
		v1.GET("/notifications", ctrl.Notification.List)
		v1.POST("/notifications/:id/read", ctrl.Notification.MarkRead)
	}

	// 自定义 NoRoute 处理器,未匹配的路由返回 JSON 格式的 404
	r.NoRoute(func(c *gin.Context) {
		Error(c, http.StatusNotFound, "route not found", "the requested route does not exist")
	})

	return r
}
