package container

import (
	"fmt"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/config"
	"github.com/lumax90/pixlhub-gin/internal/database"
	"github.com/lumax90/pixlhub-gin/internal/metrics"
	"github.com/lumax90/pixlhub-gin/internal/queue"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/lumax90/pixlhub-gin/internal/service"
	"github.com/lumax90/pixlhub-gin/internal/storage"
	"github.com/lumax90/pixlhub-gin/internal/websocket"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理所有应用依赖,包括数据库、队列、对象存储和各业务服务
type Container struct {
	db          *gorm.DB
	redisClient *redis.Client
	router      queue.Router
	store       storage.BlobStore
	hub         *websocket.Hub
	collector   *metrics.Collector

	projectService      service.ProjectService
	taskService         service.TaskService
	annotationService   service.AnnotationService
	labelService        service.LabelService
	exportService       service.ExportService
	notificationService service.NotificationService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化所有依赖组件
func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. 初始化数据库（带重试机制）
	// 默认重试 3 次，初始间隔 1 秒，指数退避
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// 执行数据库迁移
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 2. 初始化 Redis 与队列路由器
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	router := queue.NewRouter(redisClient)

	// 3. 初始化对象存储
	store, err := storage.NewMinioStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	// 4. 初始化 WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// 5. 初始化仓储层
	projectRepo := repository.NewProjectRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	annotationRepo := repository.NewAnnotationRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	exportRepo := repository.NewExportRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 6. 初始化服务层
	notificationService := service.NewNotificationService(notificationRepo, hub)
	watcher := service.NewCompletionWatcher(taskRepo, notificationService)

	projectService := service.NewProjectService(projectRepo, assetRepo)
	taskService := service.NewTaskService(taskRepo, assetRepo, annotationRepo, router, watcher, cfg.Task.StrictTransitions)
	annotationService := service.NewAnnotationService(annotationRepo, taskRepo, labelRepo)
	labelService := service.NewLabelService(labelRepo, annotationRepo, projectRepo)
	exportService := service.NewExportService(
		projectRepo, taskRepo, annotationRepo, assetRepo, labelRepo, exportRepo,
		store, notificationService, cfg.Export,
	)

	// 7. 启动指标收集器
	collector := metrics.NewCollector(db, router, 30*time.Second)
	collector.Start()

	return &Container{
		db:                  db,
		redisClient:         redisClient,
		router:              router,
		store:               store,
		hub:                 hub,
		collector:           collector,
		projectService:      projectService,
		taskService:         taskService,
		annotationService:   annotationService,
		labelService:        labelService,
		exportService:       exportService,
		notificationService: notificationService,
	}, nil
}

// DB 获取数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Redis 获取 Redis 客户端
func (c *Container) Redis() *redis.Client {
	return c.redisClient
}

// Router 获取队列路由器
func (c *Container) Router() queue.Router {
	return c.router
}

// BlobStore 获取对象存储
func (c *Container) BlobStore() storage.BlobStore {
	return c.store
}

// Hub 获取 WebSocket Hub
func (c *Container) Hub() *websocket.Hub {
	return c.hub
}

// ProjectService 获取项目服务
func (c *Container) ProjectService() service.ProjectService {
	return c.projectService
}

// TaskService 获取任务服务
func (c *Container) TaskService() service.TaskService {
	return c.taskService
}

// AnnotationService 获取标注服务
func (c *Container) AnnotationService() service.AnnotationService {
	return c.annotationService
}

// LabelService 获取标签服务
func (c *Container) LabelService() service.LabelService {
	return c.labelService
}

// ExportService 获取导出服务
func (c *Container) ExportService() service.ExportService {
	return c.exportService
}

// NotificationService 获取通知服务
func (c *Container) NotificationService() service.NotificationService {
	return c.notificationService
}

// Close 关闭容器,清理资源
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}

	if c.router != nil {
		if err := c.router.Close(); err != nil {
			return err
		}
	}

	if c.db != nil {
		sqlDB, err := c.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return nil
}
