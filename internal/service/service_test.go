package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lumax90/pixlhub-gin/internal/database"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建内存 SQLite 测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存数据库限制单连接,避免连接池拿到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// fakeRouter 记录入队调用的队列路由器
type fakeRouter struct {
	mu     sync.Mutex
	routed []routedJob
	depths map[string]int64
}

type routedJob struct {
	TaskID string
	Status string
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{depths: map[string]int64{}}
}

func (r *fakeRouter) Route(ctx context.Context, taskID string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routed = append(r.routed, routedJob{TaskID: taskID, Status: status})
	return nil
}

func (r *fakeRouter) Depth(ctx context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depths[status], nil
}

func (r *fakeRouter) Close() error {
	return nil
}

func (r *fakeRouter) routedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.routed)
}

func (r *fakeRouter) lastRouted() (routedJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routed) == 0 {
		return routedJob{}, false
	}
	return r.routed[len(r.routed)-1], true
}

// fakeBlobStore 内存对象存储
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (s *fakeBlobStore) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = data
	return nil
}

func (s *fakeBlobStore) PresignedGet(ctx context.Context, objectName string, ttl time.Duration, filename string) (string, error) {
	return "https://storage.test/" + objectName + "?signed=1", nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}

func (s *fakeBlobStore) get(objectName string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectName]
	return data, ok
}

// seedProject 创建测试项目
func seedProject(t *testing.T, db *gorm.DB, toolType string) *model.ProjectModel {
	t.Helper()

	now := time.Now()
	project := &model.ProjectModel{
		ID:             uuid.New().String(),
		Name:           "Street Scenes",
		ToolType:       toolType,
		AnnotationType: "bounding-box",
		Status:         "active",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// seedAsset 创建测试资产
func seedAsset(t *testing.T, db *gorm.DB, projectID string, name string, metadata []byte) *model.AssetModel {
	t.Helper()

	asset := &model.AssetModel{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Type:      "image",
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(asset).Error)
	return asset
}

// seedLabel 创建测试标签
func seedLabel(t *testing.T, db *gorm.DB, projectID string, name string) *model.LabelModel {
	t.Helper()

	now := time.Now()
	label := &model.LabelModel{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Color:     "#ff0000",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(label).Error)
	return label
}

// seedTask 创建测试任务
func seedTask(t *testing.T, db *gorm.DB, projectID string, assetID string, status string, createdAt time.Time) *model.TaskModel {
	t.Helper()

	now := time.Now()
	task := &model.TaskModel{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		AssetID:   assetID,
		Status:    status,
		QueuedAt:  &now,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

// seedAnnotation 创建测试标注
func seedAnnotation(t *testing.T, db *gorm.DB, taskID string, labelID string, annotationType string, data string) *model.AnnotationModel {
	t.Helper()

	now := time.Now()
	annotation := &model.AnnotationModel{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		LabelID:   labelID,
		Type:      annotationType,
		Data:      []byte(data),
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(annotation).Error)
	return annotation
}
