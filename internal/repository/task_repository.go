package repository

import (
	"github.com/lumax90/pixlhub-gin/internal/model"
	"gorm.io/gorm"
)

// TaskRepository 任务仓储接口
type TaskRepository interface {
	Create(task *model.TaskModel) error
	Save(task *model.TaskModel) error
	FindByID(id string) (*model.TaskModel, error)
	FindByProject(projectID string, filter *TaskFilter) ([]*model.TaskModel, error)
	FindNext(projectID string, status string) (*model.TaskModel, error)
	CountByStatus(projectID string, statuses ...string) (int64, error)
	IncrementTimeSpent(id string, seconds int64) error
	ClearAssignee(id string) error
	ClearStageHistory(id string) error
}

// TaskFilter 任务查询过滤器
type TaskFilter struct {
	Statuses   []string
	AssignedTo *string
	Limit      int
}

// taskRepository 任务仓储实现
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create 创建任务
func (r *taskRepository) Create(task *model.TaskModel) error {
	return r.db.Create(task).Error
}

// Save 保存任务
func (r *taskRepository) Save(task *model.TaskModel) error {
	return r.db.Save(task).Error
}

// FindByID 根据 ID 查找任务
func (r *taskRepository) FindByID(id string) (*model.TaskModel, error) {
	var task model.TaskModel
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByProject 按项目查找任务,按创建时间升序保证导出顺序稳定
func (r *taskRepository) FindByProject(projectID string, filter *TaskFilter) ([]*model.TaskModel, error) {
	var tasks []*model.TaskModel
	query := r.db.Model(&model.TaskModel{}).Where("project_id = ?", projectID)

	if filter != nil {
		if len(filter.Statuses) > 0 {
			query = query.Where("status IN ?", filter.Statuses)
		}
		if filter.AssignedTo != nil {
			query = query.Where("assigned_to = ?", *filter.AssignedTo)
		}
		if filter.Limit > 0 {
			query = query.Limit(filter.Limit)
		}
	}

	err := query.Order("created_at ASC").Find(&tasks).Error
	return tasks, err
}

// FindNext 查找下一个可领取的任务
// 优先级高者优先,同优先级按入队时间先后
func (r *taskRepository) FindNext(projectID string, status string) (*model.TaskModel, error) {
	var task model.TaskModel
	err := r.db.Where("project_id = ? AND status = ? AND assigned_to IS NULL", projectID, status).
		Order("priority DESC").
		Order("queued_at ASC").
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CountByStatus 统计项目内处于指定状态的任务数
// 不指定状态时统计项目内全部任务
func (r *taskRepository) CountByStatus(projectID string, statuses ...string) (int64, error) {
	var count int64
	query := r.db.Model(&model.TaskModel{}).Where("project_id = ?", projectID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&count).Error
	return count, err
}

// IncrementTimeSpent 原子累加任务耗时
func (r *taskRepository) IncrementTimeSpent(id string, seconds int64) error {
	return r.db.Model(&model.TaskModel{}).Where("id = ?", id).
		UpdateColumn("time_spent", gorm.Expr("time_spent + ?", seconds)).Error
}

// ClearAssignee 清除任务领取人
func (r *taskRepository) ClearAssignee(id string) error {
	return r.db.Model(&model.TaskModel{}).Where("id = ?", id).
		Update("assigned_to", nil).Error
}

// ClearStageHistory 清除阶段时间戳
// 批量重置历史操作直接置空四个时间戳字段
func (r *taskRepository) ClearStageHistory(id string) error {
	return r.db.Model(&model.TaskModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"queued_at":    nil,
			"assigned_at":  nil,
			"started_at":   nil,
			"completed_at": nil,
		}).Error
}
