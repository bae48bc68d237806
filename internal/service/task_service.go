package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lumax90/pixlhub-gin/internal/apperr"
	"github.com/lumax90/pixlhub-gin/internal/metrics"
	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/queue"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// strictTransitions 严格模式下允许的状态转换表
// 默认关闭,开启后表外转换一律拒绝
var strictTransitions = map[string][]string{
	model.StatusPrelabel:  {model.StatusLabel},
	model.StatusLabel:     {model.StatusReview},
	model.StatusReview:    {model.StatusCompleted, model.StatusLabel},
	model.StatusCompleted: {model.StatusReview},
}

// BulkOptions 批量转换的附加操作
// 附加操作在转换之前执行,即使随后的转换失败也不回滚
type BulkOptions struct {
	RemoveAnnotations  bool
	RemoveAssignees    bool
	RemoveStageHistory bool
}

// BulkFailure 批量转换中单个任务的失败详情
type BulkFailure struct {
	TaskID string `json:"taskId"`
	Error  string `json:"error"`
}

// BulkResult 批量转换结果
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// QueueStats 项目队列统计
// 计数来自持久化的任务状态(事实来源),队列深度仅供参考
type QueueStats struct {
	Prelabel  int64            `json:"prelabel"`
	Label     int64            `json:"label"`
	Review    int64            `json:"review"`
	Completed int64            `json:"completed"`
	Depths    map[string]int64 `json:"depths,omitempty"`
}

// TaskService 任务服务接口
// 任务生命周期的唯一变更入口
type TaskService interface {
	CreateFromAsset(ctx context.Context, projectID string, assetID string, priority int) (*model.TaskModel, error)
	Get(id string) (*model.TaskModel, error)
	List(projectID string, filter *repository.TaskFilter) ([]*model.TaskModel, error)
	Transition(ctx context.Context, taskID string, newStatus string) (*model.TaskModel, error)
	BulkTransition(ctx context.Context, taskIDs []string, newStatus string, opts BulkOptions) (*BulkResult, error)
	ReviewDecision(ctx context.Context, taskID string, decision string) (*model.TaskModel, error)
	Assign(ctx context.Context, taskID string, userID string) (*model.TaskModel, error)
	AddTime(ctx context.Context, taskID string, seconds int64) (*model.TaskModel, error)
	NextTask(ctx context.Context, projectID string, status string) (*model.TaskModel, error)
	GetQueueStats(ctx context.Context, projectID string) (*QueueStats, error)
}

// taskService 任务服务实现
type taskService struct {
	taskRepo       repository.TaskRepository
	assetRepo      repository.AssetRepository
	annotationRepo repository.AnnotationRepository
	router         queue.Router
	watcher        *CompletionWatcher
	strict         bool
}

// NewTaskService 创建任务服务
func NewTaskService(
	taskRepo repository.TaskRepository,
	assetRepo repository.AssetRepository,
	annotationRepo repository.AnnotationRepository,
	router queue.Router,
	watcher *CompletionWatcher,
	strict bool,
) TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		assetRepo:      assetRepo,
		annotationRepo: annotationRepo,
		router:         router,
		watcher:        watcher,
		strict:         strict,
	}
}

// CreateFromAsset 基于资产创建任务
// 新任务直接进入 label 状态并入队
func (s *taskService) CreateFromAsset(ctx context.Context, projectID string, assetID string, priority int) (*model.TaskModel, error) {
	asset, err := s.assetRepo.FindByID(assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("asset", assetID)
		}
		return nil, err
	}
	if asset.ProjectID != projectID {
		return nil, apperr.NewValidation("asset %q does not belong to project %q", assetID, projectID)
	}

	now := time.Now()
	task := &model.TaskModel{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		AssetID:   assetID,
		Status:    model.StatusLabel,
		Priority:  priority,
		QueuedAt:  &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := task.Validate(); err != nil {
		return nil, apperr.NewValidation("%s", err.Error())
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}

	s.enqueue(ctx, task)
	metrics.RecordTaskCreated()

	logrus.WithFields(logrus.Fields{
		"task_id":    task.ID,
		"project_id": projectID,
		"asset_id":   assetID,
	}).Info("task created")

	return task, nil
}

// Get 查询任务
func (s *taskService) Get(id string) (*model.TaskModel, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", id)
		}
		return nil, err
	}
	return task, nil
}

// List 查询项目任务列表
func (s *taskService) List(projectID string, filter *repository.TaskFilter) ([]*model.TaskModel, error) {
	if filter != nil {
		for i, status := range filter.Statuses {
			if !model.IsValidStatus(status) {
				return nil, apperr.NewValidation("invalid task status %q", status)
			}
			filter.Statuses[i] = model.NormalizeStatus(status)
		}
	}
	return s.taskRepo.FindByProject(projectID, filter)
}

// Transition 变更任务状态
// 后写覆盖先写;时间戳只在进入对应阶段时补记
func (s *taskService) Transition(ctx context.Context, taskID string, newStatus string) (*model.TaskModel, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, apperr.NewValidation("invalid task status %q", newStatus)
	}
	target := model.NormalizeStatus(newStatus)

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", taskID)
		}
		return nil, err
	}

	if s.strict && !s.allowedTransition(task.Status, target) {
		return nil, apperr.NewInvalidState("transition from %q to %q is not allowed", task.Status, target)
	}

	from := task.Status
	now := time.Now()

	// 1. 更新状态与阶段时间戳
	task.Status = target
	task.UpdatedAt = now
	if target == model.StatusLabel && task.StartedAt == nil {
		task.StartedAt = &now
	}
	if target == model.StatusCompleted {
		task.CompletedAt = &now
	}

	// 2. 持久化
	if err := s.taskRepo.Save(task); err != nil {
		return nil, err
	}

	// 3. 入队并检查项目完成度
	s.enqueue(ctx, task)
	s.watch(ctx, task.ProjectID, target)

	metrics.RecordTaskTransition(from, target)

	logrus.WithFields(logrus.Fields{
		"task_id": taskID,
		"from":    from,
		"to":      target,
	}).Info("task transitioned")

	return task, nil
}

// allowedTransition 判断严格模式下的转换是否被允许
func (s *taskService) allowedTransition(from string, to string) bool {
	for _, allowed := range strictTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// BulkTransition 批量变更任务状态
// 每个任务独立处理,单个失败不中断批次;
// 附加操作先于转换执行,转换失败也不回滚附加操作
func (s *taskService) BulkTransition(ctx context.Context, taskIDs []string, newStatus string, opts BulkOptions) (*BulkResult, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, apperr.NewValidation("invalid task status %q", newStatus)
	}
	if len(taskIDs) == 0 {
		return nil, apperr.NewValidation("task IDs are required")
	}

	result := &BulkResult{}
	for _, taskID := range taskIDs {
		if err := s.applyBulkOptions(taskID, opts); err != nil {
			logrus.WithError(err).WithField("task_id", taskID).
				Warn("bulk pre-transition step failed")
			result.Failed = append(result.Failed, BulkFailure{TaskID: taskID, Error: err.Error()})
			continue
		}
		if _, err := s.Transition(ctx, taskID, newStatus); err != nil {
			logrus.WithError(err).WithField("task_id", taskID).
				Warn("bulk transition failed")
			result.Failed = append(result.Failed, BulkFailure{TaskID: taskID, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, taskID)
	}
	return result, nil
}

// applyBulkOptions 执行批量附加操作
func (s *taskService) applyBulkOptions(taskID string, opts BulkOptions) error {
	if opts.RemoveAnnotations {
		if err := s.annotationRepo.DeleteByTask(taskID); err != nil {
			return err
		}
	}
	if opts.RemoveAssignees {
		if err := s.taskRepo.ClearAssignee(taskID); err != nil {
			return err
		}
	}
	if opts.RemoveStageHistory {
		if err := s.taskRepo.ClearStageHistory(taskID); err != nil {
			return err
		}
	}
	return nil
}

// ReviewDecision 执行审核决策
// 仅允许处于 review 状态的任务:approve 进入 completed,reject 退回 label
func (s *taskService) ReviewDecision(ctx context.Context, taskID string, decision string) (*model.TaskModel, error) {
	var target string
	switch decision {
	case "approve":
		target = model.StatusCompleted
	case "reject":
		target = model.StatusLabel
	default:
		return nil, apperr.NewValidation("invalid review decision %q", decision)
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", taskID)
		}
		return nil, err
	}
	if task.Status != model.StatusReview {
		return nil, apperr.NewInvalidState("review decision requires task in review status, got %q", task.Status)
	}

	updated, err := s.Transition(ctx, taskID, target)
	if err != nil {
		return nil, err
	}

	metrics.RecordReviewDecision(decision)
	return updated, nil
}

// Assign 领取任务
func (s *taskService) Assign(ctx context.Context, taskID string, userID string) (*model.TaskModel, error) {
	if userID == "" {
		return nil, apperr.NewValidation("user ID is required")
	}

	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", taskID)
		}
		return nil, err
	}

	now := time.Now()
	task.AssignedTo = &userID
	task.AssignedAt = &now
	task.UpdatedAt = now
	if err := s.taskRepo.Save(task); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"task_id": taskID,
		"user_id": userID,
	}).Info("task assigned")

	return task, nil
}

// AddTime 累加任务耗时
// 耗时单调不减,负值拒绝
func (s *taskService) AddTime(ctx context.Context, taskID string, seconds int64) (*model.TaskModel, error) {
	if seconds < 0 {
		return nil, apperr.NewValidation("time increment must not be negative")
	}

	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", taskID)
		}
		return nil, err
	}

	if err := s.taskRepo.IncrementTimeSpent(taskID, seconds); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(taskID)
}

// NextTask 领取下一个待处理任务
// 优先级高者优先,同优先级按入队时间先后,只返回未被领取的任务
func (s *taskService) NextTask(ctx context.Context, projectID string, status string) (*model.TaskModel, error) {
	if !model.IsValidStatus(status) {
		return nil, apperr.NewValidation("invalid task status %q", status)
	}

	task, err := s.taskRepo.FindNext(projectID, model.NormalizeStatus(status))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task", "")
		}
		return nil, err
	}
	return task, nil
}

// GetQueueStats 查询项目队列统计
func (s *taskService) GetQueueStats(ctx context.Context, projectID string) (*QueueStats, error) {
	stats := &QueueStats{Depths: map[string]int64{}}

	counts := []struct {
		status string
		target *int64
	}{
		{model.StatusPrelabel, &stats.Prelabel},
		{model.StatusLabel, &stats.Label},
		{model.StatusReview, &stats.Review},
		{model.StatusCompleted, &stats.Completed},
	}
	for _, c := range counts {
		count, err := s.taskRepo.CountByStatus(projectID, c.status)
		if err != nil {
			return nil, err
		}
		*c.target = count
	}

	// 队列深度仅供参考,读取失败不影响统计结果
	for _, status := range []string{model.StatusLabel, model.StatusReview, model.StatusCompleted} {
		queueName, ok := queue.QueueForStatus(status)
		if !ok {
			continue
		}
		depth, err := s.router.Depth(ctx, status)
		if err != nil {
			logrus.WithError(err).WithField("queue", queueName).Warn("failed to read queue depth")
			continue
		}
		stats.Depths[queueName] = depth
	}

	return stats, nil
}

// enqueue 将任务投递到状态对应的队列
// 入队失败只记日志,任务状态已持久化,不回滚
func (s *taskService) enqueue(ctx context.Context, task *model.TaskModel) {
	if s.router == nil {
		return
	}
	if err := s.router.Route(ctx, task.ID, task.Status); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"task_id": task.ID,
			"status":  task.Status,
		}).Warn("failed to enqueue task")
	}
}

// watch 在进入 review/completed 后检查对应的完成度里程碑
func (s *taskService) watch(ctx context.Context, projectID string, status string) {
	if s.watcher == nil {
		return
	}
	if status != model.StatusReview && status != model.StatusCompleted {
		return
	}
	s.watcher.Check(ctx, projectID, status)
}
