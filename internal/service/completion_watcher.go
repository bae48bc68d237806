package service

import (
	"context"

	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/repository"
	"github.com/sirupsen/logrus"
)

// CompletionWatcher 项目完成度观察器
// 在任务状态持久化之后检查项目剩余工作量并触发里程碑事件:
// 进入 review 且没有剩余 label 任务时触发标注完成,
// 进入 completed 且没有剩余 label+review 任务时触发项目完成
// 事件投递是尽力而为的:通知失败只记日志,从不影响状态变更本身
type CompletionWatcher struct {
	taskRepo     repository.TaskRepository
	notification NotificationService
}

// NewCompletionWatcher 创建项目完成度观察器
func NewCompletionWatcher(taskRepo repository.TaskRepository, notification NotificationService) *CompletionWatcher {
	return &CompletionWatcher{
		taskRepo:     taskRepo,
		notification: notification,
	}
}

// Check 在任务转换到 target 之后检查项目完成度并触发对应事件
// 每种转换目标只评估自己的里程碑:review 转换评估标注完成,
// completed 转换评估项目完成,二者互不重复触发。
// 以持久化的任务状态为事实来源;并发转换下事件可能重复触发,
// 事件本身只作提示,不承载状态
func (w *CompletionWatcher) Check(ctx context.Context, projectID string, target string) {
	// 项目内必须确实存在任务,空项目不触发事件
	total, err := w.taskRepo.CountByStatus(projectID)
	if err != nil || total == 0 {
		return
	}

	switch target {
	case model.StatusReview:
		labelRemaining, err := w.taskRepo.CountByStatus(projectID, model.StatusLabel)
		if err != nil {
			logrus.WithError(err).WithField("project_id", projectID).
				Warn("failed to count remaining label tasks")
			return
		}
		if labelRemaining == 0 {
			logrus.WithField("project_id", projectID).Info("labeling complete")
			w.notification.NotifyLabelingComplete(ctx, w.participants(projectID), projectID)
		}

	case model.StatusCompleted:
		remaining, err := w.taskRepo.CountByStatus(projectID, model.StatusLabel, model.StatusReview)
		if err != nil {
			logrus.WithError(err).WithField("project_id", projectID).
				Warn("failed to count remaining open tasks")
			return
		}
		if remaining == 0 {
			logrus.WithField("project_id", projectID).Info("project complete")
			w.notification.NotifyProjectComplete(ctx, w.participants(projectID), projectID)
		}
	}
}

// participants 收集项目内出现过的任务领取人
func (w *CompletionWatcher) participants(projectID string) []string {
	tasks, err := w.taskRepo.FindByProject(projectID, nil)
	if err != nil {
		logrus.WithError(err).WithField("project_id", projectID).
			Warn("failed to collect project participants")
		return nil
	}

	seen := map[string]bool{}
	var userIDs []string
	for _, task := range tasks {
		if task.AssignedTo == nil || *task.AssignedTo == "" {
			continue
		}
		if seen[*task.AssignedTo] {
			continue
		}
		seen[*task.AssignedTo] = true
		userIDs = append(userIDs, *task.AssignedTo)
	}
	return userIDs
}
