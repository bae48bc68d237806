package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/redis/go-redis/v9"
)

// 队列名称
const (
	LabelQueue     = "label-queue"
	ReviewQueue    = "review-queue"
	CompletedQueue = "completed-queue"
)

// 各队列保留的最大任务数,超出后按入队顺序裁剪
// 队列深度仅作调度提示,任务状态才是事实来源,裁剪不丢数据
const (
	defaultRetention   = 100
	completedRetention = 1000
)

// Job 入队任务载荷
type Job struct {
	TaskID    string `json:"task_id"`
	Timestamp int64  `json:"timestamp"`
	Priority  int    `json:"priority,omitempty"`
}

// Router 任务队列路由器接口
// 按任务状态把任务记录投递到对应的命名队列
type Router interface {
	Route(ctx context.Context, taskID string, status string) error
	Depth(ctx context.Context, status string) (int64, error)
	Close() error
}

// QueueForStatus 返回状态对应的队列名
// prelabel 没有队列,返回 false
func QueueForStatus(status string) (string, bool) {
	switch model.NormalizeStatus(status) {
	case model.StatusLabel:
		return LabelQueue, true
	case model.StatusReview:
		return ReviewQueue, true
	case model.StatusCompleted:
		return CompletedQueue, true
	}
	return "", false
}

// retentionForQueue 返回队列的保留长度
func retentionForQueue(queue string) int64 {
	if queue == CompletedQueue {
		return completedRetention
	}
	return defaultRetention
}

// redisRouter 基于 Redis 命名列表的队列路由器
type redisRouter struct {
	client *redis.Client
}

// NewRouter 创建队列路由器
func NewRouter(client *redis.Client) Router {
	return &redisRouter{client: client}
}

// Route 将任务投递到状态对应的队列
// 没有队列的状态(prelabel)为无操作
func (r *redisRouter) Route(ctx context.Context, taskID string, status string) error {
	queueName, ok := QueueForStatus(status)
	if !ok {
		return nil
	}

	job := Job{
		TaskID:    taskID,
		Timestamp: time.Now().UnixMilli(),
		Priority:  1,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := r.client.LPush(ctx, queueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task %q to %s: %w", taskID, queueName, err)
	}

	// 按保留策略裁剪队列
	retention := retentionForQueue(queueName)
	if err := r.client.LTrim(ctx, queueName, 0, retention-1).Err(); err != nil {
		return fmt.Errorf("failed to trim queue %s: %w", queueName, err)
	}

	return nil
}

// Depth 返回队列当前长度(仅供监控参考)
func (r *redisRouter) Depth(ctx context.Context, status string) (int64, error) {
	queueName, ok := QueueForStatus(status)
	if !ok {
		return 0, nil
	}
	return r.client.LLen(ctx, queueName).Result()
}

// Close 关闭 Redis 连接
func (r *redisRouter) Close() error {
	return r.client.Close()
}
