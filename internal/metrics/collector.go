package metrics

import (
	"context"
	"time"

	"github.com/lumax90/pixlhub-gin/internal/model"
	"github.com/lumax90/pixlhub-gin/internal/queue"
	"gorm.io/gorm"
)

// Collector 指标收集器
// 周期性采集数据库连接、任务状态分布与队列深度
type Collector struct {
	db       *gorm.DB
	router   queue.Router
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector 创建指标收集器
func NewCollector(db *gorm.DB, router queue.Router, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		db:       db,
		router:   router,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start 启动指标收集器
func (c *Collector) Start() {
	go c.collect()
}

// Stop 停止指标收集器
func (c *Collector) Stop() {
	c.cancel()
	<-c.done
}

// collect 定期收集指标
func (c *Collector) collect() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			_ = UpdateDatabaseConnections(c.db)
			c.collectTaskCounts()
			c.collectQueueDepths()
		}
	}
}

// collectTaskCounts 采集各状态任务数
func (c *Collector) collectTaskCounts() {
	statuses := []string{model.StatusPrelabel, model.StatusLabel, model.StatusReview, model.StatusCompleted}
	for _, status := range statuses {
		var count int64
		if err := c.db.Model(&model.TaskModel{}).Where("status = ?", status).Count(&count).Error; err != nil {
			continue
		}
		UpdateTasksByStatus(status, float64(count))
	}
}

// collectQueueDepths 采集各队列深度
func (c *Collector) collectQueueDepths() {
	if c.router == nil {
		return
	}
	for _, status := range []string{model.StatusLabel, model.StatusReview, model.StatusCompleted} {
		queueName, ok := queue.QueueForStatus(status)
		if !ok {
			continue
		}
		depth, err := c.router.Depth(c.ctx, status)
		if err != nil {
			continue
		}
		UpdateQueueDepth(queueName, float64(depth))
	}
}
