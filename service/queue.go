package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"lovesong-server/config"

	"github.com/hibiken/asynq"
)

const (
	TypeGenerateWork = "work:generate"
)

var QueueClient *asynq.Client

// InitQueue 初始化
func InitQueue() {
	QueueClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.Redis.Addr,
		Password: config.AppConfig.Redis.Password,
	})
}

// EnqueueGenerateWork 作品生成任务入队。队列持久化在 Redis，
// 进程重启后在途任务会被重新投递而不是卡在 generating
func EnqueueGenerateWork(params GenerationParams) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	task := asynq.NewTask(TypeGenerateWork, payload,
		asynq.MaxRetry(3),             // 基础设施失败重试 3 次，业务失败不走重试
		asynq.Timeout(30*time.Minute), // 音频生成较慢，设置较长超时
		asynq.Retention(24*time.Hour), // 任务结果在 Redis 保留时间
	)

	info, err := QueueClient.Enqueue(task)
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}

	log.Printf("[Queue] Work Enqueued: WorkID=%s, TaskID=%s", params.WorkID, info.ID)
	return nil
}
