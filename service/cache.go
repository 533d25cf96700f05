package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lovesong-server/config"
	"lovesong-server/models"

	"github.com/redis/go-redis/v9"
)

// 状态查询的 read-through 缓存。数据库始终是作品状态的唯一事实来源，
// 这里只挡住轮询端点的重复读，TTL 很短，每次状态写入后主动失效
var statusCache *redis.Client

const statusCacheTTL = 3 * time.Second

func InitCache() {
	statusCache = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.Redis.Addr,
		Password: config.AppConfig.Redis.Password,
	})
	if err := statusCache.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis 状态缓存不可用（查询将直连数据库）: %v", err)
	}
}

func statusCacheKey(workID string) string {
	return "work:status:" + workID
}

// GetWorkCached 先查缓存，未命中回源数据库并写回
func GetWorkCached(ctx context.Context, workID string) (models.Work, error) {
	if statusCache != nil {
		if b, err := statusCache.Get(ctx, statusCacheKey(workID)).Bytes(); err == nil {
			var w models.Work
			if err := json.Unmarshal(b, &w); err == nil {
				return w, nil
			}
		}
	}

	w, err := models.GetWorkByID(workID)
	if err != nil {
		return w, err
	}

	if statusCache != nil {
		if b, err := json.Marshal(w); err == nil {
			if err := statusCache.Set(ctx, statusCacheKey(workID), b, statusCacheTTL).Err(); err != nil {
				log.Printf("写入状态缓存失败: %v", err)
			}
		}
	}
	return w, nil
}

// InvalidateWorkStatus 状态写入后调用，保证轮询端点不落后于数据库
func InvalidateWorkStatus(workID string) {
	if statusCache == nil {
		return
	}
	if err := statusCache.Del(context.Background(), statusCacheKey(workID)).Err(); err != nil {
		log.Printf("失效状态缓存失败: %v", err)
	}
}
