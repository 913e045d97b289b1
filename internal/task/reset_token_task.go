package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"etsy_insights_v1/internal/repository"
)

// ==================== ResetTokenCleanupTask 令牌清理任务 ====================

// ResetTokenCleanupTask 定时清理过期/已使用的密码重置令牌
type ResetTokenCleanupTask struct {
	tokenRepo repository.ResetTokenRepository
	cron      *cron.Cron
}

// NewResetTokenCleanupTask 创建清理任务
func NewResetTokenCleanupTask(tokenRepo repository.ResetTokenRepository) *ResetTokenCleanupTask {
	return &ResetTokenCleanupTask{
		tokenRepo: tokenRepo,
		cron:      cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *ResetTokenCleanupTask) Start() {
	// 每小时整点清理一次
	_, err := t.cron.AddFunc("0 0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		t.cleanupJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动令牌清理任务: %v", err)
	}

	t.cron.Start()
	log.Println("重置令牌清理任务已启动 (每小时一次)")
}

// Stop 停止定时任务
func (t *ResetTokenCleanupTask) Stop() {
	t.cron.Stop()
}

// cleanupJob 清理逻辑
func (t *ResetTokenCleanupTask) cleanupJob(ctx context.Context) {
	n, err := t.tokenRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Printf("[Cron] 重置令牌清理失败: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Cron] 已清理 %d 条过期重置令牌", n)
	}
}
