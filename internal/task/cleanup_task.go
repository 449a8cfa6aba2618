package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"bloomzon_dev_v1_202609/internal/repository"
	"bloomzon_dev_v1_202609/internal/service"
)

// MediaCleanupTask 媒体清理补偿任务
// 整组替换/删除商品时远端删除失败的对象记在台账里，这里定时重试回收。
// 重试达到上限后标记 given_up，人工处理
type MediaCleanupTask struct {
	CleanupRepo repository.CleanupRepository
	Store       service.MediaStore
	Cron        *cron.Cron

	batchSize int
}

func NewMediaCleanupTask(cleanupRepo repository.CleanupRepository, store service.MediaStore) *MediaCleanupTask {
	return &MediaCleanupTask{
		CleanupRepo: cleanupRepo,
		Store:       store,
		Cron:        cron.New(cron.WithSeconds()), // 支持秒级控制
		batchSize:   100,
	}
}

// Start 启动定时任务
func (t *MediaCleanupTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次媒体清理补偿...")
		t.sweepJob(ctx)
	}()

	// 每 10 分钟扫一轮
	_, err := t.Cron.AddFunc("0 0/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.sweepJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动媒体清理定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("媒体清理补偿任务已启动 (每10分钟扫描一次)")
}

// Stop 停止定时任务
func (t *MediaCleanupTask) Stop() {
	if t.Cron != nil {
		t.Cron.Stop()
	}
	log.Println("媒体清理补偿任务已停止")
}

// SweepNow 手动触发一轮清理
func (t *MediaCleanupTask) SweepNow(ctx context.Context) {
	t.sweepJob(ctx)
}

// sweepJob 逐条重试待清理记录
func (t *MediaCleanupTask) sweepJob(ctx context.Context) {
	failures, err := t.CleanupRepo.ListPending(ctx, t.batchSize)
	if err != nil {
		log.Printf("[Cron] 待清理记录查询失败: %v", err)
		return
	}
	if len(failures) == 0 {
		return
	}

	log.Printf("[Cron] 开始重试 %d 条媒体清理记录", len(failures))
	var done, retried int
	for _, f := range failures {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 媒体清理任务超时停止")
			return
		default:
		}

		if err := t.Store.Delete(ctx, f.URL); err != nil {
			// 日志仅记录，继续处理后续记录
			log.Printf("[Cron] 媒体删除重试失败 id=%d url=%s: %v", f.ID, f.URL, err)
			if markErr := t.CleanupRepo.MarkRetried(ctx, f.ID, f.Attempts+1, err.Error()); markErr != nil {
				log.Printf("[Cron] 台账更新失败 id=%d: %v", f.ID, markErr)
			}
			retried++
			continue
		}

		if err := t.CleanupRepo.MarkDone(ctx, f.ID); err != nil {
			log.Printf("[Cron] 台账标记完成失败 id=%d: %v", f.ID, err)
			continue
		}
		done++
	}
	log.Printf("[Cron] 本轮媒体清理完成: 成功 %d，待重试 %d", done, retried)
}
