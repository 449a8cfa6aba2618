package service

import (
	"context"
	"encoding/json"
	"log"

	"gorm.io/datatypes"

	"bloomzon_dev_v1_202609/internal/model"
	"bloomzon_dev_v1_202609/internal/repository"
)

// ==================== 媒体存储依赖 ====================

// MediaStore 替换/删除流程需要的对象存储能力子集
// 由 StorageService 实现，测试中用内存假实现
type MediaStore interface {
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// ==================== 尽力而为删除 ====================

// bestEffortDeleteMedia 删除旧媒体：失败只打日志并写清理台账，永不上抛。
// 校验全部通过之后才会走到这里，本步骤已承诺完成，不能被存储故障打断
func bestEffortDeleteMedia(
	ctx context.Context,
	store MediaStore,
	cleanupRepo repository.CleanupRepository,
	productRef int64,
	url string,
	sourceOp string,
	extra map[string]interface{},
) {
	if url == "" {
		return
	}

	err := store.Delete(ctx, url)
	if err == nil {
		return
	}

	log.Printf("[MediaCleanup] 删除旧媒体失败 (op=%s, product=%d, url=%s): %v",
		sourceOp, productRef, url, err)

	if cleanupRepo == nil {
		return
	}

	record := &model.MediaCleanupFailure{
		ProductRef: productRef,
		URL:        url,
		SourceOp:   sourceOp,
		Reason:     err.Error(),
		Status:     model.CleanupStatusPending,
	}
	if len(extra) > 0 {
		if raw, marshalErr := json.Marshal(extra); marshalErr == nil {
			record.Context = datatypes.JSON(raw)
		}
	}
	if createErr := cleanupRepo.Create(ctx, record); createErr != nil {
		// 台账也写不进去只能靠日志了
		log.Printf("[MediaCleanup] 写清理台账失败: %v", createErr)
	}
}
