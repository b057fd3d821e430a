package worker

import (
	"context"
	"time"

	draftsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/service"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// DraftCleanupWorker worker dọn các draft đã hết hạn theo batch.
// Draft cũng bị xóa khi đọc trúng (delete-on-read); worker này quét phần
// còn lại để collection không phình.
type DraftCleanupWorker struct {
	draftService *draftsvc.DraftService
	interval     time.Duration // Khoảng thời gian giữa các lần chạy
	batchLimit   int64         // Số draft tối đa xóa mỗi lượt
}

// NewDraftCleanupWorker tạo mới DraftCleanupWorker
// Tham số:
//   - draftService: Service quản lý draft
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 10 phút)
//   - batchLimit: Số draft tối đa xóa mỗi lượt (mặc định: 100)
func NewDraftCleanupWorker(draftService *draftsvc.DraftService, interval time.Duration, batchLimit int64) *DraftCleanupWorker {
	// Set defaults
	if interval < time.Minute {
		interval = 10 * time.Minute
	}
	if batchLimit <= 0 {
		batchLimit = 100
	}

	return &DraftCleanupWorker{
		draftService: draftService,
		interval:     interval,
		batchLimit:   batchLimit,
	}
}

// Start bắt đầu background worker dọn draft hết hạn.
// Worker chạy định kỳ theo interval đến khi ctx bị hủy.
func (w *DraftCleanupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":   w.interval.String(),
		"batchLimit": w.batchLimit,
	}).Info("🧹 [DRAFT_CLEANUP] Starting Draft Cleanup Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [DRAFT_CLEANUP] Draft Cleanup Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [DRAFT_CLEANUP] Panic khi dọn draft, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				removed, err := w.draftService.CleanupExpired(ctx, w.batchLimit)
				if err != nil {
					log.WithError(err).Error("🧹 [DRAFT_CLEANUP] Dọn draft hết hạn thất bại")
					return
				}

				if removed > 0 {
					log.WithFields(map[string]interface{}{
						"removed": removed,
					}).Info("🧹 [DRAFT_CLEANUP] Đã dọn draft hết hạn")
				}
				// removed = 0 không log (giảm log noise)
			}()
		}
	}
}
