package worker

import (
	"context"
	"time"

	contentsvc "ovrsee/internal/api/content/service"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/logger"
)

// LifecycleWorker quét định kỳ các content plan đã hết hạn và đóng băng chúng
// thành bản ghi historical.
type LifecycleWorker struct {
	lifecycleService *contentsvc.PlanLifecycleService
	interval         time.Duration // Khoảng thời gian giữa các lần quét
}

// NewLifecycleWorker tạo mới LifecycleWorker.
// Tham số:
//   - store: kho rollup để đọc số liệu cuối cùng của plan
//   - interval: Khoảng thời gian giữa các lần quét (mặc định: 24 giờ)
func NewLifecycleWorker(store metricstore.RollupStore, interval time.Duration) (*LifecycleWorker, error) {
	lifecycleService, err := contentsvc.NewPlanLifecycleService(store)
	if err != nil {
		return nil, err
	}
	if interval < time.Minute {
		interval = 24 * time.Hour
	}
	return &LifecycleWorker{
		lifecycleService: lifecycleService,
		interval:         interval,
	}, nil
}

// Start chạy worker trong vòng lặp: mỗi interval quét một lượt plan hết hạn.
func (w *LifecycleWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🗂️ [LIFECYCLE] Starting Lifecycle Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🗂️ [LIFECYCLE] Lifecycle Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🗂️ [LIFECYCLE] Panic khi quét plan hết hạn, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				if _, err := w.lifecycleService.RunOnce(ctx); err != nil {
					log.WithError(err).Error("🗂️ [LIFECYCLE] Lỗi chạy lượt quét plan hết hạn")
				}
			}()
		}
	}
}
