package worker

import (
	"context"
	"time"

	metricsvc "ovrsee/internal/api/metrics/service"
	"ovrsee/internal/logger"
)

// RetentionWorker dọn snapshot quá hạn giữ và chốt số liệu cuối ngày của từng
// video thành bản ghi daily close trước khi snapshot bị xóa.
type RetentionWorker struct {
	snapshotService *metricsvc.SnapshotService
	interval        time.Duration // Khoảng thời gian giữa các lần dọn
	retention       time.Duration // Thời gian giữ snapshot
}

// NewRetentionWorker tạo mới RetentionWorker.
// Tham số:
//   - interval: Khoảng thời gian giữa các lần dọn (mặc định: 1 giờ)
//   - retentionHours: Thời gian giữ snapshot tính bằng giờ (mặc định: 48)
func NewRetentionWorker(interval time.Duration, retentionHours int) (*RetentionWorker, error) {
	snapshotService, err := metricsvc.NewSnapshotService()
	if err != nil {
		return nil, err
	}
	if interval < time.Minute {
		interval = time.Hour
	}
	if retentionHours <= 0 {
		retentionHours = 48
	}
	return &RetentionWorker{
		snapshotService: snapshotService,
		interval:        interval,
		retention:       time.Duration(retentionHours) * time.Hour,
	}, nil
}

// Start chạy worker trong vòng lặp: mỗi interval chốt daily close của ngày hôm
// trước rồi xóa snapshot cũ hơn hạn giữ.
func (w *RetentionWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":  w.interval.String(),
		"retention": w.retention.String(),
	}).Info("🧹 [RETENTION] Starting Retention Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🧹 [RETENTION] Retention Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🧹 [RETENTION] Panic khi dọn snapshot, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				now := time.Now().UTC()

				// Chốt daily close của ngày hôm trước trước khi xóa snapshot
				yesterday := now.AddDate(0, 0, -1)
				archived, err := w.snapshotService.ArchiveDailyCloses(ctx, yesterday)
				if err != nil {
					log.WithError(err).Error("🧹 [RETENTION] Lỗi chốt daily close")
				} else if archived > 0 {
					log.WithFields(map[string]interface{}{
						"archived": archived,
					}).Info("🧹 [RETENTION] Đã chốt daily close của ngày hôm trước")
				}

				deleted, err := w.snapshotService.PruneOlderThan(ctx, now.Add(-w.retention))
				if err != nil {
					log.WithError(err).Error("🧹 [RETENTION] Lỗi xóa snapshot cũ")
				} else if deleted > 0 {
					log.WithFields(map[string]interface{}{
						"deleted": deleted,
					}).Info("🧹 [RETENTION] Đã xóa snapshot quá hạn giữ")
				}
			}()
		}
	}
}
