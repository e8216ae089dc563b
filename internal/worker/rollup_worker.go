package worker

import (
	"context"
	"time"

	metricsvc "ovrsee/internal/api/metrics/service"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/logger"
)

// RollupWorker chạy rollup định kỳ cho mọi owner: entry theo giờ, entry theo ngày
// và các cửa sổ tuần/tháng/quý. Mỗi chu kỳ là một lượt fan-out đầy đủ.
type RollupWorker struct {
	coordinator *metricsvc.RollupCoordinator
	interval    time.Duration // Khoảng thời gian giữa các lần chạy
}

// NewRollupWorker tạo mới RollupWorker.
// Tham số:
//   - store: kho rollup dùng chung với API handler
//   - interval: Khoảng thời gian giữa các lần chạy (mặc định: 1 giờ)
//   - poolSize: Số owner xử lý song song (mặc định: 10)
func NewRollupWorker(store metricstore.RollupStore, interval time.Duration, poolSize int) (*RollupWorker, error) {
	source, err := metricsvc.NewMongoCounterSource()
	if err != nil {
		return nil, err
	}
	lister, err := metricsvc.NewMongoOwnerLister()
	if err != nil {
		return nil, err
	}
	marker, err := metricsvc.NewMongoOwnerMarker()
	if err != nil {
		return nil, err
	}
	if interval < time.Minute {
		interval = time.Hour
	}

	hourly := metricsvc.NewHourlyRollupService(store, source, marker)
	period := metricsvc.NewPeriodRollupService(store)

	return &RollupWorker{
		coordinator: metricsvc.NewRollupCoordinator(hourly, period, lister, poolSize),
		interval:    interval,
	}, nil
}

// Start chạy worker trong vòng lặp: mỗi interval chạy một lượt rollup đầy đủ.
func (w *RollupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("📈 [ROLLUP] Starting Rollup Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("📈 [ROLLUP] Rollup Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("📈 [ROLLUP] Panic khi chạy rollup, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				if _, err := w.coordinator.RunAll(ctx); err != nil {
					log.WithError(err).Error("📈 [ROLLUP] Lỗi chạy lượt rollup")
				}
			}()
		}
	}
}
