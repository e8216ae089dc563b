package metrichdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "ovrsee/internal/api/base/handler"
	metricsvc "ovrsee/internal/api/metrics/service"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/logger"
)

// RollupHandler xử lý request chạy rollup số liệu theo yêu cầu
type RollupHandler struct {
	Coordinator *metricsvc.RollupCoordinator
}

// NewRollupHandler tạo mới RollupHandler với đầy đủ chuỗi service rollup
func NewRollupHandler(store metricstore.RollupStore, poolSize int) (*RollupHandler, error) {
	source, err := metricsvc.NewMongoCounterSource()
	if err != nil {
		return nil, fmt.Errorf("failed to create counter source: %v", err)
	}
	lister, err := metricsvc.NewMongoOwnerLister()
	if err != nil {
		return nil, fmt.Errorf("failed to create owner lister: %v", err)
	}
	marker, err := metricsvc.NewMongoOwnerMarker()
	if err != nil {
		return nil, fmt.Errorf("failed to create owner marker: %v", err)
	}

	hourly := metricsvc.NewHourlyRollupService(store, source, marker)
	period := metricsvc.NewPeriodRollupService(store)
	coordinator := metricsvc.NewRollupCoordinator(hourly, period, lister, poolSize)

	return &RollupHandler{Coordinator: coordinator}, nil
}

// HandleRunAll chạy ngay một lượt rollup cho mọi owner, không chờ worker theo lịch
// @Router /metrics/rollup/run [post]
func (h *RollupHandler) HandleRunAll(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		summary, err := h.Coordinator.RunAll(c.Context())
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		logger.LogAction("rollup_run", c, map[string]interface{}{
			"owners": summary.Owners,
			"failed": summary.Failed,
		})
		return basehdl.HandleSuccessResponse(c, summary)
	})
}
