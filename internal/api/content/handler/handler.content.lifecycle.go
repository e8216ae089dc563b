package contenthdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "ovrsee/internal/api/base/handler"
	contentsvc "ovrsee/internal/api/content/service"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/logger"
)

// LifecycleHandler xử lý request chạy lượt quét content plan hết hạn
type LifecycleHandler struct {
	LifecycleService *contentsvc.PlanLifecycleService
}

// NewLifecycleHandler tạo mới LifecycleHandler
func NewLifecycleHandler(store metricstore.RollupStore) (*LifecycleHandler, error) {
	lifecycleService, err := contentsvc.NewPlanLifecycleService(store)
	if err != nil {
		return nil, fmt.Errorf("failed to create plan lifecycle service: %v", err)
	}
	return &LifecycleHandler{LifecycleService: lifecycleService}, nil
}

// HandleRun chạy ngay một lượt quét plan hết hạn, không chờ worker theo lịch
// @Router /lifecycle/run [post]
func (h *LifecycleHandler) HandleRun(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		summary, err := h.LifecycleService.RunOnce(c.Context())
		if err != nil {
			return basehdl.HandleErrorResponse(c, err)
		}
		logger.LogAction("lifecycle_run", c, map[string]interface{}{
			"scanned":  summary.Scanned,
			"archived": summary.Archived,
		})
		return basehdl.HandleSuccessResponse(c, summary)
	})
}
