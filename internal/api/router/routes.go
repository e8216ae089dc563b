// Package router đăng ký các route HTTP: health check, trigger rollup,
// trigger lifecycle và ingest video.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "ovrsee/internal/api/base/handler"
	contenthdl "ovrsee/internal/api/content/handler"
	metrichdl "ovrsee/internal/api/metrics/handler"
	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/api/middleware"
	"ovrsee/internal/global"
)

// Register đăng ký tất cả route của ứng dụng lên app.
// Các route mutating nằm sau Firebase auth middleware, health check thì không.
func Register(app *fiber.App, store metricstore.RollupStore) error {
	systemHandler, err := basehdl.NewSystemHandler()
	if err != nil {
		return fmt.Errorf("create system handler: %w", err)
	}
	app.Get("/health", systemHandler.HandleHealth)

	rollupHandler, err := metrichdl.NewRollupHandler(store, global.ServerConfig.RollupWorkerPoolSize)
	if err != nil {
		return fmt.Errorf("create rollup handler: %w", err)
	}
	lifecycleHandler, err := contenthdl.NewLifecycleHandler(store)
	if err != nil {
		return fmt.Errorf("create lifecycle handler: %w", err)
	}
	ingestHandler, err := contenthdl.NewVideoIngestHandler(global.ServerConfig.VideoFreshnessHours)
	if err != nil {
		return fmt.Errorf("create video ingest handler: %w", err)
	}

	v1 := app.Group("/api/v1", middleware.AuthMiddleware())
	v1.Post("/metrics/rollup/run", rollupHandler.HandleRunAll)
	v1.Post("/lifecycle/run", lifecycleHandler.HandleRun)
	v1.Post("/videos/ingest", ingestHandler.HandleIngest)

	return nil
}
