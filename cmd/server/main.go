package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v3"

	metricstore "ovrsee/internal/api/metrics/store"
	"ovrsee/internal/global"
	"ovrsee/internal/logger"
	"ovrsee/internal/worker"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// startWorkers khởi động các background worker: rollup, lifecycle, retention
func startWorkers(ctx context.Context, store metricstore.RollupStore) {
	log := logger.GetAppLogger()
	cfg := global.ServerConfig

	rollupWorker, err := worker.NewRollupWorker(
		store,
		time.Duration(cfg.RollupWorkerInterval)*time.Second,
		cfg.RollupWorkerPoolSize,
	)
	if err != nil {
		log.WithError(err).Error("Failed to create rollup worker, continuing without it")
	} else {
		go rollupWorker.Start(ctx)
	}

	lifecycleWorker, err := worker.NewLifecycleWorker(
		store,
		time.Duration(cfg.LifecycleWorkerInterval)*time.Second,
	)
	if err != nil {
		log.WithError(err).Error("Failed to create lifecycle worker, continuing without it")
	} else {
		go lifecycleWorker.Start(ctx)
	}

	retentionWorker, err := worker.NewRetentionWorker(
		time.Duration(cfg.RetentionWorkerInterval)*time.Second,
		cfg.SnapshotRetentionHours,
	)
	if err != nil {
		log.WithError(err).Error("Failed to create retention worker, continuing without it")
	} else {
		go retentionWorker.Start(ctx)
	}
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(store metricstore.RollupStore) {
	app := InitFiberApp(store)

	cfg := global.ServerConfig
	address := cfg.Address

	log := logger.GetAppLogger()
	log.Info("Starting Fiber server...")

	// Resolve đường dẫn tương đối từ thư mục chứa config/env
	resolvePath := func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		currentDir, err := os.Getwd()
		if err != nil {
			return path
		}
		for {
			envDir := filepath.Join(currentDir, "config", "env")
			if _, err := os.Stat(envDir); err == nil {
				return filepath.Join(currentDir, path)
			}
			parentDir := filepath.Dir(currentDir)
			if parentDir == currentDir {
				return path
			}
			currentDir = parentDir
		}
	}

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		certPath := resolvePath(cfg.TLSCertFile)
		keyPath := resolvePath(cfg.TLSKeyFile)

		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			log.Fatalf("TLS certificate file not found: %s (resolved from: %s)", certPath, cfg.TLSCertFile)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			log.Fatalf("TLS key file not found: %s (resolved from: %s)", keyPath, cfg.TLSKeyFile)
		}

		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			log.Fatalf("Error loading TLS certificate: %v", err)
		}

		ln, err := net.Listen("tcp", address)
		if err != nil {
			log.Fatalf("Error creating listener: %v", err)
		}

		tlsConfig := &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
		tlsListener := tls.NewListener(ln, tlsConfig)

		log.WithFields(map[string]interface{}{
			"address": address,
			"cert":    certPath,
			"key":     keyPath,
		}).Info("Starting server with HTTPS/TLS")

		if err := app.Listener(tlsListener); err != nil {
			log.Fatalf("Error in Fiber Listener with TLS: %v", err)
		}
	} else {
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")

		if err := app.Listen(address, fiber.ListenConfig{}); err != nil {
			log.Fatalf("Error in Fiber Listen: %v", err)
		}
	}
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục
	InitGlobal()

	// Khởi tạo registry
	InitRegistry()

	// Kho rollup dùng chung cho API handler và các worker
	store, err := metricstore.NewMongoRollupStore()
	if err != nil {
		logger.GetAppLogger().Fatalf("Failed to create rollup store: %v", err)
	}

	// Khởi động các background worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startWorkers(ctx, store)

	// Chạy Fiber server trên main thread
	main_thread(store)
}
