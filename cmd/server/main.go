package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Khởi tạo logger với cấu hình mặc định
	// Logger sẽ tự động đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Log thông tin khởi tạo bằng logger mới
	log := logger.GetAppLogger()
	log.Info("Logger system initialized successfully")
}

// main_thread khởi tạo và chạy Fiber server
func main_thread(components *AppComponents) {
	// Khởi tạo app với cấu hình
	app := InitFiberApp(components.Handlers)

	cfg := global.ServerConfig
	address := cfg.Address

	log := logger.GetAppLogger()
	log.WithFields(map[string]interface{}{
		"address":  address,
		"protocol": "HTTP",
	}).Info("Starting Fiber server...")

	listenConfig := fiber.ListenConfig{}
	if err := app.Listen(address, listenConfig); err != nil {
		log.Fatalf("Error in Fiber Listen: %v", err)
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

	// Khởi tạo services, transport và handlers
	components := InitComponents()

	log := logger.GetAppLogger()

	// Context chung cho các thành phần chạy nền, cancel khi main thoát
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sweep loop của antispam limiter: dọn các cửa sổ idle
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🛡️ [ANTISPAM] Sweep goroutine panic")
			}
		}()
		components.Limiter.Start(ctx)
	}()
	log.Info("🛡️ [ANTISPAM] Limiter sweep started")

	// Sweep loop của idempotency cache: dọn các entry hết hạn
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🔁 [IDEMPOTENCY] Sweep goroutine panic")
			}
		}()
		components.Idem.Start(ctx)
	}()
	log.Info("🔁 [IDEMPOTENCY] Cache sweep started")

	// Worker dọn draft hết hạn theo batch
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"panic": r,
				}).Error("🧹 [DRAFT_CLEANUP] Worker goroutine panic")
			}
		}()
		components.DraftWorker.Start(ctx)
	}()
	log.Info("🧹 [DRAFT_CLEANUP] Draft cleanup worker started")

	// Chạy Fiber server trên main thread
	main_thread(components)
}
