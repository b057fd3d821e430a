// Package router đăng ký toàn bộ route HTTP của ứng dụng.
package router

import (
	"github.com/gofiber/fiber/v3"

	basehdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/handler"
	bothdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/bot/handler"
	posthdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/handler"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// Handlers gom các handler cần cho việc đăng ký route
type Handlers struct {
	Webhook *bothdl.WebhookHandler
	Post    *posthdl.PostHandler
	System  *basehdl.SystemHandler
}

// SetupRoutes đăng ký route: webhook của bot, admin API v1 và health check
func SetupRoutes(app *fiber.App, h Handlers) {
	log := logger.GetAppLogger()

	// Webhook nhận update từ Telegram
	app.Post("/webhook/telegram", h.Webhook.HandleUpdate)

	// Admin API v1
	v1 := app.Group("/api/v1")
	v1.Post("/posts/:id/publish", h.Post.HandlePublish)
	v1.Get("/posts/:id", h.Post.HandleGet)

	// Health check
	app.Get("/health", h.System.HandleHealth)

	log.Info("🔀 [ROUTER] Đã đăng ký routes: webhook, admin API v1, health")
}
