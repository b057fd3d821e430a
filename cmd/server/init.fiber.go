package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/antispam"
	basehdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/handler"
	bothdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/bot/handler"
	draftsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/service"
	matchsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/match/service"
	posthdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/handler"
	postsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/service"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/router"
	usersvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/service"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/callback"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/idempotency"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/telegram"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/worker"
)

// AppComponents gom các thành phần runtime của bot: handlers cho router
// và các thành phần chạy nền (limiter sweep, idempotency sweep, draft cleanup).
type AppComponents struct {
	Handlers    router.Handlers
	Limiter     *antispam.Limiter
	Idem        *idempotency.Cache
	DraftWorker *worker.DraftCleanupWorker
}

// InitComponents khởi tạo toàn bộ service, transport và handler của bot.
// Thứ tự: transport → services → engine (antispam/idempotency) → handlers.
func InitComponents() *AppComponents {
	cfg := global.ServerConfig

	// Transport Telegram Bot API
	transport := telegram.NewBotAPI(cfg.TelegramBotToken)

	// Services
	users, err := usersvc.NewUserService()
	if err != nil {
		logrus.Fatalf("Failed to init user service: %v", err)
	}
	favorites, err := usersvc.NewFavoriteService()
	if err != nil {
		logrus.Fatalf("Failed to init favorite service: %v", err)
	}
	posts, err := postsvc.NewPostService()
	if err != nil {
		logrus.Fatalf("Failed to init post service: %v", err)
	}
	comments, err := postsvc.NewCommentService(posts)
	if err != nil {
		logrus.Fatalf("Failed to init comment service: %v", err)
	}
	matches, err := matchsvc.NewMatchService()
	if err != nil {
		logrus.Fatalf("Failed to init match service: %v", err)
	}
	drafts, err := draftsvc.NewDraftService(time.Duration(cfg.DraftTTLHours) * time.Hour)
	if err != nil {
		logrus.Fatalf("Failed to init draft service: %v", err)
	}
	publisher := postsvc.NewPublisher(posts, users, transport, cfg.RestrictedChannelID, cfg.FullChannelID)

	// Antispam: override giới hạn mặc định từ env, 0 = giữ mặc định
	overrides := map[string]antispam.Limit{}
	addOverride := func(action string, max, window int) {
		if max > 0 && window > 0 {
			overrides[action] = antispam.Limit{Max: max, Window: time.Duration(window) * time.Second}
		}
	}
	addOverride(antispam.ActionComment, cfg.AntispamCommentMax, cfg.AntispamCommentWindow)
	addOverride(antispam.ActionMediaNav, cfg.AntispamMediaNavMax, cfg.AntispamMediaNavWindow)
	addOverride(antispam.ActionMatch, cfg.AntispamMatchMax, cfg.AntispamMatchWindow)
	addOverride(antispam.ActionFavorite, cfg.AntispamFavoriteMax, cfg.AntispamFavoriteWindow)
	addOverride(antispam.ActionPublish, cfg.AntispamPublishMax, cfg.AntispamPublishWindow)
	rateLimiter := antispam.NewLimiter(overrides)

	idem := idempotency.NewCache(time.Duration(cfg.IdempotencyTTLSeconds) * time.Second)

	// Handlers + callback router
	interactions := bothdl.NewInteractionHandler(users, favorites, posts, comments, matches, drafts, publisher, rateLimiter, idem, transport, cfg.RenderMode)
	cbRouter := callback.NewRouter(transport.AnswerCallback)
	interactions.RegisterRoutes(cbRouter)

	return &AppComponents{
		Handlers: router.Handlers{
			Webhook: bothdl.NewWebhookHandler(interactions, cbRouter, cfg.TelegramWebhookToken),
			Post:    posthdl.NewPostHandler(posts, publisher),
			System:  basehdl.NewSystemHandler(),
		},
		Limiter:     rateLimiter,
		Idem:        idem,
		DraftWorker: worker.NewDraftCleanupWorker(drafts, 10*time.Minute, 100),
	}
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp(h router.Handlers) *fiber.App {
	// Khởi tạo app với cấu hình nâng cao
	app := fiber.New(fiber.Config{
		// =========================================
		// 1. CẤU HÌNH CƠ BẢN
		// =========================================
		AppName:       "LiberALL Bot", // Tên ứng dụng hiển thị
		ServerHeader:  "LiberALL Bot", // Header server trong response
		StrictRouting: true,           // /foo và /foo/ là khác nhau
		CaseSensitive: true,           // /Foo và /foo là khác nhau
		UnescapePath:  true,           // Tự động decode URL-encoded paths
		Immutable:     false,          // Tính năng immutable cho ctx

		// =========================================
		// 2. CẤU HÌNH PERFORMANCE
		// =========================================
		BodyLimit:       2 * 1024 * 1024, // Max size của request body (2MB, update Telegram nhỏ)
		Concurrency:     256 * 1024,      // Số lượng goroutines tối đa
		ReadBufferSize:  4096,            // Buffer size cho request reading
		WriteBufferSize: 4096,            // Buffer size cho response writing

		// =========================================
		// 3. CẤU HÌNH TIMEOUT
		// =========================================
		ReadTimeout:  15 * time.Second,  // Timeout đọc request
		WriteTimeout: 30 * time.Second,  // Timeout ghi response
		IdleTimeout:  120 * time.Second, // Timeout cho idle connections

		// =========================================
		// 4. CẤU HÌNH ERROR HANDLING
		// =========================================
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			errorCode := common.ErrCodeInternalServer.Code

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
				// Map HTTP status code to error code
				switch code {
				case fiber.StatusBadRequest:
					errorCode = common.ErrCodeValidationInput.Code
				case fiber.StatusUnauthorized:
					errorCode = common.ErrCodeBusinessOperation.Code
				case fiber.StatusForbidden:
					errorCode = common.ErrCodeBusinessOperation.Code
				case fiber.StatusNotFound:
					errorCode = common.ErrCodeDatabaseQuery.Code
				case fiber.StatusConflict:
					errorCode = common.ErrCodeDatabaseQuery.Code
				}
			}

			// Kiểm tra xem có phải lỗi TLS handshake không (HTTPS đến HTTP server)
			// TLS handshake bắt đầu với byte 0x16 0x03 0x01 (trong error message có thể hiển thị là \x16\x03\x01)
			errMsg := err.Error()
			isTLSHandshake := strings.Contains(errMsg, "unsupported http request method") &&
				(strings.Contains(errMsg, "\\x16\\x03\\x01") ||
					strings.Contains(errMsg, "\x16\x03\x01") ||
					strings.Contains(errMsg, "error when reading request headers"))

			// Nếu là TLS handshake, downgrade log level và trả về lỗi phù hợp
			if isTLSHandshake {
				// Không log TLS handshake để giảm log (đây là hành vi bình thường)

				// Trả về lỗi Bad Request với message hướng dẫn rõ ràng
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"code":    common.ErrCodeValidationInput.Code,
					"message": "Server chỉ hỗ trợ HTTP. Vui lòng sử dụng http:// thay vì https://",
					"status":  "error",
					"details": fiber.Map{
						"protocol":   "HTTP only",
						"suggestion": "Sử dụng URL: http://localhost" + global.ServerConfig.Address,
					},
				})
			}

			// Log error cho các lỗi khác
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"code":      code,
				"errorCode": errorCode,
				"message":   message,
			}).Error("Request error")

			// Return JSON error với format thống nhất
			return c.Status(code).JSON(fiber.Map{
				"code":    errorCode,
				"message": message,
				"status":  "error",
			})
		},
	})

	// =========================================
	// MIDDLEWARE STACK
	// =========================================

	// 1. Request ID Middleware - Tạo ID duy nhất cho mỗi request để trace
	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		},
	}))

	// 2. CORS Middleware - xử lý preflight requests cho admin API
	corsOrigins := global.ServerConfig.CORS_Origins
	var allowOrigins []string
	if corsOrigins == "*" {
		// Development mode: cho phép tất cả
		allowOrigins = []string{"*"}
	} else {
		// Production mode: chỉ cho phép các origins cụ thể
		allowOrigins = strings.Split(corsOrigins, ",")
		// Trim spaces
		for i, origin := range allowOrigins {
			allowOrigins[i] = strings.TrimSpace(origin)
		}
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Request-ID",
			"X-Requested-With",
			"X-Telegram-Bot-Api-Secret-Token", // Header secret token của webhook Telegram
		},
		AllowCredentials: global.ServerConfig.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
		MaxAge:           24 * 60 * 60, // Thời gian cache preflight requests (24 giờ)
		// Fiber v3 tự động trả về 204 No Content cho OPTIONS requests
	}))

	// 3. Security Headers Middleware - Thêm các security headers
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	})

	// 4. Rate Limiting Middleware - Giới hạn số request tầng HTTP.
	// Webhook được bỏ qua: antispam theo (user, action) đã lo phần tương tác,
	// chặn theo IP ở đây sẽ chặn nhầm chính server của Telegram.
	if global.ServerConfig.RateLimit_Enabled && global.ServerConfig.RateLimit_Max > 0 {
		rateLimitMax := global.ServerConfig.RateLimit_Max
		rateLimitWindow := time.Duration(global.ServerConfig.RateLimit_Window) * time.Second
		app.Use(limiter.New(limiter.Config{
			Max:        rateLimitMax,
			Expiration: rateLimitWindow,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP() // Giới hạn theo IP
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    common.ErrCodeRateLimit.Code,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			SkipFailedRequests:     false,
			SkipSuccessfulRequests: false,
			Next: func(c fiber.Ctx) bool {
				// Bỏ qua rate limit cho webhook, health check và OPTIONS requests (preflight)
				return c.Path() == "/health" ||
					c.Path() == "/webhook/telegram" ||
					c.Method() == "OPTIONS"
			},
		}))
		log := logger.GetAppLogger()
		log.Infof("Rate limiting enabled: %d requests per %d seconds", rateLimitMax, global.ServerConfig.RateLimit_Window)
	} else {
		log := logger.GetAppLogger()
		log.Info("Rate limiting disabled")
	}

	// 5. Recover Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic với stack trace
			logger.WithRequest(c).WithFields(map[string]interface{}{
				"panic":   e,
				"headers": c.GetReqHeaders(),
				"body":    string(c.Body()),
			}).Error("Panic recovered")

			// Trả về response với format chuẩn
			c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusInternalServerError,
				"message": "Internal Server Error",
				"error":   fmt.Sprintf("%v", e),
				"time":    time.Now().Format(time.RFC3339),
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Bỏ qua health check
			return c.Path() == "/health"
		},
	}))

	// Khởi tạo routes
	router.SetupRoutes(app, h)

	return app
}
