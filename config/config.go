package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Gồm cấu hình server, MongoDB, bot token, các kênh đăng bài và antispam.
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:":8080"`                // Địa chỉ server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"liberall"`      // Tên cơ sở dữ liệu
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request HTTP tối đa trong window (0 = disable)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting tầng HTTP

	// Telegram Bot Configuration
	TelegramBotToken     string `env:"TELEGRAM_BOT_TOKEN,required"` // Bot token dùng cho mọi thao tác Bot API
	TelegramWebhookToken string `env:"TELEGRAM_WEBHOOK_TOKEN"`      // Secret token kiểm tra header webhook (rỗng = bỏ qua kiểm tra)

	// Publish Channels
	// Kênh restricted là kênh freemium (media bị làm mờ với bài monetized),
	// kênh full là kênh premium nhận media gốc.
	RestrictedChannelID int64 `env:"RESTRICTED_CHANNEL_ID,required"` // Chat ID kênh restricted
	FullChannelID       int64 `env:"FULL_CHANNEL_ID,required"`       // Chat ID kênh full

	// Render / Draft
	RenderMode    string `env:"RENDER_MODE" envDefault:"carousel"` // carousel | album_panel (cố định cho bài mới)
	DraftTTLHours int    `env:"DRAFT_TTL_HOURS" envDefault:"2"`    // TTL của draft (giờ), mỗi lần ghi reset lại

	// Antispam Overrides (0 = dùng mặc định của từng action)
	AntispamCommentMax     int `env:"ANTISPAM_COMMENT_MAX" envDefault:"0"`      // Số comment tối đa trong window
	AntispamCommentWindow  int `env:"ANTISPAM_COMMENT_WINDOW" envDefault:"0"`   // Window comment (giây)
	AntispamMediaNavMax    int `env:"ANTISPAM_MEDIA_NAV_MAX" envDefault:"0"`    // Số lần chuyển media tối đa trong window
	AntispamMediaNavWindow int `env:"ANTISPAM_MEDIA_NAV_WINDOW" envDefault:"0"` // Window media nav (giây)
	AntispamMatchMax       int `env:"ANTISPAM_MATCH_MAX" envDefault:"0"`        // Số match tối đa trong window
	AntispamMatchWindow    int `env:"ANTISPAM_MATCH_WINDOW" envDefault:"0"`     // Window match (giây)
	AntispamFavoriteMax    int `env:"ANTISPAM_FAVORITE_MAX" envDefault:"0"`     // Số favorite tối đa trong window
	AntispamFavoriteWindow int `env:"ANTISPAM_FAVORITE_WINDOW" envDefault:"0"`  // Window favorite (giây)
	AntispamPublishMax     int `env:"ANTISPAM_PUBLISH_MAX" envDefault:"0"`      // Số publish tối đa trong window
	AntispamPublishWindow  int `env:"ANTISPAM_PUBLISH_WINDOW" envDefault:"0"`   // Window publish (giây)
	IdempotencyTTLSeconds  int `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"120"` // TTL mặc định của idempotency cache (giây)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Tìm thư mục config
	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			// Tìm thấy thư mục config/env
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		// Đi lên thư mục cha
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
