package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/config"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/registry"
)

// CollectionName chứa tên các collection trong MongoDB
type CollectionName struct {
	Users        string // Tên collection cho người dùng
	Posts        string // Tên collection cho bài đăng
	PostComments string // Tên collection cho comment của bài đăng
	Matches      string // Tên collection cho match giữa user và tác giả
	Favorites    string // Tên collection cho favorite
	Drafts       string // Tên collection cho draft bài đăng
}

// Các biến toàn cục
var Validate *validator.Validate       // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client      // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration // Cấu hình của server
var ColNames CollectionName            // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
