package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái hội thoại của user với bot
const (
	BotStateIdle           = "idle"
	BotStateCommentWriting = "comment_writing"
)

// User đại diện cho một thành viên của cộng đồng
type User struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của user

	// ===== IDENTITY =====
	TelegramID int64  `json:"telegramId" bson:"telegramId" validate:"required"`                         // ID Telegram, unique
	Codename   string `json:"codename,omitempty" bson:"codename,omitempty" validate:"omitempty,no_xss"` // Biệt danh hiển thị trên kênh
	Category   string `json:"category,omitempty" bson:"category,omitempty"`                             // Phân loại thành viên (nam, nu, couple...)
	State      string `json:"state,omitempty" bson:"state,omitempty"`                                   // Tình trạng (doc_than, da_ket_hon...)

	// ===== MEMBERSHIP =====
	Premium bool `json:"premium" bson:"premium"` // Thành viên premium (truy cập kênh full)

	// ===== BOT STATE =====
	BotState       string             `json:"botState,omitempty" bson:"botState,omitempty"`             // Trạng thái hội thoại: idle, comment_writing
	BotStatePostID primitive.ObjectID `json:"botStatePostId,omitempty" bson:"botStatePostId,omitempty"` // Post đang thao tác trong trạng thái hiện tại

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}

// Favorite đại diện cho một lượt lưu post của user.
// Unique theo (userId, postId).
type Favorite struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của favorite

	UserID int64              `json:"userId" bson:"userId" validate:"required"` // Telegram ID của user lưu
	PostID primitive.ObjectID `json:"postId" bson:"postId" validate:"required"` // Post được lưu

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
