package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
)

// Trạng thái của draft trong luồng đăng bài
const (
	StatusEditing = "editing"
	StatusReady   = "ready"
)

// Draft là bản nháp bài đăng, sống trong TTL rồi tự hết hạn
type Draft struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của draft

	// ===== IDENTITY =====
	DraftID string `json:"draftId" bson:"draftId" validate:"required"` // Định danh draft (UUID), unique theo owner
	OwnerID int64  `json:"ownerId" bson:"ownerId" validate:"required"` // Telegram ID của chủ sở hữu

	// ===== CONTENT =====
	Title       string             `json:"title,omitempty" bson:"title,omitempty" validate:"omitempty,max=120,no_xss"`
	Description string             `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=3000,no_xss"`
	Media       []postmodels.Media `json:"media,omitempty" bson:"media,omitempty" validate:"omitempty,max=10,dive"`

	// ===== MONETIZATION =====
	Monetized bool  `json:"monetized" bson:"monetized"`
	Price     int64 `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,min=0"`

	// ===== RENDER =====
	RenderMode string `json:"renderMode,omitempty" bson:"renderMode,omitempty" validate:"omitempty,render_mode"`

	// ===== LIFECYCLE =====
	Status    string `json:"status" bson:"status"`       // editing | ready
	ExpiresAt int64  `json:"expiresAt" bson:"expiresAt"` // Thời điểm hết hạn (Unix ms)

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
