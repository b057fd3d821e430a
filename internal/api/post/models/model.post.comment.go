package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Giới hạn độ dài nội dung comment
const (
	CommentMinLength = 1
	CommentMaxLength = 600
)

// Comment đại diện cho một bình luận trên post
type Comment struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của comment

	PostID   primitive.ObjectID `json:"postId" bson:"postId" validate:"required"`                  // Post được bình luận
	UserID   int64              `json:"userId" bson:"userId" validate:"required"`                  // Telegram ID của người bình luận
	Codename string             `json:"codename,omitempty" bson:"codename,omitempty"`              // Biệt danh tại thời điểm bình luận
	Text     string             `json:"text" bson:"text" validate:"required,min=1,max=600,no_xss"` // Nội dung

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
