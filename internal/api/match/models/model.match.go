package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Match đại diện cho một lượt match của user với tác giả qua một post.
// Unique theo (userId, authorId, postId).
type Match struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của match

	UserID   int64              `json:"userId" bson:"userId" validate:"required"`     // Telegram ID của người match
	AuthorID int64              `json:"authorId" bson:"authorId" validate:"required"` // Telegram ID của tác giả post
	PostID   primitive.ObjectID `json:"postId" bson:"postId" validate:"required"`     // Post kích hoạt match

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
