package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Các kênh đăng bài. Kênh restricted dành cho mọi thành viên (bản monetized
// bị blur), kênh full dành cho premium.
const (
	ChannelRestricted = "restricted"
	ChannelFull       = "full"
)

// AllChannels trả về danh sách kênh theo thứ tự đăng cố định
func AllChannels() []string {
	return []string{ChannelRestricted, ChannelFull}
}

// Chế độ render của post, cố định từ lúc tạo
const (
	RenderCarousel   = "carousel"
	RenderAlbumPanel = "album_panel"
)

// Media là một media trong post, thứ tự trong slice là thứ tự hiển thị
type Media struct {
	Type string `json:"type" bson:"type" validate:"required,oneof=photo video"` // photo | video
	URL  string `json:"url" bson:"url" validate:"required,url"`                 // URL media gốc (không blur)
}

// PostStats là các bộ đếm tương tác, chỉ được cập nhật qua $inc
type PostStats struct {
	Comments  int64 `json:"comments" bson:"comments"`   // Số comment
	Favorites int64 `json:"favorites" bson:"favorites"` // Số lượt lưu
	Matches   int64 `json:"matches" bson:"matches"`     // Số lượt match
}

// Mirrors đánh dấu post đã được đăng lên kênh nào
type Mirrors struct {
	SentToRestricted bool `json:"sentToRestricted" bson:"sentToRestricted"` // Đã đăng kênh restricted
	SentToFull       bool `json:"sentToFull" bson:"sentToFull"`             // Đã đăng kênh full
}

// SentTo báo post đã có mirror trên kênh. channel_refs chỉ được ghi một
// lần cho mỗi kênh nên kênh đã có mirror không bao giờ được đăng lại.
func (p Post) SentTo(channel string) bool {
	if channel == ChannelFull {
		return p.Mirrors.SentToFull
	}
	return p.Mirrors.SentToRestricted
}

// ChannelRef lưu vị trí của post trên một kênh để edit về sau
type ChannelRef struct {
	ChatID            int64   `json:"chatId" bson:"chatId"`                                       // Chat ID của kênh
	MessageID         int64   `json:"messageId" bson:"messageId"`                                 // Message chính (carousel hoặc text)
	PanelMessageID    int64   `json:"panelMessageId,omitempty" bson:"panelMessageId,omitempty"`   // Panel message (album_panel)
	AlbumMessageIDs   []int64 `json:"albumMessageIds,omitempty" bson:"albumMessageIds,omitempty"` // Các message của album
	CurrentMediaIndex int     `json:"currentMediaIndex" bson:"currentMediaIndex"`                 // Index media đang hiển thị (carousel)
}

// Post đại diện cho một bài đăng của thành viên
type Post struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của post

	// ===== AUTHOR =====
	AuthorID int64 `json:"authorId" bson:"authorId" validate:"required"` // Telegram ID của tác giả

	// ===== CONTENT =====
	Title string  `json:"title,omitempty" bson:"title,omitempty" validate:"omitempty,max=120,no_xss"` // Tiêu đề
	Text  string  `json:"text,omitempty" bson:"text,omitempty" validate:"omitempty,max=3000,no_xss"`  // Nội dung
	Media []Media `json:"media,omitempty" bson:"media,omitempty" validate:"omitempty,max=10,dive"`    // Media theo thứ tự hiển thị

	// ===== MONETIZATION =====
	Monetized bool  `json:"monetized" bson:"monetized"`                                        // Bài trả phí
	Price     int64 `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,min=0"` // Giá mở khóa

	// ===== RENDER =====
	RenderMode string `json:"renderMode" bson:"renderMode" validate:"required,render_mode"` // carousel | album_panel

	// ===== INTERACTION =====
	Stats PostStats `json:"stats" bson:"stats"` // Bộ đếm tương tác, chỉ qua $inc

	// ===== MIRRORS =====
	Mirrors     Mirrors               `json:"mirrors" bson:"mirrors"`                             // Kênh đã đăng
	ChannelRefs map[string]ChannelRef `json:"channelRefs,omitempty" bson:"channelRefs,omitempty"` // Vị trí post trên từng kênh

	// ===== TIMESTAMPS =====
	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
