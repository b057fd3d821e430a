// Package ui dựng caption và inline keyboard cho post trên các kênh.
// Builder chỉ nhận dữ liệu view thuần - không chạm DB, không gọi transport -
// để render logic test được độc lập.
package ui

import (
	"fmt"
	"strings"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/callback"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/telegram"
)

// Chế độ render của post
const (
	RenderCarousel   = "carousel"
	RenderAlbumPanel = "album_panel"
)

// PostView là dữ liệu cần để dựng caption và keyboard cho một post
type PostView struct {
	PostID         string
	AuthorCodename string
	AuthorCategory string
	AuthorState    string
	Title          string
	Text           string
	Monetized      bool
	Price          int64
	Blurred        bool // Bản blur trên kênh hạn chế
	RenderMode     string
	MediaIndex     int // Index media đang hiển thị (carousel)
	MediaTotal     int
	CommentCount   int64
	FavoriteCount  int64
}

// BlurURL chèn transform blur của Cloudinary vào URL media.
// URL không chứa segment /upload/ được giữ nguyên.
func BlurURL(url string) string {
	const marker = "/upload/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return url
	}
	return url[:idx+len(marker)] + "e_blur:1000,q_10/" + url[idx+len(marker):]
}

// BuildCaption dựng caption của post: dòng tag tác giả, tiêu đề, nội dung,
// và khối CTA mua khi post monetized bị blur.
func BuildCaption(view PostView) string {
	var b strings.Builder

	// Dòng tag tác giả: codename | category | state
	tags := []string{}
	if view.AuthorCodename != "" {
		tags = append(tags, "#"+view.AuthorCodename)
	}
	if view.AuthorCategory != "" {
		tags = append(tags, "#"+view.AuthorCategory)
	}
	if view.AuthorState != "" {
		tags = append(tags, "#"+view.AuthorState)
	}
	if len(tags) > 0 {
		b.WriteString(strings.Join(tags, " | "))
		b.WriteString("\n\n")
	}

	if view.Title != "" {
		b.WriteString("<b>")
		b.WriteString(view.Title)
		b.WriteString("</b>\n\n")
	}
	if view.Text != "" {
		b.WriteString(view.Text)
	}

	if view.Monetized && view.Blurred {
		b.WriteString("\n\n🔒 Nội dung đầy đủ dành cho thành viên premium")
		if view.Price > 0 {
			b.WriteString(fmt.Sprintf("\n💎 Mở khóa: %d⭐", view.Price))
		}
	}

	return strings.TrimSpace(b.String())
}

// BuildKeyboard dựng inline keyboard kết hợp: hàng điều hướng media
// (khi carousel và có hơn 1 media) cộng các hàng action.
func BuildKeyboard(view PostView) telegram.Keyboard {
	kb := telegram.Keyboard{}

	// Hàng điều hướng: prev | bộ đếm (noop) | next.
	// Post 1 media hoặc album_panel không có hàng này.
	if view.RenderMode == RenderCarousel && view.MediaTotal > 1 {
		kb = append(kb, []telegram.Button{
			{Text: "⬅️", CallbackData: data(callback.MediaPrev(view.PostID, view.MediaIndex))},
			{Text: fmt.Sprintf("%d/%d", view.MediaIndex+1, view.MediaTotal), CallbackData: callback.Noop()},
			{Text: "➡️", CallbackData: data(callback.MediaNext(view.PostID, view.MediaIndex))},
		})
	}

	// Hàng tương tác chính
	kb = append(kb, []telegram.Button{
		{Text: "💘 Match", CallbackData: data(callback.MatchPost(view.PostID))},
		{Text: favoriteLabel(view.FavoriteCount), CallbackData: data(callback.FavoritePost(view.PostID))},
		{Text: commentsLabel(view.CommentCount), CallbackData: data(callback.CommentsPost(view.PostID))},
	})

	// Hàng phụ
	kb = append(kb, []telegram.Button{
		{Text: "🖼 Gallery", CallbackData: data(callback.GalleryPost(view.PostID))},
		{Text: "ℹ️ Info", CallbackData: data(callback.InfoPost(view.PostID))},
	})

	// Hàng điều hướng chung: vào luồng đăng bài hoặc mở menu chính.
	// Handler đọc người bấm từ callback query nên identifier chỉ là context.
	kb = append(kb, []telegram.Button{
		{Text: "📝 Đăng bài", CallbackData: data(callback.PostingCreate(view.PostID))},
		{Text: "📋 Menu", CallbackData: data(callback.MenuMain(view.PostID))},
	})

	return kb
}

// BuildPanelKeyboard dựng keyboard cho panel message của post album_panel.
// Giống keyboard carousel nhưng không bao giờ có hàng điều hướng.
func BuildPanelKeyboard(view PostView) telegram.Keyboard {
	panel := view
	panel.RenderMode = RenderAlbumPanel
	return BuildKeyboard(panel)
}

// BuildMainMenuKeyboard dựng keyboard menu chính gửi qua DM
func BuildMainMenuKeyboard(userID string) telegram.Keyboard {
	return telegram.Keyboard{
		{
			{Text: "📝 Đăng bài", CallbackData: data(callback.PostingCreate(userID))},
			{Text: "📄 Bản nháp", CallbackData: data(callback.PostingDraft("list"))},
		},
	}
}

// data nuốt lỗi của builder - ID trong hệ thống là ObjectID hex 24 ký tự
// nên không thể vượt giới hạn độ dài; nếu vẫn lỗi, nút trở thành noop.
func data(s string, err error) string {
	if err != nil {
		return callback.Noop()
	}
	return s
}

func favoriteLabel(count int64) string {
	if count > 0 {
		return fmt.Sprintf("❤️ %d", count)
	}
	return "❤️"
}

func commentsLabel(count int64) string {
	if count > 0 {
		return fmt.Sprintf("💬 %d", count)
	}
	return "💬"
}
