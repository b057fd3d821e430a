// Package callback hiện thực giao thức callback data của bot:
// parse/build chuỗi dạng action:target:identifier[:extra]* và router
// dispatch theo action. Mọi chuỗi đi qua transport bị giới hạn 64 byte,
// giới hạn được kiểm tra ngay lúc build, không bao giờ lúc gửi.
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
)

// MaxDataLength là giới hạn callback data của Bot API (byte, không phải rune)
const MaxDataLength = 64

// Separator ngăn cách các segment trong callback data
const Separator = ":"

// Action là tập đóng các hành động được giao thức hỗ trợ.
// Chuỗi action chỉ được decode một lần tại boundary (Parse);
// mọi code phía sau làm việc với enum này.
type Action string

const (
	ActionMatch         Action = "match"
	ActionGallery       Action = "gallery"
	ActionFavorite      Action = "favorite"
	ActionInfo          Action = "info"
	ActionComments      Action = "comments"
	ActionPosting       Action = "posting"
	ActionMenu          Action = "menu"
	ActionMedia         Action = "media"
	ActionMonetize      Action = "monetize"
	ActionProfileDetail Action = "profile_detail"
	ActionProfile       Action = "profile"
	ActionBack          Action = "back"
	ActionView          Action = "view"
	ActionNoop          Action = "noop"
	ActionUnknown       Action = "unknown"
)

// parseAction map chuỗi action về enum. Chuỗi lạ → ActionUnknown (không lỗi,
// router sẽ acknowledge "unsupported action").
func parseAction(s string) Action {
	switch s {
	case "match":
		return ActionMatch
	case "gallery":
		return ActionGallery
	case "favorite":
		return ActionFavorite
	case "info":
		return ActionInfo
	case "comments":
		return ActionComments
	case "posting":
		return ActionPosting
	case "menu":
		return ActionMenu
	case "media":
		return ActionMedia
	case "monetize":
		return ActionMonetize
	case "profile_detail":
		return ActionProfileDetail
	case "profile":
		return ActionProfile
	case "back":
		return ActionBack
	case "view":
		return ActionView
	case "noop":
		return ActionNoop
	default:
		return ActionUnknown
	}
}

// allowedTargets giới hạn target hợp lệ cho từng action.
// Action không có entry = nhận mọi target.
var allowedTargets = map[Action]map[string]bool{
	ActionMedia:    {"prev": true, "next": true},
	ActionBack:     {"main": true},
	ActionMenu:     {"main": true},
	ActionFavorite: {"post": true, "remove": true},
	ActionMatch:    {"post": true},
	ActionGallery:  {"post": true},
	ActionInfo:     {"post": true},
	ActionComments: {"post": true, "write": true, "list": true},
	ActionPosting:  {"create": true, "draft": true, "publish": true},
	ActionMonetize: {"draft": true},
}

// Callback là kết quả parse một chuỗi callback data
type Callback struct {
	Action     Action   // Action đã decode
	Target     string   // Target (post, prev, next, main, ...)
	Identifier string   // Document id do store cấp (không bao giờ là timestamp)
	Extra      []string // Các segment phụ (ví dụ index media hiện tại)
}

// Parse tách callback data thành Callback.
// Dưới 3 segment → ErrInvalidCallback, trừ hai dạng rút gọn được
// whitelist: "back:main" và "noop".
func Parse(data string) (Callback, error) {
	// Dạng rút gọn được whitelist
	switch data {
	case "noop":
		return Callback{Action: ActionNoop}, nil
	case "back:main":
		return Callback{Action: ActionBack, Target: "main"}, nil
	}

	parts := strings.Split(data, Separator)
	if len(parts) < 3 {
		return Callback{}, common.NewError(
			common.ErrCodeCallbackParse,
			fmt.Sprintf("Callback data cần tối thiểu 3 segment, nhận được %d", len(parts)),
			common.StatusBadRequest,
			data,
		)
	}

	for _, p := range parts {
		if p == "" {
			return Callback{}, common.ErrInvalidCallback
		}
	}

	cb := Callback{
		Action:     parseAction(parts[0]),
		Target:     parts[1],
		Identifier: parts[2],
	}
	if len(parts) > 3 {
		cb.Extra = parts[3:]
	}

	// Action unknown vẫn parse được - router chịu trách nhiệm acknowledge.
	// Với action đã biết, target phải nằm trong danh sách cho phép.
	if cb.Action != ActionUnknown {
		if targets, ok := allowedTargets[cb.Action]; ok && !targets[cb.Target] {
			return Callback{}, common.NewError(
				common.ErrCodeCallbackParse,
				fmt.Sprintf("Target %q không hợp lệ cho action %q", cb.Target, parts[0]),
				common.StatusBadRequest,
				data,
			)
		}
	}

	return cb, nil
}

// String encode ngược Callback về wire format
func (c Callback) String() string {
	if c.Action == ActionNoop && c.Target == "" {
		return "noop"
	}
	parts := []string{string(c.Action), c.Target}
	if c.Identifier != "" {
		parts = append(parts, c.Identifier)
	}
	parts = append(parts, c.Extra...)
	return strings.Join(parts, Separator)
}

// MediaIndex đọc segment extra đầu tiên như index media hiện tại.
// Dùng cho media:prev|next:<postID>:<index>.
func (c Callback) MediaIndex() (int, error) {
	if len(c.Extra) == 0 {
		return 0, common.ErrInvalidCallback
	}
	idx, err := strconv.Atoi(c.Extra[0])
	if err != nil {
		return 0, common.ErrInvalidCallback
	}
	return idx, nil
}

// build ghép các segment và kiểm tra giới hạn 64 byte ngay tại đây.
// Vượt giới hạn là lỗi lập trình (id quá dài) nên trả về hard error,
// không bao giờ để chuỗi quá dài lọt tới lúc gửi.
func build(segments ...string) (string, error) {
	data := strings.Join(segments, Separator)
	if len(data) > MaxDataLength {
		return "", common.NewError(
			common.ErrCodeCallbackLength,
			fmt.Sprintf("Callback data dài %d byte, vượt giới hạn %d", len(data), MaxDataLength),
			common.StatusBadRequest,
			data,
		)
	}
	return data, nil
}

// ====================================
// CÁC BUILDER THEO TỪNG ACTION
// ====================================

// MatchPost tạo callback match một bài đăng
func MatchPost(postID string) (string, error) {
	return build("match", "post", postID)
}

// FavoritePost tạo callback favorite một bài đăng
func FavoritePost(postID string) (string, error) {
	return build("favorite", "post", postID)
}

// FavoriteRemove tạo callback bỏ favorite một bài đăng
func FavoriteRemove(postID string) (string, error) {
	return build("favorite", "remove", postID)
}

// CommentsPost tạo callback xem comments của bài đăng
func CommentsPost(postID string) (string, error) {
	return build("comments", "post", postID)
}

// CommentsWrite tạo callback vào trạng thái viết comment
func CommentsWrite(postID string) (string, error) {
	return build("comments", "write", postID)
}

// CommentsList tạo callback xem trang comment tiếp theo
func CommentsList(postID string, page int) (string, error) {
	return build("comments", "list", postID, strconv.Itoa(page))
}

// GalleryPost tạo callback xem gallery của tác giả bài đăng
func GalleryPost(postID string) (string, error) {
	return build("gallery", "post", postID)
}

// InfoPost tạo callback xem profile tác giả bài đăng
func InfoPost(postID string) (string, error) {
	return build("info", "post", postID)
}

// MediaPrev tạo callback lùi về media trước đó
func MediaPrev(postID string, currentIndex int) (string, error) {
	return build("media", "prev", postID, strconv.Itoa(currentIndex))
}

// MediaNext tạo callback tiến tới media kế tiếp
func MediaNext(postID string, currentIndex int) (string, error) {
	return build("media", "next", postID, strconv.Itoa(currentIndex))
}

// PostingCreate tạo callback bắt đầu tạo bài đăng mới
func PostingCreate(userID string) (string, error) {
	return build("posting", "create", userID)
}

// PostingDraft tạo callback mở lại draft đang soạn
func PostingDraft(draftID string) (string, error) {
	return build("posting", "draft", draftID)
}

// PostingPublish tạo callback đăng draft thành bài viết
func PostingPublish(draftID string) (string, error) {
	return build("posting", "publish", draftID)
}

// MonetizeDraft tạo callback bật monetization cho draft
func MonetizeDraft(draftID string) (string, error) {
	return build("monetize", "draft", draftID)
}

// MenuMain tạo callback về menu chính
func MenuMain(userID string) (string, error) {
	return build("menu", "main", userID)
}

// BackMain trả về dạng rút gọn quay về menu chính
func BackMain() string {
	return "back:main"
}

// Noop trả về callback không làm gì (nút hiển thị thuần túy)
func Noop() string {
	return "noop"
}
