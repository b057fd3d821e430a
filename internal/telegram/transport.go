// Package telegram cung cấp transport gửi message/media lên Telegram Bot API.
// Transport là interface để service layer không phụ thuộc trực tiếp vào HTTP;
// test dùng Fake thay cho BotAPI thật.
package telegram

import "context"

// Loại media được hỗ trợ
const (
	MediaPhoto = "photo"
	MediaVideo = "video"
)

// Button là một nút trong inline keyboard.
// CallbackData và URL loại trừ nhau - Telegram chỉ nhận một trong hai.
type Button struct {
	Text         string
	CallbackData string
	URL          string
}

// Keyboard là inline keyboard dạng lưới các nút
type Keyboard [][]Button

// MediaItem là một media trong post hoặc album
type MediaItem struct {
	Type    string // photo | video
	URL     string
	Caption string // Chỉ item đầu của album mang caption
}

// Transport là interface gửi nhận với Telegram Bot API
type Transport interface {
	// SendText gửi text message, trả về messageId
	SendText(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error)

	// SendMedia gửi một photo/video kèm caption và keyboard, trả về messageId
	SendMedia(ctx context.Context, chatID int64, item MediaItem, keyboard Keyboard) (int64, error)

	// SendMediaBatch gửi album (sendMediaGroup), trả về danh sách messageId.
	// Album không mang inline keyboard - Telegram không hỗ trợ.
	SendMediaBatch(ctx context.Context, chatID int64, items []MediaItem) ([]int64, error)

	// EditMessageMedia thay media của một message đã gửi (điều hướng carousel)
	EditMessageMedia(ctx context.Context, chatID int64, messageID int64, item MediaItem, keyboard Keyboard) error

	// EditMessageControls thay inline keyboard của một message đã gửi
	EditMessageControls(ctx context.Context, chatID int64, messageID int64, keyboard Keyboard) error

	// AnswerCallback trả lời callback query (toast hoặc alert)
	AnswerCallback(ctx context.Context, queryID string, text string, showAlert bool) error
}

// keyboardPayload chuyển Keyboard sang dạng payload của Telegram.
// Trả về nil nếu keyboard rỗng để caller bỏ qua reply_markup.
func keyboardPayload(keyboard Keyboard) map[string]interface{} {
	if len(keyboard) == 0 {
		return nil
	}
	rows := [][]map[string]interface{}{}
	for _, row := range keyboard {
		buttons := []map[string]interface{}{}
		for _, b := range row {
			button := map[string]interface{}{
				"text": b.Text,
			}
			if b.URL != "" {
				button["url"] = b.URL
			} else {
				button["callback_data"] = b.CallbackData
			}
			buttons = append(buttons, button)
		}
		if len(buttons) > 0 {
			rows = append(rows, buttons)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return map[string]interface{}{
		"inline_keyboard": rows,
	}
}
