package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// BotAPI là transport thật gọi Telegram Bot API qua HTTP
type BotAPI struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewBotAPI tạo transport với bot token
func NewBotAPI(token string) *BotAPI {
	return &BotAPI{
		token:   token,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResult là phần envelope chung trong response của Bot API
type apiResult struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

// call gọi một method của Bot API, trả về phần result thô
func (t *BotAPI) call(ctx context.Context, method string, payload map[string]interface{}) (json.RawMessage, error) {
	log := logger.GetAppLogger()
	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"method": method,
		}).Error("📱 [TELEGRAM] Lỗi khi gọi Telegram API")
		return nil, common.TransportError("telegram", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Đọc response body để xem lỗi chi tiết
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.WithFields(map[string]interface{}{
			"method":     method,
			"statusCode": resp.StatusCode,
			"response":   string(bodyBytes),
		}).Error("📱 [TELEGRAM] Telegram API trả về lỗi")
		return nil, common.TransportError("telegram",
			fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(bodyBytes)))
	}

	var result apiResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, common.TransportError("telegram", err)
	}
	if !result.OK {
		return nil, common.TransportError("telegram", fmt.Errorf("telegram API returned ok=false"))
	}
	return result.Result, nil
}

// messageID giải mã message_id từ result của sendMessage/sendPhoto/sendVideo
func messageID(raw json.RawMessage) (int64, error) {
	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return 0, common.TransportError("telegram", err)
	}
	return msg.MessageID, nil
}

// SendText gửi text message
func (t *BotAPI) SendText(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error) {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup := keyboardPayload(keyboard); markup != nil {
		payload["reply_markup"] = markup
	}
	raw, err := t.call(ctx, "sendMessage", payload)
	if err != nil {
		return 0, err
	}
	return messageID(raw)
}

// SendMedia gửi một photo/video kèm caption và keyboard
func (t *BotAPI) SendMedia(ctx context.Context, chatID int64, item MediaItem, keyboard Keyboard) (int64, error) {
	method := "sendPhoto"
	mediaField := "photo"
	if item.Type == MediaVideo {
		method = "sendVideo"
		mediaField = "video"
	}
	payload := map[string]interface{}{
		"chat_id":    chatID,
		mediaField:   item.URL,
		"caption":    item.Caption,
		"parse_mode": "HTML",
	}
	if markup := keyboardPayload(keyboard); markup != nil {
		payload["reply_markup"] = markup
	}
	raw, err := t.call(ctx, method, payload)
	if err != nil {
		return 0, err
	}
	return messageID(raw)
}

// SendMediaBatch gửi album qua sendMediaGroup
func (t *BotAPI) SendMediaBatch(ctx context.Context, chatID int64, items []MediaItem) ([]int64, error) {
	media := []map[string]interface{}{}
	for _, item := range items {
		entry := map[string]interface{}{
			"type":  item.Type,
			"media": item.URL,
		}
		if item.Caption != "" {
			entry["caption"] = item.Caption
			entry["parse_mode"] = "HTML"
		}
		media = append(media, entry)
	}

	raw, err := t.call(ctx, "sendMediaGroup", map[string]interface{}{
		"chat_id": chatID,
		"media":   media,
	})
	if err != nil {
		return nil, err
	}

	var msgs []struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, common.TransportError("telegram", err)
	}
	ids := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.MessageID)
	}
	return ids, nil
}

// EditMessageMedia thay media của message đã gửi
func (t *BotAPI) EditMessageMedia(ctx context.Context, chatID int64, messageID int64, item MediaItem, keyboard Keyboard) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"media": map[string]interface{}{
			"type":       item.Type,
			"media":      item.URL,
			"caption":    item.Caption,
			"parse_mode": "HTML",
		},
	}
	if markup := keyboardPayload(keyboard); markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := t.call(ctx, "editMessageMedia", payload)
	return err
}

// EditMessageControls thay inline keyboard của message đã gửi
func (t *BotAPI) EditMessageControls(ctx context.Context, chatID int64, messageID int64, keyboard Keyboard) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	if markup := keyboardPayload(keyboard); markup != nil {
		payload["reply_markup"] = markup
	} else {
		// Keyboard rỗng nghĩa là gỡ keyboard khỏi message
		payload["reply_markup"] = map[string]interface{}{
			"inline_keyboard": [][]map[string]interface{}{},
		}
	}
	_, err := t.call(ctx, "editMessageReplyMarkup", payload)
	return err
}

// AnswerCallback trả lời callback query
func (t *BotAPI) AnswerCallback(ctx context.Context, queryID string, text string, showAlert bool) error {
	payload := map[string]interface{}{
		"callback_query_id": queryID,
	}
	if text != "" {
		payload["text"] = text
		payload["show_alert"] = showAlert
	}
	_, err := t.call(ctx, "answerCallbackQuery", payload)
	return err
}
