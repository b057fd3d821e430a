package bothdl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/antispam"
	botdto "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/bot/dto"
	usermodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/callback"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// Header mang secret token do Telegram gửi kèm mỗi webhook request
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler nhận Telegram Update và đẩy vào callback router
// hoặc luồng xử lý message.
type WebhookHandler struct {
	interactions *InteractionHandler
	router       *callback.Router
	secretToken  string
}

// NewWebhookHandler tạo mới WebhookHandler. secretToken rỗng sẽ bỏ qua
// bước kiểm tra header (môi trường dev).
func NewWebhookHandler(interactions *InteractionHandler, router *callback.Router, secretToken string) *WebhookHandler {
	return &WebhookHandler{
		interactions: interactions,
		router:       router,
		secretToken:  secretToken,
	}
}

// HandleUpdate xử lý POST /webhook/telegram.
// Luôn trả 200 cho update hợp lệ đã nhận - Telegram sẽ retry các mã lỗi,
// và retry một update đã xử lý chỉ tạo thêm duplicate.
func (h *WebhookHandler) HandleUpdate(c fiber.Ctx) error {
	log := logger.GetAppLogger()

	if h.secretToken != "" && c.Get(secretTokenHeader) != h.secretToken {
		log.WithFields(map[string]interface{}{
			"ip": c.IP(),
		}).Warn("📱 [TELEGRAM] Webhook request với secret token sai")
		return c.SendStatus(common.StatusUnauthorized)
	}

	var update botdto.TelegramUpdate
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		log.WithError(err).Warn("📱 [TELEGRAM] Không parse được update payload")
		return c.SendStatus(common.StatusBadRequest)
	}

	ctx := c.Context()

	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		var chatID, messageID int64
		if cq.Message != nil {
			chatID = cq.Message.Chat.ID
			messageID = cq.Message.MessageID
		}
		h.router.Dispatch(ctx, cq.Data, cq.ID, cq.From.ID, chatID, messageID)
		return c.SendStatus(common.StatusOK)
	}

	if update.Message != nil && update.Message.From != nil {
		h.handleMessage(ctx, update.Message)
	}

	return c.SendStatus(common.StatusOK)
}

// handleMessage xử lý message thường: nếu user đang ở trạng thái viết
// bình luận thì message là nội dung bình luận cho post đang mở.
func (h *WebhookHandler) handleMessage(ctx context.Context, msg *botdto.TelegramMessage) {
	log := logger.GetAppLogger()

	user, err := h.interactions.users.FindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			log.WithError(err).WithFields(map[string]interface{}{
				"userId": msg.From.ID,
			}).Error("📱 [TELEGRAM] Không tải được user khi xử lý message")
		}
		return
	}

	if user.BotState != usermodels.BotStateCommentWriting || user.BotStatePostID.IsZero() {
		return
	}

	reply := h.addCommentFromMessage(ctx, user, msg)
	if reply != "" {
		if _, err := h.interactions.transport.SendText(ctx, msg.Chat.ID, reply, nil); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"userId": msg.From.ID,
			}).Warn("📱 [TELEGRAM] Không gửi được phản hồi bình luận")
		}
	}
}

// addCommentFromMessage thêm bình luận từ message DM, trả về text phản hồi
func (h *WebhookHandler) addCommentFromMessage(ctx context.Context, user usermodels.User, msg *botdto.TelegramMessage) string {
	log := logger.GetAppLogger()
	postID := user.BotStatePostID

	scope := fmt.Sprintf("post_%s", postID.Hex())
	if ok, retry := h.interactions.limiter.CheckAndConsume(user.TelegramID, antispam.ActionComment, scope); !ok {
		return fmt.Sprintf("Bạn bình luận quá nhanh, thử lại sau %.0f giây", retry.Seconds())
	}

	_, err := h.interactions.comments.Add(ctx, postID, user.TelegramID, user.Codename, msg.Text)
	if err != nil {
		var customErr *common.Error
		if errors.As(err, &customErr) && customErr.Code == common.ErrCodeValidationInput {
			return customErr.Message
		}
		if errors.Is(err, common.ErrNotFound) {
			// Post đã biến mất, thoát trạng thái viết bình luận
			if clearErr := h.interactions.users.ClearBotState(ctx, user.TelegramID); clearErr != nil {
				log.WithError(clearErr).Warn("📱 [TELEGRAM] Không reset được bot state")
			}
			return "Bài viết không còn tồn tại"
		}
		log.WithError(err).WithFields(map[string]interface{}{
			"userId": user.TelegramID,
			"postId": postID.Hex(),
		}).Error("📱 [TELEGRAM] Thêm bình luận thất bại")
		return "Có lỗi khi lưu bình luận, thử lại sau"
	}

	if err := h.interactions.users.ClearBotState(ctx, user.TelegramID); err != nil {
		log.WithError(err).Warn("📱 [TELEGRAM] Không reset được bot state sau bình luận")
	}

	// Cập nhật bộ đếm trên keyboard của cả hai mirror
	h.interactions.publisher.RefreshKeyboards(ctx, postID)

	return "💬 Bình luận của bạn đã được đăng"
}
