package callback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// Query gói một lần bấm nút inline với metadata từ transport
type Query struct {
	Callback  Callback // Callback đã parse
	QueryID   string   // ID của callback query (dùng để answer)
	UserID    int64    // Telegram user id của người bấm
	ChatID    int64    // Chat chứa message mang keyboard
	MessageID int64    // Message mang keyboard
}

// HandlerFunc xử lý một action. Trả về text acknowledgment khi thành công;
// lỗi trả về sẽ được router map sang text phù hợp. Router luôn answer,
// handler không tự gọi AnswerCallback.
type HandlerFunc func(ctx context.Context, q Query) (string, error)

// AnswerFunc answer một callback query trên transport
type AnswerFunc func(ctx context.Context, queryID string, text string, showAlert bool) error

// Router dispatch callback query theo Action.
// Handler được đăng ký lúc init; không có handler hoặc action unknown
// → log + acknowledge, không bao giờ lỗi ngược về transport.
type Router struct {
	mu       sync.RWMutex
	handlers map[Action]HandlerFunc
	answer   AnswerFunc
}

// NewRouter tạo router với hàm answer của transport
func NewRouter(answer AnswerFunc) *Router {
	return &Router{
		handlers: make(map[Action]HandlerFunc),
		answer:   answer,
	}
}

// Register đăng ký handler cho một action. Đăng ký lại sẽ ghi đè.
func (r *Router) Register(action Action, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
}

// Dispatch parse data và chạy handler tương ứng.
// Panic trong handler được recover, log kèm callback gây lỗi và
// acknowledge như lỗi hệ thống - không panic nào thoát khỏi router.
func (r *Router) Dispatch(ctx context.Context, data string, queryID string, userID, chatID, messageID int64) {
	log := logger.GetAppLogger()

	defer func() {
		if rec := recover(); rec != nil {
			log.WithFields(map[string]interface{}{
				"panic":    rec,
				"callback": data,
				"userId":   userID,
			}).Error("🔀 [ROUTER] Panic khi xử lý callback")
			r.safeAnswer(ctx, queryID, "Có lỗi xảy ra, vui lòng thử lại", true)
		}
	}()

	cb, err := Parse(data)
	if err != nil {
		log.WithFields(map[string]interface{}{
			"callback": data,
			"userId":   userID,
		}).Warn("🔀 [ROUTER] Callback data không hợp lệ")
		r.safeAnswer(ctx, queryID, "Yêu cầu không hợp lệ", false)
		return
	}

	// Noop: chỉ answer để tắt loading spinner
	if cb.Action == ActionNoop {
		r.safeAnswer(ctx, queryID, "", false)
		return
	}

	r.mu.RLock()
	h, ok := r.handlers[cb.Action]
	r.mu.RUnlock()

	if cb.Action == ActionUnknown || !ok {
		log.WithFields(map[string]interface{}{
			"action":   string(cb.Action),
			"callback": data,
			"userId":   userID,
		}).Warn("🔀 [ROUTER] Action không được hỗ trợ")
		r.safeAnswer(ctx, queryID, "Chức năng không được hỗ trợ", false)
		return
	}

	q := Query{
		Callback:  cb,
		QueryID:   queryID,
		UserID:    userID,
		ChatID:    chatID,
		MessageID: messageID,
	}

	ackText, err := h(ctx, q)
	if err != nil {
		text, alert := errorAckText(err)
		log.WithError(err).WithFields(map[string]interface{}{
			"action":   string(cb.Action),
			"callback": data,
			"userId":   userID,
		}).Warn("🔀 [ROUTER] Handler trả về lỗi")
		r.safeAnswer(ctx, queryID, text, alert)
		return
	}

	r.safeAnswer(ctx, queryID, ackText, false)
}

// safeAnswer answer callback query, lỗi answer chỉ log (query có thể đã hết hạn)
func (r *Router) safeAnswer(ctx context.Context, queryID string, text string, showAlert bool) {
	if r.answer == nil || queryID == "" {
		return
	}
	if err := r.answer(ctx, queryID, text, showAlert); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(map[string]interface{}{
			"queryId": queryID,
		}).Debug("🔀 [ROUTER] Không answer được callback query")
	}
}

// errorAckText map lỗi handler sang text acknowledgment cho user
func errorAckText(err error) (string, bool) {
	if retryAfter, ok := common.IsRateLimited(err); ok {
		return fmt.Sprintf("Thao tác quá nhanh, thử lại sau %.0f giây", retryAfter.Seconds()), false
	}
	switch {
	case errors.Is(err, common.ErrForbidden):
		return "Bạn không thể tương tác với bài đăng của chính mình", true
	case errors.Is(err, common.ErrAlreadyApplied):
		return "Thao tác đã được thực hiện trước đó", false
	case errors.Is(err, common.ErrNotFound):
		return "Bài đăng không còn tồn tại", true
	case errors.Is(err, common.ErrNotOwner):
		return "Bạn không phải chủ sở hữu", true
	case errors.Is(err, common.ErrInvalidCallback):
		return "Yêu cầu không hợp lệ", false
	default:
		return "Có lỗi xảy ra, vui lòng thử lại", true
	}
}
