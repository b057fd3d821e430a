// Package bothdl xử lý các tương tác của thành viên qua inline keyboard
// và webhook của bot. Mọi handler trả về text acknowledgment; router chịu
// trách nhiệm answer callback query.
package bothdl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/antispam"
	draftmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/models"
	draftsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/service"
	matchsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/match/service"
	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	postsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/service"
	usermodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/models"
	usersvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/service"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/callback"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/idempotency"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/telegram"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/ui"
)

// InteractionHandler gom các dependency cho mọi tương tác của bot
type InteractionHandler struct {
	users     *usersvc.UserService
	favorites *usersvc.FavoriteService
	posts     *postsvc.PostService
	comments  *postsvc.CommentService
	matches   *matchsvc.MatchService
	drafts    *draftsvc.DraftService
	publisher *postsvc.Publisher
	limiter   *antispam.Limiter
	idem      *idempotency.Cache
	transport telegram.Transport

	// renderMode là chế độ render cấu hình cho bài mới khi draft không chọn
	renderMode string
}

// NewInteractionHandler tạo mới InteractionHandler
func NewInteractionHandler(
	users *usersvc.UserService,
	favorites *usersvc.FavoriteService,
	posts *postsvc.PostService,
	comments *postsvc.CommentService,
	matches *matchsvc.MatchService,
	drafts *draftsvc.DraftService,
	publisher *postsvc.Publisher,
	limiter *antispam.Limiter,
	idem *idempotency.Cache,
	transport telegram.Transport,
	renderMode string,
) *InteractionHandler {
	return &InteractionHandler{
		users:      users,
		favorites:  favorites,
		posts:      posts,
		comments:   comments,
		matches:    matches,
		drafts:     drafts,
		publisher:  publisher,
		limiter:    limiter,
		idem:       idem,
		transport:  transport,
		renderMode: renderMode,
	}
}

// RegisterRoutes đăng ký toàn bộ handler vào callback router
func (h *InteractionHandler) RegisterRoutes(r *callback.Router) {
	r.Register(callback.ActionMatch, h.HandleMatch)
	r.Register(callback.ActionFavorite, h.HandleFavorite)
	r.Register(callback.ActionComments, h.HandleComments)
	r.Register(callback.ActionGallery, h.HandleGallery)
	r.Register(callback.ActionInfo, h.HandleInfo)
	r.Register(callback.ActionPosting, h.HandlePosting)
	r.Register(callback.ActionMonetize, h.HandleMonetize)
	r.Register(callback.ActionMenu, h.HandleMenu)
	r.Register(callback.ActionBack, h.HandleMenu)
	r.Register(callback.ActionMedia, h.HandleMediaNav)
}

// postFromIdentifier parse identifier thành ObjectID và tải post
func (h *InteractionHandler) postFromIdentifier(ctx context.Context, identifier string) (postmodels.Post, error) {
	id, err := primitive.ObjectIDFromHex(identifier)
	if err != nil {
		return postmodels.Post{}, common.ErrInvalidCallback
	}
	return h.posts.FindOneById(ctx, id)
}

// HandleMatch xử lý match:post:<id>. Match với chính mình bị cấm; lượt match
// được chống trùng bằng idempotency key theo (user, tác giả, post).
func (h *InteractionHandler) HandleMatch(ctx context.Context, q callback.Query) (string, error) {
	post, err := h.postFromIdentifier(ctx, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	if post.AuthorID == q.UserID {
		return "", common.ErrForbidden
	}

	scope := fmt.Sprintf("author_%d", post.AuthorID)
	if ok, retry := h.limiter.CheckAndConsume(q.UserID, antispam.ActionMatch, scope); !ok {
		return "", common.RateLimited(retry)
	}

	key := fmt.Sprintf("match:%d:%d:post_%s", q.UserID, post.AuthorID, post.ID.Hex())
	executed, _, err := h.idem.RunOnce(ctx, key, 0, func(ctx context.Context) (interface{}, error) {
		match, err := h.matches.Create(ctx, q.UserID, post.AuthorID, post.ID)
		if err != nil {
			return nil, err
		}
		if _, err := h.posts.IncrementStat(ctx, post.ID, postsvc.StatMatches, 1); err != nil {
			return nil, err
		}
		h.notifyMatch(ctx, q.UserID, post)
		h.publisher.RefreshKeyboards(ctx, post.ID)
		return match, nil
	})
	if err != nil {
		return "", err
	}
	if !executed {
		return "💘 Bạn đã match với tác giả này rồi", nil
	}
	return "💘 Match thành công! Cả hai đã được thông báo", nil
}

// notifyMatch gửi DM cho cả hai phía sau khi match thành công.
// Lỗi gửi chỉ được log - match đã được ghi nhận.
func (h *InteractionHandler) notifyMatch(ctx context.Context, userID int64, post postmodels.Post) {
	log := logger.GetAppLogger()

	if _, err := h.transport.SendText(ctx, userID,
		"💘 Bạn vừa match với tác giả bài viết. Hãy chờ phản hồi nhé!", nil); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"userId": userID,
		}).Warn("📱 [TELEGRAM] Không gửi được thông báo match cho người bấm")
	}
	if _, err := h.transport.SendText(ctx, post.AuthorID,
		"💘 Có người vừa match với bài viết của bạn!", nil); err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"authorId": post.AuthorID,
		}).Warn("📱 [TELEGRAM] Không gửi được thông báo match cho tác giả")
	}
}

// HandleFavorite xử lý favorite:post:<id> (lưu) và favorite:remove:<id> (bỏ lưu)
func (h *InteractionHandler) HandleFavorite(ctx context.Context, q callback.Query) (string, error) {
	post, err := h.postFromIdentifier(ctx, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	if q.Callback.Target == "post" && post.AuthorID == q.UserID {
		return "", common.ErrForbidden
	}

	if ok, retry := h.limiter.CheckAndConsume(q.UserID, antispam.ActionFavorite, ""); !ok {
		return "", common.RateLimited(retry)
	}

	if q.Callback.Target == "remove" {
		// Chỉ xóa bản ghi favorite; stats.favorites không bao giờ giảm
		if err := h.favorites.Remove(ctx, q.UserID, post.ID); err != nil {
			return "", err
		}
		return "Đã bỏ lưu bài viết", nil
	}

	key := fmt.Sprintf("favorite:%d:post_%s", q.UserID, post.ID.Hex())
	executed, _, err := h.idem.RunOnce(ctx, key, 0, func(ctx context.Context) (interface{}, error) {
		if err := h.favorites.Add(ctx, q.UserID, post.ID); err != nil {
			return nil, err
		}
		if _, err := h.posts.IncrementStat(ctx, post.ID, postsvc.StatFavorites, 1); err != nil {
			return nil, err
		}
		h.publisher.RefreshKeyboards(ctx, post.ID)
		return nil, nil
	})
	if err != nil {
		return "", err
	}
	if !executed {
		return "❤️ Bài viết đã có trong danh sách lưu", nil
	}
	return "❤️ Đã lưu bài viết", nil
}

// HandleComments xử lý comments:post / comments:write / comments:list.
// post và write chuyển user sang trạng thái viết bình luận qua DM;
// list gửi trang bình luận qua DM.
func (h *InteractionHandler) HandleComments(ctx context.Context, q callback.Query) (string, error) {
	post, err := h.postFromIdentifier(ctx, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	if q.Callback.Target == "list" {
		page := int64(1)
		if idx, err := q.Callback.MediaIndex(); err == nil && idx > 0 {
			page = int64(idx)
		}
		return h.sendCommentPage(ctx, q.UserID, post, page)
	}

	if err := h.users.SetBotState(ctx, q.UserID, usermodels.BotStateCommentWriting, post.ID); err != nil {
		return "", err
	}
	if _, err := h.transport.SendText(ctx, q.UserID,
		"💬 Gửi nội dung bình luận của bạn (1-600 ký tự) trong tin nhắn tiếp theo", nil); err != nil {
		return "", err
	}
	return "💬 Hãy kiểm tra tin nhắn riêng để viết bình luận", nil
}

// sendCommentPage gửi một trang bình luận (mới nhất trước) qua DM
func (h *InteractionHandler) sendCommentPage(ctx context.Context, userID int64, post postmodels.Post, page int64) (string, error) {
	result, err := h.comments.ListByPost(ctx, post.ID, page, 5)
	if err != nil {
		return "", err
	}
	if len(result.Items) == 0 {
		return "Chưa có bình luận nào", nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("💬 Bình luận (trang %d/%d)\n\n", result.Page, result.TotalPage))
	for _, c := range result.Items {
		name := c.Codename
		if name == "" {
			name = "Ẩn danh"
		}
		b.WriteString(fmt.Sprintf("• <b>%s</b>: %s\n", name, c.Text))
	}

	var kb telegram.Keyboard
	if result.Page < result.TotalPage {
		if data, err := callback.CommentsList(post.ID.Hex(), int(result.Page+1)); err == nil {
			kb = telegram.Keyboard{{{Text: "Trang sau ➡️", CallbackData: data}}}
		}
	}

	if _, err := h.transport.SendText(ctx, userID, b.String(), kb); err != nil {
		return "", err
	}
	return "💬 Đã gửi bình luận qua tin nhắn riêng", nil
}

// HandleGallery xử lý gallery:post:<id>: gửi danh sách bài của tác giả qua DM
func (h *InteractionHandler) HandleGallery(ctx context.Context, q callback.Query) (string, error) {
	post, err := h.postFromIdentifier(ctx, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	posts, err := h.posts.FindByAuthor(ctx, post.AuthorID, 10)
	if err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return "Tác giả chưa có bài viết nào khác", nil
	}

	var b strings.Builder
	b.WriteString("🖼 Các bài viết của tác giả:\n\n")
	for i, p := range posts {
		title := p.Title
		if title == "" {
			title = "(không tiêu đề)"
		}
		b.WriteString(fmt.Sprintf("%d. %s — 💬 %d | ❤️ %d\n", i+1, title, p.Stats.Comments, p.Stats.Favorites))
	}

	if _, err := h.transport.SendText(ctx, q.UserID, b.String(), nil); err != nil {
		return "", err
	}
	return "🖼 Đã gửi gallery qua tin nhắn riêng", nil
}

// HandleInfo xử lý info:post:<id>: gửi thẻ thông tin tác giả qua DM
func (h *InteractionHandler) HandleInfo(ctx context.Context, q callback.Query) (string, error) {
	post, err := h.postFromIdentifier(ctx, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	author, err := h.users.FindByTelegramID(ctx, post.AuthorID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("ℹ️ Thông tin tác giả\n\n")
	if author.Codename != "" {
		b.WriteString(fmt.Sprintf("Biệt danh: <b>%s</b>\n", author.Codename))
	}
	if author.Category != "" {
		b.WriteString(fmt.Sprintf("Phân loại: %s\n", author.Category))
	}
	if author.State != "" {
		b.WriteString(fmt.Sprintf("Tình trạng: %s\n", author.State))
	}

	if _, err := h.transport.SendText(ctx, q.UserID, b.String(), nil); err != nil {
		return "", err
	}
	return "ℹ️ Đã gửi thông tin tác giả qua tin nhắn riêng", nil
}

// HandlePosting xử lý posting:create (tạo draft mới), posting:draft
// (danh sách draft còn hạn) và posting:publish (promote draft thành Post)
func (h *InteractionHandler) HandlePosting(ctx context.Context, q callback.Query) (string, error) {
	if _, err := h.users.EnsureUser(ctx, q.UserID); err != nil {
		return "", err
	}

	if q.Callback.Target == "publish" {
		return h.publishDraft(ctx, q)
	}

	if q.Callback.Target == "create" {
		draft, err := h.drafts.CreateOrUpdate(ctx, q.UserID, draftmodels.Draft{})
		if err != nil {
			return "", err
		}

		row := []telegram.Button{}
		if data, err := callback.MonetizeDraft(draft.DraftID); err == nil {
			row = append(row, telegram.Button{Text: "💎 Bật trả phí", CallbackData: data})
		}
		if data, err := callback.PostingPublish(draft.DraftID); err == nil {
			row = append(row, telegram.Button{Text: "🚀 Đăng bài", CallbackData: data})
		}
		var kb telegram.Keyboard
		if len(row) > 0 {
			kb = telegram.Keyboard{row}
		}
		if _, err := h.transport.SendText(ctx, q.UserID,
			"📝 Bản nháp mới đã được tạo. Gửi tiêu đề, nội dung và media để hoàn thiện bài viết. Bản nháp tự hết hạn sau 2 giờ.",
			kb); err != nil {
			return "", err
		}
		return "📝 Đã tạo bản nháp mới, kiểm tra tin nhắn riêng", nil
	}

	// posting:draft - danh sách draft còn hạn
	drafts, err := h.drafts.GetUserDrafts(ctx, q.UserID)
	if err != nil {
		return "", err
	}
	if len(drafts) == 0 {
		return "Bạn chưa có bản nháp nào", nil
	}

	var b strings.Builder
	b.WriteString("📄 Bản nháp của bạn:\n\n")
	for i, d := range drafts {
		title := d.Title
		if title == "" {
			title = "(chưa có tiêu đề)"
		}
		remaining := time.Until(time.UnixMilli(d.ExpiresAt)).Round(time.Minute)
		b.WriteString(fmt.Sprintf("%d. %s — hết hạn sau %s\n", i+1, title, remaining))
	}

	if _, err := h.transport.SendText(ctx, q.UserID, b.String(), nil); err != nil {
		return "", err
	}
	return "📄 Đã gửi danh sách bản nháp qua tin nhắn riêng", nil
}

// publishDraft promote draft thành Post bất biến rồi đăng lên cả hai kênh:
// draft được validate, Post được tạo với render mode cấu hình khi draft
// không chọn, draft bị xóa, cuối cùng publisher đăng bài. Đăng kênh thất
// bại toàn phần vẫn giữ Post - admin đăng lại được qua API.
func (h *InteractionHandler) publishDraft(ctx context.Context, q callback.Query) (string, error) {
	if ok, retry := h.limiter.CheckAndConsume(q.UserID, antispam.ActionPublish, ""); !ok {
		return "", common.RateLimited(retry)
	}

	draft, err := h.drafts.Get(ctx, q.UserID, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	post, err := h.posts.CreateFromDraft(ctx, draft, h.renderMode)
	if err != nil {
		return "", err
	}

	// Draft đã thành Post; lỗi xóa chỉ log, worker TTL sẽ dọn nốt
	if err := h.drafts.Delete(ctx, q.UserID, draft.DraftID); err != nil {
		logger.GetAppLogger().WithError(err).WithFields(map[string]interface{}{
			"draftId": draft.DraftID,
		}).Warn("🧹 [DRAFT_CLEANUP] Không xóa được draft sau khi đăng")
	}

	result, err := h.publisher.Publish(ctx, post.ID, postsvc.TargetBoth)
	if err != nil {
		return "", err
	}
	if len(result.Errors) > 0 {
		return "🚀 Bài viết đã đăng, một kênh đang lỗi và cần đăng lại", nil
	}
	return "🚀 Bài viết của bạn đã được đăng lên kênh", nil
}

// HandleMonetize xử lý monetize:draft:<draftID>: bật cờ trả phí trên draft
func (h *InteractionHandler) HandleMonetize(ctx context.Context, q callback.Query) (string, error) {
	draft, err := h.drafts.Get(ctx, q.UserID, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	draft.Monetized = true
	if _, err := h.drafts.CreateOrUpdate(ctx, q.UserID, draft); err != nil {
		return "", err
	}
	return "💎 Bài viết sẽ được đăng ở chế độ trả phí", nil
}

// HandleMenu xử lý menu:main và back:main: gửi menu chính qua DM
func (h *InteractionHandler) HandleMenu(ctx context.Context, q callback.Query) (string, error) {
	user, err := h.users.EnsureUser(ctx, q.UserID)
	if err != nil {
		return "", err
	}

	if _, err := h.transport.SendText(ctx, q.UserID,
		"📋 Menu chính — chọn một thao tác:",
		ui.BuildMainMenuKeyboard(user.ID.Hex())); err != nil {
		return "", err
	}
	return "", nil
}
