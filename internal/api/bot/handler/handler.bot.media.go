package bothdl

import (
	"context"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/antispam"
	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/callback"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/telegram"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/ui"
)

// HandleMediaNav xử lý media:prev|next:<postID>:<index>.
// Index được clamp trong [0, tổng-1], không wraparound: bấm ở biên chỉ
// acknowledge, không edit. Index mới được lưu trước khi acknowledge.
func (h *InteractionHandler) HandleMediaNav(ctx context.Context, q callback.Query) (string, error) {
	if ok, retry := h.limiter.CheckAndConsume(q.UserID, antispam.ActionMediaNav, ""); !ok {
		return "", common.RateLimited(retry)
	}

	post, err := h.postFromIdentifier(ctx, q.Callback.Identifier)
	if err != nil {
		return "", err
	}

	if post.RenderMode == postmodels.RenderAlbumPanel {
		return "Điều hướng không khả dụng cho bài dạng album", nil
	}
	if len(post.Media) <= 1 {
		return "Bài viết chỉ có một media", nil
	}

	current, err := q.Callback.MediaIndex()
	if err != nil {
		return "", common.ErrInvalidCallback
	}

	next := current
	if q.Callback.Target == "next" {
		next++
	} else {
		next--
	}

	// Clamp trong [0, tổng-1]: ở biên thì chỉ acknowledge
	if next < 0 {
		return "Đã ở media đầu tiên", nil
	}
	if next >= len(post.Media) {
		return "Đã ở media cuối cùng", nil
	}

	// Xác định kênh theo chat chứa message được bấm
	channel, ref, found := channelForChat(post, q.ChatID)
	if !found {
		return "", common.ErrNotFound
	}

	author, err := h.users.FindByTelegramID(ctx, post.AuthorID)
	if err != nil {
		return "", err
	}

	blurred := post.Monetized && channel == postmodels.ChannelRestricted
	view := ui.PostView{
		PostID:         post.ID.Hex(),
		AuthorCodename: author.Codename,
		AuthorCategory: author.Category,
		AuthorState:    author.State,
		Title:          post.Title,
		Text:           post.Text,
		Monetized:      post.Monetized,
		Price:          post.Price,
		Blurred:        blurred,
		RenderMode:     post.RenderMode,
		MediaIndex:     next,
		MediaTotal:     len(post.Media),
		CommentCount:   post.Stats.Comments,
		FavoriteCount:  post.Stats.Favorites,
	}

	media := post.Media[next]
	url := media.URL
	if blurred {
		url = ui.BlurURL(url)
	}

	if err := h.transport.EditMessageMedia(ctx, ref.ChatID, q.MessageID, telegram.MediaItem{
		Type:    media.Type,
		URL:     url,
		Caption: ui.BuildCaption(view),
	}, ui.BuildKeyboard(view)); err != nil {
		return "", err
	}

	// Lưu index mới trước khi acknowledge
	if err := h.posts.SetMediaIndex(ctx, post.ID, channel, next); err != nil {
		return "", err
	}
	return "", nil
}

// channelForChat tìm kênh có mirror nằm trong chat đã phát sinh callback
func channelForChat(post postmodels.Post, chatID int64) (string, postmodels.ChannelRef, bool) {
	for channel, ref := range post.ChannelRefs {
		if ref.ChatID == chatID {
			return channel, ref, true
		}
	}
	return "", postmodels.ChannelRef{}, false
}
