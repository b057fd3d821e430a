package postsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	usermodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/telegram"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/ui"
)

// Target đăng bài của admin API
const (
	TargetBoth       = "both"
	TargetRestricted = "restricted"
	TargetFull       = "full"
)

// PublishResult báo cáo kết quả đăng bài theo từng kênh.
// Aggregate thành công khi ít nhất một kênh thành công.
type PublishResult struct {
	Channels map[string]bool   `json:"channels"` // Kênh -> đăng thành công
	Errors   map[string]string `json:"errors"`   // Kênh -> lỗi (nếu có)
}

// Succeeded báo có ít nhất một kênh đăng thành công
func (r *PublishResult) Succeeded() bool {
	for _, ok := range r.Channels {
		if ok {
			return true
		}
	}
	return false
}

// postStore là phần của PostService mà Publisher cần
type postStore interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (postmodels.Post, error)
	MarkMirrored(ctx context.Context, postID primitive.ObjectID, channel string, ref postmodels.ChannelRef) error
}

// authorStore tra cứu tác giả để render dòng tag trong caption
type authorStore interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (usermodels.User, error)
}

// Publisher đăng post lên các kênh và theo dõi mirror của chúng
type Publisher struct {
	posts     postStore
	users     authorStore
	transport telegram.Transport
	chatIDs   map[string]int64
}

// NewPublisher tạo mới Publisher với chat ID của hai kênh
func NewPublisher(posts postStore, users authorStore, transport telegram.Transport, restrictedChatID, fullChatID int64) *Publisher {
	return &Publisher{
		posts:     posts,
		users:     users,
		transport: transport,
		chatIDs: map[string]int64{
			postmodels.ChannelRestricted: restrictedChatID,
			postmodels.ChannelFull:       fullChatID,
		},
	}
}

// channelsFor trả về các kênh sẽ đăng theo target và chính sách monetized:
// bài monetized luôn lên kênh full; kênh restricted chỉ khi được chỉ định
// (và sẽ là bản blur). Bài thường lên theo target, không blur.
func channelsFor(post postmodels.Post, target string) []string {
	wanted := map[string]bool{}
	switch target {
	case TargetRestricted:
		wanted[postmodels.ChannelRestricted] = true
	case TargetFull:
		wanted[postmodels.ChannelFull] = true
	default: // both hoặc rỗng
		wanted[postmodels.ChannelRestricted] = true
		wanted[postmodels.ChannelFull] = true
	}
	if post.Monetized {
		wanted[postmodels.ChannelFull] = true
	}

	channels := []string{}
	for _, ch := range postmodels.AllChannels() {
		if wanted[ch] {
			channels = append(channels, ch)
		}
	}
	return channels
}

// Publish đăng post lên các kênh theo target. Mỗi kênh độc lập: một kênh
// lỗi không chặn kênh còn lại; kết quả từng kênh nằm trong PublishResult.
// Trả lỗi chỉ khi không kênh nào thành công.
func (p *Publisher) Publish(ctx context.Context, postID primitive.ObjectID, target string) (*PublishResult, error) {
	log := logger.GetAppLogger()

	post, err := p.posts.FindOneById(ctx, postID)
	if err != nil {
		return nil, err
	}

	author, err := p.users.FindByTelegramID(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	result := &PublishResult{
		Channels: map[string]bool{},
		Errors:   map[string]string{},
	}

	for _, channel := range channelsFor(post, target) {
		// Đăng không re-entrant: kênh đã có mirror được báo thành công
		// và bỏ qua, channelRefs của nó không bao giờ bị ghi đè
		if post.SentTo(channel) {
			result.Channels[channel] = true
			log.WithFields(map[string]interface{}{
				"postId":  post.ID.Hex(),
				"channel": channel,
			}).Info("📤 [PUBLISH] Kênh đã có mirror, bỏ qua")
			continue
		}

		ref, err := p.publishToChannel(ctx, post, author.Codename, author.Category, author.State, channel)
		if err != nil {
			result.Channels[channel] = false
			result.Errors[channel] = err.Error()
			log.WithError(err).WithFields(map[string]interface{}{
				"postId":  post.ID.Hex(),
				"channel": channel,
			}).Error("📤 [PUBLISH] Đăng bài lên kênh thất bại")
			continue
		}

		if err := p.posts.MarkMirrored(ctx, post.ID, channel, ref); err != nil {
			// Message đã lên kênh nhưng không lưu được mirror - báo lỗi kênh này
			result.Channels[channel] = false
			result.Errors[channel] = err.Error()
			log.WithError(err).WithFields(map[string]interface{}{
				"postId":  post.ID.Hex(),
				"channel": channel,
			}).Error("📤 [PUBLISH] Không lưu được mirror ref")
			continue
		}

		result.Channels[channel] = true
		log.WithFields(map[string]interface{}{
			"postId":    post.ID.Hex(),
			"channel":   channel,
			"messageId": ref.MessageID,
		}).Info("📤 [PUBLISH] Đăng bài lên kênh thành công")
	}

	if !result.Succeeded() {
		return result, common.NewError(
			common.ErrCodeTransport,
			"Đăng bài thất bại trên tất cả các kênh",
			common.StatusServiceUnavailable,
			result.Errors,
		)
	}
	return result, nil
}

// postView dựng dữ liệu render cho một kênh
func (p *Publisher) postView(post postmodels.Post, codename, category, state, channel string, mediaIndex int) ui.PostView {
	return ui.PostView{
		PostID:         post.ID.Hex(),
		AuthorCodename: codename,
		AuthorCategory: category,
		AuthorState:    state,
		Title:          post.Title,
		Text:           post.Text,
		Monetized:      post.Monetized,
		Price:          post.Price,
		Blurred:        post.Monetized && channel == postmodels.ChannelRestricted,
		RenderMode:     post.RenderMode,
		MediaIndex:     mediaIndex,
		MediaTotal:     len(post.Media),
		CommentCount:   post.Stats.Comments,
		FavoriteCount:  post.Stats.Favorites,
	}
}

// mediaURL trả về URL media cho kênh, blur khi cần
func mediaURL(url string, blurred bool) string {
	if blurred {
		return ui.BlurURL(url)
	}
	return url
}

// publishToChannel đăng post lên một kênh theo render mode của nó
func (p *Publisher) publishToChannel(ctx context.Context, post postmodels.Post, codename, category, state, channel string) (postmodels.ChannelRef, error) {
	var zero postmodels.ChannelRef

	chatID, ok := p.chatIDs[channel]
	if !ok || chatID == 0 {
		return zero, common.NewError(
			common.ErrCodeTransport,
			fmt.Sprintf("Kênh %s chưa được cấu hình", channel),
			common.StatusServiceUnavailable,
			nil,
		)
	}

	view := p.postView(post, codename, category, state, channel, 0)
	caption := ui.BuildCaption(view)

	// Post không có media: một text message mang keyboard
	if len(post.Media) == 0 {
		msgID, err := p.transport.SendText(ctx, chatID, caption, ui.BuildKeyboard(view))
		if err != nil {
			return zero, err
		}
		return postmodels.ChannelRef{ChatID: chatID, MessageID: msgID}, nil
	}

	if post.RenderMode == postmodels.RenderAlbumPanel {
		// Album (tối đa 10 media) + panel message riêng mang keyboard
		items := make([]telegram.MediaItem, 0, len(post.Media))
		for i, m := range post.Media {
			item := telegram.MediaItem{
				Type: m.Type,
				URL:  mediaURL(m.URL, view.Blurred),
			}
			if i == 0 {
				item.Caption = caption
			}
			items = append(items, item)
		}

		albumIDs, err := p.transport.SendMediaBatch(ctx, chatID, items)
		if err != nil {
			return zero, err
		}

		panelID, err := p.transport.SendText(ctx, chatID, "👇 Tương tác với bài viết", ui.BuildPanelKeyboard(view))
		if err != nil {
			return zero, err
		}

		ref := postmodels.ChannelRef{
			ChatID:          chatID,
			PanelMessageID:  panelID,
			AlbumMessageIDs: albumIDs,
		}
		if len(albumIDs) > 0 {
			ref.MessageID = albumIDs[0]
		}
		return ref, nil
	}

	// Carousel: một message với media đầu tiên + keyboard kết hợp
	first := post.Media[0]
	msgID, err := p.transport.SendMedia(ctx, chatID, telegram.MediaItem{
		Type:    first.Type,
		URL:     mediaURL(first.URL, view.Blurred),
		Caption: caption,
	}, ui.BuildKeyboard(view))
	if err != nil {
		return zero, err
	}
	return postmodels.ChannelRef{ChatID: chatID, MessageID: msgID, CurrentMediaIndex: 0}, nil
}

// RefreshKeyboards cập nhật lại keyboard trên mọi mirror của post sau khi
// bộ đếm thay đổi. Lỗi của một mirror chỉ được log, không bao giờ làm hỏng
// tương tác đã kích hoạt việc refresh.
func (p *Publisher) RefreshKeyboards(ctx context.Context, postID primitive.ObjectID) {
	log := logger.GetAppLogger()

	post, err := p.posts.FindOneById(ctx, postID)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"postId": postID.Hex(),
		}).Warn("📤 [PUBLISH] Không tải được post để refresh keyboard")
		return
	}

	author, err := p.users.FindByTelegramID(ctx, post.AuthorID)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"postId": postID.Hex(),
		}).Warn("📤 [PUBLISH] Không tải được tác giả để refresh keyboard")
		return
	}

	for channel, ref := range post.ChannelRefs {
		view := p.postView(post, author.Codename, author.Category, author.State, channel, ref.CurrentMediaIndex)

		// Panel message được ưu tiên khi có (album_panel)
		messageID := ref.MessageID
		keyboard := ui.BuildKeyboard(view)
		if ref.PanelMessageID != 0 {
			messageID = ref.PanelMessageID
			keyboard = ui.BuildPanelKeyboard(view)
		}

		if err := p.transport.EditMessageControls(ctx, ref.ChatID, messageID, keyboard); err != nil {
			log.WithError(err).WithFields(map[string]interface{}{
				"postId":  post.ID.Hex(),
				"channel": channel,
			}).Warn("📤 [PUBLISH] Refresh keyboard trên mirror thất bại")
		}
	}
}
