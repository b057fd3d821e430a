// Package postsvc - Test chính sách chọn kênh và render khi đăng bài.
package postsvc

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	usermodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/telegram"
)

const (
	testRestrictedChat int64 = -100111
	testFullChat       int64 = -100222
)

func newTestPublisher(fake *telegram.Fake) *Publisher {
	// posts/users không dùng trong publishToChannel nên để nil
	return NewPublisher(nil, nil, fake, testRestrictedChat, testFullChat)
}

func carouselPost(monetized bool, mediaCount int) postmodels.Post {
	media := make([]postmodels.Media, 0, mediaCount)
	for i := 0; i < mediaCount; i++ {
		media = append(media, postmodels.Media{
			Type: telegram.MediaPhoto,
			URL:  "https://res.cloudinary.com/demo/image/upload/v1/p" + strings.Repeat("x", i+1) + ".jpg",
		})
	}
	return postmodels.Post{
		ID:         primitive.NewObjectID(),
		AuthorID:   111,
		Title:      "Bài test",
		Monetized:  monetized,
		Price:      50,
		RenderMode: postmodels.RenderCarousel,
		Media:      media,
	}
}

func TestChannelsFor_DefaultTargetBothChannels(t *testing.T) {
	post := carouselPost(false, 1)
	got := channelsFor(post, "")
	if len(got) != 2 || got[0] != postmodels.ChannelRestricted || got[1] != postmodels.ChannelFull {
		t.Errorf("target rỗng phải ra cả hai kênh theo thứ tự cố định, got %v", got)
	}
}

func TestChannelsFor_SingleTarget(t *testing.T) {
	post := carouselPost(false, 1)
	if got := channelsFor(post, TargetRestricted); len(got) != 1 || got[0] != postmodels.ChannelRestricted {
		t.Errorf("target restricted phải chỉ ra kênh restricted, got %v", got)
	}
	if got := channelsFor(post, TargetFull); len(got) != 1 || got[0] != postmodels.ChannelFull {
		t.Errorf("target full phải chỉ ra kênh full, got %v", got)
	}
}

func TestChannelsFor_MonetizedAlwaysIncludesFull(t *testing.T) {
	post := carouselPost(true, 1)
	got := channelsFor(post, TargetRestricted)
	if len(got) != 2 {
		t.Fatalf("bài monetized target restricted vẫn phải lên kênh full, got %v", got)
	}
	if got[1] != postmodels.ChannelFull {
		t.Errorf("kênh full phải có mặt, got %v", got)
	}
}

func TestPublishToChannel_CarouselSendsFirstMedia(t *testing.T) {
	fake := telegram.NewFake()
	p := newTestPublisher(fake)
	post := carouselPost(false, 3)

	ref, err := p.publishToChannel(context.Background(), post, "anon_fox", "cat", "state", postmodels.ChannelFull)
	if err != nil {
		t.Fatalf("publishToChannel lỗi: %v", err)
	}
	if ref.ChatID != testFullChat {
		t.Errorf("ref.ChatID = %d, muốn %d", ref.ChatID, testFullChat)
	}
	if ref.MessageID == 0 {
		t.Error("ref.MessageID phải được gán từ transport")
	}
	if ref.CurrentMediaIndex != 0 {
		t.Errorf("carousel bắt đầu ở media 0, got %d", ref.CurrentMediaIndex)
	}

	sent := fake.LastSent()
	if sent == nil || sent.Method != "sendMedia" {
		t.Fatalf("carousel phải gửi đúng một sendMedia, got %+v", sent)
	}
	if sent.Item.URL != post.Media[0].URL {
		t.Errorf("phải gửi media đầu tiên, got %s", sent.Item.URL)
	}
	if len(sent.Keyboard) == 0 {
		t.Error("message carousel phải mang keyboard")
	}
}

func TestPublishToChannel_MonetizedRestrictedBlursMedia(t *testing.T) {
	fake := telegram.NewFake()
	p := newTestPublisher(fake)
	post := carouselPost(true, 1)

	if _, err := p.publishToChannel(context.Background(), post, "anon_fox", "cat", "state", postmodels.ChannelRestricted); err != nil {
		t.Fatalf("publishToChannel lỗi: %v", err)
	}

	sent := fake.LastSent()
	if !strings.Contains(sent.Item.URL, "/upload/e_blur:1000,q_10/") {
		t.Errorf("media trên kênh restricted của bài monetized phải bị blur, got %s", sent.Item.URL)
	}
}

func TestPublishToChannel_MonetizedFullKeepsOriginalMedia(t *testing.T) {
	fake := telegram.NewFake()
	p := newTestPublisher(fake)
	post := carouselPost(true, 1)

	if _, err := p.publishToChannel(context.Background(), post, "anon_fox", "cat", "state", postmodels.ChannelFull); err != nil {
		t.Fatalf("publishToChannel lỗi: %v", err)
	}

	sent := fake.LastSent()
	if sent.Item.URL != post.Media[0].URL {
		t.Errorf("kênh full phải nhận media gốc, got %s", sent.Item.URL)
	}
}

func TestPublishToChannel_AlbumPanelSendsAlbumAndPanel(t *testing.T) {
	fake := telegram.NewFake()
	p := newTestPublisher(fake)
	post := carouselPost(false, 4)
	post.RenderMode = postmodels.RenderAlbumPanel

	ref, err := p.publishToChannel(context.Background(), post, "anon_fox", "cat", "state", postmodels.ChannelFull)
	if err != nil {
		t.Fatalf("publishToChannel lỗi: %v", err)
	}

	sent := fake.SentTo(testFullChat)
	if len(sent) != 2 {
		t.Fatalf("album_panel phải gửi 2 request (album + panel), got %d", len(sent))
	}
	if sent[0].Method != "sendMediaGroup" || len(sent[0].Items) != 4 {
		t.Errorf("request đầu phải là sendMediaGroup với đủ media, got %+v", sent[0])
	}
	if sent[0].Items[0].Caption == "" {
		t.Error("caption phải nằm trên media đầu tiên của album")
	}
	if sent[1].Method != "sendMessage" || len(sent[1].Keyboard) == 0 {
		t.Errorf("request sau phải là panel message mang keyboard, got %+v", sent[1])
	}

	if ref.PanelMessageID == 0 {
		t.Error("ref.PanelMessageID phải được gán")
	}
	if len(ref.AlbumMessageIDs) != 4 {
		t.Errorf("ref.AlbumMessageIDs phải có 4 phần tử, got %d", len(ref.AlbumMessageIDs))
	}
	if ref.MessageID != ref.AlbumMessageIDs[0] {
		t.Error("ref.MessageID phải là message đầu của album")
	}
}

func TestPublishToChannel_NoMediaSendsTextWithKeyboard(t *testing.T) {
	fake := telegram.NewFake()
	p := newTestPublisher(fake)
	post := carouselPost(false, 0)
	post.Text = "Chỉ có chữ"

	ref, err := p.publishToChannel(context.Background(), post, "anon_fox", "cat", "state", postmodels.ChannelFull)
	if err != nil {
		t.Fatalf("publishToChannel lỗi: %v", err)
	}
	if ref.MessageID == 0 {
		t.Error("ref.MessageID phải được gán")
	}

	sent := fake.LastSent()
	if sent.Method != "sendMessage" {
		t.Errorf("post không media phải là sendMessage, got %s", sent.Method)
	}
	if !strings.Contains(sent.Text, "Chỉ có chữ") {
		t.Errorf("caption phải chứa nội dung post, got %q", sent.Text)
	}
	if len(sent.Keyboard) == 0 {
		t.Error("message phải mang keyboard")
	}
}

func TestPublishToChannel_UnconfiguredChannelFails(t *testing.T) {
	fake := telegram.NewFake()
	p := NewPublisher(nil, nil, fake, 0, testFullChat) // restricted chưa cấu hình
	post := carouselPost(false, 1)

	if _, err := p.publishToChannel(context.Background(), post, "a", "b", "c", postmodels.ChannelRestricted); err == nil {
		t.Error("kênh chưa cấu hình chat ID phải trả lỗi")
	}
}

// fakePostStore giả lập PostService cho test Publish: trả về post in-memory
// và ghi lại các lượt MarkMirrored, cập nhật cờ mirror như store thật.
type fakePostStore struct {
	post      postmodels.Post
	markCalls []string
}

func (f *fakePostStore) FindOneById(ctx context.Context, id primitive.ObjectID) (postmodels.Post, error) {
	return f.post, nil
}

func (f *fakePostStore) MarkMirrored(ctx context.Context, postID primitive.ObjectID, channel string, ref postmodels.ChannelRef) error {
	f.markCalls = append(f.markCalls, channel)
	if channel == postmodels.ChannelFull {
		f.post.Mirrors.SentToFull = true
	} else {
		f.post.Mirrors.SentToRestricted = true
	}
	if f.post.ChannelRefs == nil {
		f.post.ChannelRefs = map[string]postmodels.ChannelRef{}
	}
	f.post.ChannelRefs[channel] = ref
	return nil
}

type fakeAuthorStore struct{ user usermodels.User }

func (f *fakeAuthorStore) FindByTelegramID(ctx context.Context, telegramID int64) (usermodels.User, error) {
	return f.user, nil
}

func newPublishFixture(fake *telegram.Fake, post postmodels.Post) (*Publisher, *fakePostStore) {
	store := &fakePostStore{post: post}
	authors := &fakeAuthorStore{user: usermodels.User{TelegramID: post.AuthorID, Codename: "anon_fox"}}
	return NewPublisher(store, authors, fake, testRestrictedChat, testFullChat), store
}

func publishedCount(fake *telegram.Fake) int {
	return len(fake.SentTo(testRestrictedChat)) + len(fake.SentTo(testFullChat))
}

func TestPublish_MarksMirrorPerChannel(t *testing.T) {
	fake := telegram.NewFake()
	p, store := newPublishFixture(fake, carouselPost(false, 1))

	result, err := p.Publish(context.Background(), store.post.ID, TargetBoth)
	if err != nil {
		t.Fatalf("Publish lỗi: %v", err)
	}
	if !result.Channels[postmodels.ChannelRestricted] || !result.Channels[postmodels.ChannelFull] {
		t.Errorf("Cả hai kênh phải đăng thành công, got %+v", result.Channels)
	}
	if len(store.markCalls) != 2 {
		t.Errorf("MarkMirrored phải được gọi một lần cho mỗi kênh, got %v", store.markCalls)
	}
	if len(store.post.ChannelRefs) != 2 {
		t.Errorf("channelRefs phải có đủ hai kênh, got %d", len(store.post.ChannelRefs))
	}
}

func TestPublish_SecondCallSkipsMirroredChannels(t *testing.T) {
	fake := telegram.NewFake()
	p, store := newPublishFixture(fake, carouselPost(false, 1))

	if _, err := p.Publish(context.Background(), store.post.ID, TargetBoth); err != nil {
		t.Fatalf("Lượt đăng đầu lỗi: %v", err)
	}
	sentAfterFirst := publishedCount(fake)
	refsAfterFirst := map[string]int64{}
	for ch, ref := range store.post.ChannelRefs {
		refsAfterFirst[ch] = ref.MessageID
	}

	result, err := p.Publish(context.Background(), store.post.ID, TargetBoth)
	if err != nil {
		t.Fatalf("Lượt đăng lại lỗi: %v", err)
	}
	if publishedCount(fake) != sentAfterFirst {
		t.Errorf("Đăng lại không được gửi thêm message nào lên kênh, got %d sau %d", publishedCount(fake), sentAfterFirst)
	}
	if len(store.markCalls) != 2 {
		t.Errorf("channelRefs chỉ được ghi một lần mỗi kênh, MarkMirrored got %v", store.markCalls)
	}
	for ch, msgID := range refsAfterFirst {
		if store.post.ChannelRefs[ch].MessageID != msgID {
			t.Errorf("Ref của kênh %s bị ghi đè, message id %d → %d", ch, msgID, store.post.ChannelRefs[ch].MessageID)
		}
	}
	if !result.Channels[postmodels.ChannelRestricted] || !result.Channels[postmodels.ChannelFull] {
		t.Errorf("Kênh đã có mirror phải được báo thành công, got %+v", result.Channels)
	}
}

func TestPublish_PartialFailureFlagsChannel(t *testing.T) {
	fake := telegram.NewFake()
	fake.FailChats[testRestrictedChat] = context.DeadlineExceeded
	p, store := newPublishFixture(fake, carouselPost(false, 1))

	result, err := p.Publish(context.Background(), store.post.ID, TargetBoth)
	if err != nil {
		t.Fatalf("Một kênh thành công thì aggregate không được lỗi: %v", err)
	}
	if result.Channels[postmodels.ChannelRestricted] {
		t.Error("Kênh restricted phải bị báo thất bại")
	}
	if !result.Channels[postmodels.ChannelFull] {
		t.Error("Kênh full phải vẫn đăng thành công")
	}
	if _, ok := result.Errors[postmodels.ChannelRestricted]; !ok {
		t.Error("Lỗi của kênh restricted phải nằm trong result.Errors")
	}
	if len(store.markCalls) != 1 || store.markCalls[0] != postmodels.ChannelFull {
		t.Errorf("Chỉ kênh thành công được mark mirror, got %v", store.markCalls)
	}
	if store.post.Mirrors.SentToRestricted {
		t.Error("Kênh thất bại không được set cờ mirror")
	}
}

func TestPublish_AllChannelsFailReturnsError(t *testing.T) {
	fake := telegram.NewFake()
	fake.FailChats[testRestrictedChat] = context.DeadlineExceeded
	fake.FailChats[testFullChat] = context.DeadlineExceeded
	p, store := newPublishFixture(fake, carouselPost(false, 1))

	result, err := p.Publish(context.Background(), store.post.ID, TargetBoth)
	if err == nil {
		t.Fatal("Mọi kênh thất bại thì Publish phải trả lỗi")
	}
	if result == nil || result.Succeeded() {
		t.Fatalf("Kết quả vẫn phải mang trạng thái từng kênh, got %+v", result)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Lỗi của cả hai kênh phải được ghi nhận, got %v", result.Errors)
	}
}

func TestPublishToChannel_TransportErrorPropagates(t *testing.T) {
	fake := telegram.NewFake()
	fake.FailChats[testRestrictedChat] = context.DeadlineExceeded
	p := newTestPublisher(fake)
	post := carouselPost(false, 1)

	if _, err := p.publishToChannel(context.Background(), post, "a", "b", "c", postmodels.ChannelRestricted); err == nil {
		t.Error("lỗi transport phải được trả về cho caller")
	}
	// Kênh còn lại không bị ảnh hưởng
	if _, err := p.publishToChannel(context.Background(), post, "a", "b", "c", postmodels.ChannelFull); err != nil {
		t.Errorf("kênh full phải vẫn đăng được: %v", err)
	}
}
