// Package postsvc quản lý bài đăng, bình luận và việc đăng bài lên các kênh.
package postsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/service"
	draftmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/models"
	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// Các bộ đếm tương tác hợp lệ cho IncrementStat
const (
	StatComments  = "stats.comments"
	StatFavorites = "stats.favorites"
	StatMatches   = "stats.matches"
)

// PostService là service quản lý posts
type PostService struct {
	*basesvc.BaseServiceMongoImpl[postmodels.Post]
}

// NewPostService tạo mới PostService
func NewPostService() (*PostService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Posts)
	if !exist {
		return nil, fmt.Errorf("failed to get posts collection: %v", common.ErrNotFound)
	}

	return &PostService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[postmodels.Post](collection),
	}, nil
}

// PostFromDraft dựng Post bất biến từ một draft đã soạn xong. Draft trống
// (không tiêu đề, không mô tả, không media) không thể đăng. Render mode
// cố định từ lúc tạo post: draft không chọn thì dùng defaultRenderMode.
func PostFromDraft(draft draftmodels.Draft, defaultRenderMode string) (postmodels.Post, error) {
	var zero postmodels.Post

	if draft.Title == "" && draft.Description == "" && len(draft.Media) == 0 {
		return zero, common.NewError(
			common.ErrCodeValidationInput,
			"Bản nháp chưa có nội dung để đăng",
			common.StatusBadRequest,
			nil,
		)
	}

	renderMode := draft.RenderMode
	if renderMode == "" {
		renderMode = defaultRenderMode
	}
	if renderMode == "" {
		renderMode = postmodels.RenderCarousel
	}

	post := postmodels.Post{
		AuthorID:   draft.OwnerID,
		Title:      draft.Title,
		Text:       draft.Description,
		Media:      draft.Media,
		Monetized:  draft.Monetized,
		Price:      draft.Price,
		RenderMode: renderMode,
	}
	if err := global.Validate.Struct(&post); err != nil {
		return zero, common.NewError(
			common.ErrCodeValidationInput,
			"Nội dung bản nháp không hợp lệ",
			common.StatusBadRequest,
			err,
		)
	}
	return post, nil
}

// CreateFromDraft promote draft thành Post mới trong collection posts
func (s *PostService) CreateFromDraft(ctx context.Context, draft draftmodels.Draft, defaultRenderMode string) (postmodels.Post, error) {
	post, err := PostFromDraft(draft, defaultRenderMode)
	if err != nil {
		return postmodels.Post{}, err
	}
	return s.InsertOne(ctx, post)
}

// IncrementStat tăng/giảm một bộ đếm tương tác bằng $inc.
// $inc là update nguyên tử trên một document nên không cần lock ngoài.
func (s *PostService) IncrementStat(ctx context.Context, postID primitive.ObjectID, stat string, delta int64) (postmodels.Post, error) {
	return s.FindOneAndUpdate(ctx, bson.M{"_id": postID}, &basesvc.UpdateData{
		Inc: map[string]interface{}{
			stat: delta,
		},
	}, nil)
}

// SetMediaIndex lưu index media đang hiển thị của post trên một kênh
func (s *PostService) SetMediaIndex(ctx context.Context, postID primitive.ObjectID, channel string, index int) error {
	_, err := s.UpdateOne(ctx, bson.M{"_id": postID}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			fmt.Sprintf("channelRefs.%s.currentMediaIndex", channel): index,
		},
	}, nil)
	return err
}

// MarkMirrored ghi nhận post đã đăng thành công lên một kênh.
// Filter loại kênh đã có mirror: channelRefs chỉ được ghi một lần mỗi kênh,
// kể cả khi hai lượt đăng chạy đua.
func (s *PostService) MarkMirrored(ctx context.Context, postID primitive.ObjectID, channel string, ref postmodels.ChannelRef) error {
	mirrorField := "mirrors.sentToRestricted"
	if channel == postmodels.ChannelFull {
		mirrorField = "mirrors.sentToFull"
	}
	_, err := s.UpdateOne(ctx, bson.M{
		"_id":       postID,
		mirrorField: bson.M{"$ne": true},
	}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			mirrorField:                            true,
			fmt.Sprintf("channelRefs.%s", channel): ref,
		},
	}, nil)
	return err
}

// FindByAuthor trả về các post của một tác giả, mới nhất trước
func (s *PostService) FindByAuthor(ctx context.Context, authorID int64, limit int64) ([]postmodels.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	return s.Find(ctx, bson.M{"authorId": authorID}, opts)
}
