package postsvc

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basemodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/models"
	basesvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/service"
	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// CommentService là service quản lý bình luận trên post
type CommentService struct {
	*basesvc.BaseServiceMongoImpl[postmodels.Comment]
	posts *PostService
}

// NewCommentService tạo mới CommentService
func NewCommentService(posts *PostService) (*CommentService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.PostComments)
	if !exist {
		return nil, fmt.Errorf("failed to get post_comments collection: %v", common.ErrNotFound)
	}

	return &CommentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[postmodels.Comment](collection),
		posts:                posts,
	}, nil
}

// validateCommentText trim và kiểm tra độ dài nội dung bình luận.
// Giới hạn tính theo ký tự (rune), không phải byte - văn bản có dấu
// chiếm nhiều byte hơn nhưng vẫn phải được nhận đủ 600 ký tự.
func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < postmodels.CommentMinLength || n > postmodels.CommentMaxLength {
		return "", common.NewError(
			common.ErrCodeValidationInput,
			fmt.Sprintf("Nội dung bình luận phải từ %d đến %d ký tự", postmodels.CommentMinLength, postmodels.CommentMaxLength),
			common.StatusBadRequest,
			nil,
		)
	}
	return text, nil
}

// Add thêm bình luận vào post và tăng bộ đếm stats.comments.
// Nội dung sau khi trim phải trong khoảng 1-600 ký tự.
func (s *CommentService) Add(ctx context.Context, postID primitive.ObjectID, userID int64, codename, text string) (postmodels.Comment, error) {
	var zero postmodels.Comment

	text, err := validateCommentText(text)
	if err != nil {
		return zero, err
	}

	// Post phải tồn tại trước khi nhận bình luận
	if _, err := s.posts.FindOneById(ctx, postID); err != nil {
		return zero, err
	}

	created, err := s.InsertOne(ctx, postmodels.Comment{
		PostID:   postID,
		UserID:   userID,
		Codename: codename,
		Text:     text,
	})
	if err != nil {
		return zero, err
	}

	if _, err := s.posts.IncrementStat(ctx, postID, StatComments, 1); err != nil {
		return zero, err
	}
	return created, nil
}

// ListByPost trả về bình luận của post, mới nhất trước, có phân trang
func (s *CommentService) ListByPost(ctx context.Context, postID primitive.ObjectID, page, limit int64) (*basemodels.PaginateResult[postmodels.Comment], error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.FindWithPagination(ctx, bson.M{"postId": postID}, page, limit, opts)
}
