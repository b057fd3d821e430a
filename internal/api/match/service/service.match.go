// Package matchsvc quản lý lượt match giữa thành viên và tác giả post.
package matchsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/service"
	matchmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/match/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// MatchService là service quản lý matches
type MatchService struct {
	*basesvc.BaseServiceMongoImpl[matchmodels.Match]
}

// NewMatchService tạo mới MatchService
func NewMatchService() (*MatchService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Matches)
	if !exist {
		return nil, fmt.Errorf("failed to get matches collection: %v", common.ErrNotFound)
	}

	return &MatchService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[matchmodels.Match](collection),
	}, nil
}

// Create ghi nhận match của user với tác giả qua post. Match trùng trả về
// ErrAlreadyApplied (unique index (userId, authorId, postId) chặn ở tầng store).
func (s *MatchService) Create(ctx context.Context, userID, authorID int64, postID primitive.ObjectID) (matchmodels.Match, error) {
	created, err := s.InsertOne(ctx, matchmodels.Match{
		UserID:   userID,
		AuthorID: authorID,
		PostID:   postID,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) || errors.Is(err, common.ErrMongoDuplicate) {
			return matchmodels.Match{}, common.ErrAlreadyApplied
		}
		return matchmodels.Match{}, err
	}
	return created, nil
}

// Remove gỡ match. Chưa match trả về ErrNotFound.
func (s *MatchService) Remove(ctx context.Context, userID, authorID int64, postID primitive.ObjectID) error {
	return s.DeleteOne(ctx, bson.M{"userId": userID, "authorId": authorID, "postId": postID})
}

// IsMatched kiểm tra user đã match với tác giả qua post chưa
func (s *MatchService) IsMatched(ctx context.Context, userID, authorID int64, postID primitive.ObjectID) (bool, error) {
	return s.DocumentExists(ctx, bson.M{"userId": userID, "authorId": authorID, "postId": postID})
}
