package usersvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basemodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/models"
	basesvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/service"
	usermodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// FavoriteService là service quản lý danh sách post đã lưu của user
type FavoriteService struct {
	*basesvc.BaseServiceMongoImpl[usermodels.Favorite]
}

// NewFavoriteService tạo mới FavoriteService
func NewFavoriteService() (*FavoriteService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Favorites)
	if !exist {
		return nil, fmt.Errorf("failed to get favorites collection: %v", common.ErrNotFound)
	}

	return &FavoriteService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[usermodels.Favorite](collection),
	}, nil
}

// Add lưu một post cho user. Lưu trùng trả về ErrAlreadyApplied
// (unique index (userId, postId) chặn ở tầng store).
func (s *FavoriteService) Add(ctx context.Context, userID int64, postID primitive.ObjectID) error {
	_, err := s.InsertOne(ctx, usermodels.Favorite{
		UserID: userID,
		PostID: postID,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) || errors.Is(err, common.ErrMongoDuplicate) {
			return common.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

// Remove bỏ lưu một post. Chưa lưu trả về ErrNotFound.
func (s *FavoriteService) Remove(ctx context.Context, userID int64, postID primitive.ObjectID) error {
	return s.DeleteOne(ctx, bson.M{"userId": userID, "postId": postID})
}

// Exists kiểm tra user đã lưu post chưa
func (s *FavoriteService) Exists(ctx context.Context, userID int64, postID primitive.ObjectID) (bool, error) {
	return s.DocumentExists(ctx, bson.M{"userId": userID, "postId": postID})
}

// ListByUser trả về danh sách favorite của user, mới nhất trước
func (s *FavoriteService) ListByUser(ctx context.Context, userID int64, page, limit int64) (*basemodels.PaginateResult[usermodels.Favorite], error) {
	return s.FindWithPagination(ctx, bson.M{"userId": userID}, page, limit, nil)
}
