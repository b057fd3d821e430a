// Package usersvc quản lý thành viên và danh sách lưu của họ.
package usersvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/service"
	usermodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/user/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// UserService là service quản lý users
type UserService struct {
	*basesvc.BaseServiceMongoImpl[usermodels.User]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[usermodels.User](collection),
	}, nil
}

// FindByTelegramID tìm user theo Telegram ID
func (s *UserService) FindByTelegramID(ctx context.Context, telegramID int64) (usermodels.User, error) {
	return s.FindOne(ctx, bson.M{"telegramId": telegramID}, nil)
}

// EnsureUser trả về user theo Telegram ID, tạo mới nếu chưa tồn tại
func (s *UserService) EnsureUser(ctx context.Context, telegramID int64) (usermodels.User, error) {
	return s.Upsert(ctx, bson.M{"telegramId": telegramID}, &basesvc.UpdateData{
		SetOnInsert: map[string]interface{}{
			"telegramId": telegramID,
			"botState":   usermodels.BotStateIdle,
			"premium":    false,
		},
	})
}

// SetBotState chuyển user sang một trạng thái hội thoại gắn với post
func (s *UserService) SetBotState(ctx context.Context, telegramID int64, state string, postID primitive.ObjectID) error {
	_, err := s.UpdateOne(ctx, bson.M{"telegramId": telegramID}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"botState":       state,
			"botStatePostId": postID,
		},
	}, nil)
	return err
}

// ClearBotState đưa user về trạng thái idle
func (s *UserService) ClearBotState(ctx context.Context, telegramID int64) error {
	_, err := s.UpdateOne(ctx, bson.M{"telegramId": telegramID}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"botState": usermodels.BotStateIdle,
		},
		Unset: map[string]interface{}{
			"botStatePostId": "",
		},
	}, nil)
	return err
}
