// Package draftsvc là kho draft có TTL: draft hết hạn bị xóa khi đọc trúng
// hoặc bị worker dọn theo batch.
package draftsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	basesvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/service"
	draftmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// DraftService là service quản lý bản nháp bài đăng
type DraftService struct {
	*basesvc.BaseServiceMongoImpl[draftmodels.Draft]
	ttl time.Duration

	// now cho phép test điều khiển thời gian
	now func() time.Time
}

// NewDraftService tạo mới DraftService. ttl <= 0 dùng 2 giờ.
func NewDraftService(ttl time.Duration) (*DraftService, error) {
	collection, exist := global.RegistryCollections.Get(global.ColNames.Drafts)
	if !exist {
		return nil, fmt.Errorf("failed to get drafts collection: %v", common.ErrNotFound)
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	return &DraftService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[draftmodels.Draft](collection),
		ttl:                  ttl,
		now:                  time.Now,
	}, nil
}

// CreateOrUpdate lưu draft cho owner. DraftID rỗng sinh UUID mới.
// Mỗi lần lưu đều reset thời điểm hết hạn.
func (s *DraftService) CreateOrUpdate(ctx context.Context, ownerID int64, draft draftmodels.Draft) (draftmodels.Draft, error) {
	if draft.DraftID == "" {
		draft.DraftID = uuid.NewString()
	}
	status := draft.Status
	if status == "" {
		status = draftmodels.StatusEditing
	}

	return s.Upsert(ctx, bson.M{"ownerId": ownerID, "draftId": draft.DraftID}, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"title":       draft.Title,
			"description": draft.Description,
			"media":       draft.Media,
			"monetized":   draft.Monetized,
			"price":       draft.Price,
			"renderMode":  draft.RenderMode,
			"status":      status,
			"expiresAt":   s.now().Add(s.ttl).UnixMilli(),
		},
		SetOnInsert: map[string]interface{}{
			"ownerId": ownerID,
			"draftId": draft.DraftID,
		},
	})
}

// Get trả về draft theo draftID. Draft của owner khác trả ErrNotOwner;
// draft đã hết hạn bị xóa ngay và trả ErrNotFound (delete-on-read).
func (s *DraftService) Get(ctx context.Context, ownerID int64, draftID string) (draftmodels.Draft, error) {
	var zero draftmodels.Draft

	draft, err := s.FindOne(ctx, bson.M{"draftId": draftID}, nil)
	if err != nil {
		return zero, err
	}

	if draft.OwnerID != ownerID {
		return zero, common.ErrNotOwner
	}

	if draft.ExpiresAt <= s.now().UnixMilli() {
		// Xóa ngay khi đọc trúng draft hết hạn; đua với worker cleanup vô hại
		if delErr := s.DeleteOne(ctx, bson.M{"_id": draft.ID}); delErr != nil && !errors.Is(delErr, common.ErrNotFound) {
			logger.GetAppLogger().WithError(delErr).WithFields(map[string]interface{}{
				"draftId": draftID,
			}).Warn("🧹 [DRAFT_CLEANUP] Không xóa được draft hết hạn khi đọc")
		}
		return zero, common.ErrNotFound
	}

	return draft, nil
}

// Delete xóa draft của owner. Draft của owner khác trả ErrNotOwner.
func (s *DraftService) Delete(ctx context.Context, ownerID int64, draftID string) error {
	draft, err := s.FindOne(ctx, bson.M{"draftId": draftID}, nil)
	if err != nil {
		return err
	}
	if draft.OwnerID != ownerID {
		return common.ErrNotOwner
	}
	return s.DeleteOne(ctx, bson.M{"_id": draft.ID})
}

// GetUserDrafts trả về các draft còn hạn của owner, mới cập nhật trước
func (s *DraftService) GetUserDrafts(ctx context.Context, ownerID int64) ([]draftmodels.Draft, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return s.Find(ctx, bson.M{
		"ownerId":   ownerID,
		"expiresAt": bson.M{"$gt": s.now().UnixMilli()},
	}, opts)
}

// CleanupExpired xóa tối đa batchLimit draft đã hết hạn, trả về số đã xóa.
// An toàn khi chạy đua với delete-on-read của Get.
func (s *DraftService) CleanupExpired(ctx context.Context, batchLimit int64) (int64, error) {
	if batchLimit <= 0 {
		batchLimit = 100
	}

	// Lấy id theo batch rồi xóa theo $in để giới hạn kích thước mỗi lượt
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetLimit(batchLimit)
	expired, err := s.Find(ctx, bson.M{"expiresAt": bson.M{"$lte": s.now().UnixMilli()}}, opts)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]interface{}, 0, len(expired))
	for _, d := range expired {
		ids = append(ids, d.ID)
	}
	return s.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
}
