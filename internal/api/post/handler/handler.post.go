// Package posthdl cung cấp admin API cho việc đăng và tra cứu post.
package posthdl

import (
	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basehdl "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/base/handler"
	postsvc "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/service"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

// PublishInput là body của POST /api/v1/posts/:id/publish
type PublishInput struct {
	Target string `json:"target" validate:"omitempty,publish_target"` // both | restricted | full, rỗng = both
}

// PostHandler xử lý các route admin của post
type PostHandler struct {
	posts     *postsvc.PostService
	publisher *postsvc.Publisher
}

// NewPostHandler tạo mới PostHandler
func NewPostHandler(posts *postsvc.PostService, publisher *postsvc.Publisher) *PostHandler {
	return &PostHandler{
		posts:     posts,
		publisher: publisher,
	}
}

// parsePostID đọc :id từ path thành ObjectID
func parsePostID(c fiber.Ctx) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return primitive.NilObjectID, common.NewError(
			common.ErrCodeValidationInput,
			"ID bài viết không hợp lệ",
			common.StatusBadRequest,
			err,
		)
	}
	return id, nil
}

// HandlePublish đăng post lên các kênh theo target.
// Kết quả từng kênh nằm trong response kể cả khi một kênh thất bại.
func (h *PostHandler) HandlePublish(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		postID, err := parsePostID(c)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		var input PublishInput
		if len(c.Body()) > 0 {
			if err := c.Bind().Body(&input); err != nil {
				return basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			}
		}
		if err := global.Validate.Struct(&input); err != nil {
			return basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		}
		if input.Target == "" {
			input.Target = postsvc.TargetBoth
		}

		// Publish trả lỗi khi không kênh nào thành công; chi tiết từng kênh
		// nằm trong Details của lỗi. Partial failure trả kết quả từng kênh.
		result, err := h.publisher.Publish(c.Context(), postID, input.Target)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}
		return basehdl.HandleResponse(c, result, nil)
	})
}

// HandleGet trả về post theo id
func (h *PostHandler) HandleGet(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		postID, err := parsePostID(c)
		if err != nil {
			return basehdl.HandleResponse(c, nil, err)
		}

		post, err := h.posts.FindOneById(c.Context(), postID)
		return basehdl.HandleResponse(c, post, err)
	})
}
