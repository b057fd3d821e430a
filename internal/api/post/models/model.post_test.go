// Package models - Test validate post và comment với các custom validator.
package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

func init() {
	global.InitValidator()
}

func validPost() Post {
	return Post{
		AuthorID:   111,
		Title:      "Một bài đăng",
		Text:       "Nội dung",
		RenderMode: RenderCarousel,
		Media: []Media{
			{Type: "photo", URL: "https://res.cloudinary.com/demo/image/upload/v1/a.jpg"},
		},
	}
}

func TestPostValidation_ValidPost(t *testing.T) {
	p := validPost()
	require.NoError(t, global.Validate.Struct(p))
}

func TestPostValidation_RenderModeRequired(t *testing.T) {
	p := validPost()
	p.RenderMode = ""
	assert.Error(t, global.Validate.Struct(p), "render mode rỗng phải bị từ chối")

	p.RenderMode = "grid"
	assert.Error(t, global.Validate.Struct(p), "render mode lạ phải bị từ chối")

	p.RenderMode = RenderAlbumPanel
	assert.NoError(t, global.Validate.Struct(p))
}

func TestPostValidation_MediaLimits(t *testing.T) {
	p := validPost()
	media := make([]Media, 11)
	for i := range media {
		media[i] = Media{Type: "photo", URL: "https://res.cloudinary.com/demo/image/upload/v1/a.jpg"}
	}
	p.Media = media
	assert.Error(t, global.Validate.Struct(p), "quá 10 media phải bị từ chối")

	p.Media = []Media{{Type: "gif", URL: "https://example.com/a.gif"}}
	assert.Error(t, global.Validate.Struct(p), "media type ngoài photo/video phải bị từ chối")

	p.Media = []Media{{Type: "video", URL: "not-a-url"}}
	assert.Error(t, global.Validate.Struct(p), "URL media không hợp lệ phải bị từ chối")
}

func TestPostValidation_TitleNoXSS(t *testing.T) {
	p := validPost()
	p.Title = `Xin chào <script>alert(1)</script>`
	assert.Error(t, global.Validate.Struct(p), "title chứa script phải bị từ chối")

	p.Title = strings.Repeat("a", 121)
	assert.Error(t, global.Validate.Struct(p), "title quá 120 ký tự phải bị từ chối")
}

func TestCommentValidation_TextBounds(t *testing.T) {
	c := Comment{PostID: primitive.NewObjectID(), UserID: 222, Text: "Bình luận hợp lệ"}
	require.NoError(t, global.Validate.Struct(c))

	c.Text = ""
	assert.Error(t, global.Validate.Struct(c), "comment rỗng phải bị từ chối")

	c.Text = strings.Repeat("b", CommentMaxLength+1)
	assert.Error(t, global.Validate.Struct(c), "comment quá dài phải bị từ chối")

	c.Text = "nhấp vào đây javascript:void(0)"
	assert.Error(t, global.Validate.Struct(c), "comment chứa pattern XSS phải bị từ chối")
}
