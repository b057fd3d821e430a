// Package postsvc - Test promote draft thành Post bất biến.
package postsvc

import (
	"testing"

	draftmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/draft/models"
	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/global"
)

func init() {
	global.InitValidator()
}

func readyDraft() draftmodels.Draft {
	return draftmodels.Draft{
		DraftID:     "d-1",
		OwnerID:     12345,
		Title:       "Bài viết mới",
		Description: "Nội dung bản nháp",
		Media: []postmodels.Media{
			{Type: "photo", URL: "https://res.cloudinary.com/demo/image/upload/v1/a.jpg"},
		},
		Monetized:  true,
		Price:      50,
		RenderMode: postmodels.RenderAlbumPanel,
		Status:     draftmodels.StatusReady,
	}
}

func TestPostFromDraft_MapsDraftFields(t *testing.T) {
	post, err := PostFromDraft(readyDraft(), postmodels.RenderCarousel)
	if err != nil {
		t.Fatalf("PostFromDraft lỗi: %v", err)
	}
	if post.AuthorID != 12345 {
		t.Errorf("AuthorID phải là owner của draft, got %d", post.AuthorID)
	}
	if post.Title != "Bài viết mới" || post.Text != "Nội dung bản nháp" {
		t.Errorf("Title/Text phải map từ draft, got %q / %q", post.Title, post.Text)
	}
	if len(post.Media) != 1 {
		t.Fatalf("Media phải map từ draft, got %d phần tử", len(post.Media))
	}
	if !post.Monetized || post.Price != 50 {
		t.Errorf("Cờ monetized và giá phải giữ nguyên, got %v / %d", post.Monetized, post.Price)
	}
	if post.RenderMode != postmodels.RenderAlbumPanel {
		t.Errorf("Draft đã chọn render mode thì giữ nguyên, got %q", post.RenderMode)
	}
}

func TestPostFromDraft_DefaultRenderModeApplied(t *testing.T) {
	draft := readyDraft()
	draft.RenderMode = ""

	post, err := PostFromDraft(draft, postmodels.RenderAlbumPanel)
	if err != nil {
		t.Fatalf("PostFromDraft lỗi: %v", err)
	}
	if post.RenderMode != postmodels.RenderAlbumPanel {
		t.Errorf("Draft không chọn render mode phải nhận mode cấu hình, got %q", post.RenderMode)
	}

	// Không có cả cấu hình thì fallback carousel
	post, err = PostFromDraft(draft, "")
	if err != nil {
		t.Fatalf("PostFromDraft lỗi: %v", err)
	}
	if post.RenderMode != postmodels.RenderCarousel {
		t.Errorf("Fallback phải là carousel, got %q", post.RenderMode)
	}
}

func TestPostFromDraft_EmptyDraftRejected(t *testing.T) {
	draft := draftmodels.Draft{DraftID: "d-2", OwnerID: 12345}
	if _, err := PostFromDraft(draft, postmodels.RenderCarousel); err == nil {
		t.Error("Draft không có nội dung nào không được phép đăng")
	}
}

func TestPostFromDraft_InvalidContentRejected(t *testing.T) {
	draft := readyDraft()
	draft.Media = []postmodels.Media{{Type: "photo", URL: "not-a-url"}}
	if _, err := PostFromDraft(draft, postmodels.RenderCarousel); err == nil {
		t.Error("Media với URL không hợp lệ phải bị từ chối khi promote")
	}

	draft = readyDraft()
	draft.Title = "<script>alert(1)</script>"
	if _, err := PostFromDraft(draft, postmodels.RenderCarousel); err == nil {
		t.Error("Tiêu đề chứa pattern XSS phải bị từ chối khi promote")
	}
}
