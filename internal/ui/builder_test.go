package ui

import (
	"strings"
	"testing"
)

func TestBlurURL_CloudinaryRewrite(t *testing.T) {
	url := "https://res.cloudinary.com/demo/image/upload/v123/posts/abc.jpg"
	got := BlurURL(url)
	want := "https://res.cloudinary.com/demo/image/upload/e_blur:1000,q_10/v123/posts/abc.jpg"
	if got != want {
		t.Fatalf("BlurURL sai:\n  nhận: %s\n  muốn: %s", got, want)
	}
}

func TestBlurURL_NonCloudinaryUnchanged(t *testing.T) {
	url := "https://cdn.example.com/media/abc.jpg"
	if got := BlurURL(url); got != url {
		t.Fatalf("URL không có /upload/ phải giữ nguyên, nhận %s", got)
	}
}

func TestBuildKeyboard_NavRowPresentForMultiMedia(t *testing.T) {
	kb := BuildKeyboard(PostView{
		PostID:     "507f1f77bcf86cd799439011",
		RenderMode: RenderCarousel,
		MediaIndex: 1,
		MediaTotal: 3,
	})
	if len(kb) != 4 {
		t.Fatalf("Keyboard phải có 4 hàng (nav + 3 action), nhận %d", len(kb))
	}
	nav := kb[0]
	if len(nav) != 3 {
		t.Fatalf("Hàng nav phải có 3 nút, nhận %d", len(nav))
	}
	if nav[1].Text != "2/3" {
		t.Fatalf("Bộ đếm phải hiển thị '2/3', nhận %q", nav[1].Text)
	}
	if nav[1].CallbackData != "noop" {
		t.Fatalf("Nút bộ đếm phải là noop, nhận %q", nav[1].CallbackData)
	}
	if !strings.HasPrefix(nav[0].CallbackData, "media:prev:") {
		t.Fatalf("Nút trái phải là media:prev, nhận %q", nav[0].CallbackData)
	}
	if !strings.HasPrefix(nav[2].CallbackData, "media:next:") {
		t.Fatalf("Nút phải phải là media:next, nhận %q", nav[2].CallbackData)
	}
}

func TestBuildKeyboard_NavRowOmittedForSingleMedia(t *testing.T) {
	kb := BuildKeyboard(PostView{
		PostID:     "507f1f77bcf86cd799439011",
		RenderMode: RenderCarousel,
		MediaTotal: 1,
	})
	if len(kb) != 3 {
		t.Fatalf("Post 1 media không có hàng nav, keyboard phải có 3 hàng, nhận %d", len(kb))
	}
	for _, b := range kb[0] {
		if strings.HasPrefix(b.CallbackData, "media:") {
			t.Fatalf("Không được có nút media trong keyboard 1 media: %q", b.CallbackData)
		}
	}
}

func TestBuildKeyboard_NavRowOmittedForAlbumPanel(t *testing.T) {
	kb := BuildKeyboard(PostView{
		PostID:     "507f1f77bcf86cd799439011",
		RenderMode: RenderAlbumPanel,
		MediaTotal: 5,
	})
	if len(kb) != 3 {
		t.Fatalf("Album panel không có hàng nav dù nhiều media, nhận %d hàng", len(kb))
	}
}

func TestBuildKeyboard_PostingAndMenuRow(t *testing.T) {
	kb := BuildKeyboard(PostView{
		PostID:     "507f1f77bcf86cd799439011",
		RenderMode: RenderCarousel,
		MediaTotal: 1,
	})
	last := kb[len(kb)-1]
	if len(last) != 2 {
		t.Fatalf("Hàng cuối phải có 2 nút (đăng bài + menu), nhận %d", len(last))
	}
	if !strings.HasPrefix(last[0].CallbackData, "posting:create:") {
		t.Fatalf("Nút đăng bài phải là posting:create, nhận %q", last[0].CallbackData)
	}
	if !strings.HasPrefix(last[1].CallbackData, "menu:main:") {
		t.Fatalf("Nút menu phải là menu:main, nhận %q", last[1].CallbackData)
	}

	// Panel keyboard của album cũng phải có hàng này
	panel := BuildPanelKeyboard(PostView{PostID: "507f1f77bcf86cd799439011", MediaTotal: 5})
	pl := panel[len(panel)-1]
	if len(pl) != 2 || !strings.HasPrefix(pl[0].CallbackData, "posting:create:") {
		t.Fatalf("Panel keyboard phải có hàng đăng bài + menu, nhận %+v", pl)
	}
}

func TestBuildKeyboard_CommentCounterEmbedded(t *testing.T) {
	kb := BuildKeyboard(PostView{
		PostID:       "507f1f77bcf86cd799439011",
		RenderMode:   RenderCarousel,
		MediaTotal:   1,
		CommentCount: 7,
	})
	found := false
	for _, row := range kb {
		for _, b := range row {
			if strings.HasPrefix(b.CallbackData, "comments:post:") {
				found = true
				if b.Text != "💬 7" {
					t.Fatalf("Nút comments phải mang bộ đếm '💬 7', nhận %q", b.Text)
				}
			}
		}
	}
	if !found {
		t.Fatal("Keyboard phải có nút comments")
	}
}

func TestBuildCaption_AuthorTagLine(t *testing.T) {
	caption := BuildCaption(PostView{
		AuthorCodename: "mua_ha",
		AuthorCategory: "nu",
		AuthorState:    "doc_than",
		Title:          "Chào mọi người",
		Text:           "Nội dung bài viết",
	})
	if !strings.HasPrefix(caption, "#mua_ha | #nu | #doc_than") {
		t.Fatalf("Caption phải mở đầu bằng dòng tag tác giả, nhận:\n%s", caption)
	}
	if !strings.Contains(caption, "<b>Chào mọi người</b>") {
		t.Fatalf("Caption phải chứa tiêu đề in đậm, nhận:\n%s", caption)
	}
}

func TestBuildCaption_MonetizedBlurredCTA(t *testing.T) {
	caption := BuildCaption(PostView{
		Text:      "Nội dung",
		Monetized: true,
		Blurred:   true,
		Price:     50,
	})
	if !strings.Contains(caption, "premium") {
		t.Fatalf("Caption blur phải có khối CTA premium, nhận:\n%s", caption)
	}
	if !strings.Contains(caption, "50⭐") {
		t.Fatalf("Caption blur phải hiển thị giá, nhận:\n%s", caption)
	}

	// Bản full không có CTA
	full := BuildCaption(PostView{Text: "Nội dung", Monetized: true, Blurred: false})
	if strings.Contains(full, "premium") {
		t.Fatalf("Bản không blur không được có CTA, nhận:\n%s", full)
	}
}
