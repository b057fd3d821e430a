// Package callback - Test parse/build wire format và giới hạn 64 byte.
package callback

import (
	"errors"
	"strings"
	"testing"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
)

func TestParse_RoundTrip(t *testing.T) {
	data, err := MediaNext("post_abc123", 2)
	if err != nil {
		t.Fatalf("MediaNext trả về lỗi: %v", err)
	}
	cb, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse trả về lỗi với data hợp lệ %q: %v", data, err)
	}
	if cb.Action != ActionMedia {
		t.Errorf("Action = %q, muốn %q", cb.Action, ActionMedia)
	}
	if cb.Target != "next" {
		t.Errorf("Target = %q, muốn next", cb.Target)
	}
	if cb.Identifier != "post_abc123" {
		t.Errorf("Identifier = %q, muốn post_abc123", cb.Identifier)
	}
	idx, err := cb.MediaIndex()
	if err != nil {
		t.Fatalf("MediaIndex trả về lỗi: %v", err)
	}
	if idx != 2 {
		t.Errorf("MediaIndex = %d, muốn 2", idx)
	}
	if cb.String() != data {
		t.Errorf("String() = %q, không round-trip về %q", cb.String(), data)
	}
}

func TestParse_TooFewSegments(t *testing.T) {
	for _, data := range []string{"", "match", "match:post", "gallery:post"} {
		if _, err := Parse(data); err == nil {
			t.Errorf("Parse(%q) phải trả về lỗi vì dưới 3 segment", data)
		}
	}
}

func TestParse_WhitelistedShortForms(t *testing.T) {
	cb, err := Parse("back:main")
	if err != nil {
		t.Fatalf("back:main là dạng rút gọn hợp lệ, nhận lỗi: %v", err)
	}
	if cb.Action != ActionBack || cb.Target != "main" {
		t.Errorf("back:main parse sai: %+v", cb)
	}

	cb, err = Parse("noop")
	if err != nil {
		t.Fatalf("noop là dạng rút gọn hợp lệ, nhận lỗi: %v", err)
	}
	if cb.Action != ActionNoop {
		t.Errorf("noop parse sai: %+v", cb)
	}
}

func TestParse_UnknownActionMapped(t *testing.T) {
	cb, err := Parse("teleport:post:abc")
	if err != nil {
		t.Fatalf("Action lạ vẫn phải parse được (router xử lý), nhận lỗi: %v", err)
	}
	if cb.Action != ActionUnknown {
		t.Errorf("Action = %q, muốn %q", cb.Action, ActionUnknown)
	}
}

func TestParse_InvalidTargetForAction(t *testing.T) {
	if _, err := Parse("media:sideways:abc:0"); err == nil {
		t.Error("media chỉ nhận target prev|next, phải trả về lỗi")
	}
	if _, err := Parse("match:remove:abc"); err == nil {
		t.Error("match không nhận target remove, phải trả về lỗi")
	}
}

func TestParse_EmptySegment(t *testing.T) {
	if _, err := Parse("match::abc"); !errors.Is(err, common.ErrInvalidCallback) {
		t.Errorf("Segment rỗng phải trả về ErrInvalidCallback, nhận: %v", err)
	}
}

func TestBuild_LengthCapEnforced(t *testing.T) {
	longID := strings.Repeat("x", 70)
	if _, err := MatchPost(longID); err == nil {
		t.Fatal("Builder phải trả về lỗi khi callback data vượt 64 byte")
	}

	// Đúng biên: 64 byte được chấp nhận
	// "match:post:" = 11 byte, id 53 byte → tổng 64
	okID := strings.Repeat("a", 53)
	data, err := MatchPost(okID)
	if err != nil {
		t.Fatalf("Callback đúng 64 byte phải hợp lệ, nhận lỗi: %v", err)
	}
	if len(data) != MaxDataLength {
		t.Errorf("len(data) = %d, muốn %d", len(data), MaxDataLength)
	}
}

func TestBuilders_ProduceParseableData(t *testing.T) {
	builders := map[string]func() (string, error){
		"match":          func() (string, error) { return MatchPost("p1") },
		"favorite":       func() (string, error) { return FavoritePost("p1") },
		"favoriteRemove": func() (string, error) { return FavoriteRemove("p1") },
		"comments":       func() (string, error) { return CommentsPost("p1") },
		"commentsWrite":  func() (string, error) { return CommentsWrite("p1") },
		"gallery":        func() (string, error) { return GalleryPost("p1") },
		"info":           func() (string, error) { return InfoPost("p1") },
		"mediaPrev":      func() (string, error) { return MediaPrev("p1", 0) },
		"postingCreate":  func() (string, error) { return PostingCreate("u1") },
		"postingPublish": func() (string, error) { return PostingPublish("d1") },
		"monetizeDraft":  func() (string, error) { return MonetizeDraft("d1") },
		"menuMain":       func() (string, error) { return MenuMain("u1") },
	}
	for name, b := range builders {
		data, err := b()
		if err != nil {
			t.Errorf("builder %s trả về lỗi: %v", name, err)
			continue
		}
		if _, err := Parse(data); err != nil {
			t.Errorf("builder %s tạo data không parse được (%q): %v", name, data, err)
		}
	}
}
