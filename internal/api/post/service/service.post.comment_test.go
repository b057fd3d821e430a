// Package postsvc - Test kiểm tra độ dài nội dung bình luận.
package postsvc

import (
	"strings"
	"testing"

	postmodels "github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/api/post/models"
)

func TestValidateCommentText_CountsRunesNotBytes(t *testing.T) {
	// 400 ký tự có dấu chiếm 800 byte nhưng vẫn dưới giới hạn 600 ký tự
	text := strings.Repeat("á", 400)
	got, err := validateCommentText(text)
	if err != nil {
		t.Fatalf("Bình luận 400 ký tự có dấu phải hợp lệ: %v", err)
	}
	if got != text {
		t.Errorf("Nội dung hợp lệ phải được giữ nguyên sau trim")
	}

	// Đúng giới hạn trên vẫn hợp lệ
	if _, err := validateCommentText(strings.Repeat("ầ", postmodels.CommentMaxLength)); err != nil {
		t.Errorf("Bình luận đúng %d ký tự phải hợp lệ: %v", postmodels.CommentMaxLength, err)
	}
}

func TestValidateCommentText_Bounds(t *testing.T) {
	if _, err := validateCommentText(strings.Repeat("a", postmodels.CommentMaxLength+1)); err == nil {
		t.Error("Bình luận vượt giới hạn ký tự phải bị từ chối")
	}
	if _, err := validateCommentText("   "); err == nil {
		t.Error("Bình luận chỉ có whitespace phải bị từ chối sau trim")
	}
	if got, err := validateCommentText("  chào  "); err != nil || got != "chào" {
		t.Errorf("Nội dung phải được trim trước khi kiểm tra, got %q / %v", got, err)
	}
}
