// Package callback - Test router dispatch: unknown action, panic recovery, map lỗi sang ack.
package callback

import (
	"context"
	"testing"
	"time"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/common"
)

// recordingAnswer ghi lại các lần answer để assert
type recordingAnswer struct {
	texts  []string
	alerts []bool
}

func (r *recordingAnswer) fn(ctx context.Context, queryID, text string, showAlert bool) error {
	r.texts = append(r.texts, text)
	r.alerts = append(r.alerts, showAlert)
	return nil
}

func TestRouter_DispatchRegisteredHandler(t *testing.T) {
	rec := &recordingAnswer{}
	r := NewRouter(rec.fn)

	var got Query
	r.Register(ActionMatch, func(ctx context.Context, q Query) (string, error) {
		got = q
		return "OK", nil
	})

	r.Dispatch(context.Background(), "match:post:p42", "q1", 7, 100, 55)

	if got.Callback.Identifier != "p42" {
		t.Errorf("Handler nhận identifier %q, muốn p42", got.Callback.Identifier)
	}
	if got.UserID != 7 {
		t.Errorf("Handler nhận userID %d, muốn 7", got.UserID)
	}
	if len(rec.texts) != 1 || rec.texts[0] != "OK" {
		t.Errorf("Router phải answer đúng 1 lần với text handler trả về, nhận: %v", rec.texts)
	}
}

func TestRouter_UnknownActionAcknowledged(t *testing.T) {
	rec := &recordingAnswer{}
	r := NewRouter(rec.fn)

	r.Dispatch(context.Background(), "teleport:post:abc", "q1", 1, 1, 1)

	if len(rec.texts) != 1 {
		t.Fatalf("Action unknown vẫn phải được answer, số lần answer: %d", len(rec.texts))
	}
	if rec.texts[0] == "" {
		t.Error("Acknowledgment cho action unknown không được rỗng")
	}
}

func TestRouter_PanicRecovered(t *testing.T) {
	rec := &recordingAnswer{}
	r := NewRouter(rec.fn)
	r.Register(ActionGallery, func(ctx context.Context, q Query) (string, error) {
		panic("boom")
	})

	// Không được panic thoát ra ngoài
	r.Dispatch(context.Background(), "gallery:post:p1", "q1", 1, 1, 1)

	if len(rec.texts) != 1 {
		t.Fatalf("Panic phải được recover và answer, số lần answer: %d", len(rec.texts))
	}
}

func TestRouter_RateLimitErrorCarriesRetryAfter(t *testing.T) {
	rec := &recordingAnswer{}
	r := NewRouter(rec.fn)
	r.Register(ActionFavorite, func(ctx context.Context, q Query) (string, error) {
		return "", common.RateLimited(5 * time.Second)
	})

	r.Dispatch(context.Background(), "favorite:post:p1", "q1", 1, 1, 1)

	if len(rec.texts) != 1 {
		t.Fatal("Lỗi rate limit phải được answer")
	}
	if rec.texts[0] == "" {
		t.Error("Acknowledgment rate limit phải chứa gợi ý thời gian chờ")
	}
}

func TestRouter_NoopOnlyAnswers(t *testing.T) {
	rec := &recordingAnswer{}
	r := NewRouter(rec.fn)

	r.Dispatch(context.Background(), "noop", "q1", 1, 1, 1)

	if len(rec.texts) != 1 || rec.texts[0] != "" {
		t.Errorf("noop chỉ answer rỗng để tắt spinner, nhận: %v", rec.texts)
	}
}
