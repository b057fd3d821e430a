package antispam

import (
	"testing"
	"time"
)

// newTestLimiter tạo limiter với đồng hồ giả điều khiển được
func newTestLimiter(overrides map[string]Limit) (*Limiter, *time.Time) {
	l := NewLimiter(overrides)
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestCheckAndConsume_AllowsWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(nil)

	for i := 0; i < 5; i++ {
		ok, retry := l.CheckAndConsume(100, ActionMediaNav, "")
		if !ok {
			t.Fatalf("Lần %d phải được phép, retry=%v", i+1, retry)
		}
	}

	ok, retry := l.CheckAndConsume(100, ActionMediaNav, "")
	if ok {
		t.Fatal("Lần thứ 6 trong 1 giây phải bị chặn")
	}
	if retry <= 0 || retry > time.Second {
		t.Fatalf("retryAfter phải trong (0, 1s], nhận %v", retry)
	}
}

func TestCheckAndConsume_WindowSlides(t *testing.T) {
	l, clock := newTestLimiter(nil)

	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_1"); !ok {
		t.Fatal("Comment đầu tiên phải được phép")
	}
	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_1"); ok {
		t.Fatal("Comment thứ hai trong 10 giây phải bị chặn")
	}

	// Sau khi window trôi qua, slot được giải phóng
	*clock = clock.Add(10*time.Second + time.Millisecond)
	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_1"); !ok {
		t.Fatal("Comment sau khi window trôi qua phải được phép")
	}
}

func TestCheckAndConsume_ScopeKeysIndependent(t *testing.T) {
	l, _ := newTestLimiter(nil)

	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_1"); !ok {
		t.Fatal("Comment vào post_1 phải được phép")
	}
	// Post khác có cửa sổ riêng
	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_2"); !ok {
		t.Fatal("Comment vào post_2 phải được phép dù post_1 đang bị giới hạn")
	}
	// User khác có cửa sổ riêng
	if ok, _ := l.CheckAndConsume(200, ActionComment, "post_1"); !ok {
		t.Fatal("User khác comment vào post_1 phải được phép")
	}
}

func TestCheckOnly_DoesNotConsume(t *testing.T) {
	l, _ := newTestLimiter(nil)

	for i := 0; i < 10; i++ {
		if ok, _ := l.CheckOnly(100, ActionMatch, "author_5"); !ok {
			t.Fatalf("CheckOnly lần %d không được tiêu thụ slot", i+1)
		}
	}
	if ok, _ := l.CheckAndConsume(100, ActionMatch, "author_5"); !ok {
		t.Fatal("Slot vẫn phải còn sau nhiều lần CheckOnly")
	}
	if ok, retry := l.CheckOnly(100, ActionMatch, "author_5"); ok {
		t.Fatal("CheckOnly phải báo hết slot sau khi consume")
	} else if retry <= 0 {
		t.Fatalf("CheckOnly phải trả retryAfter > 0, nhận %v", retry)
	}
}

func TestOverrides_ReplaceDefaults(t *testing.T) {
	l, _ := newTestLimiter(map[string]Limit{
		ActionFavorite: {Max: 3, Window: time.Minute},
	})

	for i := 0; i < 3; i++ {
		if ok, _ := l.CheckAndConsume(100, ActionFavorite, ""); !ok {
			t.Fatalf("Với override Max=3, lần %d phải được phép", i+1)
		}
	}
	if ok, _ := l.CheckAndConsume(100, ActionFavorite, ""); ok {
		t.Fatal("Lần thứ 4 phải bị chặn theo override")
	}
}

func TestOverrides_InvalidIgnored(t *testing.T) {
	l, _ := newTestLimiter(map[string]Limit{
		ActionPublish: {Max: 0, Window: time.Minute},
	})

	lim := l.limitFor(ActionPublish)
	if lim.Max != 1 || lim.Window != 60*time.Second {
		t.Fatalf("Override không hợp lệ phải bị bỏ qua, nhận %+v", lim)
	}
}

func TestUnknownAction_UsesDefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(nil)

	for i := 0; i < 3; i++ {
		if ok, _ := l.CheckAndConsume(100, "gallery", ""); !ok {
			t.Fatalf("Action lạ lần %d phải dùng giới hạn mặc định 3/5s", i+1)
		}
	}
	if ok, _ := l.CheckAndConsume(100, "gallery", ""); ok {
		t.Fatal("Lần thứ 4 của action lạ phải bị chặn")
	}
}

func TestReset_FreesWindow(t *testing.T) {
	l, _ := newTestLimiter(nil)

	l.CheckAndConsume(100, ActionComment, "post_1")
	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_1"); ok {
		t.Fatal("Phải bị chặn trước khi reset")
	}

	l.Reset(100, ActionComment, "post_1")
	if ok, _ := l.CheckAndConsume(100, ActionComment, "post_1"); !ok {
		t.Fatal("Phải được phép sau khi reset")
	}
}

func TestSweep_RemovesIdleWindows(t *testing.T) {
	l, clock := newTestLimiter(nil)

	l.CheckAndConsume(100, ActionComment, "post_1")
	l.CheckAndConsume(200, ActionFavorite, "")

	// Idle quá 2 lần window dài nhất (publish 60s -> ngưỡng 120s)
	*clock = clock.Add(121 * time.Second)
	l.CheckAndConsume(300, ActionComment, "post_9")

	removed := l.sweep()
	if removed != 2 {
		t.Fatalf("Phải dọn 2 cửa sổ idle, nhận %d", removed)
	}

	stats := l.Stats()
	if stats["windows"].(int) != 1 {
		t.Fatalf("Phải còn 1 cửa sổ đang hoạt động, nhận %v", stats["windows"])
	}
}
