// Package antispam hiện thực rate limiter dạng sliding window cho các
// tương tác của bot. Mỗi (user, action, scope) giữ một cửa sổ timestamp;
// check-and-consume là thao tác nguyên tử dưới mutex. Instance được inject
// qua constructor, không có singleton ở mức package.
package antispam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// Các action được giới hạn tần suất. Action không có trong config
// dùng giới hạn mặc định.
const (
	ActionComment  = "comment"
	ActionMediaNav = "media_nav"
	ActionMatch    = "match"
	ActionFavorite = "favorite"
	ActionPublish  = "publish"
)

// Limit là giới hạn tần suất cho một action: tối đa Max lần trong Window
type Limit struct {
	Max    int           // Số lần tối đa trong window
	Window time.Duration // Độ dài window
}

// DefaultLimits trả về giới hạn mặc định cho từng action
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		ActionComment:  {Max: 1, Window: 10 * time.Second},
		ActionMediaNav: {Max: 5, Window: 1 * time.Second},
		ActionMatch:    {Max: 1, Window: 30 * time.Second},
		ActionFavorite: {Max: 1, Window: 5 * time.Second},
		ActionPublish:  {Max: 1, Window: 60 * time.Second},
	}
}

// defaultLimit áp dụng cho action không có config riêng
var defaultLimit = Limit{Max: 3, Window: 5 * time.Second}

// window giữ các timestamp trong cửa sổ trượt của một key
type window struct {
	hits     []time.Time // Timestamp các lần consume, cũ nhất đứng đầu
	lastSeen time.Time   // Lần cuối key được chạm tới (cho sweep)
}

// Limiter là rate limiter sliding window, an toàn cho concurrent use.
// Không giữ lock khi gọi ra ngoài - mọi thao tác map đều ngắn.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]Limit
	windows map[string]*window

	sweepInterval time.Duration
	cancelSweep   context.CancelFunc
	doneSweep     chan struct{}

	// now cho phép test điều khiển thời gian
	now func() time.Time
}

// NewLimiter tạo limiter với giới hạn mặc định.
// overrides ghi đè giới hạn cho từng action (Max <= 0 hoặc Window <= 0 bị bỏ qua).
func NewLimiter(overrides map[string]Limit) *Limiter {
	limits := DefaultLimits()
	for action, l := range overrides {
		if l.Max > 0 && l.Window > 0 {
			limits[action] = l
		}
	}
	return &Limiter{
		limits:        limits,
		windows:       make(map[string]*window),
		sweepInterval: 5 * time.Minute,
		now:           time.Now,
	}
}

// key ghép định danh cửa sổ: user + action + scope.
// scopeKey cho phép giới hạn theo cặp (user, post) hay (user, tác giả).
func key(userID int64, action, scopeKey string) string {
	return fmt.Sprintf("%d|%s|%s", userID, action, scopeKey)
}

// limitFor trả về giới hạn áp dụng cho action
func (l *Limiter) limitFor(action string) Limit {
	if lim, ok := l.limits[action]; ok {
		return lim
	}
	return defaultLimit
}

// CheckAndConsume kiểm tra và tiêu thụ một slot trong cửa sổ.
// Trả về (true, 0) nếu còn slot - slot được ghi nhận ngay.
// Trả về (false, retryAfter) nếu đã chạm giới hạn - không ghi nhận gì,
// retryAfter là thời gian đến khi timestamp cũ nhất rời khỏi window.
func (l *Limiter) CheckAndConsume(userID int64, action, scopeKey string) (bool, time.Duration) {
	lim := l.limitFor(action)
	now := l.now()
	k := key(userID, action, scopeKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[k]
	if !ok {
		w = &window{}
		l.windows[k] = w
	}
	w.lastSeen = now

	// Loại bỏ các timestamp đã rời khỏi window (FIFO, cũ nhất đứng đầu)
	cutoff := now.Add(-lim.Window)
	idx := 0
	for idx < len(w.hits) && !w.hits[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		w.hits = append(w.hits[:0], w.hits[idx:]...)
	}

	if len(w.hits) >= lim.Max {
		retryAfter := w.hits[0].Add(lim.Window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}

	w.hits = append(w.hits, now)
	return true, 0
}

// CheckOnly kiểm tra như CheckAndConsume nhưng không tiêu thụ slot
// và không thay đổi trạng thái cửa sổ.
func (l *Limiter) CheckOnly(userID int64, action, scopeKey string) (bool, time.Duration) {
	lim := l.limitFor(action)
	now := l.now()
	k := key(userID, action, scopeKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[k]
	if !ok {
		return true, 0
	}

	// Đếm trên bản sao logic: chỉ đếm các hit còn trong window, không cắt slice
	cutoff := now.Add(-lim.Window)
	live := 0
	var oldest time.Time
	for _, h := range w.hits {
		if h.After(cutoff) {
			if live == 0 {
				oldest = h
			}
			live++
		}
	}

	if live >= lim.Max {
		retryAfter := oldest.Add(lim.Window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter
	}
	return true, 0
}

// Reset xóa cửa sổ của một (user, action, scope)
func (l *Limiter) Reset(userID int64, action, scopeKey string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key(userID, action, scopeKey))
}

// ClearAll xóa toàn bộ cửa sổ
func (l *Limiter) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
}

// Stats trả về thống kê hiện tại của limiter
func (l *Limiter) Stats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	totalHits := 0
	for _, w := range l.windows {
		totalHits += len(w.hits)
	}
	return map[string]interface{}{
		"windows":    len(l.windows),
		"total_hits": totalHits,
	}
}

// maxWindow trả về window dài nhất trong config (cho ngưỡng sweep)
func (l *Limiter) maxWindow() time.Duration {
	max := defaultLimit.Window
	for _, lim := range l.limits {
		if lim.Window > max {
			max = lim.Window
		}
	}
	return max
}

// Start chạy background sweep loại bỏ các cửa sổ không hoạt động.
// Cửa sổ bị xóa khi idle quá 2 lần window dài nhất. Chặn đến khi ctx bị hủy
// hoặc Stop được gọi - caller tự chạy trong goroutine.
func (l *Limiter) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	sweepCtx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancelSweep = cancel
	l.doneSweep = make(chan struct{})
	done := l.doneSweep
	l.mu.Unlock()
	defer close(done)

	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": l.sweepInterval.String(),
	}).Info("🛡️ [ANTISPAM] Starting sweep loop...")

	for {
		select {
		case <-sweepCtx.Done():
			log.Info("🛡️ [ANTISPAM] Sweep loop stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🛡️ [ANTISPAM] Panic khi sweep, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()
				removed := l.sweep()
				if removed > 0 {
					log.WithFields(map[string]interface{}{
						"removed": removed,
					}).Debug("🛡️ [ANTISPAM] Đã dọn cửa sổ không hoạt động")
				}
			}()
		}
	}
}

// Stop dừng sweep loop và chờ nó thoát
func (l *Limiter) Stop() {
	l.mu.Lock()
	cancel := l.cancelSweep
	done := l.doneSweep
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// sweep xóa các cửa sổ idle quá ngưỡng, trả về số cửa sổ đã xóa
func (l *Limiter) sweep() int {
	threshold := 2 * l.maxWindow()
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, w := range l.windows {
		if now.Sub(w.lastSeen) > threshold {
			delete(l.windows, k)
			removed++
		}
	}
	return removed
}
