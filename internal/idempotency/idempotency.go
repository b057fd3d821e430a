// Package idempotency chống thực thi trùng lặp cho các thao tác của bot.
// Mỗi key chỉ được chạy một lần trong TTL; duplicate đồng thời chờ kết quả
// của lần chạy đầu tiên thay vì chạy lại. Thao tác thất bại bị evict ngay
// để user có thể thử lại.
package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/techiaemp-netizen/LiberALL-Bot-sub000/internal/logger"
)

// entry là một bản ghi trong cache
type entry struct {
	done      chan struct{} // Đóng khi thao tác hoàn tất
	result    interface{}
	err       error
	expiresAt time.Time
}

// Cache là idempotency cache in-memory, an toàn cho concurrent use.
// Instance được inject qua constructor, không có singleton ở mức package.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	defaultTTL time.Duration

	sweepInterval time.Duration
	cancelSweep   context.CancelFunc
	doneSweep     chan struct{}

	// now cho phép test điều khiển thời gian
	now func() time.Time
}

// NewCache tạo cache với TTL mặc định. defaultTTL <= 0 dùng 120 giây.
func NewCache(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 120 * time.Second
	}
	return &Cache{
		entries:       make(map[string]*entry),
		defaultTTL:    defaultTTL,
		sweepInterval: 60 * time.Second,
		now:           time.Now,
	}
}

// RunOnce thực thi op nếu key chưa có trong cache.
// Trả về (true, result, err) nếu op vừa được chạy trong lần gọi này.
// Trả về (false, result, err) nếu key đã có - result/err lấy từ lần chạy
// trước; nếu lần chạy trước còn đang thực thi thì chờ nó xong.
// ttl <= 0 dùng TTL mặc định. Thao tác thất bại bị evict để cho phép retry.
func (c *Cache) RunOnce(ctx context.Context, key string, ttl time.Duration, op func(ctx context.Context) (interface{}, error)) (bool, interface{}, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.expiresAt.After(now) {
		c.mu.Unlock()
		// Duplicate: chờ lần chạy đầu tiên hoàn tất rồi trả kết quả của nó
		select {
		case <-e.done:
			return false, e.result, e.err
		case <-ctx.Done():
			return false, nil, ctx.Err()
		}
	}

	// Đặt marker in-flight trước khi nhả lock để duplicate đồng thời thấy được
	e := &entry{
		done:      make(chan struct{}),
		expiresAt: now.Add(ttl),
	}
	c.entries[key] = e
	c.mu.Unlock()

	result, err := op(ctx)

	c.mu.Lock()
	e.result = result
	e.err = err
	if err != nil {
		// Thất bại không được ghi nhớ - evict để user thử lại
		if c.entries[key] == e {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
	close(e.done)

	return true, result, err
}

// Check báo key có đang được ghi nhớ (chưa hết hạn) hay không
func (c *Cache) Check(key string) bool {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.expiresAt.After(now)
}

// Invalidate xóa một key khỏi cache
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear xóa toàn bộ cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Stats trả về thống kê hiện tại của cache
func (c *Cache) Stats() map[string]interface{} {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	live := 0
	for _, e := range c.entries {
		if e.expiresAt.After(now) {
			live++
		}
	}
	return map[string]interface{}{
		"entries":     len(c.entries),
		"live":        live,
		"default_ttl": c.defaultTTL.String(),
	}
}

// Start chạy background sweep dọn các entry hết hạn.
// Chặn đến khi ctx bị hủy hoặc Stop được gọi - caller tự chạy trong goroutine.
func (c *Cache) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	sweepCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelSweep = cancel
	c.doneSweep = make(chan struct{})
	done := c.doneSweep
	c.mu.Unlock()
	defer close(done)

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":    c.sweepInterval.String(),
		"default_ttl": c.defaultTTL.String(),
	}).Info("🔁 [IDEMPOTENCY] Starting sweep loop...")

	for {
		select {
		case <-sweepCtx.Done():
			log.Info("🔁 [IDEMPOTENCY] Sweep loop stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🔁 [IDEMPOTENCY] Panic khi sweep, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()
				removed := c.sweep()
				if removed > 0 {
					log.WithFields(map[string]interface{}{
						"removed": removed,
					}).Debug("🔁 [IDEMPOTENCY] Đã dọn entry hết hạn")
				}
			}()
		}
	}
}

// Stop dừng sweep loop và chờ nó thoát
func (c *Cache) Stop() {
	c.mu.Lock()
	cancel := c.cancelSweep
	done := c.doneSweep
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// sweep xóa các entry hết hạn đã hoàn tất, trả về số entry đã xóa.
// Entry in-flight (done chưa đóng) được giữ lại dù quá hạn.
func (c *Cache) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if !e.expiresAt.After(now) {
			select {
			case <-e.done:
				delete(c.entries, k)
				removed++
			default:
				// Còn đang thực thi, để lần sweep sau
			}
		}
	}
	return removed
}
