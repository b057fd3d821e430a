package idempotency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCache(ttl time.Duration) (*Cache, *time.Time) {
	c := NewCache(ttl)
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }
	return c, &current
}

func TestRunOnce_ExecutesFirstCall(t *testing.T) {
	c, _ := newTestCache(0)

	executed, result, err := c.RunOnce(context.Background(), "match:100:post_1", 0, func(ctx context.Context) (interface{}, error) {
		return "created", nil
	})
	if err != nil {
		t.Fatalf("Lỗi không mong đợi: %v", err)
	}
	if !executed {
		t.Fatal("Lần gọi đầu tiên phải thực thi op")
	}
	if result != "created" {
		t.Fatalf("Kết quả phải là 'created', nhận %v", result)
	}
}

func TestRunOnce_DuplicateReturnsCachedResult(t *testing.T) {
	c, _ := newTestCache(0)

	calls := 0
	op := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	c.RunOnce(context.Background(), "favorite:100:post_1", 0, op)
	executed, result, err := c.RunOnce(context.Background(), "favorite:100:post_1", 0, op)
	if err != nil {
		t.Fatalf("Lỗi không mong đợi: %v", err)
	}
	if executed {
		t.Fatal("Duplicate không được thực thi op lần nữa")
	}
	if result != 1 {
		t.Fatalf("Duplicate phải nhận kết quả cached, nhận %v", result)
	}
	if calls != 1 {
		t.Fatalf("Op chỉ được gọi 1 lần, nhận %d", calls)
	}
}

func TestRunOnce_FailedOpEvicted(t *testing.T) {
	c, _ := newTestCache(0)

	opErr := errors.New("db down")
	_, _, err := c.RunOnce(context.Background(), "publish:100", 0, func(ctx context.Context) (interface{}, error) {
		return nil, opErr
	})
	if !errors.Is(err, opErr) {
		t.Fatalf("Phải trả lỗi của op, nhận %v", err)
	}
	if c.Check("publish:100") {
		t.Fatal("Key của op thất bại phải bị evict")
	}

	// Retry sau thất bại phải được thực thi lại
	executed, _, err := c.RunOnce(context.Background(), "publish:100", 0, func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || !executed {
		t.Fatalf("Retry sau thất bại phải được thực thi, executed=%v err=%v", executed, err)
	}
}

func TestRunOnce_ExpiredKeyReexecutes(t *testing.T) {
	c, clock := newTestCache(120 * time.Second)

	calls := 0
	op := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	c.RunOnce(context.Background(), "match:100:post_1", 0, op)
	*clock = clock.Add(121 * time.Second)

	executed, result, _ := c.RunOnce(context.Background(), "match:100:post_1", 0, op)
	if !executed || result != 2 {
		t.Fatalf("Key hết hạn phải được thực thi lại, executed=%v result=%v", executed, result)
	}
}

func TestRunOnce_ConcurrentDuplicatesWaitForFirst(t *testing.T) {
	c := NewCache(0)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32

	go func() {
		c.RunOnce(context.Background(), "slow", 0, func(ctx context.Context) (interface{}, error) {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return "done", nil
		})
	}()
	<-started

	var wg sync.WaitGroup
	results := make([]interface{}, 5)
	executedFlags := make([]bool, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			executed, result, _ := c.RunOnce(context.Background(), "slow", 0, func(ctx context.Context) (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				return "duplicate", nil
			})
			executedFlags[i] = executed
			results[i] = result
		}(i)
	}

	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("Op chỉ được gọi 1 lần dù có duplicate đồng thời, nhận %d", got)
	}
	for i := 0; i < 5; i++ {
		if executedFlags[i] {
			t.Fatalf("Duplicate %d không được báo executed", i)
		}
		if results[i] != "done" {
			t.Fatalf("Duplicate %d phải nhận kết quả của lần chạy đầu, nhận %v", i, results[i])
		}
	}
}

func TestRunOnce_WaitingDuplicateHonorsContext(t *testing.T) {
	c := NewCache(0)

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		c.RunOnce(context.Background(), "slow", 0, func(ctx context.Context) (interface{}, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := c.RunOnce(ctx, "slow", 0, func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Duplicate đang chờ phải tôn trọng context, nhận %v", err)
	}
}

func TestSweep_RemovesExpiredEntries(t *testing.T) {
	c, clock := newTestCache(60 * time.Second)

	c.RunOnce(context.Background(), "a", 0, func(ctx context.Context) (interface{}, error) { return nil, nil })
	c.RunOnce(context.Background(), "b", 0, func(ctx context.Context) (interface{}, error) { return nil, nil })

	*clock = clock.Add(61 * time.Second)
	c.RunOnce(context.Background(), "c", 0, func(ctx context.Context) (interface{}, error) { return nil, nil })

	removed := c.sweep()
	if removed != 2 {
		t.Fatalf("Phải dọn 2 entry hết hạn, nhận %d", removed)
	}

	stats := c.Stats()
	if stats["entries"].(int) != 1 {
		t.Fatalf("Phải còn 1 entry, nhận %v", stats["entries"])
	}
}

func TestInvalidate_AllowsReexecution(t *testing.T) {
	c, _ := newTestCache(0)

	c.RunOnce(context.Background(), "k", 0, func(ctx context.Context) (interface{}, error) { return 1, nil })
	c.Invalidate("k")

	executed, _, _ := c.RunOnce(context.Background(), "k", 0, func(ctx context.Context) (interface{}, error) { return 2, nil })
	if !executed {
		t.Fatal("Sau invalidate, key phải được thực thi lại")
	}
}
