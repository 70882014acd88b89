package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLocalLocker_SerialisesSameKey(t *testing.T) {
	l := NewLocalLocker()
	var inside, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.Acquire(context.Background(), "2526")
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak)
}

func TestLocalLocker_GivesUpWhenContextEnds(t *testing.T) {
	l := NewLocalLocker()
	release := l.Acquire(context.Background(), "k")
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	l.Acquire(ctx, "k")()
	assert.Less(t, time.Since(start), time.Second)

	other := l.Acquire(context.Background(), "other")
	other()
	other()
}

func TestRedisLocker_FallsBackToLocalLockWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	l := NewRedisLocker(rdb, time.Second, zap.NewNop())

	release := l.Acquire(context.Background(), "invoice-number:2526")

	acquired := make(chan func(), 1)
	go func() {
		acquired <- l.Acquire(context.Background(), "invoice-number:2526")
	}()

	select {
	case <-acquired:
		t.Fatal("second holder entered while the first still held the key")
	case <-time.After(150 * time.Millisecond):
	}

	other := l.Acquire(context.Background(), "invoice-number:2627")
	other()

	release()
	select {
	case second := <-acquired:
		second()
	case <-time.After(2 * time.Second):
		t.Fatal("second holder never acquired the released key")
	}
}
