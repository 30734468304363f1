// internal/query/client_test.go
package query

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tenderec/internal/common/errors"
	"tenderec/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	delays []time.Duration
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	return ctx.Err()
}

func createTestClient(t *testing.T) (*Client, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewClient(DefaultOptions(), logger.NewTestLogger(t)).WithClock(clock.Now, clock.Sleep)
	return c, clock
}

func countingFetcher(calls *int32, value string, err error) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		if err != nil {
			return "", err
		}
		return value, nil
	}
}

// ==========================
// Key Tests
// ==========================

func TestKey_HasPrefix(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		prefix   Key
		expected bool
	}{
		{"empty prefix matches all", Key{"company", "acme"}, Key{}, true},
		{"exact", Key{"company", "acme"}, Key{"company", "acme"}, true},
		{"operation prefix", Key{"recommendations", "acme", "PERFECT_MATCH"}, Key{"recommendations", "acme"}, true},
		{"different parameter", Key{"company", "acme"}, Key{"company", "globex"}, false},
		{"longer prefix", Key{"company"}, Key{"company", "acme"}, false},
		{"partial part does not match", Key{"company", "acme-corp"}, Key{"company", "acme"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.key.HasPrefix(tt.prefix))
		})
	}
}

func TestKey_IDIsUnambiguous(t *testing.T) {
	assert.NotEqual(t, Key{"a/b", "c"}.id(), Key{"a", "b/c"}.id())
}

// ==========================
// Freshness Tests
// ==========================

func TestFetch_CachesWhileFresh(t *testing.T) {
	c, clock := createTestClient(t)
	ctx := context.Background()
	var calls int32
	fetch := countingFetcher(&calls, "profile", nil)

	v, err := Fetch(ctx, c, Key{"company", "acme"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, "profile", v)

	clock.Advance(4*time.Minute + 59*time.Second)
	_, err = Fetch(ctx, c, Key{"company", "acme"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, c.IsFresh(Key{"company", "acme"}))

	clock.Advance(time.Second)
	assert.False(t, c.IsFresh(Key{"company", "acme"}))
	_, err = Fetch(ctx, c, Key{"company", "acme"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_KeysAreIndependent(t *testing.T) {
	c, _ := createTestClient(t)
	ctx := context.Background()

	a, err := Fetch(ctx, c, Key{"company", "acme"}, func(ctx context.Context) (string, error) { return "acme", nil })
	require.NoError(t, err)
	b, err := Fetch(ctx, c, Key{"company", "globex"}, func(ctx context.Context) (string, error) { return "globex", nil })
	require.NoError(t, err)

	assert.Equal(t, "acme", a)
	assert.Equal(t, "globex", b)
}

// ==========================
// Retry Tests
// ==========================

func TestFetch_RetryPolicy(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCalls int32
	}{
		{"transient failure retried twice", errors.NewStatusError("company.get", 500, ""), 3},
		{"unclassified error retried twice", stderrors.New("connection reset"), 3},
		{"not found never retried", errors.NewNotFoundError("company acme", "/companies/acme"), 1},
		{"invalid response not retried", errors.NewInvalidResponseError("company.get", stderrors.New("bad json")), 1},
		{"validation skip not retried", errors.NewValidationSkipError("company_name"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := createTestClient(t)
			var calls int32

			_, err := Fetch(context.Background(), c, Key{"company", "acme"}, countingFetcher(&calls, "", tt.err))
			require.Error(t, err)
			assert.Equal(t, tt.expectedCalls, atomic.LoadInt32(&calls))
			assert.Equal(t, errors.CodeOf(tt.err), errors.CodeOf(err))
		})
	}
}

func TestFetch_RetryBackoff(t *testing.T) {
	c, clock := createTestClient(t)
	var calls int32

	_, err := Fetch(context.Background(), c, Key{"feedback", "acme"},
		countingFetcher(&calls, "", errors.NewStatusError("feedback.list", 503, "")))
	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.delays)
}

func TestFetch_RecoversOnRetry(t *testing.T) {
	c, _ := createTestClient(t)
	var calls int32

	v, err := Fetch(context.Background(), c, Key{"tender", "Park"}, func(ctx context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", errors.NewStatusError("tender.get", 502, "")
		}
		return "details", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "details", v)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c, _ := createTestClient(t)
	var calls int32
	key := Key{"company", "unknown-co"}

	_, err := Fetch(context.Background(), c, key, countingFetcher(&calls, "", errors.NewNotFoundError("company", "")))
	require.Error(t, err)
	_, ok := c.Peek(key)
	assert.False(t, ok)

	v, err := Fetch(context.Background(), c, key, countingFetcher(&calls, "created", nil))
	require.NoError(t, err)
	assert.Equal(t, "created", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_StopsRetryingWhenCanceled(t *testing.T) {
	c, _ := createTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32

	_, err := Fetch(ctx, c, Key{"company", "acme"}, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return "", errors.NewTransientFailureError("company.get", context.Canceled)
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetry_RespectsConfiguredLimit(t *testing.T) {
	clock := &fakeClock{}
	opts := DefaultOptions()
	opts.Retry = 0
	c := NewClient(opts, nil).WithClock(clock.Now, clock.Sleep)
	var calls int32

	_, err := Fetch(context.Background(), c, Key{"x"}, countingFetcher(&calls, "", stderrors.New("down")))
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	c := NewClient(Options{RetryDelay: time.Second, MaxDelay: 3 * time.Second, Retry: 5}, nil)
	assert.Equal(t, time.Second, c.backoff(0))
	assert.Equal(t, 2*time.Second, c.backoff(1))
	assert.Equal(t, 3*time.Second, c.backoff(2))
	assert.Equal(t, 3*time.Second, c.backoff(6))
}

// ==========================
// Invalidation Tests
// ==========================

func TestInvalidate_ByPrefix(t *testing.T) {
	c, _ := createTestClient(t)
	ctx := context.Background()
	value := func(v string) func(ctx context.Context) (string, error) {
		return func(ctx context.Context) (string, error) { return v, nil }
	}

	_, _ = Fetch(ctx, c, Key{"recommendations", "acme", "PERFECT_MATCH"}, value("p"))
	_, _ = Fetch(ctx, c, Key{"recommendations", "acme", "PARTIAL_MATCH"}, value("a"))
	_, _ = Fetch(ctx, c, Key{"recommendations", "globex", "PERFECT_MATCH"}, value("g"))
	_, _ = Fetch(ctx, c, Key{"feedback", "acme"}, value("f"))

	assert.Equal(t, 2, c.Invalidate(Key{"recommendations", "acme"}))
	assert.False(t, c.IsFresh(Key{"recommendations", "acme", "PERFECT_MATCH"}))
	assert.False(t, c.IsFresh(Key{"recommendations", "acme", "PARTIAL_MATCH"}))
	assert.True(t, c.IsFresh(Key{"recommendations", "globex", "PERFECT_MATCH"}))
	assert.True(t, c.IsFresh(Key{"feedback", "acme"}))

	c.Clear()
	assert.False(t, c.IsFresh(Key{"feedback", "acme"}))
}

func TestInvalidate_DuringFlightForcesRefetch(t *testing.T) {
	c, _ := createTestClient(t)
	key := Key{"feedback", "acme"}
	var calls int32

	_, err := Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		c.Invalidate(Key{"feedback"})
		return "old", nil
	})
	require.NoError(t, err)
	assert.False(t, c.IsFresh(key))

	v, err := Fetch(context.Background(), c, key, countingFetcher(&calls, "new", nil))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestMutate_InvalidatesOnSuccessOnly(t *testing.T) {
	c, _ := createTestClient(t)
	ctx := context.Background()
	key := Key{"feedback", "acme"}
	_, _ = Fetch(ctx, c, key, func(ctx context.Context) (string, error) { return "list", nil })

	_, err := Mutate(ctx, c, func(ctx context.Context) (string, error) {
		return "", errors.NewStatusError("feedback.create", 500, "")
	}, key)
	require.Error(t, err)
	assert.True(t, c.IsFresh(key), "failed mutation keeps the cache")

	v, err := Mutate(ctx, c, func(ctx context.Context) (string, error) { return "created", nil }, key)
	require.NoError(t, err)
	assert.Equal(t, "created", v)
	assert.False(t, c.IsFresh(key))
}

// ==========================
// Concurrency Tests
// ==========================

func TestFetch_DeduplicatesConcurrentCalls(t *testing.T) {
	c, _ := createTestClient(t)
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		once.Do(func() { close(started) })
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = Fetch(context.Background(), c, Key{"company", "acme"}, fetch)
	}()
	<-started
	for i := 1; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, Key{"company", "acme"}, fetch)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "shared", r)
	}
}
