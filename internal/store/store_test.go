package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-relay/internal/domain/asset"
	relay_errors "asset-relay/pkg/errors"
)

func newTestStore(capacity int64, policy Policy) *ContentStore {
	return New(Config{CapacityBytes: capacity, Policy: policy}, nil)
}

func record(id string, size int, ttl time.Duration) asset.Record {
	rec := asset.Record{
		ID:          id,
		Payload:     make([]byte, size),
		ContentType: "image/png",
		CreatedAt:   time.Now(),
	}
	if ttl != 0 {
		rec.ExpiresAt = time.Now().Add(ttl)
	}
	return rec
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	rec := asset.Record{ID: "a", Payload: payload, ContentType: "image/png", CreatedAt: time.Now()}
	require.NoError(t, s.Put(rec))

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, int64(10), got.SizeBytes)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)
	require.NoError(t, s.Put(record("a", 4, 0)))

	got, err := s.Get("a")
	require.NoError(t, err)
	got.Payload[0] = 0xFF

	again, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, byte(0), again.Payload[0])
}

func TestGetUnknownID(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)
	for i := 0; i < 3; i++ {
		_, err := s.Get("doesnotexist")
		assert.ErrorIs(t, err, relay_errors.ErrNotFound)
	}
}

func TestGetExpiredRecord(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)
	require.NoError(t, s.Put(record("a", 8, -time.Second)))

	_, err := s.Get("a")
	assert.ErrorIs(t, err, relay_errors.ErrNotFound)
}

func TestPutPayloadLargerThanCapacity(t *testing.T) {
	s := newTestStore(16, PolicyOldest)
	require.NoError(t, s.Put(record("a", 8, 0)))

	err := s.Put(record("big", 32, 0))
	assert.ErrorIs(t, err, relay_errors.ErrCapacityExceeded)

	// The failed insert must leave existing data untouched.
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(8), s.TotalBytes())
}

func TestEvictionIsAgeOrdered(t *testing.T) {
	s := newTestStore(30, PolicyOldest)
	require.NoError(t, s.Put(record("first", 10, 0)))
	require.NoError(t, s.Put(record("second", 10, 0)))
	require.NoError(t, s.Put(record("third", 10, 0)))

	// Needs 20 bytes of room: evicts "first" and "second", never "third".
	require.NoError(t, s.Put(record("fourth", 20, 0)))

	_, err := s.Get("first")
	assert.ErrorIs(t, err, relay_errors.ErrNotFound)
	_, err = s.Get("second")
	assert.ErrorIs(t, err, relay_errors.ErrNotFound)
	_, err = s.Get("third")
	assert.NoError(t, err)
	_, err = s.Get("fourth")
	assert.NoError(t, err)
}

func TestEvictionEvictsOnlyWhatIsNeeded(t *testing.T) {
	s := newTestStore(30, PolicyOldest)
	require.NoError(t, s.Put(record("first", 10, 0)))
	require.NoError(t, s.Put(record("second", 10, 0)))
	require.NoError(t, s.Put(record("third", 10, 0)))

	require.NoError(t, s.Put(record("fourth", 10, 0)))

	_, err := s.Get("first")
	assert.ErrorIs(t, err, relay_errors.ErrNotFound)
	_, err = s.Get("second")
	assert.NoError(t, err)
	assert.Equal(t, int64(30), s.TotalBytes())
}

func TestEvictionPrefersExpiredRecords(t *testing.T) {
	s := newTestStore(20, PolicyOldest)
	require.NoError(t, s.Put(record("expired", 10, time.Nanosecond)))
	require.NoError(t, s.Put(record("live", 10, time.Hour)))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, s.Put(record("new", 10, time.Hour)))

	// The expired record made room; the live one survives even though it
	// is older than the insert.
	_, err := s.Get("live")
	assert.NoError(t, err)
}

func TestLRUEvictionOrder(t *testing.T) {
	s := newTestStore(30, PolicyLRU)
	require.NoError(t, s.Put(record("a", 10, 0)))
	require.NoError(t, s.Put(record("b", 10, 0)))
	require.NoError(t, s.Put(record("c", 10, 0)))

	// Touch "a" so "b" becomes the least recently used.
	time.Sleep(time.Millisecond)
	_, err := s.Get("a")
	require.NoError(t, err)

	require.NoError(t, s.Put(record("d", 10, 0)))

	_, err = s.Get("b")
	assert.ErrorIs(t, err, relay_errors.ErrNotFound)
	_, err = s.Get("a")
	assert.NoError(t, err)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)
	require.NoError(t, s.Put(record("a", 8, 0)))

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))
	assert.Equal(t, int64(0), s.TotalBytes())
}

func TestEvictExpiredCount(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)
	require.NoError(t, s.Put(record("a", 8, -time.Second)))
	require.NoError(t, s.Put(record("b", 8, -time.Second)))
	require.NoError(t, s.Put(record("c", 8, time.Hour)))

	assert.Equal(t, 2, s.EvictExpired())
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(8), s.TotalBytes())
}

func TestReinsertSameIDReplaces(t *testing.T) {
	s := newTestStore(1024, PolicyOldest)
	require.NoError(t, s.Put(record("a", 8, 0)))
	require.NoError(t, s.Put(record("a", 16, 0)))

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, int64(16), s.TotalBytes())
}

func TestConcurrentPutsNeverExceedCapacity(t *testing.T) {
	const capacity = 100
	s := newTestStore(capacity, PolicyOldest)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("w%d-%d", worker, j)
				_ = s.Put(record(id, 10, 0))
				assert.LessOrEqual(t, s.TotalBytes(), int64(capacity))
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.TotalBytes(), int64(capacity))
}

func TestRunSweepIsCancellable(t *testing.T) {
	s := New(Config{CapacityBytes: 1024, SweepInterval: 5 * time.Millisecond}, nil)
	require.NoError(t, s.Put(record("a", 8, time.Millisecond)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep loop did not stop on cancel")
	}
}
