package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestContextConcurrentAccess tests that context values can be safely accessed concurrently.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(WithSuppressHeader(context.Background()), 12345)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			runID, ok := getRunID(ctx)
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d", i)
			assert.True(t, ok, "goroutine %d", i)
			assert.Equal(t, int64(12345), runID, "goroutine %d", i)
		})
	}
	wg.Wait()
}

// TestContextIsolation tests that different contexts maintain isolation.
func TestContextIsolation(t *testing.T) {
	base := context.Background()
	ctx1 := withRunID(base, 1)
	ctx2 := WithSuppressHeader(base)

	id, ok := getRunID(ctx1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.False(t, shouldSuppressHeader(ctx1))

	id, ok = getRunID(ctx2)
	assert.False(t, ok)
	assert.Zero(t, id)
	assert.True(t, shouldSuppressHeader(ctx2))

	assert.False(t, shouldSuppressHeader(base))
}
