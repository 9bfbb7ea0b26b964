package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPLimiter_BucketPerKey(t *testing.T) {
	l := NewIPLimiter(BucketRule{FillInterval: time.Hour, Capacity: 2})

	a, ok := l.GetBucket("10.0.0.1")
	require.True(t, ok)
	assert.Equal(t, int64(1), a.TakeAvailable(1))
	assert.Equal(t, int64(1), a.TakeAvailable(1))
	assert.Zero(t, a.TakeAvailable(1))

	again, _ := l.GetBucket("10.0.0.1")
	assert.Same(t, a, again)

	b, _ := l.GetBucket("10.0.0.2")
	assert.Equal(t, int64(1), b.TakeAvailable(1))
}
