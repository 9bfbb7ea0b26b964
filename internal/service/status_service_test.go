package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusService_Status(t *testing.T) {
	nodes := newTestNodeService(t)
	ctx := context.Background()
	_, err := nodes.Create(ctx, &dto.NodeCreateRequest{ID: "root"})
	require.NoError(t, err)

	start := time.Now().Add(-time.Minute)
	svc := NewStatusService(nodes, start, nil).(*statusService)
	svc.sample = 0

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Nodes)
	assert.Equal(t, start, st.StartTime)
	assert.GreaterOrEqual(t, st.Uptime, 60.0)
	assert.Positive(t, st.Runtime.NumGoroutine)
	assert.Equal(t, int32(os.Getpid()), st.Process.PID)
}

func TestStatusService_CountError(t *testing.T) {
	svc := NewStatusService(NewNodeService(failingNodeRepo{}, nil), time.Now(), nil)
	_, err := svc.Status(context.Background())
	assert.Error(t, err)
}
