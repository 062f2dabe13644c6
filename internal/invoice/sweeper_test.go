package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweeperStartValidatesSchedule(t *testing.T) {
	svc, _ := newTestService(t)

	s := &Sweeper{Svc: svc, Schedule: "not a schedule", Log: zap.NewNop()}
	assert.Error(t, s.Start(context.Background()))

	s = &Sweeper{Svc: svc, Schedule: "", Log: zap.NewNop()}
	assert.NoError(t, s.Start(context.Background()), "empty schedule disables the sweeper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s = &Sweeper{Svc: svc, Schedule: "@every 1h", Log: zap.NewNop()}
	require.NoError(t, s.Start(ctx))
}
