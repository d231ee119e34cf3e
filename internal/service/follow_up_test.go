package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
	"claimdesk/internal/service"
)

func runDispatcher(t *testing.T, d *service.FollowUpDispatcher) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestFollowUpDispatcher_RunsHandlersInOrder(t *testing.T) {
	d := service.NewFollowUpDispatcher(service.FollowUpConfig{Workers: 1})

	calls := make(chan string, 2)
	d.Register(domain.FollowUpClaimMaterialized, func(context.Context, domain.FollowUpTask) error {
		calls <- "audit"
		return nil
	})
	d.Register(domain.FollowUpClaimMaterialized, func(context.Context, domain.FollowUpTask) error {
		calls <- "notify"
		return nil
	})
	runDispatcher(t, d)

	require.NoError(t, d.Dispatch(domain.FollowUpTask{Kind: domain.FollowUpClaimMaterialized, ClaimID: uuid.New()}))

	for _, want := range []string{"audit", "notify"} {
		select {
		case got := <-calls:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("handler %s did not run", want)
		}
	}
	assert.Empty(t, d.Failed())
}

func TestFollowUpDispatcher_RetriesThenRecordsFailure(t *testing.T) {
	d := service.NewFollowUpDispatcher(service.FollowUpConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})

	var attempts int32
	d.Register(domain.FollowUpClaimMaterialized, func(context.Context, domain.FollowUpTask) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("downstream unavailable")
	})
	runDispatcher(t, d)

	claimID := uuid.New()
	require.NoError(t, d.Dispatch(domain.FollowUpTask{Kind: domain.FollowUpClaimMaterialized, ClaimID: claimID}))

	require.Eventually(t, func() bool { return len(d.Failed()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))

	failed := d.Failed()[0]
	assert.Equal(t, claimID, failed.ClaimID)
	assert.Equal(t, 3, failed.Attempt)
}

func TestFollowUpDispatcher_RecoversAfterRetry(t *testing.T) {
	d := service.NewFollowUpDispatcher(service.FollowUpConfig{Workers: 1, MaxRetries: 3})

	done := make(chan int, 1)
	var attempts int32
	d.Register(domain.FollowUpPolicyUpdated, func(_ context.Context, task domain.FollowUpTask) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("flaky")
		}
		done <- task.Attempt
		return nil
	})
	runDispatcher(t, d)

	require.NoError(t, d.Dispatch(domain.FollowUpTask{Kind: domain.FollowUpPolicyUpdated}))

	select {
	case attempt := <-done:
		assert.Equal(t, 2, attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not succeed")
	}
	assert.Empty(t, d.Failed())
}

func TestFollowUpDispatcher_FullBuffer(t *testing.T) {
	d := service.NewFollowUpDispatcher(service.FollowUpConfig{Buffer: 1})

	require.NoError(t, d.Dispatch(domain.FollowUpTask{Kind: domain.FollowUpClaimMaterialized}))
	assert.ErrorIs(t, d.Dispatch(domain.FollowUpTask{Kind: domain.FollowUpClaimMaterialized}), service.ErrFollowUpQueueFull)
}

func TestFollowUpDispatcher_StoppedRejects(t *testing.T) {
	d := service.NewFollowUpDispatcher(service.FollowUpConfig{})
	cancel := runDispatcher(t, d)
	cancel()

	assert.Eventually(t, func() bool {
		return errors.Is(d.Dispatch(domain.FollowUpTask{Kind: domain.FollowUpClaimMaterialized}), domain.ErrQueueStopped)
	}, time.Second, 5*time.Millisecond)
}
