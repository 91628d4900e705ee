package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchCron(t *testing.T) {
	at := time.Date(2026, time.March, 2, 3, 0, 0, 0, time.UTC) // Monday

	cases := []struct {
		expr string
		want bool
	}{
		{"* * * * *", true},
		{"0 3 * * *", true},
		{"0 4 * * *", false},
		{"*/15 * * * *", true},
		{"0 1-5 * * 1", true},
		{"0 3 * * 0,6", false},
		{"30 3 * * *", false},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			assert.Equal(t, tc.want, matchCron(tc.expr, at))
		})
	}
}

func TestValidateCron(t *testing.T) {
	assert.NoError(t, validateCron("0 3 * * *"))
	assert.Error(t, validateCron("0 3 * *"))
	assert.Error(t, validateCron("61 * * * *"))
	assert.Error(t, validateCron("*/0 * * * *"))
	assert.Error(t, validateCron("5-1 * * * *"))
}

func TestCronRunsOncePerMinute(t *testing.T) {
	e := &entry{cronExpr: "* * * * *"}
	now := time.Date(2026, 1, 1, 10, 0, 5, 0, time.UTC)

	assert.True(t, e.due(now))
	e.lastRun = now
	assert.False(t, e.due(now.Add(30*time.Second)))
	assert.True(t, e.due(now.Add(time.Minute)))
}

func TestEveryRunsTask(t *testing.T) {
	s := New()
	s.tick = 5 * time.Millisecond

	var runs atomic.Int32
	require.NoError(t, s.Every(10*time.Millisecond).Name("tick").Run(func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRunNowAndList(t *testing.T) {
	s := New()
	boom := errors.New("boom")
	require.NoError(t, s.Cron("0 3 * * *").Name("vouchers:expire").Run(func(context.Context) error { return boom }))
	assert.Error(t, s.Cron("bad").Run(func(context.Context) error { return nil }))

	assert.Equal(t, []string{"vouchers:expire [0 3 * * *]"}, s.List())
	assert.ErrorIs(t, s.RunNow(context.Background(), "vouchers:expire"), boom)
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}
