package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbl8/tsflow/tstime"
)

func TestSimulationClockAdvancesToScheduledTime(t *testing.T) {
	t.Parallel()
	c := NewSimulationClock(10)
	require.Equal(t, tstime.Time(10), c.EvaluationTime())

	c.UpdateNextScheduledEvaluationTime(50)
	c.UpdateNextScheduledEvaluationTime(30)
	require.Equal(t, tstime.Time(30), c.NextScheduledEvaluationTime())

	c.AdvanceToNextScheduledTime()
	require.Equal(t, tstime.Time(30), c.EvaluationTime())
	require.Equal(t, tstime.MaxDT, c.NextScheduledEvaluationTime())
}

func TestSimulationClockNowTracksEvaluationTime(t *testing.T) {
	t.Parallel()
	c := NewSimulationClock(0)
	c.SetEvaluationTime(1000)
	require.Equal(t, int64(1000), c.Now().UnixNano())
}

func TestSimulationClockPushSchedulingFlag(t *testing.T) {
	t.Parallel()
	c := NewSimulationClock(0)
	require.False(t, c.PushNodeRequiresScheduling())
	c.MarkPushNodeRequiresScheduling()
	require.True(t, c.PushNodeRequiresScheduling())
	c.ResetPushNodeRequiresScheduling()
	require.False(t, c.PushNodeRequiresScheduling())
}

func TestRealTimeClockAdvanceReturnsOncePastScheduledTime(t *testing.T) {
	t.Parallel()
	c := NewRealTimeClock(time.Millisecond)
	c.UpdateNextScheduledEvaluationTime(tstime.Time(time.Now().Add(5 * time.Millisecond).UnixNano()))

	done := make(chan struct{})
	go func() {
		c.AdvanceToNextScheduledTime()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AdvanceToNextScheduledTime did not return")
	}
}

func TestRealTimeClockPushSignalUnblocksAdvance(t *testing.T) {
	t.Parallel()
	c := NewRealTimeClock(time.Millisecond)
	c.UpdateNextScheduledEvaluationTime(tstime.MaxDT)

	done := make(chan struct{})
	go func() {
		c.AdvanceToNextScheduledTime()
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	c.MarkPushNodeRequiresScheduling()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AdvanceToNextScheduledTime did not return after push signal")
	}
}

func TestAlarmSetFiresAndCancels(t *testing.T) {
	t.Parallel()
	a := NewAlarmSet()
	fired := false
	a.Set(5, "x", func() { fired = true })
	a.fireDue(10)
	require.True(t, fired)

	fired = false
	a.Set(100, "y", func() { fired = true })
	a.Cancel("y")
	a.fireDue(1000)
	require.False(t, fired)
}
