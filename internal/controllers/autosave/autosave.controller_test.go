package autosaveController

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(save SaveFunc) *Controller {
	return New(time.Hour, save, nil)
}

func countingSave(count *atomic.Int32, err error) SaveFunc {
	return func(ctx context.Context) error {
		count.Add(1)
		return err
	}
}

func TestController_StartsClean(t *testing.T) {
	c := newTestController(func(ctx context.Context) error { return nil })

	status := c.Status()
	assert.Equal(t, StateClean, status.State)
	assert.True(t, status.Online)
	assert.True(t, status.LastSaved.IsZero())
}

func TestController_MarkDirty(t *testing.T) {
	c := newTestController(func(ctx context.Context) error { return nil })

	c.MarkDirty()
	assert.Equal(t, StateDirty, c.Status().State)
}

func TestController_FlushSavesWhenDirty(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.MarkDirty()
	c.Flush(context.Background())

	assert.Equal(t, int32(1), saves.Load())
	status := c.Status()
	assert.Equal(t, StateClean, status.State)
	assert.False(t, status.LastSaved.IsZero())
}

func TestController_FlushSkippedWhenClean(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.Flush(context.Background())
	assert.Zero(t, saves.Load())
}

func TestController_StepChangeSavesImmediately(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.StepChanged(context.Background())

	assert.Equal(t, int32(1), saves.Load())
	assert.Equal(t, StateClean, c.Status().State)
}

func TestController_VisibilityHiddenSavesOnlyWhenDirty(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.VisibilityHidden(context.Background())
	assert.Zero(t, saves.Load())

	c.MarkDirty()
	c.VisibilityHidden(context.Background())
	assert.Equal(t, int32(1), saves.Load())
}

func TestController_FailedSaveStaysDirty(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, errors.New("store unavailable")))

	c.MarkDirty()
	c.Flush(context.Background())

	status := c.Status()
	assert.Equal(t, StateDirty, status.State)
	assert.Equal(t, "store unavailable", status.LastError)
	assert.True(t, status.LastSaved.IsZero())

	// The next trigger retries.
	c.Flush(context.Background())
	assert.Equal(t, int32(2), saves.Load())
}

func TestController_OfflineSuppressesSaves(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.SetOnline(context.Background(), false)
	c.MarkDirty()
	c.Flush(context.Background())
	c.StepChanged(context.Background())
	c.VisibilityHidden(context.Background())

	assert.Zero(t, saves.Load())
	assert.Equal(t, StateDirty, c.Status().State)
}

func TestController_OnlineEdgeResavesPendingChanges(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.SetOnline(context.Background(), false)
	c.MarkDirty()
	c.SetOnline(context.Background(), true)

	assert.Equal(t, int32(1), saves.Load())
	assert.Equal(t, StateClean, c.Status().State)
}

func TestController_OnlineEdgeWithoutPendingDoesNotSave(t *testing.T) {
	var saves atomic.Int32
	c := newTestController(countingSave(&saves, nil))

	c.SetOnline(context.Background(), false)
	c.SetOnline(context.Background(), true)

	assert.Zero(t, saves.Load())
}

func TestController_DirtyDuringSaveStaysDirty(t *testing.T) {
	var c *Controller
	c = newTestController(func(ctx context.Context) error {
		// A field change lands while the save is in flight.
		c.MarkDirty()
		return nil
	})

	c.MarkDirty()
	c.Flush(context.Background())

	assert.Equal(t, StateDirty, c.Status().State)
}

func TestController_PeriodicSave(t *testing.T) {
	var saves atomic.Int32
	c := New(10*time.Millisecond, countingSave(&saves, nil), nil)
	c.Start()
	defer c.Stop()

	c.MarkDirty()

	require.Eventually(t, func() bool {
		return saves.Load() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateClean, c.Status().State)
}

func TestController_StatusCallback(t *testing.T) {
	var transitions []SaveState
	c := New(time.Hour, func(ctx context.Context) error { return nil }, func(s Status) {
		transitions = append(transitions, s.State)
	})

	c.MarkDirty()
	c.Flush(context.Background())

	assert.Equal(t, []SaveState{StateDirty, StateSaving, StateClean}, transitions)
}

func TestController_StopIsIdempotent(t *testing.T) {
	c := newTestController(func(ctx context.Context) error { return nil })
	c.Start()
	c.Stop()
	c.Stop()
}
