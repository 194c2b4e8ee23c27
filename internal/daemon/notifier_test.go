package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notext/internal/model"
)

func TestInternalNotifier_PostsThroughSubmit(t *testing.T) {
	d, _ := newTestDaemon(t, time.Hour)
	n := NewInternalNotifier(d.Notify, nil)

	require.True(t, n.NotifyConfigReloaded())

	list := d.List()
	require.Len(t, list, 1)
	assert.Equal(t, "notextd", list[0].AppName)
	assert.Equal(t, "Configuration Reloaded", list[0].Summary)
	assert.Equal(t, int32(5000), list[0].ExpireTimeout)
}

func TestInternalNotifier_RateLimitsPerKey(t *testing.T) {
	var got []model.Submission
	n := NewInternalNotifier(func(s model.Submission) (uint32, error) {
		got = append(got, s)
		return uint32(len(got)), nil
	}, nil)
	n.SetMinInterval(time.Hour)

	assert.True(t, n.NotifyConfigReloaded())
	assert.False(t, n.NotifyConfigReloaded())
	assert.True(t, n.NotifyConfigError(errors.New("bad position")))

	require.Len(t, got, 2)
	assert.Equal(t, "Failed to reload configuration: bad position", got[1].Body)
}

func TestInternalNotifier_Disabled(t *testing.T) {
	called := false
	n := NewInternalNotifier(func(model.Submission) (uint32, error) {
		called = true
		return 1, nil
	}, nil)
	n.SetEnabled(false)

	assert.False(t, n.Notify("k", "s", "b"))
	assert.False(t, called)
}

func TestInternalNotifier_SubmitError(t *testing.T) {
	n := NewInternalNotifier(func(model.Submission) (uint32, error) {
		return 0, errors.New("boom")
	}, nil)

	assert.False(t, n.Notify("k", "s", "b"))
}

func TestInternalNotifier_SameIntervalKeepsLimiters(t *testing.T) {
	posted := 0
	n := NewInternalNotifier(func(model.Submission) (uint32, error) {
		posted++
		return uint32(posted), nil
	}, nil)
	n.SetMinInterval(time.Hour)

	assert.True(t, n.NotifyConfigReloaded())
	n.SetMinInterval(time.Hour)
	assert.False(t, n.NotifyConfigReloaded(), "reapplying the same interval must not reset the limit")

	n.SetMinInterval(2 * time.Hour)
	assert.True(t, n.NotifyConfigReloaded())
	assert.Equal(t, 2, posted)
}
