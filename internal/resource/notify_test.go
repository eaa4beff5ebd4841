package resource_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"boqtrack/internal/resource"
)

func TestNotifier_ReplaceNotAppend(t *testing.T) {
	n := resource.NewNotifier(time.Minute)

	n.Success("saved")
	n.Error("save failed")

	msg, ok := n.Current()
	require.True(t, ok)
	require.Equal(t, "save failed", msg.Text)
	require.Equal(t, resource.KindError, msg.Kind)
}

func TestNotifier_AutoExpires(t *testing.T) {
	n := resource.NewNotifier(30 * time.Millisecond)

	n.Success("saved")
	_, ok := n.Current()
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestNotifier_ReplacementOutlivesOldTimer(t *testing.T) {
	n := resource.NewNotifier(30 * time.Millisecond)

	n.Success("first")
	time.Sleep(15 * time.Millisecond)
	n.ShowFor("second", resource.KindSuccess, time.Minute)

	// The first message's expiry must not clear its replacement.
	time.Sleep(40 * time.Millisecond)
	msg, ok := n.Current()
	require.True(t, ok)
	require.Equal(t, "second", msg.Text)
}

func TestNotifier_Clear(t *testing.T) {
	n := resource.NewNotifier(time.Minute)
	n.Success("saved")
	n.Clear()
	_, ok := n.Current()
	require.False(t, ok)
}
