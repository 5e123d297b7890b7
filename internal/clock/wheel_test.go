package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWheelFiresInDeadlineOrder(t *testing.T) {
	base := time.Unix(0, 0)
	mock := NewMock(base)
	w := NewWheel(mock)

	var order []int
	w.Schedule(base.Add(300*time.Millisecond), func(time.Time) { order = append(order, 3) })
	w.Schedule(base.Add(100*time.Millisecond), func(time.Time) { order = append(order, 1) })
	w.Schedule(base.Add(200*time.Millisecond), func(time.Time) { order = append(order, 2) })

	mock.Advance(250 * time.Millisecond)
	fired := w.Poll()

	require.Equal(t, 2, fired)
	require.Equal(t, []int{1, 2}, order)
	require.Equal(t, 1, w.Len())
}

func TestWheelCancel(t *testing.T) {
	mock := NewMock(time.Unix(0, 0))
	w := NewWheel(mock)

	fired := false
	id := w.Schedule(mock.Now().Add(time.Second), func(time.Time) { fired = true })
	w.Cancel(id)

	mock.Advance(2 * time.Second)
	w.Poll()

	require.False(t, fired)
}

func TestWheelReschedule(t *testing.T) {
	mock := NewMock(time.Unix(0, 0))
	w := NewWheel(mock)

	var firedAt time.Time
	id := w.Schedule(mock.Now().Add(time.Second), func(t time.Time) { firedAt = t })
	id = w.Reschedule(id, mock.Now().Add(3*time.Second))

	mock.Advance(2 * time.Second)
	require.Equal(t, 0, w.Poll())

	mock.Advance(2 * time.Second)
	require.Equal(t, 1, w.Poll())
	require.False(t, firedAt.IsZero())
	_ = id
}

func TestWheelNextDeadline(t *testing.T) {
	mock := NewMock(time.Unix(0, 0))
	w := NewWheel(mock)

	_, ok := w.NextDeadline()
	require.False(t, ok)

	deadline := mock.Now().Add(5 * time.Second)
	w.Schedule(deadline, func(time.Time) {})

	got, ok := w.NextDeadline()
	require.True(t, ok)
	require.Equal(t, deadline, got)
}
