package retransmit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectBatchesLargeGapAtBatchMax(t *testing.T) {
	tr := NewTracker(2500)

	from, count, err := tr.Detect(1, 5000)
	require.NoError(t, err)
	require.Equal(t, uint64(1), from)
	require.Equal(t, uint32(2500), count)
	require.True(t, tr.InFlight())
	require.Equal(t, uint64(1), tr.FillSeq())
	require.Equal(t, uint64(5001), tr.GapTarget())
}

func TestAdvanceIssuesDeferredFollowUpThenCloses(t *testing.T) {
	tr := NewTracker(2500)
	_, _, err := tr.Detect(1, 5000)
	require.NoError(t, err)

	from, count, hasMore := tr.Advance()
	require.True(t, hasMore)
	require.Equal(t, uint64(2501), from)
	require.Equal(t, uint32(2499), count)
	require.True(t, tr.InFlight())

	from, count, hasMore = tr.Advance()
	require.False(t, hasMore)
	require.Equal(t, uint64(0), from)
	require.Equal(t, uint32(0), count)
	require.False(t, tr.InFlight())
}

func TestRejectTreatsChunkAsEmptyAndContinues(t *testing.T) {
	tr := NewTracker(2500)
	_, _, err := tr.Detect(1, 5000)
	require.NoError(t, err)

	from, count, hasMore := tr.Reject()
	require.True(t, hasMore)
	require.Equal(t, uint64(2501), from)
	require.Equal(t, uint32(2499), count)

	_, _, hasMore = tr.Reject()
	require.False(t, hasMore)
	require.False(t, tr.InFlight())
}

func TestDetectRefusesSecondRequestWhileInFlight(t *testing.T) {
	tr := NewTracker(2500)
	_, _, err := tr.Detect(1, 5000)
	require.NoError(t, err)

	_, _, err = tr.Detect(1, 6000)
	require.ErrorIs(t, err, ErrAlreadyInFlight)
}

func TestDetectNoGapIsNoOp(t *testing.T) {
	tr := NewTracker(2500)
	from, count, err := tr.Detect(10, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(0), from)
	require.Equal(t, uint32(0), count)
	require.False(t, tr.InFlight())
}

func TestSmallGapIsSingleChunk(t *testing.T) {
	tr := NewTracker(2500)
	from, count, err := tr.Detect(100, 150)
	require.NoError(t, err)
	require.Equal(t, uint64(100), from)
	require.Equal(t, uint32(50), count)

	_, _, hasMore := tr.Advance()
	require.False(t, hasMore)
}

func TestDefaultBatchMaxAppliedWhenZero(t *testing.T) {
	tr := NewTracker(0)
	_, count, err := tr.Detect(1, 10000)
	require.NoError(t, err)
	require.Equal(t, uint32(DefaultBatchMax), count)
}
