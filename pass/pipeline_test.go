package pass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoncaloFDS/tracer/render"
)

// stubWaiter records fence waits without a device.
type stubWaiter struct {
	waits  []render.Fence
	resets int
}

func (w *stubWaiter) WaitFences(fences []render.Fence, all bool) error {
	w.waits = append(w.waits, fences...)
	return nil
}

func (w *stubWaiter) ResetFences(fences []render.Fence) error {
	w.resets += len(fences)
	return nil
}

func TestFramePacerSkipsUnsubmittedSlots(t *testing.T) {
	p := &framePacer{}
	w := &stubWaiter{}

	// The first frameSlots frames have no prior submission to wait on.
	for counter := uint64(0); counter < frameSlots; counter++ {
		s, err := p.acquire(w, counter)
		require.NoError(t, err)
		s.submitted = true
	}
	assert.Empty(t, w.waits)
	assert.Zero(t, w.resets)
}

func TestFramePacerBoundsInFlightFrames(t *testing.T) {
	p := &framePacer{}
	w := &stubWaiter{}

	const draws = 10
	for counter := uint64(0); counter < draws; counter++ {
		s, err := p.acquire(w, counter)
		require.NoError(t, err)
		assert.False(t, s.submitted, "draw %d got an unwaited slot", counter)
		s.submitted = true
	}
	// Every draw past the first frameSlots must wait exactly one fence:
	// the one draw counter-frameSlots submitted.
	assert.Len(t, w.waits, draws-frameSlots)
	assert.Equal(t, draws-frameSlots, w.resets)
}

func TestFramePacerReusesSlotWithoutWaitWhenNotSubmitted(t *testing.T) {
	p := &framePacer{}
	w := &stubWaiter{}

	// A draw that failed before submission leaves the slot unsubmitted;
	// the next draw on the same slot must not wait.
	_, err := p.acquire(w, 0)
	require.NoError(t, err)
	_, err = p.acquire(w, frameSlots)
	require.NoError(t, err)
	assert.Empty(t, w.waits)
}
