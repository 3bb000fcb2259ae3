package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	emitted []emitted
}

type emitted struct {
	filePath string
	index    int
	isLast   bool
}

func (r *recordingChannel) VoiceFileReady(_ context.Context, filename string, index int, isLast bool, _ string) error {
	r.emitted = append(r.emitted, emitted{filename, index, isLast})
	return nil
}
func (r *recordingChannel) InactivityReminder(context.Context, string, string) error { return nil }
func (r *recordingChannel) SessionActivated(context.Context, string) error           { return nil }

func TestOrderedDelivery_EmitsInOrderDespiteArrivalOrder(t *testing.T) {
	ch := &recordingChannel{}
	d := NewOrderedDelivery(ch, "session-1")

	d.OnFragment(context.Background(), "frag2.wav", 2, true)
	d.OnFragment(context.Background(), "frag0.wav", 0, false)
	d.OnFragment(context.Background(), "frag1.wav", 1, false)

	require.Len(t, ch.emitted, 3)
	assert.Equal(t, 0, ch.emitted[0].index)
	assert.Equal(t, 1, ch.emitted[1].index)
	assert.Equal(t, 2, ch.emitted[2].index)
	assert.False(t, ch.emitted[0].isLast)
	assert.False(t, ch.emitted[1].isLast)
	assert.True(t, ch.emitted[2].isLast)
}

func TestOrderedDelivery_HoldsGapUntilFilled(t *testing.T) {
	ch := &recordingChannel{}
	d := NewOrderedDelivery(ch, "session-1")

	d.OnFragment(context.Background(), "frag1.wav", 1, false)
	assert.Empty(t, ch.emitted)

	d.OnFragment(context.Background(), "frag0.wav", 0, false)
	require.Len(t, ch.emitted, 2)
	assert.Equal(t, 0, ch.emitted[0].index)
	assert.Equal(t, 1, ch.emitted[1].index)
}
