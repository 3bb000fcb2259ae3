// Package speech declares the speech-synthesis collaborator contract
// and the ordered delivery buffer that restores reply order over its
// out-of-order fragment callbacks. The actual HTTP synthesis/voice-
// conversion call is out of scope — this package is the interface
// plus the ordering helper.
package speech

import (
	"context"
	"sync"

	"aurelia/pkg/push"
)

// FragmentCallback is invoked once per synthesized fragment. Calls may
// arrive out of order; OrderedDelivery restores order before they
// reach the push channel.
type FragmentCallback func(ctx context.Context, filePath string, index int, isLast bool)

// Synthesizer is the core-calls-out side of the collaborator.
type Synthesizer interface {
	SynthesizeAsync(ctx context.Context, text, voiceID, targetSessionID string, onFragment FragmentCallback) error
}

// OrderedDelivery holds fragments that arrive ahead of their turn and
// drains them onto a push.Channel as soon as every lower index has
// been emitted: a small map index → file with a monotonically
// advancing next-to-emit cursor, add-and-drain under a mutex.
type OrderedDelivery struct {
	push            push.Channel
	targetSessionID string

	mu      sync.Mutex
	pending map[int]fragment
	next    int
}

type fragment struct {
	filePath string
	isLast   bool
}

// NewOrderedDelivery builds a buffer that forwards, in order, to ch
// addressed to targetSessionID.
func NewOrderedDelivery(ch push.Channel, targetSessionID string) *OrderedDelivery {
	return &OrderedDelivery{
		push:            ch,
		targetSessionID: targetSessionID,
		pending:         make(map[int]fragment),
	}
}

// OnFragment is the FragmentCallback to hand to Synthesizer.SynthesizeAsync.
func (d *OrderedDelivery) OnFragment(ctx context.Context, filePath string, index int, isLast bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[index] = fragment{filePath: filePath, isLast: isLast}
	for {
		frag, ok := d.pending[d.next]
		if !ok {
			return
		}
		delete(d.pending, d.next)
		d.push.VoiceFileReady(ctx, frag.filePath, d.next, frag.isLast, d.targetSessionID)
		d.next++
	}
}
