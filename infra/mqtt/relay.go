package mqtt

import (
	"context"

	"github.com/kilianp07/lift/core/events"
	"github.com/kilianp07/lift/core/logger"
	coremqtt "github.com/kilianp07/lift/core/mqtt"
)

// Relay forwards events from sub to pub until sub is closed or ctx is done.
// When state is set it is advanced with every event and published after each
// stop, idle return and reset. The relay never reads the car itself, so it
// keeps draining sub while a batch holds the car. Publish failures are logged
// and the relay goes on.
func Relay(ctx context.Context, sub <-chan events.Event, pub coremqtt.Publisher, state *CarState, log logger.Logger) {
	if log == nil {
		log = logger.Nop{}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := pub.PublishEvent(ctx, ev); err != nil {
				log.Warnf("relay event #%d: %v", ev.Seq, err)
			}
			if state == nil || !state.Apply(ev) {
				continue
			}
			if err := pub.PublishState(ctx, state.clone()); err != nil {
				log.Warnf("relay state: %v", err)
			}
		}
	}
}
