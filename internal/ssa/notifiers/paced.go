package notifiers

import (
	"context"

	"github.com/daniacca/stochchem/internal/ssa"
	"golang.org/x/time/rate"
)

// PacedObserver forwards events to another observer at no more than a fixed
// rate in wall-clock time, so a live viewer can follow a run. It blocks the
// engine between events, which is only appropriate for interactive streams.
type PacedObserver struct {
	ctx     context.Context
	next    ssa.Observer
	limiter *rate.Limiter
}

// NewPacedObserver paces next to eventsPerSecond. A non-positive rate
// forwards without waiting.
func NewPacedObserver(ctx context.Context, next ssa.Observer, eventsPerSecond float64) *PacedObserver {
	limit := rate.Inf
	if eventsPerSecond > 0 {
		limit = rate.Limit(eventsPerSecond)
	}
	return &PacedObserver{
		ctx:     ctx,
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// ObserveEvent waits for a token, then forwards the event. Once ctx is done
// events are forwarded without waiting; the engine notices the cancellation
// at its next step.
func (p *PacedObserver) ObserveEvent(ev ssa.Event) {
	_ = p.limiter.Wait(p.ctx)
	p.next.ObserveEvent(ev)
}
