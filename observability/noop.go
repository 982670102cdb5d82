package observability

import "context"

// NoOpObserver discards all events. Registered as "noop".
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}
