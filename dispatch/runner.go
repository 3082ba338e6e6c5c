package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/dogmatiq/linger"
	"github.com/quayside/commerce/envelope"
	"github.com/quayside/commerce/eventbus"
	"github.com/quayside/commerce/handler"
)

// DefaultTimeout is the default amount of time a single delivery attempt is
// allowed to take.
const DefaultTimeout = 30 * time.Second

// Runner delivers a single queued event to its async handler.
type Runner struct {
	// Routes is the registry used to resolve handler keys.
	Routes *eventbus.Registry

	// Exec sets up the unit-of-work that the handler runs within.
	Exec *handler.EntryPoint

	// Timeout is the maximum time allowed for a single delivery attempt.
	// If it is zero, DefaultTimeout is used.
	Timeout time.Duration
}

// Run delivers the event in env to the async handler with the given key.
//
// The delivery attempt is bounded by the runner's timeout. The handler's
// error, if any, is returned unmodified so that the caller can decide whether
// to retry.
func (r *Runner) Run(ctx context.Context, key string, env *envelope.Envelope) error {
	rt, ok := r.Routes.AsyncRoute(key)
	if !ok {
		return fmt.Errorf("no async handler is registered with the key %s", key)
	}

	ctx, cancel := linger.ContextWithTimeout(ctx, r.Timeout, DefaultTimeout)
	defer cancel()

	return r.Exec.HandleMessage(ctx, rt.Handler, env)
}
