package httpapi

import "context"

// serverBaseCtx is cancelled on daemon shutdown so streaming handlers stop
// even when the client keeps its connection open.
var serverBaseCtx = context.Background()

// SetBaseContext installs the daemon's lifetime context. Passing nil restores
// the Background default.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context that is cancelled as soon as either parent
// is done. The returned cancel must be called when the handler finishes to
// release the watchers.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	stopA := context.AfterFunc(a, cancel)
	stopB := context.AfterFunc(b, cancel)
	return ctx, func() {
		stopA()
		stopB()
		cancel()
	}
}
