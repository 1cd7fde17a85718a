package ports

import "context"

// Executor runs fn on the thread that owns deck state and waits for it.
type Executor interface {
	Call(ctx context.Context, fn func()) error
}
