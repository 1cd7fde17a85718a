package eventloop

import "context"

// Inline is a ports.Executor that runs fn on the caller's goroutine. It
// suits single-threaded callers such as tests and the terminal client.
type Inline struct{}

func (Inline) Call(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fn()
	return nil
}
