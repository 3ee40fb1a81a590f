package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Result holds the outcome of one gathered task: a value or an error,
// never both meaningful at once.
type Result[R any] struct {
	Value R
	Err   error
}

// Gather runs fn for every item concurrently and waits for all of them.
// The returned slice has one result slot per item, in input order, so a
// failed item is explicit in its slot instead of silently missing from a
// shared accumulator. A panic inside fn is recovered, logged with its
// stack, and reported as that item's error; it never tears down the
// other tasks or the caller.
func Gather[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()
					ctxlog.From(ctx).Error("Panic in gathered task",
						"recover", r,
						"stack", string(stack),
					)
					results[i].Err = goerr.New("panic in gathered task", goerr.V("recover", r))
				}
			}()

			results[i].Value, results[i].Err = fn(ctx, item)
		}()
	}
	wg.Wait()

	return results
}
