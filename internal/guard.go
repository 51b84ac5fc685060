package internal

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Guard keeps at most one request in flight per logical action. A caller
// that arrives while the same action is running waits for that result
// instead of issuing a second request.
//
// The action runs with the context of the caller that started it, so
// canceling that caller aborts the shared request and every caller that
// joined it receives the cancellation error, even with a live context.
// Joined callers also stop waiting when their own context ends.
type Guard struct {
	group singleflight.Group
}

// NewGuard creates an empty guard
func NewGuard() *Guard {
	return &Guard{}
}

// Do runs fn under key. shared reports whether the result was produced for
// another caller as well.
func (g *Guard) Do(ctx context.Context, key string, fn func(ctx context.Context) (*Reply, error)) (reply *Reply, shared bool, err error) {
	ch := g.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		reply, _ := res.Val.(*Reply)
		return reply, res.Shared, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Guard keys for the actions a session issues
const (
	keyListTasks = "tasks:list"
	keyComplete  = "tasks:complete:"
	keyCreate    = "tasks:create:"
)
