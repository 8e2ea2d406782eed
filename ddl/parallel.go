package ddl

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GroupExecutor runs level groups concurrently: all operations within one
// group are dispatched to up to Workers goroutines, and no operation of the
// next group starts before every operation of the current group has
// finished. Group order must respect the direction of the plan — front to
// back for creation, back to front for deletion (reverse the groups before
// calling).
type GroupExecutor struct {
	strategy *Strategy
	workers  int
}

func NewGroupExecutor(s *Strategy, workers int) *GroupExecutor {
	if workers < 1 {
		workers = 1
	}
	return &GroupExecutor{strategy: s, workers: workers}
}

// Execute runs the groups in order. Within a group every operation is always
// attempted; stopOnError applies at group boundaries, skipping remaining
// groups after a group with failures. cb may be nil and is serialized across
// workers.
func (e *GroupExecutor) Execute(ctx context.Context, groups [][]Operation, stopOnError bool, cb Callback) Result {
	var result Result
	for _, group := range groups {
		result.Total += len(group)
	}

	var mu sync.Mutex
	for _, group := range groups {
		var eg errgroup.Group
		eg.SetLimit(e.workers)

		failedInGroup := false
		for _, op := range group {
			op := op
			eg.Go(func() error {
				err := e.strategy.ExecuteOperation(ctx, op)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failedInGroup = true
					result.Failed++
					result.Errors = append(result.Errors, OperationError{
						Operation: op.String(),
						Error:     err.Error(),
						Kind:      errorKind(err),
					})
				} else {
					result.Successful++
				}
				if cb != nil {
					cb(op, err == nil, err)
				}
				return nil
			})
		}
		eg.Wait()

		if stopOnError && failedInGroup {
			break
		}
	}
	return result
}
