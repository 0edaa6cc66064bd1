// Package queue provides a FIFO task queue drained by a single worker.
//
// At most one task is in flight at any time and tasks complete in push
// order. A failing task (returned error or panic) is handed to the error
// handler and the queue keeps draining.
//
// Usage:
//
//	q := queue.New(func(ctx context.Context, path string) error {
//	    return resolve(ctx, path)
//	}, queue.Options[string]{})
//	defer q.Close()
//
//	q.Push("bibxml/reference.RFC.2119.xml")
package queue
