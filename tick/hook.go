// Package tick implements the per-tick scheduler (spec component C7): a
// Stage holds an ordered list of Hooks, hooks declare chaining vs.
// parallel composition, and scheduling fans work out across
// golang.org/x/sync/errgroup while the caller's goroutine acts as the
// single-threaded orchestrator. The polymorphic hook type the original
// design sketches is realized here as the tagged variant spec.md §9
// recommends (OneShot | ParallelFor | MainThread) rather than an
// interface hierarchy.
package tick

import "context"

// Kind tags which of the three concrete Hook shapes a Hook carries.
type Kind int

const (
	// OneShot runs Fn once.
	OneShot Kind = iota
	// ParallelFor runs ParallelFn once per index in [0, Count), fanned
	// out across goroutines.
	ParallelFor
	// MainThread runs Fn synchronously. A non-chaining MainThread hook
	// runs on the goroutine that called Stage.Schedule, before any worker
	// goroutine starts — for work that must not run concurrently with the
	// orchestrator (e.g. touching non-thread-safe host resources). A
	// chaining MainThread hook runs in its place in the chain, on the
	// stage's chain goroutine.
	MainThread
)

// Hook is one unit of per-tick work registered on a Stage. Its inputs
// are whatever the stage's TInputs would be in a generic job-graph
// design; here they are the Stage's type parameter T, passed to Fn or
// ParallelFn as a plain argument next to the context.Context.
type Hook[T any] struct {
	// Name identifies the hook in logs; it has no scheduling effect.
	Name string

	// Chaining, if true, makes this hook depend on the previous chaining
	// hook's completion (or the stage start if it is the first chaining
	// hook) rather than only on the stage start. Chaining hooks run in
	// registration order, one after another.
	Chaining bool

	Kind Kind

	// Fn is used by OneShot and MainThread hooks.
	Fn func(ctx context.Context, inputs T) error

	// ParallelFn and Count are used by ParallelFor hooks.
	ParallelFn func(ctx context.Context, inputs T, index int) error
	Count      int
}
