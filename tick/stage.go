package tick

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrStageLocked is returned by Register once Schedule has been called on
// the stage (spec.md §4.5 / scenario S7): "after the first schedule call,
// the stage locks; registering another hook fails."
var ErrStageLocked = errors.New("tick: stage is locked, schedule has already run")

// Logger is the subset of the ambient logging interface the tick package
// needs, satisfied by voxcore.Logger without importing it (avoiding an
// import cycle between the root package and its sub-packages).
type Logger interface {
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Errorf(format string, args ...any) {}

// Stage holds an ordered list of Hooks and schedules them exactly once.
// T is the input value every hook in the stage receives — the stage's
// TInputs in spec.md §4.5.
type Stage[T any] struct {
	Name   string
	Logger Logger

	mu     sync.Mutex
	hooks  []Hook[T]
	locked bool
}

// NewStage constructs an empty, unlocked stage. A nil logger is replaced
// with a no-op logger so Stage never needs a nil check.
func NewStage[T any](name string, logger Logger) *Stage[T] {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Stage[T]{Name: name, Logger: logger}
}

// Register appends h to the stage's hook list, in order. It fails with
// ErrStageLocked and leaves the hook list untouched if Schedule has
// already been called.
func (s *Stage[T]) Register(h Hook[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return fmt.Errorf("tick: register hook %q on stage %q: %w", h.Name, s.Name, ErrStageLocked)
	}
	s.hooks = append(s.hooks, h)
	return nil
}

// Locked reports whether Schedule has run on this stage.
func (s *Stage[T]) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Schedule locks the stage and runs every registered hook exactly once,
// combining the chained tail and every parallel hook's completion into
// one "stage finished" dependency (spec.md §4.5): it blocks until every
// hook has either completed or been skipped after logging its error.
//
// A hook that returns an error is logged via Logger.Errorf and skipped;
// the stage continues executing the remaining hooks with the same
// inputs (spec.md §7 failure semantics). No worker goroutine reports an
// error, so Schedule returns nil; ctx is handed to every hook, but
// Schedule does not stop early when it is canceled.
func (s *Stage[T]) Schedule(ctx context.Context, inputs T) error {
	s.mu.Lock()
	s.locked = true
	hooks := append([]Hook[T](nil), s.hooks...)
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)

	// MainThread hooks with no chaining dependency run inline, before
	// any worker goroutine is launched, since by definition they must
	// not run concurrently with the orchestrator.
	for _, h := range hooks {
		if h.Chaining || h.Kind != MainThread {
			continue
		}
		s.runAndLog(gctx, h, inputs)
	}

	for _, h := range hooks {
		if h.Chaining || h.Kind == MainThread {
			continue
		}
		h := h
		g.Go(func() error {
			s.runAndLog(gctx, h, inputs)
			return nil
		})
	}

	g.Go(func() error {
		for _, h := range hooks {
			if !h.Chaining {
				continue
			}
			s.runAndLog(gctx, h, inputs)
		}
		return nil
	})

	return g.Wait()
}

func (s *Stage[T]) runAndLog(ctx context.Context, h Hook[T], inputs T) {
	if err := runHook(ctx, h, inputs); err != nil {
		s.Logger.Errorf("tick: stage %q hook %q failed, skipping: %v", s.Name, h.Name, err)
	}
}

func runHook[T any](ctx context.Context, h Hook[T], inputs T) error {
	switch h.Kind {
	case OneShot, MainThread:
		if h.Fn == nil {
			return nil
		}
		return h.Fn(ctx, inputs)
	case ParallelFor:
		if h.ParallelFn == nil || h.Count <= 0 {
			return nil
		}
		pg, pctx := errgroup.WithContext(ctx)
		for i := 0; i < h.Count; i++ {
			i := i
			pg.Go(func() error {
				return h.ParallelFn(pctx, inputs, i)
			})
		}
		return pg.Wait()
	default:
		return fmt.Errorf("tick: unknown hook kind %d", h.Kind)
	}
}
