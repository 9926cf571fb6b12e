package hooks

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Executor executes lifecycle hooks for subjects of type T
type Executor[T any] struct {
	registry   *Registry[T]
	asyncQueue *AsyncQueue
	logger     *zap.Logger
}

// NewExecutor creates a new hook executor. asyncQueue may be nil when no
// async hooks are registered.
func NewExecutor[T any](asyncQueue *AsyncQueue, logger *zap.Logger) *Executor[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor[T]{
		registry:   NewRegistry[T](),
		asyncQueue: asyncQueue,
		logger:     logger,
	}
}

// Register registers a hook
func (e *Executor[T]) Register(hookType Type, hook *Hook[T]) {
	e.registry.Register(hookType, hook)
}

// On registers a synchronous hook function
func (e *Executor[T]) On(hookType Type, name string, fn Func[T]) {
	e.Register(hookType, &Hook[T]{Name: name, Fn: fn})
}

// Execute runs all hooks for a given type in registration order. The first
// failing synchronous hook aborts the run. Async hook failures are only logged.
func (e *Executor[T]) Execute(ctx context.Context, hookType Type, subject T) error {
	if e == nil {
		return nil
	}

	for _, hook := range e.registry.GetHooks(hookType) {
		if hook.Async {
			if err := e.enqueue(hook, subject); err != nil {
				e.logger.Warn("failed to enqueue async hook",
					zap.String("hook", hookName(hook)),
					zap.Error(err))
			}
			continue
		}

		if err := hook.Fn(ctx, subject); err != nil {
			return fmt.Errorf("hook %s failed: %w", hookName(hook), err)
		}
	}

	return nil
}

func (e *Executor[T]) enqueue(hook *Hook[T], subject T) error {
	if e.asyncQueue == nil {
		return fmt.Errorf("async queue not configured")
	}

	return e.asyncQueue.Enqueue(AsyncTask{
		Name: hookName(hook),
		Fn: func(ctx context.Context) error {
			return hook.Fn(ctx, subject)
		},
	})
}

// HasHooks returns true if there are any hooks registered for the given type
func (e *Executor[T]) HasHooks(hookType Type) bool {
	if e == nil {
		return false
	}
	return e.registry.HasHooks(hookType)
}

func hookName[T any](hook *Hook[T]) string {
	if hook.Name != "" {
		return hook.Type.String() + ":" + hook.Name
	}
	return hook.Type.String()
}
