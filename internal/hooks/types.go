// Package hooks runs lifecycle callbacks around persistence operations
package hooks

import (
	"context"
)

// Type represents the lifecycle point a hook runs at
type Type int

const (
	BeforeSave Type = iota
	AfterSave
	BeforeDelete
	AfterDelete
)

// String returns the string representation of the hook type
func (t Type) String() string {
	switch t {
	case BeforeSave:
		return "before_save"
	case AfterSave:
		return "after_save"
	case BeforeDelete:
		return "before_delete"
	case AfterDelete:
		return "after_delete"
	default:
		return "unknown"
	}
}

// Func is a hook callback receiving the subject of the operation
type Func[T any] func(ctx context.Context, subject T) error

// Hook represents a registered lifecycle hook
type Hook[T any] struct {
	Type  Type
	Name  string
	Fn    Func[T]
	Async bool // Execute on the async queue after the operation
}

// Registry manages registered hooks per lifecycle point
type Registry[T any] struct {
	hooks map[Type][]*Hook[T]
}

// NewRegistry creates a new hook registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		hooks: make(map[Type][]*Hook[T]),
	}
}

// Register adds a hook to the registry
func (r *Registry[T]) Register(hookType Type, hook *Hook[T]) {
	hook.Type = hookType
	r.hooks[hookType] = append(r.hooks[hookType], hook)
}

// GetHooks returns all hooks for a given type
func (r *Registry[T]) GetHooks(hookType Type) []*Hook[T] {
	return r.hooks[hookType]
}

// HasHooks returns true if there are any hooks registered for the given type
func (r *Registry[T]) HasHooks(hookType Type) bool {
	return len(r.hooks[hookType]) > 0
}
