package fields

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry manages all blueprints known to the application
type Registry struct {
	blueprints map[string]*Blueprint
	mu         sync.RWMutex
}

// NewRegistry creates a new blueprint registry
func NewRegistry() *Registry {
	return &Registry{
		blueprints: make(map[string]*Blueprint),
	}
}

// Register registers a new blueprint
func (r *Registry) Register(blueprint *Blueprint) error {
	if blueprint == nil || blueprint.Handle == "" {
		return fmt.Errorf("blueprint must have a handle")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blueprints[blueprint.Handle]; exists {
		return fmt.Errorf("blueprint %s is already registered", blueprint.Handle)
	}

	r.blueprints[blueprint.Handle] = blueprint
	return nil
}

// Find retrieves a blueprint by handle
func (r *Registry) Find(handle string) (*Blueprint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blueprint, exists := r.blueprints[handle]
	return blueprint, exists
}

// All returns a copy of all registered blueprints
func (r *Registry) All() map[string]*Blueprint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Blueprint, len(r.blueprints))
	for k, v := range r.blueprints {
		result[k] = v
	}
	return result
}

// Handles returns the sorted handles of all registered blueprints
func (r *Registry) Handles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handles := make([]string, 0, len(r.blueprints))
	for handle := range r.blueprints {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles
}

// blueprintFile is the on-disk YAML layout of a blueprint
type blueprintFile struct {
	Title  string `yaml:"title"`
	Fields []struct {
		Handle string         `yaml:"handle"`
		Field  map[string]any `yaml:"field"`
	} `yaml:"fields"`
}

// LoadDir registers every *.yaml / *.yml blueprint in dir. The file name
// without extension is the blueprint handle. A missing directory is not an error.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read blueprint directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		handle := strings.TrimSuffix(entry.Name(), ext)
		blueprint, err := ParseBlueprint(handle, filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if err := r.Register(blueprint); err != nil {
			return err
		}
	}

	return nil
}

// ParseBlueprint reads a single blueprint file
func ParseBlueprint(handle, path string) (*Blueprint, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint %s: %w", handle, err)
	}

	var file blueprintFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint %s: %w", handle, err)
	}

	blueprint := NewBlueprint(handle, file.Title)
	for _, entry := range file.Fields {
		if entry.Handle == "" {
			return nil, fmt.Errorf("blueprint %s: field without handle", handle)
		}

		typeName, _ := entry.Field["type"].(string)
		if typeName == "" {
			typeName = TypeText.String()
		}
		typ, err := ParseType(typeName)
		if err != nil {
			return nil, fmt.Errorf("blueprint %s, field %s: %w", handle, entry.Handle, err)
		}

		field := NewField(entry.Handle, typ)
		for k, v := range entry.Field {
			if k != "type" {
				field.Config[k] = v
			}
		}
		blueprint.Add(field)
	}

	return blueprint, nil
}
