// ABOUTME: Thread-safe registry for in-process MCP tools.
// ABOUTME: Manages tool registration, lookup, listing, and dispatch.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrToolNotFound indicates the named tool is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrToolCollision indicates a tool with the same name is already registered.
var ErrToolCollision = errors.New("tool name collision")

// Handler executes a tool call. Arguments arrive as the raw JSON object from
// the MCP request; the returned value is marshaled into the tool result.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is an in-process tool definition with its handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// Registry maintains the set of registered tools.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: logger,
	}
}

// Register adds a tool to the registry.
// Returns ErrToolCollision if the name is already taken.
func (r *Registry) Register(t *Tool) error {
	if t.Name == "" {
		return errors.New("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool '%s' has no handler", t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrToolCollision, t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// Get returns the tool with the given name, or nil.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tools[name]
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Call dispatches a tool invocation by name.
// Returns ErrToolNotFound if no such tool is registered.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrToolNotFound, name)
	}

	r.logger.Debug("tool call", "tool_name", name)
	return tool.Handler(ctx, args)
}

// objectSchema builds a JSON schema for an object with the given properties.
func objectSchema(props map[string]any, required ...string) json.RawMessage {
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("building tool schema: %v", err))
	}
	return data
}
