// Package tools holds the functions a model may call during tool-enhanced
// reasoning, and the loop that runs them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/user/llmbench/pkg/llm"
)

// Tool defines the interface for an executable tool.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds registered tools and provides lookup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Default returns a registry with every built-in tool.
func Default() *Registry {
	r := NewRegistry()
	for _, t := range MathTools() {
		r.Register(t)
	}
	for _, t := range StringTools() {
		r.Register(t)
	}
	r.Register(NewReadURL())
	return r
}

// Register adds a tool, replacing any tool of the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// All returns all registered tools sorted by name.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.Name()
	}
	return names
}

// AsLLMTools converts registered tools to the LLM provider format.
func (r *Registry) AsLLMTools() []llm.Tool {
	all := r.All()
	out := make([]llm.Tool, 0, len(all))
	for _, t := range all {
		out = append(out, llm.Tool{
			Type: "function",
			Function: llm.Function{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

// Call runs the named tool with JSON arguments.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	return t.Execute(ctx, args)
}

// funcTool adapts a typed function to the Tool interface. A is the
// argument struct decoded from JSON.
type funcTool[A any] struct {
	name        string
	description string
	parameters  string
	fn          func(ctx context.Context, args A) (string, error)
}

func newTool[A any](name, description, parameters string, fn func(context.Context, A) (string, error)) Tool {
	return &funcTool[A]{name: name, description: description, parameters: parameters, fn: fn}
}

func (t *funcTool[A]) Name() string                { return t.name }
func (t *funcTool[A]) Description() string         { return t.description }
func (t *funcTool[A]) Parameters() json.RawMessage { return json.RawMessage(t.parameters) }

func (t *funcTool[A]) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var args A
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	return t.fn(ctx, args)
}
