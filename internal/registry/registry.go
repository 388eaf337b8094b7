// Package registry exposes every resolver as a named tool that takes a flat
// map of arguments and answers with a result.Envelope.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/result"
)

// Param documents one tool argument.
type Param struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Tool is a named resolver entry point.
type Tool struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Params      []Param `json:"params" yaml:"params"`

	// Fallback is the kind reported when Run fails with an error that is not
	// a result.Failure.
	Fallback result.Kind `json:"-" yaml:"-"`

	Run func(ctx context.Context, args Args) (any, error) `json:"-" yaml:"-"`
}

// Registry holds the available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns every tool sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}

// Invoke runs a tool and converts its outcome into an envelope. Errors never
// escape: unknown tools, failures and raw errors all become error envelopes
// tagged with the tool name.
func (r *Registry) Invoke(ctx context.Context, name string, args Args) result.Envelope {
	t, ok := r.Get(name)
	if !ok {
		return result.FromError(result.New(result.KindUnknownTool, result.Details{
			"tool":      name,
			"available": r.Names(),
		}), result.KindUnknownTool, name)
	}
	if args == nil {
		args = Args{}
	}

	callID := uuid.NewString()
	start := time.Now()
	log := zap.L().With(zap.String("tool", name), zap.String("call_id", callID))
	log.Debug("registry: tool call", zap.String("preview", args.Preview()))

	payload, err := t.Run(ctx, args)
	if err != nil {
		env := result.FromError(err, t.Fallback, name)
		log.Info("registry: tool failed",
			zap.String("error", string(env.Kind)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return env
	}

	log.Debug("registry: tool ok", zap.Duration("elapsed", time.Since(start)))
	return result.OK(payload)
}
