package chat

import (
	"context"
	"fmt"
	"sort"

	"github.com/campuslink/campuslink/internal/tool"
)

// Kind classifies what a tool does when the model requests it.
type Kind string

const (
	// KindData tools perform a backend read/write and feed their
	// result back to the model.
	KindData Kind = "data"

	// KindUIAction tools only direct the client UI to open a form.
	// They are never executed; the loop terminates with a directive.
	KindUIAction Kind = "ui-action"
)

// RunFunc executes a data tool. userID scopes the lookup to the
// requesting principal ("my profile").
type RunFunc func(ctx context.Context, args map[string]any, userID string) (map[string]any, error)

// Definition describes one registered tool. Definitions are immutable
// and process-wide, created at startup.
type Definition struct {
	Declaration tool.Declaration
	Kind        Kind

	// Run is required for KindData tools.
	Run RunFunc

	// ModalID is the fixed client modal a semantic KindUIAction tool
	// translates to. Empty for the generic open-modal tool, which takes
	// the modal id from its arguments instead.
	ModalID string
}

// Registry is the static catalogue of callable tools. It is populated
// once at process start and read-only thereafter, so it needs no
// synchronization.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry builds a registry from the given definitions. A duplicate
// name is a programming error and fails construction.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := r.register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(def Definition) error {
	name := def.Declaration.Name
	if name == "" {
		return fmt.Errorf("tool with empty name: %w", ErrInvalidDefinition)
	}
	if def.Kind == KindData && def.Run == nil {
		return fmt.Errorf("data tool %q has no run func: %w", name, ErrInvalidDefinition)
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("tool %q: %w", name, ErrDuplicateTool)
	}
	r.defs[name] = def
	return nil
}

// Resolve returns the definition for name.
func (r *Registry) Resolve(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("tool %q: %w", name, ErrUnknownTool)
	}
	return def, nil
}

// Declarations returns all tool schemas for the model, sorted by name
// for a stable catalogue across requests.
func (r *Registry) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(r.defs))
	for _, def := range r.defs {
		decls = append(decls, def.Declaration)
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}
