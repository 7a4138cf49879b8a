package mcp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"awspanel/internal/config"
)

type Registry interface {
	Register(category string, specs []ToolSpec) error
	RegisterResolver(category string, resolver Resolver)
	Lookup(name string) (ToolSpec, bool)
	List() []ToolInfo
}

// ToolRegistry flattens every category's operations into one
// name-addressable collection. Name collisions across categories keep the
// first registration; the shadowed operation stays reachable under its
// category-qualified name ("category.name").
type ToolRegistry struct {
	cfg        *config.Config
	tools      map[string]ToolSpec
	flat       []string
	categories []categoryEntry
}

type categoryEntry struct {
	id       string
	resolver Resolver
}

func NewRegistry(cfg *config.Config) *ToolRegistry {
	return &ToolRegistry{cfg: cfg, tools: map[string]ToolSpec{}}
}

func (r *ToolRegistry) Register(category string, specs []ToolSpec) error {
	// The fallback resolver carries only the specs the safety gate
	// admitted; a gated tool stays unreachable through category dispatch.
	admitted := make([]ToolSpec, 0, len(specs))
	for _, spec := range specs {
		added, err := r.add(category, spec)
		if err != nil {
			return fmt.Errorf("register %s: %w", spec.Name, err)
		}
		if added {
			admitted = append(admitted, spec)
		}
	}
	r.RegisterResolver(category, SpecListResolver(admitted))
	return nil
}

func (r *ToolRegistry) add(category string, spec ToolSpec) (bool, error) {
	if spec.Name == "" {
		return false, errors.New("tool name required")
	}
	if spec.Handler == nil {
		return false, errors.New("tool handler required")
	}
	if spec.Category == "" {
		spec.Category = category
	}
	if !r.allowedBySafety(spec) {
		return false, nil
	}
	qualified := category + "." + spec.Name
	r.tools[qualified] = spec
	if _, exists := r.tools[spec.Name]; !exists {
		r.tools[spec.Name] = spec
		r.flat = append(r.flat, spec.Name)
	}
	return true, nil
}

// RegisterResolver records a category's own dispatch-by-name capability,
// used by the dispatcher when a flat lookup misses. Categories are
// consulted in registration order.
func (r *ToolRegistry) RegisterResolver(category string, resolver Resolver) {
	r.categories = append(r.categories, categoryEntry{id: category, resolver: resolver})
}

func (r *ToolRegistry) Lookup(name string) (ToolSpec, bool) {
	spec, ok := r.tools[name]
	return spec, ok
}

func (r *ToolRegistry) List() []ToolInfo {
	infos := make([]ToolInfo, 0, len(r.flat))
	for _, name := range r.flat {
		tool := r.tools[name]
		infos = append(infos, ToolInfo{Name: tool.Name, Description: tool.Description, Parameters: tool.Parameters})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func (r *ToolRegistry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.flat))
	for _, name := range r.flat {
		specs = append(specs, r.tools[name])
	}
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})
	return specs
}

func (r *ToolRegistry) Names() []string {
	names := append([]string{}, r.flat...)
	sort.Strings(names)
	return names
}

func (r *ToolRegistry) Count() int {
	return len(r.flat)
}

// Categories returns the registered category ids with per-category
// operation counts, for the catalogue summary endpoint.
func (r *ToolRegistry) Categories() map[string]int {
	counts := map[string]int{}
	for name, spec := range r.tools {
		if strings.Contains(name, ".") {
			counts[spec.Category]++
		}
	}
	return counts
}

func (r *ToolRegistry) resolvers() []categoryEntry {
	return r.categories
}

func (r *ToolRegistry) allowedBySafety(spec ToolSpec) bool {
	if r.cfg == nil {
		return true
	}
	if r.cfg.ReadOnly {
		return spec.Safety == SafetyReadOnly
	}
	if r.cfg.DisableDestructive && spec.Safety == SafetyDestructive {
		for _, allow := range r.cfg.Safety.AllowDestructiveTools {
			if allow == spec.Name {
				return true
			}
		}
		return false
	}
	return true
}
