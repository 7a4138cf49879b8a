package mcp

import (
	"errors"
	"sort"
	"sync"
)

// Toolset is one AWS category: it initializes against the shared runtime
// context and registers its operations.
type Toolset interface {
	ID() string
	Version() string
	Init(ctx ToolsetContext) error
	Register(reg Registry) error
}

type ToolsetFactory func() Toolset

type toolsetFactories struct {
	mu        sync.RWMutex
	factories map[string]ToolsetFactory
}

var factories = toolsetFactories{factories: map[string]ToolsetFactory{}}

func RegisterToolset(id string, factory ToolsetFactory) error {
	if id == "" {
		return errors.New("toolset id required")
	}
	if factory == nil {
		return errors.New("toolset factory required")
	}
	factories.mu.Lock()
	defer factories.mu.Unlock()
	if _, exists := factories.factories[id]; exists {
		return errors.New("toolset already registered")
	}
	factories.factories[id] = factory
	return nil
}

func MustRegisterToolset(id string, factory ToolsetFactory) {
	if err := RegisterToolset(id, factory); err != nil {
		panic(err)
	}
}

func ToolsetFactoryFor(id string) (ToolsetFactory, bool) {
	factories.mu.RLock()
	defer factories.mu.RUnlock()
	factory, ok := factories.factories[id]
	return factory, ok
}

func RegisteredToolsets() []string {
	factories.mu.RLock()
	defer factories.mu.RUnlock()
	ids := make([]string, 0, len(factories.factories))
	for id := range factories.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
