package fetch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory 根据 Options 构建某一类 source 的 Fetcher。
type Factory func(Options) (Fetcher, error)

var globalRegistry = newRegistry()

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func newRegistry() *registry {
	return &registry{factories: make(map[string]Factory)}
}

// Register 将 source 工厂加入全局注册表，重复键会返回错误。
func Register(kind string, factory Factory) error {
	return globalRegistry.register(kind, factory)
}

// MustRegister 在注册失败时 panic，适合 source 的 init() 中调用。
func MustRegister(kind string, factory Factory) {
	if err := Register(kind, factory); err != nil {
		panic(err)
	}
}

// Resolve 返回指定 kind 的工厂。
func Resolve(kind string) (Factory, bool) {
	return globalRegistry.resolve(kind)
}

// Kinds 返回所有已注册 source 的键值，按字母排序。
func Kinds() []string {
	return globalRegistry.kinds()
}

// New 构建指定 kind 的 Fetcher；未注册时返回包装了 ErrUnavailable 的错误。
func New(kind string, opts Options) (Fetcher, error) {
	factory, ok := Resolve(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrUnavailable, kind)
	}
	return factory(opts)
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

func (r *registry) register(kind string, factory Factory) error {
	key := normalizeKind(kind)
	if key == "" {
		return fmt.Errorf("source kind is required")
	}
	if factory == nil {
		return fmt.Errorf("source %s: factory is required", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("source %s already registered", key)
	}
	r.factories[key] = factory
	return nil
}

func (r *registry) resolve(kind string) (Factory, bool) {
	key := normalizeKind(kind)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[key]
	return factory, ok
}

func (r *registry) kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.factories) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
