package di

import (
	"fmt"
	"sort"
	"sync"
)

// ResolutionError is returned (via panic) when a required dependency cannot
// be satisfied by the container.
type ResolutionError struct {
	Key     string
	Message string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("di: %s (key %q)", e.Message, e.Key)
}

// Container is a keyed dependency registry. Keys are the sanitized type
// signatures emitted by the rewriter.
type Container struct {
	mu    sync.RWMutex
	items map[string]any
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		items: make(map[string]any),
	}
}

// Register stores a value under a key, replacing any previous registration.
// It returns the container for chaining.
func (c *Container) Register(key string, value any) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = value
	return c
}

// Has reports whether a value is registered under key.
func (c *Container) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.items[key]
	return ok
}

// Keys returns all registered keys in sorted order.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// get returns the raw value registered under key.
func (c *Container) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.items[key]
	return v, ok
}

// mustGet returns the raw value registered under key or panics with a
// ResolutionError describing the missing key.
func (c *Container) mustGet(key string) any {
	v, ok := c.get(key)
	if !ok {
		panic(&ResolutionError{Key: key, Message: "no implementation registered for required dependency"})
	}
	return v
}
