package registry

import (
	"sync"

	"github.com/teranos/tagx/mts/tagset"
)

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, bound to tagset.Default().
// Programs that register tag types globally share it; anything larger should
// carry its own Registry over its own Index.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(tagset.Default(), tagset.Default())
	})
	return defaultRegistry
}
