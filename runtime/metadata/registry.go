package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Registry holds a class snapshot for introspection queries. Snapshots
// never change once registered, so query results are cached.
type Registry struct {
	mu       sync.RWMutex
	metadata *Metadata

	classesByPackage map[string]*ClassMetadata
	classesByKey     map[string]*ClassMetadata
	attributesByType map[string][]AttributeReference

	cache      map[string]interface{}
	cacheMutex sync.RWMutex

	initialized atomic.Bool
}

// AttributeReference references an attribute and the class it was found
// in.
type AttributeReference struct {
	Class     string
	Attribute AttributeMetadata
}

var globalRegistry = newRegistry()

func newRegistry() *Registry {
	return &Registry{
		classesByPackage: make(map[string]*ClassMetadata),
		classesByKey:     make(map[string]*ClassMetadata),
		attributesByType: make(map[string][]AttributeReference),
		cache:            make(map[string]interface{}),
	}
}

// Register installs a snapshot in the global registry and builds its
// indexes. A previously registered snapshot is replaced.
func Register(m *Metadata) {
	if m.Dependencies.Nodes == nil {
		m.Dependencies = *BuildDependencyGraph(m)
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	globalRegistry.reset()
	globalRegistry.metadata = m
	globalRegistry.buildIndexes()
	globalRegistry.initialized.Store(true)
}

// RegisterMetadata decodes a JSON snapshot and registers it.
func RegisterMetadata(data []byte) error {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	Register(&m)
	return nil
}

// RegisterLive snapshots the live class registry and registers it.
func RegisterLive(opts SnapshotOptions) *Metadata {
	m := Snapshot(opts)
	Register(m)
	return m
}

func (r *Registry) buildIndexes() {
	for i := range r.metadata.Classes {
		class := &r.metadata.Classes[i]
		r.classesByPackage[class.Package] = class
		r.classesByKey[class.Key] = class

		for _, attr := range class.Attributes {
			r.attributesByType[attr.Type] = append(r.attributesByType[attr.Type], AttributeReference{
				Class:     class.Package,
				Attribute: attr,
			})
		}
	}
}

func (r *Registry) reset() {
	r.metadata = nil
	r.classesByPackage = make(map[string]*ClassMetadata)
	r.classesByKey = make(map[string]*ClassMetadata)
	r.attributesByType = make(map[string][]AttributeReference)
	r.cacheMutex.Lock()
	r.cache = make(map[string]interface{})
	r.cacheMutex.Unlock()
	r.initialized.Store(false)
}

// GetMetadata returns the registered snapshot, or nil.
func GetMetadata() *Metadata {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.metadata
}

// QueryClasses returns all registered classes.
// Returns a copy to prevent external mutation.
func QueryClasses() []ClassMetadata {
	m := GetMetadata()
	if m == nil {
		return nil
	}
	classes := make([]ClassMetadata, len(m.Classes))
	copy(classes, m.Classes)
	return classes
}

// QueryClass finds a class by package identity, falling back to its key.
func QueryClass(name string) (*ClassMetadata, error) {
	if !globalRegistry.initialized.Load() {
		return nil, fmt.Errorf("registry not initialized")
	}

	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	class, ok := globalRegistry.classesByPackage[name]
	if !ok {
		class, ok = globalRegistry.classesByKey[name]
	}
	if !ok {
		return nil, fmt.Errorf("class not found: %s", name)
	}
	classCopy := *class
	return &classCopy, nil
}

// QueryClassesByPattern returns the classes whose package identity matches
// pattern. Pattern supports "*" wildcards.
func QueryClassesByPattern(pattern string) []ClassMetadata {
	if !globalRegistry.initialized.Load() {
		return nil
	}

	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	cacheKey := "pattern:" + pattern
	if cached := globalRegistry.getCached(cacheKey); cached != nil {
		return cached.([]ClassMetadata)
	}

	result := make([]ClassMetadata, 0)
	for _, class := range globalRegistry.metadata.Classes {
		if matchPattern(class.Package, pattern) {
			result = append(result, class)
		}
	}

	globalRegistry.setCached(cacheKey, result)
	return result
}

// QueryAttributesByType returns every attribute declared with the given
// type key, across all classes.
func QueryAttributesByType(typeKey string) []AttributeReference {
	if !globalRegistry.initialized.Load() {
		return nil
	}

	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	refs := globalRegistry.attributesByType[typeKey]
	result := make([]AttributeReference, len(refs))
	copy(result, refs)
	return result
}

// QueryTypes returns the registered types.
func QueryTypes() []TypeMetadata {
	m := GetMetadata()
	if m == nil {
		return nil
	}
	result := make([]TypeMetadata, len(m.Types))
	copy(result, m.Types)
	return result
}

// QuerySubclasses returns the packages of classes that list pkg as a
// direct parent, sorted.
func QuerySubclasses(pkg string) []string {
	m := GetMetadata()
	if m == nil {
		return nil
	}
	var result []string
	for _, class := range m.Classes {
		for _, parent := range class.Parents {
			if parent == pkg {
				result = append(result, class.Package)
				break
			}
		}
	}
	sort.Strings(result)
	return result
}

// Reset clears the registry (used for testing).
func Reset() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.reset()
}

func (r *Registry) getCached(key string) interface{} {
	r.cacheMutex.RLock()
	defer r.cacheMutex.RUnlock()
	return r.cache[key]
}

func (r *Registry) setCached(key string, value interface{}) {
	r.cacheMutex.Lock()
	defer r.cacheMutex.Unlock()
	r.cache[key] = value
}

// matchPattern matches a string against a pattern with wildcards
func matchPattern(s, pattern string) bool {
	if pattern == s || pattern == "*" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return false
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}
	return len(s) >= len(last) && strings.HasSuffix(s, last)
}
