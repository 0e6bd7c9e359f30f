package metadata

// GetRegistry returns the global registry singleton.
// This is the primary entry point for introspection tooling.
//
// Example usage:
//
//	metadata.RegisterLive(metadata.SnapshotOptions{Level: meta.Public})
//	registry := metadata.GetRegistry()
//	for _, class := range registry.Classes() {
//		fmt.Printf("Class: %s\n", class.Package)
//	}
func GetRegistry() *RegistryAPI {
	return &RegistryAPI{}
}

// RegistryAPI wraps the package-level query functions.
type RegistryAPI struct{}

// AttributeFilter narrows attribute queries. Empty fields match anything.
type AttributeFilter struct {
	Class      string // Class pattern, "*" wildcards allowed
	Type       string // Exact type key
	Visibility string // Exact visibility name (public, trusted, protected, private)
}

// Classes returns all registered classes.
func (r *RegistryAPI) Classes() []ClassMetadata {
	return QueryClasses()
}

// Class returns a single class by package identity or key.
//
// Example usage:
//
//	product, err := registry.Class("Shop::Product")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%s has %d attributes\n", product.Name, len(product.Attributes))
func (r *RegistryAPI) Class(name string) (*ClassMetadata, error) {
	return QueryClass(name)
}

// Attributes returns attributes across all classes that match filter.
// Multiple criteria are combined with AND logic.
func (r *RegistryAPI) Attributes(filter AttributeFilter) []AttributeReference {
	var candidates []AttributeReference
	if filter.Type != "" {
		candidates = QueryAttributesByType(filter.Type)
	} else {
		for _, class := range QueryClasses() {
			for _, attr := range class.Attributes {
				candidates = append(candidates, AttributeReference{Class: class.Package, Attribute: attr})
			}
		}
	}

	var result []AttributeReference
	for _, ref := range candidates {
		if filter.Class != "" && !matchPattern(ref.Class, filter.Class) {
			continue
		}
		if filter.Visibility != "" && ref.Attribute.Visibility != filter.Visibility {
			continue
		}
		result = append(result, ref)
	}
	return result
}

// Types returns the registered data types.
func (r *RegistryAPI) Types() []TypeMetadata {
	return QueryTypes()
}

// Dependencies returns the classes reachable from pkg through inheritance
// and class-typed attributes.
//
//   - Depth: Maximum traversal depth (0 = unlimited)
//   - Reverse: If true, finds subclasses and referencing classes
//   - Types: Filter edges by relationship ("inherits", "references")
func (r *RegistryAPI) Dependencies(pkg string, opts DependencyOptions) (*DependencyGraph, error) {
	return QueryDependencies(pkg, opts)
}

// GetSchema returns the complete snapshot, or nil when nothing is
// registered.
func (r *RegistryAPI) GetSchema() *Metadata {
	return GetMetadata()
}
