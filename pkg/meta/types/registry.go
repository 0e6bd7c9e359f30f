package types

import (
	"sort"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

// Registry maps type keys (and aliases) to descriptors.
//
// There is no locking: registration is expected during program
// initialization, before any concurrent reads.
type Registry struct {
	types   map[string]*Descriptor
	aliases map[string]string
}

// Definition holds the parameters accepted by Register.
type Definition struct {
	Key         string
	Name        string
	Description string
	Aliases     []string
	Checks      []Check
	Strategy    Strategy
	Naming      Naming
	Boolean     bool

	// ClassPackage marks a type backed by a class.
	ClassPackage string

	// Replace allows an existing key to be redefined.
	Replace bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*Descriptor),
		aliases: make(map[string]string),
	}
}

var globalRegistry = newGlobal()

func newGlobal() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r, Default); err != nil {
		panic(err)
	}
	return r
}

// Global returns the process-wide registry, pre-populated with the
// built-in types using the Default accessor strategy.
func Global() *Registry {
	return globalRegistry
}

// ResetGlobal restores the process-wide registry to its built-in state
// (used for testing).
func ResetGlobal() {
	globalRegistry = newGlobal()
}

var errorHandler func(error) error

// SetErrorHandler installs the function Register and Lookup failures are
// routed through. Its return value replaces the failure unless nil.
func SetErrorHandler(h func(error) error) {
	errorHandler = h
}

func raise(err error) error {
	if errorHandler == nil {
		return err
	}
	if out := errorHandler(err); out != nil {
		return out
	}
	return err
}

// Register adds a type. It fails when the key or name is missing, when a
// key or alias is already taken (unless Replace is set), or when the
// strategy is not a declared constant. Failures go through the error
// handler.
func (r *Registry) Register(def Definition) (*Descriptor, error) {
	desc, err := r.Add(def)
	if err != nil {
		return nil, raise(err)
	}
	return desc, nil
}

// Add is Register for callers that route failures themselves.
func (r *Registry) Add(def Definition) (*Descriptor, error) {
	if def.Key == "" {
		return nil, metaerrors.NewDeclaration(metaerrors.ErrMissingParameter, "type key is required")
	}
	if def.Name == "" {
		return nil, metaerrors.NewDeclaration(metaerrors.ErrMissingParameter, "name is required for type %q", def.Key)
	}
	if !def.Strategy.Valid() {
		return nil, metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid accessor strategy %d for type %q", int(def.Strategy), def.Key)
	}
	if def.Strategy == Custom && def.Naming == nil {
		return nil, metaerrors.NewDeclaration(metaerrors.ErrNotCallable,
			"custom accessor strategy for type %q requires a naming function", def.Key)
	}
	for i, chk := range def.Checks {
		if chk == nil {
			return nil, metaerrors.NewDeclaration(metaerrors.ErrNotCallable,
				"check %d for type %q is not callable", i, def.Key)
		}
	}

	if !def.Replace {
		if _, exists := r.types[def.Key]; exists {
			return nil, metaerrors.NewDeclaration(metaerrors.ErrDuplicateType, "type %q is already registered", def.Key)
		}
		if _, exists := r.aliases[def.Key]; exists {
			return nil, metaerrors.NewDeclaration(metaerrors.ErrDuplicateType, "type %q is already registered as an alias", def.Key)
		}
		for _, alias := range def.Aliases {
			if r.taken(alias) {
				return nil, metaerrors.NewDeclaration(metaerrors.ErrDuplicateType, "type alias %q is already registered", alias)
			}
		}
	}

	desc := &Descriptor{
		Key:          def.Key,
		Name:         def.Name,
		Description:  def.Description,
		Aliases:      append([]string(nil), def.Aliases...),
		Checks:       append([]Check(nil), def.Checks...),
		Strategy:     def.Strategy,
		Naming:       def.Naming,
		Boolean:      def.Boolean,
		ClassPackage: def.ClassPackage,
	}

	r.types[desc.Key] = desc
	for _, alias := range desc.Aliases {
		r.aliases[alias] = desc.Key
	}
	return desc, nil
}

func (r *Registry) taken(key string) bool {
	if _, ok := r.types[key]; ok {
		return true
	}
	_, ok := r.aliases[key]
	return ok
}

// Lookup returns the descriptor for a key or alias, or an UnknownType error
// routed through the error handler.
func (r *Registry) Lookup(key string) (*Descriptor, error) {
	if desc, ok := r.Find(key); ok {
		return desc, nil
	}
	return nil, raise(metaerrors.NewUnknownType(key))
}

// Find returns the descriptor for a key or alias.
func (r *Registry) Find(key string) (*Descriptor, bool) {
	if desc, ok := r.types[key]; ok {
		return desc, true
	}
	if target, ok := r.aliases[key]; ok {
		desc, ok := r.types[target]
		return desc, ok
	}
	return nil, false
}

// Exists checks if a type key or alias is registered
func (r *Registry) Exists(key string) bool {
	return r.taken(key)
}

// Keys returns the registered type keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.types))
	for key := range r.types {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of registered types (aliases excluded)
func (r *Registry) Count() int {
	return len(r.types)
}
