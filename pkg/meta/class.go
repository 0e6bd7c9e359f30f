package meta

import (
	"sort"

	"go.uber.org/zap"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

// Callable is an entry in a class's capability table.
type Callable func(caller Caller, self Invocant, args []interface{}) (interface{}, error)

// Invocant is either an *Instance or a *Class.
type Invocant interface {
	// Class returns the class descriptor of the invocant.
	Class() *Class
	instance() *Instance
}

// ClassSpec holds the parameters accepted by NewClass.
type ClassSpec struct {
	// Package is the class identity (e.g. "Shop::Product"). Required.
	Package string
	// Key is the unique short key; derived from Package when empty.
	Key         string
	Name        string
	Description string
	// Parents lists the package identities of built parent classes.
	Parents  []string
	Abstract bool
	// Trusted lists package identities granted access to trusted members.
	Trusted []string
	// ErrorHandler overrides the inherited or process-wide handler.
	ErrorHandler ErrorHandler
	// Types is the type registry used to resolve attribute types;
	// defaults to the first parent's registry, then types.Global().
	Types *types.Registry
}

// Class describes a class: its identity, its members and its capability
// table.
type Class struct {
	pkg         string
	key         string
	name        string
	description string
	parents     []*Class
	abstract    bool
	trusted     []string
	handler     ErrorHandler
	types       *types.Registry

	attributes []*Attribute
	attrIndex  map[string]*Attribute
	// shadowed holds inherited attributes replaced by an override or
	// hidden by a same-named attribute of an earlier parent.
	shadowed []*Attribute

	constructors []*Constructor
	ctorIndex    map[string]*Constructor

	methods     []*Method
	methodIndex map[string]*Method

	table map[string]Callable
	// ctorNames marks the table entries that are constructors.
	ctorNames map[string]bool
	built     bool
}

// capabilities is a capability table under construction.
type capabilities struct {
	table  map[string]Callable
	ctors  map[string]bool
	owners map[string]string
}

// NewClass creates and registers a class. Attributes of the parents are
// inherited in declaration order before any of the class's own.
func NewClass(spec ClassSpec) (*Class, error) {
	handler := spec.ErrorHandler
	fail := func(err *metaerrors.MetaError) error {
		h := handler
		if h == nil {
			h = defaultHandler
		}
		return raise(h, err.WithClass(spec.Package))
	}

	if spec.Package == "" {
		return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrMissingParameter, "class package identity is required"))
	}
	if registry.sealed {
		return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrRegistrySealed,
			"cannot register class %s: the class registry is sealed", spec.Package))
	}

	key := spec.Key
	if key == "" {
		key = defaultKey(spec.Package)
	}
	if key == "" || !validName(key) {
		return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrBadName,
			"class key %q must contain only letters, digits and underscores", key))
	}
	if _, exists := registry.byPackage[spec.Package]; exists {
		return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrDuplicateClass,
			"class %s is already registered", spec.Package))
	}
	if other, exists := registry.byKey[key]; exists {
		return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrDuplicateClass,
			"class key %q is already used by %s", key, other.pkg))
	}

	parents := make([]*Class, 0, len(spec.Parents))
	for _, name := range spec.Parents {
		parent, ok := registry.byPackage[name]
		if !ok {
			return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrUnknownParent,
				"parent class %s of %s is not registered", name, spec.Package))
		}
		if !parent.built {
			return nil, fail(metaerrors.NewDeclaration(metaerrors.ErrUnknownParent,
				"parent class %s of %s has not been built", name, spec.Package))
		}
		parents = append(parents, parent)
	}

	if handler == nil && len(parents) > 0 {
		handler = parents[0].handler
	}
	reg := spec.Types
	if reg == nil && len(parents) > 0 {
		reg = parents[0].types
	}
	if reg == nil {
		reg = types.Global()
	}

	c := &Class{
		pkg:         spec.Package,
		key:         key,
		name:        spec.Name,
		description: spec.Description,
		parents:     parents,
		abstract:    spec.Abstract,
		trusted:     append([]string(nil), spec.Trusted...),
		handler:     handler,
		types:       reg,
		attrIndex:   make(map[string]*Attribute),
		ctorIndex:   make(map[string]*Constructor),
		methodIndex: make(map[string]*Method),
		table:       make(map[string]Callable),
		ctorNames:   make(map[string]bool),
	}
	if c.name == "" {
		c.name = spec.Package
	}

	for _, parent := range parents {
		for _, attr := range parent.attributes {
			if winner, seen := c.attrIndex[attr.name]; seen {
				if winner != attr {
					c.shadowed = append(c.shadowed, attr)
				}
				continue
			}
			c.attributes = append(c.attributes, attr)
			c.attrIndex[attr.name] = attr
		}
		for _, m := range parent.methods {
			if _, seen := c.methodIndex[m.name]; seen {
				continue
			}
			c.methods = append(c.methods, m)
			c.methodIndex[m.name] = m
		}
	}

	// Attributes may be typed by class key, including the class's own.
	if !reg.Exists(key) {
		if _, err := reg.Add(types.Definition{
			Key:          key,
			Name:         c.name,
			Description:  spec.Description,
			Checks:       []types.Check{types.ClassCheck(c.pkg)},
			ClassPackage: c.pkg,
		}); err != nil {
			return nil, c.fail(asMetaError(err))
		}
	}

	registry.add(c)
	logger.Debug("class registered",
		zap.String("class", c.pkg),
		zap.String("key", c.key),
		zap.Int("inherited_attributes", len(c.attributes)))
	return c, nil
}

// fail routes err through the class's error handler.
func (c *Class) fail(err *metaerrors.MetaError) error {
	if err.Class == "" {
		err.Class = c.pkg
	}
	h := c.handler
	if h == nil {
		h = defaultHandler
	}
	return raise(h, err)
}

func raise(h ErrorHandler, err error) error {
	if out := h(err); out != nil {
		return out
	}
	return err
}

func asMetaError(err error) *metaerrors.MetaError {
	if me, ok := err.(*metaerrors.MetaError); ok {
		return me
	}
	return metaerrors.NewDeclaration(metaerrors.ErrMissingParameter, "%s", err.Error())
}

// Package returns the class identity.
func (c *Class) Package() string { return c.pkg }

// Key returns the unique registry key.
func (c *Class) Key() string { return c.key }

// Name returns the display name.
func (c *Class) Name() string { return c.name }

// Description returns the class description.
func (c *Class) Description() string { return c.description }

// Abstract reports whether the class can be instantiated.
func (c *Class) Abstract() bool { return c.abstract }

// Built reports whether Build has completed.
func (c *Class) Built() bool { return c.built }

// Types returns the type registry the class resolves attribute types in.
func (c *Class) Types() *types.Registry { return c.types }

// Caller returns the caller token identifying code of this class.
func (c *Class) Caller() Caller { return Caller(c.pkg) }

// Class returns c, making a Class usable as an Invocant.
func (c *Class) Class() *Class { return c }

func (c *Class) instance() *Instance { return nil }

// Parents returns the direct parents in declaration order.
func (c *Class) Parents() []*Class {
	return append([]*Class(nil), c.parents...)
}

// Trusted returns the package identities trusted by the class.
func (c *Class) Trusted() []string {
	return append([]string(nil), c.trusted...)
}

// IsA reports whether the class is pkg or inherits from it.
func (c *Class) IsA(pkg string) bool {
	if c.pkg == pkg {
		return true
	}
	for _, parent := range c.parents {
		if parent.IsA(pkg) {
			return true
		}
	}
	return false
}

// admits reports whether caller may use a member of the given visibility
// owned by c.
func (c *Class) admits(caller Caller, v Visibility) bool {
	switch v {
	case Public:
		return true
	case Private:
		return string(caller) == c.pkg
	case Protected:
		if string(caller) == c.pkg {
			return true
		}
		if other, ok := registry.byPackage[string(caller)]; ok {
			return other.IsA(c.pkg)
		}
		return false
	case Trusted:
		if string(caller) == c.pkg {
			return true
		}
		for _, pkg := range c.trusted {
			if pkg == string(caller) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Attributes returns the attributes (inherited and own) visible at tier
// level, in declaration order.
func (c *Class) Attributes(level Visibility) []*Attribute {
	result := make([]*Attribute, 0, len(c.attributes))
	for _, attr := range c.attributes {
		if level.Includes(attr.visibility) {
			result = append(result, attr)
		}
	}
	return result
}

// Attribute returns the attribute with the given name.
func (c *Class) Attribute(name string) (*Attribute, bool) {
	attr, ok := c.attrIndex[name]
	return attr, ok
}

// Constructors returns the class's constructors visible at tier level, in
// declaration order.
func (c *Class) Constructors(level Visibility) []*Constructor {
	result := make([]*Constructor, 0, len(c.constructors))
	for _, ctor := range c.constructors {
		if level.Includes(ctor.visibility) {
			result = append(result, ctor)
		}
	}
	return result
}

// Constructor returns the constructor with the given name.
func (c *Class) Constructor(name string) (*Constructor, bool) {
	ctor, ok := c.ctorIndex[name]
	return ctor, ok
}

// Methods returns the methods (inherited and own) visible at tier level,
// in declaration order.
func (c *Class) Methods(level Visibility) []*Method {
	result := make([]*Method, 0, len(c.methods))
	for _, m := range c.methods {
		if level.Includes(m.visibility) {
			result = append(result, m)
		}
	}
	return result
}

// Method returns the method with the given name.
func (c *Class) Method(name string) (*Method, bool) {
	m, ok := c.methodIndex[name]
	return m, ok
}

// Can reports whether the capability table has an entry for name.
func (c *Class) Can(name string) bool {
	_, ok := c.table[name]
	return ok
}

// Capabilities returns the sorted names in the capability table.
func (c *Class) Capabilities() []string {
	names := make([]string, 0, len(c.table))
	for name := range c.table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes a capability with the class itself as invocant.
func (c *Class) Call(caller Caller, name string, args ...interface{}) (interface{}, error) {
	return c.dispatch(caller, c, name, args)
}

// New invokes the constructor named "new".
func (c *Class) New(caller Caller, params map[string]interface{}) (*Instance, error) {
	return c.Construct(caller, "new", params)
}

// Construct invokes the named constructor, which may be inherited. Names
// that are not constructors fail without being called.
func (c *Class) Construct(caller Caller, name string, params map[string]interface{}) (*Instance, error) {
	if !c.ctorNames[name] {
		return nil, c.fail(metaerrors.NewNoSuchMethod(c.pkg, name))
	}
	out, err := c.dispatch(caller, c, name, []interface{}{params})
	if err != nil {
		return nil, err
	}
	inst, ok := out.(*Instance)
	if !ok {
		return nil, c.fail(metaerrors.NewNoSuchMethod(c.pkg, name))
	}
	return inst, nil
}

func (c *Class) dispatch(caller Caller, self Invocant, name string, args []interface{}) (interface{}, error) {
	fn, ok := c.table[name]
	if !ok {
		return nil, c.fail(metaerrors.NewNoSuchMethod(c.pkg, name))
	}
	return fn(caller, self, args)
}

func (c *Class) checkMutable() error {
	if c.built {
		return c.fail(metaerrors.NewDeclaration(metaerrors.ErrClassBuilt,
			"class %s has already been built", c.pkg))
	}
	return nil
}

// Build installs accessors, constructors and methods into the capability
// table and seals the class against further declarations.
func (c *Class) Build() error {
	if err := c.checkMutable(); err != nil {
		return err
	}

	caps := &capabilities{
		table:  make(map[string]Callable),
		ctors:  make(map[string]bool),
		owners: make(map[string]string),
	}
	for _, parent := range c.parents {
		for name, fn := range parent.table {
			if _, seen := caps.table[name]; !seen {
				caps.table[name] = fn
				caps.ctors[name] = parent.ctorNames[name]
			}
		}
	}
	caps.table["my_class"] = func(_ Caller, self Invocant, _ []interface{}) (interface{}, error) {
		return self.Class(), nil
	}
	for _, old := range c.shadowed {
		for _, name := range old.accessorNames {
			delete(caps.table, name)
			delete(caps.ctors, name)
		}
	}
	c.restoreInherited(caps)

	for _, attr := range c.attributes {
		if attr.class != c {
			continue
		}
		if err := c.buildAccessors(caps, attr); err != nil {
			return err
		}
	}
	for _, ctor := range c.constructors {
		if err := c.install(caps, ctor.name, "constructor "+ctor.name, ctor.callable()); err != nil {
			return err
		}
		caps.ctors[ctor.name] = true
	}
	for _, m := range c.methods {
		if m.class != c {
			continue
		}
		if err := c.install(caps, m.name, "method "+m.name, m.callable()); err != nil {
			return err
		}
	}

	c.table = caps.table
	c.ctorNames = caps.ctors
	c.built = true
	logger.Debug("class built",
		zap.String("class", c.pkg),
		zap.Int("attributes", len(c.attributes)),
		zap.Int("constructors", len(c.constructors)),
		zap.Int("methods", len(c.methods)))
	return nil
}

// restoreInherited puts back the accessors of inherited attributes that
// removing shadowed names took out of caps. Each comes from the first
// parent that carries the attribute.
func (c *Class) restoreInherited(caps *capabilities) {
	for _, attr := range c.attributes {
		if attr.class == c {
			continue
		}
		for _, parent := range c.parents {
			if parent.attrIndex[attr.name] != attr {
				continue
			}
			for _, name := range attr.accessorNames {
				if _, present := caps.table[name]; present {
					continue
				}
				if fn, ok := parent.table[name]; ok {
					caps.table[name] = fn
					caps.ctors[name] = false
				}
			}
			break
		}
	}
}

// install adds a callable under name. Two of the class's own members may
// not claim the same name; inherited entries are replaced.
func (c *Class) install(caps *capabilities, name, owner string, fn Callable) error {
	if prev, taken := caps.owners[name]; taken {
		return c.fail(metaerrors.NewDeclaration(metaerrors.ErrAccessorConflict,
			"%s and %s of class %s both install %q", prev, owner, c.pkg, name).WithMember(name))
	}
	caps.owners[name] = owner
	caps.table[name] = fn
	caps.ctors[name] = false
	return nil
}
