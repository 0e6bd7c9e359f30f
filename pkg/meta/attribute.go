package meta

import (
	"reflect"
	"regexp"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validName(name string) bool {
	return namePattern.MatchString(name)
}

// Default is an attribute's default value: absent, a literal, or a factory
// called each time the default is needed.
type Default struct {
	value   interface{}
	factory func() interface{}
	set     bool
}

// NoDefault is the absent default.
var NoDefault = Default{}

// Literal returns a default that always yields v.
func Literal(v interface{}) Default {
	return Default{value: v, set: true}
}

// Factory returns a default computed by fn when it is applied.
func Factory(fn func() interface{}) Default {
	return Default{factory: fn, set: fn != nil}
}

// IsSet reports whether a default was declared.
func (d Default) IsSet() bool { return d.set }

// IsFactory reports whether the default is computed.
func (d Default) IsFactory() bool { return d.factory != nil }

// Value returns the literal value; nil for factories and absent defaults.
func (d Default) Value() interface{} { return d.value }

// Resolve returns the default value, calling the factory if there is one.
func (d Default) Resolve() interface{} {
	if d.factory != nil {
		return d.factory()
	}
	return d.value
}

// AttributeSpec holds the parameters accepted by Class.AddAttribute.
type AttributeSpec struct {
	Name        string
	Type        string
	Label       string
	Description string
	Visibility  Visibility
	// Authorization defaults to ReadWrite.
	Authorization Authorization
	// Accessors defaults to the mode implied by Authorization.
	Accessors AccessorMode
	Context   Context
	Required  bool
	Once      bool
	Default   Default
	// Override permits replacing an attribute of the same name.
	Override bool
}

// Attribute describes one attribute of a class.
type Attribute struct {
	name        string
	label       string
	description string
	typ         *types.Descriptor
	visibility  Visibility
	authz       Authorization
	mode        AccessorMode
	context     Context
	required    bool
	once        bool
	def         Default
	override    bool
	class       *Class

	checks        []types.Check
	cell          *cell
	accessorNames []string
}

// AddAttribute declares an attribute. The type is resolved immediately, so
// an unregistered type key fails here rather than at Build.
func (c *Class) AddAttribute(spec AttributeSpec) (*Attribute, error) {
	if err := c.checkMutable(); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrMissingParameter,
			"attribute name is required"))
	}
	if !validName(spec.Name) {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadName,
			"attribute %q must contain only letters, digits and underscores", spec.Name).WithMember(spec.Name))
	}
	if !spec.Visibility.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid visibility %d for attribute %q", int(spec.Visibility), spec.Name).WithMember(spec.Name))
	}
	if !spec.Authorization.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid authorization %d for attribute %q", int(spec.Authorization), spec.Name).WithMember(spec.Name))
	}
	if !spec.Accessors.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid accessor mode %d for attribute %q", int(spec.Accessors), spec.Name).WithMember(spec.Name))
	}
	if !spec.Context.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid context %d for attribute %q", int(spec.Context), spec.Name).WithMember(spec.Name))
	}

	mode := spec.Accessors
	if mode == DeriveAccessors {
		mode = modeFor(spec.Authorization)
	} else if !mode.permits(spec.Authorization) {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"attribute %q: %s accessors exceed %s authorization", spec.Name, mode, spec.Authorization).WithMember(spec.Name))
	}

	if spec.Type == "" {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrMissingParameter,
			"type is required for attribute %q", spec.Name).WithMember(spec.Name))
	}
	typ, ok := c.types.Find(spec.Type)
	if !ok {
		return nil, c.fail(metaerrors.NewUnknownType(spec.Type).WithMember(spec.Name))
	}

	existing, exists := c.attrIndex[spec.Name]
	if exists && !spec.Override {
		return nil, c.fail(metaerrors.NewDuplicateAttribute(c.pkg, spec.Name))
	}

	attr := &Attribute{
		name:        spec.Name,
		label:       spec.Label,
		description: spec.Description,
		typ:         typ,
		visibility:  spec.Visibility,
		authz:       spec.Authorization,
		mode:        mode,
		context:     spec.Context,
		required:    spec.Required,
		once:        spec.Once,
		def:         spec.Default,
		override:    spec.Override,
		class:       c,
	}
	if attr.label == "" {
		attr.label = spec.Name
	}
	attr.checks = attr.checkChain()

	if spec.Default.IsSet() && !spec.Default.IsFactory() {
		for _, chk := range typ.Checks {
			if err := chk(spec.Default.Value(), emptySlot{}, attr); err != nil {
				return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadDefault,
					"default for attribute %q is invalid: %s", spec.Name, err.Error()).WithMember(spec.Name))
			}
		}
	}

	if exists {
		for i, a := range c.attributes {
			if a == existing {
				c.attributes[i] = attr
				break
			}
		}
		if existing.class != c {
			c.shadowed = append(c.shadowed, existing)
		}
	} else {
		c.attributes = append(c.attributes, attr)
	}
	c.attrIndex[attr.name] = attr
	return attr, nil
}

// checkChain returns the structural checks that apply followed by the
// type's own checks.
func (a *Attribute) checkChain() []types.Check {
	var chain []types.Check
	if a.required {
		chain = append(chain, requiredCheck)
	}
	if a.once {
		chain = append(chain, onceCheck)
	}
	return append(chain, a.typ.Checks...)
}

func requiredCheck(value interface{}, _ types.Slot, attr types.Subject) error {
	if isNil(value) {
		return metaerrors.NewRequired(attr.ClassPackage(), attr.AttributeName())
	}
	return nil
}

func onceCheck(value interface{}, slot types.Slot, attr types.Subject) error {
	if _, stored := slot.Load(); stored {
		return metaerrors.NewSetOnce(attr.ClassPackage(), attr.AttributeName(), value)
	}
	return nil
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Label returns the display label.
func (a *Attribute) Label() string { return a.label }

// Description returns the attribute description.
func (a *Attribute) Description() string { return a.description }

// Type returns the resolved data type.
func (a *Attribute) Type() *types.Descriptor { return a.typ }

// Visibility returns the declared visibility.
func (a *Attribute) Visibility() Visibility { return a.visibility }

// Authorization returns the declared authorization.
func (a *Attribute) Authorization() Authorization { return a.authz }

// Accessors returns the resolved accessor mode.
func (a *Attribute) Accessors() AccessorMode { return a.mode }

// Context returns the storage context.
func (a *Attribute) Context() Context { return a.context }

// Required reports whether a nil value is rejected.
func (a *Attribute) Required() bool { return a.required }

// Once reports whether the attribute can be set only once.
func (a *Attribute) Once() bool { return a.once }

// Default returns the declared default.
func (a *Attribute) Default() Default { return a.def }

// Override reports whether the declaration replaced another.
func (a *Attribute) Override() bool { return a.override }

// Class returns the class that declared the attribute.
func (a *Attribute) Class() *Class { return a.class }

// AccessorNames returns the capability names installed for the attribute.
func (a *Attribute) AccessorNames() []string {
	return append([]string(nil), a.accessorNames...)
}

// AttributeName implements types.Subject
func (a *Attribute) AttributeName() string { return a.name }

// ClassPackage implements types.Subject
func (a *Attribute) ClassPackage() string { return a.class.pkg }

// Get reads the attribute of self on behalf of caller, applying the same
// visibility rules as the generated accessors.
func (a *Attribute) Get(caller Caller, self Invocant) (interface{}, error) {
	if err := a.gate(caller); err != nil {
		return nil, err
	}
	if !a.authz.CanRead() {
		return nil, a.class.fail(metaerrors.NewWriteOnly(a.class.pkg, a.name))
	}
	return a.load(self)
}

// Set writes the attribute of self on behalf of caller, applying the same
// visibility rules and validation chain as the generated accessors.
func (a *Attribute) Set(caller Caller, self Invocant, value interface{}) error {
	if err := a.gate(caller); err != nil {
		return err
	}
	if !a.authz.CanWrite() {
		return a.class.fail(metaerrors.NewReadOnly(a.class.pkg, a.name))
	}
	return a.store(self, value)
}
