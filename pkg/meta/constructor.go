package meta

import (
	"sort"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

// ConstructorFunc is a custom constructor body. It receives the caller
// token of the original invoker and the class being instantiated, which
// may be a subclass of the declaring class.
type ConstructorFunc func(caller Caller, class *Class, params map[string]interface{}) (*Instance, error)

// ConstructorSpec holds the parameters accepted by Class.AddConstructor.
// Exactly one of Create and Code must be set.
type ConstructorSpec struct {
	Name        string
	Label       string
	Description string
	Visibility  Visibility
	// Create requests a generated constructor.
	Create bool
	// Code is a custom constructor body.
	Code ConstructorFunc
}

// Constructor describes one constructor of a class.
type Constructor struct {
	name        string
	label       string
	description string
	visibility  Visibility
	create      bool
	code        ConstructorFunc
	class       *Class
}

// AddConstructor declares a constructor. Its name must not collide with a
// method or constructor already declared in the class.
func (c *Class) AddConstructor(spec ConstructorSpec) (*Constructor, error) {
	if err := c.checkMutable(); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrMissingParameter,
			"constructor name is required"))
	}
	if !validName(spec.Name) {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadName,
			"constructor %q must contain only letters, digits and underscores", spec.Name).WithMember(spec.Name))
	}
	if !spec.Visibility.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid visibility %d for constructor %q", int(spec.Visibility), spec.Name).WithMember(spec.Name))
	}
	if spec.Create == (spec.Code != nil) {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrNotCallable,
			"constructor %q needs either Create or Code, not both or neither", spec.Name).WithMember(spec.Name))
	}
	if err := c.checkMemberName(spec.Name, "constructor"); err != nil {
		return nil, err
	}

	ctor := &Constructor{
		name:        spec.Name,
		label:       spec.Label,
		description: spec.Description,
		visibility:  spec.Visibility,
		create:      spec.Create,
		code:        spec.Code,
		class:       c,
	}
	if ctor.label == "" {
		ctor.label = spec.Name
	}
	c.constructors = append(c.constructors, ctor)
	c.ctorIndex[ctor.name] = ctor
	return ctor, nil
}

// checkMemberName rejects names already taken by the class's own
// constructors or methods.
func (c *Class) checkMemberName(name, kind string) error {
	if _, exists := c.ctorIndex[name]; exists {
		return c.fail(metaerrors.NewDeclaration(metaerrors.ErrDuplicateMember,
			"%s %q collides with constructor %q of class %s", kind, name, name, c.pkg).WithMember(name))
	}
	if m, exists := c.methodIndex[name]; exists && m.class == c {
		return c.fail(metaerrors.NewDeclaration(metaerrors.ErrDuplicateMember,
			"%s %q collides with method %q of class %s", kind, name, name, c.pkg).WithMember(name))
	}
	return nil
}

// Name returns the constructor name.
func (k *Constructor) Name() string { return k.name }

// Label returns the display label.
func (k *Constructor) Label() string { return k.label }

// Description returns the constructor description.
func (k *Constructor) Description() string { return k.description }

// Visibility returns the declared visibility.
func (k *Constructor) Visibility() Visibility { return k.visibility }

// Generated reports whether the constructor body is generated.
func (k *Constructor) Generated() bool { return k.create }

// Class returns the class that declared the constructor.
func (k *Constructor) Class() *Class { return k.class }

// Call constructs an instance of the declaring class on behalf of caller.
func (k *Constructor) Call(caller Caller, params map[string]interface{}) (*Instance, error) {
	return k.construct(caller, k.class, params)
}

func (k *Constructor) callable() Callable {
	return func(caller Caller, self Invocant, args []interface{}) (interface{}, error) {
		var params map[string]interface{}
		if len(args) > 0 && args[0] != nil {
			p, ok := args[0].(map[string]interface{})
			if !ok {
				return nil, k.class.fail(metaerrors.NewDeclaration(metaerrors.ErrMissingParameter,
					"constructor %q expects a map of attribute values", k.name).WithMember(k.name))
			}
			params = p
		}
		return k.construct(caller, self.Class(), params)
	}
}

// construct gates on the constructor's visibility, then builds an instance
// of target. The caller token is forwarded unchanged so that code reached
// from the constructor sees the original invoker.
func (k *Constructor) construct(caller Caller, target *Class, params map[string]interface{}) (*Instance, error) {
	if !k.class.admits(caller, k.visibility) {
		return nil, k.class.fail(metaerrors.NewAccessDenied(k.class.pkg, k.name, "constructor",
			k.visibility.String(), caller.String()))
	}
	if target.abstract {
		return nil, target.fail(metaerrors.NewAbstract(target.pkg))
	}
	if !k.create {
		return k.code(caller, target, params)
	}
	return target.initialize(params)
}

// initialize creates an instance of c and assigns every instance-context
// attribute from params, falling back to its default. Supplied values go
// through the attribute's full check chain; names that match no writable
// instance attribute are reported together.
func (c *Class) initialize(params map[string]interface{}) (*Instance, error) {
	inst := newInstance(c)

	remaining := make(map[string]interface{}, len(params))
	for k, v := range params {
		remaining[k] = v
	}

	for _, attr := range c.attributes {
		if attr.context != InstanceContext {
			continue
		}
		if value, ok := remaining[attr.name]; ok && attr.authz.CanWrite() {
			delete(remaining, attr.name)
			if err := attr.store(inst, value); err != nil {
				return nil, err
			}
			continue
		}
		if attr.def.IsSet() {
			if err := attr.store(inst, attr.def.Resolve()); err != nil {
				return nil, err
			}
		}
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, c.fail(metaerrors.NewNoSuchAttribute(c.pkg, names))
	}
	return inst, nil
}
