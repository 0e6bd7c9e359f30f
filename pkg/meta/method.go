package meta

import (
	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

// MethodFunc is a method body. Errors it returns are passed through
// untouched.
type MethodFunc func(caller Caller, self Invocant, args ...interface{}) (interface{}, error)

// MethodSpec holds the parameters accepted by Class.AddMethod.
type MethodSpec struct {
	Name        string
	Label       string
	Description string
	Visibility  Visibility
	// Context ClassContext marks a method callable on the class itself.
	Context Context
	// Args names the arguments, for introspection.
	Args []string
	// Returns names the result type, for introspection.
	Returns string
	Code    MethodFunc
}

// Method describes one method of a class.
type Method struct {
	name        string
	label       string
	description string
	visibility  Visibility
	context     Context
	args        []string
	returns     string
	code        MethodFunc
	class       *Class
}

// AddMethod declares a method. Its name must not collide with a method or
// constructor already declared in the class; inherited methods may be
// redefined.
func (c *Class) AddMethod(spec MethodSpec) (*Method, error) {
	if err := c.checkMutable(); err != nil {
		return nil, err
	}
	if spec.Name == "" {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrMissingParameter, "method name is required"))
	}
	if !validName(spec.Name) {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadName,
			"method %q must contain only letters, digits and underscores", spec.Name).WithMember(spec.Name))
	}
	if !spec.Visibility.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid visibility %d for method %q", int(spec.Visibility), spec.Name).WithMember(spec.Name))
	}
	if !spec.Context.Valid() {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrBadConstant,
			"invalid context %d for method %q", int(spec.Context), spec.Name).WithMember(spec.Name))
	}
	if spec.Code == nil {
		return nil, c.fail(metaerrors.NewDeclaration(metaerrors.ErrNotCallable,
			"method %q has no code", spec.Name).WithMember(spec.Name))
	}
	if err := c.checkMemberName(spec.Name, "method"); err != nil {
		return nil, err
	}

	m := &Method{
		name:        spec.Name,
		label:       spec.Label,
		description: spec.Description,
		visibility:  spec.Visibility,
		context:     spec.Context,
		args:        append([]string(nil), spec.Args...),
		returns:     spec.Returns,
		code:        spec.Code,
		class:       c,
	}
	if m.label == "" {
		m.label = spec.Name
	}

	if inherited, exists := c.methodIndex[m.name]; exists {
		for i, existing := range c.methods {
			if existing == inherited {
				c.methods[i] = m
				break
			}
		}
	} else {
		c.methods = append(c.methods, m)
	}
	c.methodIndex[m.name] = m
	return m, nil
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Label returns the display label.
func (m *Method) Label() string { return m.label }

// Description returns the method description.
func (m *Method) Description() string { return m.description }

// Visibility returns the declared visibility.
func (m *Method) Visibility() Visibility { return m.visibility }

// Context returns whether the method is callable on the class.
func (m *Method) Context() Context { return m.context }

// Args returns the declared argument names.
func (m *Method) Args() []string { return append([]string(nil), m.args...) }

// Returns returns the declared result type.
func (m *Method) Returns() string { return m.returns }

// Class returns the class that declared the method.
func (m *Method) Class() *Class { return m.class }

// Call invokes the method on self on behalf of caller.
func (m *Method) Call(caller Caller, self Invocant, args ...interface{}) (interface{}, error) {
	if !m.class.admits(caller, m.visibility) {
		return nil, m.class.fail(metaerrors.NewAccessDenied(m.class.pkg, m.name, "method",
			m.visibility.String(), caller.String()))
	}
	if m.context == InstanceContext && self.instance() == nil {
		return nil, m.class.fail(metaerrors.NewInvalidInvocant(m.class.pkg, m.name))
	}
	return m.code(caller, self, args...)
}

func (m *Method) callable() Callable {
	return func(caller Caller, self Invocant, args []interface{}) (interface{}, error) {
		return m.Call(caller, self, args...)
	}
}
