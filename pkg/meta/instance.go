package meta

import (
	"github.com/google/uuid"
)

// Instance is an object of a built class. Instance-context attribute values
// live in the instance; class-context values live in the class.
type Instance struct {
	id     uuid.UUID
	class  *Class
	values map[string]interface{}
}

func newInstance(c *Class) *Instance {
	return &Instance{
		id:     uuid.New(),
		class:  c,
		values: make(map[string]interface{}),
	}
}

// ID returns the unique identity of the instance.
func (i *Instance) ID() uuid.UUID { return i.id }

// Class returns the class descriptor of the instance.
func (i *Instance) Class() *Class { return i.class }

func (i *Instance) instance() *Instance { return i }

// IsA reports whether the instance's class is pkg or inherits from it.
func (i *Instance) IsA(pkg string) bool {
	return i.class.IsA(pkg)
}

// Call invokes a capability of the instance's class with the instance as
// invocant.
func (i *Instance) Call(caller Caller, name string, args ...interface{}) (interface{}, error) {
	return i.class.dispatch(caller, i, name, args)
}

// Can reports whether the instance's class has a capability named name.
func (i *Instance) Can(name string) bool {
	return i.class.Can(name)
}

// String renders the instance as "<package>=<id>".
func (i *Instance) String() string {
	return i.class.pkg + "=" + i.id.String()
}
