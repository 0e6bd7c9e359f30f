package meta

import (
	"errors"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

// cell is the storage shared by a class, its subclasses and all of their
// instances for a class-context attribute. It is not synchronized.
type cell struct {
	value  interface{}
	stored bool
}

type cellSlot struct{ c *cell }

func (s cellSlot) Load() (interface{}, bool) { return s.c.Load() }

func (c *cell) Load() (interface{}, bool) { return c.value, c.stored }

func (s cellSlot) store(v interface{}) {
	s.c.value = v
	s.c.stored = true
}

type instanceSlot struct {
	inst *Instance
	name string
}

func (s instanceSlot) Load() (interface{}, bool) {
	v, ok := s.inst.values[s.name]
	return v, ok
}

func (s instanceSlot) store(v interface{}) {
	s.inst.values[s.name] = v
}

type emptySlot struct{}

func (emptySlot) Load() (interface{}, bool) { return nil, false }

type writableSlot interface {
	types.Slot
	store(v interface{})
}

// slot returns the storage for the attribute as seen from self.
func (a *Attribute) slot(self Invocant) (writableSlot, error) {
	if a.context == ClassContext {
		if a.cell == nil {
			a.cell = &cell{}
		}
		return cellSlot{a.cell}, nil
	}
	inst := self.instance()
	if inst == nil {
		return nil, a.class.fail(metaerrors.NewInvalidInvocant(a.class.pkg, a.name))
	}
	return instanceSlot{inst: inst, name: a.name}, nil
}

func (a *Attribute) load(self Invocant) (interface{}, error) {
	s, err := a.slot(self)
	if err != nil {
		return nil, err
	}
	v, _ := s.Load()
	return v, nil
}

// store runs the check chain and writes value only when every check
// passes.
func (a *Attribute) store(self Invocant, value interface{}) error {
	s, err := a.slot(self)
	if err != nil {
		return err
	}
	for _, chk := range a.checks {
		if err := chk(value, s, a); err != nil {
			return a.class.fail(a.validationError(err, value))
		}
	}
	s.store(value)
	return nil
}

func (a *Attribute) validationError(err error, value interface{}) *metaerrors.MetaError {
	var me *metaerrors.MetaError
	if errors.As(err, &me) {
		return me
	}
	var ce *types.CheckError
	if errors.As(err, &ce) {
		return metaerrors.NewValidation(a.class.pkg, a.name, value, ce.Expected, ce.Message)
	}
	return metaerrors.NewValidation(a.class.pkg, a.name, value, a.typ.Name, err.Error())
}

// gate enforces the attribute's visibility against caller.
func (a *Attribute) gate(caller Caller) error {
	if a.class.admits(caller, a.visibility) {
		return nil
	}
	return a.class.fail(metaerrors.NewAccessDenied(a.class.pkg, a.name, "attribute",
		a.visibility.String(), caller.String()))
}

// buildAccessors synthesizes the accessor callables for attr according to
// its type's strategy and installs them into caps.
func (c *Class) buildAccessors(caps *capabilities, attr *Attribute) error {
	if attr.context == ClassContext {
		if attr.cell == nil {
			attr.cell = &cell{}
		}
		if _, stored := attr.cell.Load(); !stored && attr.def.IsSet() {
			if err := attr.store(c, attr.def.Resolve()); err != nil {
				return err
			}
		}
	}

	attr.accessorNames = nil
	if attr.mode == NoAccessors {
		return nil
	}

	getName, setName := attr.typ.AccessorNames(attr.name)
	if getName == setName {
		return c.installAccessor(caps, attr, getName, attr.combinedAccessor())
	}

	if attr.mode.CanGet() {
		if err := c.installAccessor(caps, attr, getName, attr.getter()); err != nil {
			return err
		}
	}
	if attr.mode.CanSet() {
		if err := c.installAccessor(caps, attr, setName, attr.setter()); err != nil {
			return err
		}
	}

	if attr.typ.Boolean {
		if attr.mode.CanGet() {
			if err := c.installAccessor(caps, attr, "is_"+attr.name, attr.getter()); err != nil {
				return err
			}
		}
		if attr.mode.CanSet() {
			if err := c.installAccessor(caps, attr, "set_"+attr.name+"_on", attr.forcer(true)); err != nil {
				return err
			}
			if err := c.installAccessor(caps, attr, "set_"+attr.name+"_off", attr.forcer(false)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Class) installAccessor(caps *capabilities, attr *Attribute, name string, fn Callable) error {
	if err := c.install(caps, name, "attribute "+attr.name, fn); err != nil {
		return err
	}
	attr.accessorNames = append(attr.accessorNames, name)
	return nil
}

// combinedAccessor gets when called without arguments and sets with the
// first argument otherwise. Calling a half the mode does not include is a
// silent no-op.
func (a *Attribute) combinedAccessor() Callable {
	return func(caller Caller, self Invocant, args []interface{}) (interface{}, error) {
		if err := a.gate(caller); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			if !a.mode.CanGet() {
				return nil, nil
			}
			return a.load(self)
		}
		if !a.mode.CanSet() {
			return nil, nil
		}
		return nil, a.store(self, args[0])
	}
}

func (a *Attribute) getter() Callable {
	return func(caller Caller, self Invocant, _ []interface{}) (interface{}, error) {
		if err := a.gate(caller); err != nil {
			return nil, err
		}
		return a.load(self)
	}
}

// setter stores the first argument; calling it without one stores nil.
func (a *Attribute) setter() Callable {
	return func(caller Caller, self Invocant, args []interface{}) (interface{}, error) {
		if err := a.gate(caller); err != nil {
			return nil, err
		}
		var value interface{}
		if len(args) > 0 {
			value = args[0]
		}
		return nil, a.store(self, value)
	}
}

func (a *Attribute) forcer(value bool) Callable {
	return func(caller Caller, self Invocant, _ []interface{}) (interface{}, error) {
		if err := a.gate(caller); err != nil {
			return nil, err
		}
		return nil, a.store(self, value)
	}
}
