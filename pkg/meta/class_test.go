package meta

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

func TestNewClass_Registry(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Shop::Product", Description: "Things we sell"})
	assert.Equal(t, "shop_product", c.Key())
	assert.Equal(t, "Shop::Product", c.Name())

	byPkg, ok := ForPackage("Shop::Product")
	require.True(t, ok)
	assert.Same(t, c, byPkg)

	byKey, ok := ForKey("shop_product")
	require.True(t, ok)
	assert.Same(t, c, byKey)

	assert.True(t, c.Types().Exists("shop_product"), "class key is usable as an attribute type")

	_, err := NewClass(ClassSpec{Package: "Shop::Product"})
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrDuplicateClass, code(t, err))

	_, err = NewClass(ClassSpec{Package: "Shop::Other", Key: "shop_product"})
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrDuplicateClass, code(t, err))

	other := newClass(t, ClassSpec{Package: "Shop::Order", Key: "order"})
	assert.Equal(t, []*Class{c, other}, Classes())
}

func TestNewClass_Errors(t *testing.T) {
	setup(t)
	build(t, newClass(t, ClassSpec{Package: "Base::Built"}))
	newClass(t, ClassSpec{Package: "Base::Unbuilt"})

	tests := []struct {
		name string
		spec ClassSpec
		code metaerrors.Code
	}{
		{"missing package", ClassSpec{}, metaerrors.ErrMissingParameter},
		{"bad key", ClassSpec{Package: "X::Y", Key: "x-y"}, metaerrors.ErrBadName},
		{"unknown parent", ClassSpec{Package: "X::Child", Parents: []string{"Nope"}}, metaerrors.ErrUnknownParent},
		{"unbuilt parent", ClassSpec{Package: "X::Child", Parents: []string{"Base::Unbuilt"}}, metaerrors.ErrUnknownParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClass(tt.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, metaerrors.ErrDeclaration)
			assert.Equal(t, tt.code, code(t, err))
		})
	}
}

func TestDefaultKey(t *testing.T) {
	tests := map[string]string{
		"Shop::Product":   "shop_product",
		"shop.Product":    "shop_product",
		"Acme::HTTP::API": "acme_http_api",
		"::Leading":       "leading",
		"Trailing::":      "trailing",
	}
	for in, want := range tests {
		assert.Equal(t, want, defaultKey(in), in)
	}
}

func TestSeal(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Early"})
	Seal()
	assert.True(t, Sealed())

	_, err := NewClass(ClassSpec{Package: "Test::Late"})
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrRegistrySealed, code(t, err))

	assert.NoError(t, c.Build(), "already-registered classes can still be built")

	Reset()
	assert.False(t, Sealed())
	_, ok := ForPackage("Test::Early")
	assert.False(t, ok)
}

func TestBuild_ClosesDeclaration(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Closed"})
	addAttr(t, c, AttributeSpec{Name: "a", Type: types.String})
	build(t, c)
	assert.True(t, c.Built())

	err := c.Build()
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrClassBuilt, code(t, err))

	_, err = c.AddAttribute(AttributeSpec{Name: "b", Type: types.String})
	assert.Equal(t, metaerrors.ErrClassBuilt, code(t, err))
	_, err = c.AddConstructor(ConstructorSpec{Name: "new", Create: true})
	assert.Equal(t, metaerrors.ErrClassBuilt, code(t, err))
	_, err = c.AddMethod(MethodSpec{Name: "m", Code: noop})
	assert.Equal(t, metaerrors.ErrClassBuilt, code(t, err))
}

func TestAddAttribute_Errors(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Attrs"})
	addAttr(t, c, AttributeSpec{Name: "taken", Type: types.String})

	tests := []struct {
		name string
		spec AttributeSpec
		kind error
		code metaerrors.Code
	}{
		{"missing name", AttributeSpec{Type: types.String}, metaerrors.ErrDeclaration, metaerrors.ErrMissingParameter},
		{"bad name", AttributeSpec{Name: "first name", Type: types.String}, metaerrors.ErrDeclaration, metaerrors.ErrBadName},
		{"missing type", AttributeSpec{Name: "x"}, metaerrors.ErrDeclaration, metaerrors.ErrMissingParameter},
		{"unknown type", AttributeSpec{Name: "x", Type: "money"}, metaerrors.ErrUnknownType, metaerrors.ErrTypeNotFound},
		{"duplicate", AttributeSpec{Name: "taken", Type: types.String}, metaerrors.ErrDeclaration, metaerrors.ErrDuplicateAttribute},
		{"bad visibility", AttributeSpec{Name: "x", Type: types.String, Visibility: Visibility(7)}, metaerrors.ErrDeclaration, metaerrors.ErrBadConstant},
		{"bad authorization", AttributeSpec{Name: "x", Type: types.String, Authorization: Authorization(7)}, metaerrors.ErrDeclaration, metaerrors.ErrBadConstant},
		{"bad literal default", AttributeSpec{Name: "x", Type: types.Whole, Default: Literal(-3)}, metaerrors.ErrDeclaration, metaerrors.ErrBadDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddAttribute(tt.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, code(t, err))
		})
	}

	assert.Len(t, c.Attributes(Private), 1, "failed declarations leave no trace")
}

func TestAddAttribute_UnknownTypeNamesAttribute(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Money"})
	_, err := c.AddAttribute(AttributeSpec{Name: "price", Type: "money"})

	var me *metaerrors.MetaError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Test::Money", me.Class)
	assert.Equal(t, "price", me.Member)
	assert.Contains(t, me.Message, `"money"`)
}

func TestInheritance_DuplicateAndOverride(t *testing.T) {
	setup(t)

	base := newClass(t, ClassSpec{Package: "Test::Base"})
	addAttr(t, base, AttributeSpec{Name: "size", Type: types.Integer})
	addAttr(t, base, AttributeSpec{Name: "label", Type: types.String})
	addNew(t, base)
	build(t, base)

	dup := newClass(t, ClassSpec{Package: "Test::Dup", Parents: []string{"Test::Base"}})
	_, err := dup.AddAttribute(AttributeSpec{Name: "size", Type: types.String})
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrDuplicateAttribute, code(t, err))

	child := newClass(t, ClassSpec{Package: "Test::Child", Parents: []string{"Test::Base"}})
	addAttr(t, child, AttributeSpec{Name: "size", Type: types.String, Override: true})
	build(t, child)

	names := make([]string, 0)
	for _, a := range child.Attributes(Private) {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"size", "label"}, names, "override keeps the inherited position")

	size, ok := child.Attribute("size")
	require.True(t, ok)
	assert.Same(t, child, size.Class())
	assert.True(t, size.Override())

	c, err := child.New(Anonymous, map[string]interface{}{"size": "large"})
	require.NoError(t, err)
	v, err := c.Call(Anonymous, "size")
	require.NoError(t, err)
	assert.Equal(t, "large", v)

	_, err = base.New(Anonymous, map[string]interface{}{"size": "large"})
	require.Error(t, err, "the parent keeps its own type")
	assert.ErrorIs(t, err, metaerrors.ErrValidation)

	b, err := base.New(Anonymous, map[string]interface{}{"size": 3})
	require.NoError(t, err)
	v, err = b.Call(Anonymous, "size")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestInheritance_MultipleParentsFirstWins(t *testing.T) {
	setup(t)

	left := newClass(t, ClassSpec{Package: "Test::Left"})
	addAttr(t, left, AttributeSpec{Name: "side", Type: types.String, Default: Literal("left")})
	_, err := left.AddMethod(MethodSpec{Name: "who", Code: constant("left")})
	require.NoError(t, err)
	build(t, left)

	right := newClass(t, ClassSpec{Package: "Test::Right"})
	addAttr(t, right, AttributeSpec{Name: "side", Type: types.String, Default: Literal("right")})
	addAttr(t, right, AttributeSpec{Name: "extra", Type: types.Integer})
	_, err = right.AddMethod(MethodSpec{Name: "who", Code: constant("right")})
	require.NoError(t, err)
	build(t, right)

	both := newClass(t, ClassSpec{Package: "Test::Both", Parents: []string{"Test::Left", "Test::Right"}})
	addNew(t, both)
	build(t, both)

	side, _ := both.Attribute("side")
	assert.Same(t, left, side.Class())
	_, ok := both.Attribute("extra")
	assert.True(t, ok)

	obj, err := both.New(Anonymous, nil)
	require.NoError(t, err)
	v, err := obj.Call(Anonymous, "who")
	require.NoError(t, err)
	assert.Equal(t, "left", v)
	v, err = obj.Call(Anonymous, "side")
	require.NoError(t, err)
	assert.Equal(t, "left", v)

	assert.True(t, obj.IsA("Test::Right"))
	assert.False(t, left.IsA("Test::Both"))
}

func TestInheritance_LosingParentAccessorsRemoved(t *testing.T) {
	setup(t)

	_, err := types.Global().Register(types.Definition{
		Key:      "side_count",
		Name:     "Side Count",
		Checks:   []types.Check{types.KindCheck("integer", reflect.Int)},
		Strategy: types.Affordance,
	})
	require.NoError(t, err)

	left := newClass(t, ClassSpec{Package: "Test::Left"})
	addAttr(t, left, AttributeSpec{Name: "side", Type: types.String})
	build(t, left)

	right := newClass(t, ClassSpec{Package: "Test::Right"})
	addAttr(t, right, AttributeSpec{Name: "side", Type: "side_count"})
	build(t, right)
	assert.True(t, right.Can("set_side"))

	both := newClass(t, ClassSpec{Package: "Test::Both", Parents: []string{"Test::Left", "Test::Right"}})
	addNew(t, both)
	build(t, both)

	caps := both.Capabilities()
	assert.Contains(t, caps, "side")
	assert.NotContains(t, caps, "get_side")
	assert.NotContains(t, caps, "set_side")

	obj, err := both.New(Anonymous, nil)
	require.NoError(t, err)
	_, err = obj.Call(Anonymous, "side", "north")
	require.NoError(t, err)
	v, err := obj.Call(Anonymous, "side")
	require.NoError(t, err)
	assert.Equal(t, "north", v)

	_, err = obj.Call(Anonymous, "side", 4)
	assert.ErrorIs(t, err, metaerrors.ErrValidation, "the first parent's type applies")

	flipped := newClass(t, ClassSpec{Package: "Test::Flipped", Parents: []string{"Test::Right", "Test::Left"}})
	addNew(t, flipped)
	build(t, flipped)
	assert.True(t, flipped.Can("get_side"))
	assert.True(t, flipped.Can("set_side"))
	assert.False(t, flipped.Can("side"))
}

func TestClass_AttributesFilter(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Tiers"})
	addAttr(t, c, AttributeSpec{Name: "pub", Type: types.String})
	addAttr(t, c, AttributeSpec{Name: "priv", Type: types.String, Visibility: Private})
	addAttr(t, c, AttributeSpec{Name: "prot", Type: types.String, Visibility: Protected})
	addAttr(t, c, AttributeSpec{Name: "trust", Type: types.String, Visibility: Trusted})

	names := func(level Visibility) []string {
		out := make([]string, 0)
		for _, a := range c.Attributes(level) {
			out = append(out, a.Name())
		}
		return out
	}

	assert.Equal(t, []string{"pub"}, names(Public))
	assert.Equal(t, []string{"pub", "trust"}, names(Trusted))
	assert.Equal(t, []string{"pub", "prot", "trust"}, names(Protected))
	assert.Equal(t, []string{"pub", "priv", "prot", "trust"}, names(Private))
}

func TestBuild_AccessorConflict(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Clash"})
	addAttr(t, c, AttributeSpec{Name: "name", Type: types.String})
	_, err := c.AddMethod(MethodSpec{Name: "name", Code: noop})
	require.NoError(t, err)

	err = c.Build()
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrAccessorConflict, code(t, err))
	assert.False(t, c.Built())
}

func TestBuild_FailureLeavesTableEmpty(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Half"})
	addAttr(t, c, AttributeSpec{Name: "a", Type: types.String})
	addAttr(t, c, AttributeSpec{Name: "b", Type: types.String})
	_, err := c.AddMethod(MethodSpec{Name: "b", Code: noop})
	require.NoError(t, err)

	require.Error(t, c.Build())
	assert.False(t, c.Built())
	assert.False(t, c.Can("a"), "accessors installed before the conflict are discarded")
	assert.False(t, c.Can("my_class"))
	assert.Empty(t, c.Capabilities())

	_, err = c.Call(Anonymous, "a")
	assert.ErrorIs(t, err, metaerrors.ErrNoSuchMethod)
}

func TestMethods(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Greeter"})
	addAttr(t, c, AttributeSpec{Name: "name", Type: types.String})
	addNew(t, c)
	_, err := c.AddMethod(MethodSpec{
		Name: "greet",
		Args: []string{"greeting"},
		Code: func(caller Caller, self Invocant, args ...interface{}) (interface{}, error) {
			name, err := self.(*Instance).Call(caller, "name")
			if err != nil {
				return nil, err
			}
			return args[0].(string) + ", " + name.(string), nil
		},
	})
	require.NoError(t, err)
	_, err = c.AddMethod(MethodSpec{Name: "count", Context: ClassContext, Code: constant(42)})
	require.NoError(t, err)
	_, err = c.AddMethod(MethodSpec{Name: "internal", Visibility: Private, Code: constant("ok")})
	require.NoError(t, err)
	build(t, c)

	obj, err := c.New(Anonymous, map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)

	v, err := obj.Call(Anonymous, "greet", "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada", v)

	v, err = c.Call(Anonymous, "count")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = c.Call(Anonymous, "greet", "Hi")
	assert.ErrorIs(t, err, metaerrors.ErrInvalidInvocant)

	_, err = obj.Call(Anonymous, "internal")
	assert.ErrorIs(t, err, metaerrors.ErrAccessDenied)
	v, err = obj.Call(c.Caller(), "internal")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)

	_, err = obj.Call(Anonymous, "missing")
	assert.ErrorIs(t, err, metaerrors.ErrNoSuchMethod)

	m, ok := c.Method("greet")
	require.True(t, ok)
	assert.Equal(t, []string{"greeting"}, m.Args())
	assert.Len(t, c.Methods(Public), 2)
	assert.Len(t, c.Methods(Private), 3)
}

func TestMethods_ErrorsPassThroughUntouched(t *testing.T) {
	setup(t)

	boom := errors.New("boom")
	handled := 0
	c := newClass(t, ClassSpec{
		Package: "Test::Boom",
		ErrorHandler: func(err error) error {
			handled++
			return err
		},
	})
	_, err := c.AddMethod(MethodSpec{Name: "explode", Context: ClassContext,
		Code: func(Caller, Invocant, ...interface{}) (interface{}, error) { return nil, boom }})
	require.NoError(t, err)
	build(t, c)

	_, err = c.Call(Anonymous, "explode")
	assert.Same(t, boom, err)
	assert.Equal(t, 0, handled)
}

func TestInheritedMethodOverride(t *testing.T) {
	setup(t)

	base := newClass(t, ClassSpec{Package: "Test::Speaker"})
	_, err := base.AddMethod(MethodSpec{Name: "speak", Context: ClassContext, Code: constant("...")})
	require.NoError(t, err)
	_, err = base.AddMethod(MethodSpec{Name: "wave", Context: ClassContext, Code: constant("wave")})
	require.NoError(t, err)
	build(t, base)

	cat := newClass(t, ClassSpec{Package: "Test::Cat", Parents: []string{"Test::Speaker"}})
	_, err = cat.AddMethod(MethodSpec{Name: "speak", Context: ClassContext, Code: constant("meow")})
	require.NoError(t, err)
	build(t, cat)

	v, err := cat.Call(Anonymous, "speak")
	require.NoError(t, err)
	assert.Equal(t, "meow", v)
	v, err = cat.Call(Anonymous, "wave")
	require.NoError(t, err)
	assert.Equal(t, "wave", v)

	v, err = base.Call(Anonymous, "speak")
	require.NoError(t, err)
	assert.Equal(t, "...", v)

	methods := cat.Methods(Private)
	require.Len(t, methods, 2)
	assert.Equal(t, "speak", methods[0].Name())
	assert.Same(t, cat, methods[0].Class())
	assert.Same(t, base, methods[1].Class())
}

func TestMyClass(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{Package: "Test::Self"})
	addNew(t, c)
	build(t, c)

	obj, err := c.New(Anonymous, nil)
	require.NoError(t, err)

	v, err := obj.Call(Anonymous, "my_class")
	require.NoError(t, err)
	assert.Same(t, c, v)

	v, err = c.Call(Anonymous, "my_class")
	require.NoError(t, err)
	assert.Same(t, c, v)

	assert.Same(t, c, ClassOf(obj))
	assert.Same(t, c, ClassOf(c))
	assert.Nil(t, ClassOf(nil))
	assert.Equal(t, []string{"my_class", "new"}, c.Capabilities())
}

func TestErrorHandler_Panics(t *testing.T) {
	setup(t)

	c := newClass(t, ClassSpec{
		Package:      "Test::Strict",
		ErrorHandler: func(err error) error { panic(err) },
	})
	addAttr(t, c, AttributeSpec{Name: "n", Type: types.Integer})
	addNew(t, c)
	build(t, c)

	assert.Panics(t, func() {
		_, _ = c.New(Anonymous, map[string]interface{}{"n": "x"})
	})

	sub := build(t, newClass(t, ClassSpec{Package: "Test::StrictChild", Parents: []string{"Test::Strict"}}))
	assert.Panics(t, func() {
		_, _ = sub.Call(Anonymous, "nothing")
	}, "the handler is inherited from the first parent")
}

func TestErrorHandler_Default(t *testing.T) {
	setup(t)

	wrapped := errors.New("wrapped")
	var seen []error
	SetDefaultErrorHandler(func(err error) error {
		seen = append(seen, err)
		return wrapped
	})

	c := newClass(t, ClassSpec{Package: "Test::Handled"})
	build(t, c)

	_, err := c.Call(Anonymous, "missing")
	assert.Same(t, wrapped, err)
	require.Len(t, seen, 1)
	assert.ErrorIs(t, seen[0], metaerrors.ErrNoSuchMethod)

	SetDefaultErrorHandler(func(error) error { return nil })
	_, err = c.Call(Anonymous, "missing")
	require.Error(t, err, "a nil handler result does not suppress the failure")
	assert.ErrorIs(t, err, metaerrors.ErrNoSuchMethod)
}

func TestErrorHandler_DefaultSeesTypeRegistryFailures(t *testing.T) {
	setup(t)

	var seen []error
	SetDefaultErrorHandler(func(err error) error {
		seen = append(seen, err)
		return nil
	})

	_, err := types.Global().Register(types.Definition{Key: types.String, Name: "Text"})
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrDuplicateType, code(t, err))

	_, err = types.Global().Lookup("nope")
	require.Error(t, err)
	assert.Equal(t, metaerrors.ErrTypeNotFound, code(t, err))

	require.Len(t, seen, 2)
	assert.ErrorIs(t, seen[0], metaerrors.ErrDeclaration)
	assert.ErrorIs(t, seen[1], metaerrors.ErrUnknownType)

	c := newClass(t, ClassSpec{Package: "Test::Typed"})
	_, err = c.AddAttribute(AttributeSpec{Name: "x", Type: "nope"})
	require.Error(t, err)
	assert.Len(t, seen, 3, "an unknown attribute type is reported once")
}

func TestReset_RestoresDefaults(t *testing.T) {
	setup(t)

	SetDefaultErrorHandler(func(err error) error { panic(err) })
	SetLogger(zap.NewExample())

	Reset()

	assert.False(t, Logger().Core().Enabled(zap.DebugLevel), "logging is off again")
	assert.NotPanics(t, func() {
		_, err := types.Global().Lookup("nope")
		assert.Error(t, err)
	})

	c := build(t, newClass(t, ClassSpec{Package: "Test::Fresh"}))
	_, err := c.Call(Anonymous, "missing")
	assert.ErrorIs(t, err, metaerrors.ErrNoSuchMethod)
}

func noop(Caller, Invocant, ...interface{}) (interface{}, error) { return nil, nil }

func constant(v interface{}) MethodFunc {
	return func(Caller, Invocant, ...interface{}) (interface{}, error) { return v, nil }
}
