package types

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

type subject struct{ name, pkg string }

func (s subject) AttributeName() string { return s.name }
func (s subject) ClassPackage() string  { return s.pkg }

type noSlot struct{}

func (noSlot) Load() (interface{}, bool) { return nil, false }

func runChecks(d *Descriptor, value interface{}) error {
	for _, chk := range d.Checks {
		if err := chk(value, noSlot{}, subject{"attr", "Test::Class"}); err != nil {
			return err
		}
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	desc, err := r.Register(Definition{Key: "color", Name: "Color", Aliases: []string{"colour"}})
	require.NoError(t, err)
	assert.Equal(t, "color", desc.Key)
	assert.Equal(t, Default, desc.Strategy)

	got, err := r.Lookup("colour")
	require.NoError(t, err)
	assert.Same(t, desc, got)
	assert.Equal(t, 1, r.Count())
	assert.True(t, r.Exists("colour"))
}

func TestRegistry_RegisterErrors(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(Definition{Key: "color", Name: "Color", Aliases: []string{"colour"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		def  Definition
		code metaerrors.Code
	}{
		{"missing key", Definition{Name: "X"}, metaerrors.ErrMissingParameter},
		{"missing name", Definition{Key: "x"}, metaerrors.ErrMissingParameter},
		{"duplicate key", Definition{Key: "color", Name: "Color"}, metaerrors.ErrDuplicateType},
		{"key taken by alias", Definition{Key: "colour", Name: "Colour"}, metaerrors.ErrDuplicateType},
		{"alias taken", Definition{Key: "hue", Name: "Hue", Aliases: []string{"color"}}, metaerrors.ErrDuplicateType},
		{"bad strategy", Definition{Key: "y", Name: "Y", Strategy: Strategy(42)}, metaerrors.ErrBadConstant},
		{"custom without naming", Definition{Key: "z", Name: "Z", Strategy: Custom}, metaerrors.ErrNotCallable},
		{"nil check", Definition{Key: "w", Name: "W", Checks: []Check{nil}}, metaerrors.ErrNotCallable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Register(tt.def)
			require.Error(t, err)
			var me *metaerrors.MetaError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.code, me.Code)
			assert.ErrorIs(t, err, metaerrors.ErrDeclaration)
		})
	}
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(Definition{Key: "color", Name: "Color"})
	require.NoError(t, err)

	desc, err := r.Register(Definition{Key: "color", Name: "Colour", Replace: true})
	require.NoError(t, err)
	got, err := r.Lookup("color")
	require.NoError(t, err)
	assert.Same(t, desc, got)
	assert.Equal(t, "Colour", got.Name)
}

func TestRegistry_LookupUnknown(t *testing.T) {
	_, err := NewRegistry().Lookup("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, metaerrors.ErrUnknownType)
	assert.Contains(t, err.Error(), "nope")
}

func TestRegistry_ErrorHandler(t *testing.T) {
	replaced := errors.New("replaced")
	var seen []error
	SetErrorHandler(func(err error) error {
		seen = append(seen, err)
		return replaced
	})
	t.Cleanup(func() { SetErrorHandler(nil) })

	r := NewRegistry()
	_, err := r.Register(Definition{Key: "color", Name: "Color"})
	require.NoError(t, err)
	_, err = r.Register(Definition{Key: "color", Name: "Color"})
	assert.Same(t, replaced, err)
	_, err = r.Lookup("nope")
	assert.Same(t, replaced, err)

	_, err = r.Add(Definition{Key: "color", Name: "Color"})
	assert.ErrorIs(t, err, metaerrors.ErrDeclaration)
	_, ok := r.Find("nope")
	assert.False(t, ok)

	require.Len(t, seen, 2, "Add and Find leave routing to the caller")
	assert.ErrorIs(t, seen[0], metaerrors.ErrDeclaration)
	assert.ErrorIs(t, seen[1], metaerrors.ErrUnknownType)
}

func TestGlobal_HasBuiltins(t *testing.T) {
	t.Cleanup(ResetGlobal)

	for _, key := range []string{String, Boolean, Whole, Integer, Decimal, Real, Float, Scalar, Sequence, Mapping, Code} {
		desc, err := Global().Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, Default, desc.Strategy, key)
	}
	for _, alias := range []string{"int", "bool", "str"} {
		assert.True(t, Global().Exists(alias), alias)
	}
	assert.Equal(t, []string{"array", "boolean", "code", "decimal", "float", "hash", "integer", "real", "scalar", "string", "whole"}, Global().Keys())
}

func TestNumericChecks(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Default))

	tests := []struct {
		key      string
		value    interface{}
		wantErr  bool
		expected string
	}{
		{Integer, 10, false, ""},
		{Integer, -3, false, ""},
		{Integer, int64(7), false, ""},
		{Integer, 10.0, false, ""},
		{Integer, 0.5, true, "0.5 is not a valid integer"},
		{Integer, "10", true, "10 is not a valid integer"},
		{Integer, math.NaN(), true, "NaN is not a valid integer"},
		{Whole, 1, false, ""},
		{Whole, uint8(3), false, ""},
		{Whole, 0, true, "0 is not a valid whole number"},
		{Whole, -1, true, "-1 is not a valid whole number"},
		{Whole, 2.5, true, "2.5 is not a valid whole number"},
		{Decimal, 2.5, false, ""},
		{Decimal, -4, false, ""},
		{Decimal, "2.5", true, "2.5 is not a valid decimal number"},
		{Real, 1e30, false, ""},
		{Real, math.Inf(1), true, "+Inf is not a valid real number"},
		{Float, float32(1.25), false, ""},
		{Float, true, true, "true is not a valid floating point number"},
		{Integer, nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			desc, err := r.Lookup(tt.key)
			require.NoError(t, err)

			err = runChecks(desc, tt.value)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
			var ce *CheckError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.value, ce.Value)
		})
	}
}

func TestKindChecks(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r, Default))

	n := 3
	tests := []struct {
		key     string
		value   interface{}
		wantErr bool
	}{
		{String, "hello", false},
		{String, 5, true},
		{Boolean, true, false},
		{Boolean, "true", true},
		{Scalar, &n, false},
		{Scalar, n, true},
		{Sequence, []int{1, 2}, false},
		{Sequence, [2]string{"a", "b"}, false},
		{Sequence, map[string]int{}, true},
		{Mapping, map[string]int{"a": 1}, false},
		{Mapping, []int{}, true},
		{Code, func() {}, false},
		{Code, "func", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			desc, err := r.Lookup(tt.key)
			require.NoError(t, err)
			err = runChecks(desc, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type fakeObject struct{ classes []string }

func (f fakeObject) ID() uuid.UUID { return uuid.Nil }

func (f fakeObject) IsA(pkg string) bool {
	for _, c := range f.classes {
		if c == pkg {
			return true
		}
	}
	return false
}

// fakeClass answers IsA but carries no identity.
type fakeClass struct{ classes []string }

func (f fakeClass) IsA(pkg string) bool { return fakeObject(f).IsA(pkg) }

func TestClassCheck(t *testing.T) {
	chk := ClassCheck("Shop::Item")
	attr := subject{"item", "Shop::Order"}

	assert.NoError(t, chk(fakeObject{[]string{"Shop::Book", "Shop::Item"}}, noSlot{}, attr))
	assert.NoError(t, chk(nil, noSlot{}, attr))

	err := chk(fakeObject{[]string{"Shop::Customer"}}, noSlot{}, attr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `attribute "item" of class Shop::Order`)
	assert.Contains(t, err.Error(), "Shop::Item")

	assert.Error(t, chk("not an object", noSlot{}, attr))
	assert.Error(t, chk(fakeClass{[]string{"Shop::Item"}}, noSlot{}, attr), "IsA alone is not enough")
}

func TestAccessorNames(t *testing.T) {
	tests := []struct {
		desc    Descriptor
		wantGet string
		wantSet string
	}{
		{Descriptor{Strategy: Default}, "name", "name"},
		{Descriptor{Strategy: Affordance}, "get_name", "set_name"},
		{Descriptor{Strategy: SemiAffordance}, "name", "set_name"},
		{Descriptor{Strategy: Custom, Naming: func(a string) (string, string) { return "read_" + a, "write_" + a }}, "read_name", "write_name"},
	}

	for _, tt := range tests {
		t.Run(tt.desc.Strategy.String(), func(t *testing.T) {
			get, set := tt.desc.AccessorNames("name")
			assert.Equal(t, tt.wantGet, get)
			assert.Equal(t, tt.wantSet, set)
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{Default, Affordance, SemiAffordance, Custom} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("sideways")
	assert.Error(t, err)
}
