package meta

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	metaerrors "github.com/conduit-lang/classmeta/pkg/meta/errors"
)

func setup(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
}

func newClass(t *testing.T, spec ClassSpec) *Class {
	t.Helper()
	c, err := NewClass(spec)
	require.NoError(t, err)
	return c
}

func addAttr(t *testing.T, c *Class, spec AttributeSpec) *Attribute {
	t.Helper()
	a, err := c.AddAttribute(spec)
	require.NoError(t, err)
	return a
}

func addNew(t *testing.T, c *Class) {
	t.Helper()
	_, err := c.AddConstructor(ConstructorSpec{Name: "new", Create: true})
	require.NoError(t, err)
}

func build(t *testing.T, c *Class) *Class {
	t.Helper()
	require.NoError(t, c.Build())
	return c
}

func code(t *testing.T, err error) metaerrors.Code {
	t.Helper()
	var me *metaerrors.MetaError
	require.True(t, errors.As(err, &me), "expected *MetaError, got %T: %v", err, err)
	return me.Code
}
