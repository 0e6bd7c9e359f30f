// Package errors defines the failure taxonomy of the class engine.
// Every failure carries a stable code, a kind usable with errors.Is, and
// enough context (class, member, value, expected kind) for a caller to
// present a precise message.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	// KindDeclaration covers bad or missing parameters at class-definition time.
	KindDeclaration Kind = "declaration_error"
	// KindUnknownType is raised when a type key is not registered.
	KindUnknownType Kind = "unknown_type"
	// KindValidation is raised when a value fails a write-time check.
	KindValidation Kind = "validation_failed"
	// KindAccessDenied is raised on visibility violations.
	KindAccessDenied Kind = "access_denied"
	// KindAbstract is raised when an abstract class is instantiated.
	KindAbstract Kind = "abstract_instantiation"
	// KindNoSuchAttribute is raised for unknown constructor parameters.
	KindNoSuchAttribute Kind = "no_such_attribute"
	// KindNoSuchMethod is raised when dispatching an unknown member name.
	KindNoSuchMethod Kind = "no_such_method"
	// KindInvalidInvocant is raised when an instance member is called on a class.
	KindInvalidInvocant Kind = "invalid_invocant"
)

// Code is a stable identifier for a specific failure.
type Code string

const (
	ErrBadName            Code = "DEC101"
	ErrDuplicateAttribute Code = "DEC102"
	ErrDuplicateMember    Code = "DEC103"
	ErrDuplicateClass     Code = "DEC104"
	ErrBadConstant        Code = "DEC105"
	ErrNotCallable        Code = "DEC106"
	ErrClassBuilt         Code = "DEC107"
	ErrMissingParameter   Code = "DEC108"
	ErrUnknownParent      Code = "DEC109"
	ErrRegistrySealed     Code = "DEC110"
	ErrBadDefault         Code = "DEC111"
	ErrAccessorConflict   Code = "DEC112"
	ErrDuplicateType      Code = "DEC113"

	ErrTypeNotFound Code = "TYP201"

	ErrCheckFailed Code = "VAL301"
	ErrRequired    Code = "VAL302"
	ErrSetOnce     Code = "VAL303"

	ErrNotVisible Code = "ACC401"
	ErrReadOnly   Code = "ACC402"
	ErrWriteOnly  Code = "ACC403"

	ErrAbstractClass Code = "ABS501"

	ErrUnknownParameter Code = "ATT601"

	ErrUnknownMethod Code = "MTH701"

	ErrNotAnInstance Code = "INV801"
)

// Sentinel values for errors.Is matching on kind.
var (
	ErrDeclaration     = &MetaError{Kind: KindDeclaration}
	ErrUnknownType     = &MetaError{Kind: KindUnknownType}
	ErrValidation      = &MetaError{Kind: KindValidation}
	ErrAccessDenied    = &MetaError{Kind: KindAccessDenied}
	ErrAbstract        = &MetaError{Kind: KindAbstract}
	ErrNoSuchAttribute = &MetaError{Kind: KindNoSuchAttribute}
	ErrNoSuchMethod    = &MetaError{Kind: KindNoSuchMethod}
	ErrInvalidInvocant = &MetaError{Kind: KindInvalidInvocant}
)

// MetaError is the single error type produced by the engine.
type MetaError struct {
	// Code is the stable error code (e.g. "VAL301")
	Code Code `json:"code"`
	// Kind is the failure class
	Kind Kind `json:"kind"`
	// Message is the human readable description
	Message string `json:"message"`
	// Class is the package identity of the class involved, if any
	Class string `json:"class,omitempty"`
	// Member is the attribute, constructor or method name involved, if any
	Member string `json:"member,omitempty"`
	// Value is the offending value for validation failures
	Value interface{} `json:"value,omitempty"`
	// Expected names the expected kind of value for validation failures
	Expected string `json:"expected,omitempty"`
	// Names lists offending names when several are reported at once
	Names []string `json:"names,omitempty"`
}

// Error implements the error interface
func (e *MetaError) Error() string {
	if e.Code == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is reports whether target is a MetaError of the same kind, and of the
// same code when target carries one.
func (e *MetaError) Is(target error) bool {
	t, ok := target.(*MetaError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// ToJSON returns the error as indented JSON.
func (e *MetaError) ToJSON() (string, error) {
	bytes, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// WithClass sets the class identity for the error
func (e *MetaError) WithClass(class string) *MetaError {
	e.Class = class
	return e
}

// WithMember sets the member name for the error
func (e *MetaError) WithMember(member string) *MetaError {
	e.Member = member
	return e
}

// KindOf returns the kind of err, or "" when err is not a MetaError.
func KindOf(err error) Kind {
	var me *MetaError
	if stderrors.As(err, &me) {
		return me.Kind
	}
	return ""
}

func newError(code Code, kind Kind, format string, args ...interface{}) *MetaError {
	return &MetaError{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewDeclaration creates a declaration-time error with the given code.
func NewDeclaration(code Code, format string, args ...interface{}) *MetaError {
	return newError(code, KindDeclaration, format, args...)
}

// NewDuplicateAttribute creates a DEC102 error
func NewDuplicateAttribute(class, name string) *MetaError {
	return newError(ErrDuplicateAttribute, KindDeclaration,
		"attribute %q already exists in class %s; set Override to replace it", name, class).
		WithClass(class).WithMember(name)
}

// NewUnknownType creates a TYP201 error
func NewUnknownType(key string) *MetaError {
	e := newError(ErrTypeNotFound, KindUnknownType, "no data type %q has been registered", key)
	e.Expected = key
	return e
}

// NewValidation creates a VAL301 error for a value that failed a type check.
func NewValidation(class, attr string, value interface{}, expected, message string) *MetaError {
	e := newError(ErrCheckFailed, KindValidation, "%s.%s: %s", class, attr, message).
		WithClass(class).WithMember(attr)
	e.Value = value
	e.Expected = expected
	return e
}

// NewRequired creates a VAL302 error
func NewRequired(class, attr string) *MetaError {
	e := newError(ErrRequired, KindValidation, "%s.%s: attribute must be defined", class, attr).
		WithClass(class).WithMember(attr)
	e.Expected = "defined value"
	return e
}

// NewSetOnce creates a VAL303 error
func NewSetOnce(class, attr string, value interface{}) *MetaError {
	e := newError(ErrSetOnce, KindValidation, "%s.%s: attribute can only be set once", class, attr).
		WithClass(class).WithMember(attr)
	e.Value = value
	return e
}

// NewAccessDenied creates an ACC401 error naming the member and its access level.
func NewAccessDenied(class, member, memberKind, level, caller string) *MetaError {
	if caller == "" {
		caller = "anonymous caller"
	}
	return newError(ErrNotVisible, KindAccessDenied,
		"%s cannot access %s %s %q of class %s", caller, level, memberKind, member, class).
		WithClass(class).WithMember(member)
}

// NewReadOnly creates an ACC402 error
func NewReadOnly(class, attr string) *MetaError {
	return newError(ErrReadOnly, KindAccessDenied, "cannot set read-only attribute %q of class %s", attr, class).
		WithClass(class).WithMember(attr)
}

// NewWriteOnly creates an ACC403 error
func NewWriteOnly(class, attr string) *MetaError {
	return newError(ErrWriteOnly, KindAccessDenied, "cannot get write-only attribute %q of class %s", attr, class).
		WithClass(class).WithMember(attr)
}

// NewAbstract creates an ABS501 error
func NewAbstract(class string) *MetaError {
	return newError(ErrAbstractClass, KindAbstract, "cannot construct an object of abstract class %s", class).
		WithClass(class)
}

// NewNoSuchAttribute creates an ATT601 error listing every unknown name.
func NewNoSuchAttribute(class string, names []string) *MetaError {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	noun := "attribute"
	if len(names) > 1 {
		noun = "attributes"
	}
	e := newError(ErrUnknownParameter, KindNoSuchAttribute, "no such %s %s in class %s",
		noun, strings.Join(quoted, ", "), class).WithClass(class)
	e.Names = append([]string(nil), names...)
	return e
}

// NewNoSuchMethod creates an MTH701 error
func NewNoSuchMethod(class, name string) *MetaError {
	return newError(ErrUnknownMethod, KindNoSuchMethod, "class %s has no method %q", class, name).
		WithClass(class).WithMember(name)
}

// NewInvalidInvocant creates an INV801 error
func NewInvalidInvocant(class, name string) *MetaError {
	return newError(ErrNotAnInstance, KindInvalidInvocant,
		"%q of class %s must be called on an instance, not on the class", name, class).
		WithClass(class).WithMember(name)
}
