package types

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

// Pre-compiled literal forms for the numeric types
var (
	wholePattern   = regexp.MustCompile(`^\+?0*[1-9]\d*$`)
	integerPattern = regexp.MustCompile(`^[+-]?\d+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)$`)
	realPattern    = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?$`)
)

// Built-in type keys
const (
	String   = "string"
	Boolean  = "boolean"
	Whole    = "whole"
	Integer  = "integer"
	Decimal  = "decimal"
	Real     = "real"
	Float    = "float"
	Scalar   = "scalar"
	Sequence = "array"
	Mapping  = "hash"
	Code     = "code"
)

// RegisterBuiltins registers the primitive types into r using the given
// accessor strategy.
func RegisterBuiltins(r *Registry, strategy Strategy) error {
	defs := []Definition{
		{
			Key:         String,
			Name:        "String",
			Description: "A string of characters",
			Aliases:     []string{"str"},
			Checks:      []Check{KindCheck("string", reflect.String)},
		},
		{
			Key:         Boolean,
			Name:        "Boolean",
			Description: "A true or false value",
			Aliases:     []string{"bool"},
			Checks:      []Check{KindCheck("boolean", reflect.Bool)},
			Boolean:     true,
		},
		{
			Key:         Whole,
			Name:        "Whole Number",
			Description: "A positive integer greater than zero",
			Checks:      []Check{NumericCheck("whole number", wholePattern)},
		},
		{
			Key:         Integer,
			Name:        "Integer",
			Description: "A positive or negative integer",
			Aliases:     []string{"int"},
			Checks:      []Check{NumericCheck("integer", integerPattern)},
		},
		{
			Key:         Decimal,
			Name:        "Decimal Number",
			Description: "A number with an optional fractional part",
			Aliases:     []string{"dec"},
			Checks:      []Check{NumericCheck("decimal number", decimalPattern)},
		},
		{
			Key:         Real,
			Name:        "Real Number",
			Description: "A finite real number",
			Checks:      []Check{NumericCheck("real number", realPattern)},
		},
		{
			Key:         Float,
			Name:        "Floating Point Number",
			Description: "A finite floating point number",
			Checks:      []Check{NumericCheck("floating point number", realPattern)},
		},
		{
			Key:         Scalar,
			Name:        "Scalar Reference",
			Description: "A pointer to a single value",
			Aliases:     []string{"scalarref"},
			Checks:      []Check{KindCheck("scalar reference", reflect.Ptr)},
		},
		{
			Key:         Sequence,
			Name:        "Array Reference",
			Description: "An ordered sequence of values",
			Aliases:     []string{"arrayref", "sequence"},
			Checks:      []Check{KindCheck("array reference", reflect.Slice, reflect.Array)},
		},
		{
			Key:         Mapping,
			Name:        "Hash Reference",
			Description: "A mapping of keys to values",
			Aliases:     []string{"hashref", "mapping"},
			Checks:      []Check{KindCheck("hash reference", reflect.Map)},
		},
		{
			Key:         Code,
			Name:        "Code Reference",
			Description: "A callable value",
			Aliases:     []string{"coderef"},
			Checks:      []Check{KindCheck("code reference", reflect.Func)},
		},
	}

	for _, def := range defs {
		def.Strategy = strategy
		if _, err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// KindCheck accepts values whose reflect kind is one of kinds. Nil values
// pass; the required check handles them.
func KindCheck(expected string, kinds ...reflect.Kind) Check {
	return func(value interface{}, _ Slot, _ Subject) error {
		if value == nil {
			return nil
		}
		k := reflect.TypeOf(value).Kind()
		for _, want := range kinds {
			if k == want {
				return nil
			}
		}
		return Reject(value, expected)
	}
}

// NumericCheck accepts Go numeric values whose literal form matches pattern.
// Non-numeric values (strings included) are rejected with a message naming
// the literal value and the expected kind.
func NumericCheck(expected string, pattern *regexp.Regexp) Check {
	return func(value interface{}, _ Slot, _ Subject) error {
		if value == nil {
			return nil
		}
		lit, ok := numericLiteral(value)
		if !ok || !pattern.MatchString(lit) {
			return Reject(value, expected)
		}
		return nil
	}
}

// Object is the view ClassCheck takes of an instance. Classes answer IsA
// too but carry no identity, so they are not objects.
type Object interface {
	ID() uuid.UUID
	IsA(pkg string) bool
}

// ClassCheck accepts values that are instances of the class identified by
// pkg or of one of its subclasses.
func ClassCheck(pkg string) Check {
	return func(value interface{}, _ Slot, attr Subject) error {
		if value == nil {
			return nil
		}
		if obj, ok := value.(Object); ok && obj.IsA(pkg) {
			return nil
		}
		return &CheckError{
			Value:    value,
			Expected: pkg,
			Message: fmt.Sprintf("value %s for attribute %q of class %s is not a valid %s object",
				literal(value), attr.AttributeName(), attr.ClassPackage(), pkg),
		}
	}
}

// numericLiteral renders numeric Go values the way they would be written as
// literals. Floats never use exponent form; NaN and infinities render as
// non-numeric text so they fail every numeric pattern.
func numericLiteral(value interface{}) (string, bool) {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprintf("%v", f), true
		}
		return strconv.FormatFloat(f, 'f', -1, v.Type().Bits()), true
	default:
		return "", false
	}
}

func literal(value interface{}) string {
	if value == nil {
		return "undef"
	}
	if lit, ok := numericLiteral(value); ok {
		return lit
	}
	return fmt.Sprintf("%v", value)
}
