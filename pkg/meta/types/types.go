// Package types provides the data type registry consulted when attributes
// are declared. A data type pairs an ordered list of write-time checks with
// the strategy used to name the accessors generated for attributes of that
// type.
package types

import (
	"fmt"
	"strings"
)

// Strategy selects how accessors are named and split.
type Strategy int

const (
	// Default generates one method named after the attribute that gets
	// when called without arguments and sets when called with one.
	Default Strategy = iota
	// Affordance generates get_<name> and set_<name>.
	Affordance
	// SemiAffordance generates <name> for get and set_<name> for set.
	SemiAffordance
	// Custom delegates naming to the Descriptor's Naming func.
	Custom
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case Default:
		return "default"
	case Affordance:
		return "affordance"
	case SemiAffordance:
		return "semi-affordance"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the declared strategies.
func (s Strategy) Valid() bool {
	return s >= Default && s <= Custom
}

// ParseStrategy converts a string to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return Default, nil
	case "affordance":
		return Affordance, nil
	case "semi-affordance", "semi_affordance", "semiaffordance":
		return SemiAffordance, nil
	case "custom":
		return Custom, nil
	default:
		return 0, fmt.Errorf("unknown accessor strategy: %s", s)
	}
}

// Slot is a read handle on the storage backing one attribute value.
type Slot interface {
	// Load returns the stored value and whether one has been stored.
	Load() (interface{}, bool)
}

// Subject describes the attribute being checked. Checks use it to name the
// attribute and its class in failure text.
type Subject interface {
	AttributeName() string
	ClassPackage() string
}

// Check rejects an invalid candidate value. A nil return means the value
// passed. Checks run in registration order and the first failure wins.
type Check func(value interface{}, slot Slot, attr Subject) error

// CheckError is returned by checks to describe a rejected value.
type CheckError struct {
	Value    interface{}
	Expected string
	Message  string
}

// Error implements the error interface
func (e *CheckError) Error() string {
	return e.Message
}

// Reject builds a CheckError with the conventional
// "<value> is not a valid <expected>" message.
func Reject(value interface{}, expected string) *CheckError {
	return &CheckError{
		Value:    value,
		Expected: expected,
		Message:  fmt.Sprintf("%s is not a valid %s", literal(value), expected),
	}
}

// Naming produces the get and set method names for a Custom strategy type.
// Returning the same name for both yields a combined accessor.
type Naming func(attr string) (get, set string)

// Descriptor is an immutable registered data type.
type Descriptor struct {
	Key         string
	Name        string
	Description string
	Aliases     []string
	Checks      []Check
	Strategy    Strategy
	Naming      Naming

	// Boolean marks types that get is_/set_on/set_off convenience methods.
	Boolean bool
	// ClassPackage is set for types backed by a registered class.
	ClassPackage string
}

// AccessorNames returns the get and set method names for an attribute of
// this type.
func (d *Descriptor) AccessorNames(attr string) (get, set string) {
	switch d.Strategy {
	case Affordance:
		return "get_" + attr, "set_" + attr
	case SemiAffordance:
		return attr, "set_" + attr
	case Custom:
		if d.Naming != nil {
			return d.Naming(attr)
		}
	}
	return attr, attr
}
