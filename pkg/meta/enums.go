package meta

import (
	"fmt"
	"strings"
)

// Visibility restricts which callers may use a member. The zero value is
// Public; higher values are more restrictive.
type Visibility int

const (
	Public Visibility = iota
	Trusted
	Protected
	Private
)

// String returns the string representation of the visibility
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Trusted:
		return "trusted"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Valid reports whether v is a declared visibility.
func (v Visibility) Valid() bool {
	return v >= Public && v <= Private
}

// Includes reports whether a member of visibility m is listed when
// querying at tier v.
func (v Visibility) Includes(m Visibility) bool {
	return m <= v
}

// ParseVisibility converts a string to a Visibility
func ParseVisibility(s string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public":
		return Public, nil
	case "trusted":
		return Trusted, nil
	case "protected":
		return Protected, nil
	case "private":
		return Private, nil
	default:
		return 0, fmt.Errorf("unknown visibility: %s", s)
	}
}

// Authorization is the declared read/write permission of an attribute. The
// zero value is ReadWrite.
type Authorization int

const (
	ReadWrite Authorization = iota
	Read
	Write
	NoAuthorization
)

// String returns the string representation of the authorization
func (a Authorization) String() string {
	switch a {
	case ReadWrite:
		return "rdwr"
	case Read:
		return "read"
	case Write:
		return "write"
	case NoAuthorization:
		return "none"
	default:
		return "unknown"
	}
}

// Valid reports whether a is a declared authorization.
func (a Authorization) Valid() bool {
	return a >= ReadWrite && a <= NoAuthorization
}

// CanRead reports whether reads are authorized
func (a Authorization) CanRead() bool {
	return a == ReadWrite || a == Read
}

// CanWrite reports whether writes are authorized
func (a Authorization) CanWrite() bool {
	return a == ReadWrite || a == Write
}

// ParseAuthorization converts a string to an Authorization
func ParseAuthorization(s string) (Authorization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rdwr", "readwrite", "read_write":
		return ReadWrite, nil
	case "read":
		return Read, nil
	case "write":
		return Write, nil
	case "none":
		return NoAuthorization, nil
	default:
		return 0, fmt.Errorf("unknown authorization: %s", s)
	}
}

// AccessorMode selects which accessors are generated. The zero value
// derives the mode from the attribute's authorization.
type AccessorMode int

const (
	DeriveAccessors AccessorMode = iota
	NoAccessors
	GetAccessor
	SetAccessor
	GetSetAccessors
)

// String returns the string representation of the accessor mode
func (m AccessorMode) String() string {
	switch m {
	case DeriveAccessors:
		return "derive"
	case NoAccessors:
		return "none"
	case GetAccessor:
		return "get"
	case SetAccessor:
		return "set"
	case GetSetAccessors:
		return "getset"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a declared accessor mode.
func (m AccessorMode) Valid() bool {
	return m >= DeriveAccessors && m <= GetSetAccessors
}

// CanGet reports whether a getter is generated
func (m AccessorMode) CanGet() bool {
	return m == GetAccessor || m == GetSetAccessors
}

// CanSet reports whether a setter is generated
func (m AccessorMode) CanSet() bool {
	return m == SetAccessor || m == GetSetAccessors
}

// modeFor returns the accessor mode implied by an authorization.
func modeFor(a Authorization) AccessorMode {
	switch a {
	case ReadWrite:
		return GetSetAccessors
	case Read:
		return GetAccessor
	case Write:
		return SetAccessor
	default:
		return NoAccessors
	}
}

// permits reports whether every accessor in m is authorized by a.
func (m AccessorMode) permits(a Authorization) bool {
	if m.CanGet() && !a.CanRead() {
		return false
	}
	if m.CanSet() && !a.CanWrite() {
		return false
	}
	return true
}

// ParseAccessorMode converts a string to an AccessorMode
func ParseAccessorMode(s string) (AccessorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "derive":
		return DeriveAccessors, nil
	case "none":
		return NoAccessors, nil
	case "get":
		return GetAccessor, nil
	case "set":
		return SetAccessor, nil
	case "getset", "get_set":
		return GetSetAccessors, nil
	default:
		return 0, fmt.Errorf("unknown accessor mode: %s", s)
	}
}

// Context selects where an attribute value is stored. The zero value is
// InstanceContext.
type Context int

const (
	// InstanceContext stores one value per instance.
	InstanceContext Context = iota
	// ClassContext stores one value shared by the class and every instance.
	ClassContext
)

// String returns the string representation of the context
func (c Context) String() string {
	switch c {
	case InstanceContext:
		return "instance"
	case ClassContext:
		return "class"
	default:
		return "unknown"
	}
}

// Valid reports whether c is a declared context.
func (c Context) Valid() bool {
	return c == InstanceContext || c == ClassContext
}

// ParseContext converts a string to a Context
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "instance", "object":
		return InstanceContext, nil
	case "class":
		return ClassContext, nil
	default:
		return 0, fmt.Errorf("unknown context: %s", s)
	}
}
