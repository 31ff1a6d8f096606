package types

import (
	"fmt"
	"strings"
)

// Type is the domain of an attribute.
type Type int

const (
	IntType Type = iota
	StringType
	FloatType
	BoolType
)

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	case FloatType:
		return "FLOAT_TYPE"
	case BoolType:
		return "BOOL_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// IsNumeric reports whether values of t order numerically.
func (t Type) IsNumeric() bool {
	return t == IntType || t == FloatType
}

// Valid reports whether t is one of the known domains.
func (t Type) Valid() bool {
	return t >= IntType && t <= BoolType
}

// Comparable reports whether values of a and b have a common natural order.
func Comparable(a, b Type) bool {
	if a == b {
		return true
	}
	return a.IsNumeric() && b.IsNumeric()
}

// ParseType maps a domain tag to a Type. Tags are case-insensitive and accept
// both the short names (int, string, float, bool) and boxed class names such as
// Integer, Long, Double or Character.
func ParseType(tag string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "int", "integer", "long", "short", "byte", "int32", "int64", "int_type":
		return IntType, nil
	case "string", "character", "char", "text", "varchar", "string_type":
		return StringType, nil
	case "float", "double", "real", "float32", "float64", "float_type":
		return FloatType, nil
	case "bool", "boolean", "bool_type":
		return BoolType, nil
	default:
		return 0, fmt.Errorf("unknown domain %q", tag)
	}
}
