package types

import (
	"fmt"
	"strconv"
)

// CreateFieldFromConstant builds a field of type t from its textual form.
func CreateFieldFromConstant(t Type, constant string) (Field, error) {
	switch t {
	case IntType:
		v, err := strconv.ParseInt(constant, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer constant %q: %w", constant, err)
		}
		return NewIntField(v), nil

	case BoolType:
		v, err := strconv.ParseBool(constant)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean constant %q: %w", constant, err)
		}
		return NewBoolField(v), nil

	case FloatType:
		if !isDecimal(constant) {
			return nil, fmt.Errorf("invalid float constant %q", constant)
		}
		v, err := strconv.ParseFloat(constant, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float constant %q: %w", constant, err)
		}
		return NewFloat64Field(v), nil

	case StringType:
		return NewStringField(unquote(constant)), nil

	default:
		return nil, fmt.Errorf("unsupported field type: %v", t)
	}
}

// ParseLiteral coerces a condition literal: an integer if it parses as one,
// then a plain decimal such as 2.5, otherwise a string. Words like NaN or Inf
// and exponent forms stay strings. Surrounding quotes force a string.
func ParseLiteral(s string) Field {
	if u := unquote(s); u != s {
		return NewStringField(u)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewIntField(v)
	}
	if isDecimal(s) {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return NewFloat64Field(v)
		}
	}
	return NewStringField(s)
}

// CoerceLiteral builds the operand of a condition on a column of domain t.
// Numeric and boolean columns first try the literal as a constant of their
// own domain; string columns and literals that do not fit fall back to
// ParseLiteral.
func CoerceLiteral(t Type, s string) Field {
	if t != StringType {
		if f, err := CreateFieldFromConstant(t, s); err == nil {
			return f
		}
	}
	return ParseLiteral(s)
}

// isDecimal reports whether s is an optional sign, digits and at most one
// decimal point, with at least one digit.
func isDecimal(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// FromValue converts a Go value into a Field.
func FromValue(v any) (Field, error) {
	switch x := v.(type) {
	case Field:
		return x, nil
	case int:
		return NewIntField(int64(x)), nil
	case int8:
		return NewIntField(int64(x)), nil
	case int16:
		return NewIntField(int64(x)), nil
	case int32:
		return NewIntField(int64(x)), nil
	case int64:
		return NewIntField(x), nil
	case uint8:
		return NewIntField(int64(x)), nil
	case uint16:
		return NewIntField(int64(x)), nil
	case uint32:
		return NewIntField(int64(x)), nil
	case float32:
		return NewFloat64Field(float64(x)), nil
	case float64:
		return NewFloat64Field(x), nil
	case string:
		return NewStringField(x), nil
	case bool:
		return NewBoolField(x), nil
	default:
		return nil, fmt.Errorf("unsupported value %v of type %T", v, v)
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
