package primitives

import "fmt"

// Predicate is a comparison operator between two values.
type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "=="

	case LessThan:
		return "<"

	case GreaterThan:
		return ">"

	default:
		return "UNKNOWN"
	}
}

// Holds reports whether the predicate is satisfied by a three-way comparison
// result c (negative, zero or positive).
func (p Predicate) Holds(c int) bool {
	switch p {
	case Equals:
		return c == 0
	case LessThan:
		return c < 0
	case GreaterThan:
		return c > 0
	default:
		return false
	}
}

// ParsePredicate maps a condition operator token of one or two characters to
// a Predicate. "==" is equality. A token starting with '>' or '<' is the
// strict inequality whatever its second character, so ">=" means ">".
// Anything else, including a single "=", is rejected.
func ParsePredicate(op string) (Predicate, error) {
	if op == "==" {
		return Equals, nil
	}
	if len(op) == 1 || len(op) == 2 {
		switch op[0] {
		case '>':
			return GreaterThan, nil
		case '<':
			return LessThan, nil
		}
	}
	return 0, fmt.Errorf("unsupported operator %q", op)
}
