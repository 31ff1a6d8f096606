package relation

import (
	"fmt"
	"strings"

	"relstore/pkg/dberror"
	"relstore/pkg/primitives"
	"relstore/pkg/types"
)

// Condition compares an attribute against a constant: Attr Op Operand.
//
// Literal is the operand as written. When set, SelectWhere re-coerces it
// against the attribute's domain; Operand is used as given otherwise.
type Condition struct {
	Attr    string
	Op      primitives.Predicate
	Operand types.Field
	Literal string
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Attr, c.Op, c.Operand)
}

// ParseCondition parses "<attr> <op> <literal>". Tokens are separated by
// whitespace; the literal is coerced with types.ParseLiteral. Quote the
// literal to force a string.
func ParseCondition(s string) (Condition, error) {
	tok := strings.Fields(s)
	if len(tok) != 3 {
		return Condition{}, dberror.InvalidConditionf("%q: want <attribute> <operator> <literal>", s)
	}
	op, err := primitives.ParsePredicate(tok[1])
	if err != nil {
		return Condition{}, dberror.InvalidConditionf("%q: %v", s, err)
	}
	return Condition{Attr: tok[0], Op: op, Operand: types.ParseLiteral(tok[2]), Literal: tok[2]}, nil
}

// ThetaCondition compares an attribute of the left table against an
// attribute of the right table: Left Op Right.
type ThetaCondition struct {
	Left  string
	Op    primitives.Predicate
	Right string
}

func (c ThetaCondition) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// ParseThetaCondition parses "<left-attr> <op> <right-attr>".
func ParseThetaCondition(s string) (ThetaCondition, error) {
	tok := strings.Fields(s)
	if len(tok) != 3 {
		return ThetaCondition{}, dberror.InvalidConditionf("%q: want <attribute> <operator> <attribute>", s)
	}
	op, err := primitives.ParsePredicate(tok[1])
	if err != nil {
		return ThetaCondition{}, dberror.InvalidConditionf("%q: %v", s, err)
	}
	return ThetaCondition{Left: tok[0], Op: op, Right: tok[2]}, nil
}
