package snapshot

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"

	"relstore/pkg/types"
)

// Image is the opaque, self-describing content of one table: its schema and
// every row in insertion order.
type Image struct {
	Name       string
	Attributes []string
	Types      []types.Type
	Key        []string
	Rows       [][]types.Field
}

// MarshalMsg implements msgp.Marshaler
func (z *Image) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.AppendMapHeader(b, 5)

	o = msgp.AppendString(o, "name")
	o = msgp.AppendString(o, z.Name)

	o = msgp.AppendString(o, "attrs")
	o = appendStrings(o, z.Attributes)

	o = msgp.AppendString(o, "types")
	o = msgp.AppendArrayHeader(o, uint32(len(z.Types)))
	for _, t := range z.Types {
		o = msgp.AppendInt(o, int(t))
	}

	o = msgp.AppendString(o, "key")
	o = appendStrings(o, z.Key)

	o = msgp.AppendString(o, "rows")
	o = msgp.AppendArrayHeader(o, uint32(len(z.Rows)))
	for i, row := range z.Rows {
		o = msgp.AppendArrayHeader(o, uint32(len(row)))
		for j, f := range row {
			var err error
			if o, err = appendField(o, f); err != nil {
				return o, msgp.WrapError(err, "rows", i, j)
			}
		}
	}
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Image) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, err
	}

	for range sz {
		var field string
		field, bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return bts, err
		}

		switch field {
		case "name":
			z.Name, bts, err = msgp.ReadStringBytes(bts)
		case "attrs":
			z.Attributes, bts, err = readStrings(bts)
		case "types":
			z.Types, bts, err = readTypes(bts)
		case "key":
			z.Key, bts, err = readStrings(bts)
		case "rows":
			z.Rows, bts, err = readRows(bts)
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return bts, msgp.WrapError(err, field)
		}
	}
	return bts, nil
}

// Validate checks that the schema is consistent and every row has one value
// per attribute.
func (z *Image) Validate() error {
	if len(z.Attributes) != len(z.Types) {
		return fmt.Errorf("%d attributes but %d types", len(z.Attributes), len(z.Types))
	}
	for _, t := range z.Types {
		if !t.Valid() {
			return fmt.Errorf("unknown type %d", t)
		}
	}
	for i, row := range z.Rows {
		if len(row) != len(z.Attributes) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(z.Attributes))
		}
	}
	return nil
}

func appendStrings(o []byte, ss []string) []byte {
	o = msgp.AppendArrayHeader(o, uint32(len(ss)))
	for _, s := range ss {
		o = msgp.AppendString(o, s)
	}
	return o
}

func readStrings(bts []byte) ([]string, []byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return nil, bts, err
	}
	out := make([]string, n)
	for i := range out {
		out[i], bts, err = msgp.ReadStringBytes(bts)
		if err != nil {
			return nil, bts, msgp.WrapError(err, i)
		}
	}
	return out, bts, nil
}

func readTypes(bts []byte) ([]types.Type, []byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return nil, bts, err
	}
	out := make([]types.Type, n)
	for i := range out {
		var v int
		v, bts, err = msgp.ReadIntBytes(bts)
		if err != nil {
			return nil, bts, msgp.WrapError(err, i)
		}
		out[i] = types.Type(v)
	}
	return out, bts, nil
}

func readRows(bts []byte) ([][]types.Field, []byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return nil, bts, err
	}
	rows := make([][]types.Field, n)
	for i := range rows {
		var arity uint32
		arity, bts, err = msgp.ReadArrayHeaderBytes(bts)
		if err != nil {
			return nil, bts, msgp.WrapError(err, i)
		}
		row := make([]types.Field, arity)
		for j := range row {
			row[j], bts, err = readField(bts)
			if err != nil {
				return nil, bts, msgp.WrapError(err, i, j)
			}
		}
		rows[i] = row
	}
	return rows, bts, nil
}

// appendField encodes a field as the native msgpack value of its domain.
func appendField(o []byte, f types.Field) ([]byte, error) {
	switch v := f.(type) {
	case *types.IntField:
		return msgp.AppendInt64(o, v.Value), nil
	case *types.Float64Field:
		return msgp.AppendFloat64(o, v.Value), nil
	case *types.StringField:
		return msgp.AppendString(o, v.Value), nil
	case *types.BoolField:
		return msgp.AppendBool(o, v.Value), nil
	default:
		return o, fmt.Errorf("unsupported field %T", f)
	}
}

// readField decodes the next msgpack value into the matching field kind.
func readField(bts []byte) (types.Field, []byte, error) {
	switch msgp.NextType(bts) {
	case msgp.IntType:
		v, o, err := msgp.ReadInt64Bytes(bts)
		return types.NewIntField(v), o, err
	case msgp.UintType:
		v, o, err := msgp.ReadInt64Bytes(bts)
		return types.NewIntField(v), o, err
	case msgp.Float64Type:
		v, o, err := msgp.ReadFloat64Bytes(bts)
		return types.NewFloat64Field(v), o, err
	case msgp.Float32Type:
		v, o, err := msgp.ReadFloat32Bytes(bts)
		return types.NewFloat64Field(float64(v)), o, err
	case msgp.StrType:
		v, o, err := msgp.ReadStringBytes(bts)
		return types.NewStringField(v), o, err
	case msgp.BoolType:
		v, o, err := msgp.ReadBoolBytes(bts)
		return types.NewBoolField(v), o, err
	default:
		return nil, bts, fmt.Errorf("unsupported msgpack type %v", msgp.NextType(bts))
	}
}
