// Package relation implements tables and the relational-algebra operators
// over them: project, select, union, minus and the join family, plus insert.
//
// Every operator returns a new table and leaves its inputs untouched. Base
// tables are indexed on their key with a linear-hashing index; derived tables
// are read-only and unindexed unless rebuilt with WithIndex.
package relation

import (
	"errors"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"relstore/pkg/dberror"
	"relstore/pkg/iterator"
	"relstore/pkg/storage/heap"
	"relstore/pkg/storage/index/linhash"
	"relstore/pkg/tuple"
	"relstore/pkg/types"
)

// Table is a named relation: a schema, the stored tuples and an optional
// index on the schema key.
//
// Insert takes the table's exclusive lock and readers share it, so a table
// can be queried from many goroutines while another inserts.
type Table struct {
	env    *Env
	name   string
	schema *tuple.Schema

	mu       sync.RWMutex
	store    *heap.Store
	index    *linhash.Index[*tuple.Tuple]
	dupKeys  bool // an insert replaced the index entry of an existing key
	readOnly bool

	log *slog.Logger
}

// NewTable creates an empty, indexed base table.
func NewTable(env *Env, name string, attrs []string, domains []types.Type, key []string) (*Table, error) {
	schema, err := tuple.NewSchema(attrs, domains, key)
	if err != nil {
		return nil, opError(err, "CreateTable", name)
	}

	t := newTable(env, name, schema)
	t.index = linhash.New[*tuple.Tuple](name, env.cfg.Index)
	t.log.Debug("DDL> create table", "attributes", schema.Attributes(), "key", schema.Key())
	return t, nil
}

// NewTableFromStrings creates a base table from whitespace-separated attribute
// names, domain tags and key names, e.g.
//
//	NewTableFromStrings(env, "movie", "title year length", "String Integer Integer", "title year")
func NewTableFromStrings(env *Env, name, attrs, domains, key string) (*Table, error) {
	tags := strings.Fields(domains)
	doms := make([]types.Type, len(tags))
	for i, tag := range tags {
		d, err := types.ParseType(tag)
		if err != nil {
			return nil, opError(dberror.Schemaf("%v", err), "CreateTable", name)
		}
		doms[i] = d
	}
	return NewTable(env, name, strings.Fields(attrs), doms, strings.Fields(key))
}

func newTable(env *Env, name string, schema *tuple.Schema) *Table {
	return &Table{
		env:    env,
		name:   name,
		schema: schema,
		store:  heap.NewStore(schema.Arity()),
		log:    env.logger(name, ""),
	}
}

// derive builds the read-only result table of an operator.
func (t *Table) derive(schema *tuple.Schema, rows []*tuple.Tuple) *Table {
	out := newTable(t.env, t.env.derivedName(t.name), schema)
	out.readOnly = true
	for _, r := range rows {
		// rows are built from the result schema and cannot fail the arity check
		_ = out.store.Append(r)
	}
	return out
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Schema returns the table schema.
func (t *Table) Schema() *tuple.Schema {
	return t.schema
}

// Col returns the position of the named attribute.
func (t *Table) Col(attr string) (int, error) {
	c, err := t.schema.ColumnIndex(attr)
	if err != nil {
		return -1, opError(err, "Col", t.name)
	}
	return c, nil
}

// Len returns the number of stored tuples.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Len()
}

// Tuples returns the current rows in insertion order.
func (t *Table) Tuples() []*tuple.Tuple {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Snapshot()
}

// All yields the rows present when iteration starts.
func (t *Table) All() iter.Seq[*tuple.Tuple] {
	rows := t.Tuples()
	return func(yield func(*tuple.Tuple) bool) {
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	}
}

// cursor returns a rewindable iterator over the rows present now.
func (t *Table) cursor() *iterator.SliceIterator[*tuple.Tuple] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.store.Iterator()
}

// Indexed reports whether the table maintains a key index.
func (t *Table) Indexed() bool {
	return t.index != nil
}

// ReadOnly reports whether the table rejects inserts. Operator results are
// read-only.
func (t *Table) ReadOnly() bool {
	return t.readOnly
}

// IndexStats returns the bookkeeping of the key index, if any.
func (t *Table) IndexStats() (linhash.Stats, bool) {
	if t.index == nil {
		return linhash.Stats{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index.Stats(), true
}

// Insert appends a tuple built from fields and upserts the key index.
// The tuple must have one non-nil field per attribute. Domains are not checked.
func (t *Table) Insert(fields ...types.Field) error {
	if t.readOnly {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeReadOnly, "table is read-only").
			WithOp("Insert", t.name)
	}

	for i, f := range fields {
		if f == nil {
			return dberror.Schemaf("field %d (%s) is nil", i, t.attrName(i)).WithOp("Insert", t.name)
		}
	}
	tup := tuple.New(fields...)

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Append(tup); err != nil {
		return opError(err, "Insert", t.name)
	}
	if t.index != nil {
		key, err := tup.Key(t.schema.KeyColumns())
		if err != nil {
			return opError(err, "Insert", t.name)
		}
		if _, existed := t.index.Put(key, tup); existed {
			t.dupKeys = true
			t.log.Debug("duplicate key, index keeps the latest tuple", "key", key.String())
		}
	}

	t.log.Debug("DML> insert", "tuple", tup.String())
	return nil
}

func (t *Table) attrName(i int) string {
	if i < t.schema.Arity() {
		return t.schema.Attributes()[i]
	}
	return "?"
}

// InsertValues converts Go values with types.FromValue and inserts them.
func (t *Table) InsertValues(values ...any) error {
	fields := make([]types.Field, len(values))
	for i, v := range values {
		f, err := types.FromValue(v)
		if err != nil {
			return dberror.TypeMismatchf("value %d: %v", i, err).WithOp("Insert", t.name)
		}
		fields[i] = f
	}
	return t.Insert(fields...)
}

// WithIndex returns a read-only copy of the table with a key index rebuilt
// from its rows. Later rows win when keys repeat.
func (t *Table) WithIndex() *Table {
	rows := t.Tuples()
	out := t.derive(t.schema, rows)
	out.index = linhash.New[*tuple.Tuple](out.name, t.env.cfg.Index)

	cols := t.schema.KeyColumns()
	for _, r := range rows {
		key, err := r.Key(cols)
		if err != nil {
			continue
		}
		if _, existed := out.index.Put(key, r); existed {
			out.dupKeys = true
		}
	}
	t.trace("index", out)
	return out
}

// trace logs one relational-algebra step at debug level.
func (t *Table) trace(op string, out *Table, args ...any) {
	args = append(args, "result", out.name, "rows", out.store.Len())
	t.env.logger(t.name, op).Debug("RA>", args...)
}

// opError attaches operation and table to a DBError; other errors pass through.
func opError(err error, op, table string) error {
	var dbErr *dberror.DBError
	if errors.As(err, &dbErr) {
		return dbErr.WithOp(op, table)
	}
	return err
}
