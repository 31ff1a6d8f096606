// Package database groups named base tables with their snapshot store and
// runs whole-database operations (save, load, parallel queries) over them.
package database

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"relstore/pkg/dberror"
	"relstore/pkg/logging"
	"relstore/pkg/relation"
	"relstore/pkg/storage/snapshot"
	"relstore/pkg/types"
)

// Config describes a database.
type Config struct {
	Name string

	// DataDir holds one snapshot directory per database name. Empty disables
	// persistence.
	DataDir string

	Relation relation.Config

	// Workers bounds the goroutines used by SaveAll, LoadAll and Evaluate.
	Workers int
}

// DefaultConfig returns an in-memory database configuration.
func DefaultConfig() Config {
	return Config{
		Name:     "relstore",
		Relation: relation.DefaultConfig(),
		Workers:  4,
	}
}

// Query is a read-only computation over the tables of a database.
type Query func(db *Database) (*relation.Table, error)

// Database represents a set of named base tables sharing one environment
type Database struct {
	name      string
	dataDir   string
	env       *relation.Env
	snapshots *snapshot.Store
	workers   int

	mutex  sync.RWMutex
	tables map[string]*relation.Table

	stats *DatabaseStats
	log   *slog.Logger
}

// DatabaseStats tracks operation counters
type DatabaseStats struct {
	QueriesExecuted int64
	ErrorCount      int64
	SnapshotsSaved  int64
	SnapshotsLoaded int64
	mutex           sync.RWMutex
}

// DatabaseInfo contains database metadata
type DatabaseInfo struct {
	Name            string
	Tables          []string
	TableCount      int
	QueriesExecuted int64
	ErrorCount      int64
	SnapshotsSaved  int64
	SnapshotsLoaded int64
}

// Open creates a database. When cfg.DataDir is set, snapshots live in
// <DataDir>/<Name>; existing snapshots are not loaded until Load or LoadAll.
func Open(cfg Config) (*Database, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultConfig().Name
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}

	db := &Database{
		name:    cfg.Name,
		env:     relation.NewEnv(cfg.Relation),
		workers: cfg.Workers,
		tables:  make(map[string]*relation.Table),
		stats:   &DatabaseStats{},
		log:     logging.WithComponent("database").With("database", cfg.Name),
	}

	if cfg.DataDir != "" {
		db.dataDir = filepath.Join(cfg.DataDir, cfg.Name)
		store, err := snapshot.NewStore(db.dataDir)
		if err != nil {
			return nil, err
		}
		db.snapshots = store
	}

	db.log.Info("database opened", "data_dir", db.dataDir)
	return db, nil
}

// Name returns the database name.
func (db *Database) Name() string {
	return db.name
}

// Env returns the environment the tables of this database are created in.
func (db *Database) Env() *relation.Env {
	return db.env
}

// CreateTable creates and registers an empty indexed table.
func (db *Database) CreateTable(name string, attrs []string, domains []types.Type, key []string) (*relation.Table, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.tables[name]; exists {
		return nil, db.tableExists(name)
	}

	t, err := relation.NewTable(db.env, name, attrs, domains, key)
	if err != nil {
		db.recordError()
		return nil, err
	}
	db.tables[name] = t
	return t, nil
}

// CreateTableFromStrings is CreateTable with whitespace-separated names and
// domain tags.
func (db *Database) CreateTableFromStrings(name, attrs, domains, key string) (*relation.Table, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.tables[name]; exists {
		return nil, db.tableExists(name)
	}

	t, err := relation.NewTableFromStrings(db.env, name, attrs, domains, key)
	if err != nil {
		db.recordError()
		return nil, err
	}
	db.tables[name] = t
	return t, nil
}

func (db *Database) tableExists(name string) error {
	db.recordError()
	e := dberror.New(dberror.ErrCategoryUser, dberror.CodeTableExists, "table already exists")
	e.Detail = name
	return e.WithOp("CreateTable", "Database")
}

// Table returns the registered table with the given name.
func (db *Database) Table(name string) (*relation.Table, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	t, ok := db.tables[name]
	if !ok {
		e := dberror.New(dberror.ErrCategoryUser, dberror.CodeTableNotFound, "table not found")
		e.Detail = name
		return nil, e.WithOp("Table", "Database")
	}
	return t, nil
}

// Tables returns the registered table names in lexical order.
func (db *Database) Tables() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	names := make([]string, 0, len(db.tables))
	for name := range db.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Drop unregisters the table and removes its snapshot, if any.
func (db *Database) Drop(name string) error {
	db.mutex.Lock()
	_, ok := db.tables[name]
	delete(db.tables, name)
	db.mutex.Unlock()

	if !ok {
		db.recordError()
		e := dberror.New(dberror.ErrCategoryUser, dberror.CodeTableNotFound, "table not found")
		e.Detail = name
		return e.WithOp("Drop", "Database")
	}
	if db.snapshots != nil {
		if err := db.snapshots.Remove(name); err != nil {
			db.recordError()
			return err
		}
	}
	db.log.Info("table dropped", "table", name)
	return nil
}

// Save writes a snapshot of the named table.
func (db *Database) Save(name string) (snapshot.Meta, error) {
	if err := db.requireSnapshots("Save"); err != nil {
		return snapshot.Meta{}, err
	}
	t, err := db.Table(name)
	if err != nil {
		db.recordError()
		return snapshot.Meta{}, err
	}

	meta, err := db.snapshots.Save(ImageOf(t))
	if err != nil {
		db.recordError()
		return snapshot.Meta{}, err
	}

	db.stats.mutex.Lock()
	db.stats.SnapshotsSaved++
	db.stats.mutex.Unlock()
	return meta, nil
}

// Load reads the snapshot of the named table, rebuilds its index and
// registers it, replacing a table of the same name.
func (db *Database) Load(name string) (*relation.Table, error) {
	if err := db.requireSnapshots("Load"); err != nil {
		return nil, err
	}

	img, meta, err := db.snapshots.Load(name)
	if err != nil {
		db.recordError()
		return nil, err
	}
	t, err := TableFromImage(db.env, img)
	if err != nil {
		db.recordError()
		return nil, err
	}

	db.mutex.Lock()
	db.tables[name] = t
	db.mutex.Unlock()

	db.stats.mutex.Lock()
	db.stats.SnapshotsLoaded++
	db.stats.mutex.Unlock()

	db.log.Debug("table loaded", "table", t.Name(), "snapshot", meta.ID.String(), "rows", t.Len())
	return t, nil
}

// SaveAll snapshots every registered table, at most Workers at a time.
func (db *Database) SaveAll(ctx context.Context) error {
	if err := db.requireSnapshots("SaveAll"); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(db.workers)
	for _, name := range db.Tables() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := db.Save(name)
			return err
		})
	}
	return g.Wait()
}

// LoadAll loads every snapshot in the data directory and returns the names
// of the loaded tables in lexical order.
func (db *Database) LoadAll(ctx context.Context) ([]string, error) {
	if err := db.requireSnapshots("LoadAll"); err != nil {
		return nil, err
	}
	names, err := db.snapshots.List()
	if err != nil {
		db.recordError()
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(db.workers)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := db.Load(name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

// Evaluate runs independent read-only queries concurrently and returns
// their results in argument order. The first error cancels the queries that
// have not started yet.
func (db *Database) Evaluate(ctx context.Context, queries ...Query) ([]*relation.Table, error) {
	results := make([]*relation.Table, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(db.workers)
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := q(db)
			if err != nil {
				db.recordError()
				return err
			}
			results[i] = t
			db.recordSuccess()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close saves every table when persistence is enabled and empties the
// registry.
func (db *Database) Close() error {
	var err error
	if db.snapshots != nil {
		err = db.SaveAll(context.Background())
	}

	db.mutex.Lock()
	clear(db.tables)
	db.mutex.Unlock()

	if err != nil {
		logging.WithError(err).Error("saving tables on close failed", "database", db.name)
		return err
	}
	db.log.Info("database closed")
	return nil
}

func (db *Database) requireSnapshots(op string) error {
	if db.snapshots != nil {
		return nil
	}
	db.recordError()
	return dberror.New(dberror.ErrCategoryUser, dberror.CodeSnapshot, "database has no data directory").
		WithOp(op, "Database")
}

// recordError updates error statistics
func (db *Database) recordError() {
	db.stats.mutex.Lock()
	db.stats.ErrorCount++
	db.stats.mutex.Unlock()
}

// recordSuccess updates success statistics
func (db *Database) recordSuccess() {
	db.stats.mutex.Lock()
	db.stats.QueriesExecuted++
	db.stats.mutex.Unlock()
}

// GetStatistics returns database statistics
func (db *Database) GetStatistics() DatabaseInfo {
	tables := db.Tables()

	db.stats.mutex.RLock()
	defer db.stats.mutex.RUnlock()

	return DatabaseInfo{
		Name:            db.name,
		Tables:          tables,
		TableCount:      len(tables),
		QueriesExecuted: db.stats.QueriesExecuted,
		ErrorCount:      db.stats.ErrorCount,
		SnapshotsSaved:  db.stats.SnapshotsSaved,
		SnapshotsLoaded: db.stats.SnapshotsLoaded,
	}
}
