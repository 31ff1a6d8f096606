package logging

import (
	"log/slog"
)

// WithTable creates a logger with table context.
//
// Example:
//
//	log := logging.WithTable("movie")
//	log.Debug("insert", "rows", n)
func WithTable(tableName string) *slog.Logger {
	return GetLogger().With("table", tableName)
}

// WithOp creates a logger with table and relational operator context.
//
// Example:
//
//	log := logging.WithOp("movie", "project")
//	log.Debug("RA", "attrs", attrs)
func WithOp(tableName, op string) *slog.Logger {
	return GetLogger().With("table", tableName, "op", op)
}

// WithIndex creates a logger with index context.
//
// Example:
//
//	log := logging.WithIndex("movie")
//	log.Debug("split", "isplit", 3)
func WithIndex(indexName string) *slog.Logger {
	return GetLogger().With("index", indexName)
}

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("snapshot")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithError creates a logger with error context.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("operation failed", "operation", "save")
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
