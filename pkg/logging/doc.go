// Package logging provides the process-wide structured logger for relstore.
//
// The package wraps [log/slog] and exposes a single global logger that is
// initialised once and retrieved via GetLogger. Tables, indexes and the
// snapshot store obtain their loggers here rather than building their own, so
// level and destination are controlled from one place.
//
// # Initialisation
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug, Format: "json"}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level text logs to stderr.
//
// # Context helpers
//
//	log := logging.WithTable("movie")       // adds table field
//	log := logging.WithIndex("movie")       // adds index field
//	log := logging.WithOp("movie", "join")  // adds table and op fields
package logging
