// Package stream implements the row streamer of spec §4.7: for one table
// at a time, it pulls rows from the MySQL source in bounded batches and
// writes them to the SQLite destination with INSERT OR IGNORE, generalizing
// the teacher's applyWithTransaction per-statement transaction loop
// (internal/apply/apply.go) to a per-batch transaction loop against a
// second database.
package stream

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mysql2sqlite/internal/core"
	"mysql2sqlite/internal/ddl"
	introspectmysql "mysql2sqlite/internal/introspect/mysql"
	"mysql2sqlite/internal/sink"
	"mysql2sqlite/internal/translate"
	"mysql2sqlite/internal/value"
	"mysql2sqlite/internal/xerr"
)

// defaultUnchunkedFlush is the fixed batch size used by the unchunked mode,
// which otherwise reads one MySQL row at a time.
const defaultUnchunkedFlush = 200

// Streamer owns the single MySQL read connection and the single SQLite
// write connection for the duration of one run, per the concurrency model's
// single-writer/single-reader resource model.
type Streamer struct {
	Source      *sql.DB
	Destination *sql.DB
	Sink        sink.Sink
	Adapter     *value.Adapter
	Overrides   *translate.Overrides
	Opts        ddl.Options

	// Dialect is the detected source server flavor (internal/introspect/mysql
	// .DetectDialect). It widens the transient-error substring set for
	// reconnect detection beyond the common MySQL ones; the zero value
	// behaves exactly like DialectMySQL.
	Dialect introspectmysql.Dialect
}

// transientSubstrings are the MySQL client-error phrases common to every
// source flavor, treated as "server gone away / lost connection" and
// therefore eligible for the single permitted reconnect, per the
// Reconnect-once policy design note.
var transientSubstrings = []string{
	"server has gone away",
	"invalid connection",
	"lost connection",
	"broken pipe",
	"connection reset by peer",
	"eof",
}

// dialectTransientSubstrings adds flavor-specific transient phrases on top
// of transientSubstrings: MariaDB's own wire messages diverge slightly from
// upstream MySQL's, and TiDB surfaces its distributed storage layer's own
// retryable errors where a single MySQL server would just drop the socket.
var dialectTransientSubstrings = map[introspectmysql.Dialect][]string{
	introspectmysql.DialectMariaDB: {
		"server closed the connection unexpectedly",
	},
	introspectmysql.DialectTiDB: {
		"region is unavailable",
		"tikv server timeout",
		"pd server timeout",
	},
}

// Table streams every row of t from the source into the destination,
// honoring plan.RowCap, plan.ChunkSize (0 means the unchunked streaming
// mode), plan.BufferedCursors (whole-resultset client-side buffering before
// any write begins), and plan.WithoutData (handled by the caller, which
// simply does not invoke Table). It permits exactly one reconnection
// attempt for this table on a transient error; a second transient failure
// is fatal.
func (s *Streamer) Table(ctx context.Context, t *core.TableDescriptor, plan *core.TransferPlan) error {
	colTypes, err := s.columnTypes(t)
	if err != nil {
		return err
	}

	s.Sink.TableStarted(t.Name, string(t.Kind))

	attempted := false
	var total int64
	for {
		_, err := s.streamOnce(ctx, t, plan, colTypes, &total)
		if err == nil {
			s.Sink.TableDone(t.Name, total)
			return nil
		}
		if s.isTransient(err) && !attempted {
			attempted = true
			s.Sink.Warning(fmt.Sprintf("%s: transient connection loss, reconnecting once: %v", t.Name, err))
			if recErr := s.reconnectSource(ctx); recErr != nil {
				return fmt.Errorf("%w: %s: reconnect failed: %v", xerr.ErrTransient, t.Name, recErr)
			}
			// The retry re-reads the table from its first row, so the count restarts.
			total = 0
			continue
		}
		if s.isTransient(err) {
			return fmt.Errorf("%w: %s: second transient loss, giving up: %v", xerr.ErrTransient, t.Name, err)
		}
		return err
	}
}

// columnTypes resolves each column's translated SQLite type once, up
// front, so the value adapter can dispatch on it per row without
// re-running the type translator per cell.
func (s *Streamer) columnTypes(t *core.TableDescriptor) (map[string]string, error) {
	types := make(map[string]string, len(t.Columns))
	for _, col := range t.Columns {
		if ov, ok := s.Overrides.Lookup(t.Name, col.Name); ok {
			types[col.Name] = ov.SQLiteType
			continue
		}
		if col.RawType == "" {
			// Same TEXT fallback the DDL emitter uses for an untyped view column.
			types[col.Name] = "TEXT"
			continue
		}
		st := translate.ParseSourceType(col.RawType)
		translated, err := translate.Translate(st, translate.Options{
			Capabilities: s.Opts.Capabilities,
			Strict:       s.Opts.Strict,
			JSONAsText:   s.Opts.JSONAsText,
			Collation:    string(s.Opts.Collation),
		})
		if err != nil {
			return nil, err
		}
		types[col.Name] = translated.Name
	}
	return types, nil
}

func (s *Streamer) streamOnce(ctx context.Context, t *core.TableDescriptor, plan *core.TransferPlan, colTypes map[string]string, total *int64) (int64, error) {
	colNames := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colNames[i] = c.Name
	}

	query := fmt.Sprintf("SELECT %s FROM %s", quoteMySQLList(colNames), quoteMySQLIdentifier(t.Name))
	if plan.RowCap > 0 {
		query += fmt.Sprintf(" LIMIT %d", plan.RowCap)
	}

	rows, err := s.Source.QueryContext(ctx, query)
	if err != nil {
		return *total, err
	}
	defer rows.Close()

	insertSQL := insertStatement(t.Name, colNames)

	flush := defaultUnchunkedFlush
	if plan.ChunkSize > 0 {
		flush = plan.ChunkSize
	}

	values := make([]any, len(colNames))
	scanPtrs := make([]any, len(colNames))
	for i := range values {
		scanPtrs[i] = &values[i]
	}

	var batch [][]any
	ordinal := *total

	commit := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.writeBatch(ctx, insertSQL, batch); err != nil {
			return err
		}
		ordinal += int64(len(batch))
		s.Sink.ChunkCommitted(t.Name, int64(len(batch)), ordinal)
		batch = batch[:0]
		return nil
	}

	// --use-buffered-cursors reads the entire result set into memory before
	// writing the first row, trading peak memory for a read transaction that
	// releases the source table's read locks as early as possible. The
	// default mode converts and writes as each row arrives off the wire.
	var buffered [][]any
	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return ordinal, err
		}
		bound := make([]any, len(colNames))
		for i, col := range t.Columns {
			v, err := s.Adapter.ToSQLite(t.Name, col.Name, colTypes[col.Name], values[i])
			if err != nil {
				return ordinal, xerr.DataError(t.Name, col.Name, ordinal, err)
			}
			bound[i] = v
		}
		if plan.BufferedCursors {
			buffered = append(buffered, bound)
			continue
		}
		batch = append(batch, bound)
		if len(batch) >= flush {
			if err := commit(); err != nil {
				return ordinal, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return ordinal, err
	}
	if err := rows.Close(); err != nil {
		return ordinal, err
	}

	if plan.BufferedCursors {
		for _, bound := range buffered {
			batch = append(batch, bound)
			if len(batch) >= flush {
				if err := commit(); err != nil {
					return ordinal, err
				}
			}
		}
	}
	if err := commit(); err != nil {
		return ordinal, err
	}

	*total = ordinal
	return ordinal, nil
}

// writeBatch commits one chunk inside its own transaction, per the
// resource model's "transactions wrap each chunk write" rule.
func (s *Streamer) writeBatch(ctx context.Context, insertSQL string, batch [][]any) error {
	tx, err := s.Destination.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin batch transaction: %v", xerr.ErrDestination, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: prepare insert: %v", xerr.ErrDestination, err)
	}
	defer stmt.Close()

	for _, row := range batch {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: insert: %v", xerr.ErrDestination, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit batch: %v", xerr.ErrDestination, err)
	}
	return nil
}

// reconnectSource pings the existing source connection pool; database/sql
// discards a connection the driver reports as broken and dials a new one,
// so a successful Ping is usually sufficient to recover from a dropped TCP
// session.
func (s *Streamer) reconnectSource(ctx context.Context) error {
	return s.Source.PingContext(ctx)
}

func (s *Streamer) isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sub := range transientSubstrings {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	for _, sub := range dialectTransientSubstrings[s.Dialect] {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

func insertStatement(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = "?"
		quoted[i] = ddl.QuoteIdentifier(c)
	}
	return fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		ddl.QuoteIdentifier(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "),
	)
}

func quoteMySQLIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quoteMySQLList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteMySQLIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}
