// Package transfer is the orchestrator of spec §4.8: it validates the
// plan, opens both connections, drives capability probe -> introspection ->
// per-table DDL+data, and owns the foreign-key-enforcement scope-exit
// action, mirroring the teacher's Applier.Connect/Applier.Close pairing and
// its defer-based cleanup idiom throughout internal/apply.
package transfer

import (
	"context"
	"database/sql"
	"fmt"

	mysqldriver "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"mysql2sqlite/internal/capability"
	"mysql2sqlite/internal/core"
	"mysql2sqlite/internal/ddl"
	"mysql2sqlite/internal/introspect/mysql"
	"mysql2sqlite/internal/sink"
	"mysql2sqlite/internal/stream"
	"mysql2sqlite/internal/translate"
	"mysql2sqlite/internal/value"
	"mysql2sqlite/internal/xerr"
)

// SourceConfig names every connection detail the CLI surface exposes for
// the MySQL/MariaDB source (spec §6's -h/-P/-u/--mysql-password/-S/
// --mysql-charset/--mysql-collation flags).
type SourceConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	Charset    string
	Collation  string
	DisableTLS bool
}

// DSN builds a go-sql-driver/mysql data source name from the resolved
// connection flags, the same Config-based construction the driver itself
// recommends over hand-assembled DSN strings.
func (c SourceConfig) DSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Database
	cfg.ParseTime = false
	cfg.Params = map[string]string{"charset": orDefault(c.Charset, "utf8mb4")}
	if c.Collation != "" {
		cfg.Collation = c.Collation
	}
	if c.DisableTLS {
		cfg.TLSConfig = "false"
	} else {
		cfg.TLSConfig = "preferred"
	}
	return cfg.FormatDSN()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Config is everything one Run call needs: both connection descriptions,
// the resolved TransferPlan, and the collaborators the orchestrator is not
// responsible for constructing itself (sink, overrides).
type Config struct {
	Source          SourceConfig
	DestinationPath string
	Plan            *core.TransferPlan
	Sink            sink.Sink
	Overrides       *translate.Overrides
}

// Run drives one complete transfer: connect -> probe -> introspect ->
// (DDL + data per table) -> optional VACUUM. Every fatal error propagates
// after the foreign-key scope-exit has run, per spec §9's "global runtime
// switches modeled as scoped acquisitions".
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Plan.Validate(); err != nil {
		return err
	}

	srcDB, err := sql.Open("mysql", cfg.Source.DSN())
	if err != nil {
		return fmt.Errorf("%w: opening source connection: %v", xerr.ErrConnection, err)
	}
	defer srcDB.Close()
	if err := srcDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: pinging source: %v", xerr.ErrConnection, err)
	}

	dstDB, err := sql.Open("sqlite", cfg.DestinationPath)
	if err != nil {
		return fmt.Errorf("%w: opening destination %s: %v", xerr.ErrDestination, cfg.DestinationPath, err)
	}
	defer dstDB.Close()
	if err := dstDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: opening destination %s: %v", xerr.ErrDestination, cfg.DestinationPath, err)
	}

	caps, err := capability.Probe(ctx, dstDB)
	if err != nil {
		return err
	}

	// Foreign-key enforcement is taken down for the whole run (spec §9's
	// cyclic-reference design note) and restored on every exit path.
	if _, err := dstDB.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("%w: disabling foreign_keys: %v", xerr.ErrDestination, err)
	}
	defer func() {
		if _, err := dstDB.ExecContext(context.Background(), "PRAGMA foreign_keys = ON"); err != nil {
			cfg.Sink.Error(fmt.Errorf("%w: re-enabling foreign_keys: %v", xerr.ErrDestination, err))
		}
	}()

	introspecter := mysql.New(srcDB)
	tableNames, err := resolveTableNames(ctx, introspecter, cfg.Plan)
	if err != nil {
		return err
	}
	if cfg.Plan.Selection != core.SelectAll && len(tableNames) > 0 {
		cfg.Sink.Warning("foreign keys suppressed: transfer covers a table subset, not the full database")
	}

	// Dialect detection only widens the streamer's transient-error
	// vocabulary (spec §9's reconnect-once policy); a detection failure is
	// not fatal, it just keeps the common MySQL substring set.
	dialect, _, err := mysql.DetectDialect(ctx, srcDB)
	if err != nil {
		cfg.Sink.Warning(fmt.Sprintf("could not detect source server flavor, assuming MySQL: %v", err))
		dialect = mysql.DialectMySQL
	}

	names := ddl.NewNameRegistry(tableNames)
	ddlOpts := ddl.Options{
		Capabilities:        caps,
		Strict:              cfg.Plan.Strict,
		JSONAsText:          cfg.Plan.JSONAsText,
		Collation:           cfg.Plan.Collation,
		SuppressForeignKeys: cfg.Plan.SuppressForeignKeys,
		PrefixAllIndexNames: cfg.Plan.PrefixAllIndexNames,
		Overrides:           cfg.Overrides,
	}

	adapter := value.NewAdapter()
	streamer := &stream.Streamer{
		Source:      srcDB,
		Destination: dstDB,
		Sink:        cfg.Sink,
		Adapter:     adapter,
		Overrides:   cfg.Overrides,
		Opts:        ddlOpts,
		Dialect:     dialect,
	}

	for _, name := range tableNames {
		table, err := introspecter.Table(ctx, name)
		if err != nil {
			return fmt.Errorf("introspecting %s: %w", name, err)
		}

		if !cfg.Plan.WithoutDDL {
			if err := createTable(ctx, dstDB, table, ddlOpts, names, cfg.Sink); err != nil {
				return err
			}
		}

		if !cfg.Plan.WithoutData {
			if err := streamer.Table(ctx, table, cfg.Plan); err != nil {
				return err
			}
		} else {
			cfg.Sink.TableDone(table.Name, 0)
		}
	}

	if cfg.Plan.Vacuum {
		if _, err := dstDB.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("%w: VACUUM: %v", xerr.ErrDestination, err)
		}
	}

	return nil
}

func createTable(ctx context.Context, dstDB *sql.DB, table *core.TableDescriptor, opts ddl.Options, names *ddl.NameRegistry, s sink.Sink) error {
	result, err := ddl.Emit(table, opts, names)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		s.Warning(w)
	}
	if _, err := dstDB.ExecContext(ctx, result.Create); err != nil {
		return fmt.Errorf("%w: creating table %s: %v", xerr.ErrDestination, table.Name, err)
	}
	for _, idx := range result.Indexes {
		if _, err := dstDB.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("%w: creating index on %s: %v", xerr.ErrDestination, table.Name, err)
		}
	}
	return nil
}

// resolveTableNames applies the three-way exclusive table-selection mode
// (spec §4.5) against the full catalog listing.
func resolveTableNames(ctx context.Context, in *mysql.Introspecter, plan *core.TransferPlan) ([]string, error) {
	all, err := in.Tables(ctx, plan.IncludeViews)
	if err != nil {
		return nil, fmt.Errorf("%w: listing tables: %v", xerr.ErrConnection, err)
	}

	switch plan.Selection {
	case core.SelectInclude:
		set := toSet(plan.IncludeTables)
		var out []string
		for _, t := range all {
			if set[t] {
				out = append(out, t)
			}
		}
		return out, nil
	case core.SelectExclude:
		set := toSet(plan.ExcludeTables)
		var out []string
		for _, t := range all {
			if !set[t] {
				out = append(out, t)
			}
		}
		return out, nil
	default:
		return all, nil
	}
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
