// Package main is the cli frontend for the transfer engine. Flags only,
// no subcommands, matching the one-shot single-purpose nature of the tool
// (unlike the teacher's multi-subcommand cobra tree in cmd/smf, this binary
// has exactly one job and exposes it on the root command).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	"mysql2sqlite/internal/core"
	"mysql2sqlite/internal/sink"
	"mysql2sqlite/internal/transfer"
	"mysql2sqlite/internal/translate"
	"mysql2sqlite/internal/xerr"
)

// engineVersion is the tool's own release version, reported by --version
// alongside the dependency versions read from runtime/debug.BuildInfo.
const engineVersion = "0.1.0"

type flags struct {
	outFile  string
	database string
	user     string
	password string
	promptPW bool

	host string
	port int

	mysqlCharset   string
	mysqlCollation string
	disableTLS     bool

	includeTables []string
	excludeTables []string
	includeViews  bool

	rowCap int64

	collation      string
	prefixIndexes  bool
	suppressFKs    bool
	withoutDDL     bool
	withoutData    bool
	strict         bool
	chunkSize      int
	jsonAsText     bool
	vacuum         bool
	bufferedCursor bool

	columnOverrides string

	logFile string
	quiet   bool
	debug   bool
}

func main() {
	f := &flags{}
	cmd := rootCmd(f)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mysql2sqlite",
		Short:   "Materialize a MySQL/MariaDB database as a self-contained SQLite file",
		Version: versionString(),
		Long: `mysql2sqlite reads a MySQL or MariaDB schema and its row data and
writes an equivalent SQLite database in a single output file: an offline,
self-contained replica of a live relational source, for archival, local
development, embedding, or platform migration.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}")

	bindFlags(cmd, f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	fs := cmd.Flags()

	fs.StringVarP(&f.outFile, "file", "f", "", "output SQLite file path (required)")
	fs.StringVarP(&f.database, "database", "d", "", "source database name (required)")
	fs.StringVarP(&f.user, "user", "u", "", "source user (required)")
	fs.StringVar(&f.password, "mysql-password", "", "source password")
	fs.BoolVarP(&f.promptPW, "prompt-password", "p", false, "prompt for the source password")

	fs.StringVarP(&f.host, "host", "h", "localhost", "source host")
	fs.IntVarP(&f.port, "port", "P", 3306, "source port")

	fs.StringVar(&f.mysqlCharset, "mysql-charset", "utf8mb4", "source session character set")
	fs.StringVar(&f.mysqlCollation, "mysql-collation", "", "source session collation")
	fs.BoolVarP(&f.disableTLS, "no-tls", "S", false, "disable TLS to the source")

	fs.StringArrayVarP(&f.includeTables, "table", "t", nil, "include only these tables (implies no foreign keys); repeatable")
	fs.StringArrayVarP(&f.excludeTables, "exclude", "e", nil, "exclude these tables (implies no foreign keys); repeatable, mutually exclusive with -t")
	fs.BoolVarP(&f.includeViews, "views", "T", false, "include views, materialized as tables")

	fs.Int64VarP(&f.rowCap, "row-cap", "L", 0, "per-table row cap (0 means unlimited)")

	fs.StringVarP(&f.collation, "collation", "C", "BINARY", "collation applied to TEXT-affine columns: BINARY, NOCASE, or RTRIM")
	fs.BoolVarP(&f.prefixIndexes, "prefix-indexes", "K", false, "prefix all index names with <table>_")
	fs.BoolVarP(&f.suppressFKs, "no-foreign-keys", "X", false, "suppress foreign keys")
	fs.BoolVarP(&f.withoutDDL, "without-tables", "Z", false, "suppress DDL (data only)")
	fs.BoolVarP(&f.withoutData, "without-data", "W", false, "suppress data (DDL only); mutually exclusive with -Z")
	fs.BoolVarP(&f.strict, "strict", "M", false, "emit STRICT tables when supported")
	fs.IntVarP(&f.chunkSize, "chunk", "c", 0, "chunk size (0 means the unchunked streaming mode)")
	fs.BoolVar(&f.jsonAsText, "json-as-text", false, "force JSON columns to TEXT")
	fs.BoolVarP(&f.vacuum, "vacuum", "V", false, "run VACUUM at the end")
	fs.BoolVar(&f.bufferedCursor, "use-buffered-cursors", false, "buffer the whole result set client-side instead of streaming")

	fs.StringVar(&f.columnOverrides, "column-overrides", "", "TOML file pinning explicit SQLite types for specific columns")

	fs.StringVarP(&f.logFile, "log-file", "l", "", "log file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "errors only")
	fs.BoolVar(&f.debug, "debug", false, "propagate unexpected errors with a full chain instead of a one-line message")
}

func run(ctx context.Context, f *flags) error {
	if f.outFile == "" {
		return xerr.Configuration("f", "output file path is required")
	}
	if f.database == "" {
		return xerr.Configuration("d", "source database name is required")
	}
	if f.user == "" {
		return xerr.Configuration("u", "source user is required")
	}

	password := f.password
	if f.promptPW {
		pw, err := readPassword(os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("%w: reading password: %v", xerr.ErrConfiguration, err)
		}
		password = pw
	}

	out, closeOut, err := openLogSink(f.logFile)
	if err != nil {
		return err
	}
	defer closeOut()

	var s sink.Sink = sink.NewConsole(out)
	if f.quiet {
		s = sink.NewQuiet(s)
	}

	overrides, err := translate.LoadOverrides(f.columnOverrides)
	if err != nil {
		return err
	}

	plan := &core.TransferPlan{
		Database:            f.database,
		IncludeTables:       f.includeTables,
		ExcludeTables:       f.excludeTables,
		IncludeViews:        f.includeViews,
		RowCap:              f.rowCap,
		Collation:           core.CollationMode(strings.ToUpper(f.collation)),
		PrefixAllIndexNames: f.prefixIndexes,
		SuppressForeignKeys: f.suppressFKs,
		WithoutDDL:          f.withoutDDL,
		WithoutData:         f.withoutData,
		Strict:              f.strict,
		JSONAsText:          f.jsonAsText,
		ChunkSize:           f.chunkSize,
		Vacuum:              f.vacuum,
		BufferedCursors:     f.bufferedCursor,
	}

	cfg := transfer.Config{
		Source: transfer.SourceConfig{
			Host:       f.host,
			Port:       f.port,
			User:       f.user,
			Password:   password,
			Database:   f.database,
			Charset:    f.mysqlCharset,
			Collation:  f.mysqlCollation,
			DisableTLS: f.disableTLS,
		},
		DestinationPath: f.outFile,
		Plan:            plan,
		Sink:            s,
		Overrides:       overrides,
	}

	err = transfer.Run(ctx, cfg)
	if err != nil {
		s.Error(err)
		if f.debug {
			return fmt.Errorf("%+v", err)
		}
		return fmt.Errorf("%s", oneLine(err))
	}
	return nil
}

// oneLine reduces an error chain to its top-level message for the default
// (non --debug) user-facing surface, per the error-handling design's
// "user sees a one-line message" propagation policy.
func oneLine(err error) string {
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return msg
}

func openLogSink(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening log file %s: %v", xerr.ErrConfiguration, path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// readPassword reads one line from in without attempting to suppress
// terminal echo; the teacher's own askConfirmation helper in
// internal/apply/apply.go makes the same tradeoff for its y/n prompt.
func readPassword(in *os.File, out *os.File) (string, error) {
	fmt.Fprint(out, "Password: ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func versionString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mysql2sqlite %s\n", engineVersion)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b.String()
	}
	wanted := map[string]bool{
		"github.com/go-sql-driver/mysql": true,
		"modernc.org/sqlite":             true,
	}
	for _, dep := range info.Deps {
		if wanted[dep.Path] {
			fmt.Fprintf(&b, "  %s %s\n", dep.Path, dep.Version)
		}
	}
	return b.String()
}
