package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/sllt/sqlsession/pkg/sqlsession"
	"github.com/sllt/sqlsession/pkg/sqlsession/config"
	"github.com/sllt/sqlsession/pkg/sqlsession/logging"
	"github.com/sllt/sqlsession/pkg/sqlsession/metrics"
)

var errMissingStatement = errors.New("please provide a statement, e.g.: sqlsession exec \"DELETE FROM t WHERE id = ?\" int:1")

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "sqlsession",
		Usage:   "Run SQL statements with positional parameters over a single database session",
		Version: CLIVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Connection target, e.g. mysql:host=localhost;dbname=shop (default: DB_* keys from the env files)",
				Sources: cli.EnvVars("DB_TARGET"),
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "Database user",
				Sources: cli.EnvVars("DB_USER"),
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Database password",
				Sources: cli.EnvVars("DB_PASSWORD"),
			},
			&cli.StringFlag{
				Name:  "config-dir",
				Usage: "Folder holding .env files read when --target is not set",
				Value: "./configs",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "DEBUG, INFO, NOTICE, WARN, ERROR or FATAL",
				Value:   "WARN",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print the session metrics in the Prometheus text format when done",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "exec",
				Usage:     "Run a statement and print the number of affected rows",
				ArgsUsage: "SQL [type:value...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "last-id",
						Usage: "Also print the id generated by the statement",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Run inside a transaction and roll it back (dry run)",
					},
				},
				Action: runExec,
			},
			{
				Name:      "query",
				Usage:     "Run a query and print its rows",
				ArgsUsage: "SQL [type:value...]",
				Action:    runQuery,
			},
			{
				Name:  "ping",
				Usage: "Open a session and close it again",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withSession(ctx, cmd, func(s *sqlsession.Session) error {
						fmt.Fprintf(cmd.Root().Writer, "connected to %s (session %s)\n", s.Dialect(), s.ID())
						return nil
					})
				},
			},
		},
	}
}

func runExec(ctx context.Context, cmd *cli.Command) error {
	query, params, err := statement(cmd)
	if err != nil {
		return err
	}

	return withSession(ctx, cmd, func(s *sqlsession.Session) error {
		run := func(s *sqlsession.Session) error {
			return exec(ctx, cmd.Root().Writer, s, query, params, cmd.Bool("last-id"))
		}

		if !cmd.Bool("rollback") {
			return run(s)
		}

		if err := s.Begin(ctx); err != nil {
			return err
		}

		return errors.Join(run(s), s.Rollback(ctx))
	})
}

func exec(ctx context.Context, w io.Writer, e sqlsession.Executor, query string, params []any, lastID bool) error {
	n, err := e.Exec(ctx, query, params...)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%d row(s) affected\n", n)

	if !lastID {
		return nil
	}

	id, err := e.LastInsertID(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "last insert id: %d\n", id)

	return nil
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	query, params, err := statement(cmd)
	if err != nil {
		return err
	}

	return withSession(ctx, cmd, func(s *sqlsession.Session) error {
		return printQuery(ctx, cmd.Root().Writer, s, query, params)
	})
}

func printQuery(ctx context.Context, w io.Writer, e sqlsession.Executor, query string, params []any) error {
	res, err := e.Query(ctx, query, params...)
	if err != nil {
		return err
	}

	defer res.Close()

	cols, err := res.Columns()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))

	values := make([]any, len(cols))
	dest := make([]any, len(cols))

	for i := range values {
		dest[i] = &values[i]
	}

	rows := 0

	for res.Next() {
		if err := res.Scan(dest...); err != nil {
			return err
		}

		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatValue(v)
		}

		fmt.Fprintln(tw, strings.Join(cells, "\t"))

		rows++
	}

	if err := res.Err(); err != nil {
		return err
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "(%d row(s))\n", rows)

	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func withSession(ctx context.Context, cmd *cli.Command, fn func(*sqlsession.Session) error) (err error) {
	logger := logging.NewLogger(logging.GetLevelFromString(cmd.String("log-level")))
	opts := []sqlsession.Option{sqlsession.WithLogger(logger)}

	if cmd.Bool("metrics") {
		p, perr := metrics.NewPrometheusProvider("sqlsession")
		if perr != nil {
			return perr
		}

		manager := metrics.NewMetricsManager(p.Meter, logger)
		sqlsession.RegisterMetrics(manager)
		opts = append(opts, sqlsession.WithMetrics(manager))

		defer func() {
			err = errors.Join(err, p.WriteText(cmd.Root().Writer), p.Shutdown(ctx))
		}()
	}

	target := cmd.String("target")
	if target != "" {
		return sqlsession.With(ctx, target, cmd.String("user"), cmd.String("password"), fn, opts...)
	}

	s, err := sqlsession.FromConfig(ctx, config.NewEnvFile(cmd.String("config-dir"), logger), opts...)
	if err != nil {
		return err
	}

	return errors.Join(fn(s), s.Close())
}

func statement(cmd *cli.Command) (string, []any, error) {
	args := cmd.Args()
	if args.Len() == 0 || strings.TrimSpace(args.First()) == "" {
		return "", nil, errMissingStatement
	}

	params := make([]any, 0, args.Len()-1)

	for i, raw := range args.Tail() {
		p, err := parseParam(raw)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}

		params = append(params, p)
	}

	return args.First(), params, nil
}

// parseParam reads "type:value" where type is text, int, float, bool or blob (hex encoded), or
// the bare word null. Anything without a known type prefix is text.
func parseParam(raw string) (sqlsession.Param, error) {
	if raw == "null" {
		return sqlsession.Null(), nil
	}

	kind, value, ok := strings.Cut(raw, ":")
	if !ok {
		return sqlsession.Text(raw), nil
	}

	switch kind {
	case "text":
		return sqlsession.Text(value), nil
	case "int":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return sqlsession.Param{}, err
		}

		return sqlsession.Int(n), nil
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return sqlsession.Param{}, err
		}

		return sqlsession.Float(f), nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return sqlsession.Param{}, err
		}

		return sqlsession.Bool(b), nil
	case "blob":
		b, err := hex.DecodeString(value)
		if err != nil {
			return sqlsession.Param{}, err
		}

		return sqlsession.Blob(b), nil
	case "null":
		return sqlsession.Null(), nil
	default:
		return sqlsession.Text(raw), nil
	}
}
