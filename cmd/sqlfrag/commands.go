package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gandaldf/sqlfrag"
	"github.com/gandaldf/sqlfrag/internal/config"
	"github.com/gandaldf/sqlfrag/internal/jobly"
	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	dir     string
	dialect string
	entity  string
	debug   bool
}

var (
	clauseColor = color.New(color.FgCyan, color.Bold)
	argColor    = color.New(color.FgYellow)
	noteColor   = color.New(color.Faint)
)

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "sqlfrag",
		Short:         "Render parameterized SQL fragments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dir, "config-dir", ".", "directory holding .sqlfrag.yaml and .env")
	root.PersistentFlags().StringVar(&opts.dialect, "dialect", "", "SQL dialect (postgres, mysql, sqlite, sqlserver)")
	root.PersistentFlags().StringVarP(&opts.entity, "entity", "e", "jobs", "target table (jobs, companies, users)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log statements to stderr")

	root.AddCommand(newSetCmd(opts), newWhereCmd(opts), newFindCmd(opts))
	return root
}

func newSetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set key=value...",
		Short: "Print the SET column list for a partial update",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			fields, err := parseFields(args)
			if err != nil {
				return err
			}
			set, err := sqlfrag.New(cfg.Dialect).SetColumns(fields, jobly.Columns(opts.entity))
			if err != nil {
				return err
			}
			printFragment(cmd.OutOrStdout(), set.Clause, set.Args)
			return nil
		},
	}
}

func newWhereCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "where [key=value...]",
		Short: "Print the WHERE clause for search criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			filter := jobly.Filters(opts.entity)
			if filter == nil {
				return fmt.Errorf("no filters defined for %q", opts.entity)
			}
			criteria, err := parseCriteria(args)
			if err != nil {
				return err
			}
			where := sqlfrag.New(cfg.Dialect).Where(filter, criteria)
			if where.Empty() {
				noteColor.Fprintln(cmd.OutOrStdout(), "(no WHERE clause)")
				return nil
			}
			printFragment(cmd.OutOrStdout(), where.Where(), where.Args)
			return nil
		},
	}
}

func newFindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "find [key=value...]",
		Short: "Search jobs or companies in the configured PostgreSQL database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("database_url is not configured")
			}
			criteria, err := parseCriteria(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := jobly.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			store := jobly.NewStore(db, jobly.WithLogger(newLogger(cfg.Debug)))
			out := cmd.OutOrStdout()
			switch opts.entity {
			case "jobs":
				jobs, err := store.FindJobs(ctx, criteria)
				if err != nil {
					return err
				}
				for _, j := range jobs {
					fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", j.ID, j.Title, j.Equity.String(), j.CompanyHandle)
				}
			case "companies":
				companies, err := store.FindCompanies(ctx, criteria)
				if err != nil {
					return err
				}
				for _, c := range companies {
					fmt.Fprintf(out, "%s\t%s\n", c.Handle, c.Name)
				}
			default:
				return fmt.Errorf("no filters defined for %q", opts.entity)
			}
			return nil
		},
	}
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.dir)
	if err != nil {
		return nil, err
	}
	if opts.dialect != "" {
		if cfg.Dialect, err = sqlfrag.ParseDialect(opts.dialect); err != nil {
			return nil, err
		}
	}
	cfg.Debug = cfg.Debug || opts.debug
	return cfg, nil
}

func newLogger(debug bool) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// parseFields turns key=value arguments into fields, keeping argument order.
func parseFields(args []string) (sqlfrag.Fields, error) {
	fields := make(sqlfrag.Fields, 0, len(args))
	for _, a := range args {
		k, v, err := splitPair(a)
		if err != nil {
			return nil, err
		}
		fields = fields.Add(k, v)
	}
	return fields, nil
}

// parseCriteria turns key=value arguments into criteria, keeping argument order.
func parseCriteria(args []string) (sqlfrag.Criteria, error) {
	criteria := make(sqlfrag.Criteria, 0, len(args))
	for _, a := range args {
		k, v, err := splitPair(a)
		if err != nil {
			return nil, err
		}
		criteria = criteria.Add(k, v)
	}
	return criteria, nil
}

func splitPair(arg string) (string, string, error) {
	k, v, ok := strings.Cut(arg, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("%w: expected key=value, got %q", sqlfrag.ErrPairs, arg)
	}
	return k, v, nil
}

func printFragment(w io.Writer, clause string, args []any) {
	clauseColor.Fprintln(w, clause)
	for i, a := range args {
		argColor.Fprintf(w, "  %d: %#v\n", i+1, a)
	}
}
