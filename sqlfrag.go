package sqlfrag

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Dialect identifies the SQL dialect for placeholder rendering and identifier
// quoting.
type Dialect int

// Generator renders SET and WHERE fragments for one dialect.
// A single Generator is safe for concurrent use: it only pools scratch
// buffers, every returned Fragment is freshly allocated.
type Generator struct {
	dialect Dialect
	config  Config
	pool    sync.Pool
}

// Config holds generator limits.
type Config struct {
	// MaxParams limits the placeholders a single statement may carry.
	// Zero selects the driver limit of the dialect; a negative value
	// disables the check.
	MaxParams int
}

// Fragment is a piece of SQL with positional placeholders and the values
// bound to them. Placeholder ordinal i (1-based) is bound to Args[i-1].
type Fragment struct {
	Clause string
	Args   []any
}

// Execer abstracts *sql.DB / *sql.Tx ExecContext for easy testing.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Queryer abstracts *sql.DB / *sql.Tx QueryContext for easy testing.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const (
	Postgres Dialect = iota
	MySQL
	SQLite
	SQLServer
)

var (
	ErrEmptyInput         = errors.New("sqlfrag: no data")
	ErrMisconfiguredTable = errors.New("sqlfrag: misconfigured predicate table")
	ErrPairs              = errors.New("sqlfrag: malformed key/value pairs")
	ErrUnknownDialect     = errors.New("sqlfrag: unknown dialect")
	ErrMoreThanOneRow     = errors.New("sqlfrag: more than one row")
	ErrTooManyParams      = errors.New("sqlfrag: too many parameters")
)

var std = New(Postgres)

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	case SQLServer:
		return "sqlserver"
	default:
		return "unknown"
	}
}

// ParseDialect returns the Dialect named s, as printed by Dialect.String.
// "postgresql" and "mssql" are accepted as aliases.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, s)
}

// New returns a Generator for the given dialect. An optional Config
// overrides the default limits.
func New(dialect Dialect, cfg ...Config) *Generator {
	g := &Generator{dialect: dialect, config: defaultConfig(dialect, cfg...)}
	g.pool.New = func() any {
		return bytes.NewBuffer(make([]byte, 0, 128))
	}
	return g
}

// Dialect reports the dialect g renders for.
func (g *Generator) Dialect() Dialect {
	return g.dialect
}

// MaxParams reports the placeholder limit in effect, or a negative value
// when there is none.
func (g *Generator) MaxParams() int {
	return g.config.MaxParams
}

// CheckParams fails with ErrTooManyParams when a statement binding n values
// would exceed the generator's limit. Where never fails, so callers that
// splice untrusted criteria check the final argument count here.
func (g *Generator) CheckParams(n int) error {
	if limit := g.config.MaxParams; limit >= 0 && n > limit {
		return fmt.Errorf("%w: requested=%d, limit=%d", ErrTooManyParams, n, limit)
	}
	return nil
}

// Placeholder renders the placeholder token for ordinal n (1-based).
func (g *Generator) Placeholder(n int) string {
	var b bytes.Buffer
	writePlaceholder(&b, g.dialect, n)
	return b.String()
}

// Quote renders name as a delimited identifier.
func (g *Generator) Quote(name string) string {
	var b bytes.Buffer
	writeIdent(&b, g.dialect, name)
	return b.String()
}

// Empty reports whether f carries no clause.
func (f Fragment) Empty() bool {
	return f.Clause == ""
}

// Next returns the ordinal the next placeholder appended after f must use.
func (f Fragment) Next() int {
	return len(f.Args) + 1
}

// Where returns the clause prefixed with the WHERE keyword, or "" when f is
// empty so callers never emit a WHERE without predicates.
func (f Fragment) Where() string {
	if f.Empty() {
		return ""
	}
	return "WHERE " + f.Clause
}

func defaultConfig(dialect Dialect, config ...Config) Config {
	c := Config{}
	if len(config) > 0 {
		c = config[0]
	}
	if c.MaxParams == 0 {
		switch dialect {
		case SQLServer:
			c.MaxParams = 2100
		case SQLite:
			c.MaxParams = 999
		default:
			c.MaxParams = 65535
		}
	}
	return c
}

// getBuf takes a scratch buffer from the pool.
func (g *Generator) getBuf() *bytes.Buffer {
	return g.pool.Get().(*bytes.Buffer)
}

// putBuf resets b and returns it to the pool.
func (g *Generator) putBuf(b *bytes.Buffer) {
	b.Reset()
	g.pool.Put(b)
}
