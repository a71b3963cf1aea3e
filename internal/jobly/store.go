// Package jobly is the data-access layer for the jobs board tables. It
// combines fixed statements with the fragments rendered by sqlfrag.
package jobly

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gandaldf/sqlfrag"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("jobly: not found")

// DB is what the store needs from *sql.DB or *sql.Tx.
type DB interface {
	sqlfrag.Queryer
	sqlfrag.Execer
}

// Job is a row of the jobs table.
type Job struct {
	ID            int             `db:"id"`
	Title         string          `db:"title"`
	Salary        *int            `db:"salary"`
	Equity        decimal.Decimal `db:"equity"`
	CompanyHandle string          `db:"companyHandle"`
}

// Company is a row of the companies table.
type Company struct {
	Handle       string  `db:"handle"`
	Name         string  `db:"name"`
	Description  string  `db:"description"`
	NumEmployees *int    `db:"numEmployees"`
	LogoURL      *string `db:"logoUrl"`
}

// User is a row of the users table, without the password hash.
type User struct {
	Username  string `db:"username"`
	FirstName string `db:"firstName"`
	LastName  string `db:"lastName"`
	Email     string `db:"email"`
	IsAdmin   bool   `db:"isAdmin"`
}

// Store runs the jobs board queries.
type Store struct {
	db  DB
	gen *sqlfrag.Generator
	log *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

const (
	jobColumns     = `id, title, salary, equity, company_handle AS "companyHandle"`
	companyColumns = `handle, name, description, num_employees AS "numEmployees", logo_url AS "logoUrl"`
	userColumns    = `username, first_name AS "firstName", last_name AS "lastName", email, is_admin AS "isAdmin"`
)

// WithLogger sets the logger used for statement tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open connects to a PostgreSQL database and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("jobly: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("jobly: ping: %w", err)
	}
	return db, nil
}

// WithGenerator replaces the PostgreSQL generator, for instance to lower the
// parameter limit.
func WithGenerator(g *sqlfrag.Generator) Option {
	return func(s *Store) {
		if g != nil {
			s.gen = g
		}
	}
}

// NewStore returns a Store issuing PostgreSQL statements on db.
func NewStore(db DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		gen: sqlfrag.New(sqlfrag.Postgres),
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindJobs returns the jobs matching criteria, ordered by title.
// Recognized criteria are title, minSalary and hasEquity.
func (s *Store) FindJobs(ctx context.Context, criteria sqlfrag.Criteria) ([]Job, error) {
	where := s.gen.Where(JobFilter, criteria)
	if err := s.gen.CheckParams(len(where.Args)); err != nil {
		return nil, err
	}
	q := s.gen.Select("SELECT "+jobColumns+" FROM jobs", where, "ORDER BY title")

	var jobs []Job
	if err := s.queryAll(ctx, &jobs, q, where.Args); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob returns the job with the given id.
func (s *Store) GetJob(ctx context.Context, id int) (Job, error) {
	var job Job
	q := "SELECT " + jobColumns + " FROM jobs WHERE id = $1"
	if err := s.queryOne(ctx, &job, q, []any{id}); err != nil {
		return Job{}, notFound(err, "job", id)
	}
	return job, nil
}

// UpdateJob applies a partial update to a job and returns the new row.
// Fields can include title, salary and equity.
func (s *Store) UpdateJob(ctx context.Context, id int, fields sqlfrag.Fields) (Job, error) {
	var job Job
	if err := s.update(ctx, &job, "jobs", "id", id, fields, JobColumns, jobColumns); err != nil {
		return Job{}, notFound(err, "job", id)
	}
	return job, nil
}

// RemoveJob deletes a job.
func (s *Store) RemoveJob(ctx context.Context, id int) error {
	q := "DELETE FROM jobs WHERE id = $1"
	s.trace(q, 1)
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: job %d", ErrNotFound, id)
	}
	return nil
}

// FindCompanies returns the companies matching criteria, ordered by name.
// Recognized criteria are nameLike, minEmployees and maxEmployees.
func (s *Store) FindCompanies(ctx context.Context, criteria sqlfrag.Criteria) ([]Company, error) {
	where := s.gen.Where(CompanyFilter, criteria)
	if err := s.gen.CheckParams(len(where.Args)); err != nil {
		return nil, err
	}
	q := s.gen.Select("SELECT "+companyColumns+" FROM companies", where, "ORDER BY name")

	var companies []Company
	if err := s.queryAll(ctx, &companies, q, where.Args); err != nil {
		return nil, err
	}
	return companies, nil
}

// UpdateCompany applies a partial update to a company and returns the new row.
func (s *Store) UpdateCompany(ctx context.Context, handle string, fields sqlfrag.Fields) (Company, error) {
	var c Company
	if err := s.update(ctx, &c, "companies", "handle", handle, fields, CompanyColumns, companyColumns); err != nil {
		return Company{}, notFound(err, "company", handle)
	}
	return c, nil
}

// UpdateUser applies a partial update to a user and returns the new row.
// Password changes are hashed by the caller before they get here.
func (s *Store) UpdateUser(ctx context.Context, username string, fields sqlfrag.Fields) (User, error) {
	var u User
	if err := s.update(ctx, &u, "users", "username", username, fields, UserColumns, userColumns); err != nil {
		return User{}, notFound(err, "user", username)
	}
	return u, nil
}

// update runs UPDATE table SET ... WHERE key = id RETURNING returning.
func (s *Store) update(ctx context.Context, dest any, table, key string, id any, fields sqlfrag.Fields, names map[string]string, returning string) error {
	set, err := s.gen.SetColumns(fields, names)
	if err != nil {
		return err
	}
	q, args := s.gen.Update(table, set, key, id)
	if err := s.gen.CheckParams(len(args)); err != nil {
		return err
	}
	return s.queryOne(ctx, dest, q+" RETURNING "+returning, args)
}

func (s *Store) queryOne(ctx context.Context, dest any, q string, args []any) error {
	s.trace(q, len(args))
	return sqlfrag.QueryOne(ctx, s.db, dest, q, args...)
}

func (s *Store) queryAll(ctx context.Context, dest any, q string, args []any) error {
	s.trace(q, len(args))
	return sqlfrag.QueryAll(ctx, s.db, dest, q, args...)
}

func (s *Store) trace(q string, nargs int) {
	s.log.Debug("jobly: query", "sql", q, "args", nargs)
}

// notFound maps sql.ErrNoRows to ErrNotFound for the given entity.
func notFound(err error, entity string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
	}
	return err
}
