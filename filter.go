package sqlfrag

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Kind selects how a recognized criterion becomes a predicate.
type Kind uint8

const (
	kindInvalid Kind = iota
	Contains         // case-insensitive substring match, one value; % _ and \ in it match literally
	AtLeast          // column >= value
	AtMost           // column <= value
	Equals           // column = value
	Flag             // column plus a fixed suffix picked by truthiness, no value
)

// Predicate describes the predicate emitted for one recognized criterion key.
// Contains, AtLeast, AtMost and Equals compare Column against the criterion
// value. Contains wraps the value in % wildcards after escaping any % _ or \
// it already holds, so user input is always matched as a plain substring.
// Flag emits the quoted Column followed by WhenTrue or WhenFalse, which are
// operator suffixes such as "!= 0" and "= 0".
type Predicate struct {
	Kind      Kind
	Column    string
	WhenTrue  string
	WhenFalse string
}

// Table maps criterion keys to predicates for one entity.
// Keys that are not in the table are ignored by Compile.
type Table map[string]Predicate

// Criterion is a single search criterion as received from the caller.
type Criterion struct {
	Key   string
	Value any
}

// Criteria is an ordered list of criteria. Slice order decides placeholder
// order.
type Criteria []Criterion

// Filter compiles criteria for one entity into a WHERE clause.
// It is immutable after NewFilter and safe for concurrent use.
type Filter struct {
	entity string
	table  Table
}

// render writes one predicate. ph is the ordinal to use when the strategy
// binds a value; it returns the bound value and whether one was bound.
type render func(b *bytes.Buffer, d Dialect, p Predicate, v any, ph int) (any, bool)

// strategy is the per-kind entry of the dispatch table.
type strategy struct {
	arity  int
	render render
}

var strategies = map[Kind]strategy{
	Contains: {1, renderContains},
	AtLeast:  {1, compare(">=")},
	AtMost:   {1, compare("<=")},
	Equals:   {1, compare("=")},
	Flag:     {0, renderFlag},
}

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Contains:
		return "contains"
	case AtLeast:
		return "at-least"
	case AtMost:
		return "at-most"
	case Equals:
		return "equals"
	case Flag:
		return "flag"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Arity reports how many values a predicate of kind k binds, or -1 for an
// unknown kind.
func (k Kind) Arity() int {
	s, ok := strategies[k]
	if !ok {
		return -1
	}
	return s.arity
}

// Add appends a criterion and returns the extended list.
func (c Criteria) Add(key string, value any) Criteria {
	return append(c, Criterion{Key: key, Value: value})
}

// NewFilter validates table and returns a Filter for entity.
// The table is copied; later changes to it have no effect.
// A key without a usable predicate fails with ErrMisconfiguredTable.
func NewFilter(entity string, table Table) (*Filter, error) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	own := make(Table, len(table))
	for _, k := range keys {
		p := table[k]
		if err := validatePredicate(k, p); err != nil {
			return nil, fmt.Errorf("%s: %w", entity, err)
		}
		own[k] = p
	}
	return &Filter{entity: entity, table: own}, nil
}

// MustFilter is like NewFilter but panics on a misconfigured table.
// It is meant for package-level filter definitions.
func MustFilter(entity string, table Table) *Filter {
	f, err := NewFilter(entity, table)
	if err != nil {
		panic(err)
	}
	return f
}

// Entity returns the entity name the filter was built for.
func (f *Filter) Entity() string {
	return f.entity
}

// Recognizes reports whether key has a predicate in the filter's table.
func (f *Filter) Recognizes(key string) bool {
	_, ok := f.table[key]
	return ok
}

// Compile renders criteria with the default Postgres generator.
// See Generator.Where.
func (f *Filter) Compile(criteria Criteria) Fragment {
	return std.Where(f, criteria)
}

// Where renders the recognized criteria as AND-joined predicates.
//
// Criteria are visited in order; unrecognized keys produce nothing.
// Placeholders are numbered from 1 across the values actually bound, so
// predicates that bind nothing never leave gaps. When nothing is recognized,
// or f is nil, the zero Fragment is returned and the caller must omit WHERE.
func (g *Generator) Where(f *Filter, criteria Criteria) Fragment {
	if f == nil {
		return Fragment{}
	}

	buf := g.getBuf()
	defer g.putBuf(buf)

	var args []any
	n := 0
	for _, c := range criteria {
		p, ok := f.table[c.Key]
		if !ok {
			continue
		}
		if n > 0 {
			buf.WriteString(" AND ")
		}
		n++
		if v, bound := strategies[p.Kind].render(buf, g.dialect, p, c.Value, len(args)+1); bound {
			args = append(args, v)
		}
	}

	if n == 0 {
		return Fragment{}
	}
	return Fragment{Clause: buf.String(), Args: args}
}

// validatePredicate checks a single table entry.
func validatePredicate(key string, p Predicate) error {
	if key == "" {
		return fmt.Errorf("%w: empty criterion key", ErrMisconfiguredTable)
	}
	s, ok := strategies[p.Kind]
	if !ok {
		return fmt.Errorf("%w: %q has no strategy for %s", ErrMisconfiguredTable, key, p.Kind)
	}
	if p.Column == "" {
		return fmt.Errorf("%w: %q has no column", ErrMisconfiguredTable, key)
	}
	if s.arity == 0 && (strings.TrimSpace(p.WhenTrue) == "" || strings.TrimSpace(p.WhenFalse) == "") {
		return fmt.Errorf("%w: %q needs both WhenTrue and WhenFalse", ErrMisconfiguredTable, key)
	}
	return nil
}

// renderContains matches case-insensitively. MySQL already escapes LIKE
// patterns with a backslash and reads '\' as an unterminated literal, so the
// ESCAPE clause is only written for SQLite and SQL Server.
func renderContains(b *bytes.Buffer, d Dialect, p Predicate, v any, ph int) (any, bool) {
	if d == Postgres {
		writeIdent(b, d, p.Column)
		b.WriteString(" ILIKE ")
		writePlaceholder(b, d, ph)
		return containsPattern(v), true
	}
	b.WriteString("LOWER(")
	writeIdent(b, d, p.Column)
	b.WriteString(") LIKE LOWER(")
	writePlaceholder(b, d, ph)
	b.WriteByte(')')
	if d != MySQL {
		b.WriteString(` ESCAPE '\'`)
	}
	return containsPattern(v), true
}

func compare(op string) render {
	return func(b *bytes.Buffer, d Dialect, p Predicate, v any, ph int) (any, bool) {
		writeIdent(b, d, p.Column)
		b.WriteByte(' ')
		b.WriteString(op)
		b.WriteByte(' ')
		writePlaceholder(b, d, ph)
		return v, true
	}
}

func renderFlag(b *bytes.Buffer, d Dialect, p Predicate, v any, _ int) (any, bool) {
	writeIdent(b, d, p.Column)
	b.WriteByte(' ')
	if truthy(v) {
		b.WriteString(p.WhenTrue)
	} else {
		b.WriteString(p.WhenFalse)
	}
	return nil, false
}

// truthy reports whether a flag value is set. Only the string "true" and the
// boolean true count; anything else selects the false branch.
func truthy(v any) bool {
	switch x := v.(type) {
	case string:
		return x == "true"
	case bool:
		return x
	default:
		return false
	}
}
