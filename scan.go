package sqlfrag

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const planCacheSize = 1024 // Bound for cached column plans

var scannerIface = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
var plans = &planCache{m: make(map[planKey][][]int)}

// planKey identifies a column plan by destination struct type and the column
// signature.
type planKey struct {
	t   reflect.Type
	sig string
}

// planCache stores column plans: for each result column, the field index path
// in the destination struct, or nil when the column is discarded.
type planCache struct {
	mu sync.RWMutex
	m  map[planKey][][]int
}

// QueryOne runs query and scans exactly one row into dest.
// It returns sql.ErrNoRows if no rows are returned and ErrMoreThanOneRow if
// more than one is.
func QueryOne(ctx context.Context, db Queryer, dest any, query string, args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return ScanOne(rows, dest)
}

// QueryAll runs query and scans all rows into the slice dest points to.
func QueryAll(ctx context.Context, db Queryer, dest any, query string, args ...any) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return ScanAll(rows, dest)
}

// ScanOne scans the only row of rows into dest. dest is a pointer to a
// struct (mapped by `db` tag or field name), or to a single-column value.
func ScanOne(rows *sql.Rows, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("sqlfrag: dest must be a non-nil pointer")
	}
	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := scanRow(rows, cols, rv.Elem()); err != nil {
		return err
	}
	if rows.Next() {
		return ErrMoreThanOneRow
	}
	return rows.Err()
}

// ScanAll scans every row of rows into the slice dest points to. Elements may
// be structs, pointers to structs, or single-column values. The slice is
// truncated first.
func ScanAll(rows *sql.Rows, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("sqlfrag: ScanAll requires a non-nil pointer to slice")
	}
	slice := rv.Elem()
	slice.Set(slice.Slice(0, 0))

	cols, err := rows.Columns()
	if err != nil {
		return err
	}

	elemT := slice.Type().Elem()
	isPtr := elemT.Kind() == reflect.Pointer
	if isPtr {
		elemT = elemT.Elem()
	}

	for rows.Next() {
		item := reflect.New(elemT)
		if err := scanRow(rows, cols, item.Elem()); err != nil {
			return err
		}
		if isPtr {
			slice.Set(reflect.Append(slice, item))
		} else {
			slice.Set(reflect.Append(slice, item.Elem()))
		}
	}
	return rows.Err()
}

// scanRow scans the current row into dst, which must be addressable.
func scanRow(rows *sql.Rows, cols []string, dst reflect.Value) error {
	if dst.Kind() != reflect.Struct || reflect.PointerTo(dst.Type()).Implements(scannerIface) {
		if len(cols) != 1 {
			return fmt.Errorf("sqlfrag: scan into %s requires 1 column, got %d", dst.Type(), len(cols))
		}
		return rows.Scan(dst.Addr().Interface())
	}

	plan := columnPlan(cols, dst.Type())
	targets := make([]any, len(cols))
	for i, path := range plan {
		if path == nil {
			targets[i] = new(any)
			continue
		}
		targets[i] = dst.FieldByIndex(path).Addr().Interface()
	}
	return rows.Scan(targets...)
}

// columnPlan returns, for each column, the index path of the struct field it
// scans into. Columns with no matching field get a nil path.
func columnPlan(cols []string, t reflect.Type) [][]int {
	key := planKey{t: t, sig: strings.Join(cols, "\x1f")}

	plans.mu.RLock()
	plan, ok := plans.m[key]
	plans.mu.RUnlock()
	if ok {
		return plan
	}

	fields := fieldPaths(t, nil, make(map[string][]int, t.NumField()))
	plan = make([][]int, len(cols))
	for i, c := range cols {
		plan[i] = fields[c]
	}

	plans.mu.Lock()
	if len(plans.m) >= planCacheSize {
		plans.m = make(map[planKey][][]int)
	}
	plans.m[key] = plan
	plans.mu.Unlock()
	return plan
}

// fieldPaths collects the exported fields of t by column name, descending
// into embedded structs. The first field claiming a name wins.
func fieldPaths(t reflect.Type, path []int, out map[string][]int) map[string][]int {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		idx := append(append([]int(nil), path...), i)
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct &&
			!reflect.PointerTo(f.Type).Implements(scannerIface) {
			fieldPaths(f.Type, idx, out)
			continue
		}
		name := f.Name
		if n, _, _ := strings.Cut(tag, ","); n != "" {
			name = n
		}
		if _, taken := out[name]; !taken {
			out[name] = idx
		}
	}
	return out
}
