package sqlfrag

import "strings"

// Update renders a single-row UPDATE with the default Postgres generator.
// See Generator.Update.
func Update(table string, set Fragment, key string, id any) (string, []any) {
	return std.Update(table, set, key, id)
}

// Select splices a WHERE fragment between head and tail with the default
// Postgres generator. See Generator.Select.
func Select(head string, where Fragment, tail string) string {
	return std.Select(head, where, tail)
}

// Update renders
//
//	UPDATE "table" SET <set> WHERE "key" = <placeholder set.Next()>
//
// and returns the statement with set.Args followed by id. A RETURNING list or
// other suffix can be appended by the caller.
func (g *Generator) Update(table string, set Fragment, key string, id any) (string, []any) {
	buf := g.getBuf()
	defer g.putBuf(buf)

	buf.WriteString("UPDATE ")
	writeIdent(buf, g.dialect, table)
	buf.WriteString(" SET ")
	buf.WriteString(set.Clause)
	buf.WriteString(" WHERE ")
	writeIdent(buf, g.dialect, key)
	buf.WriteString(" = ")
	writePlaceholder(buf, g.dialect, set.Next())

	args := make([]any, 0, len(set.Args)+1)
	args = append(args, set.Args...)
	args = append(args, id)
	return buf.String(), args
}

// Select joins head, the WHERE clause of where (if any) and tail with single
// spaces. Empty parts are skipped. The bound values are where.Args.
func (g *Generator) Select(head string, where Fragment, tail string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{head, where.Where(), tail} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
