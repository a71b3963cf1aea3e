package sqlfrag

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// likeEscaper makes LIKE wildcards in a user value match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// writePlaceholder emits a dialect-specific placeholder token for argument idx.
func writePlaceholder(b *bytes.Buffer, d Dialect, idx int) {
	var tmp [20]byte
	switch d {
	case Postgres:
		b.WriteByte('$')
		b.Write(strconv.AppendInt(tmp[:0], int64(idx), 10))
	case SQLServer:
		b.WriteString("@p")
		b.Write(strconv.AppendInt(tmp[:0], int64(idx), 10))
	default: // MySQL, SQLite
		b.WriteByte('?')
	}
}

// writeIdent emits name wrapped in the dialect's identifier delimiters.
// The name is not escaped: callers only pass names from a fixed allowlist.
func writeIdent(b *bytes.Buffer, d Dialect, name string) {
	switch d {
	case MySQL:
		b.WriteByte('`')
		b.WriteString(name)
		b.WriteByte('`')
	case SQLServer:
		b.WriteByte('[')
		b.WriteString(name)
		b.WriteByte(']')
	default: // Postgres, SQLite
		b.WriteByte('"')
		b.WriteString(name)
		b.WriteByte('"')
	}
}

// containsPattern wraps v in LIKE wildcards after escaping the wildcards it
// already contains.
func containsPattern(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return "%" + likeEscaper.Replace(s) + "%"
}

// Pairs builds Fields from alternating key/value arguments:
//
//	sqlfrag.Pairs("firstName", "Bob", "age", 40)
//
// Keys must be non-empty strings and the argument count must be even.
func Pairs(kv ...any) (Fields, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("%w: expects even number of args (key,value,...), got %d", ErrPairs, len(kv))
	}
	fields := make(Fields, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: key at position %d must be a non-empty string (got %T)", ErrPairs, i, kv[i])
		}
		fields = append(fields, Field{Name: k, Value: kv[i+1]})
	}
	return fields, nil
}
