package sqlfrag

import "fmt"

// Field is a single logical field name and the value to store in it.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered list of fields. Slice order decides placeholder order.
type Fields []Field

// Add appends a field and returns the extended list.
func (fs Fields) Add(name string, value any) Fields {
	return append(fs, Field{Name: name, Value: value})
}

// Names returns the logical names in order.
func (fs Fields) Names() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

// SetColumns renders fields as a SET clause using the default Postgres
// generator. See Generator.SetColumns.
func SetColumns(fields Fields, names map[string]string) (Fragment, error) {
	return std.SetColumns(fields, names)
}

// SetColumns renders fields as the column list of a SET clause:
//
//	Fields{{"firstName", "Aliya"}, {"age", 32}}, {"firstName": "first_name"}
//	=> `"first_name"=$1, "age"=$2`, ["Aliya", 32]
//
// names translates logical names to column names; a missing entry keeps the
// logical name. Values are passed through unmodified.
// An empty fields list fails with ErrEmptyInput, more fields than the
// generator's MaxParams with ErrTooManyParams.
func (g *Generator) SetColumns(fields Fields, names map[string]string) (Fragment, error) {
	if len(fields) == 0 {
		return Fragment{}, fmt.Errorf("%w: nothing to update", ErrEmptyInput)
	}
	if err := g.CheckParams(len(fields)); err != nil {
		return Fragment{}, err
	}

	buf := g.getBuf()
	defer g.putBuf(buf)

	args := make([]any, 0, len(fields))
	for i, f := range fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		col := f.Name
		if mapped := names[f.Name]; mapped != "" {
			col = mapped
		}
		writeIdent(buf, g.dialect, col)
		buf.WriteByte('=')
		writePlaceholder(buf, g.dialect, i+1)
		args = append(args, f.Value)
	}

	return Fragment{Clause: buf.String(), Args: args}, nil
}
