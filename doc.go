// Package sqlfrag renders the variable parts of otherwise fixed SQL statements: the column list of a partial UPDATE and the WHERE clause of a filtered search. Values always travel as positional parameters, never as SQL text, and placeholder ordinals always match the order of the returned values.
//
//	set, err := sqlfrag.SetColumns(sqlfrag.Fields{{"firstName", "Aliya"}, {"age", 32}}, map[string]string{"firstName": "first_name"})
//	// set.Clause: "first_name"=$1, "age"=$2
//
//	jobs := sqlfrag.MustFilter("jobs", sqlfrag.Table{
//		"title":     {Kind: sqlfrag.Contains, Column: "title"},
//		"minSalary": {Kind: sqlfrag.AtLeast, Column: "salary"},
//		"hasEquity": {Kind: sqlfrag.Flag, Column: "equity", WhenTrue: "!= 0", WhenFalse: "= 0"},
//	})
//	where := jobs.Compile(sqlfrag.Criteria{{"title", "dev"}, {"hasEquity", "true"}})
//	// where.Clause: "title" ILIKE $1 AND "equity" != 0
//
// Criteria keys missing from a filter's table are ignored, so callers may pass every filter they received and let each entity pick its own.
package sqlfrag
