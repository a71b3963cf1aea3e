package jobly

import "github.com/gandaldf/sqlfrag"

// Recognized search criteria per entity. Keys not listed here are ignored,
// so handlers can forward every query-string filter unchanged.
var (
	JobFilter = sqlfrag.MustFilter("jobs", sqlfrag.Table{
		"title":     {Kind: sqlfrag.Contains, Column: "title"},
		"minSalary": {Kind: sqlfrag.AtLeast, Column: "salary"},
		"hasEquity": {Kind: sqlfrag.Flag, Column: "equity", WhenTrue: "!= 0", WhenFalse: "= 0"},
	})

	CompanyFilter = sqlfrag.MustFilter("companies", sqlfrag.Table{
		"nameLike":     {Kind: sqlfrag.Contains, Column: "name"},
		"minEmployees": {Kind: sqlfrag.AtLeast, Column: "num_employees"},
		"maxEmployees": {Kind: sqlfrag.AtMost, Column: "num_employees"},
	})
)

// Logical field name to column name, per table.
var (
	JobColumns = map[string]string{
		"companyHandle": "company_handle",
	}

	CompanyColumns = map[string]string{
		"numEmployees": "num_employees",
		"logoUrl":      "logo_url",
	}

	UserColumns = map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
		"isAdmin":   "is_admin",
	}
)

// Filters returns the filter for entity, or nil if it has none.
func Filters(entity string) *sqlfrag.Filter {
	switch entity {
	case "jobs":
		return JobFilter
	case "companies":
		return CompanyFilter
	}
	return nil
}

// Columns returns the name table for entity, or nil if it has none.
func Columns(entity string) map[string]string {
	switch entity {
	case "jobs":
		return JobColumns
	case "companies":
		return CompanyColumns
	case "users":
		return UserColumns
	}
	return nil
}
