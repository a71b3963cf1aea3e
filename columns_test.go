package sqlfrag

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
)

// TestSetColumns_NoNameTable keeps logical names as column names.
func TestSetColumns_NoNameTable(t *testing.T) {
	set, err := SetColumns(Fields{{"name", "Bob"}, {"age", 40}}, map[string]string{})
	assertNoError(t, err)

	if want := `"name"=$1, "age"=$2`; set.Clause != want {
		t.Fatalf("clause = %q, want %q", set.Clause, want)
	}
	assertArgsEqual(t, set.Args, []any{"Bob", 40})
}

// TestSetColumns_NameTable translates only the names present in the table.
func TestSetColumns_NameTable(t *testing.T) {
	set, err := SetColumns(Fields{{"firstName", "Bob"}, {"age", 40}}, map[string]string{"firstName": "first_name"})
	assertNoError(t, err)

	if want := `"first_name"=$1, "age"=$2`; set.Clause != want {
		t.Fatalf("clause = %q, want %q", set.Clause, want)
	}
	assertArgsEqual(t, set.Args, []any{"Bob", 40})
}

// TestSetColumns_NilNameTable behaves like an identity table; an empty
// translation is treated as missing.
func TestSetColumns_NilNameTable(t *testing.T) {
	set, err := SetColumns(Fields{{"user", "x"}}, nil)
	assertNoError(t, err)
	if want := `"user"=$1`; set.Clause != want {
		t.Fatalf("clause = %q, want %q", set.Clause, want)
	}

	set, err = SetColumns(Fields{{"user", "x"}}, map[string]string{"user": ""})
	assertNoError(t, err)
	if want := `"user"=$1`; set.Clause != want {
		t.Fatalf("clause = %q, want %q", set.Clause, want)
	}
}

// TestSetColumns_Empty rejects an empty field list with ErrEmptyInput.
func TestSetColumns_Empty(t *testing.T) {
	for _, fs := range []Fields{nil, {}} {
		set, err := SetColumns(fs, nil)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
		if !set.Empty() || set.Args != nil {
			t.Fatalf("expected zero fragment on error, got %#v", set)
		}
	}
}

// TestSetColumns_MaxParams rejects more fields than the generator allows,
// for every dialect, and accepts exactly the limit.
func TestSetColumns_MaxParams(t *testing.T) {
	fs := Fields{{"a", 1}, {"b", 2}, {"c", 3}}
	for _, d := range dialects {
		set, err := New(d, Config{MaxParams: 2}).SetColumns(fs, nil)
		if !errors.Is(err, ErrTooManyParams) {
			t.Fatalf("%s: expected ErrTooManyParams, got %v", d, err)
		}
		if !set.Empty() {
			t.Fatalf("%s: expected zero fragment on error, got %#v", d, set)
		}

		set, err = New(d, Config{MaxParams: 3}).SetColumns(fs, nil)
		assertNoError(t, err)
		if got := countPlaceholders(set.Clause, d); got != 3 {
			t.Fatalf("%s: placeholders=%d, want 3", d, got)
		}
	}
}

// TestSetColumns_ValuesUnmodified passes values through without coercion,
// including nil and byte slices.
func TestSetColumns_ValuesUnmodified(t *testing.T) {
	blob := []byte{0, 1, 2}
	set, err := SetColumns(Fields{{"a", nil}, {"b", blob}, {"c", "75000"}, {"d", 1.5}}, nil)
	assertNoError(t, err)
	assertArgsEqual(t, set.Args, []any{nil, blob, "75000", 1.5})
}

// TestSetColumns_CountInvariant checks, for growing inputs and all dialects,
// that placeholder count equals value count and Postgres ordinals run 1..n.
func TestSetColumns_CountInvariant(t *testing.T) {
	for _, d := range dialects {
		t.Run(d.String(), func(t *testing.T) {
			g := New(d)
			var fs Fields
			for n := 1; n <= 25; n++ {
				fs = fs.Add(fmt.Sprintf("c%d", n), n)
				set, err := g.SetColumns(fs, nil)
				assertNoError(t, err)
				if got := countPlaceholders(set.Clause, d); got != len(set.Args) || got != n {
					t.Fatalf("n=%d placeholders=%d args=%d\n%s", n, got, len(set.Args), set.Clause)
				}
				if d != Postgres {
					continue
				}
				for i, o := range ordinals(set.Clause) {
					if o != strconv.Itoa(i+1) {
						t.Fatalf("n=%d: ordinal #%d = $%s\n%s", n, i+1, o, set.Clause)
					}
				}
			}
		})
	}
}

// TestSetColumns_Dialects checks identifier quoting and placeholders.
func TestSetColumns_Dialects(t *testing.T) {
	fs := Fields{{"logoUrl", "http://x"}, {"name", "X"}}
	names := map[string]string{"logoUrl": "logo_url"}
	want := map[Dialect]string{
		Postgres:  `"logo_url"=$1, "name"=$2`,
		MySQL:     "`logo_url`=?, `name`=?",
		SQLite:    `"logo_url"=?, "name"=?`,
		SQLServer: `[logo_url]=@p1, [name]=@p2`,
	}
	for _, d := range dialects {
		set, err := New(d).SetColumns(fs, names)
		assertNoError(t, err)
		if set.Clause != want[d] {
			t.Fatalf("%s: clause = %q, want %q", d, set.Clause, want[d])
		}
	}
}

// TestSetColumns_Idempotent repeats the same call, also concurrently, and
// expects identical output every time.
func TestSetColumns_Idempotent(t *testing.T) {
	fs := Fields{{"firstName", "Bob"}, {"age", 40}, {"isAdmin", true}}
	names := map[string]string{"firstName": "first_name", "isAdmin": "is_admin"}
	first, err := SetColumns(fs, names)
	assertNoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := SetColumns(fs, names)
			if err != nil || got.Clause != first.Clause || len(got.Args) != len(first.Args) {
				errs <- fmt.Sprintf("got %q %v (err=%v)", got.Clause, got.Args, err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}

// TestPairs builds fields from k/v arguments and rejects malformed input.
func TestPairs(t *testing.T) {
	fs, err := Pairs("firstName", "Bob", "age", 40)
	assertNoError(t, err)
	if len(fs) != 2 || fs[0] != (Field{"firstName", "Bob"}) || fs[1] != (Field{"age", 40}) {
		t.Fatalf("unexpected fields: %#v", fs)
	}
	if got := fs.Names(); len(got) != 2 || got[0] != "firstName" || got[1] != "age" {
		t.Fatalf("Names() = %v", got)
	}

	for _, bad := range [][]any{{"a"}, {1, "x"}, {"", "x"}, {"a", 1, "b"}} {
		if _, err := Pairs(bad...); !errors.Is(err, ErrPairs) {
			t.Fatalf("Pairs(%v): expected ErrPairs, got %v", bad, err)
		}
	}
}
