package sqlfrag

import "testing"

// TestUpdate appends the key placeholder right after the SET values.
func TestUpdate(t *testing.T) {
	set, err := SetColumns(Fields{{"title", "New"}, {"salary", 10}}, nil)
	assertNoError(t, err)

	q, args := Update("jobs", set, "id", 7)
	if want := `UPDATE "jobs" SET "title"=$1, "salary"=$2 WHERE "id" = $3`; q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
	assertArgsEqual(t, args, []any{"New", 10, 7})
	if len(set.Args) != 2 {
		t.Fatalf("Update must not modify the SET fragment args: %v", set.Args)
	}
}

// TestUpdate_Dialects checks placeholder counts match args everywhere.
func TestUpdate_Dialects(t *testing.T) {
	for _, d := range dialects {
		g := New(d)
		set, err := g.SetColumns(Fields{{"a", 1}, {"b", 2}, {"c", 3}}, nil)
		assertNoError(t, err)
		q, args := g.Update("t", set, "id", 9)
		if got := countPlaceholders(q, d); got != len(args) || got != 4 {
			t.Fatalf("%s: placeholders=%d args=%d\n%s", d, got, len(args), q)
		}
	}
	q, _ := New(SQLServer).Update("t", Fragment{Clause: "[a]=@p1", Args: []any{1}}, "id", 2)
	if want := `UPDATE [t] SET [a]=@p1 WHERE [id] = @p2`; q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
}

// TestSelect omits WHERE when the fragment is empty.
func TestSelect(t *testing.T) {
	head := "SELECT id, title FROM jobs"
	tail := "ORDER BY title"

	if got, want := Select(head, Fragment{}, tail), "SELECT id, title FROM jobs ORDER BY title"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	where := testJobs.Compile(Criteria{{"title", "2"}, {"hasEquity", "true"}})
	got := Select("\n  "+head+"\n", where, tail)
	if want := `SELECT id, title FROM jobs WHERE "title" ILIKE $1 AND "equity" != 0 ORDER BY title`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if got, want := Select(head, Fragment{}, ""), head; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
