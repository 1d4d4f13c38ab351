package store

import (
	"testing"

	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

func TestSqlInsertTxtBatch(t *testing.T) {
	log := logger.NewLogger("stageload", "debug", true)

	// Test 1, batch fills and rejects further rows.
	log.Info("Test 1, batch INSERT generator tracks a full batch...")
	o, err := NewInsertGenerator(log, "t2", []string{"a", "b", "c"}, BindDollar)
	if err != nil {
		t.Fatal("Test 1, unexpected error: ", err)
	}
	o.InitBatch(2)
	if _, err = o.AddValuesToBatch([]interface{}{"x", "y", 123}); err != nil {
		t.Fatal("Test 1, first row should succeed: ", err)
	}
	full, err := o.AddValuesToBatch([]interface{}{"p", "q", 2})
	if err != nil {
		t.Fatal("Test 1, second row should succeed: ", err)
	}
	if !full {
		t.Fatal("Test 1, the batch should be full but it is not")
	}
	if _, err = o.AddValuesToBatch([]interface{}{"p", "q", 2}); err == nil {
		t.Fatal("Test 1, expected error adding to a full batch")
	}
	expected := `insert into t2 (a,b,c) values ( $1,$2,$3 ),( $4,$5,$6 )`
	if got := o.GetStatement(); got != expected {
		t.Fatalf("Test 1, expected %q; got %q", expected, got)
	}
	if len(o.GetValues()) != 6 {
		t.Fatal("Test 1, expected 6 values; got ", len(o.GetValues()))
	}

	// Test 2, wrong number of values.
	log.Info("Test 2, mismatched value count is rejected...")
	o.InitBatch(1)
	if _, err = o.AddValuesToBatch([]interface{}{"a", "b", 456, 789}); err == nil {
		t.Fatal("Test 2, expected error for incorrect number of values")
	}

	// Test 3, statement is regenerated for a smaller batch.
	log.Info("Test 3, statement changes with the number of rows...")
	o.InitBatch(1)
	_, _ = o.AddValuesToBatch([]interface{}{"a", "b", 456})
	expected = `insert into t2 (a,b,c) values ( $1,$2,$3 )`
	if got := o.GetStatement(); got != expected {
		t.Fatalf("Test 3, expected %q; got %q", expected, got)
	}

	// Test 4, bad identifiers.
	log.Info("Test 4, unsafe identifiers are rejected...")
	if _, err = NewInsertGenerator(log, "t; drop table x", []string{"a"}, BindDollar); err == nil {
		t.Fatal("Test 4, expected error for bad table name")
	}
	if _, err = NewInsertGenerator(log, "t", []string{"a b"}, BindDollar); err == nil {
		t.Fatal("Test 4, expected error for bad column name")
	}
	if _, err = NewInsertGenerator(log, "t", nil, BindDollar); err == nil {
		t.Fatal("Test 4, expected error for zero columns")
	}
	log.Info("Test 4, complete")
}

func TestBuildInsert(t *testing.T) {
	log := logger.NewLogger("stageload", "info", true)
	rows := []map[string]interface{}{
		{"a": 1, "b": "x"},
		{"a": 2}, // b is missing and should be bound as nil.
	}
	cases := []struct {
		style    BindStyle
		expected string
	}{
		{BindDollar, `insert into s.t (a,b) values ( $1,$2 ),( $3,$4 )`},
		{BindAtP, `insert into s.t (a,b) values ( @p1,@p2 ),( @p3,@p4 )`},
		{BindQuestion, `insert into s.t (a,b) values ( ?,? ),( ?,? )`},
	}
	for idx, c := range cases {
		stmt, args, err := BuildInsert(log, "s.t", []string{"a", "b"}, c.style, rows)
		if err != nil {
			t.Fatalf("Test %v, unexpected error: %v", idx+1, err)
		}
		if stmt != c.expected {
			t.Fatalf("Test %v, expected %q; got %q", idx+1, c.expected, stmt)
		}
		if len(args) != 4 || args[0] != 1 || args[1] != "x" || args[2] != 2 || args[3] != nil {
			t.Fatalf("Test %v, unexpected args: %v", idx+1, args)
		}
	}
	if _, _, err := BuildInsert(log, "t", []string{"a"}, BindDollar, nil); err == nil {
		t.Fatal("expected error for zero rows")
	}
}

func TestCheckBindVarLimit(t *testing.T) {
	cases := []struct {
		storeType string
		batchSize int
		numCols   int
		ok        bool
	}{
		{constants.ConnectionTypeSqlServer, 262, 8, true},
		{constants.ConnectionTypeSqlServer, 263, 8, false},
		{constants.ConnectionTypePostgres, 8191, 8, true},
		{constants.ConnectionTypePostgres, 10000, 8, false},
		{constants.ConnectionTypeSnowflake, 100000, 8, true},
		{constants.ConnectionTypeSupabase, 100000, 8, true},
	}
	for idx, c := range cases {
		err := CheckBindVarLimit(c.storeType, c.batchSize, c.numCols)
		if (err == nil) != c.ok {
			t.Fatalf("Test %v, %v batch %v x %v cols: unexpected result %v", idx+1, c.storeType, c.batchSize, c.numCols, err)
		}
	}
}
