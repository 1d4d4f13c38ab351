package components

import (
	"testing"

	"github.com/relloyd/stageload/stream"
)

func makeRows(n int) []stream.Record {
	rows := make([]stream.Record, n)
	for idx := range rows {
		rows[idx] = stream.NewRecordFromMap(map[string]interface{}{"n": idx})
	}
	return rows
}

func TestSplitBatches(t *testing.T) {
	cases := []struct {
		rows     int
		size     int
		expected []int // rows per batch
	}{
		{250, 100, []int{100, 100, 50}},
		{200, 100, []int{100, 100}},
		{1, 50, []int{1}},
		{0, 100, []int{}},
		{7, 1, []int{1, 1, 1, 1, 1, 1, 1}},
	}
	for idx, c := range cases {
		rows := makeRows(c.rows)
		batches, err := SplitBatches(rows, c.size)
		if err != nil {
			t.Fatalf("Test %v, unexpected error: %v", idx+1, err)
		}
		if len(batches) != len(c.expected) {
			t.Fatalf("Test %v, expected %v batches; got %v", idx+1, len(c.expected), len(batches))
		}
		next := 0
		for bIdx, b := range batches {
			if b.Index != bIdx+1 || b.Start != next || len(b.Rows) != c.expected[bIdx] || b.End-b.Start != len(b.Rows) {
				t.Fatalf("Test %v, unexpected batch %+v", idx+1, b)
			}
			for rIdx, r := range b.Rows { // rows keep their order.
				if r.GetData("n") != b.Start+rIdx {
					t.Fatalf("Test %v, batch %v row %v out of order", idx+1, b.Index, rIdx)
				}
			}
			next = b.End
		}
		if next != c.rows {
			t.Fatalf("Test %v, batches cover %v rows; expected %v", idx+1, next, c.rows)
		}
	}
	// Batch size must be positive.
	for _, size := range []int{0, -1} {
		if _, err := SplitBatches(makeRows(3), size); err == nil {
			t.Fatalf("expected error for batch size %v", size)
		}
	}
	b := Batch{Index: 2, Start: 100, End: 200}
	if b.FirstRow() != 101 || b.LastRow() != 200 {
		t.Fatal("unexpected 1-based row range ", b.FirstRow(), "-", b.LastRow())
	}
}
