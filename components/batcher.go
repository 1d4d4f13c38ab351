package components

import (
	"fmt"

	"github.com/relloyd/stageload/stream"
)

// Batch is the half-open range [Start, End) of the normalized row set.
type Batch struct {
	Index int // 1-based
	Start int
	End   int
	Rows  []stream.Record
}

// FirstRow is the 1-based number of the first row in the batch.
func (b Batch) FirstRow() int {
	return b.Start + 1
}

// LastRow is the 1-based number of the last row in the batch.
func (b Batch) LastRow() int {
	return b.End
}

// SplitBatches partitions rows into contiguous chunks of batchSize, preserving order.
// The last batch may be smaller. Zero rows gives zero batches.
func SplitBatches(rows []stream.Record, batchSize int) ([]Batch, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1; got %v", batchSize)
	}
	numBatches := (len(rows) + batchSize - 1) / batchSize
	retval := make([]Batch, 0, numBatches)
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		retval = append(retval, Batch{Index: len(retval) + 1, Start: start, End: end, Rows: rows[start:end]})
	}
	return retval, nil
}
