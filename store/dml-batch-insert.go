package store

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

// BindStyle is the placeholder syntax a database driver expects.
type BindStyle int

const (
	BindDollar   BindStyle = iota + 1 // $1, $2 (postgres)
	BindAtP                           // @p1, @p2 (sqlserver)
	BindQuestion                      // ?, ? (snowflake)
)

// Most bind variables a single statement may carry, by store type.
// SQL Server allows 2100 parameters but sp_executesql uses two of them.
var maxBindVars = map[string]int{
	constants.ConnectionTypePostgres:  65535,
	constants.ConnectionTypeSqlServer: 2098,
}

// CheckBindVarLimit returns an error when a batch of batchSize rows with numCols columns needs more
// bind variables than one INSERT against storeType accepts.
func CheckBindVarLimit(storeType string, batchSize int, numCols int) error {
	limit, ok := maxBindVars[storeType]
	if !ok { // if the store has no limit we know of...
		return nil
	}
	if n := batchSize * numCols; n > limit {
		return fmt.Errorf("batch size %v with %v columns needs %v bind variables but %v allows at most %v; use a batch size of %v or less",
			batchSize, numCols, n, storeType, limit, limit/numCols)
	}
	return nil
}

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

// validateIdentifier rejects anything that is not a plain [schema.]name, since identifiers are
// written into SQL text rather than bound.
func validateIdentifier(s string) error {
	if !reIdentifier.MatchString(s) {
		return fmt.Errorf("invalid identifier %q", s)
	}
	return nil
}

// SqlInsertTxtBatch generates multi-row INSERT statements with bind variables for batches of rows.
type SqlInsertTxtBatch struct {
	Log       logger.Logger
	Table     string
	ColList   []string
	BindStyle BindStyle

	sqlStmt                string
	sqlStmtTemplate        string
	sqlValues              []interface{} // slice to hold data values for all rows in batch
	batchSize              int
	rowsInBatch            int
	previousNumRowsInBatch int // number of rows the cached sqlStmt was built for
}

// NewInsertGenerator creates a new SqlInsertTxtBatch for table and cols.
func NewInsertGenerator(log logger.Logger, table string, cols []string, style BindStyle) (*SqlInsertTxtBatch, error) {
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, errors.New("no columns supplied for INSERT")
	}
	for _, c := range cols {
		if err := validateIdentifier(c); err != nil {
			return nil, err
		}
	}
	o := &SqlInsertTxtBatch{Log: log, Table: table, ColList: cols, BindStyle: style}
	o.sqlStmtTemplate = `insert into <TABLE> (<TGT-COLS>) values <VALUES>`
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<TABLE>", table, 1)
	o.sqlStmtTemplate = strings.Replace(o.sqlStmtTemplate, "<TGT-COLS>", strings.Join(cols, ","), 1)
	o.Log.Debug("setup INSERT generator with SQL (VALUES pending): ", o.sqlStmtTemplate)
	return o, nil
}

func (o *SqlInsertTxtBatch) InitBatch(batchSize int) {
	o.batchSize = batchSize
	o.rowsInBatch = 0
	o.sqlValues = make([]interface{}, 0, o.batchSize*len(o.ColList)) // many values per row in a batch.
}

func (o *SqlInsertTxtBatch) AddValuesToBatch(values []interface{}) (batchIsFull bool, err error) {
	if o.rowsInBatch >= o.batchSize {
		err = errors.New("no more rows allowed in INSERT batch")
		batchIsFull = true
		return
	}
	if len(values) != len(o.ColList) {
		err = errors.New("the number of values supplied does not match the number of table columns")
		return
	}
	o.sqlValues = append(o.sqlValues, values...)
	o.rowsInBatch++ // keep track of how close we are to the batch limit.
	batchIsFull = o.rowsInBatch >= o.batchSize
	return
}

func (o *SqlInsertTxtBatch) GetValues() []interface{} {
	return o.sqlValues
}

// GetStatement returns the INSERT for the rows added so far.
// The SQL is cached while the number of rows per batch stays the same.
func (o *SqlInsertTxtBatch) GetStatement() string {
	if o.sqlStmt == "" || o.previousNumRowsInBatch != o.rowsInBatch { // if we need to generate SQL for a new number of rows...
		allRows := strings.Builder{}
		valIdx := 1
		for rowIdx := 1; rowIdx <= o.rowsInBatch; rowIdx++ { // for each row...
			row := strings.Builder{}
			for idy := 0; idy < len(o.ColList); idy++ { // for each field in the current row...
				row.WriteString(",")
				row.WriteString(o.bindVar(valIdx))
				valIdx++
			}
			allRows.WriteString(fmt.Sprintf(",( %v )", strings.TrimLeft(row.String(), ",")))
		}
		o.sqlStmt = strings.Replace(o.sqlStmtTemplate, "<VALUES>", strings.TrimLeft(allRows.String(), ","), 1)
		o.previousNumRowsInBatch = o.rowsInBatch
	}
	o.Log.Trace("SQL batch INSERT generated statement: ", o.sqlStmt)
	return o.sqlStmt
}

func (o *SqlInsertTxtBatch) bindVar(idx int) string {
	switch o.BindStyle {
	case BindAtP:
		return fmt.Sprintf("@p%v", idx)
	case BindQuestion:
		return "?"
	default:
		return fmt.Sprintf("$%v", idx)
	}
}

// BuildInsert is a convenience that returns the statement and args to insert rows into table.
func BuildInsert(log logger.Logger, table string, cols []string, style BindStyle, rows []map[string]interface{}) (string, []interface{}, error) {
	if len(rows) == 0 {
		return "", nil, errors.New("no rows supplied for INSERT")
	}
	g, err := NewInsertGenerator(log, table, cols, style)
	if err != nil {
		return "", nil, err
	}
	g.InitBatch(len(rows))
	for _, r := range rows {
		values := make([]interface{}, len(cols))
		for idx, c := range cols {
			values[idx] = r[c]
		}
		if _, err := g.AddValuesToBatch(values); err != nil {
			return "", nil, err
		}
	}
	return g.GetStatement(), g.GetValues(), nil
}
