package file

import (
	"compress/gzip"
	"encoding/csv"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/stream"
)

var header = []string{"col1", "col2"}

var data = [][]string{
	{"Line1", "Hello Readers of"},
	{"Line2", "golangcode.com"},
	{"Line3", "reeslloyd.com"},
	{"Line4", "reeslloyd4.com"}}

func readCSV(t *testing.T, name string, gz bool) [][]string {
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var r *csv.Reader
	if gz {
		z, err := gzip.NewReader(f)
		if err != nil {
			t.Fatal(err)
		}
		r = csv.NewReader(z)
	} else {
		r = csv.NewReader(f)
	}
	lines, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return lines
}

func TestCSVFileOutputRotation(t *testing.T) {
	log := logger.NewLogger("csv test", "debug", true)
	dir, err := ioutil.TempDir("", "csv-output-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// Test 1, files rotate after 3 rows and each has a header.
	log.Debug("Test 1 - starting...")
	csv1, err := NewCSVFileOutput(log, dir, "test", "csv", 3, false)
	if err != nil {
		t.Fatal("Test 1, ", err)
	}
	csv1.SetHeader(header)
	fileNames := make([]string, 0)
	for _, value := range data {
		fileName, err := csv1.WriteToCSV(value)
		if err != nil {
			t.Fatal("Test 1, ", err)
		}
		if fileName != "" {
			fileNames = append(fileNames, fileName)
		}
	}
	if err = csv1.Close(); err != nil {
		t.Fatal("Test 1, ", err)
	}
	if len(fileNames) != 2 || len(csv1.ListOfOutputFiles) != 2 {
		t.Fatal("Test 1, expected 2 files; got ", fileNames)
	}
	r1 := readCSV(t, fileNames[0], false)
	if len(r1) != 4 || r1[0][0] != header[0] || r1[3][1] != data[2][1] {
		t.Fatal("Test 1, unexpected file 1 contents: ", r1)
	}
	r2 := readCSV(t, fileNames[1], false)
	if len(r2) != 2 || r2[0][1] != header[1] || r2[1][0] != data[3][0] {
		t.Fatal("Test 1, unexpected file 2 contents: ", r2)
	}
	if csv1.TotalRows() != 4 {
		t.Fatal("Test 1, expected 4 total rows; got ", csv1.TotalRows())
	}

	// Test 2, gzip.
	log.Debug("Test 2 - starting...")
	csv2, err := NewCSVFileOutput(log, dir, "gz", "csv.gzip", 0, true)
	if err != nil {
		t.Fatal("Test 2, ", err)
	}
	csv2.SetHeader(header)
	for _, value := range data {
		if _, err = csv2.WriteToCSV(value); err != nil {
			t.Fatal("Test 2, ", err)
		}
	}
	if err = csv2.Close(); err != nil {
		t.Fatal("Test 2, ", err)
	}
	name := csv2.ListOfOutputFiles[0]
	if !strings.HasSuffix(name, ".csv.gz") {
		t.Fatal("Test 2, expected .csv.gz extension; got ", name)
	}
	if r := readCSV(t, name, true); len(r) != 5 {
		t.Fatal("Test 2, expected 5 lines; got ", len(r))
	}
}

func TestCSVFileOutputWriteRows(t *testing.T) {
	log := logger.NewLogger("csv test", "info", true)
	dir, err := ioutil.TempDir("", "failed-rows-")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out, err := NewFailedRowsOutput(log, dir, "iris_data")
	if err != nil {
		t.Fatal(err)
	}
	// Test 1, no rows means no file.
	if err = out.WriteRows([]string{"a"}, nil); err != nil || len(out.ListOfOutputFiles) != 0 {
		t.Fatal("Test 1, expected no file for zero rows")
	}
	// Test 2, rows from two batches land in one file with nil as empty cells.
	cols := []string{"species", "sepal_length"}
	r1 := stream.NewRecordFromMap(map[string]interface{}{"species": "setosa", "sepal_length": 5.1})
	r2 := stream.NewRecordFromMap(map[string]interface{}{"species": nil, "sepal_length": 4.9})
	if err = out.WriteRows(cols, []stream.Record{r1}); err != nil {
		t.Fatal("Test 2, ", err)
	}
	if err = out.WriteRows(cols, []stream.Record{r2}); err != nil {
		t.Fatal("Test 2, ", err)
	}
	if err = out.Close(); err != nil {
		t.Fatal("Test 2, ", err)
	}
	if len(out.ListOfOutputFiles) != 1 || !strings.Contains(out.ListOfOutputFiles[0], "failed-rows_iris_data_") {
		t.Fatal("Test 2, unexpected files: ", out.ListOfOutputFiles)
	}
	lines := readCSV(t, out.ListOfOutputFiles[0], false)
	if len(lines) != 3 || len(lines[0]) != 2 || lines[0][0] != "species" || lines[1][1] != "5.1" || lines[2][0] != "" {
		t.Fatal("Test 2, unexpected contents: ", lines)
	}
}
