package file

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/stream"
)

var reGzipExtension = regexp.MustCompile(`^(.*?)(\.*)(?i)(gzip|gz){0,}$`)

// CSVFileOutput writes rows to CSV files that rotate after a number of rows.
// Files are only created once the first row is written.
type CSVFileOutput struct {
	log               logger.Logger
	directory         string
	prefix            string
	extension         string
	headerRecord      []string
	currentSuffixID   int
	currentName       string
	file              *os.File
	gzWriter          *gzip.Writer
	bufWriter         *bufio.Writer
	csvWriter         *csv.Writer
	useGzip           bool
	maxFileRows       int
	currentRowCount   int
	totalRowCount     int
	ListOfOutputFiles []string
}

// NewCSVFileOutput creates a new CSV file writer in outputDirectory, which is created if needed.
// Set maxFileRows to the number of rows you want in each CSV file (excluding the header) or 0 for a single file.
// Setting useGzip will compress output and make the extension end with '.gz'.
func NewCSVFileOutput(log logger.Logger, outputDirectory string, fileNamePrefix string, fileNameExtension string, maxFileRows int, useGzip bool) (*CSVFileOutput, error) {
	if outputDirectory == "" {
		return nil, errors.New("missing output directory for CSV files")
	}
	if err := os.MkdirAll(outputDirectory, 0750); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory %v", outputDirectory)
	}
	f := &CSVFileOutput{
		log:         log,
		directory:   outputDirectory,
		prefix:      fileNamePrefix,
		extension:   fileNameExtension,
		maxFileRows: maxFileRows,
		useGzip:     useGzip,
	}
	if useGzip { // if we should use gzip...
		f.extension = reGzipExtension.ReplaceAllString(f.extension, "$1.gz") // ensure file extension ends ".gz"
	}
	log.Debug("CSVFileOutput file prefix=", f.prefix, "; extension=", f.extension, "; maxFileRows=", f.maxFileRows, "; useGzip=", f.useGzip)
	return f, nil
}

// NewFailedRowsOutput creates a single-file CSVFileOutput for rows the store rejected.
// The file name carries the collection and the current time.
func NewFailedRowsOutput(log logger.Logger, outputDirectory string, collection string) (*CSVFileOutput, error) {
	prefix := fmt.Sprintf("%v_%v_%v", constants.FailedBatchFilePrefix, collection, time.Now().Format(constants.TimeFormatYearSeconds))
	return NewCSVFileOutput(log, outputDirectory, prefix, "csv", 0, false)
}

// SetHeader will store the supplied record for output in each created CSV file.
func (f *CSVFileOutput) SetHeader(record []string) {
	f.headerRecord = record
}

// WriteToCSV writes record to the current CSV file.
// Returns fileName if a new file was created, else empty string "".
func (f *CSVFileOutput) WriteToCSV(record []string) (fileName string, err error) {
	if f.csvWriter == nil { // if we need a new file...
		if err = f.createNewCSVWriter(); err != nil {
			return "", err
		}
		fileName = f.currentName
		if f.headerRecord != nil {
			if err = f.csvWriter.Write(f.headerRecord); err != nil {
				return "", errors.Wrap(err, "unable to write header to CSV file")
			}
		}
	}
	if err = f.csvWriter.Write(record); err != nil {
		return "", errors.Wrap(err, "unable to write to CSV file")
	}
	f.currentRowCount++
	f.totalRowCount++
	if f.maxFileRows > 0 && f.currentRowCount >= f.maxFileRows { // if we need to rotate the output file...
		err = f.closeCSVFile()
	}
	return
}

// WriteRows implements components.FailedRowsWriter by writing the columns of each record.
// Nil values are written as empty cells.
func (f *CSVFileOutput) WriteRows(columns []string, rows []stream.Record) error {
	if f.headerRecord == nil && len(rows) > 0 { // if this is the first batch with rows...
		f.SetHeader(columns)
	}
	for _, rec := range rows {
		if _, err := f.WriteToCSV(rec.GetDataKeysAsSlice(f.log, columns)); err != nil {
			return err
		}
	}
	if f.csvWriter != nil {
		return f.flush()
	}
	return nil
}

// TotalRows is the number of data rows written across all files.
func (f *CSVFileOutput) TotalRows() int {
	return f.totalRowCount
}

// Close flushes the CSV writer and closes the OS file.
func (f *CSVFileOutput) Close() error {
	return f.closeCSVFile()
}

func (f *CSVFileOutput) flush() error {
	f.csvWriter.Flush()
	if err := f.csvWriter.Error(); err != nil {
		return err
	}
	if f.useGzip { // if we should flush the bufio writer...
		if err := f.bufWriter.Flush(); err != nil {
			return err
		}
		return f.gzWriter.Flush()
	}
	return nil
}

func (f *CSVFileOutput) closeCSVFile() error {
	if f.csvWriter == nil {
		return nil
	}
	err := f.flush()
	if f.useGzip { // if we should close the gzip first...
		if e := f.gzWriter.Close(); e != nil && err == nil {
			err = e
		}
	}
	if e := f.file.Close(); e != nil && err == nil {
		err = errors.Wrapf(e, "unable to close OS file %v", f.currentName)
	}
	f.csvWriter = nil
	f.currentRowCount = 0
	return err
}

func (f *CSVFileOutput) createNewCSVWriter() error {
	f.getNextFileName()
	f.log.Info("Creating new CSV file '", f.currentName, "'")
	var err error
	f.file, err = os.OpenFile(f.currentName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return errors.Wrapf(err, "unable to create OS file with name %v", f.currentName)
	}
	var w io.Writer = f.file
	if f.useGzip { // if should use gzip...
		f.gzWriter = gzip.NewWriter(f.file)
		f.bufWriter = bufio.NewWriter(f.gzWriter)
		w = f.bufWriter
	}
	f.csvWriter = csv.NewWriter(w)
	return nil
}

// getNextFileName generates a new file name in currentName and stores the history in ListOfOutputFiles.
func (f *CSVFileOutput) getNextFileName() {
	f.currentSuffixID++
	f.currentName = filepath.Join(f.directory, fmt.Sprintf("%v_%06d.%v", f.prefix, f.currentSuffixID, f.extension))
	f.ListOfOutputFiles = append(f.ListOfOutputFiles, f.currentName)
}
