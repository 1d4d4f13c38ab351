package input

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/aws/s3"
	"github.com/relloyd/stageload/helper"
	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/stats"
	"github.com/relloyd/stageload/stream"
)

const utf8BOM = "\uFEFF"

// MissingFileError is returned when the staged file has not been produced yet.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("staged file %v not found: run the transform step first", e.Path)
}

// StagedFile is the header and rows of a staged CSV. Empty cells are nil.
type StagedFile struct {
	Path   string
	Header []string
	Rows   []stream.Record
}

type StagedFileReaderConfig struct {
	Log         logger.Logger
	Path        string    // local path or s3://bucket/key
	S3Region    string    // optional
	S3Client    s3.Getter // optional, created on demand for s3:// paths
	StepWatcher *stats.StepWatcher
}

// ReadStagedFile reads the whole staged file named by cfg.Path.
// A *MissingFileError is returned when the file does not exist.
func ReadStagedFile(ctx context.Context, cfg *StagedFileReaderConfig) (*StagedFile, error) {
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching()
		defer cfg.StepWatcher.StopWatching()
	}
	var r io.Reader
	if s3.IsS3Path(cfg.Path) { // if we should read from S3...
		b, err := readS3(ctx, cfg)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	} else {
		f, err := os.Open(cfg.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, &MissingFileError{Path: cfg.Path}
			}
			return nil, errors.Wrapf(err, "unable to open staged file %v", cfg.Path)
		}
		defer f.Close()
		r = f
	}
	sf, err := ReadCSV(cfg.Log, r)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading staged file %v", cfg.Path)
	}
	sf.Path = cfg.Path
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.AddRows(len(sf.Rows))
	}
	cfg.Log.Info("Read ", len(sf.Rows), " rows from ", cfg.Path)
	return sf, nil
}

func readS3(ctx context.Context, cfg *StagedFileReaderConfig) ([]byte, error) {
	obj, err := s3.ParseDSN(cfg.Path, cfg.S3Region)
	if err != nil {
		return nil, err
	}
	client := cfg.S3Client
	if client == nil {
		if client, err = s3.NewBasicClient(obj.Bucket, obj.Region, ""); err != nil {
			return nil, errors.Wrap(err, "unable to create S3 client")
		}
	}
	cfg.Log.Info("Fetching ", obj)
	b, err := client.Get(ctx, obj.Key)
	if err == s3.ErrKeyNotFound {
		return nil, &MissingFileError{Path: cfg.Path}
	}
	return b, err
}

// ReadCSV parses CSV from r. The first record is the header; a UTF-8 BOM is removed from it.
// Duplicate header names keep the first column.
func ReadCSV(log logger.Logger, r io.Reader) (*StagedFile, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("staged file is empty, expected a header row")
	}
	if err != nil {
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	keep := make([]bool, len(header))
	seen := make(map[string]struct{}, len(header))
	cols := make([]string, 0, len(header))
	for idx, h := range header {
		h = strings.TrimSpace(h)
		header[idx] = h
		if _, ok := seen[h]; ok || h == "" {
			log.Warn("ignoring duplicate or empty header at column ", idx+1, ": ", fmt.Sprintf("%q", h))
			continue
		}
		seen[h] = struct{}{}
		keep[idx] = true
		cols = append(cols, h)
	}
	log.Debug("staged file header: ", helper.StringsToCsv2(log, cols))
	sf := &StagedFile{Header: cols, Rows: make([]stream.Record, 0)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := stream.NewRecord()
		for idx, v := range rec {
			if !keep[idx] {
				continue
			}
			if v == "" {
				row.SetData(header[idx], nil)
			} else {
				row.SetData(header[idx], v)
			}
		}
		sf.Rows = append(sf.Rows, row)
	}
	return sf, nil
}
