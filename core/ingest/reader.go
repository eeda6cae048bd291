package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/trezcool/chuo/core"
)

// Row is one CSV data line keyed by its trimmed header names.
type Row map[string]string

// Source is a CSV payload, supplied either as a filesystem path or as raw bytes.
// Path wins when both are set.
type Source struct {
	Path string
	Data []byte
}

// ParseError reports an unreadable or structurally broken CSV input.
// It fails the whole batch: no rows are processed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parsing CSV input: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ReadRows consumes the source into an ordered row sequence. The header row is
// consumed to produce keys; header names and values are trimmed of surrounding
// whitespace. A header-only or fully empty input yields zero rows, not an error:
// callers report it as "nothing to import".
func ReadRows(src Source) ([]Row, error) {
	var rdr io.Reader
	if src.Path != "" {
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		//goland:noinspection GoUnhandledErrorResult
		defer f.Close()
		rdr = f
	} else {
		rdr = bytes.NewReader(src.Data)
	}

	cr := csv.NewReader(rdr)
	cr.FieldsPerRecord = -1 // ragged rows are handled per field below

	header, err := cr.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	for i, h := range header {
		header[i] = core.CleanString(h)
	}

	rows := make([]Row, 0)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		row := make(Row, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(rec) {
				row[h] = core.CleanString(rec[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
