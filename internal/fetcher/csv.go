package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

const utf8BOM = "\ufeff"

// CSVOptions configures the streaming CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// CSVRow is one data row and the input line it started on.
type CSVRow struct {
	Line   int
	Fields []string
}

// CSVStream is a header row followed by a stream of data rows.
type CSVStream struct {
	Header []string
	// Rows is closed when the input is exhausted or ctx is done. Errs
	// holds at most one error and is closed after Rows.
	Rows <-chan CSVRow
	Errs <-chan error
}

// StreamCSV reads the header row before returning, then streams the rest.
// Callers that stop reading early must cancel ctx to release the reader
// goroutine. A leading UTF-8 byte order mark is dropped from the header.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*CSVStream, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("csv: missing header row")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	trim(header, opts.TrimSpace)

	rowCh := make(chan CSVRow, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(rowCh)

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			fields, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}
			line, _ := reader.FieldPos(0)
			trim(fields, opts.TrimSpace)

			select {
			case rowCh <- CSVRow{Line: line, Fields: fields}:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return &CSVStream{Header: header, Rows: rowCh, Errs: errCh}, nil
}

func trim(fields []string, enabled bool) {
	if !enabled {
		return
	}
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
}
