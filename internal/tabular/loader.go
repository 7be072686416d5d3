package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Sentinel errors for input-stage failures. All of them are fatal to the
// whole batch: callers must fix the input and resubmit.
var (
	ErrFileTooLarge     = errors.New("input file too large")
	ErrEmptyInput       = errors.New("input contains no data rows")
	ErrRowCountExceeded = errors.New("row count exceeds batch limit")
)

// MalformedInputError wraps a CSV parse failure (unbalanced quoting etc.),
// keeping the underlying parser message.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// RawRow maps a header column name to the cell value of one data line.
type RawRow map[string]string

// Table is the parsed result: header names in file order plus one RawRow
// per non-empty data line.
type Table struct {
	Headers []string
	Rows    []RawRow
}

// Config controls parsing and the input ceilings.
type Config struct {
	Delimiter rune   // field separator, ',' if zero
	Encoding  string // "utf-8" (default) or "windows-1251"
	MaxBytes  int64  // size ceiling, DefaultMaxBytes if zero
	MaxRows   int    // data row ceiling, DefaultMaxRows if zero
}

// Practical defaults: the size ceiling bounds memory for a fully buffered
// parse, the row ceiling bounds per-row rendering cost downstream.
const (
	DefaultMaxBytes = 10 << 20
	DefaultMaxRows  = 500
)

func (c Config) withDefaults() Config {
	if c.Delimiter == 0 {
		c.Delimiter = ','
	}
	if c.Encoding == "" {
		c.Encoding = "utf-8"
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxRows == 0 {
		c.MaxRows = DefaultMaxRows
	}
	return c
}

// LoadFile opens and parses a delimited file. The size ceiling is checked
// against the file before any bytes are read.
func LoadFile(path string, cfg Config) (*Table, error) {
	cfg = cfg.withDefaults()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, info.Size(), cfg.MaxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Load(f, cfg)
}

// Load parses a delimited byte stream. The first line is treated as header
// names; a leading byte-order mark is stripped; completely empty lines are
// skipped. Fails with ErrFileTooLarge, ErrEmptyInput, ErrRowCountExceeded
// or a MalformedInputError.
func Load(r io.Reader, cfg Config) (*Table, error) {
	cfg = cfg.withDefaults()

	raw, err := io.ReadAll(io.LimitReader(r, cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(raw)) > cfg.MaxBytes {
		return nil, fmt.Errorf("%w: input exceeds limit of %d bytes", ErrFileTooLarge, cfg.MaxBytes)
	}

	var enc encoding.Encoding
	switch cfg.Encoding {
	case "utf-8":
		// UTF8BOM strips a leading byte-order mark and passes plain
		// UTF-8 through untouched.
		enc = unicode.UTF8BOM
	case "windows-1251":
		enc = charmap.Windows1251
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", cfg.Encoding)
	}

	reader := csv.NewReader(enc.NewDecoder().Reader(bytes.NewReader(raw)))
	reader.Comma = cfg.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, &MalformedInputError{Err: err}
	}

	headers := make([]string, len(header))
	for i, name := range header {
		headers[i] = strings.TrimSpace(name)
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Err: err}
		}

		if isEmptyRecord(record) {
			continue
		}

		if len(rows) >= cfg.MaxRows {
			return nil, fmt.Errorf("%w: more than %d data rows, split the input into smaller batches", ErrRowCountExceeded, cfg.MaxRows)
		}

		row := make(RawRow, len(headers))
		for i, name := range headers {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
