package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxFileSize is the default input size limit (10MB).
var MaxFileSize int64 = 10 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when an input exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyFile is returned when an input has no header row.
	ErrEmptyFile = errors.New("empty file")
)

// LoadOptions controls how input files are read.
type LoadOptions struct {
	// MaxSize caps the number of bytes read; <= 0 uses MaxFileSize.
	MaxSize int64
}

func (o LoadOptions) maxSize() int64 {
	if o.MaxSize > 0 {
		return o.MaxSize
	}
	return MaxFileSize
}

// LoadFile reads a CSV or XLSX file from disk, choosing the parser by extension.
func LoadFile(path string, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return Load(f, filepath.Base(path), opts)
}

// Load reads a dataset from r. Files named *.xlsx are read as workbooks,
// everything else as CSV.
func Load(r io.Reader, name string, opts LoadOptions) (*Dataset, error) {
	data, err := readLimited(r, opts.maxSize())
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ParseXLSX(data, name)
	}
	return ParseCSV(data, name)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}
	return data, nil
}

// ParseCSV parses CSV bytes into a dataset. A UTF-8 BOM is dropped, invalid
// UTF-8 is replaced, and fully empty rows are skipped.
func ParseCSV(data []byte, name string) (*Dataset, error) {
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	var lines []int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		line, _ := r.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	return newDataset(name, records, lines)
}

// ParseXLSX reads the first sheet of a workbook into a dataset.
func ParseXLSX(data []byte, name string) (*Dataset, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}

	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return newDataset(name, rows, lines)
}

// newDataset takes the first non-empty record as the header and keeps the
// non-empty records after it.
func newDataset(name string, records [][]string, lines []int) (*Dataset, error) {
	start := 0
	for start < len(records) && isEmptyRow(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		header[i] = CleanCell(h)
	}

	ds := &Dataset{
		FileName: name,
		Columns:  header,
		Index:    MakeHeaderIndex(header),
	}
	for i := start + 1; i < len(records); i++ {
		if isEmptyRow(records[i]) {
			continue
		}
		ds.Rows = append(ds.Rows, records[i])
		ds.Lines = append(ds.Lines, lines[i])
	}
	return ds, nil
}
