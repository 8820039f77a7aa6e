package core

import (
	"fmt"
	"strings"
)

// Normalize maps every row of ds into a canonical record using the builder
// registered for f. Row order is preserved. The first row that cannot be
// built aborts normalization; the error names its line in the source file.
func Normalize(ds *Dataset, f Format) ([]Record, error) {
	if f == FormatUnknown {
		return nil, ErrUnsupportedFormat
	}
	def, ok := Get(f)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}

	records := make([]Record, 0, ds.Len())
	for i, row := range ds.Rows {
		rec, err := def.Build(row, ds.Index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ds.LineOf(i), err)
		}
		if strings.TrimSpace(rec.CompanyName()) == "" {
			return nil, fmt.Errorf("line %d: %w", ds.LineOf(i), ErrEmptyCompanyName)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DetectAndNormalize classifies ds and normalizes it in one step.
// Unknown layouts fail with ErrUnsupportedFormat before any row is read.
func DetectAndNormalize(ds *Dataset) (Format, []Record, error) {
	det := DetectReport(ds.Columns)
	if err := det.Err(); err != nil {
		return FormatUnknown, nil, err
	}
	records, err := Normalize(ds, det.Format)
	if err != nil {
		return det.Format, nil, err
	}
	return det.Format, records, nil
}
