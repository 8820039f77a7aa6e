package core

// DefaultPreviewRows is how many rows Preview shows when n <= 0.
const DefaultPreviewRows = 5

// RowPreview represents a single row for preview display.
type RowPreview struct {
	LineNumber int               `json:"lineNumber"`
	Values     map[string]string `json:"values"`
}

// DatasetPreview is what a user sees before a run: the detected format, the
// size of the input and its first rows.
type DatasetPreview struct {
	FileName     string       `json:"fileName"`
	Format       Format       `json:"format"`
	FormatLabel  string       `json:"formatLabel,omitempty"`
	RowCount     int          `json:"rowCount"`
	CompanyCount int          `json:"companyCount"`
	Columns      []string     `json:"columns"`
	// Ignored lists header columns the detected format does not read.
	Ignored   []string     `json:"ignored,omitempty"`
	Rows      []RowPreview `json:"rows"`
	Detection Detection    `json:"detection"`
	// Error is set when the format is known but a row cannot be normalized.
	Error string `json:"error,omitempty"`
}

// Preview describes ds and its first n rows without contacting the tracker.
func Preview(ds *Dataset, n int) *DatasetPreview {
	if n <= 0 {
		n = DefaultPreviewRows
	}

	det := DetectReport(ds.Columns)
	p := &DatasetPreview{
		FileName:  ds.FileName,
		Format:    det.Format,
		RowCount:  ds.Len(),
		Columns:   ds.Columns,
		Rows:      make([]RowPreview, 0, min(n, ds.Len())),
		Detection: det,
	}
	if def, ok := Get(det.Format); ok {
		p.FormatLabel = def.Label
		p.Ignored = ignoredColumns(ds.Columns, def.Columns())
	}

	for i := 0; i < ds.Len() && i < n; i++ {
		values := make(map[string]string, len(ds.Columns))
		for _, col := range ds.Columns {
			if col == "" {
				continue
			}
			values[col] = Cell(ds.Rows[i], ds.Index, col)
		}
		p.Rows = append(p.Rows, RowPreview{LineNumber: ds.LineOf(i), Values: values})
	}

	if det.Format == FormatUnknown {
		return p
	}
	records, err := Normalize(ds, det.Format)
	if err != nil {
		p.Error = err.Error()
		return p
	}
	p.CompanyCount = len(GroupByCompany(records))
	return p
}

// ignoredColumns returns the non-blank columns that are not in known, in
// header order.
func ignoredColumns(columns, known []string) []string {
	read := make(map[string]bool, len(known))
	for _, c := range known {
		read[c] = true
	}
	var ignored []string
	for _, c := range columns {
		if c != "" && !read[c] {
			ignored = append(ignored, c)
		}
	}
	return ignored
}
