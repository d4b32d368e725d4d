// Package export materializes finished profiles into the delivery formats:
// a full-fidelity JSON dump, a flattened spreadsheet-friendly CSV, and a
// batch summary report. Exporters only read profiles; they never reorder or
// mutate them.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
)

// Default output filenames.
const (
	JSONFileName   = "extraction_results.json"
	CSVFileName    = "extraction_results.csv"
	ReportFileName = "extraction_report.json"
)

// Exporter writes profiles for one catalog. The catalog fixes the CSV column
// set so every row has an identical shape regardless of per-item outcomes.
type Exporter struct {
	catalog *catalog.Catalog
}

// New creates an exporter for the given catalog.
func New(cat *catalog.Catalog) *Exporter {
	return &Exporter{catalog: cat}
}

// JSON writes the profiles as an indented JSON array. Every profile appears,
// failed ones included, in batch order.
func (e *Exporter) JSON(w io.Writer, profiles []*catalog.Profile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.WrapIO("write", "json export", enc.Encode(profiles))
}

// CSV writes one row per profile. Columns are the product name, description,
// and status followed by every catalog attribute in lexical order. Unfilled
// attributes emit empty cells; failed profiles emit a full row of empty
// attribute cells so the batch stays visible in the sheet.
func (e *Exporter) CSV(w io.Writer, profiles []*catalog.Profile) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Product Name", "Description", "Status"}, e.catalog.Sorted()...)
	if err := cw.Write(header); err != nil {
		return errors.WrapIO("write", "csv header", err)
	}

	for _, p := range profiles {
		row := make([]string, 0, len(header))
		row = append(row, p.ProductName, p.Description, string(p.Status))
		for _, attr := range e.catalog.Sorted() {
			if rec, ok := p.Attribute(attr); ok {
				row = append(row, rec.StringValue())
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return errors.WrapIO("write", "csv row", err)
		}
	}

	cw.Flush()
	return errors.WrapIO("write", "csv export", cw.Error())
}

// WriteFiles writes the JSON dump, the CSV, and the report into dir, creating
// it if needed. Returns the paths written.
func (e *Exporter) WriteFiles(dir string, profiles []*catalog.Profile, report *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}

	jsonPath := filepath.Join(dir, JSONFileName)
	if err := e.writeFile(jsonPath, func(w io.Writer) error { return e.JSON(w, profiles) }); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(dir, CSVFileName)
	if err := e.writeFile(csvPath, func(w io.Writer) error { return e.CSV(w, profiles) }); err != nil {
		return nil, err
	}

	reportPath := filepath.Join(dir, ReportFileName)
	if err := e.writeFile(reportPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}); err != nil {
		return nil, err
	}

	return []string{jsonPath, csvPath, reportPath}, nil
}

// writeFile opens path for writing and runs fn against it.
func (e *Exporter) writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return errors.WrapIO("write", path, f.Close())
}
