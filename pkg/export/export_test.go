package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/prodmap/prodmap/pkg/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("camera", []string{"Color", "Brand", "Zoom"})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func successProfile(name string, attrs map[string]string) *catalog.Profile {
	p := &catalog.Profile{
		ProductName:  name,
		Description:  "desc of " + name,
		Status:       catalog.StatusSuccess,
		StageReached: 2,
		ImageCount:   1,
	}
	for _, attr := range []string{"Color", "Brand", "Zoom"} {
		rec := catalog.Record{Name: attr, Source: catalog.SourceUnknown, Confidence: catalog.ConfidenceLow}
		if v, ok := attrs[attr]; ok {
			rec.Value = catalog.Ptr(v)
			rec.Source = catalog.SourceVisual
			rec.Confidence = catalog.ConfidenceHigh
		}
		p.Attributes = append(p.Attributes, rec)
	}
	return p
}

func TestJSONRoundTrip(t *testing.T) {
	e := New(testCatalog(t))
	profiles := []*catalog.Profile{
		successProfile("Cam A", map[string]string{"Color": "black", "Brand": "Canon"}),
		catalog.FailedProfile("Cam B", 0, os.ErrNotExist),
	}

	var buf bytes.Buffer
	if err := e.JSON(&buf, profiles); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var back []*catalog.Profile
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(profiles, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVShape(t *testing.T) {
	e := New(testCatalog(t))
	profiles := []*catalog.Profile{
		successProfile("Cam A", map[string]string{"Color": "black"}),
		catalog.FailedProfile("Cam B", 0, os.ErrNotExist),
	}

	var buf bytes.Buffer
	if err := e.CSV(&buf, profiles); err != nil {
		t.Fatalf("CSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus one per profile", len(rows))
	}

	wantHeader := []string{"Product Name", "Description", "Status", "Brand", "Color", "Zoom"}
	if diff := cmp.Diff(wantHeader, rows[0]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	// Row 1: Cam A with only Color filled.
	if rows[1][0] != "Cam A" || rows[1][2] != "success" {
		t.Errorf("row = %v, want Cam A success", rows[1])
	}
	if rows[1][4] != "black" {
		t.Errorf("Color cell = %q, want black", rows[1][4])
	}
	if rows[1][3] != "" || rows[1][5] != "" {
		t.Errorf("unfilled attributes should be empty cells, got %v", rows[1])
	}

	// Row 2: failed profile keeps its place with empty attribute cells.
	if rows[2][0] != "Cam B" || rows[2][2] != "failed" {
		t.Errorf("row = %v, want Cam B failed", rows[2])
	}
	for i := 3; i < len(rows[2]); i++ {
		if rows[2][i] != "" {
			t.Errorf("failed profile has non-empty attribute cell %q", rows[2][i])
		}
	}
}

func TestBuildReport(t *testing.T) {
	e := New(testCatalog(t))
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	partial := successProfile("Cam P", map[string]string{"Color": "silver"})
	partial.Status = catalog.StatusPartial

	profiles := []*catalog.Profile{
		successProfile("Cam A", map[string]string{"Color": "black", "Brand": "Canon"}),
		partial,
		catalog.FailedProfile("Cam F", 1, os.ErrNotExist),
	}

	report := e.BuildReport(profiles, now)

	if report.Timestamp != "2026-08-25T12:00:00Z" {
		t.Errorf("timestamp = %q", report.Timestamp)
	}
	if report.TotalProducts != 3 || report.Successful != 1 || report.Partial != 1 || report.Failed != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 3 total, 1 success, 1 partial, 1 failed",
			report.TotalProducts, report.Successful, report.Partial, report.Failed)
	}
	if got, want := report.SuccessRate, 2.0/3.0; got != want {
		t.Errorf("success_rate = %v, want %v", got, want)
	}

	// Completion rates count the two non-failed profiles.
	if got := report.AttributeRates["Color"]; got != 1.0 {
		t.Errorf("Color rate = %v, want 1.0", got)
	}
	if got := report.AttributeRates["Brand"]; got != 0.5 {
		t.Errorf("Brand rate = %v, want 0.5", got)
	}
	if got := report.AttributeRates["Zoom"]; got != 0.0 {
		t.Errorf("Zoom rate = %v, want 0.0", got)
	}

	if len(report.FailedItems) != 1 || report.FailedItems[0].ProductName != "Cam F" {
		t.Errorf("failed_items = %+v, want Cam F", report.FailedItems)
	}
	if report.FailedItems[0].StageReached != 1 {
		t.Errorf("failed item stage_reached = %d, want 1", report.FailedItems[0].StageReached)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	e := New(testCatalog(t))
	report := e.BuildReport(nil, time.Now())

	if report.TotalProducts != 0 || report.SuccessRate != 0 {
		t.Errorf("empty batch report = %+v", report)
	}
	if len(report.AttributeRates) != 3 {
		t.Errorf("attribute rates missing for empty batch: %v", report.AttributeRates)
	}
}

func TestWriteFiles(t *testing.T) {
	e := New(testCatalog(t))
	dir := filepath.Join(t.TempDir(), "out")

	profiles := []*catalog.Profile{successProfile("Cam A", map[string]string{"Color": "black"})}
	report := e.BuildReport(profiles, time.Now())

	paths, err := e.WriteFiles(dir, profiles, report)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("got %d paths, want 3", len(paths))
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("Stat(%s): %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", p)
		}
	}
}
