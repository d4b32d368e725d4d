package export

import (
	"time"

	"github.com/prodmap/prodmap/pkg/catalog"
)

// Report summarizes one batch run: outcome counts, the overall success rate,
// and per-attribute completion rates measured across successful profiles.
type Report struct {
	Timestamp      string             `json:"timestamp"`
	TotalProducts  int                `json:"total_products"`
	Successful     int                `json:"successful"`
	Partial        int                `json:"partial"`
	Failed         int                `json:"failed"`
	SuccessRate    float64            `json:"success_rate"`
	AttributeRates map[string]float64 `json:"per_attribute_completion_rate"`
	FailedItems    []FailedItem       `json:"failed_items,omitempty"`
}

// FailedItem records why one product produced no profile data.
type FailedItem struct {
	ProductName  string `json:"product_name"`
	Error        string `json:"error"`
	StageReached int    `json:"stage_reached"`
}

// BuildReport computes the batch summary. Attribute completion rates count
// only non-failed profiles: a failed item says nothing about how extractable
// an attribute is. Rates are fractions in [0, 1].
func (e *Exporter) BuildReport(profiles []*catalog.Profile, now time.Time) *Report {
	report := &Report{
		Timestamp:      now.UTC().Format(time.RFC3339),
		TotalProducts:  len(profiles),
		AttributeRates: make(map[string]float64, e.catalog.Len()),
	}

	filled := make(map[string]int, e.catalog.Len())
	processed := 0
	for _, p := range profiles {
		switch p.Status {
		case catalog.StatusSuccess:
			report.Successful++
		case catalog.StatusPartial:
			report.Partial++
		case catalog.StatusFailed:
			report.Failed++
			report.FailedItems = append(report.FailedItems, FailedItem{
				ProductName:  p.ProductName,
				Error:        p.Error,
				StageReached: p.StageReached,
			})
			continue
		}
		processed++
		for _, rec := range p.Attributes {
			if rec.Filled() {
				filled[rec.Name]++
			}
		}
	}

	if report.TotalProducts > 0 {
		report.SuccessRate = float64(report.Successful+report.Partial) / float64(report.TotalProducts)
	}
	for _, attr := range e.catalog.Attributes() {
		rate := 0.0
		if processed > 0 {
			rate = float64(filled[attr]) / float64(processed)
		}
		report.AttributeRates[attr] = rate
	}
	return report
}
