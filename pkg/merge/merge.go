// Package merge resolves competing attribute candidates into one record per
// catalog entry. Resolution is a pure function of its inputs: precedence is
// decided by source tier, then confidence, then first-seen order, so merging
// the same candidates twice yields bit-identical results regardless of map
// iteration order.
package merge

import (
	"github.com/prodmap/prodmap/pkg/catalog"
)

// Tier priorities for candidate sources. External search with high or medium
// confidence outranks everything the image produced; low-confidence search
// hits rank with inferences, below direct visual evidence.
const (
	tierSearch   = 40 // external-search, high/medium confidence
	tierVisual   = 30
	tierInferred = 20 // inferred, and external-search at low confidence
	tierDefault  = 10
	tierUnknown  = 0
)

// tier returns the precedence tier for a candidate record.
func tier(rec catalog.Record) int {
	switch rec.Source {
	case catalog.SourceSearch:
		if rec.Confidence == catalog.ConfidenceHigh || rec.Confidence == catalog.ConfidenceMedium {
			return tierSearch
		}
		return tierInferred
	case catalog.SourceVisual:
		return tierVisual
	case catalog.SourceInferred:
		return tierInferred
	case catalog.SourceDefault:
		return tierDefault
	default:
		return tierUnknown
	}
}

// Merger resolves attribute candidates against a catalog and defaults table.
type Merger struct {
	catalog  *catalog.Catalog
	defaults catalog.Defaults
}

// New creates a merger for the given catalog. defaults may be nil.
func New(cat *catalog.Catalog, defaults catalog.Defaults) *Merger {
	return &Merger{catalog: cat, defaults: defaults}
}

// Merge resolves one winning record for every catalog attribute. Candidate
// slices must be ordered by stage (earlier stages first); that order is the
// final tie-break. Unfilled candidates never win over filled ones. When no
// candidate carries a value, a configured default fills the slot;
// otherwise the slot is emitted as {value: null, source: unknown,
// confidence: low}.
func (m *Merger) Merge(candidates map[string][]catalog.Record) map[string]catalog.Record {
	resolved := make(map[string]catalog.Record, m.catalog.Len())
	for _, attr := range m.catalog.Attributes() {
		resolved[attr] = m.resolve(attr, candidates[attr])
	}
	return resolved
}

// resolve picks the winner for one attribute.
func (m *Merger) resolve(attr string, records []catalog.Record) catalog.Record {
	var best catalog.Record
	found := false

	for _, rec := range records {
		if !rec.Filled() {
			continue
		}
		if !found || beats(rec, best) {
			best = rec
			found = true
		}
	}

	if found && tier(best) > tierDefault {
		best.Name = attr
		return best
	}

	// No real candidate won; a configured default always fills the slot.
	if def, ok := m.defaults[attr]; ok {
		def.Name = attr
		def.Source = catalog.SourceDefault
		if def.Confidence == "" {
			def.Confidence = catalog.ConfidenceLow
		}
		return def
	}

	if found {
		best.Name = attr
		return best
	}

	return catalog.Record{
		Name:       attr,
		Source:     catalog.SourceUnknown,
		Confidence: catalog.ConfidenceLow,
	}
}

// beats reports whether challenger strictly outranks incumbent. Equal tier
// and confidence keep the incumbent, which preserves first-seen stage order.
func beats(challenger, incumbent catalog.Record) bool {
	ct, it := tier(challenger), tier(incumbent)
	if ct != it {
		return ct > it
	}
	return challenger.Confidence.Rank() > incumbent.Confidence.Rank()
}
