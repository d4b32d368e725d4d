package pipeline

import (
	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/parse"
)

// StageResult is what one stage invocation produced: the collaborator's raw
// text, its parsed payload, and the attribute candidates the stage derived
// from it. Degraded is true when parsing failed and the stage contributed
// no structured data.
type StageResult struct {
	Raw         string
	Payload     parse.Payload
	Candidates  map[string]catalog.Record
	Description string
	Degraded    bool
}

// State is the per-item working set threaded through the stages. Each stage
// owns exactly one statically named slot; earlier slots stay readable so
// later stages can reference prior attribute sets and free-form context.
// A State is created when an item starts, is never shared across items, and
// is discarded once the profile is materialized.
type State struct {
	Item catalog.Item

	// Analysis holds the image-analysis stage output.
	Analysis *StageResult

	// Enrichment holds the search-enrichment stage output.
	Enrichment *StageResult
}

// NewState creates the working state for one item.
func NewState(item catalog.Item) *State {
	return &State{Item: item}
}

// slots returns the committed stage results in stage order.
func (s *State) slots() []*StageResult {
	var out []*StageResult
	if s.Analysis != nil {
		out = append(out, s.Analysis)
	}
	if s.Enrichment != nil {
		out = append(out, s.Enrichment)
	}
	return out
}

// Candidates gathers all committed attribute candidates in stage order,
// keyed by attribute name. The per-attribute slice order is the merge
// tie-break, so it must follow stage order.
func (s *State) Candidates() map[string][]catalog.Record {
	out := make(map[string][]catalog.Record)
	for _, slot := range s.slots() {
		for name, rec := range slot.Candidates {
			out[name] = append(out[name], rec)
		}
	}
	return out
}

// Description returns the latest non-empty product description, preferring
// later stages (enrichment refines the analysis description).
func (s *State) Description() string {
	desc := ""
	for _, slot := range s.slots() {
		if slot.Description != "" {
			desc = slot.Description
		}
	}
	return desc
}

// Degraded reports whether any committed stage parsed degraded.
func (s *State) Degraded() bool {
	for _, slot := range s.slots() {
		if slot.Degraded {
			return true
		}
	}
	return false
}
