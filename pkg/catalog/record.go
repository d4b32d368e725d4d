package catalog

import "slices"

// Source identifies where an attribute value came from.
type Source string

// String returns the string representation of a source.
func (s Source) String() string { return string(s) }

// Known attribute sources.
const (
	// SourceVisual means the value was read directly from a product image.
	SourceVisual Source = "visual"
	// SourceSearch means the value was found through external web search.
	SourceSearch Source = "external-search"
	// SourceInferred means the model inferred the value without direct evidence.
	SourceInferred Source = "inferred"
	// SourceDefault means the value was filled from the configured defaults table.
	SourceDefault Source = "default"
	// SourceUnknown means no candidate and no default existed for the attribute.
	SourceUnknown Source = "unknown"
)

// Sources returns all defined attribute sources.
func Sources() []Source {
	return []Source{SourceVisual, SourceSearch, SourceInferred, SourceDefault, SourceUnknown}
}

// IsValid returns true if the source is one of the defined constants.
func (s Source) IsValid() bool {
	return slices.Contains(Sources(), s)
}

// Confidence expresses how certain a source was about a value.
type Confidence string

// String returns the string representation of a confidence level.
func (c Confidence) String() string { return string(c) }

// Confidence levels, ordered from most to least certain.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Confidences returns all defined confidence levels.
func Confidences() []Confidence {
	return []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}
}

// IsValid returns true if the confidence is one of the defined constants.
func (c Confidence) IsValid() bool {
	return slices.Contains(Confidences(), c)
}

// Rank returns an ordering weight for a confidence level (higher is better).
// Unknown strings rank below low so malformed model output never wins a merge.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// ParseConfidence normalizes a free-form confidence string from model output.
// Anything unrecognized maps to medium, the analysis stage's default.
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s)
	default:
		return ConfidenceMedium
	}
}

// ParseSource normalizes a free-form source string from model output.
// The enrichment prompt uses "image/search/inferred" shorthand, so those
// aliases are accepted alongside the canonical names.
func ParseSource(s string) Source {
	switch s {
	case "visual", "image":
		return SourceVisual
	case "external-search", "search", "web":
		return SourceSearch
	case "inferred":
		return SourceInferred
	case "default":
		return SourceDefault
	default:
		return SourceUnknown
	}
}

// Record is the resolved value of one catalog attribute with provenance.
// Value is nil when the attribute could not be determined and no default
// was configured.
type Record struct {
	Name       string     `json:"name" yaml:"name"`
	Value      *string    `json:"value" yaml:"value"`
	Source     Source     `json:"source" yaml:"source"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	// URL carries the evidence link for external-search values, when known.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Filled returns true if the record carries a usable value.
func (r Record) Filled() bool {
	return r.Value != nil && *r.Value != "" && *r.Value != "null"
}

// StringValue returns the record value or the empty string when unfilled.
func (r Record) StringValue() string {
	if r.Value == nil {
		return ""
	}
	return *r.Value
}

// Ptr returns a pointer to the given string. Convenience for building records.
func Ptr(s string) *string { return &s }
