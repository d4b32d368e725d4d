// Package parse converts raw collaborator text into structured stage
// payloads. Extraction is total: any input, including empty strings and
// malformed JSON, yields a payload. A degraded payload is not an error; it
// tells downstream stages to treat the stage as contributing no attributes.
package parse

import (
	"encoding/json"
	"strings"
)

// Kind discriminates structured from degraded payloads.
type Kind string

// Payload kinds.
const (
	// KindStructured means the text decoded into a Document.
	KindStructured Kind = "structured"
	// KindDegraded means decoding failed and only the raw text is available.
	KindDegraded Kind = "degraded"
)

// Payload is the result of extracting one stage's raw output.
type Payload struct {
	Kind Kind
	Raw  string
	Doc  *Document
}

// Structured returns true for a successfully decoded payload.
func (p Payload) Structured() bool { return p.Kind == KindStructured }

// Degraded returns true when only raw text is available.
func (p Payload) Degraded() bool { return p.Kind == KindDegraded }

// Document is the decoded shape both pipeline stages emit: an attribute map,
// a product description, and optional stage metadata.
type Document struct {
	Attributes           map[string]AttributeValue `json:"attributes"`
	ProductDescription   string                    `json:"product_description"`
	ExtractionConfidence string                    `json:"extraction_confidence,omitempty"`
	SearchQueriesUsed    []string                  `json:"search_queries_used,omitempty"`
}

// AttributeValue is the tagged variant an attribute decodes into. Models
// return either a bare scalar ("black") or an annotated object
// ({"value": "black", "source": "image", "confidence": "high"}); both decode
// into this one type so callers never branch on JSON shape.
type AttributeValue struct {
	Value      string
	Source     string // empty for scalars; stage assigns its own source
	Confidence string // empty for scalars; stage assigns its own confidence
	URL        string
	Annotated  bool
}

// annotatedValue mirrors the object form of an attribute value on the wire.
type annotatedValue struct {
	Value      *string `json:"value"`
	Source     string  `json:"source"`
	Confidence string  `json:"confidence"`
	URL        string  `json:"source_url"`
}

// UnmarshalJSON decodes either variant arm. JSON null and the literal string
// "null" both mean "attribute not determined" and yield an empty value.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = AttributeValue{}
		return nil
	}

	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		if scalar == "null" {
			scalar = ""
		}
		*v = AttributeValue{Value: scalar}
		return nil
	}

	// Numbers and booleans arrive occasionally ("Megapixels": 24.2); keep
	// them as their literal text rather than failing the whole document.
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.(type) {
	case float64, bool:
		*v = AttributeValue{Value: trimmed}
		return nil
	}

	var ann annotatedValue
	if err := json.Unmarshal(data, &ann); err != nil {
		return err
	}
	value := ""
	if ann.Value != nil && *ann.Value != "null" {
		value = *ann.Value
	}
	*v = AttributeValue{
		Value:      value,
		Source:     ann.Source,
		Confidence: ann.Confidence,
		URL:        ann.URL,
		Annotated:  true,
	}
	return nil
}

// MarshalJSON encodes the variant back into its wire form.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if !v.Annotated {
		if v.Value == "" {
			return []byte("null"), nil
		}
		return json.Marshal(v.Value)
	}
	var valuePtr *string
	if v.Value != "" {
		valuePtr = &v.Value
	}
	return json.Marshal(annotatedValue{
		Value:      valuePtr,
		Source:     v.Source,
		Confidence: v.Confidence,
		URL:        v.URL,
	})
}

// Extract converts raw stage output into a payload. It never fails: a fenced
// code block is located if present (first block wins, an optional language
// tag is skipped), the candidate text is strictly JSON-decoded, and any
// decode failure falls back to a degraded payload carrying the raw text.
func Extract(text string) Payload {
	candidate := strings.TrimSpace(fencedBlock(text))
	if candidate == "" {
		candidate = strings.TrimSpace(text)
	}
	if candidate == "" {
		return Payload{Kind: KindDegraded, Raw: text}
	}

	var doc Document
	dec := json.NewDecoder(strings.NewReader(candidate))
	if err := dec.Decode(&doc); err != nil {
		return Payload{Kind: KindDegraded, Raw: text}
	}
	return Payload{Kind: KindStructured, Raw: text, Doc: &doc}
}

// fencedBlock returns the contents of the first ``` fence in the text, or ""
// when no complete fence exists. An unterminated fence is treated as absent
// so truncated responses degrade instead of decoding garbage.
func fencedBlock(text string) string {
	const fence = "```"
	start := strings.Index(text, fence)
	if start < 0 {
		return ""
	}
	rest := text[start+len(fence):]

	// Skip a language tag such as "json" on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		tag := strings.TrimSpace(rest[:nl])
		if tag != "" && !strings.ContainsAny(tag, "{[") {
			rest = rest[nl+1:]
		}
	}

	end := strings.Index(rest, fence)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
