package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/prodmap/prodmap/pkg/errors"
)

// Prompts holds the stage prompt templates. Templates are configuration
// data, not control logic; the zero value is replaced by DefaultPrompts and
// either template can be overridden from application config.
//
// Analysis placeholders: %[1]s = product name, %[2]s = attribute list.
// Enrichment placeholders: %[1]s = product name, %[2]s = prior attribute
// JSON, %[3]s = missing attribute list, %[4]s = search evidence.
type Prompts struct {
	Analysis   string
	Enrichment string
}

// promptsFile is the YAML shape of a prompt-override file. Omitted fields
// keep the built-in template.
type promptsFile struct {
	Analysis   string `yaml:"analysis"`
	Enrichment string `yaml:"enrichment"`
}

// DefaultPrompts returns the built-in stage templates.
func DefaultPrompts() Prompts {
	return Prompts{Analysis: defaultAnalysisPrompt, Enrichment: defaultEnrichmentPrompt}
}

// LoadPrompts reads stage prompt overrides from a YAML file. Templates the
// file leaves empty fall back to the built-in ones.
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, errors.WrapIO("read", path, err)
	}
	var file promptsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Prompts{}, errors.WrapParse("yaml", path, err)
	}
	prompts := DefaultPrompts()
	if file.Analysis != "" {
		prompts.Analysis = file.Analysis
	}
	if file.Enrichment != "" {
		prompts.Enrichment = file.Enrichment
	}
	return prompts, nil
}

// analysisPrompt renders the image-analysis instruction for an item.
func (p Prompts) analysisPrompt(product string, attrs []string) string {
	tmpl := p.Analysis
	if tmpl == "" {
		tmpl = defaultAnalysisPrompt
	}
	return fmt.Sprintf(tmpl, product, strings.Join(attrs, ", "))
}

// enrichmentPrompt renders the search-enrichment instruction for an item.
func (p Prompts) enrichmentPrompt(product, priorJSON string, missing []string, evidence string) string {
	tmpl := p.Enrichment
	if tmpl == "" {
		tmpl = defaultEnrichmentPrompt
	}
	missingList := "(none)"
	if len(missing) > 0 {
		missingList = strings.Join(missing, ", ")
	}
	if evidence == "" {
		evidence = "(no search evidence available)"
	}
	return fmt.Sprintf(tmpl, product, priorJSON, missingList, evidence)
}

const defaultAnalysisPrompt = `You are an expert product analyst.

Product Name: %[1]s

Analyze the provided product image carefully and extract as many of these
attributes as possible:
%[2]s

Examine buttons, ports, displays, labels, text, and specification stickers.
If an attribute is not visible or determinable, set it to null. Only report
what you can actually see.

Also write a compelling 2-3 sentence e-commerce product description.

Respond with JSON only, no markdown:
{
  "attributes": {"<attribute name>": "value or null", ...},
  "product_description": "...",
  "extraction_confidence": "high/medium/low"
}`

const defaultEnrichmentPrompt = `You are a product data enrichment specialist.

Product Name: %[1]s

Attributes already extracted from the product image:
%[2]s

Attributes still missing: %[3]s

Web search evidence:
%[4]s

Fill in missing attributes using the evidence above. Keep image-derived
values unless the evidence clearly contradicts them. Enhance the product
description with additional detail.

Respond with JSON only, no markdown:
{
  "attributes": {"<attribute name>": {"value": "value or null", "source": "image/search/inferred", "confidence": "high/medium/low", "source_url": "url or omit"}, ...},
  "product_description": "...",
  "search_queries_used": ["..."]
}`
