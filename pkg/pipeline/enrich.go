package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/logging"
	"github.com/prodmap/prodmap/pkg/parse"
)

// Query and evidence budgets for the enrichment stage. At most maxQueries
// searches run per item; evidence is capped so the prompt stays bounded.
const (
	maxQueries          = 5
	resultsPerQuery     = 5
	maxMissingPerPrompt = 10
)

// EnrichmentStage fills attribute gaps through web search. It derives
// targeted queries from what the analysis stage could not determine, gathers
// snippet evidence, and asks the model to complete the attribute set with
// cited sources.
type EnrichmentStage struct {
	analyzer Analyzer
	searcher Searcher
	catalog  *catalog.Catalog
	prompts  Prompts
}

// NewEnrichmentStage builds the search-enrichment stage.
func NewEnrichmentStage(analyzer Analyzer, searcher Searcher, cat *catalog.Catalog, prompts Prompts) *EnrichmentStage {
	return &EnrichmentStage{analyzer: analyzer, searcher: searcher, catalog: cat, prompts: prompts}
}

// Name implements Stage.
func (s *EnrichmentStage) Name() string { return "enrichment" }

// Run implements Stage. Search failures are tolerated: a query that errors
// contributes no evidence and the stage proceeds with whatever it gathered.
// Only the model call itself can abort the item.
func (s *EnrichmentStage) Run(ctx context.Context, state *State) (StageResult, error) {
	logger := logging.FromContext(ctx)

	missing := s.missingAttributes(state)
	queries := s.buildQueries(state.Item.Name, missing)
	evidence := s.gatherEvidence(ctx, queries)

	promptMissing := missing
	if len(promptMissing) > maxMissingPerPrompt {
		promptMissing = promptMissing[:maxMissingPerPrompt]
	}
	prompt := s.prompts.enrichmentPrompt(state.Item.Name, priorAttributesJSON(state), promptMissing, evidence)
	raw, err := s.analyzer.Generate(ctx, Request{
		Product: state.Item.Name,
		Prompt:  prompt,
	})
	if err != nil {
		return StageResult{}, errors.WrapCollaborator("vision", "enrich", err)
	}

	payload := parse.Extract(raw)
	if payload.Degraded() {
		logger.Warn().
			Str("product", state.Item.Name).
			Str("stage", s.Name()).
			Msg("unparseable model output, stage contributes no attributes")
		return StageResult{Raw: raw, Payload: payload, Degraded: true}, nil
	}

	candidates := make(map[string]catalog.Record)
	for name, av := range payload.Doc.Attributes {
		if !s.catalog.Has(name) || av.Value == "" {
			continue
		}
		source := catalog.SourceSearch
		if av.Annotated && av.Source != "" {
			source = catalog.ParseSource(av.Source)
			if source == catalog.SourceUnknown {
				source = catalog.SourceSearch
			}
		}
		conf := catalog.ConfidenceMedium
		if av.Confidence != "" {
			conf = catalog.ParseConfidence(av.Confidence)
		}
		candidates[name] = catalog.Record{
			Name:       name,
			Value:      catalog.Ptr(av.Value),
			Source:     source,
			Confidence: conf,
			URL:        av.URL,
		}
	}

	logger.Debug().
		Str("product", state.Item.Name).
		Int("queries", len(queries)).
		Int("attributes", len(candidates)).
		Msg("search enrichment complete")

	return StageResult{
		Raw:         raw,
		Payload:     payload,
		Candidates:  candidates,
		Description: payload.Doc.ProductDescription,
	}, nil
}

// Commit implements Stage.
func (s *EnrichmentStage) Commit(state *State, result StageResult) {
	state.Enrichment = &result
}

// missingAttributes lists catalog attributes the analysis stage did not fill,
// in catalog order.
func (s *EnrichmentStage) missingAttributes(state *State) []string {
	var prior map[string]catalog.Record
	if state.Analysis != nil {
		prior = state.Analysis.Candidates
	}
	var missing []string
	for _, attr := range s.catalog.Attributes() {
		if rec, ok := prior[attr]; ok && rec.Filled() {
			continue
		}
		missing = append(missing, attr)
	}
	return missing
}

// buildQueries derives the search queries for one item: a general spec query
// plus one per missing attribute, capped at maxQueries.
func (s *EnrichmentStage) buildQueries(product string, missing []string) []string {
	queries := []string{product + " specifications"}
	for _, attr := range missing {
		if len(queries) >= maxQueries {
			break
		}
		queries = append(queries, fmt.Sprintf("%s %s", product, strings.ToLower(attr)))
	}
	return queries
}

// gatherEvidence runs the queries and formats the hits into prompt evidence.
// A failed query is logged and skipped.
func (s *EnrichmentStage) gatherEvidence(ctx context.Context, queries []string) string {
	logger := logging.FromContext(ctx)

	var b strings.Builder
	for _, q := range queries {
		results, err := s.searcher.Search(ctx, q, resultsPerQuery)
		if err != nil {
			logger.Warn().Err(err).Str("query", q).Msg("search query failed, skipping")
			continue
		}
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Query: %s\n", q)
		for _, r := range results {
			fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.URL, r.Snippet)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// priorAttributesJSON serializes the analysis stage's filled candidates for
// the enrichment prompt. Degraded or absent analysis yields an empty object.
func priorAttributesJSON(state *State) string {
	prior := make(map[string]string)
	if state.Analysis != nil {
		for name, rec := range state.Analysis.Candidates {
			if rec.Filled() {
				prior[name] = rec.StringValue()
			}
		}
	}
	data, err := json.MarshalIndent(prior, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
