package pipeline

import (
	"context"
	"fmt"

	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/logging"
	"github.com/prodmap/prodmap/pkg/parse"
)

// AnalysisStage reads attributes off the product image. It sends the first
// discovered image with the analysis prompt, parses the response, and emits
// one visual-source candidate per attribute the model reported.
type AnalysisStage struct {
	analyzer Analyzer
	images   ImageSource
	catalog  *catalog.Catalog
	prompts  Prompts
}

// NewAnalysisStage builds the image-analysis stage.
func NewAnalysisStage(analyzer Analyzer, images ImageSource, cat *catalog.Catalog, prompts Prompts) *AnalysisStage {
	return &AnalysisStage{analyzer: analyzer, images: images, catalog: cat, prompts: prompts}
}

// Name implements Stage.
func (s *AnalysisStage) Name() string { return "analysis" }

// Run implements Stage. An empty image set is a collaborator failure: the
// vision backend has nothing to look at and the item cannot proceed.
func (s *AnalysisStage) Run(ctx context.Context, state *State) (StageResult, error) {
	logger := logging.FromContext(ctx)

	if len(state.Item.ImagePaths) == 0 {
		msg := fmt.Sprintf("No images found in %s", state.Item.Folder)
		return StageResult{}, errors.NewCollaboratorError("vision", "analyze", msg, errors.ErrNoImages)
	}

	img, err := s.images.Load(state.Item.ImagePaths[0])
	if err != nil {
		return StageResult{}, errors.WrapIO("read", state.Item.ImagePaths[0], err)
	}

	prompt := s.prompts.analysisPrompt(state.Item.Name, s.catalog.Attributes())
	raw, err := s.analyzer.Generate(ctx, Request{
		Product: state.Item.Name,
		Prompt:  prompt,
		Image:   img,
	})
	if err != nil {
		return StageResult{}, errors.WrapCollaborator("vision", "analyze", err)
	}

	payload := parse.Extract(raw)
	if payload.Degraded() {
		logger.Warn().
			Str("product", state.Item.Name).
			Str("stage", s.Name()).
			Msg("unparseable model output, stage contributes no attributes")
		return StageResult{Raw: raw, Payload: payload, Degraded: true}, nil
	}

	stageConf := catalog.ParseConfidence(payload.Doc.ExtractionConfidence)
	candidates := make(map[string]catalog.Record)
	for name, av := range payload.Doc.Attributes {
		if !s.catalog.Has(name) || av.Value == "" {
			continue
		}
		conf := stageConf
		if av.Confidence != "" {
			conf = catalog.ParseConfidence(av.Confidence)
		}
		candidates[name] = catalog.Record{
			Name:       name,
			Value:      catalog.Ptr(av.Value),
			Source:     catalog.SourceVisual,
			Confidence: conf,
		}
	}

	logger.Debug().
		Str("product", state.Item.Name).
		Int("attributes", len(candidates)).
		Str("confidence", stageConf.String()).
		Msg("image analysis complete")

	return StageResult{
		Raw:         raw,
		Payload:     payload,
		Candidates:  candidates,
		Description: payload.Doc.ProductDescription,
	}, nil
}

// Commit implements Stage.
func (s *AnalysisStage) Commit(state *State, result StageResult) {
	state.Analysis = &result
}
