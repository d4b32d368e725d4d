// Package pipeline runs a product item through the fixed extraction stages
// and materializes its profile. The sequencer owns the failure policy: a
// collaborator or I/O failure aborts the item, a parse failure degrades one
// stage and the run continues, and everything already committed survives an
// abort into the failed profile's bookkeeping.
package pipeline

import (
	"context"

	"github.com/prodmap/prodmap/pkg/catalog"
	"github.com/prodmap/prodmap/pkg/errors"
	"github.com/prodmap/prodmap/pkg/logging"
	"github.com/prodmap/prodmap/pkg/merge"
)

// Stage is one unit of pipeline work. Run produces a result without touching
// shared state; Commit writes the result into the stage's own State slot.
// The split keeps aborted runs from leaving half-written slots behind.
type Stage interface {
	Name() string
	Run(ctx context.Context, state *State) (StageResult, error)
	Commit(state *State, result StageResult)
}

// Sequencer drives one item through the stages in fixed order and merges the
// committed candidates into a profile. It is stateless across items and safe
// for concurrent use.
type Sequencer struct {
	stages []Stage
	merger *merge.Merger
	images ImageSource
	cat    *catalog.Catalog
}

// New builds a sequencer over the given stages. Stage order is execution
// order and also merge tie-break order.
func New(stages []Stage, merger *merge.Merger, images ImageSource, cat *catalog.Catalog) *Sequencer {
	return &Sequencer{stages: stages, merger: merger, images: images, cat: cat}
}

// NewDefault wires the standard two-stage pipeline: image analysis followed
// by search enrichment.
func NewDefault(analyzer Analyzer, searcher Searcher, images ImageSource, cat *catalog.Catalog, defaults catalog.Defaults, prompts Prompts) *Sequencer {
	stages := []Stage{
		NewAnalysisStage(analyzer, images, cat, prompts),
		NewEnrichmentStage(analyzer, searcher, cat, prompts),
	}
	return New(stages, merge.New(cat, defaults), images, cat)
}

// Run processes one item to a terminal profile. It never returns an error:
// every failure mode is folded into the profile's status and error fields.
func (s *Sequencer) Run(ctx context.Context, item catalog.Item) *catalog.Profile {
	logger := logging.FromContext(ctx).With().Str("product", item.Name).Logger()
	ctx = logging.WithLogger(ctx, &logger)

	if len(item.ImagePaths) == 0 && item.Folder != "" {
		paths, err := s.images.Find(item.Folder)
		if err != nil {
			logger.Error().Err(err).Str("folder", item.Folder).Msg("image discovery failed")
			return catalog.FailedProfile(item.Name, 0, errors.WrapIO("list", item.Folder, err))
		}
		item.ImagePaths = paths
	}

	state := NewState(item)

	reached := len(s.stages)
	var abortErr error
	for i, stage := range s.stages {
		result, err := stage.Run(ctx, state)
		if err != nil {
			logger.Error().Err(err).Str("stage", stage.Name()).Msg("stage aborted item")
			reached = i
			abortErr = err
			break
		}
		stage.Commit(state, result)
	}

	if abortErr != nil {
		profile := catalog.FailedProfile(item.Name, reached, abortErr)
		profile.ImageCount = len(item.ImagePaths)
		profile.ImagePaths = item.ImagePaths
		return profile
	}

	return s.materialize(state)
}

// materialize merges the committed candidates and builds the final profile.
// Attributes come out in catalog order so exports are stable.
func (s *Sequencer) materialize(state *State) *catalog.Profile {
	resolved := s.merger.Merge(state.Candidates())

	attrs := make([]catalog.Record, 0, s.cat.Len())
	for _, name := range s.cat.Attributes() {
		attrs = append(attrs, resolved[name])
	}

	profile := &catalog.Profile{
		ProductName:  state.Item.Name,
		Attributes:   attrs,
		Description:  state.Description(),
		Status:       catalog.StatusSuccess,
		StageReached: len(s.stages),
		ImageCount:   len(state.Item.ImagePaths),
		ImagePaths:   state.Item.ImagePaths,
	}

	if state.Degraded() && profile.Filled() < len(attrs) {
		profile.Status = catalog.StatusPartial
	}
	return profile
}
