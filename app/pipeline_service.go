// Package app wires the pipeline stages together: fit every tracked model
// family once, normalize and aggregate their importances into a consensus
// ranking, measure rank stability under resampling, and correlate the
// native ranking against a post-hoc permutation ranking.
package app

import (
	"context"
	"fmt"
	"time"

	"featrank/adapters/stats"
	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/domain/registry"
	"featrank/internal"
	"featrank/internal/stability"
	"featrank/models"
	"featrank/ports"
)

// PipelineConfig parameterizes one pipeline invocation
type PipelineConfig struct {
	DatasetName string
	Stability   stability.Config
	TopK        int // long-form comparison cutoff, <= 0 means all features
	Seed        int64
}

// PipelineService orchestrates a full importance run
type PipelineService struct {
	cfg       PipelineConfig
	reg       *registry.Registry
	families  []ports.ModelPort
	explainer ports.ExplainerPort
	rng       ports.RNGPort
	repo      ports.ResultsRepository // nil skips persistence
	logger    *internal.Logger
}

// NewPipelineService creates the orchestrator. repo may be nil when no
// database is configured; the run result is still returned to the caller.
// The explainer is mandatory: it scores families without native importance
// and produces the permutation side of the method comparison.
func NewPipelineService(
	cfg PipelineConfig,
	reg *registry.Registry,
	families []ports.ModelPort,
	explainer ports.ExplainerPort,
	rng ports.RNGPort,
	repo ports.ResultsRepository,
	logger *internal.Logger,
) *PipelineService {
	if cfg.Stability.Iterations == 0 {
		cfg.Stability.Iterations = 10
	}
	if cfg.Stability.SubsampleFraction == 0 {
		cfg.Stability.SubsampleFraction = 0.8
	}
	if cfg.Stability.TrainFraction == 0 {
		cfg.Stability.TrainFraction = 0.75
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PipelineService{
		cfg:       cfg,
		reg:       reg,
		families:  families,
		explainer: explainer,
		rng:       rng,
		repo:      repo,
		logger:    logger,
	}
}

// Run executes the full pipeline on one dataset and returns the bundled
// result. Cancellation aborts the run wholesale; nothing is persisted.
func (s *PipelineService) Run(ctx context.Context, ds *dataset.Table) (*models.RunResult, error) {
	if len(s.families) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one model family")
	}
	if s.explainer == nil {
		return nil, fmt.Errorf("pipeline requires an explainer for the permutation comparison")
	}
	runID := core.NewRunID().String()
	s.logger.Info("[Pipeline] run %s: %d rows, %d features, %d model families",
		runID, ds.Rows(), ds.Cols(), len(s.families))

	consensus, permConsensus, err := s.consensusPass(ctx, runID, ds)
	if err != nil {
		return nil, err
	}

	analyzer := stability.NewAnalyzer(s.cfg.Stability, s.reg, s.families, s.explainer, s.rng, s.logger)
	summary, err := analyzer.Run(ctx, runID, ds)
	if err != nil {
		return nil, err
	}

	agreement, err := stats.Compare(s.reg, []stats.MethodRanks{
		{Method: "consensus", Ranks: importance.RanksFromConsensus(consensus)},
		{Method: "permutation", Ranks: importance.RanksFromConsensus(permConsensus)},
	}, s.cfg.TopK)
	if err != nil {
		return nil, err
	}

	result := s.assemble(runID, ds, consensus, summary, agreement)
	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, result); err != nil {
			return nil, fmt.Errorf("persist run %s: %w", runID, err)
		}
		s.logger.Info("[Pipeline] run %s persisted", runID)
	}
	return result, nil
}

// consensusPass fits every family on a single train split and aggregates
// two consensus tables: one from the families' native importances (with the
// permutation explainer substituted where a family has none) and one from
// permutation importances across the board.
func (s *PipelineService) consensusPass(ctx context.Context, runID string, ds *dataset.Table) (native, permuted *importance.ConsensusTable, err error) {
	split := s.rng.SeededStream(runID + "/consensus-split")
	train, test := ds.Split(s.cfg.Stability.TrainFraction, split)
	if test.Rows() == 0 {
		test = train
	}

	nativeVectors := make(map[string]importance.Vector, len(s.families))
	permVectors := make(map[string]importance.Vector, len(s.families))
	for _, family := range s.families {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", core.ErrRunCancelled, err)
		}

		model, err := family.Fit(ctx, train)
		if err != nil {
			return nil, nil, fmt.Errorf("fit %s: %w", family.Name(), err)
		}

		raw, err := family.Importance(model)
		if core.IsUnsupportedImportance(err) {
			s.logger.Info("[Pipeline] %s has no native importance, using %s", family.Name(), s.explainer.Name())
			raw, err = s.explainer.Importance(ctx, model, test)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("importance %s: %w", family.Name(), err)
		}
		normalized, err := importance.Normalize(s.reg, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("normalize %s: %w", family.Name(), err)
		}
		nativeVectors[family.Name()] = normalized

		permRaw, err := s.explainer.Importance(ctx, model, test)
		if err != nil {
			return nil, nil, fmt.Errorf("%s %s: %w", s.explainer.Name(), family.Name(), err)
		}
		permNormalized, err := importance.Normalize(s.reg, permRaw)
		if err != nil {
			return nil, nil, fmt.Errorf("normalize %s %s: %w", s.explainer.Name(), family.Name(), err)
		}
		permVectors[family.Name()] = permNormalized
	}

	native, err = importance.Aggregate(s.reg, nativeVectors)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate consensus: %w", err)
	}
	permuted, err = importance.Aggregate(s.reg, permVectors)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate permutation consensus: %w", err)
	}
	return native, permuted, nil
}

func (s *PipelineService) assemble(runID string, ds *dataset.Table, consensus *importance.ConsensusTable, summary *stability.Summary, agreement *stats.Agreement) *models.RunResult {
	fingerprint := core.ComputeRunHash(s.reg.Hash(), summary.Models,
		summary.Iterations, s.cfg.Stability.SubsampleFraction, s.cfg.Seed)

	manifest := models.RunManifest{
		RunID:             runID,
		Dataset:           s.cfg.DatasetName,
		Target:            ds.Target,
		FeatureCount:      s.reg.Len(),
		RowCount:          ds.Rows(),
		Models:            summary.Models,
		Iterations:        summary.Iterations,
		SubsampleFraction: s.cfg.Stability.SubsampleFraction,
		TrainFraction:     s.cfg.Stability.TrainFraction,
		Seed:              s.cfg.Seed,
		Fingerprint:       fingerprint.String(),
		CreatedAt:         time.Now().UTC(),
	}

	consensusEntries := make([]models.ConsensusEntry, len(consensus.Rows))
	for i, row := range consensus.Rows {
		consensusEntries[i] = models.ConsensusEntry{
			Feature:        row.Feature,
			ModelScores:    row.ModelScores,
			MeanImportance: row.MeanImportance,
			Rank:           row.Rank,
		}
	}

	stabilityEntries := make([]models.StabilityEntry, len(summary.Records))
	for i, rec := range summary.Records {
		stabilityEntries[i] = models.StabilityEntry{
			Feature:      rec.Feature,
			Model:        rec.Model,
			MeanRank:     rec.MeanRank,
			StdRank:      rec.StdRank,
			Observations: len(rec.Ranks),
		}
	}

	avgRanks := make([]models.AvgRankEntry, len(summary.AvgRanks))
	for i, ar := range summary.AvgRanks {
		avgRanks[i] = models.AvgRankEntry{Feature: ar.Feature, AvgRank: ar.AvgRank}
	}

	return &models.RunResult{
		Manifest:    manifest,
		Consensus:   consensusEntries,
		Stability:   stabilityEntries,
		AvgRanks:    avgRanks,
		MethodRanks: agreement.Rows,
		Agreement:   agreement.Matrix,
	}
}
