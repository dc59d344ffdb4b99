// Package stability quantifies how sensitive feature-importance ranks are
// to resampling: it refits every tracked model family over many independent
// subsample/split draws and reduces the observed rank distributions into
// per (feature, model) mean and standard deviation.
package stability

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"featrank/domain/core"
	"featrank/domain/dataset"
	"featrank/domain/importance"
	"featrank/domain/registry"
	"featrank/internal"
	"featrank/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"
)

// Config parameterizes a stability run
type Config struct {
	Iterations        int      // resampling iterations (default: 10)
	SubsampleFraction float64  // row fraction per iteration (default: 0.8)
	TrainFraction     float64  // inner train split of the subsample (default: 0.75)
	MaxParallel       int64    // concurrent iterations (default: 4)
	ReferenceModels   []string // models combined into AvgRank (default: first two tracked)
}

// Record is one (feature, model) rank distribution. Ranks holds exactly one
// observation per iteration, sentinel-marked failures included; mean and
// standard deviation (sample, n-1) are computed over all of them.
type Record struct {
	Feature  string
	Model    string
	Ranks    []int
	MeanRank float64
	StdRank  float64
}

// FeatureAvgRank combines the reference models' mean ranks for one feature
type FeatureAvgRank struct {
	Feature string
	AvgRank float64
}

// Summary is the immutable result of one stability run
type Summary struct {
	Iterations      int
	Models          []string
	ReferenceModels []string
	Records         []Record         // feature-major, model-minor
	AvgRanks        []FeatureAvgRank // ascending, lower = more important
	FitFailures     int              // iterations absorbed as sentinel ranks
}

// Analyzer runs the resampling loop over a set of tracked model families.
// Families without a native importance mechanism use the explainer when one
// is configured; otherwise their iterations record sentinel ranks.
type Analyzer struct {
	cfg       Config
	reg       *registry.Registry
	families  []ports.ModelPort
	explainer ports.ExplainerPort
	rng       ports.RNGPort
	logger    *internal.Logger
}

// NewAnalyzer creates a stability analyzer with defaulted configuration
func NewAnalyzer(cfg Config, reg *registry.Registry, families []ports.ModelPort, explainer ports.ExplainerPort, rng ports.RNGPort, logger *internal.Logger) *Analyzer {
	if cfg.Iterations == 0 {
		cfg.Iterations = 10
	}
	if cfg.SubsampleFraction == 0 {
		cfg.SubsampleFraction = 0.8
	}
	if cfg.TrainFraction == 0 {
		cfg.TrainFraction = 0.75
	}
	if cfg.MaxParallel == 0 {
		cfg.MaxParallel = 4
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Analyzer{cfg: cfg, reg: reg, families: families, explainer: explainer, rng: rng, logger: logger}
}

// Run executes N independent resampling iterations and reduces the observed
// ranks. A failed model fit inside one iteration is absorbed: every feature
// of that (model, iteration) records the worst-rank sentinel and the run
// continues. A schema mismatch or cancellation aborts the whole run and no
// partial summary is returned.
func (a *Analyzer) Run(ctx context.Context, runID string, ds *dataset.Table) (*Summary, error) {
	if len(a.families) == 0 {
		return nil, fmt.Errorf("stability run requires at least one model family")
	}
	if ds.Cols() != a.reg.Len() {
		return nil, fmt.Errorf("%w: table has %d features, registry %d", core.ErrDimensionMismatch, ds.Cols(), a.reg.Len())
	}
	for _, name := range ds.Features {
		if !a.reg.Contains(name) {
			return nil, core.NewSchemaMismatchError(name)
		}
	}

	n := a.cfg.Iterations
	numFeatures := a.reg.Len()
	numModels := len(a.families)
	sentinel := a.reg.WorstRank()

	// Pre-sized slots indexed by iteration: each cell is written exactly
	// once by exactly one goroutine, so no locking is needed beyond the
	// failure counter.
	slots := make([][][]int, numFeatures)
	for f := range slots {
		slots[f] = make([][]int, numModels)
		for m := range slots[f] {
			slots[f][m] = make([]int, n)
		}
	}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		fitFailures int
		fatalErr    error
	)
	sem := semaphore.NewWeighted(a.cfg.MaxParallel)

	for iter := 0; iter < n; iter++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("%w: %v", core.ErrRunCancelled, err)
		}

		wg.Add(1)
		go func(iteration int) {
			defer wg.Done()
			defer sem.Release(1)

			// Independent draw per iteration; the subsample and split are
			// this goroutine's private state.
			stream := a.rng.IterationStream(runID, "stability", iteration)
			sub := ds.SampleFraction(a.cfg.SubsampleFraction, stream)
			train, eval := sub.Split(a.cfg.TrainFraction, stream)
			if eval.Rows() == 0 {
				eval = train
			}

			for mi, family := range a.families {
				ranks, err := a.iterationRanks(ctx, iteration, family, train, eval)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					if core.IsSchemaMismatch(err) {
						mu.Lock()
						if fatalErr == nil {
							fatalErr = err
						}
						mu.Unlock()
						return
					}

					// One bad iteration must not invalidate the rest:
					// record the sentinel for every feature and move on.
					a.logger.Warn("stability iteration %d: %s fit failed, recording sentinel ranks: %v", iteration, family.Name(), err)
					mu.Lock()
					fitFailures++
					mu.Unlock()
					for f := 0; f < numFeatures; f++ {
						slots[f][mi][iteration] = sentinel
					}
					continue
				}

				for f, feature := range a.reg.Names() {
					slots[f][mi][iteration] = ranks[feature]
				}
			}
		}(iter)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		// Partial rank data has no defined semantics; discard wholesale.
		return nil, fmt.Errorf("%w: %v", core.ErrRunCancelled, err)
	}
	if fatalErr != nil {
		return nil, fatalErr
	}

	return a.reduce(slots, fitFailures), nil
}

// iterationRanks fits one family on the iteration's training rows and
// converts its raw importance into a full rank vector. Families without
// native importance are scored by the explainer against the eval rows.
func (a *Analyzer) iterationRanks(ctx context.Context, iteration int, family ports.ModelPort, train, eval *dataset.Table) (map[string]int, error) {
	model, err := family.Fit(ctx, train)
	if err != nil {
		return nil, core.NewIterationFitError(family.Name(), iteration, err)
	}
	raw, err := family.Importance(model)
	if core.IsUnsupportedImportance(err) && a.explainer != nil {
		raw, err = a.explainer.Importance(ctx, model, eval)
	}
	if err != nil {
		return nil, err
	}
	return importance.RankVector(a.reg, raw)
}

// reduce turns the filled rank slots into the immutable summary
func (a *Analyzer) reduce(slots [][][]int, fitFailures int) *Summary {
	modelNames := make([]string, len(a.families))
	for i, f := range a.families {
		modelNames[i] = f.Name()
	}

	refs := a.cfg.ReferenceModels
	if len(refs) == 0 {
		refs = modelNames
		if len(refs) > 2 {
			refs = refs[:2]
		}
	}
	refIndex := make(map[string]bool, len(refs))
	for _, r := range refs {
		refIndex[r] = true
	}

	features := a.reg.Names()
	records := make([]Record, 0, len(features)*len(modelNames))
	avgRanks := make([]FeatureAvgRank, 0, len(features))

	for f, feature := range features {
		refSum, refCount := 0.0, 0
		for m, model := range modelNames {
			observed := slots[f][m]
			asFloat := make([]float64, len(observed))
			for i, r := range observed {
				asFloat[i] = float64(r)
			}
			mean, _ := stats.Mean(asFloat)
			std, _ := stats.StandardDeviationSample(asFloat)

			records = append(records, Record{
				Feature:  feature,
				Model:    model,
				Ranks:    observed,
				MeanRank: mean,
				StdRank:  std,
			})

			if refIndex[model] {
				refSum += mean
				refCount++
			}
		}
		if refCount > 0 {
			avgRanks = append(avgRanks, FeatureAvgRank{Feature: feature, AvgRank: refSum / float64(refCount)})
		}
	}

	// Ascending AvgRank; registry order already breaks ties via SliceStable
	sort.SliceStable(avgRanks, func(i, j int) bool {
		return avgRanks[i].AvgRank < avgRanks[j].AvgRank
	})

	return &Summary{
		Iterations:      a.cfg.Iterations,
		Models:          modelNames,
		ReferenceModels: refs,
		Records:         records,
		AvgRanks:        avgRanks,
		FitFailures:     fitFailures,
	}
}
