package lods

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/halfer53/sepsis3-mimic/internal/mimic"
)

// Pipeline computes LODS scores for every eligible stay in one batch pass.
// It holds no state between runs: every Run reloads its inputs and recomputes
// from scratch, so reruns over unchanged tables produce identical output.
type Pipeline struct {
	inputs  mimic.Repository
	logger  zerolog.Logger
	workers int
}

// NewPipeline creates a Pipeline reading from the given input repository.
// workers bounds the per-stay composition fan-out; values below 1 fall back
// to GOMAXPROCS.
func NewPipeline(inputs mimic.Repository, logger zerolog.Logger, workers int) *Pipeline {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{inputs: inputs, logger: logger, workers: workers}
}

// Run executes the four stages and returns one Score per eligible stay,
// ordered by stay id.
func (p *Pipeline) Run(ctx context.Context) ([]Score, error) {
	start := time.Now()

	events, err := p.inputs.ListOxygenDeviceEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load oxygen device events: %w", err)
	}
	vents, err := p.inputs.ListVentDurations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ventilation durations: %w", err)
	}
	gases, err := p.inputs.ListBloodGases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load blood gases: %w", err)
	}
	suspicions, err := p.inputs.ListSuspicions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load suspicion markers: %w", err)
	}
	gcs, err := p.inputs.ListGCS(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gcs summaries: %w", err)
	}
	vitals, err := p.inputs.ListVitals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vitals summaries: %w", err)
	}
	labs, err := p.inputs.ListLabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load labs summaries: %w", err)
	}
	urine, err := p.inputs.ListUrineOutputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load urine output summaries: %w", err)
	}

	cpap := DetectCPAP(events)
	flagged := FlagBloodGas(gases, vents, cpap)
	ratios := MinSupportedRatio(flagged)

	aggs := BuildAggregates(AggregateInputs{
		Suspicions:      suspicions,
		GCS:             gcs,
		Vitals:          vitals,
		Labs:            labs,
		UrineOutputs:    urine,
		SupportRatioMin: ratios,
	})

	p.logger.Info().
		Int("device_events", len(events)).
		Int("cpap_intervals", len(cpap)).
		Int("blood_gases", len(gases)).
		Int("eligible_stays", len(aggs)).
		Msg("inputs loaded")

	// Each stay is scored independently; results land in their own slot so
	// the output order stays deterministic.
	scores := make([]Score, len(aggs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range aggs {
		i := i
		g.Go(func() error {
			scores[i] = Compose(&aggs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info().
		Int("stays_scored", len(scores)).
		Dur("elapsed", time.Since(start)).
		Msg("scoring complete")

	return scores, nil
}

// RunAndStore executes the pipeline and persists the results under a fresh
// run id, superseding any previous run's rows.
func (p *Pipeline) RunAndStore(ctx context.Context, store ScoreRepository) (*Run, error) {
	run := &Run{ID: uuid.New(), StartedAt: time.Now().UTC()}

	scores, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}

	run.StayCount = len(scores)
	finished := time.Now().UTC()
	run.FinishedAt = &finished

	if err := store.ReplaceAll(ctx, run, scores); err != nil {
		return nil, fmt.Errorf("store scores: %w", err)
	}

	p.logger.Info().
		Str("run_id", run.ID.String()).
		Int("stay_count", run.StayCount).
		Msg("run stored")

	return run, nil
}
