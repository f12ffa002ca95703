package lods

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/halfer53/sepsis3-mimic/internal/mimic"
)

// fakeRepo serves fixed rows, standing in for the MIMIC database.
type fakeRepo struct {
	stays        []mimic.Stay
	deviceEvents []mimic.ObservationEvent
	vents        []mimic.VentDuration
	gases        []mimic.BloodGas
	gcs          []mimic.GCSSummary
	vitals       []mimic.VitalsSummary
	labs         []mimic.LabsSummary
	urine        []mimic.UrineOutputSummary
	suspicions   []mimic.Suspicion
	outcomes     []mimic.Outcome
}

func (r *fakeRepo) ListStays(context.Context) ([]mimic.Stay, error) { return r.stays, nil }
func (r *fakeRepo) ListOxygenDeviceEvents(context.Context) ([]mimic.ObservationEvent, error) {
	return r.deviceEvents, nil
}
func (r *fakeRepo) ListVentDurations(context.Context) ([]mimic.VentDuration, error) {
	return r.vents, nil
}
func (r *fakeRepo) ListBloodGases(context.Context) ([]mimic.BloodGas, error) { return r.gases, nil }
func (r *fakeRepo) ListGCS(context.Context) ([]mimic.GCSSummary, error)      { return r.gcs, nil }
func (r *fakeRepo) ListVitals(context.Context) ([]mimic.VitalsSummary, error) {
	return r.vitals, nil
}
func (r *fakeRepo) ListLabs(context.Context) ([]mimic.LabsSummary, error) { return r.labs, nil }
func (r *fakeRepo) ListUrineOutputs(context.Context) ([]mimic.UrineOutputSummary, error) {
	return r.urine, nil
}
func (r *fakeRepo) ListSuspicions(context.Context) ([]mimic.Suspicion, error) {
	return r.suspicions, nil
}
func (r *fakeRepo) ListOutcomes(context.Context) ([]mimic.Outcome, error) {
	return r.outcomes, nil
}

// captureStore records the last ReplaceAll call.
type captureStore struct {
	run    *Run
	scores []Score
}

func (s *captureStore) ReplaceAll(_ context.Context, run *Run, scores []Score) error {
	s.run = run
	s.scores = scores
	return nil
}
func (s *captureStore) List(context.Context, int, int) ([]Score, int, error) { return nil, 0, nil }
func (s *captureStore) GetByStayID(context.Context, int64) (*Score, error) {
	return nil, ErrNotFound
}
func (s *captureStore) ListRuns(context.Context, int) ([]Run, error) { return nil, nil }

func testPipeline(repo mimic.Repository) *Pipeline {
	return NewPipeline(repo, zerolog.Nop(), 2)
}

func at(h int) time.Time {
	return time.Date(2150, 3, 10, h, 0, 0, 0, time.UTC)
}

func TestPipeline_ScoresEligibleStays(t *testing.T) {
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{suspected(1)},
		gcs:        []mimic.GCSSummary{{ICUStayID: 1, GCSMin: f(4)}},
		vitals: []mimic.VitalsSummary{{
			ICUStayID:    1,
			HeartRateMin: f(60), HeartRateMax: f(100),
			SysBPMin: f(100), SysBPMax: f(130),
		}},
		labs: []mimic.LabsSummary{{
			ICUStayID: 1,
			BUNMax:    f(6), CreatinineMax: f(0.9),
			WBCMin: f(6), WBCMax: f(11),
			BilirubinMax: f(0.8), INRMax: f(1.0),
			PlateletMin: f(250),
		}},
		urine: []mimic.UrineOutputSummary{{ICUStayID: 1, UrineOutput: f(1500)}},
	}

	scores, err := testPipeline(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}

	s := scores[0]
	if s.Neurologic == nil || *s.Neurologic != 5 {
		t.Errorf("gcs 4 should score neurologic 5, got %v", s.Neurologic)
	}
	if s.Total != 5 {
		t.Errorf("total = %d, want 5", s.Total)
	}
}

func TestPipeline_SkipsStaysWithoutInfectionMarker(t *testing.T) {
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{
			suspected(1),
			{ICUStayID: 2},
		},
		gcs: []mimic.GCSSummary{
			{ICUStayID: 1, GCSMin: f(15)},
			{ICUStayID: 2, GCSMin: f(15)},
		},
	}

	scores, err := testPipeline(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(scores) != 1 || scores[0].ICUStayID != 1 {
		t.Fatalf("expected stay 1 only, got %+v", scores)
	}
}

func TestPipeline_CPAPOnlyRatioQualifies(t *testing.T) {
	// A low ratio measured under CPAP alone, with no ventilation interval at
	// all, still drives the pulmonary score.
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{suspected(3)},
		deviceEvents: []mimic.ObservationEvent{
			{ICUStayID: 3, ChartTime: at(8), ItemID: 467, Value: "CPAP mask"},
		},
		gases: []mimic.BloodGas{
			// Inside the padded CPAP window.
			{ICUStayID: 3, ChartTime: at(9), PaO2FiO2: 120},
			// Outside any support interval; must not lower the minimum.
			{ICUStayID: 3, ChartTime: at(20), PaO2FiO2: 80},
		},
	}

	scores, err := testPipeline(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}

	s := scores[0]
	if s.Pulmonary == nil || *s.Pulmonary != 3 {
		t.Errorf("ratio 120 on CPAP should score pulmonary 3, got %v", s.Pulmonary)
	}
}

func TestPipeline_UnsupportedRatioScoresZero(t *testing.T) {
	// Blood gases exist but never during support, so the pulmonary input is
	// absent and the component falls back to zero.
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{suspected(5)},
		gases: []mimic.BloodGas{
			{ICUStayID: 5, ChartTime: at(9), PaO2FiO2: 90},
		},
	}

	scores, err := testPipeline(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := scores[0]
	if s.Pulmonary == nil || *s.Pulmonary != 0 {
		t.Errorf("unsupported ratio should score pulmonary 0, got %v", s.Pulmonary)
	}
}

func TestPipeline_AllInputsMissingScoresZeroTotal(t *testing.T) {
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{suspected(9)},
	}

	scores, err := testPipeline(repo).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := scores[0]
	if s.Total != 0 {
		t.Errorf("total = %d, want 0", s.Total)
	}
	if s.Neurologic != nil || s.Cardiovascular != nil || s.Renal != nil ||
		s.Hematologic != nil || s.Hepatic != nil {
		t.Error("components without inputs must stay nil")
	}
	if s.Pulmonary == nil || *s.Pulmonary != 0 {
		t.Errorf("pulmonary should be 0, got %v", s.Pulmonary)
	}
}

func TestPipeline_RerunIsDeterministic(t *testing.T) {
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{suspected(12), suspected(3), suspected(7)},
		gcs: []mimic.GCSSummary{
			{ICUStayID: 3, GCSMin: f(6)},
			{ICUStayID: 7, GCSMin: f(13)},
			{ICUStayID: 12, GCSMin: f(15)},
		},
		vitals: []mimic.VitalsSummary{
			{ICUStayID: 7, HeartRateMin: f(25), HeartRateMax: f(150), SysBPMin: f(80), SysBPMax: f(120)},
		},
	}
	p := testPipeline(repo)

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("reruns over unchanged inputs must produce identical output")
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ICUStayID >= first[i].ICUStayID {
			t.Fatalf("output not ordered by stay id: %d before %d",
				first[i-1].ICUStayID, first[i].ICUStayID)
		}
	}
}

func TestPipeline_RunAndStore(t *testing.T) {
	repo := &fakeRepo{
		suspicions: []mimic.Suspicion{suspected(1), suspected(2)},
	}
	store := &captureStore{}

	run, err := testPipeline(repo).RunAndStore(context.Background(), store)
	if err != nil {
		t.Fatalf("RunAndStore: %v", err)
	}

	if store.run == nil {
		t.Fatal("store never received the run")
	}
	if store.run.ID != run.ID {
		t.Error("stored run id differs from returned run")
	}
	if run.StayCount != 2 || len(store.scores) != 2 {
		t.Errorf("stay count = %d, stored scores = %d, want 2 and 2",
			run.StayCount, len(store.scores))
	}
	if run.FinishedAt == nil {
		t.Error("run must carry a finish time when stored")
	}
}
