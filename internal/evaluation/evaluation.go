package evaluation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/halfer53/sepsis3-mimic/internal/lods"
	"github.com/halfer53/sepsis3-mimic/internal/mimic"
)

// Labeled pairs one stay's total score with its hospital mortality outcome.
type Labeled struct {
	ICUStayID int64 `json:"icustay_id"`
	Score     int   `json:"score"`
	Died      bool  `json:"died"`
}

// Report summarizes how well the score discriminates hospital mortality on
// one sample.
type Report struct {
	N         int     `json:"n"`
	Positives int     `json:"positives"`
	AUC       float64 `json:"auc"`
	CILower   float64 `json:"ci_lower"`
	CIUpper   float64 `json:"ci_upper"`
}

// Join pairs scores with outcome labels by stay id. Scores without an outcome
// row are dropped: an unlabeled stay cannot contribute to discrimination.
func Join(scores []lods.Score, outcomes []mimic.Outcome) []Labeled {
	died := make(map[int64]bool, len(outcomes))
	for _, o := range outcomes {
		died[o.ICUStayID] = o.HospitalExpireFlag
	}

	var out []Labeled
	for _, s := range scores {
		flag, ok := died[s.ICUStayID]
		if !ok {
			continue
		}
		out = append(out, Labeled{ICUStayID: s.ICUStayID, Score: s.Total, Died: flag})
	}
	return out
}

// Split shuffles the sample with the given seed and divides it into a
// development set of the given fraction and a validation set of the rest. The
// same seed always yields the same split.
func Split(samples []Labeled, devFraction float64, seed int64) (dev, val []Labeled) {
	shuffled := make([]Labeled, len(samples))
	copy(shuffled, samples)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(math.Round(devFraction * float64(len(shuffled))))
	return shuffled[:cut], shuffled[cut:]
}

// AUC computes the area under the ROC curve of the score against mortality.
// It returns an error when the sample has no positives or no negatives, since
// discrimination is undefined on a single-class sample.
func AUC(samples []Labeled) (float64, error) {
	positives := 0
	for _, s := range samples {
		if s.Died {
			positives++
		}
	}
	if positives == 0 || positives == len(samples) {
		return 0, fmt.Errorf("cannot compute AUC: %d positives in %d samples", positives, len(samples))
	}

	sorted := make([]Labeled, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	y := make([]float64, len(sorted))
	classes := make([]bool, len(sorted))
	for i, s := range sorted {
		y[i] = float64(s.Score)
		classes[i] = s.Died
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// BootstrapCI estimates a percentile confidence interval for the AUC by
// resampling with replacement. Resamples that collapse to a single class are
// redrawn.
func BootstrapCI(samples []Labeled, iterations int, confidence float64, seed int64) (lower, upper float64, err error) {
	if _, err := AUC(samples); err != nil {
		return 0, 0, err
	}

	rng := rand.New(rand.NewSource(seed))
	aucs := make([]float64, 0, iterations)
	resample := make([]Labeled, len(samples))

	for len(aucs) < iterations {
		for i := range resample {
			resample[i] = samples[rng.Intn(len(samples))]
		}
		a, err := AUC(resample)
		if err != nil {
			continue
		}
		aucs = append(aucs, a)
	}

	sort.Float64s(aucs)
	alpha := (1 - confidence) / 2
	lo := int(alpha * float64(len(aucs)))
	hi := int((1 - alpha) * float64(len(aucs)))
	if hi >= len(aucs) {
		hi = len(aucs) - 1
	}
	return aucs[lo], aucs[hi], nil
}

// Evaluate builds the full discrimination report for one sample.
func Evaluate(samples []Labeled, bootstrapIterations int, seed int64) (*Report, error) {
	auc, err := AUC(samples)
	if err != nil {
		return nil, err
	}
	lower, upper, err := BootstrapCI(samples, bootstrapIterations, 0.95, seed)
	if err != nil {
		return nil, err
	}

	positives := 0
	for _, s := range samples {
		if s.Died {
			positives++
		}
	}
	return &Report{
		N:         len(samples),
		Positives: positives,
		AUC:       auc,
		CILower:   lower,
		CIUpper:   upper,
	}, nil
}
