package lods

import (
	"time"

	"github.com/google/uuid"
)

// StayAggregate is the worst-value summary of one ICU stay, the input to
// score composition. A nil field means no qualifying event exists for that
// stay/variable — unknown, never zero.
type StayAggregate struct {
	ICUStayID int64 `json:"icustay_id"`

	GCSMin *float64 `json:"gcs_min,omitempty"`

	HeartRateMin *float64 `json:"heartrate_min,omitempty"`
	HeartRateMax *float64 `json:"heartrate_max,omitempty"`
	SysBPMin     *float64 `json:"sysbp_min,omitempty"`
	SysBPMax     *float64 `json:"sysbp_max,omitempty"`

	// PaO2FiO2SupportMin is the minimum oxygenation ratio restricted to
	// measurements taken on ventilation or CPAP. Nil means the patient was
	// never measured while on respiratory support.
	PaO2FiO2SupportMin *float64 `json:"pao2fio2_support_min,omitempty"`

	BUNMin        *float64 `json:"bun_min,omitempty"`
	BUNMax        *float64 `json:"bun_max,omitempty"`
	WBCMin        *float64 `json:"wbc_min,omitempty"`
	WBCMax        *float64 `json:"wbc_max,omitempty"`
	BilirubinMax  *float64 `json:"bilirubin_max,omitempty"`
	CreatinineMax *float64 `json:"creatinine_max,omitempty"`
	INRMax        *float64 `json:"inr_max,omitempty"`
	PlateletMin   *float64 `json:"platelet_min,omitempty"`
	UrineOutput   *float64 `json:"urineoutput,omitempty"`
}

// ComponentScores are the six organ-system sub-scores. A nil component means
// its inputs were entirely unavailable; the total imputes such components as
// zero but the nil is preserved in output.
type ComponentScores struct {
	Neurologic     *int `db:"neurologic" json:"neurologic"`
	Cardiovascular *int `db:"cardiovascular" json:"cardiovascular"`
	Renal          *int `db:"renal" json:"renal"`
	Pulmonary      *int `db:"pulmonary" json:"pulmonary"`
	Hematologic    *int `db:"hematologic" json:"hematologic"`
	Hepatic        *int `db:"hepatic" json:"hepatic"`
}

// Score is the final output row for one eligible stay.
type Score struct {
	ICUStayID int64 `db:"icustay_id" json:"icustay_id"`
	Total     int   `db:"lods" json:"lods"`
	ComponentScores
}

// Run records one scoring invocation for auditability.
type Run struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
	StayCount  int        `db:"stay_count" json:"stay_count"`
}
