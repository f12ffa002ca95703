package mimic

import "time"

// Stay is one continuous ICU admission episode, the unit of scoring. Rows come
// from the icustays reference table and are never written by this service.
type Stay struct {
	ICUStayID int64     `db:"icustay_id" json:"icustay_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	HadmID    int64     `db:"hadm_id" json:"hadm_id"`
	InTime    time.Time `db:"intime" json:"intime"`
	OutTime   time.Time `db:"outtime" json:"outtime"`
}

// ObservationEvent is a single timestamped chart entry for a stay. ErrorFlag
// carries the bedside system's "marked erroneous" flag; NULL and 0 both mean
// the event is valid.
type ObservationEvent struct {
	ICUStayID int64     `db:"icustay_id" json:"icustay_id"`
	ChartTime time.Time `db:"charttime" json:"charttime"`
	ItemID    int       `db:"itemid" json:"itemid"`
	Value     string    `db:"value" json:"value"`
	ErrorFlag *int16    `db:"error" json:"error,omitempty"`
}

// Valid reports whether the event was not marked erroneous at the bedside.
func (e *ObservationEvent) Valid() bool {
	return e.ErrorFlag == nil || *e.ErrorFlag == 0
}

// VentDuration is an externally computed mechanical-ventilation interval.
type VentDuration struct {
	ICUStayID int64     `db:"icustay_id" json:"icustay_id"`
	StartTime time.Time `db:"starttime" json:"starttime"`
	EndTime   time.Time `db:"endtime" json:"endtime"`
}

// BloodGas is one arterial blood-gas measurement carrying a PaO2/FiO2 ratio.
type BloodGas struct {
	ICUStayID int64     `db:"icustay_id" json:"icustay_id"`
	ChartTime time.Time `db:"charttime" json:"charttime"`
	PaO2FiO2  float64   `db:"pao2fio2" json:"pao2fio2"`
}

// GCSSummary is the per-stay Glasgow Coma Scale extreme from the upstream
// summary view. Nil means no GCS was charted for the stay.
type GCSSummary struct {
	ICUStayID int64    `db:"icustay_id" json:"icustay_id"`
	GCSMin    *float64 `db:"mingcs" json:"mingcs,omitempty"`
}

// VitalsSummary holds per-stay vital-sign extremes. A nil field means the
// vital was never charted for the stay.
type VitalsSummary struct {
	ICUStayID    int64    `db:"icustay_id" json:"icustay_id"`
	HeartRateMin *float64 `db:"heartrate_min" json:"heartrate_min,omitempty"`
	HeartRateMax *float64 `db:"heartrate_max" json:"heartrate_max,omitempty"`
	SysBPMin     *float64 `db:"sysbp_min" json:"sysbp_min,omitempty"`
	SysBPMax     *float64 `db:"sysbp_max" json:"sysbp_max,omitempty"`
}

// LabsSummary holds per-stay laboratory extremes.
type LabsSummary struct {
	ICUStayID     int64    `db:"icustay_id" json:"icustay_id"`
	BUNMin        *float64 `db:"bun_min" json:"bun_min,omitempty"`
	BUNMax        *float64 `db:"bun_max" json:"bun_max,omitempty"`
	WBCMin        *float64 `db:"wbc_min" json:"wbc_min,omitempty"`
	WBCMax        *float64 `db:"wbc_max" json:"wbc_max,omitempty"`
	BilirubinMax  *float64 `db:"bilirubin_max" json:"bilirubin_max,omitempty"`
	CreatinineMax *float64 `db:"creatinine_max" json:"creatinine_max,omitempty"`
	INRMax        *float64 `db:"inr_max" json:"inr_max,omitempty"`
	PlateletMin   *float64 `db:"platelet_min" json:"platelet_min,omitempty"`
}

// UrineOutputSummary is the per-stay urine output total.
type UrineOutputSummary struct {
	ICUStayID   int64    `db:"icustay_id" json:"icustay_id"`
	UrineOutput *float64 `db:"urineoutput" json:"urineoutput,omitempty"`
}

// Suspicion marks a stay as eligible for scoring: a non-nil
// SuspectedInfectionTime admits the stay into the pipeline output.
type Suspicion struct {
	ICUStayID              int64      `db:"icustay_id" json:"icustay_id"`
	SuspectedInfectionTime *time.Time `db:"suspected_infection_time" json:"suspected_infection_time,omitempty"`
}

// Outcome pairs a stay with its hospital mortality flag, used by the
// evaluation command.
type Outcome struct {
	ICUStayID          int64 `db:"icustay_id" json:"icustay_id"`
	HospitalExpireFlag bool  `db:"hospital_expire_flag" json:"hospital_expire_flag"`
}
