package mimic

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepository creates a Postgres-backed Repository over the MIMIC tables.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) ListStays(ctx context.Context) ([]Stay, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT icustay_id, subject_id, hadm_id, intime, outtime
		FROM icustays
		ORDER BY icustay_id`)
	if err != nil {
		return nil, fmt.Errorf("query icustays: %w", err)
	}
	defer rows.Close()

	var stays []Stay
	for rows.Next() {
		var s Stay
		if err := rows.Scan(&s.ICUStayID, &s.SubjectID, &s.HadmID, &s.InTime, &s.OutTime); err != nil {
			return nil, fmt.Errorf("scan icustay: %w", err)
		}
		stays = append(stays, s)
	}
	return stays, rows.Err()
}

func (r *repoPG) ListOxygenDeviceEvents(ctx context.Context) ([]ObservationEvent, error) {
	// Chart events outside the stay bounds are charting artifacts and never
	// attributed to the stay.
	query := fmt.Sprintf(`
		SELECT ce.icustay_id, ce.charttime, ce.itemid, ce.value, ce.error
		FROM chartevents ce
		INNER JOIN icustays ie
			ON ce.icustay_id = ie.icustay_id
			AND ce.charttime BETWEEN ie.intime AND ie.outtime
		WHERE ce.icustay_id IS NOT NULL
		  AND ce.value IS NOT NULL
		  AND ce.itemid IN (%s)
		ORDER BY ce.icustay_id, ce.charttime`, itemIDList(OxygenDeviceItemIDs))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query oxygen device events: %w", err)
	}
	defer rows.Close()

	var events []ObservationEvent
	for rows.Next() {
		var e ObservationEvent
		if err := rows.Scan(&e.ICUStayID, &e.ChartTime, &e.ItemID, &e.Value, &e.ErrorFlag); err != nil {
			return nil, fmt.Errorf("scan chartevent: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repoPG) ListVentDurations(ctx context.Context) ([]VentDuration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT icustay_id, starttime, endtime
		FROM ventdurations
		ORDER BY icustay_id, starttime`)
	if err != nil {
		return nil, fmt.Errorf("query ventdurations: %w", err)
	}
	defer rows.Close()

	var vents []VentDuration
	for rows.Next() {
		var v VentDuration
		if err := rows.Scan(&v.ICUStayID, &v.StartTime, &v.EndTime); err != nil {
			return nil, fmt.Errorf("scan ventduration: %w", err)
		}
		vents = append(vents, v)
	}
	return vents, rows.Err()
}

func (r *repoPG) ListBloodGases(ctx context.Context) ([]BloodGas, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT icustay_id, charttime, pao2fio2
		FROM bloodgasarterial
		WHERE pao2fio2 IS NOT NULL
		ORDER BY icustay_id, charttime`)
	if err != nil {
		return nil, fmt.Errorf("query blood gases: %w", err)
	}
	defer rows.Close()

	var gases []BloodGas
	for rows.Next() {
		var g BloodGas
		if err := rows.Scan(&g.ICUStayID, &g.ChartTime, &g.PaO2FiO2); err != nil {
			return nil, fmt.Errorf("scan blood gas: %w", err)
		}
		gases = append(gases, g)
	}
	return gases, rows.Err()
}

func (r *repoPG) ListGCS(ctx context.Context) ([]GCSSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT icustay_id, mingcs FROM gcs_summary`)
	if err != nil {
		return nil, fmt.Errorf("query gcs summary: %w", err)
	}
	defer rows.Close()

	var out []GCSSummary
	for rows.Next() {
		var g GCSSummary
		if err := rows.Scan(&g.ICUStayID, &g.GCSMin); err != nil {
			return nil, fmt.Errorf("scan gcs summary: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repoPG) ListVitals(ctx context.Context) ([]VitalsSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT icustay_id, heartrate_min, heartrate_max, sysbp_min, sysbp_max
		FROM vitals_summary`)
	if err != nil {
		return nil, fmt.Errorf("query vitals summary: %w", err)
	}
	defer rows.Close()

	var out []VitalsSummary
	for rows.Next() {
		var v VitalsSummary
		if err := rows.Scan(&v.ICUStayID, &v.HeartRateMin, &v.HeartRateMax, &v.SysBPMin, &v.SysBPMax); err != nil {
			return nil, fmt.Errorf("scan vitals summary: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repoPG) ListLabs(ctx context.Context) ([]LabsSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT icustay_id, bun_min, bun_max, wbc_min, wbc_max,
			bilirubin_max, creatinine_max, inr_max, platelet_min
		FROM labs_summary`)
	if err != nil {
		return nil, fmt.Errorf("query labs summary: %w", err)
	}
	defer rows.Close()

	var out []LabsSummary
	for rows.Next() {
		var l LabsSummary
		if err := rows.Scan(&l.ICUStayID, &l.BUNMin, &l.BUNMax, &l.WBCMin, &l.WBCMax,
			&l.BilirubinMax, &l.CreatinineMax, &l.INRMax, &l.PlateletMin); err != nil {
			return nil, fmt.Errorf("scan labs summary: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repoPG) ListUrineOutputs(ctx context.Context) ([]UrineOutputSummary, error) {
	rows, err := r.pool.Query(ctx, `SELECT icustay_id, urineoutput FROM urineoutput_summary`)
	if err != nil {
		return nil, fmt.Errorf("query urine output summary: %w", err)
	}
	defer rows.Close()

	var out []UrineOutputSummary
	for rows.Next() {
		var u UrineOutputSummary
		if err := rows.Scan(&u.ICUStayID, &u.UrineOutput); err != nil {
			return nil, fmt.Errorf("scan urine output summary: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repoPG) ListSuspicions(ctx context.Context) ([]Suspicion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT icustay_id, suspected_infection_time
		FROM suspicion_of_infection`)
	if err != nil {
		return nil, fmt.Errorf("query suspicion of infection: %w", err)
	}
	defer rows.Close()

	var out []Suspicion
	for rows.Next() {
		var s Suspicion
		if err := rows.Scan(&s.ICUStayID, &s.SuspectedInfectionTime); err != nil {
			return nil, fmt.Errorf("scan suspicion: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repoPG) ListOutcomes(ctx context.Context) ([]Outcome, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ie.icustay_id, adm.hospital_expire_flag = 1
		FROM icustays ie
		INNER JOIN admissions adm ON ie.hadm_id = adm.hadm_id`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		if err := rows.Scan(&o.ICUStayID, &o.HospitalExpireFlag); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func itemIDList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
