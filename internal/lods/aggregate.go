package lods

import (
	"sort"

	"github.com/halfer53/sepsis3-mimic/internal/mimic"
)

// AggregateInputs carries the per-stay summary rows the aggregation stage
// fans in. Each slice comes from a dedicated upstream view and may be missing
// rows for any given stay.
type AggregateInputs struct {
	Suspicions   []mimic.Suspicion
	GCS          []mimic.GCSSummary
	Vitals       []mimic.VitalsSummary
	Labs         []mimic.LabsSummary
	UrineOutputs []mimic.UrineOutputSummary

	// SupportRatioMin is stage 2's output: per-stay minimum PaO2/FiO2 on
	// respiratory support. Stays absent from the map were never measured on
	// support.
	SupportRatioMin map[int64]float64
}

// BuildAggregates joins the summary views into one StayAggregate per eligible
// stay. Eligibility is solely a non-nil suspected-infection time; a stay
// missing any summary row simply carries nils for that summary's fields and
// is never dropped for it. Output is ordered by stay id so reruns over the
// same inputs produce identical output.
func BuildAggregates(in AggregateInputs) []StayAggregate {
	gcsByStay := make(map[int64]mimic.GCSSummary, len(in.GCS))
	for _, g := range in.GCS {
		gcsByStay[g.ICUStayID] = g
	}
	vitalsByStay := make(map[int64]mimic.VitalsSummary, len(in.Vitals))
	for _, v := range in.Vitals {
		vitalsByStay[v.ICUStayID] = v
	}
	labsByStay := make(map[int64]mimic.LabsSummary, len(in.Labs))
	for _, l := range in.Labs {
		labsByStay[l.ICUStayID] = l
	}
	uoByStay := make(map[int64]mimic.UrineOutputSummary, len(in.UrineOutputs))
	for _, u := range in.UrineOutputs {
		uoByStay[u.ICUStayID] = u
	}

	var aggs []StayAggregate
	for _, s := range in.Suspicions {
		if s.SuspectedInfectionTime == nil {
			continue
		}

		agg := StayAggregate{ICUStayID: s.ICUStayID}

		if g, ok := gcsByStay[s.ICUStayID]; ok {
			agg.GCSMin = g.GCSMin
		}
		if v, ok := vitalsByStay[s.ICUStayID]; ok {
			agg.HeartRateMin = v.HeartRateMin
			agg.HeartRateMax = v.HeartRateMax
			agg.SysBPMin = v.SysBPMin
			agg.SysBPMax = v.SysBPMax
		}
		if l, ok := labsByStay[s.ICUStayID]; ok {
			agg.BUNMin = l.BUNMin
			agg.BUNMax = l.BUNMax
			agg.WBCMin = l.WBCMin
			agg.WBCMax = l.WBCMax
			agg.BilirubinMax = l.BilirubinMax
			agg.CreatinineMax = l.CreatinineMax
			agg.INRMax = l.INRMax
			agg.PlateletMin = l.PlateletMin
		}
		if u, ok := uoByStay[s.ICUStayID]; ok {
			agg.UrineOutput = u.UrineOutput
		}
		if ratio, ok := in.SupportRatioMin[s.ICUStayID]; ok {
			r := ratio
			agg.PaO2FiO2SupportMin = &r
		}

		aggs = append(aggs, agg)
	}

	sort.Slice(aggs, func(i, j int) bool {
		return aggs[i].ICUStayID < aggs[j].ICUStayID
	})
	return aggs
}
