package lods

import "github.com/halfer53/sepsis3-mimic/internal/mimic"

// FlaggedBloodGas is one PaO2/FiO2 measurement annotated with the therapies
// active at measurement time. The flags are independent: a measurement can
// overlap both a ventilation interval and a CPAP interval.
type FlaggedBloodGas struct {
	ICUStayID int64   `json:"icustay_id"`
	PaO2FiO2  float64 `json:"pao2fio2"`
	OnVent    bool    `json:"on_vent"`
	OnCPAP    bool    `json:"on_cpap"`
}

// FlagBloodGas attributes each oxygenation measurement to active respiratory
// support: on-ventilation if its timestamp falls inside any ventilation
// interval for the stay, on-CPAP if inside the stay's detected CPAP interval.
// Interval counts per stay are small, so a linear scan suffices.
func FlagBloodGas(gases []mimic.BloodGas, vents []mimic.VentDuration, cpap map[int64]TherapyInterval) []FlaggedBloodGas {
	ventsByStay := make(map[int64][]mimic.VentDuration)
	for _, v := range vents {
		ventsByStay[v.ICUStayID] = append(ventsByStay[v.ICUStayID], v)
	}

	flagged := make([]FlaggedBloodGas, 0, len(gases))
	for _, g := range gases {
		f := FlaggedBloodGas{ICUStayID: g.ICUStayID, PaO2FiO2: g.PaO2FiO2}

		for _, v := range ventsByStay[g.ICUStayID] {
			if !g.ChartTime.Before(v.StartTime) && !g.ChartTime.After(v.EndTime) {
				f.OnVent = true
				break
			}
		}
		if iv, ok := cpap[g.ICUStayID]; ok && iv.Contains(g.ChartTime) {
			f.OnCPAP = true
		}

		flagged = append(flagged, f)
	}
	return flagged
}

// MinSupportedRatio reduces flagged measurements to the per-stay minimum
// PaO2/FiO2 over measurements taken on support. Stays with no flagged
// measurement are absent from the result, not present with a null.
func MinSupportedRatio(flagged []FlaggedBloodGas) map[int64]float64 {
	mins := make(map[int64]float64)
	for _, f := range flagged {
		if !f.OnVent && !f.OnCPAP {
			continue
		}
		if cur, ok := mins[f.ICUStayID]; !ok || f.PaO2FiO2 < cur {
			mins[f.ICUStayID] = f.PaO2FiO2
		}
	}
	return mins
}
