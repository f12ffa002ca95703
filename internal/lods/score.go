package lods

// The six LODS component rules. Each is an ordered cascade evaluated from
// most severe to least severe; the first satisfied condition wins. The order
// is a clinical property of the score and must not be rearranged. Comparisons
// against a missing (nil) value are false, so a partially measured stay falls
// through to the conditions its data can support.

func lt(v *float64, threshold float64) bool {
	return v != nil && *v < threshold
}

func ge(v *float64, threshold float64) bool {
	return v != nil && *v >= threshold
}

func points(n int) *int {
	return &n
}

// scoreNeurologic classifies the minimum Glasgow Coma Scale. A GCS below 3 is
// physiologically impossible and treated as an erroneous recording, not
// clamped.
func scoreNeurologic(a *StayAggregate) *int {
	if a.GCSMin == nil {
		return nil
	}
	switch {
	case *a.GCSMin < 3:
		return nil
	case *a.GCSMin <= 5:
		return points(5)
	case *a.GCSMin <= 8:
		return points(3)
	case *a.GCSMin <= 13:
		return points(1)
	}
	return points(0)
}

// scoreCardiovascular is null only when both variables are entirely
// unmeasured; a stay with any heart-rate or systolic-BP extreme recorded is
// classified with whichever conditions its data can support.
func scoreCardiovascular(a *StayAggregate) *int {
	heartRateMissing := a.HeartRateMin == nil && a.HeartRateMax == nil
	sysBPMissing := a.SysBPMin == nil && a.SysBPMax == nil
	if heartRateMissing && sysBPMissing {
		return nil
	}
	switch {
	case lt(a.HeartRateMin, 30):
		return points(5)
	case lt(a.SysBPMin, 40):
		return points(5)
	case lt(a.SysBPMin, 70):
		return points(3)
	case ge(a.SysBPMax, 270):
		return points(3)
	case ge(a.HeartRateMax, 140):
		return points(1)
	case ge(a.SysBPMax, 240):
		return points(1)
	case lt(a.SysBPMin, 90):
		return points(1)
	}
	return points(0)
}

func scoreRenal(a *StayAggregate) *int {
	if a.BUNMax == nil || a.UrineOutput == nil || a.CreatinineMax == nil {
		return nil
	}
	switch {
	case lt(a.UrineOutput, 500):
		return points(5)
	case ge(a.BUNMax, 56):
		return points(5)
	case ge(a.CreatinineMax, 1.60):
		return points(3)
	case lt(a.UrineOutput, 750):
		return points(3)
	case ge(a.BUNMax, 28):
		return points(3)
	case ge(a.UrineOutput, 10000):
		return points(3)
	case ge(a.CreatinineMax, 1.20):
		return points(1)
	case ge(a.BUNMax, 17):
		return points(1)
	case ge(a.BUNMax, 7.50):
		return points(1)
	}
	return points(0)
}

// scorePulmonary is the one rule where a missing measurement scores normal
// rather than unknown: no oxygenation ratio on support means the patient was
// not on support, which the score reads as adequate oxygenation.
func scorePulmonary(a *StayAggregate) *int {
	switch {
	case a.PaO2FiO2SupportMin == nil:
		return points(0)
	case *a.PaO2FiO2SupportMin >= 150:
		return points(1)
	}
	return points(3)
}

func scoreHematologic(a *StayAggregate) *int {
	wbcMissing := a.WBCMin == nil && a.WBCMax == nil
	if wbcMissing && a.PlateletMin == nil {
		return nil
	}
	switch {
	case lt(a.WBCMin, 1.0):
		return points(3)
	case lt(a.WBCMin, 2.5):
		return points(1)
	case lt(a.PlateletMin, 1.0):
		return points(1)
	case ge(a.WBCMax, 50.0):
		return points(1)
	}
	return points(0)
}

func scoreHepatic(a *StayAggregate) *int {
	if a.INRMax == nil && a.BilirubinMax == nil {
		return nil
	}
	switch {
	case ge(a.BilirubinMax, 2.0):
		return points(1)
	case ge(a.INRMax, 1.25):
		return points(1)
	}
	return points(0)
}

// Compose maps one stay's aggregate through the six component rules and sums
// them into the total, imputing nil components as zero. The component values
// in the returned Score keep their nils; only the total substitutes.
func Compose(a *StayAggregate) Score {
	s := Score{
		ICUStayID: a.ICUStayID,
		ComponentScores: ComponentScores{
			Neurologic:     scoreNeurologic(a),
			Cardiovascular: scoreCardiovascular(a),
			Renal:          scoreRenal(a),
			Pulmonary:      scorePulmonary(a),
			Hematologic:    scoreHematologic(a),
			Hepatic:        scoreHepatic(a),
		},
	}

	for _, c := range []*int{
		s.Neurologic, s.Cardiovascular, s.Renal,
		s.Pulmonary, s.Hematologic, s.Hepatic,
	} {
		if c != nil {
			s.Total += *c
		}
	}
	return s
}
