package lods

import (
	"regexp"
	"time"

	"github.com/halfer53/sepsis3-mimic/internal/mimic"
)

// Charting lags behind the bedside: the detected interval is padded 1 hour
// before the first matching event and 4 hours after the last.
const (
	cpapStartMargin = time.Hour
	cpapEndMargin   = 4 * time.Hour
)

var cpapPattern = regexp.MustCompile(`(?i)(cpap mask|bipap mask)`)

// TherapyInterval is a contiguous period during which a supportive therapy
// was active for a stay. StartTime <= EndTime always holds.
type TherapyInterval struct {
	ICUStayID int64     `json:"icustay_id"`
	StartTime time.Time `json:"starttime"`
	EndTime   time.Time `json:"endtime"`
}

// Contains reports whether t falls inside the interval, bounds inclusive.
func (iv TherapyInterval) Contains(t time.Time) bool {
	return !t.Before(iv.StartTime) && !t.After(iv.EndTime)
}

// DetectCPAP collapses all valid oxygen-delivery events whose value matches a
// CPAP/BiPAP mask label into at most one padded interval per stay. Events
// marked erroneous are excluded before matching. Stays with no matching event
// get no interval at all, not a zero-length one. Non-contiguous CPAP use is
// deliberately collapsed into a single min/max span.
func DetectCPAP(events []mimic.ObservationEvent) map[int64]TherapyInterval {
	type span struct {
		first time.Time
		last  time.Time
	}
	spans := make(map[int64]span)

	for i := range events {
		e := &events[i]
		if !e.Valid() {
			continue
		}
		if !cpapPattern.MatchString(e.Value) {
			continue
		}

		s, ok := spans[e.ICUStayID]
		if !ok {
			spans[e.ICUStayID] = span{first: e.ChartTime, last: e.ChartTime}
			continue
		}
		if e.ChartTime.Before(s.first) {
			s.first = e.ChartTime
		}
		if e.ChartTime.After(s.last) {
			s.last = e.ChartTime
		}
		spans[e.ICUStayID] = s
	}

	intervals := make(map[int64]TherapyInterval, len(spans))
	for stayID, s := range spans {
		intervals[stayID] = TherapyInterval{
			ICUStayID: stayID,
			StartTime: s.first.Add(-cpapStartMargin),
			EndTime:   s.last.Add(cpapEndMargin),
		}
	}
	return intervals
}
