package mimic

import "context"

// OxygenDeviceItemIDs are the chart item codes recording the oxygen delivery
// device in use. Only events under these items are candidates for CPAP/BiPAP
// detection.
var OxygenDeviceItemIDs = []int{467, 469, 226732}

// Repository reads the external MIMIC tables and summary views the pipeline
// consumes. All methods are read-only snapshots; the underlying tables are
// owned and maintained upstream.
type Repository interface {
	// ListStays returns every ICU stay reference row.
	ListStays(ctx context.Context) ([]Stay, error)

	// ListOxygenDeviceEvents returns chart events under the oxygen-delivery
	// item codes, restricted to each stay's [intime, outtime] window. Value
	// pattern matching and error-flag exclusion happen downstream.
	ListOxygenDeviceEvents(ctx context.Context) ([]ObservationEvent, error)

	// ListVentDurations returns the externally computed mechanical-ventilation
	// intervals.
	ListVentDurations(ctx context.Context) ([]VentDuration, error)

	// ListBloodGases returns arterial blood-gas rows that carry a PaO2/FiO2
	// ratio.
	ListBloodGases(ctx context.Context) ([]BloodGas, error)

	// ListGCS returns the per-stay Glasgow Coma Scale summary rows.
	ListGCS(ctx context.Context) ([]GCSSummary, error)

	// ListVitals returns the per-stay vital-sign extreme rows.
	ListVitals(ctx context.Context) ([]VitalsSummary, error)

	// ListLabs returns the per-stay laboratory extreme rows.
	ListLabs(ctx context.Context) ([]LabsSummary, error)

	// ListUrineOutputs returns the per-stay urine output totals.
	ListUrineOutputs(ctx context.Context) ([]UrineOutputSummary, error)

	// ListSuspicions returns the suspected-infection eligibility markers.
	ListSuspicions(ctx context.Context) ([]Suspicion, error)

	// ListOutcomes returns hospital mortality flags per stay.
	ListOutcomes(ctx context.Context) ([]Outcome, error)
}
