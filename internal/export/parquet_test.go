package export

import (
	"os"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/halfer53/sepsis3-mimic/internal/lods"
)

func pts(n int) *int { return &n }

func TestScoreWriter(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "scores_*.parquet")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	writer, err := NewScoreWriter(tmpPath)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}

	scores := []lods.Score{
		{ICUStayID: 101, Total: 8, ComponentScores: lods.ComponentScores{
			Neurologic:     pts(5),
			Cardiovascular: pts(3),
			Pulmonary:      pts(0),
			Hematologic:    pts(0),
			Hepatic:        pts(0),
		}},
		{ICUStayID: 102, Total: 0, ComponentScores: lods.ComponentScores{
			Pulmonary: pts(0),
		}},
	}
	if err := writer.WriteAll(scores); err != nil {
		t.Fatalf("write scores: %v", err)
	}
	if writer.Count() != 2 {
		t.Errorf("expected count 2, got %d", writer.Count())
	}

	records, err := parquet.ReadFile[scoreRecord](tmpPath)
	if err != nil {
		t.Fatalf("read parquet file: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ICUStayID != 101 || first.LODS != 8 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Neurologic == nil || *first.Neurologic != 5 {
		t.Errorf("expected neurologic 5, got %v", first.Neurologic)
	}
	// Renal had no inputs and must survive the round trip as null.
	if first.Renal != nil {
		t.Errorf("expected nil renal, got %v", first.Renal)
	}

	second := records[1]
	if second.LODS != 0 {
		t.Errorf("expected total 0, got %d", second.LODS)
	}
	if second.Pulmonary == nil || *second.Pulmonary != 0 {
		t.Errorf("expected pulmonary 0, got %v", second.Pulmonary)
	}
	if second.Neurologic != nil {
		t.Errorf("expected nil neurologic, got %v", second.Neurologic)
	}
}

func TestScoreWriter_EmptyFileIsValid(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "empty_*.parquet")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	writer, err := NewScoreWriter(tmpPath)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	if err := writer.WriteAll(nil); err != nil {
		t.Fatalf("write empty: %v", err)
	}

	records, err := parquet.ReadFile[scoreRecord](tmpPath)
	if err != nil {
		t.Fatalf("read parquet file: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}
