package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/halfer53/sepsis3-mimic/internal/lods"
)

// scoreRecord is the Parquet-compatible score row. Component columns are
// optional so that a missing component lands as a Parquet null rather than a
// zero.
type scoreRecord struct {
	ICUStayID      int64  `parquet:"icustay_id"`
	LODS           int32  `parquet:"lods"`
	Neurologic     *int32 `parquet:"neurologic,optional"`
	Cardiovascular *int32 `parquet:"cardiovascular,optional"`
	Renal          *int32 `parquet:"renal,optional"`
	Pulmonary      *int32 `parquet:"pulmonary,optional"`
	Hematologic    *int32 `parquet:"hematologic,optional"`
	Hepatic        *int32 `parquet:"hepatic,optional"`
}

const flushInterval = 50_000

// ScoreWriter streams score rows into a Snappy-compressed Parquet file.
type ScoreWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[scoreRecord]
	count  int
}

// NewScoreWriter creates the output file and a writer over it.
func NewScoreWriter(filename string) (*ScoreWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[scoreRecord](file,
		parquet.Compression(&parquet.Snappy),
	)

	return &ScoreWriter{file: file, writer: writer}, nil
}

// Write appends one score row.
func (w *ScoreWriter) Write(s *lods.Score) error {
	record := scoreRecord{
		ICUStayID:      s.ICUStayID,
		LODS:           int32(s.Total),
		Neurologic:     toInt32(s.Neurologic),
		Cardiovascular: toInt32(s.Cardiovascular),
		Renal:          toInt32(s.Renal),
		Pulmonary:      toInt32(s.Pulmonary),
		Hematologic:    toInt32(s.Hematologic),
		Hepatic:        toInt32(s.Hepatic),
	}

	if _, err := w.writer.Write([]scoreRecord{record}); err != nil {
		return fmt.Errorf("write parquet record: %w", err)
	}

	w.count++

	// Flush row group periodically to bound memory usage
	if w.count%flushInterval == 0 {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("flush parquet row group: %w", err)
		}
	}
	return nil
}

// WriteAll appends every score and closes the writer.
func (w *ScoreWriter) WriteAll(scores []lods.Score) error {
	for i := range scores {
		if err := w.Write(&scores[i]); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// Close flushes and closes the underlying file.
func (w *ScoreWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the number of rows written.
func (w *ScoreWriter) Count() int {
	return w.count
}

func toInt32(p *int) *int32 {
	if p == nil {
		return nil
	}
	v := int32(*p)
	return &v
}
