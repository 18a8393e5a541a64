// Package audit appends one immutable CSV record per accepted attendance
// decision. Records are never updated or deleted.
package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// header is the fixed first row of the attendance log. The column order and
// field formatting are a serialization contract with downstream consumers.
var header = []string{"ts", "code", "type", "period", "score", "lat", "lng", "distance_m", "reason"}

// Record is one attendance decision to be appended.
//
// Lat, Lng and DistanceM are pointers so that "not computed" serializes as
// an empty field rather than a misleading zero.
type Record struct {
	TS        time.Time
	Code      string
	Kind      string
	Period    string
	Score     float64
	Lat       *float64
	Lng       *float64
	DistanceM *float64
	Reason    string
}

// Log is an append-only CSV attendance log.
type Log struct {
	mu   sync.Mutex
	path string
}

// NewLog creates a log writing to path. The file is created lazily, with
// the header row, on the first append or export.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Append writes one record. If the file does not exist yet the header row
// is written first.
func (l *Log) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFile := false
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		newFile = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening attendance log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing attendance header: %w", err)
		}
	}
	if err := w.Write(formatRecord(rec)); err != nil {
		return fmt.Errorf("writing attendance record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing attendance log: %w", err)
	}
	return nil
}

// Export returns the raw bytes of the full log. A missing file is
// initialized with a header-only log first, so the export is always a
// valid CSV document.
func (l *Log) Export() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("creating attendance log: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing attendance header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("flushing attendance header: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, fmt.Errorf("closing attendance log: %w", err)
		}
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("reading attendance log: %w", err)
	}
	return data, nil
}

// formatRecord applies the fixed-precision field formatting: score with 3
// decimals, coordinates with 6, distance with 1. Absent values are empty.
func formatRecord(rec Record) []string {
	lat, lng, distance := "", "", ""
	if rec.Lat != nil {
		lat = fmt.Sprintf("%.6f", *rec.Lat)
	}
	if rec.Lng != nil {
		lng = fmt.Sprintf("%.6f", *rec.Lng)
	}
	if rec.DistanceM != nil {
		distance = fmt.Sprintf("%.1f", *rec.DistanceM)
	}
	return []string{
		rec.TS.Format("2006-01-02T15:04:05"),
		rec.Code,
		rec.Kind,
		rec.Period,
		fmt.Sprintf("%.3f", rec.Score),
		lat,
		lng,
		distance,
		rec.Reason,
	}
}
