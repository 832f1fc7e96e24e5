package logstore

import (
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/focuslog/internal/models"
)

// EncodeRecord renders an interval as a CSV row in Header order.
func EncodeRecord(iv models.Interval) []string {
	return []string{
		strconv.FormatUint(uint64(iv.ID), 10),
		iv.StartTime.Local().Format(models.TimeLayout),
		iv.EndTime.Local().Format(models.TimeLayout),
		strconv.FormatInt(iv.Duration, 10),
		strconv.FormatInt(iv.WindowID, 10),
		iv.WindowClass,
		iv.WindowTitle,
	}
}

// DecodeRecord parses a CSV row written by EncodeRecord.
func DecodeRecord(record []string) (models.Interval, error) {
	var iv models.Interval
	if len(record) != len(Header) {
		return iv, errors.Errorf("expected %d fields, got %d", len(Header), len(record))
	}

	id, err := strconv.ParseUint(record[0], 10, 32)
	if err != nil {
		return iv, errors.Wrapf(err, "invalid id %q", record[0])
	}
	start, err := time.ParseInLocation(models.TimeLayout, record[1], time.Local)
	if err != nil {
		return iv, errors.Wrapf(err, "invalid start_time in row %d", id)
	}
	end, err := time.ParseInLocation(models.TimeLayout, record[2], time.Local)
	if err != nil {
		return iv, errors.Wrapf(err, "invalid end_time in row %d", id)
	}
	duration, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return iv, errors.Wrapf(err, "invalid duration in row %d", id)
	}
	windowID, err := strconv.ParseInt(record[4], 10, 64)
	if err != nil {
		return iv, errors.Wrapf(err, "invalid window_id in row %d", id)
	}

	return models.Interval{
		ID:          uint32(id),
		StartTime:   start,
		EndTime:     end,
		Duration:    duration,
		WindowID:    windowID,
		WindowClass: record[5],
		WindowTitle: record[6],
	}, nil
}

// ReadAll returns every interval in the log. A missing log reads as empty.
func ReadAll(path string) ([]models.Interval, error) {
	var out []models.Interval
	err := each(path, func(iv models.Interval) error {
		out = append(out, iv)
		return nil
	})
	return out, err
}

// Tail returns the last n intervals in the log.
func Tail(path string, n int) ([]models.Interval, error) {
	if n <= 0 {
		return nil, nil
	}
	all, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func each(path string, fn func(models.Interval) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to open activity log")
	}
	defer f.Close()

	if err := Decode(f, fn); err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	return nil
}

// Decode calls fn for every interval in a log stream, such as a
// decompressed archive.
func Decode(r io.Reader, fn func(models.Interval) error) error {
	return scanRecords(r, func(record []string) error {
		iv, err := DecodeRecord(record)
		if err != nil {
			return err
		}
		return fn(iv)
	})
}

// Reader answers report queries straight from the CSV log.
type Reader struct {
	path string
}

// NewReader creates a reader over the log at path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Last returns the most recent interval, or nil for an empty log.
func (r *Reader) Last() (*models.Interval, error) {
	last, err := Tail(r.path, 1)
	if err != nil || len(last) == 0 {
		return nil, err
	}
	return &last[0], nil
}

// ClassSummarySince totals the seconds spent per window class in intervals
// that started at or after since, largest first.
func (r *Reader) ClassSummarySince(since time.Time) ([]models.ClassSummary, error) {
	byClass := make(map[string]*models.ClassSummary)
	err := each(r.path, func(iv models.Interval) error {
		if iv.StartTime.Before(since) {
			return nil
		}
		s, ok := byClass[iv.WindowClass]
		if !ok {
			s = &models.ClassSummary{WindowClass: iv.WindowClass}
			byClass[iv.WindowClass] = s
		}
		s.TotalSeconds += iv.Duration
		s.IntervalCount++
		return nil
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ClassSummary, 0, len(byClass))
	for _, s := range byClass {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalSeconds != summaries[j].TotalSeconds {
			return summaries[i].TotalSeconds > summaries[j].TotalSeconds
		}
		return summaries[i].WindowClass < summaries[j].WindowClass
	})
	return summaries, nil
}
