// Package logstore persists closed intervals to an append-only CSV file.
//
// A single Writer holds an exclusive advisory lock on the file for its whole
// lifetime, so a second focuslog pointed at the same log fails at startup
// instead of interleaving rows. Every row is flushed and synced before Append
// returns; a crash loses at most the interval that was still open.
package logstore

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/actionsum/focuslog/internal/models"
)

// ErrLocked is returned by Open when another process holds the log.
var ErrLocked = errors.New("activity log is locked by another focuslog instance")

// Header is the first row of every activity log.
var Header = []string{"id", "start_time", "end_time", "duration", "window_id", "window_class", "window_title"}

// Writer appends intervals to the activity log.
type Writer struct {
	path   string
	file   *os.File
	csv    *csv.Writer
	nextID uint32
	logger *slog.Logger
}

// Open locks the log at path for writing, creating it with a header row if
// needed, and recovers the id the next interval must carry.
func Open(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open activity log")
	}

	if err := lockFile(f); err != nil {
		f.Close()
		if errors.Is(err, ErrLocked) {
			return nil, errors.Wrapf(ErrLocked, "%s", path)
		}
		return nil, errors.Wrap(err, "failed to lock activity log")
	}

	w := &Writer{
		path:   path,
		file:   f,
		csv:    csv.NewWriter(f),
		logger: slog.Default().With("component", "logstore"),
	}

	info, err := f.Stat()
	if err != nil {
		w.Close()
		return nil, errors.Wrap(err, "failed to stat activity log")
	}
	size, err := w.trimTornTail(info.Size())
	if err != nil {
		w.Close()
		return nil, err
	}
	if size == 0 {
		if err := w.write(Header); err != nil {
			w.Close()
			return nil, errors.Wrap(err, "failed to write header")
		}
	}

	w.nextID, err = RecoverNextID(path)
	if err != nil {
		w.Close()
		return nil, err
	}

	w.logger.Info("activity log opened", "path", path, "next_id", w.nextID)
	return w, nil
}

// trimTornTail cuts a final row that was not newline terminated, as left
// by a crash mid-append, so the next row starts on its own line. It returns
// the resulting file size.
func (w *Writer) trimTornTail(size int64) (int64, error) {
	if size == 0 {
		return 0, nil
	}

	last := make([]byte, 1)
	if _, err := w.file.ReadAt(last, size-1); err != nil {
		return 0, errors.Wrap(err, "failed to read end of activity log")
	}
	if last[0] == '\n' {
		return size, nil
	}

	keep, err := lastLineEnd(w.file, size)
	if err != nil {
		return 0, err
	}
	if err := w.file.Truncate(keep); err != nil {
		return 0, errors.Wrap(err, "failed to truncate torn row")
	}
	if err := w.file.Sync(); err != nil {
		return 0, errors.Wrap(err, "failed to sync activity log")
	}
	w.logger.Warn("dropped incomplete last row of activity log",
		"path", w.path,
		"bytes", size-keep,
	)
	return keep, nil
}

// lastLineEnd returns the offset just past the last newline in the first
// size bytes of f, or 0 when there is none.
func lastLineEnd(f *os.File, size int64) (int64, error) {
	buf := make([]byte, 4096)
	end := size
	for end > 0 {
		start := end - int64(len(buf))
		if start < 0 {
			start = 0
		}
		chunk := buf[:end-start]
		if _, err := f.ReadAt(chunk, start); err != nil {
			return 0, errors.Wrap(err, "failed to scan activity log")
		}
		if i := bytes.LastIndexByte(chunk, '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

// NextID returns the id the next appended interval must carry.
func (w *Writer) NextID() uint32 {
	return w.nextID
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one interval and syncs it to disk. Ids must arrive
// contiguously; anything else would leave a gap or a duplicate in the log.
func (w *Writer) Append(iv models.Interval) error {
	if iv.ID != w.nextID {
		return errors.Errorf("interval id %d out of sequence, expected %d", iv.ID, w.nextID)
	}
	if err := w.write(EncodeRecord(iv)); err != nil {
		return errors.Wrapf(err, "failed to append interval %d", iv.ID)
	}
	w.nextID++
	return nil
}

func (w *Writer) write(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return err
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close releases the lock and closes the file.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	_ = unlockFile(w.file)
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return errors.Wrap(err, "failed to close activity log")
	}
	return nil
}

// RecoverNextID returns one past the id of the last row in the log, or 1
// when the log is missing, empty or holds only the header.
func RecoverNextID(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, errors.Wrap(err, "failed to open activity log for recovery")
	}
	defer f.Close()

	var last []string
	err = scanRecords(f, func(record []string) error {
		last = record
		return nil
	})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", path)
	}
	if last == nil {
		return 1, nil
	}

	id, err := strconv.ParseUint(last[0], 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid id %q in last row of %s", last[0], path)
	}
	return uint32(id) + 1, nil
}

// scanRecords calls fn for every data row, skipping the header.
func scanRecords(r io.Reader, fn func(record []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if record[0] == Header[0] {
			continue
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}
