package logstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/actionsum/focuslog/internal/models"
)

// Follow calls fn for every row appended to the log after Follow starts,
// until ctx is cancelled or the log is removed.
func Follow(ctx context.Context, path string, fn func(models.Interval)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open activity log")
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrap(err, "failed to seek activity log")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	// Watch the directory so a recreated log is noticed too.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "watch log directory")
	}

	t := &tailer{file: f, fn: fn}
	name := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				return errors.Errorf("activity log %s was removed", path)
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			if err := t.drain(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return errors.Wrap(err, "watch activity log")
		}
	}
}

// tailer turns appended bytes into intervals, holding back a trailing
// partial row until the rest of it is written.
type tailer struct {
	file    *os.File
	pending []byte
	fn      func(models.Interval)
}

func (t *tailer) drain() error {
	buf := make([]byte, 32*1024)
	for {
		n, err := t.file.Read(buf)
		t.pending = append(t.pending, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "read activity log")
		}
	}

	end := bytes.LastIndexByte(t.pending, '\n')
	if end < 0 {
		return nil
	}

	cr := csv.NewReader(bytes.NewReader(t.pending[:end+1]))
	cr.FieldsPerRecord = len(Header)
	records, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrQuote) {
			// A quoted title with a newline in it is only half written.
			return nil
		}
		return errors.Wrap(err, "parse appended rows")
	}

	for _, record := range records {
		if record[0] == Header[0] {
			continue
		}
		iv, err := DecodeRecord(record)
		if err != nil {
			return err
		}
		t.fn(iv)
	}
	t.pending = t.pending[end+1:]
	return nil
}
