// Package archive writes compressed point-in-time copies of the activity log.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/actionsum/focuslog/internal/logstore"
	"github.com/actionsum/focuslog/internal/models"
)

const (
	filePrefix = "activity-"
	fileSuffix = ".csv.zst"
	stampFmt   = "20060102-150405"
)

// Snapshot compresses the bytes present in logPath when it is called into
// dir/activity-YYYYMMDD-HHMMSS.csv.zst. Rows appended while the copy runs
// are left out, so a running tracker is never blocked.
// Returns the archive path.
func Snapshot(logPath, dir string, now time.Time) (string, error) {
	src, err := os.Open(logPath)
	if err != nil {
		return "", fmt.Errorf("open activity log: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat activity log: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	destPath := Path(dir, now)
	dest, err := os.OpenFile(destPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, io.LimitReader(src, info.Size())); err != nil {
		encoder.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Path returns the archive path for a snapshot taken at t.
func Path(dir string, t time.Time) string {
	return filepath.Join(dir, filePrefix+t.Format(stampFmt)+fileSuffix)
}

// IsArchive reports whether name looks like a snapshot file.
func IsArchive(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, filePrefix) && strings.HasSuffix(base, fileSuffix)
}

// Open returns a reader over the decompressed CSV of an archive.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	decoder, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &readCloser{decoder: decoder, file: f}, nil
}

// ReadAll decodes every interval stored in an archive.
func ReadAll(path string) ([]models.Interval, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []models.Interval
	err = logstore.Decode(rc, func(iv models.Interval) error {
		out = append(out, iv)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", path, err)
	}
	return out, nil
}

type readCloser struct {
	decoder *zstd.Decoder
	file    *os.File
}

func (r *readCloser) Read(p []byte) (int, error) {
	return r.decoder.Read(p)
}

func (r *readCloser) Close() error {
	r.decoder.Close()
	return r.file.Close()
}
