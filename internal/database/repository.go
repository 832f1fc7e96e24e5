package database

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/actionsum/focuslog/internal/models"
)

const rebuildBatchSize = 500

// Repository handles all index operations for intervals
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Append mirrors one closed interval, so the repository can serve as a
// tracker sink.
func (r *Repository) Append(iv models.Interval) error {
	return r.Upsert(iv)
}

// Upsert inserts an interval or replaces the stored row with the same id.
// Times are stored at the one-second precision of the activity log, so a
// mirrored row equals the row a rebuild imports.
func (r *Repository) Upsert(iv models.Interval) error {
	iv = wholeSeconds(iv)
	result := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&iv)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "failed to mirror interval %d", iv.ID)
	}
	return nil
}

// Rebuild replaces the whole index with the given intervals
func (r *Repository) Rebuild(intervals []models.Interval) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM intervals").Error; err != nil {
			return err
		}
		if len(intervals) == 0 {
			return nil
		}
		rows := make([]models.Interval, len(intervals))
		for i, iv := range intervals {
			rows[i] = wholeSeconds(iv)
		}
		return tx.CreateInBatches(rows, rebuildBatchSize).Error
	})
	if err != nil {
		return errors.Wrap(err, "failed to rebuild index")
	}
	return nil
}

// GetByID retrieves an interval by its ID
func (r *Repository) GetByID(id uint32) (*models.Interval, error) {
	var iv models.Interval
	result := r.db.First(&iv, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get interval")
	}
	return &iv, nil
}

// GetIntervalsSince retrieves all intervals that started at or after since
func (r *Repository) GetIntervalsSince(since time.Time) ([]models.Interval, error) {
	var intervals []models.Interval
	result := r.db.Where("start_time >= ?", since).Order("id ASC").Find(&intervals)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query intervals")
	}
	return intervals, nil
}

// ClassSummarySince returns time per window class since a given time
// Uses SQL SUM - the reporter derives minutes, hours and percentages
func (r *Repository) ClassSummarySince(since time.Time) ([]models.ClassSummary, error) {
	var summaries []models.ClassSummary

	result := r.db.Model(&models.Interval{}).
		Select("window_class, SUM(duration) as total_seconds, COUNT(*) as interval_count").
		Where("start_time >= ?", since).
		Group("window_class").
		Order("total_seconds DESC, window_class ASC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query class summary")
	}

	return summaries, nil
}

// GetLatest retrieves the interval with the highest id
func (r *Repository) GetLatest() (*models.Interval, error) {
	var iv models.Interval
	result := r.db.Order("id DESC").First(&iv)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest interval")
	}
	return &iv, nil
}

// Count returns the number of mirrored intervals
func (r *Repository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Interval{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count intervals")
	}
	return n, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// RecordError stores a non-fatal tracker failure. Failing to store it is
// only logged.
func (r *Repository) RecordError(component string, err error) {
	errorLog := &models.ErrorLog{
		Timestamp: time.Now(),
		Component: component,
		ErrorMsg:  err.Error(),
	}

	if dbErr := r.CreateErrorLog(errorLog); dbErr != nil {
		slog.Warn("failed to store error in index", "error", dbErr, "original_error", err)
	}
}

// RecentErrors returns the newest error logs first
func (r *Repository) RecentErrors(limit int) ([]models.ErrorLog, error) {
	var logs []models.ErrorLog
	result := r.db.Order("timestamp DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// Clear removes all intervals from the index
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM intervals")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear intervals")
	}
	return nil
}

func wholeSeconds(iv models.Interval) models.Interval {
	iv.StartTime = iv.StartTime.Truncate(time.Second)
	iv.EndTime = iv.EndTime.Truncate(time.Second)
	return iv
}
