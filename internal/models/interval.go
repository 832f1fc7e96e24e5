package models

import "time"

// TimeLayout is how interval timestamps are written to the activity log.
const TimeLayout = "2006-01-02 15:04:05"

// UntitledWindow is recorded when the window manager reports no title.
const UntitledWindow = "Untitled"

// OpenInterval is the interval currently being timed. It is replaced
// wholesale whenever a new interval begins.
type OpenInterval struct {
	ID          uint32
	WindowID    int64
	WindowClass string
	WindowTitle string
	OpenedAt    time.Time
}

// Interval is a closed, persisted record of focus on one window.
type Interval struct {
	ID          uint32    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	Duration    int64     `gorm:"not null;default:0" json:"duration"` // Duration in seconds
	WindowID    int64     `gorm:"not null" json:"window_id"`
	WindowClass string    `gorm:"not null;index" json:"window_class"`
	WindowTitle string    `gorm:"not null" json:"window_title"`
}

// Close turns an open interval into a persisted one ending at now.
// A clock that went backwards yields a zero-length interval.
func Close(open OpenInterval, now time.Time) Interval {
	if now.Before(open.OpenedAt) {
		now = open.OpenedAt
	}
	return Interval{
		ID:          open.ID,
		StartTime:   open.OpenedAt,
		EndTime:     now,
		Duration:    int64(now.Sub(open.OpenedAt) / time.Second),
		WindowID:    open.WindowID,
		WindowClass: open.WindowClass,
		WindowTitle: open.WindowTitle,
	}
}

// Reopen starts a fresh interval on the same window, as a heartbeat does.
func (o OpenInterval) Reopen(id uint32, at time.Time) OpenInterval {
	return OpenInterval{
		ID:          id,
		WindowID:    o.WindowID,
		WindowClass: o.WindowClass,
		WindowTitle: o.WindowTitle,
		OpenedAt:    at,
	}
}

type ClassSummary struct {
	WindowClass   string  `json:"window_class"`
	TotalSeconds  int64   `json:"total_seconds"`
	TotalMinutes  float64 `json:"total_minutes"`
	TotalHours    float64 `json:"total_hours"`
	IntervalCount int     `json:"interval_count"`
	Percentage    float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod   `json:"period"`
	Classes      []ClassSummary `json:"classes"`
	TotalSeconds int64          `json:"total_seconds"`
	TotalMinutes float64        `json:"total_minutes"`
	TotalHours   float64        `json:"total_hours"`
	GeneratedAt  time.Time      `json:"generated_at"`
}
