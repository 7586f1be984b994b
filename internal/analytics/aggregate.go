// Package analytics holds the read-side computations behind dashboards and reports.
// Every function is pure: callers load records from the store and pass them in.
package analytics

import (
	"sort"
	"time"

	"sheetdash/internal/model"
)

const (
	// DefaultRecentLimit is the number of entries in a recent-uploads list.
	DefaultRecentLimit = 5
	// DefaultTrendDays is the trailing trend window.
	DefaultTrendDays = 30

	// DayLayout buckets trend points by UTC calendar day.
	DayLayout = "2006-01-02"
	// RecentDateLayout renders recent-upload dates as month/day/year.
	RecentDateLayout = "1/2/2006"
)

// AccountSummary counts the uploads of one account.
type AccountSummary struct {
	TotalFiles        int `json:"totalFiles"`
	SuccessfulUploads int `json:"successfulUploads"`
	FailedUploads     int `json:"failedUploads"`
}

// RecentUpload is a single row of the recent-uploads list.
type RecentUpload struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Date   string             `json:"date"`
	Status model.UploadStatus `json:"status"`
}

// TrendPoint holds the upload counts of a single day.
type TrendPoint struct {
	Date            string `json:"date"`
	SuccessfulCount int    `json:"successful"`
	FailedCount     int    `json:"failed"`
}

// TrendChart is the column-oriented form of a trend series consumed by charts.
type TrendChart struct {
	Labels            []string `json:"labels"`
	SuccessfulUploads []int    `json:"successfulUploads"`
	FailedUploads     []int    `json:"failedUploads"`
}

// StatusChart is the uploaded/failed split for a pie or bar chart.
type StatusChart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

// Summarize counts records; a record is successful iff it has at least one row.
func Summarize(records []model.UploadMeta) AccountSummary {
	s := AccountSummary{TotalFiles: len(records)}
	for _, r := range records {
		if r.Successful() {
			s.SuccessfulUploads++
		}
	}
	s.FailedUploads = s.TotalFiles - s.SuccessfulUploads
	return s
}

// Recent returns the n most recently created records, newest first.
func Recent(records []model.UploadMeta, n int) []RecentUpload {
	if n <= 0 {
		n = DefaultRecentLimit
	}
	sorted := make([]model.UploadMeta, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]RecentUpload, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, RecentUpload{
			ID:     r.ID,
			Name:   r.OriginalName,
			Date:   r.CreatedAt.UTC().Format(RecentDateLayout),
			Status: model.StatusForRows(r.RowCount),
		})
	}
	return out
}

// WindowStart returns the earliest creation time included in a trend window.
func WindowStart(now time.Time, windowDays int) time.Time {
	if windowDays <= 0 {
		windowDays = DefaultTrendDays
	}
	return now.UTC().AddDate(0, 0, -windowDays)
}

// Trend buckets records created at or after now-windowDays by UTC day.
// Days without uploads are omitted; the output is sorted ascending by date.
func Trend(records []model.UploadMeta, now time.Time, windowDays int) []TrendPoint {
	start := WindowStart(now, windowDays)

	byDay := make(map[string]*TrendPoint)
	for _, r := range records {
		if r.CreatedAt.Before(start) {
			continue
		}
		day := r.CreatedAt.UTC().Format(DayLayout)
		p, ok := byDay[day]
		if !ok {
			p = &TrendPoint{Date: day}
			byDay[day] = p
		}
		if r.Status == model.StatusUploaded {
			p.SuccessfulCount++
		} else {
			p.FailedCount++
		}
	}

	out := make([]TrendPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Series converts trend points into the labels/successfulUploads/failedUploads shape.
func Series(points []TrendPoint) TrendChart {
	c := TrendChart{
		Labels:            make([]string, 0, len(points)),
		SuccessfulUploads: make([]int, 0, len(points)),
		FailedUploads:     make([]int, 0, len(points)),
	}
	for _, p := range points {
		c.Labels = append(c.Labels, p.Date)
		c.SuccessfulUploads = append(c.SuccessfulUploads, p.SuccessfulCount)
		c.FailedUploads = append(c.FailedUploads, p.FailedCount)
	}
	return c
}

// Chart splits a summary into uploaded vs failed.
func Chart(s AccountSummary) StatusChart {
	return StatusChart{
		Labels: []string{"Uploaded", "Failed"},
		Data:   []int{s.SuccessfulUploads, s.FailedUploads},
	}
}
