package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sheetdash/internal/model"
)

func upload(id string, at time.Time, rows int) model.UploadMeta {
	return model.UploadMeta{
		ID:           id,
		Filename:     id + ".xlsx",
		OriginalName: "report-" + id + ".xlsx",
		RowCount:     rows,
		Status:       model.StatusForRows(rows),
		CreatedAt:    at,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		records []model.UploadMeta
		want    AccountSummary
	}{
		{
			name: "no records",
			want: AccountSummary{},
		},
		{
			name: "mixed",
			records: []model.UploadMeta{
				upload("a", now, 3),
				upload("b", now, 0),
				upload("c", now, 1),
			},
			want: AccountSummary{TotalFiles: 3, SuccessfulUploads: 2, FailedUploads: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.records)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.TotalFiles, got.SuccessfulUploads+got.FailedUploads)
		})
	}
}

func TestRecent(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	var records []model.UploadMeta
	for i := 0; i < 7; i++ {
		records = append(records, upload(string(rune('a'+i)), base.AddDate(0, 0, i), i%2))
	}

	got := Recent(records, 5)
	assert.Len(t, got, 5)
	assert.Equal(t, "g", got[0].ID)
	assert.Equal(t, "3/7/2026", got[0].Date)
	assert.Equal(t, model.StatusFailed, got[0].Status)
	assert.Equal(t, "f", got[1].ID)
	assert.Equal(t, model.StatusUploaded, got[1].Status)
	assert.Equal(t, "c", got[4].ID)

	assert.Empty(t, Recent(nil, 5))
	assert.Len(t, Recent(records, 0), DefaultRecentLimit)
}

func TestTrend(t *testing.T) {
	now := time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)
	d1 := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 6, 23, 59, 0, 0, time.UTC)

	records := []model.UploadMeta{
		upload("x", d2, 4),
		upload("a", d1, 1),
		upload("b", d1.Add(time.Hour), 2),
		upload("c", d1.Add(2*time.Hour), 0),
		upload("old", now.AddDate(0, 0, -31), 5),
	}

	got := Trend(records, now, 30)
	assert.Equal(t, []TrendPoint{
		{Date: "2026-03-05", SuccessfulCount: 2, FailedCount: 1},
		{Date: "2026-03-06", SuccessfulCount: 1, FailedCount: 0},
	}, got)

	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].Date, got[i].Date)
	}
}

func TestTrend_UTCBucketing(t *testing.T) {
	now := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	east := time.FixedZone("UTC+9", 9*3600)
	// 2026-03-10 02:00 in UTC+9 is 2026-03-09 17:00 UTC.
	at := time.Date(2026, 3, 10, 2, 0, 0, 0, east)

	got := Trend([]model.UploadMeta{upload("a", at, 1)}, now, 30)
	assert.Equal(t, []TrendPoint{{Date: "2026-03-09", SuccessfulCount: 1}}, got)
}

func TestTrend_Empty(t *testing.T) {
	got := Trend(nil, time.Now(), 30)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSeries(t *testing.T) {
	c := Series([]TrendPoint{
		{Date: "2026-03-05", SuccessfulCount: 2, FailedCount: 1},
		{Date: "2026-03-06", SuccessfulCount: 1},
	})
	assert.Equal(t, []string{"2026-03-05", "2026-03-06"}, c.Labels)
	assert.Equal(t, []int{2, 1}, c.SuccessfulUploads)
	assert.Equal(t, []int{1, 0}, c.FailedUploads)

	empty := Series(nil)
	assert.NotNil(t, empty.Labels)
}

func TestChart(t *testing.T) {
	c := Chart(AccountSummary{TotalFiles: 5, SuccessfulUploads: 3, FailedUploads: 2})
	assert.Equal(t, StatusChart{Labels: []string{"Uploaded", "Failed"}, Data: []int{3, 2}}, c)
}
