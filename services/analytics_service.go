package services

import (
	"context"
	"strings"
	"time"

	"kokurikulumAPI/internal/report"
)

type AnalyticsService struct {
	reports *ReportService
}

func NewAnalyticsService(reports *ReportService) *AnalyticsService {
	return &AnalyticsService{reports: reports}
}

type Summary struct {
	TotalCount     int            `json:"total_count"`
	UniqueStudents int            `json:"unique_students"`
	LatestEntry    string         `json:"latest_entry"`
	ByAchievement  map[string]int `json:"by_achievement"`
}

func (s *AnalyticsService) Summary(ctx context.Context, f Filter) (*Summary, error) {
	entries, err := s.reports.ListReports(ctx, f)
	if err != nil {
		return nil, err
	}
	records := make([]report.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return Summarize(records), nil
}

// Summarize computes the admin dashboard figures. LatestEntry is the date of
// the newest submission, or "-" when there is none.
func Summarize(records []report.Record) *Summary {
	sum := &Summary{
		TotalCount:    len(records),
		LatestEntry:   "-",
		ByAchievement: make(map[string]int),
	}

	students := make(map[string]struct{})
	var latest time.Time
	for _, rec := range records {
		for _, name := range rec.Students() {
			students[strings.ToLower(name)] = struct{}{}
		}
		if ach := strings.TrimSpace(rec.Achievement); ach != "" {
			sum.ByAchievement[ach]++
		}
		if ts, ok := rec.SubmittedAt(); ok && ts.After(latest) {
			latest = ts
		}
	}

	sum.UniqueStudents = len(students)
	if !latest.IsZero() {
		sum.LatestEntry = latest.Format(DateLayout)
	}
	return sum
}
