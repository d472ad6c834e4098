package service

import (
	"anchor_lms_backend/internal/repository"
	"anchor_lms_backend/internal/util"
	"context"
	"errors"
	"testing"
	"time"
)

// fakeActivityStore 录制查询窗口并返回预置的按天计数
type fakeActivityStore struct {
	completions []repository.DailyCount
	enrollments []repository.DailyCount
	active      int64
	err         error

	completionsSince time.Time
	enrollmentsSince time.Time
	activeSince      time.Time
}

func (f *fakeActivityStore) CountCompletionsPerDay(since time.Time) ([]repository.DailyCount, error) {
	f.completionsSince = since
	return f.completions, f.err
}

func (f *fakeActivityStore) CountEnrollmentsPerDay(since time.Time) ([]repository.DailyCount, error) {
	f.enrollmentsSince = since
	return f.enrollments, f.err
}

func (f *fakeActivityStore) CountActiveSince(since time.Time) (int64, error) {
	f.activeSince = since
	return f.active, f.err
}

func dayKey(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format(util.DateFormat)
}

func TestActivityReportSevenDayTimeline(t *testing.T) {
	store := &fakeActivityStore{
		completions: []repository.DailyCount{
			{Day: dayKey(-6), Count: 1},
			{Day: dayKey(0), Count: 3},
			{Day: dayKey(-8), Count: 5}, // 窗口之外，不应计入
		},
		enrollments: []repository.DailyCount{
			{Day: dayKey(0), Count: 2},
		},
		active: 4,
	}
	svc := &ReportService{ActivityRepo: store}

	report, err := svc.Activity(context.Background())
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}

	if len(report.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(report.Days))
	}
	if report.Days[0].Date != dayKey(-6) {
		t.Errorf("timeline starts at %s, want %s", report.Days[0].Date, dayKey(-6))
	}
	if report.Days[6].Date != dayKey(0) {
		t.Errorf("timeline ends at %s, want today %s", report.Days[6].Date, dayKey(0))
	}

	if report.Days[0].Completions != 1 || report.Days[6].Completions != 3 {
		t.Errorf("completions not bucketed: first=%d last=%d", report.Days[0].Completions, report.Days[6].Completions)
	}
	if report.Days[6].Enrollments != 2 {
		t.Errorf("today's enrollments = %d, want 2", report.Days[6].Enrollments)
	}

	if report.CompletionsLast7Days != 4 {
		t.Errorf("CompletionsLast7Days = %d, want 4 (out-of-window rows excluded)", report.CompletionsLast7Days)
	}
	if report.EnrollmentsLast7Days != 2 {
		t.Errorf("EnrollmentsLast7Days = %d, want 2", report.EnrollmentsLast7Days)
	}
	if report.ActiveLearners30Days != 4 {
		t.Errorf("ActiveLearners30Days = %d, want 4", report.ActiveLearners30Days)
	}

	// 时间线窗口从 6 天前的零点开始
	if store.completionsSince.Format(util.DateFormat) != dayKey(-6) {
		t.Errorf("completions window starts %v, want %s", store.completionsSince, dayKey(-6))
	}
	if h, m, s := store.completionsSince.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("completions window should start at midnight, got %v", store.completionsSince)
	}
	if store.activeSince.Format(util.DateFormat) != dayKey(-30) {
		t.Errorf("active-learner window starts %v, want %s", store.activeSince, dayKey(-30))
	}
}

func TestActivityReportEmpty(t *testing.T) {
	svc := &ReportService{ActivityRepo: &fakeActivityStore{}}

	report, err := svc.Activity(context.Background())
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(report.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(report.Days))
	}
	for _, day := range report.Days {
		if day.Completions != 0 || day.Enrollments != 0 {
			t.Errorf("day %s not zero: %+v", day.Date, day)
		}
	}
	if report.CompletionsLast7Days != 0 || report.EnrollmentsLast7Days != 0 || report.ActiveLearners30Days != 0 {
		t.Error("totals should be zero for empty stores")
	}
}

func TestActivityReportStoreError(t *testing.T) {
	svc := &ReportService{ActivityRepo: &fakeActivityStore{err: errors.New("db down")}}

	if _, err := svc.Activity(context.Background()); err == nil {
		t.Fatal("expected store error to surface")
	}
}
