package attendance_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
	insightsvc "github.com/shikshaconnect/shiksha/services/insight"
	inmemdb "github.com/shikshaconnect/shiksha/storage/database/inmem"
	testutil "github.com/shikshaconnect/shiksha/tests"
)

func setup(t *testing.T, insights core.InsightService) (*attendance.Service, attendance.Repository, student.Repository) {
	db := testutil.OpenDB(t)
	attRepo := inmemdb.NewAttendanceRepository(db)
	stdRepo := inmemdb.NewStudentRepository(db)
	svc := attendance.NewService(attRepo, stdRepo, insights, testutil.NewConfig())
	return svc, attRepo, stdRepo
}

func teacher(schoolID string) user.User {
	return user.User{ID: "teacher-1", Email: "t@test.in", Role: user.RoleTeacher, SchoolID: schoolID}
}

func Test_Service_Mark_upsertLastWriteWins(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, nil)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "Asha", "12", "10", "A", "school-1")
	caller := teacher("school-1")

	res, err := svc.Mark(ctx, caller, attendance.MarkRequest{
		StudentIDs: []string{std.ID},
		Date:       "2024-01-01",
		Status:     attendance.StatusPresent,
		Method:     attendance.MethodManual,
	})
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	assert.Equal(t, attendance.MarkResult{Processed: 1, Created: 1}, res)

	// re-mark with a different status: still exactly one record
	res, err = svc.Mark(ctx, caller, attendance.MarkRequest{
		StudentIDs: []string{std.ID},
		Date:       "2024-01-01",
		Status:     attendance.StatusAbsent,
		Method:     attendance.MethodManual,
	})
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	assert.Equal(t, attendance.MarkResult{Processed: 1, Created: 0}, res)

	recs, err := attRepo.FilterRecords(ctx, attendance.QueryFilter{SchoolID: "school-1", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("FilterRecords() failed: %v", err)
	}
	if assert.Len(t, recs, 1) {
		assert.Equal(t, attendance.StatusAbsent, recs[0].Status)
		assert.Equal(t, std.ClassName, recs[0].ClassName)
		assert.Equal(t, std.Section, recs[0].Section)
	}
}

func Test_Service_Mark_unknownStudentKeptWithBlanks(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, nil)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "Asha", "12", "10", "A", "school-1")

	res, err := svc.Mark(ctx, teacher("school-1"), attendance.MarkRequest{
		StudentIDs: []string{std.ID, "ghost"},
		Date:       "2024-01-02",
		Status:     attendance.StatusPresent,
		Method:     attendance.MethodManual,
	})
	if err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}
	assert.Equal(t, attendance.MarkResult{Processed: 2, Created: 2}, res)

	rec, err := attRepo.GetRecord(ctx, "ghost", "2024-01-02")
	if err != nil {
		t.Fatalf("GetRecord() failed: %v", err)
	}
	assert.Empty(t, rec.ClassName)
	assert.Empty(t, rec.Section)
}

func Test_Service_Find_keepsUnresolvableRows(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, nil)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "Asha", "12", "10", "A", "school-1")
	testutil.CreateRecord(t, attRepo, std.ID, "school-1", "10", "A", "2024-01-03", attendance.StatusPresent)
	testutil.CreateRecord(t, attRepo, "ghost", "school-1", "", "", "2024-01-03", attendance.StatusAbsent)

	recs, err := svc.Find(ctx, teacher("school-1"), "2024-01-03", "", "")
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	assert.Len(t, recs, 2)
	for _, rec := range recs {
		if rec.StudentID == std.ID {
			assert.Equal(t, "Asha", rec.StudentName)
			assert.Equal(t, "12", rec.RollNumber)
		} else {
			assert.Empty(t, rec.StudentName)
			assert.Empty(t, rec.RollNumber)
		}
	}
}

func Test_Service_Report(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, nil)
	ctx := context.Background()

	std1 := testutil.CreateStudent(t, stdRepo, "Asha", "12", "10", "A", "school-1")
	std2 := testutil.CreateStudent(t, stdRepo, "Binod", "3", "10", "B", "school-1")
	testutil.CreateRecord(t, attRepo, std1.ID, "school-1", "10", "A", "2024-01-01", attendance.StatusPresent)
	testutil.CreateRecord(t, attRepo, std2.ID, "school-1", "10", "B", "2024-01-02", attendance.StatusLate)
	// a row whose student no longer resolves is dropped
	testutil.CreateRecord(t, attRepo, "ghost", "school-1", "", "", "2024-01-01", attendance.StatusAbsent)

	tests := []struct {
		name    string
		req     attendance.ReportRequest
		wantIDs []string
	}{
		{"no bounds", attendance.ReportRequest{}, []string{std1.ID, std2.ID}},
		{"start only", attendance.ReportRequest{StartDate: "2024-01-02"}, []string{std2.ID}},
		{"end only", attendance.ReportRequest{EndDate: "2024-01-01"}, []string{std1.ID}},
		{"closed range", attendance.ReportRequest{StartDate: "2024-01-01", EndDate: "2024-01-02"}, []string{std1.ID, std2.ID}},
		{"start equals end", attendance.ReportRequest{StartDate: "2024-01-01", EndDate: "2024-01-01"}, []string{std1.ID}},
		{"class filter", attendance.ReportRequest{ClassName: "10", Section: "B"}, []string{std2.ID}},
		{"no matches", attendance.ReportRequest{StartDate: "2025-01-01"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.Report(ctx, teacher("school-1"), tt.req)
			if err != nil {
				t.Fatalf("Report() failed: %v", err)
			}
			gotIDs := make([]string, 0, len(rows))
			for _, row := range rows {
				gotIDs = append(gotIDs, row.StudentID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs) // sorted by (date, class, section, roll)
		})
	}
}

func Test_Service_Report_alwaysScopedToCallerSchool(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, nil)
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "Dev", "1", "9", "A", "school-2")
	testutil.CreateRecord(t, attRepo, std.ID, "school-2", "9", "A", "2024-01-01", attendance.StatusPresent)

	// the request school_id must not widen the scope to another school
	rows, err := svc.Report(ctx, teacher("school-1"), attendance.ReportRequest{SchoolID: "school-2"})
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	assert.Empty(t, rows)

	// the school's own teacher still sees the record
	rows, err = svc.Report(ctx, teacher("school-2"), attendance.ReportRequest{})
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	assert.Len(t, rows, 1)
}

func Test_Service_Report_scenario(t *testing.T) {
	svc, _, stdRepo := setup(t, nil)
	ctx := context.Background()
	caller := teacher("school-1")

	std := testutil.CreateStudent(t, stdRepo, "S1", "1", "10", "A", "school-1")

	if _, err := svc.Mark(ctx, caller, attendance.MarkRequest{
		StudentIDs: []string{std.ID}, Date: "2024-01-01",
		Status: attendance.StatusPresent, Method: attendance.MethodManual,
	}); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	rows, err := svc.Report(ctx, caller, attendance.ReportRequest{StartDate: "2024-01-01", EndDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if assert.Len(t, rows, 1) {
		assert.Equal(t, attendance.StatusPresent, rows[0].Status)
		assert.Equal(t, attendance.MethodManual, rows[0].Method)
	}

	// re-mark absent: the report shows one row, not two
	if _, err = svc.Mark(ctx, caller, attendance.MarkRequest{
		StudentIDs: []string{std.ID}, Date: "2024-01-01",
		Status: attendance.StatusAbsent, Method: attendance.MethodManual,
	}); err != nil {
		t.Fatalf("Mark() failed: %v", err)
	}

	rows, err = svc.Report(ctx, caller, attendance.ReportRequest{StartDate: "2024-01-01", EndDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	if assert.Len(t, rows, 1) {
		assert.Equal(t, attendance.StatusAbsent, rows[0].Status)
	}
}

func Test_Service_Dashboard_emptyDayRateIsZero(t *testing.T) {
	svc, _, _ := setup(t, nil)

	dash, err := svc.Dashboard(context.Background(), teacher("school-1"))
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}
	assert.Equal(t, float64(0), dash.AttendanceRate)
	assert.Equal(t, int64(0), dash.TotalStudents)
}

func Test_Service_Dashboard(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, nil)
	ctx := context.Background()

	std1 := testutil.CreateStudent(t, stdRepo, "Asha", "12", "10", "A", "school-1")
	std2 := testutil.CreateStudent(t, stdRepo, "Binod", "3", "10", "A", "school-1")
	today := core.Today()
	testutil.CreateRecord(t, attRepo, std1.ID, "school-1", "10", "A", today, attendance.StatusPresent)
	testutil.CreateRecord(t, attRepo, std2.ID, "school-1", "10", "A", today, attendance.StatusAbsent)
	testutil.CreateRecord(t, attRepo, std1.ID, "school-1", "10", "A", core.DaysAgo(3), attendance.StatusPresent)

	dash, err := svc.Dashboard(ctx, teacher("school-1"))
	if err != nil {
		t.Fatalf("Dashboard() failed: %v", err)
	}

	assert.Equal(t, int64(2), dash.TotalStudents)
	assert.Equal(t, 1, dash.TodayPresent)
	assert.Equal(t, 1, dash.TodayAbsent)
	assert.Equal(t, float64(50), dash.AttendanceRate)

	if assert.Len(t, dash.Trends, 7) {
		assert.Equal(t, core.DaysAgo(6), dash.Trends[0].Date)
		assert.Equal(t, today, dash.Trends[6].Date)
		for i := 1; i < len(dash.Trends); i++ {
			assert.True(t, dash.Trends[i-1].Date < dash.Trends[i].Date, "trend dates must ascend")
		}
		assert.Equal(t, attendance.TrendPoint{Date: core.DaysAgo(3), Present: 1, Total: 1}, dash.Trends[3])
		assert.Equal(t, attendance.TrendPoint{Date: today, Present: 1, Total: 2}, dash.Trends[6])
	}
}

func Test_Service_Insights(t *testing.T) {
	svc, attRepo, stdRepo := setup(t, insightsvc.NewServiceMock("attendance looks healthy", nil))
	ctx := context.Background()

	std := testutil.CreateStudent(t, stdRepo, "Asha", "12", "10", "A", "school-1")
	testutil.CreateStudent(t, stdRepo, "Cara", "1", "9", "A", "school-2")
	testutil.CreateRecord(t, attRepo, std.ID, "school-1", "10", "A", "2024-01-01", attendance.StatusPresent)
	testutil.CreateRecord(t, attRepo, std.ID, "school-1", "10", "A", "2024-01-02", attendance.StatusAbsent)
	testutil.CreateRecord(t, attRepo, "other", "school-2", "9", "A", "2024-01-01", attendance.StatusPresent)

	// a teacher is always scoped to their own school; request school_id is ignored
	insights, err := svc.Insights(ctx, teacher("school-1"), attendance.AnalyticsRequest{SchoolID: "school-2"})
	if err != nil {
		t.Fatalf("Insights() failed: %v", err)
	}
	assert.Equal(t, int64(1), insights.Analytics.TotalStudents)
	assert.Equal(t, 2, insights.Analytics.TotalAttendanceRecords)
	assert.Equal(t, map[string]int{attendance.StatusPresent: 1, attendance.StatusAbsent: 1}, insights.Analytics.AttendanceByStatus)
	assert.Equal(t, map[string]int{"10": 2}, insights.Analytics.AttendanceByClass)
	assert.Equal(t, "attendance looks healthy", insights.AIInsights)
	assert.False(t, insights.GeneratedAt.IsZero())

	// an administrator may scope to any school
	admin := user.User{ID: "admin-1", Role: user.RoleAdministrator, SchoolID: "school-1"}
	insights, err = svc.Insights(ctx, admin, attendance.AnalyticsRequest{SchoolID: "school-2"})
	if err != nil {
		t.Fatalf("Insights() failed: %v", err)
	}
	assert.Equal(t, 1, insights.Analytics.TotalAttendanceRecords)

	// a date range narrows the set
	insights, err = svc.Insights(ctx, teacher("school-1"), attendance.AnalyticsRequest{
		DateRange: &attendance.DateRange{Start: "2024-01-02", End: "2024-01-02"},
	})
	if err != nil {
		t.Fatalf("Insights() failed: %v", err)
	}
	assert.Equal(t, 1, insights.Analytics.TotalAttendanceRecords)
}

func Test_Service_Insights_fallback(t *testing.T) {
	// generator failure degrades to a fallback message, never an error
	svc, _, _ := setup(t, insightsvc.NewServiceMock("", errors.New("model overloaded")))

	insights, err := svc.Insights(context.Background(), teacher("school-1"), attendance.AnalyticsRequest{})
	if err != nil {
		t.Fatalf("Insights() failed: %v", err)
	}
	assert.Equal(t, "Unable to generate AI insights: model overloaded", insights.AIInsights)

	// no generator configured at all
	svc, _, _ = setup(t, nil)
	insights, err = svc.Insights(context.Background(), teacher("school-1"), attendance.AnalyticsRequest{})
	if err != nil {
		t.Fatalf("Insights() failed: %v", err)
	}
	assert.Contains(t, insights.AIInsights, "currently unavailable")
}
