package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
	testutil "github.com/shikshaconnect/shiksha/tests"
)

func Test_AnalyticsAPI_dashboard(t *testing.T) {
	app := setup(t)
	createTeacher(t, "tok-1")

	std1 := testutil.CreateStudent(t, stdRepo, "Asha", "1", "10", "A", "school-1")
	std2 := testutil.CreateStudent(t, stdRepo, "Binod", "2", "10", "A", "school-1")
	today := core.Today()
	testutil.CreateRecord(t, attRepo, std1.ID, "school-1", "10", "A", today, attendance.StatusPresent)
	testutil.CreateRecord(t, attRepo, std2.ID, "school-1", "10", "A", today, attendance.StatusAbsent)

	req, rec := newAuthRequest(http.MethodGet, "/api/analytics/dashboard", "tok-1")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var dash attendance.Dashboard
	decodeBody(t, rec, &dash)
	assert.Equal(t, int64(2), dash.TotalStudents)
	assert.Equal(t, 1, dash.TodayPresent)
	assert.Equal(t, 1, dash.TodayAbsent)
	assert.Equal(t, float64(50), dash.AttendanceRate)
	assert.Equal(t, "teacher", dash.UserRole)
	if assert.Len(t, dash.Trends, 7) {
		assert.Equal(t, today, dash.Trends[6].Date)
	}
}

func Test_AnalyticsAPI_insights(t *testing.T) {
	app := setup(t)
	createTeacher(t, "tok-1")
	createAdmin(t, "tok-admin")

	std := testutil.CreateStudent(t, stdRepo, "Asha", "1", "10", "A", "school-1")
	testutil.CreateStudent(t, stdRepo, "Dev", "1", "9", "A", "school-2")
	testutil.CreateRecord(t, attRepo, std.ID, "school-1", "10", "A", "2024-01-01", attendance.StatusPresent)
	testutil.CreateRecord(t, attRepo, "other", "school-2", "9", "A", "2024-01-01", attendance.StatusAbsent)

	t.Run("teacher is scoped to their own school", func(t *testing.T) {
		// the request school_id is ignored for teachers
		body := marshallObj(t, attendance.AnalyticsRequest{SchoolID: "school-2"})
		req, rec := newAuthRequest(http.MethodPost, "/api/analytics/insights", "tok-1", body)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var insights attendance.Insights
		decodeBody(t, rec, &insights)
		assert.Equal(t, int64(1), insights.Analytics.TotalStudents)
		assert.Equal(t, 1, insights.Analytics.TotalAttendanceRecords)
		assert.Equal(t, map[string]int{"present": 1}, insights.Analytics.AttendanceByStatus)
		assert.Equal(t, mockInsightText, insights.AIInsights)
		assert.False(t, insights.GeneratedAt.IsZero())
	})

	t.Run("administrator may scope to another school", func(t *testing.T) {
		body := marshallObj(t, attendance.AnalyticsRequest{SchoolID: "school-2"})
		req, rec := newAuthRequest(http.MethodPost, "/api/analytics/insights", "tok-admin", body)
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var insights attendance.Insights
		decodeBody(t, rec, &insights)
		assert.Equal(t, map[string]int{"absent": 1}, insights.Analytics.AttendanceByStatus)
	})
}
