package attendance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
)

var (
	ErrNotFound = errors.New("attendance record not found")
)

const insightUnavailableMsg = "AI insights are currently unavailable. The insight service is not configured."

type (
	Repository interface {
		// GetRecord fetches the single record for (student_id, date).
		GetRecord(ctx context.Context, studentID, date string) (Record, error)
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		// UpdateRecord overwrites status/marked_by/marked_at/method of the
		// record for (student_id, date) in place. Last write wins; there is
		// no compare-and-swap.
		UpdateRecord(ctx context.Context, studentID, date string, upd RecordUpdate) error
		// FilterRecords applies AND operation on available QueryFilter fields.
		FilterRecords(ctx context.Context, filter QueryFilter) ([]Record, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		insights core.InsightService
		conf     *core.Config
	}
)

func NewService(repo Repository, students student.Repository, insights core.InsightService, conf *core.Config) *Service {
	return &Service{repo: repo, students: students, insights: insights, conf: conf}
}

// Mark upserts one record per (student, date) for each id in the batch.
// The batch is not transactional: a failure partway through leaves prior
// per-student writes committed. Unknown student ids never fail the batch;
// their records are created with blank class/section.
func (svc *Service) Mark(ctx context.Context, caller user.User, req MarkRequest) (MarkResult, error) {
	var res MarkResult
	now := time.Now().UTC()

	for _, studentID := range req.StudentIDs {
		_, err := svc.repo.GetRecord(ctx, studentID, req.Date)
		switch {
		case err == nil:
			upd := RecordUpdate{
				Status:   req.Status,
				MarkedBy: caller.ID,
				MarkedAt: now,
				Method:   req.Method,
			}
			if err = svc.repo.UpdateRecord(ctx, studentID, req.Date, upd); err != nil {
				return res, errors.Wrap(err, "updating attendance record")
			}

		case errors.Cause(err) == ErrNotFound:
			rec := Record{
				ID:        uuid.New().String(),
				StudentID: studentID,
				SchoolID:  caller.SchoolOrDefault(svc.conf.DefaultSchoolID),
				Date:      req.Date,
				Status:    req.Status,
				MarkedBy:  caller.ID,
				MarkedAt:  now,
				Method:    req.Method,
			}
			// class/section denormalized from the registry; left blank when
			// the student does not resolve
			if std, sErr := svc.students.GetStudentByID(ctx, studentID); sErr == nil {
				rec.ClassName = std.ClassName
				rec.Section = std.Section
			}
			if _, err = svc.repo.CreateRecord(ctx, rec); err != nil {
				return res, errors.Wrap(err, "creating attendance record")
			}
			res.Created++

		default:
			return res, errors.Wrap(err, "fetching attendance record")
		}
		res.Processed++
	}
	return res, nil
}

// Find lists one date's records for the caller's school, each enriched with
// the student's name and roll number when the student still resolves; rows
// whose student is gone are kept without those fields.
func (svc *Service) Find(ctx context.Context, caller user.User, date, className, section string) ([]DayRecord, error) {
	filter := QueryFilter{
		SchoolID:  caller.SchoolOrDefault(svc.conf.DefaultSchoolID),
		ClassName: className,
		Section:   section,
		Date:      date,
	}
	recs, err := svc.repo.FilterRecords(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "filtering attendance records")
	}

	enriched := make([]DayRecord, 0, len(recs))
	for _, rec := range recs {
		day := DayRecord{Record: rec}
		if std, sErr := svc.students.GetStudentByID(ctx, rec.StudentID); sErr == nil {
			day.StudentName = std.Name
			day.RollNumber = std.RollNumber
		}
		enriched = append(enriched, day)
	}
	return enriched, nil
}

// Report joins the Ledger with the Registry under the request filters.
// Scoping to the caller's school is mandatory (default-school fallback); the
// request school_id is accepted but never applied. Date bounds combine
// independently. Rows whose student no longer resolves are dropped. Rows are
// sorted by (date, class_name, section, roll_number); the underlying store
// order is not relied upon.
func (svc *Service) Report(ctx context.Context, caller user.User, req ReportRequest) ([]ReportRecord, error) {
	filter := QueryFilter{
		SchoolID:  caller.SchoolOrDefault(svc.conf.DefaultSchoolID),
		ClassName: req.ClassName,
		Section:   req.Section,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	recs, err := svc.repo.FilterRecords(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "filtering attendance records")
	}

	rows := make([]ReportRecord, 0, len(recs))
	for _, rec := range recs {
		std, sErr := svc.students.GetStudentByID(ctx, rec.StudentID)
		if sErr != nil {
			continue // student no longer resolves
		}
		rows = append(rows, ReportRecord{
			StudentID:       rec.StudentID,
			StudentName:     std.Name,
			RollNumber:      std.RollNumber,
			ClassName:       rec.ClassName,
			Section:         rec.Section,
			Date:            rec.Date,
			Status:          rec.Status,
			MarkedBy:        rec.MarkedBy,
			Method:          rec.Method,
			ConfidenceScore: rec.ConfidenceScore,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.RollNumber < b.RollNumber
	})
	return rows, nil
}

// Dashboard computes the caller's school rollup: total students, today's
// present/absent counts, the attendance rate and the 7-day trailing trend
// (oldest first, one scoped query per day).
func (svc *Service) Dashboard(ctx context.Context, caller user.User) (Dashboard, error) {
	schoolID := caller.SchoolOrDefault(svc.conf.DefaultSchoolID)

	total, err := svc.students.CountStudents(ctx, schoolID)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting students")
	}

	today := core.Today()
	todayRecs, err := svc.repo.FilterRecords(ctx, QueryFilter{SchoolID: schoolID, Date: today})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "filtering today's records")
	}

	var present, absent int
	for _, rec := range todayRecs {
		switch rec.Status {
		case StatusPresent:
			present++
		case StatusAbsent:
			absent++
		}
	}

	trends := make([]TrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		date := core.DaysAgo(i)
		dayRecs, err := svc.repo.FilterRecords(ctx, QueryFilter{SchoolID: schoolID, Date: date})
		if err != nil {
			return Dashboard{}, errors.Wrapf(err, "filtering records for %s", date)
		}
		var dayPresent int
		for _, rec := range dayRecs {
			if rec.Status == StatusPresent {
				dayPresent++
			}
		}
		trends = append(trends, TrendPoint{Date: date, Present: dayPresent, Total: len(dayRecs)})
	}

	// denominator floored at 1 so an empty day reports rate 0
	rate := float64(present) / float64(max(present+absent, 1)) * 100

	return Dashboard{
		TotalStudents:  total,
		TodayPresent:   present,
		TodayAbsent:    absent,
		AttendanceRate: rate,
		Trends:         trends,
		UserRole:       caller.Role,
	}, nil
}

// Insights builds the role-scoped analytics summary and hands it to the
// insight generator. A teacher is always scoped to their own school; an
// administrator may scope to any school; a district officer's district_id is
// accepted but not applied as a filter. Generator failures degrade to a
// fallback message and are never retried or propagated.
func (svc *Service) Insights(ctx context.Context, caller user.User, req AnalyticsRequest) (Insights, error) {
	var filter QueryFilter
	switch caller.Role {
	case user.RoleTeacher:
		filter.SchoolID = caller.SchoolOrDefault(svc.conf.DefaultSchoolID)
	case user.RoleAdministrator:
		if req.SchoolID != "" {
			filter.SchoolID = req.SchoolID
		} else {
			filter.SchoolID = caller.SchoolOrDefault(svc.conf.DefaultSchoolID)
		}
	case user.RoleDistrictOfficer:
		// district_id scoping is not implemented; the whole Ledger is in scope
	}

	if req.DateRange != nil && req.DateRange.Start != "" && req.DateRange.End != "" {
		filter.StartDate = req.DateRange.Start
		filter.EndDate = req.DateRange.End
	}

	recs, err := svc.repo.FilterRecords(ctx, filter)
	if err != nil {
		return Insights{}, errors.Wrap(err, "filtering attendance records")
	}

	studentScope := filter.SchoolID
	if studentScope == "" {
		studentScope = svc.conf.DefaultSchoolID
	}
	total, err := svc.students.CountStudents(ctx, studentScope)
	if err != nil {
		return Insights{}, errors.Wrap(err, "counting students")
	}

	summary := Summary{
		TotalStudents:          total,
		TotalAttendanceRecords: len(recs),
		AttendanceByStatus:     make(map[string]int),
		AttendanceByClass:      make(map[string]int),
		RecentTrends:           []TrendPoint{},
	}
	for _, rec := range recs {
		summary.AttendanceByStatus[rec.Status]++
		summary.AttendanceByClass[rec.ClassName]++
	}

	return Insights{
		Analytics:   summary,
		AIInsights:  svc.generateInsights(ctx, summary),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// generateInsights maps any generator failure to a fallback string; the call
// is never retried.
func (svc *Service) generateInsights(ctx context.Context, summary Summary) string {
	if svc.insights == nil {
		return insightUnavailableMsg
	}
	text, err := svc.insights.Generate(ctx, summary)
	if err != nil {
		return fmt.Sprintf("Unable to generate AI insights: %v", err)
	}
	return text
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
