package attendance

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shikshaconnect/shiksha/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Marking methods
const (
	MethodFacialRecognition = "facial_recognition"
	MethodManual            = "manual"
	MethodRFID              = "rfid"
)

var (
	AllStatuses = []string{StatusPresent, StatusAbsent, StatusLate}
	AllMethods  = []string{MethodFacialRecognition, MethodManual, MethodRFID}
)

// Record is one Ledger entry; at most one exists per (student_id, date).
// class_name/section are denormalized from the Student at mark time and are
// not kept in sync with later registry changes.
type Record struct {
	ID              string    `json:"id" bson:"id"`
	StudentID       string    `json:"student_id" bson:"student_id"`
	SchoolID        string    `json:"school_id" bson:"school_id"`
	ClassName       string    `json:"class_name" bson:"class_name"`
	Section         string    `json:"section" bson:"section"`
	Date            string    `json:"date" bson:"date"` // YYYY-MM-DD
	Status          string    `json:"status" bson:"status"`
	MarkedBy        string    `json:"marked_by" bson:"marked_by"`
	MarkedAt        time.Time `json:"marked_at" bson:"marked_at"` // UTC
	Method          string    `json:"method" bson:"method"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty" bson:"confidence_score,omitempty"`
}

// RecordUpdate is the overwrite applied to an existing Record on re-mark.
type RecordUpdate struct {
	Status   string
	MarkedBy string
	MarkedAt time.Time
	Method   string
}

// MarkRequest marks a batch of students for one date.
type MarkRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1"`
	Date       string   `json:"date" validate:"required,dateonly"`
	Status     string   `json:"status" validate:"required,attstatus"`
	Method     string   `json:"method" validate:"omitempty,attmethod"`
}

func (mr *MarkRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	mr.Date = core.CleanString(mr.Date)
	if mr.Method == "" {
		mr.Method = MethodManual
	}
	return validate.Struct(mr)
}

// MarkResult reports how a mark batch went; Created counts new Ledger rows.
type MarkResult struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
}

// QueryFilter narrows a Ledger query; empty fields are absent.
// Date is an exact match; StartDate/EndDate combine independently into
// one-sided or closed bounds, compared lexicographically.
type QueryFilter struct {
	SchoolID  string
	ClassName string
	Section   string
	Date      string
	StartDate string
	EndDate   string
}

// DayRecord is a Ledger entry enriched with registry data for the per-date
// listing; the student fields stay empty when the student no longer resolves.
type DayRecord struct {
	Record
	StudentName string `json:"student_name,omitempty"`
	RollNumber  string `json:"roll_number,omitempty"`
}

// ReportRequest filters the attendance report. SchoolID is accepted but not
// applied; the report is always scoped to the caller's school.
type ReportRequest struct {
	SchoolID  string `json:"school_id"`
	ClassName string `json:"class_name"`
	Section   string `json:"section"`
	StartDate string `json:"start_date" validate:"omitempty,dateonly"`
	EndDate   string `json:"end_date" validate:"omitempty,dateonly"`
}

func (rr *ReportRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	rr.StartDate = core.CleanString(rr.StartDate)
	rr.EndDate = core.CleanString(rr.EndDate)
	return validate.Struct(rr)
}

// ReportRecord is one tabular report row, joined with the registry.
type ReportRecord struct {
	StudentID       string   `json:"student_id"`
	StudentName     string   `json:"student_name"`
	RollNumber      string   `json:"roll_number"`
	ClassName       string   `json:"class_name"`
	Section         string   `json:"section"`
	Date            string   `json:"date"`
	Status          string   `json:"status"`
	MarkedBy        string   `json:"marked_by"`
	Method          string   `json:"method"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

// TrendPoint is one per-day rollup of a trend series.
type TrendPoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Total   int    `json:"total"`
}

// Dashboard is the role-scoped dashboard rollup.
type Dashboard struct {
	TotalStudents  int64        `json:"total_students"`
	TodayPresent   int          `json:"today_present"`
	TodayAbsent    int          `json:"today_absent"`
	AttendanceRate float64      `json:"attendance_rate"`
	Trends         []TrendPoint `json:"trends"`
	UserRole       string       `json:"user_role"`
}

// DateRange is an inclusive calendar-date range.
type DateRange struct {
	Start string `json:"start" validate:"omitempty,dateonly"`
	End   string `json:"end" validate:"omitempty,dateonly"`
}

// AnalyticsRequest scopes the insights computation. DistrictID and
// ClassFilter are accepted but not applied as filters.
type AnalyticsRequest struct {
	SchoolID    string     `json:"school_id"`
	DistrictID  string     `json:"district_id"`
	DateRange   *DateRange `json:"date_range"`
	ClassFilter string     `json:"class_filter"`
}

func (ar *AnalyticsRequest) Validate(validate *validator.Validate, translator ut.Translator) error {
	return validate.Struct(ar)
}

// Summary is the derived, transient analytics document handed to the
// insight generator; it is never persisted.
type Summary struct {
	TotalStudents          int64          `json:"total_students"`
	TotalAttendanceRecords int            `json:"total_attendance_records"`
	AttendanceByStatus     map[string]int `json:"attendance_by_status"`
	AttendanceByClass      map[string]int `json:"attendance_by_class"`
	RecentTrends           []TrendPoint   `json:"recent_trends"`
}

// Insights is the analytics response: the summary, the generated (or
// fallback) commentary and the generation timestamp.
type Insights struct {
	Analytics   Summary   `json:"analytics"`
	AIInsights  string    `json:"ai_insights"`
	GeneratedAt time.Time `json:"generated_at"` // UTC
}
