package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
	inmemdb "github.com/shikshaconnect/shiksha/storage/database/inmem"
)

// NewConfig returns a test configuration; nothing is read from the environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		Debug:           true,
		TestMode:        true,
		Env:             "TEST",
		Build:           "test",
		AppName:         "Shiksha",
		DefaultSchoolID: "default_school",
	}
	conf.Server.ShutdownTimeout = 5 * time.Second
	return conf
}

// NewValidator returns a validator with all app validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate, translator
}

func OpenDB(t *testing.T) *inmemdb.DB {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, name, email, role, schoolID string, tokens ...string) user.User {
	now := time.Now().UTC()
	usr := user.User{
		ID:            uuid.New().String(),
		Email:         email,
		Name:          name,
		Role:          role,
		SchoolID:      schoolID,
		SessionTokens: tokens,
		CreatedAt:     now,
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo student.Repository, name, rollNumber, className, section, schoolID string) student.Student {
	std := student.Student{
		ID:               uuid.New().String(),
		Name:             name,
		RollNumber:       rollNumber,
		ClassName:        className,
		Section:          section,
		SchoolID:         schoolID,
		EnrollmentStatus: student.EnrollmentActive,
		CreatedAt:        time.Now().UTC(),
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateRecord(t *testing.T, repo attendance.Repository, studentID, schoolID, className, section, date, status string) attendance.Record {
	rec := attendance.Record{
		ID:        uuid.New().String(),
		StudentID: studentID,
		SchoolID:  schoolID,
		ClassName: className,
		Section:   section,
		Date:      date,
		Status:    status,
		MarkedBy:  "test-marker",
		MarkedAt:  time.Now().UTC(),
		Method:    attendance.MethodManual,
	}
	rec, err := repo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}

// Logger is a quiet core.Logger for tests.
type Logger struct{}

var _ core.Logger = (*Logger)(nil)

func (Logger) Enable(bool)                  {}
func (Logger) Debug(string, ...interface{}) {}
func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}
func (Logger) Fatal(string, ...interface{}) {}
