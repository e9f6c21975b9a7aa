package student

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shikshaconnect/shiksha/core"
)

// Enrollment statuses
const (
	EnrollmentActive = "active"
)

type Student struct {
	ID               string    `json:"id" bson:"id"`
	Name             string    `json:"name" bson:"name"`
	RollNumber       string    `json:"roll_number" bson:"roll_number"`
	ClassName        string    `json:"class_name" bson:"class_name"`
	Section          string    `json:"section" bson:"section"`
	DateOfBirth      string    `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	ParentName       string    `json:"parent_name,omitempty" bson:"parent_name,omitempty"`
	ParentContact    string    `json:"parent_contact,omitempty" bson:"parent_contact,omitempty"`
	SchoolID         string    `json:"school_id" bson:"school_id"`
	PhotoURL         string    `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	FacialEmbeddings []float64 `json:"facial_embeddings,omitempty" bson:"facial_embeddings,omitempty"`
	EnrollmentStatus string    `json:"enrollment_status" bson:"enrollment_status"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"` // UTC
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	Name          string `json:"name" validate:"required"`
	RollNumber    string `json:"roll_number" validate:"required,alphanum_"`
	ClassName     string `json:"class_name" validate:"required"`
	Section       string `json:"section" validate:"required"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,dateonly"`
	ParentName    string `json:"parent_name"`
	ParentContact string `json:"parent_contact"`

	// Photo is the raw uploaded photo, processed for facial recognition
	// when present.
	Photo []byte `json:"-"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.Name = core.CleanString(ns.Name)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.Section = core.CleanString(ns.Section)
	return validate.Struct(ns)
}

// QueryFilter narrows a school-scoped student listing; empty fields are absent.
type QueryFilter struct {
	ClassName string `query:"class_name"`
	Section   string `query:"section"`
}

// SectionGroup is a repository-level rollup of students per (class, section).
type SectionGroup struct {
	ClassName string
	Section   string
	Count     int
}

// SectionCount is one entry of the class directory, ordered by section.
type SectionCount struct {
	Section      string `json:"section"`
	StudentCount int    `json:"student_count"`
}
