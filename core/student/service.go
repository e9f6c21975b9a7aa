package student

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/user"
)

var (
	ErrNotFound   = errors.New("student not found")
	ErrRollExists = errors.New("student with this roll number already exists")
)

type (
	Repository interface {
		// CheckRollNumberUniqueness enforces uniqueness of
		// (roll_number, class_name, section, school_id).
		CheckRollNumberUniqueness(ctx context.Context, rollNumber, className, section, schoolID string) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields
		// within the given school.
		FilterStudents(ctx context.Context, schoolID string, filter QueryFilter) ([]Student, error)
		CountStudents(ctx context.Context, schoolID string) (int64, error)
		// GroupBySection counts students per (class_name, section) within a school.
		// Order is not guaranteed; callers sort.
		GroupBySection(ctx context.Context, schoolID string) ([]SectionGroup, error)
	}

	Service struct {
		repo   Repository
		photos core.PhotoProcessor
		conf   *core.Config
	}
)

func NewService(repo Repository, photos core.PhotoProcessor, conf *core.Config) *Service {
	return &Service{repo: repo, photos: photos, conf: conf}
}

// Create registers a new student in the caller's school. A duplicate
// (roll_number, class_name, section, school) is rejected with a field error
// and no partial write. A provided photo is run through the facial-recognition
// pipeline; a pipeline failure rejects the whole create.
func (svc *Service) Create(ctx context.Context, caller user.User, ns NewStudent) (Student, error) {
	schoolID := caller.SchoolOrDefault(svc.conf.DefaultSchoolID)

	if err := svc.repo.CheckRollNumberUniqueness(ctx, ns.RollNumber, ns.ClassName, ns.Section, schoolID); err != nil {
		if errors.Cause(err) == ErrRollExists {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "roll_number", Error: err.Error()})
		}
		return Student{}, errors.Wrap(err, "checking roll number uniqueness")
	}

	std := Student{
		ID:               uuid.New().String(),
		Name:             ns.Name,
		RollNumber:       ns.RollNumber,
		ClassName:        ns.ClassName,
		Section:          ns.Section,
		DateOfBirth:      ns.DateOfBirth,
		ParentName:       ns.ParentName,
		ParentContact:    ns.ParentContact,
		SchoolID:         schoolID,
		EnrollmentStatus: EnrollmentActive,
		CreatedAt:        time.Now().UTC(),
	}

	if len(ns.Photo) > 0 {
		processed, err := svc.photos.Process(ns.Photo)
		if err != nil {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "photo", Error: err.Error()})
		}
		std.PhotoURL = "data:image/jpeg;base64," + processed.ImageBase64
		std.FacialEmbeddings = processed.Embeddings
	}

	return svc.repo.CreateStudent(ctx, std)
}

// Filter lists the caller's school's students, optionally narrowed by
// class and section.
func (svc *Service) Filter(ctx context.Context, caller user.User, filter QueryFilter) ([]Student, error) {
	filter.ClassName = core.CleanString(filter.ClassName)
	filter.Section = core.CleanString(filter.Section)
	return svc.repo.FilterStudents(ctx, caller.SchoolOrDefault(svc.conf.DefaultSchoolID), filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// Classes groups the caller's school's students by (class_name, section),
// sorted by class name then section.
func (svc *Service) Classes(ctx context.Context, caller user.User) (map[string][]SectionCount, error) {
	groups, err := svc.repo.GroupBySection(ctx, caller.SchoolOrDefault(svc.conf.DefaultSchoolID))
	if err != nil {
		return nil, errors.Wrap(err, "grouping students by section")
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].ClassName != groups[j].ClassName {
			return groups[i].ClassName < groups[j].ClassName
		}
		return groups[i].Section < groups[j].Section
	})

	classes := make(map[string][]SectionCount)
	for _, g := range groups {
		classes[g.ClassName] = append(classes[g.ClassName], SectionCount{
			Section:      g.Section,
			StudentCount: g.Count,
		})
	}
	return classes, nil
}
