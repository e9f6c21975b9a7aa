package inmemdb

import (
	"context"

	"github.com/shikshaconnect/shiksha/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CheckRollNumberUniqueness(_ context.Context, rollNumber, className, section, schoolID string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.query() {
		if std.RollNumber == rollNumber && std.ClassName == className &&
			std.Section == section && std.SchoolID == schoolID {
			return student.ErrRollExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, schoolID string, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]student.Student, 0)
	for _, std := range repo.query() {
		if std.SchoolID != schoolID {
			continue
		}
		if filter.ClassName != "" && std.ClassName != filter.ClassName {
			continue
		}
		if filter.Section != "" && std.Section != filter.Section {
			continue
		}
		matches = append(matches, std)
	}
	return matches, nil
}

func (repo *studentRepository) CountStudents(_ context.Context, schoolID string) (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var count int64
	for _, std := range repo.db.table {
		if std.SchoolID == schoolID {
			count++
		}
	}
	return count, nil
}

func (repo *studentRepository) GroupBySection(_ context.Context, schoolID string) ([]student.SectionGroup, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[[2]string]int)
	for _, std := range repo.db.table {
		if std.SchoolID == schoolID {
			counts[[2]string{std.ClassName, std.Section}]++
		}
	}

	groups := make([]student.SectionGroup, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, student.SectionGroup{
			ClassName: key[0],
			Section:   key[1],
			Count:     count,
		})
	}
	return groups, nil
}
