package inmemdb

import (
	"context"

	"github.com/shikshaconnect/shiksha/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) GetRecord(_ context.Context, studentID, date string) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rec := range repo.db.table {
		if rec.StudentID == studentID && rec.Date == date {
			return *rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) UpdateRecord(_ context.Context, studentID, date string, upd attendance.RecordUpdate) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, rec := range repo.db.table {
		if rec.StudentID == studentID && rec.Date == date {
			rec.Status = upd.Status
			rec.MarkedBy = upd.MarkedBy
			rec.MarkedAt = upd.MarkedAt
			rec.Method = upd.Method
			return nil
		}
	}
	return attendance.ErrNotFound
}

func (repo *attendanceRepository) FilterRecords(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]attendance.Record, 0)
	for _, rec := range repo.db.table {
		if filter.SchoolID != "" && rec.SchoolID != filter.SchoolID {
			continue
		}
		if filter.ClassName != "" && rec.ClassName != filter.ClassName {
			continue
		}
		if filter.Section != "" && rec.Section != filter.Section {
			continue
		}
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		if filter.StartDate != "" && rec.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && rec.Date > filter.EndDate {
			continue
		}
		matches = append(matches, *rec)
	}
	return matches, nil
}
