package inmemdb

import (
	"sync"

	"github.com/shikshaconnect/shiksha/core/attendance"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
)

type (
	DB struct {
		user       *userTable
		student    *studentTable
		attendance *attendanceTable
	}

	userTable struct {
		table map[string]*user.User // keyed by User.ID
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[string]*student.Student // keyed by Student.ID
		mutex sync.RWMutex
	}

	attendanceTable struct {
		table map[string]*attendance.Record // keyed by Record.ID
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		student:    &studentTable{table: make(map[string]*student.Student)},
		attendance: &attendanceTable{table: make(map[string]*attendance.Record)},
	}
	return db, nil
}
