package inmemdb

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/core/user"
)

type (
	// DB holds every table of the application. It lives as long as the process.
	DB struct {
		user    *userTable
		student *studentTable
		session *sessionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
		order []string // insertion order
	}

	studentTable struct {
		sync.RWMutex
		rows    []student.Student // insertion order
		pkCount int               // never decremented
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]session.Session
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		student: &studentTable{},
		session: &sessionTable{table: make(map[string]session.Session)},
	}
	return db, nil
}

// Load replaces the users and students with the given ones, keeping their IDs.
// The student ID counter restarts after the highest numeric ID.
func (db *DB) Load(users []user.User, students []student.Student) error {
	db.user.Lock()
	defer db.user.Unlock()
	db.student.Lock()
	defer db.student.Unlock()

	usrTable := make(map[string]*user.User, len(users))
	order := make([]string, 0, len(users))
	for i := range users {
		usr := users[i]
		if _, ok := usrTable[usr.ID]; ok {
			return errors.Errorf("duplicate user id %q", usr.ID)
		}
		usrTable[usr.ID] = &usr
		order = append(order, usr.ID)
	}

	rows := make([]student.Student, 0, len(students))
	var pkCount int
	seen := make(map[string]bool, len(students))
	for _, std := range students {
		if seen[std.ID] {
			return errors.Errorf("duplicate student id %q", std.ID)
		}
		seen[std.ID] = true
		if pk, err := strconv.Atoi(std.ID); err == nil && pk > pkCount {
			pkCount = pk
		}
		rows = append(rows, std)
	}

	db.user.table, db.user.order = usrTable, order
	db.student.rows, db.student.pkCount = rows, pkCount
	return nil
}
