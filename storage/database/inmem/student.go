package inmemdb

import (
	"context"
	"strconv"

	"github.com/opel-edu/dashboard/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) indexOf(id string) int {
	for i, std := range repo.db.rows {
		if std.ID == id {
			return i
		}
	}
	return -1
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, len(repo.db.rows))
	copy(students, repo.db.rows)
	return students, nil
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.rows))
	for _, std := range repo.db.rows {
		if filter.Match(std) {
			students = append(students, std)
		}
	}
	return students, nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.rows {
		if s.RollNo == std.RollNo {
			return student.Student{}, student.ErrDuplicateRollNo
		}
	}

	repo.db.pkCount++
	std.ID = strconv.Itoa(repo.db.pkCount)
	repo.db.rows = append(repo.db.rows, std)
	return std, nil
}

func (repo *studentRepository) UpdateStudent(
	_ context.Context,
	id string,
	update func(s *student.Student),
) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	idx := repo.indexOf(id)
	if idx < 0 {
		return student.Student{}, student.ErrNotFound
	}
	std := repo.db.rows[idx]
	update(&std)
	std.ID = id // immutable
	repo.db.rows[idx] = std
	return std, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	idx := repo.indexOf(id)
	if idx < 0 {
		return student.Student{}, student.ErrNotFound
	}
	std := repo.db.rows[idx]
	repo.db.rows = append(repo.db.rows[:idx:idx], repo.db.rows[idx+1:]...)
	return std, nil
}
