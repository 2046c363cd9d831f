package student

import (
	"context"
	"math"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core"
)

var (
	// errors
	ErrNotFound        = errors.New("student not found")
	ErrDuplicateRollNo = errors.New("student with this roll number already exists")

	nowFunc = time.Now // mockable
)

type (
	// Repository owns the student collection.
	// Every method must run atomically with respect to the others.
	Repository interface {
		QueryAllStudents(ctx context.Context) ([]Student, error)
		// FilterStudents returns, in insertion order, copies of the students matching filter.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		// CreateStudent assigns a new, never reused ID to s and appends it.
		// Returns ErrDuplicateRollNo if a live student has the same RollNo.
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// UpdateStudent applies update to the student with the given id and returns the result.
		UpdateStudent(ctx context.Context, id string, update func(s *Student)) (Student, error)
		// DeleteStudent removes the student with the given id and returns it.
		DeleteStudent(ctx context.Context, id string) (Student, error)
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator) *Service {
	RegisterValidators(validate, translator)
	return &Service{
		repo:       repo,
		validate:   validate,
		translator: translator,
	}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	filter.Clean()
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate, svc.translator); err != nil {
		return Student{}, err
	}

	std := Student{
		Name:          ns.Name,
		RollNo:        ns.RollNo,
		Class:         ns.Class,
		Section:       ns.Section,
		ParentName:    ns.ParentName,
		ParentPhone:   ns.ParentPhone,
		Attendance:    DefaultAttendance,
		Status:        ns.Status,
		Address:       ns.Address,
		DateOfBirth:   ns.DateOfBirth,
		Gender:        ns.Gender,
		BloodGroup:    ns.BloodGroup,
		AdmissionDate: ns.AdmissionDate,
	}
	if ns.Attendance.Valid {
		std.Attendance = ns.Attendance.Int
	}
	if std.Status == "" {
		std.Status = StatusActive
	}
	if std.AdmissionDate == "" {
		std.AdmissionDate = nowFunc().Format(DateLayout)
	}

	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateRollNo {
			return Student{}, core.NewValidationMessage(
				errDuplicateRollNo,
				core.FieldError{Field: "rollNo", Error: ErrDuplicateRollNo.Error()},
			)
		}
		return Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (svc *Service) Update(ctx context.Context, us UpdateStudent) (Student, error) {
	if err := us.Validate(svc.validate, svc.translator); err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, us.ID, us.apply)
}

func (svc *Service) UpdateAttendance(ctx context.Context, ua UpdateAttendance) (Student, error) {
	if err := ua.Validate(); err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, ua.ID, func(s *Student) {
		s.Attendance = ua.Attendance.Int
	})
}

func (svc *Service) Delete(ctx context.Context, id string) (Student, error) {
	id = core.CleanString(id)
	if id == "" {
		return Student{}, core.NewValidationMessage(errIDRequired, core.FieldError{Field: "id", Error: "this field is required"})
	}
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying students")
	}

	stats := Stats{Total: len(students), ByClass: make(map[string]int)}
	var attendance int
	for _, s := range students {
		if s.IsActive() {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByClass[s.Class]++
		attendance += s.Attendance
	}
	if stats.Total > 0 {
		avg := float64(attendance) / float64(stats.Total)
		stats.AverageAttendance = math.Round(avg*100) / 100
	}
	return stats, nil
}
