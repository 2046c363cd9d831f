package student

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/opel-edu/dashboard/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	// FilterAll disables the class or status filter.
	FilterAll = "all"

	DefaultAttendance = 100
	DateLayout        = "2006-01-02"
)

var (
	errMissingFields       = "Missing required fields"
	errInvalidFields       = "Invalid student fields"
	errIDRequired          = "Student ID is required"
	errDuplicateRollNo     = "Student with this roll number already exists"
	errAttendanceRequired  = "Student ID and attendance are required"
	missingFieldValidators = map[string]bool{"required": true, "notblank": true}
)

type Student struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	RollNo        string `json:"rollNo"`
	Class         string `json:"class"`
	Section       string `json:"section"`
	ParentName    string `json:"parentName"`
	ParentPhone   string `json:"parentPhone"`
	Attendance    int    `json:"attendance"`
	Status        string `json:"status"`
	Address       string `json:"address"`
	DateOfBirth   string `json:"dateOfBirth"`
	Gender        string `json:"gender"`
	BloodGroup    string `json:"bloodGroup"`
	AdmissionDate string `json:"admissionDate"`
}

func (s Student) IsActive() bool {
	return s.Status == StatusActive
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name          string   `json:"name" validate:"required,notblank"`
	RollNo        string   `json:"rollNo" validate:"required,notblank"`
	Class         string   `json:"class" validate:"required,notblank"`
	Section       string   `json:"section" validate:"required,notblank"`
	ParentName    string   `json:"parentName" validate:"required,notblank"`
	ParentPhone   string   `json:"parentPhone" validate:"required,notblank"`
	Attendance    null.Int `json:"attendance"`
	Status        string   `json:"status" validate:"omitempty,student_status"`
	Address       string   `json:"address"`
	DateOfBirth   string   `json:"dateOfBirth" validate:"omitempty,isodate"`
	Gender        string   `json:"gender"`
	BloodGroup    string   `json:"bloodGroup"`
	AdmissionDate string   `json:"admissionDate" validate:"omitempty,isodate"`
}

func (ns *NewStudent) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.RollNo = core.CleanString(ns.RollNo)
	ns.Class = core.CleanString(ns.Class)
	ns.Section = core.CleanString(ns.Section)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	ns.Address = core.CleanString(ns.Address)
	ns.DateOfBirth = core.CleanString(ns.DateOfBirth)
	ns.Gender = core.CleanString(ns.Gender)
	ns.BloodGroup = core.CleanString(ns.BloodGroup)
	ns.AdmissionDate = core.CleanString(ns.AdmissionDate)
}

func (ns *NewStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.Clean()
	return validationError(validate.Struct(ns), translator)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Unset and blank values leave the field unchanged, except Address which a present "" clears.
type UpdateStudent struct {
	ID          string      `json:"id"`
	Name        null.String `json:"name"`
	Class       null.String `json:"class"`
	Section     null.String `json:"section"`
	ParentName  null.String `json:"parentName"`
	ParentPhone null.String `json:"parentPhone"`
	Address     null.String `json:"address"`
	Status      null.String `json:"status" validate:"omitempty,student_status"`
}

func (us *UpdateStudent) Clean() {
	us.ID = core.CleanString(us.ID)
	for _, fld := range []*null.String{&us.Name, &us.Class, &us.Section, &us.ParentName, &us.ParentPhone, &us.Address} {
		if fld.Valid {
			fld.String = core.CleanString(fld.String)
		}
	}
	if us.Status.Valid {
		us.Status.String = core.CleanString(us.Status.String, true /* lower */)
	}
}

func (us *UpdateStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	us.Clean()
	if us.ID == "" {
		return core.NewValidationMessage(errIDRequired, core.FieldError{Field: "id", Error: "this field is required"})
	}
	return validationError(validate.Struct(us), translator)
}

// apply merges us into s.
func (us UpdateStudent) apply(s *Student) {
	setIfPresent := func(dst *string, src null.String) {
		if src.Valid && src.String != "" {
			*dst = src.String
		}
	}
	setIfPresent(&s.Name, us.Name)
	setIfPresent(&s.Class, us.Class)
	setIfPresent(&s.Section, us.Section)
	setIfPresent(&s.ParentName, us.ParentName)
	setIfPresent(&s.ParentPhone, us.ParentPhone)
	setIfPresent(&s.Status, us.Status)
	if us.Address.Valid {
		s.Address = us.Address.String
	}
}

// UpdateAttendance overwrites a Student's attendance. Zero is a valid attendance.
type UpdateAttendance struct {
	ID         string   `json:"id"`
	Attendance null.Int `json:"attendance"`
}

func (ua *UpdateAttendance) Validate() error {
	ua.ID = core.CleanString(ua.ID)
	var flds []core.FieldError
	if ua.ID == "" {
		flds = append(flds, core.FieldError{Field: "id", Error: "this field is required"})
	}
	if !ua.Attendance.Valid {
		flds = append(flds, core.FieldError{Field: "attendance", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationMessage(errAttendanceRequired, flds...)
	}
	return nil
}

// QueryFilter selects students. Class and Status match exactly unless empty or FilterAll;
// Search does a case-insensitive match on one of Student.Name, Student.RollNo or Student.ParentName.
type QueryFilter struct {
	Class  string `query:"class"`
	Status string `query:"status"`
	Search string `query:"search"`
}

func (f *QueryFilter) Clean() {
	f.Class = core.CleanString(f.Class)
	f.Status = core.CleanString(f.Status)
	f.Search = strings.ToLower(f.Search) // whitespace is part of the search term
	if strings.EqualFold(f.Class, FilterAll) {
		f.Class = ""
	}
	if strings.EqualFold(f.Status, FilterAll) {
		f.Status = ""
	}
}

// Match reports whether s satisfies every filter. f must be cleaned.
func (f QueryFilter) Match(s Student) bool {
	if f.Class != "" && s.Class != f.Class {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.Search != "" {
		return strings.Contains(strings.ToLower(s.Name), f.Search) ||
			strings.Contains(strings.ToLower(s.RollNo), f.Search) ||
			strings.Contains(strings.ToLower(s.ParentName), f.Search)
	}
	return true
}

// Stats summarizes the student collection.
type Stats struct {
	Total             int            `json:"total"`
	Active            int            `json:"active"`
	Inactive          int            `json:"inactive"`
	AverageAttendance float64        `json:"averageAttendance"`
	ByClass           map[string]int `json:"byClass"`
}

// validationError converts validator errors into a *core.ValidationError.
func validationError(err error, translator ut.Translator) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, "validating student")
	}
	msg := errInvalidFields
	for _, verr := range verrs {
		if missingFieldValidators[verr.Tag()] {
			msg = errMissingFields
			break
		}
	}
	return core.NewValidationMessage(msg, core.FieldErrors(verrs, translator)...)
}
