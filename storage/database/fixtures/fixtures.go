// Package fixtures loads the seed dataset: the user directory and the initial students.
package fixtures

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/core/user"
	appfs "github.com/opel-edu/dashboard/fs"
	inmemdb "github.com/opel-edu/dashboard/storage/database/inmem"
)

type (
	Fixture struct {
		Users    []UserRecord    `yaml:"users"`
		Students []StudentRecord `yaml:"students"`
	}

	UserRecord struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	}

	StudentRecord struct {
		ID            string `yaml:"id"`
		Name          string `yaml:"name"`
		RollNo        string `yaml:"rollNo"`
		Class         string `yaml:"class"`
		Section       string `yaml:"section"`
		ParentName    string `yaml:"parentName"`
		ParentPhone   string `yaml:"parentPhone"`
		Attendance    *int   `yaml:"attendance"`
		Status        string `yaml:"status"`
		Address       string `yaml:"address"`
		DateOfBirth   string `yaml:"dateOfBirth"`
		Gender        string `yaml:"gender"`
		BloodGroup    string `yaml:"bloodGroup"`
		AdmissionDate string `yaml:"admissionDate"`
	}
)

// Read decodes and validates a fixture.
func Read(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixture
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding fixture")
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// ReadFile reads the fixture at path, or the embedded default fixture when path is empty.
func ReadFile(path string) (*Fixture, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = appfs.FS.ReadFile(appfs.SeedFile)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading fixture")
	}
	return Read(bytes.NewReader(data))
}

// Validate checks that IDs, emails and roll numbers are unique and required values are set.
func (fx *Fixture) Validate() error {
	userIDs := make(map[string]bool, len(fx.Users))
	emails := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		switch {
		case u.ID == "" || u.Email == "" || u.Password == "":
			return errors.Errorf("users[%d]: id, email and password are required", i)
		case userIDs[u.ID]:
			return errors.Errorf("users[%d]: duplicate id %q", i, u.ID)
		case emails[u.Email]:
			return errors.Errorf("users[%d]: duplicate email %q", i, u.Email)
		case !user.IsValidRole(u.Role):
			return errors.Errorf("users[%d]: invalid role %q", i, u.Role)
		}
		userIDs[u.ID] = true
		emails[u.Email] = true
	}

	studentIDs := make(map[string]bool, len(fx.Students))
	rollNos := make(map[string]bool, len(fx.Students))
	for i, s := range fx.Students {
		switch {
		case s.ID == "" || s.Name == "" || s.RollNo == "":
			return errors.Errorf("students[%d]: id, name and rollNo are required", i)
		case studentIDs[s.ID]:
			return errors.Errorf("students[%d]: duplicate id %q", i, s.ID)
		case rollNos[s.RollNo]:
			return errors.Errorf("students[%d]: duplicate rollNo %q", i, s.RollNo)
		case s.Status != "" && s.Status != student.StatusActive && s.Status != student.StatusInactive:
			return errors.Errorf("students[%d]: invalid status %q", i, s.Status)
		}
		studentIDs[s.ID] = true
		rollNos[s.RollNo] = true
	}
	return nil
}

// UserList returns the users with their passwords hashed using the given bcrypt cost.
func (fx *Fixture) UserList(cost int) ([]user.User, error) {
	users := make([]user.User, 0, len(fx.Users))
	for _, u := range fx.Users {
		usr := user.User{
			ID:    u.ID,
			Name:  u.Name,
			Email: core.CleanString(u.Email),
			Role:  u.Role,
		}
		if err := usr.SetPassword(u.Password, cost); err != nil {
			return nil, errors.Wrapf(err, "hashing password of user %q", u.ID)
		}
		users = append(users, usr)
	}
	return users, nil
}

// StudentList returns the students, applying the creation defaults to unset values.
func (fx *Fixture) StudentList() []student.Student {
	students := make([]student.Student, 0, len(fx.Students))
	for _, s := range fx.Students {
		std := student.Student{
			ID:            s.ID,
			Name:          s.Name,
			RollNo:        s.RollNo,
			Class:         s.Class,
			Section:       s.Section,
			ParentName:    s.ParentName,
			ParentPhone:   s.ParentPhone,
			Attendance:    student.DefaultAttendance,
			Status:        s.Status,
			Address:       s.Address,
			DateOfBirth:   s.DateOfBirth,
			Gender:        s.Gender,
			BloodGroup:    s.BloodGroup,
			AdmissionDate: s.AdmissionDate,
		}
		if s.Attendance != nil {
			std.Attendance = *s.Attendance
		}
		if std.Status == "" {
			std.Status = student.StatusActive
		}
		students = append(students, std)
	}
	return students
}

// Seed loads the configured fixture into db.
func Seed(db *inmemdb.DB, conf *core.Config) error {
	fx, err := ReadFile(conf.SeedFile)
	if err != nil {
		return err
	}
	users, err := fx.UserList(conf.BcryptCost)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Load(users, fx.StudentList()), "loading fixture")
}
