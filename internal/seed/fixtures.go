package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the parsed seed data set. Users are referenced from the
// other sections by their key, never by a database ID, so fixture files
// stay stable across reseeds.
type Fixtures struct {
	Users       []UserFixture       `yaml:"users"`
	Groups      []GroupFixture      `yaml:"groups"`
	Annotations []AnnotationFixture `yaml:"annotations"`
	Tasks       []TaskFixture       `yaml:"tasks"`
}

// UserFixture seeds one account.
type UserFixture struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// MemberFixture grants one user a role on a group or annotation.
type MemberFixture struct {
	User string `yaml:"user"`
	Role string `yaml:"role"`
}

// GroupFixture seeds one group with optional members.
type GroupFixture struct {
	Owner       string          `yaml:"owner"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Members     []MemberFixture `yaml:"members"`
}

// AnnotationFixture seeds one annotation, optionally inside one of the
// owner's groups.
type AnnotationFixture struct {
	Owner    string          `yaml:"owner"`
	Title    string          `yaml:"title"`
	Content  string          `yaml:"content"`
	Category string          `yaml:"category"`
	Group    string          `yaml:"group"`
	Members  []MemberFixture `yaml:"members"`
}

// TaskFixture seeds one task.
type TaskFixture struct {
	Owner       string    `yaml:"owner"`
	Name        string    `yaml:"name"`
	Category    string    `yaml:"category"`
	SubCategory string    `yaml:"sub_category"`
	Priority    string    `yaml:"priority"`
	Date        time.Time `yaml:"date"`
	Subtasks    []string  `yaml:"subtasks"`
}

// LoadFixtures parses a fixture file, or the embedded default set when
// path is empty.
func LoadFixtures(path string) (*Fixtures, error) {
	data := defaultFixtures
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixtures: %w", err)
		}
	}

	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	for _, user := range fixtures.Users {
		if user.Key == "" || user.Email == "" {
			return nil, fmt.Errorf("fixture user %q must have key and email", user.Name)
		}
	}

	return &fixtures, nil
}
