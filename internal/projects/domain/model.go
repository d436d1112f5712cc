package domain

import "strings"

// Department partitions project proposals. The set is fixed by the portal API.
type Department string

const (
	DepartmentCS      Department = "CS"
	DepartmentSE      Department = "SE"
	DepartmentIT      Department = "IT"
	DepartmentEE      Department = "EE"
	DepartmentBBA     Department = "BBA"
	DepartmentCYS     Department = "CYS"
	DepartmentAI      Department = "AI"
	DepartmentDS      Department = "DS"
	DepartmentGeneral Department = "General"
)

var departments = []Department{
	DepartmentCS,
	DepartmentSE,
	DepartmentIT,
	DepartmentEE,
	DepartmentBBA,
	DepartmentCYS,
	DepartmentAI,
	DepartmentDS,
	DepartmentGeneral,
}

// Departments returns every known department in display order.
func Departments() []Department {
	out := make([]Department, len(departments))
	copy(out, departments)
	return out
}

// ParseDepartment maps a raw value onto the fixed enumeration.
// Surrounding whitespace is ignored; matching is exact otherwise.
func ParseDepartment(s string) (Department, error) {
	s = strings.TrimSpace(s)
	for _, d := range departments {
		if string(d) == s {
			return d, nil
		}
	}
	return "", ErrUnknownDepartment
}

// Valid reports whether d is exactly one of the known codes.
func (d Department) Valid() bool {
	for _, known := range departments {
		if d == known {
			return true
		}
	}
	return false
}

func (d Department) String() string {
	return string(d)
}

// ProjectIdea is a single faculty-submitted proposal as served by the portal API.
// The client never mutates it.
type ProjectIdea struct {
	ID             string `json:"id"`
	Supervisor     string `json:"supervisor"`
	InterestedArea string `json:"interested_area"`
	ProjectIdea    string `json:"project_idea"`
	Department     string `json:"department"`
}
