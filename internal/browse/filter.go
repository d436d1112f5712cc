package browse

import (
	"strings"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
)

// FilterProjects returns the projects whose supervisor, interested area or
// idea text contains query, ignoring case. Order is preserved. An empty
// query returns projects unchanged.
func FilterProjects(projects []domain.ProjectIdea, query string) []domain.ProjectIdea {
	if query == "" {
		return projects
	}
	needle := strings.ToLower(query)
	out := make([]domain.ProjectIdea, 0, len(projects))
	for _, p := range projects {
		if matches(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p domain.ProjectIdea, needle string) bool {
	return strings.Contains(strings.ToLower(p.Supervisor), needle) ||
		strings.Contains(strings.ToLower(p.InterestedArea), needle) ||
		strings.Contains(strings.ToLower(p.ProjectIdea), needle)
}

// CopyText is what the copy action puts on the clipboard for a project.
func CopyText(p domain.ProjectIdea) string {
	return p.ProjectIdea
}
