package validation

import (
	"net/url"
	"strings"
)

// BaseURL is the external idea validator the portal links to.
const BaseURL = "https://idea-catalyst.netlify.app/"

// BuildURL returns the validator link for one project idea. Parameters are
// form-encoded in the order title, area, supervisor.
func BuildURL(projectIdea, interestedArea, supervisor string) string {
	return BuildURLWithBase(BaseURL, projectIdea, interestedArea, supervisor)
}

// BuildURLWithBase is BuildURL against another validator deployment.
func BuildURLWithBase(base, projectIdea, interestedArea, supervisor string) string {
	// url.Values.Encode sorts keys; the validator's own links keep this order
	params := [][2]string{
		{"title", projectIdea},
		{"area", interestedArea},
		{"supervisor", supervisor},
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('?')
	for i, kv := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}
