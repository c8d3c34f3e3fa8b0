package portal

import "strings"

// Path prefixes the portal uses for student pages.
const (
	facultyStudentPrefix = "/FIT/st/"
	studentPrefix        = "/st/"
	facultyPrefix        = "/FIT"
)

// ResolveURL turns a raw portal link into an absolute URL.
// origin is the portal's scheme and host, without a trailing slash.
//
// The branches must stay in this order; the portal mixes all three link
// shapes across page types.
func ResolveURL(origin, raw string) string {
	switch {
	case strings.HasPrefix(raw, "http"):
		return raw
	case strings.HasPrefix(raw, facultyStudentPrefix):
		return origin + raw
	case strings.HasPrefix(raw, studentPrefix):
		return origin + facultyPrefix + raw
	default:
		return origin + facultyStudentPrefix + raw
	}
}
