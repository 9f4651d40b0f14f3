package graph

import (
	"fmt"
	"regexp"
)

// Version is a Graph API version path element such as "v20.0".
type Version string

const (
	// Unversioned omits the version element from request paths.
	Unversioned Version = ""
	// DefaultVersion is used when no version is configured.
	DefaultVersion Version = "v20.0"
)

var versionPattern = regexp.MustCompile(`^v\d+\.\d+$`)

// ParseVersion validates s. The empty string yields Unversioned.
func ParseVersion(s string) (Version, error) {
	if s == "" {
		return Unversioned, nil
	}
	if !versionPattern.MatchString(s) {
		return Unversioned, fmt.Errorf("invalid graph api version %q", s)
	}
	return Version(s), nil
}

// InPath reports whether the version appears in request paths.
func (v Version) InPath() bool {
	return v != Unversioned
}

func (v Version) String() string {
	if v == Unversioned {
		return "unversioned"
	}
	return string(v)
}
