package domain

import "strings"

// Change is the size of a version change, ordered none < patch < minor < major.
type Change int

const (
	ChangeNone Change = iota
	ChangePatch
	ChangeMinor
	ChangeMajor
)

// String returns the label of the change.
func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangePatch:
		return "patch"
	case ChangeMinor:
		return "minor"
	case ChangeMajor:
		return "major"
	}
	return "unknown"
}

// Less reports whether c is a smaller change than other.
func (c Change) Less(other Change) bool {
	return c < other
}

// Diff returns the coarsest component that differs between two versions,
// checked in major, minor, patch order.  Prerelease and build metadata are
// ignored.
func Diff(a, b Version) Change {
	if a.Major() != b.Major() {
		return ChangeMajor
	}
	if a.Minor() != b.Minor() {
		return ChangeMinor
	}
	if a.Patch() != b.Patch() {
		return ChangePatch
	}
	return ChangeNone
}

// messagePrefixes maps conventional-commit prefixes to the change they imply.
var messagePrefixes = map[string]Change{
	"build:":    ChangePatch,
	"chore:":    ChangePatch,
	"ci:":       ChangePatch,
	"docs:":     ChangePatch,
	"feat:":     ChangeMinor,
	"fix:":      ChangePatch,
	"perf:":     ChangePatch,
	"refactor:": ChangeMinor,
	"style:":    ChangePatch,
	"test:":     ChangePatch,
}

const breakingChangeMarker = "BREAKING CHANGE:"

// ChangeFromMessage classifies a commit message.  Only the first line is
// inspected for a conventional-commit prefix; a later line starting with
// "BREAKING CHANGE:" forces the result to major regardless of the prefix.
func ChangeFromMessage(message string) Change {
	lines := strings.Split(strings.TrimSpace(message), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return ChangeNone
	}
	change := ChangeNone
	for prefix, c := range messagePrefixes {
		if strings.HasPrefix(lines[0], prefix) {
			change = c
			break
		}
	}
	if change == ChangeNone {
		return ChangeNone
	}
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, breakingChangeMarker) {
			return ChangeMajor
		}
	}
	return change
}
