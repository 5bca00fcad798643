package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoMatchingRule is returned when a branch matches no version rule.
var ErrNoMatchingRule = errors.New("no matching version rule")

// VersionRule maps a branch-name pattern to a release policy.
type VersionRule struct {
	// Pattern is matched against the branch name, anchored at the start.
	Pattern *regexp.Regexp
	// PrereleaseTag, when non-empty, puts the branch on a prerelease track
	// (e.g. "rc").
	PrereleaseTag string
	// AddBuildMetadata appends branch-derived build metadata to the result.
	AddBuildMetadata bool
}

// NewVersionRule compiles a rule.  The pattern is anchored at the start of
// the branch name.
func NewVersionRule(pattern, prereleaseTag string, addBuildMetadata bool) (VersionRule, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return VersionRule{}, fmt.Errorf("invalid rule pattern %q: %w", pattern, err)
	}
	return VersionRule{Pattern: re, PrereleaseTag: prereleaseTag, AddBuildMetadata: addBuildMetadata}, nil
}

// DefaultRules returns the standard release policy: stable releases from
// main, release candidates from dev, and alpha prereleases with build
// metadata from every other branch.
func DefaultRules() []VersionRule {
	rules := make([]VersionRule, 0, 3)
	for _, def := range []struct {
		pattern, tag string
		metadata     bool
	}{
		{pattern: "main"},
		{pattern: "dev", tag: "rc"},
		{pattern: ".*", tag: "alpha", metadata: true},
	} {
		rule, err := NewVersionRule(def.pattern, def.tag, def.metadata)
		if err != nil {
			panic(err)
		}
		rules = append(rules, rule)
	}
	return rules
}

// MatchRule evaluates rules in order and returns the first whose pattern
// matches the branch name.
func MatchRule(rules []VersionRule, branch string) (VersionRule, error) {
	for _, rule := range rules {
		if rule.Pattern.MatchString(branch) {
			return rule, nil
		}
	}
	return VersionRule{}, fmt.Errorf("%w: %q", ErrNoMatchingRule, branch)
}

var nonAlphanumeric = regexp.MustCompile("[^0-9A-Za-z]+")

// BranchMetadata derives build metadata from a branch name by collapsing
// runs of non-alphanumeric characters into single dots.
func BranchMetadata(branch string) string {
	return strings.Trim(nonAlphanumeric.ReplaceAllString(branch, "."), ".")
}
