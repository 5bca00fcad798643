package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrMalformedVersion is returned when a version string cannot be parsed.
var ErrMalformedVersion = errors.New("malformed version")

// VersionFlavor selects the textual rendering of a version.
type VersionFlavor string

const (
	// FlavorSemver renders M.m.p[-tag.count][+metadata].
	FlavorSemver VersionFlavor = "semver"
	// FlavorGitTag renders the semver form prefixed with "v".
	FlavorGitTag VersionFlavor = "git-tag"
	// FlavorContainerTag renders the semver form with "+" replaced by "-",
	// since container tags cannot contain "+".
	FlavorContainerTag VersionFlavor = "container-tag"
	// FlavorPackageManager renders M.m.p[-tag][.metadata][.count].
	FlavorPackageManager VersionFlavor = "package-manager"
)

// ParseFlavor validates a flavor name supplied on the command line.
func ParseFlavor(s string) (VersionFlavor, error) {
	switch f := VersionFlavor(s); f {
	case FlavorSemver, FlavorGitTag, FlavorContainerTag, FlavorPackageManager:
		return f, nil
	}
	return "", fmt.Errorf("unknown version flavor: %q", s)
}

// versionPattern matches MAJOR.MINOR.PATCH[-TAG.COUNT][+METADATA].  The
// prerelease suffix requires both a tag and a counter.
var versionPattern = regexp.MustCompile(
	`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z-]+)\.(\d+))?(?:\+([0-9A-Za-z.-]+))?$`,
)

// Version is an immutable semantic version value.  The zero value is 0.0.0
// with no prerelease and no build metadata.
type Version struct {
	major, minor, patch uint64
	preTag              string
	preCount            uint64
	metadata            string
}

// ParseVersion parses a version string.  It is stricter than general semver:
// a prerelease suffix must consist of exactly a tag and a numeric counter.
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}
	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, s, err)
	}
	minor, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, s, err)
	}
	patch, err := strconv.ParseUint(m[3], 10, 64)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, s, err)
	}
	v := Version{major: major, minor: minor, patch: patch, metadata: m[6]}
	if m[4] != "" {
		count, err := strconv.ParseUint(m[5], 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, s, err)
		}
		if count == 0 {
			return Version{}, fmt.Errorf("%w: %q: prerelease counter must be positive", ErrMalformedVersion, s)
		}
		v.preTag = m[4]
		v.preCount = count
	}
	return v, nil
}

// MustParseVersion parses a version string and panics on failure.  Intended
// for literals in declarations and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Major returns the major component.
func (v Version) Major() uint64 { return v.major }

// Minor returns the minor component.
func (v Version) Minor() uint64 { return v.minor }

// Patch returns the patch component.
func (v Version) Patch() uint64 { return v.patch }

// Prerelease returns the prerelease tag and counter.  Both are zero-valued
// when the version is a final release.
func (v Version) Prerelease() (tag string, count uint64) {
	return v.preTag, v.preCount
}

// Metadata returns the build metadata, or an empty string.
func (v Version) Metadata() string { return v.metadata }

// IsPrerelease reports whether the version carries a prerelease suffix.
func (v Version) IsPrerelease() bool { return v.preTag != "" }

// Release returns the version with prerelease and build metadata stripped.
func (v Version) Release() Version {
	return Version{major: v.major, minor: v.minor, patch: v.patch}
}

// WithMetadata returns a copy of the version with the given build metadata.
func (v Version) WithMetadata(metadata string) Version {
	v.metadata = metadata
	return v
}

// Bump increments exactly one numeric component and strips any prerelease
// and build metadata.  The change must not be ChangeNone.
func (v Version) Bump(change Change) Version {
	out := Version{major: v.major, minor: v.minor, patch: v.patch}
	switch change {
	case ChangeMajor:
		out.major++
		out.minor = 0
		out.patch = 0
	case ChangeMinor:
		out.minor++
		out.patch = 0
	case ChangePatch:
		out.patch++
	default:
		panic(fmt.Sprintf("cannot bump version by %q", change))
	}
	return out
}

// BumpPrerelease increments the prerelease counter if the existing tag
// matches, otherwise restarts the counter at 1 under the given tag.  Build
// metadata is stripped.
func (v Version) BumpPrerelease(tag string) Version {
	count := uint64(1)
	if v.preTag == tag {
		count = v.preCount + 1
	}
	return Version{major: v.major, minor: v.minor, patch: v.patch, preTag: tag, preCount: count}
}

// Render returns the version formatted for the given flavor.
func (v Version) Render(flavor VersionFlavor) (string, error) {
	switch flavor {
	case FlavorSemver:
		return v.String(), nil
	case FlavorGitTag:
		return "v" + v.String(), nil
	case FlavorContainerTag:
		return strings.ReplaceAll(v.String(), "+", "-"), nil
	case FlavorPackageManager:
		var b strings.Builder
		fmt.Fprintf(&b, "%d.%d.%d", v.major, v.minor, v.patch)
		if v.preTag != "" {
			fmt.Fprintf(&b, "-%s", v.preTag)
		}
		if v.metadata != "" {
			fmt.Fprintf(&b, ".%s", v.metadata)
		}
		if v.preTag != "" {
			fmt.Fprintf(&b, ".%d", v.preCount)
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("unknown version flavor: %q", flavor)
}

// String returns the canonical semver rendering.
func (v Version) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d.%d.%d", v.major, v.minor, v.patch)
	if v.preTag != "" {
		fmt.Fprintf(&b, "-%s.%d", v.preTag, v.preCount)
	}
	if v.metadata != "" {
		fmt.Fprintf(&b, "+%s", v.metadata)
	}
	return b.String()
}

// sem converts to the underlying semver representation used for ordering.
func (v Version) sem() *semver.Version {
	pre := ""
	if v.preTag != "" {
		pre = fmt.Sprintf("%s.%d", v.preTag, v.preCount)
	}
	return semver.New(v.major, v.minor, v.patch, pre, v.metadata)
}

// Compare returns -1, 0, or 1 when v sorts before, equal to, or after other.
// Build metadata never participates in ordering; a final release sorts after
// any prerelease of the same release numbers.
func (v Version) Compare(other Version) int {
	return v.sem().Compare(other.sem())
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// SortVersions sorts versions in ascending order, in place.
func SortVersions(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Less(versions[j])
	})
}

// ParseTagVersions parses repository tags into versions.  Only tags prefixed
// with "v" are considered; tags that do not parse are skipped, since a
// repository may contain unrelated tags.
func ParseTagVersions(tags []string) []Version {
	var versions []Version
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "v") {
			continue
		}
		v, err := ParseVersion(strings.TrimPrefix(tag, "v"))
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions
}
