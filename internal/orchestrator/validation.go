package orchestrator

import (
	"fmt"
	"regexp"
	"strings"
)

// tagRegex matches valid git tag names produced by version rendering.
// "+" is included for build metadata on prerelease tags.
var tagRegex = regexp.MustCompile(`^[a-zA-Z0-9._/+-]+$`)

// ValidateTag validates a git tag name before it is created or pushed.
func ValidateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag cannot be empty")
	}
	if len(tag) > 255 {
		return fmt.Errorf("tag too long: %d characters (max: 255)", len(tag))
	}
	if strings.Contains(tag, "..") {
		return fmt.Errorf("tag cannot contain consecutive dots: %s", tag)
	}
	if strings.HasSuffix(tag, ".lock") {
		return fmt.Errorf("tag cannot end with .lock: %s", tag)
	}
	if !tagRegex.MatchString(tag) {
		return fmt.Errorf("invalid tag format: %s", tag)
	}
	return nil
}
