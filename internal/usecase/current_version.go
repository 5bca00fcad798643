package usecase

import (
	"fmt"
	"strings"

	"github.com/benfiola/devtools/internal/domain"
)

// CurrentVersionUseCase reports the installed devtools version by parsing
// and re-rendering the embedded version file.

type CurrentVersionUseCase struct {
	// Raw is the one-line contents of the version file.
	Raw string
}

// Execute parses the version file and renders the canonical semver form.
func (uc *CurrentVersionUseCase) Execute() (string, error) {
	version, err := domain.ParseVersion(strings.TrimSpace(uc.Raw))
	if err != nil {
		return "", fmt.Errorf("invalid installed version: %w", err)
	}
	return version.String(), nil
}
