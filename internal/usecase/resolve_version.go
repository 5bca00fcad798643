package usecase

import (
	"context"
	"fmt"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/benfiola/devtools/internal/repository"
	"go.uber.org/zap"
)

// ResolveVersionUseCase computes the next version of the repository from its
// tag history, commit messages, and the release policy of the current
// branch.

type ResolveVersionUseCase struct {
	GitRepo repository.GitRepository
	Rules   []domain.VersionRule
	Log     *zap.Logger
}

// Execute resolves the next version and renders it with the given flavor.
func (uc *ResolveVersionUseCase) Execute(ctx context.Context, flavor domain.VersionFlavor) (string, error) {
	version, err := uc.Resolve(ctx)
	if err != nil {
		return "", err
	}
	rendered, err := version.Render(flavor)
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// Resolve computes the next version.
func (uc *ResolveVersionUseCase) Resolve(ctx context.Context) (domain.Version, error) {
	branch, err := uc.GitRepo.CurrentBranch(ctx)
	if err != nil {
		return domain.Version{}, fmt.Errorf("failed to determine branch: %w", err)
	}
	uc.Log.Debug("resolved branch", zap.String("branch", branch))

	rule, err := domain.MatchRule(uc.Rules, branch)
	if err != nil {
		return domain.Version{}, err
	}
	uc.Log.Debug("matched rule", zap.String("pattern", rule.Pattern.String()))

	repoVersion, err := uc.repoVersion(ctx)
	if err != nil {
		return domain.Version{}, err
	}
	uc.Log.Debug("repo version", zap.Stringer("version", repoVersion))

	ancestor, change, err := uc.ancestralData(ctx)
	if err != nil {
		return domain.Version{}, err
	}
	uc.Log.Debug("ancestral data",
		zap.Stringer("release", ancestor), zap.Stringer("change", change))

	// no recognized changes since the ancestor release: the version stays
	// put, without prerelease or metadata handling
	if change == domain.ChangeNone {
		return ancestor, nil
	}

	// drift is how far the latest tag already diverged from the last real
	// ancestor release; it guards against double-bumping
	drift := domain.Diff(repoVersion, ancestor)

	var version domain.Version
	if rule.PrereleaseTag != "" {
		base := repoVersion
		if drift.Less(change) {
			base = repoVersion.Bump(change)
		}
		version = base.BumpPrerelease(rule.PrereleaseTag)
	} else {
		switch {
		case !repoVersion.IsPrerelease():
			version = repoVersion.Bump(change)
		case drift.Less(change):
			version = repoVersion.Bump(change)
		default:
			// promote the prerelease to a final release without a
			// further increment
			version = repoVersion.Release()
		}
	}

	if rule.AddBuildMetadata {
		version = version.WithMetadata(domain.BranchMetadata(branch))
	}
	uc.Log.Debug("resolved version", zap.Stringer("version", version))
	return version, nil
}

// repoVersion returns the largest version among all v-prefixed tags, or
// 0.0.0 when none parse.
func (uc *ResolveVersionUseCase) repoVersion(ctx context.Context) (domain.Version, error) {
	tags, err := uc.GitRepo.Tags(ctx)
	if err != nil {
		return domain.Version{}, err
	}
	versions := domain.ParseTagVersions(tags)
	if len(versions) == 0 {
		return domain.Version{}, nil
	}
	domain.SortVersions(versions)
	return versions[len(versions)-1], nil
}

// ancestralData walks history backward from HEAD until it finds a commit
// carrying a non-prerelease version tag, accumulating the largest
// commit-message-implied change along the way.  The tagged commit's own
// message is not folded in.  Defaults to 0.0.0 when no such ancestor exists.
func (uc *ResolveVersionUseCase) ancestralData(ctx context.Context) (domain.Version, domain.Change, error) {
	var (
		ancestor domain.Version
		change   domain.Change
	)
	err := uc.GitRepo.Commits(ctx).ForEach(ctx, func(commit *domain.Commit) error {
		versions := domain.ParseTagVersions(commit.Tags)
		domain.SortVersions(versions)
		for _, version := range versions {
			if version.IsPrerelease() {
				continue
			}
			ancestor = version
			return repository.ErrStop
		}
		if c := domain.ChangeFromMessage(commit.Message); change.Less(c) {
			change = c
		}
		return nil
	})
	if err != nil {
		return domain.Version{}, domain.ChangeNone, fmt.Errorf("failed to walk history: %w", err)
	}
	return ancestor, change, nil
}
