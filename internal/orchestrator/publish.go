package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benfiola/devtools/internal/config"
	"github.com/benfiola/devtools/internal/domain"
	"github.com/benfiola/devtools/internal/repository"
	"github.com/benfiola/devtools/internal/service"
	"github.com/benfiola/devtools/internal/usecase"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// FormatChecker verifies repository formatting before an artifact is built.
type FormatChecker interface {
	Format(ctx context.Context, files []string, check bool) error
}

// PublishConfig contains configuration for the publish workflow.
type PublishConfig struct {
	Flavor        domain.PublishFlavor
	DryRun        bool   // Resolve and set versions only; skip uploads, tags, releases
	CreateRelease bool   // Create a GitHub release after tagging
	ProjectDir    string // Project root, "." when unset
}

// PublishOrchestrator orchestrates the publish workflow: resolve the next
// version, stamp it into the project manifest, verify formatting, upload the
// artifact, then tag and optionally create a GitHub release.
type PublishOrchestrator struct {
	resolver    *usecase.ResolveVersionUseCase
	projectRepo repository.ProjectRepository
	tagger      repository.GitTagger
	githubRepo  repository.GithubRepository
	formatSvc   FormatChecker
	publisher   service.Publisher
	sessionRepo repository.SessionRepository
	cfg         *config.Config
	log         *zap.Logger
}

// NewPublishOrchestrator creates a new publish orchestrator.  githubRepo may
// be nil when no GitHub credentials are configured; release creation then
// fails with a configuration error.
func NewPublishOrchestrator(
	resolver *usecase.ResolveVersionUseCase,
	projectRepo repository.ProjectRepository,
	tagger repository.GitTagger,
	githubRepo repository.GithubRepository,
	formatSvc FormatChecker,
	publisher service.Publisher,
	sessionRepo repository.SessionRepository,
	cfg *config.Config,
	log *zap.Logger,
) *PublishOrchestrator {
	return &PublishOrchestrator{
		resolver:    resolver,
		projectRepo: projectRepo,
		tagger:      tagger,
		githubRepo:  githubRepo,
		formatSvc:   formatSvc,
		publisher:   publisher,
		sessionRepo: sessionRepo,
		cfg:         cfg,
		log:         log,
	}
}

// Execute runs the complete publish workflow.
func (o *PublishOrchestrator) Execute(ctx context.Context, cfg PublishConfig) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultWorkflowTimeout)
	defer cancel()

	session := domain.NewPublishSession(uuid.NewString(), cfg.Flavor)
	session.DryRun = cfg.DryRun
	session.Status = domain.SessionStatusRunning

	err := o.run(ctx, cfg, session)
	if err == nil {
		session.Status = domain.SessionStatusCompleted
	} else if session.Status != domain.SessionStatusFailed {
		// Failures before the first recorded step never pass through
		// MarkStepFailed.
		session.Status = domain.SessionStatusFailed
		session.Error = err.Error()
	}
	if saveErr := o.sessionRepo.Save(ctx, session); saveErr != nil {
		o.log.Warn("failed to save publish session", zap.Error(saveErr))
	}
	return err
}

func (o *PublishOrchestrator) run(ctx context.Context, cfg PublishConfig, session *domain.PublishSession) error {
	dir := cfg.ProjectDir
	if dir == "" {
		dir = "."
	}
	project, err := o.projectRepo.Detect(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to detect project: %w", err)
	}
	session.Project = project.Name

	version, err := o.resolveVersion(ctx, session)
	if err != nil {
		return err
	}
	if err := o.setVersion(ctx, session, project, version); err != nil {
		return err
	}
	if err := o.checkFormat(ctx, session); err != nil {
		return err
	}
	if cfg.DryRun {
		o.log.Info("dry-run complete, skipping publish, tag and release",
			zap.Stringer("version", version))
		return nil
	}
	if err := o.publish(ctx, session, cfg.Flavor, project, version); err != nil {
		return err
	}
	if err := o.tag(ctx, session, version); err != nil {
		return err
	}
	if cfg.CreateRelease {
		if err := o.release(ctx, session, version); err != nil {
			return err
		}
	}
	return nil
}

// step runs one workflow step and records its outcome on the session.
func (o *PublishOrchestrator) step(session *domain.PublishSession, stepType domain.StepType, fn func() error) error {
	startedAt := time.Now()
	if err := fn(); err != nil {
		session.MarkStepFailed(stepType, startedAt, err)
		return err
	}
	session.MarkStepCompleted(stepType, startedAt)
	return nil
}

func (o *PublishOrchestrator) resolveVersion(ctx context.Context, session *domain.PublishSession) (domain.Version, error) {
	var version domain.Version
	err := o.step(session, domain.StepTypeResolveVersion, func() error {
		var err error
		version, err = o.resolver.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve version: %w", err)
		}
		tag, err := version.Render(domain.FlavorGitTag)
		if err != nil {
			return err
		}
		session.Version = version.String()
		session.Tag = tag
		o.writeOutput("version", version.String())
		o.writeOutput("tag", tag)
		return nil
	})
	return version, err
}

func (o *PublishOrchestrator) setVersion(
	ctx context.Context,
	session *domain.PublishSession,
	project *domain.Project,
	version domain.Version,
) error {
	return o.step(session, domain.StepTypeSetVersion, func() error {
		rendered, err := version.Render(domain.FlavorSemver)
		if err != nil {
			return err
		}
		if err := o.projectRepo.SetVersion(ctx, project, rendered); err != nil {
			return fmt.Errorf("failed to set project version: %w", err)
		}
		return nil
	})
}

func (o *PublishOrchestrator) checkFormat(ctx context.Context, session *domain.PublishSession) error {
	return o.step(session, domain.StepTypeCheckFormat, func() error {
		if err := o.formatSvc.Format(ctx, nil, true); err != nil {
			return fmt.Errorf("failed format check: %w", err)
		}
		return nil
	})
}

func (o *PublishOrchestrator) publish(
	ctx context.Context,
	session *domain.PublishSession,
	flavor domain.PublishFlavor,
	project *domain.Project,
	version domain.Version,
) error {
	return o.step(session, domain.StepTypePublish, func() error {
		switch flavor {
		case domain.PublishFlavorPackage:
			token := o.cfg.PypiToken
			if project.Kind == domain.ProjectKindNode {
				token = o.cfg.NpmToken
			}
			if token == "" {
				return fmt.Errorf("missing registry token for %s project", project.Kind)
			}
			return o.publisher.PublishPackage(ctx, project, version, token)
		case domain.PublishFlavorContainer:
			if o.cfg.DockerUser == "" || o.cfg.DockerToken == "" {
				return fmt.Errorf("missing docker credentials")
			}
			return o.publisher.PublishContainer(ctx, project, version, o.cfg.DockerUser, o.cfg.DockerToken)
		}
		return &domain.UnknownPublishFlavorError{Flavor: string(flavor)}
	})
}

func (o *PublishOrchestrator) tag(ctx context.Context, session *domain.PublishSession, version domain.Version) error {
	return o.step(session, domain.StepTypeTag, func() error {
		tag := session.Tag
		if err := ValidateTag(tag); err != nil {
			return err
		}
		exists, err := o.tagger.TagExists(ctx, tag)
		if err != nil {
			return fmt.Errorf("failed to check tag: %w", err)
		}
		if exists {
			o.log.Info("tag already exists, skipping", zap.String("tag", tag))
			return nil
		}
		message := fmt.Sprintf("release %s", version)
		if err := o.tagger.CreateTag(ctx, tag, message); err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		// Push with retry for transient network failures
		return retry.Do(
			ctx,
			retry.WithMaxRetries(DefaultRetryCount, retry.NewExponential(DefaultRetryDelay)),
			func(ctx context.Context) error {
				if err := o.tagger.PushTag(ctx, tag); err != nil {
					return retry.RetryableError(err)
				}
				return nil
			},
		)
	})
}

func (o *PublishOrchestrator) release(ctx context.Context, session *domain.PublishSession, version domain.Version) error {
	return o.step(session, domain.StepTypeRelease, func() error {
		if o.githubRepo == nil {
			return fmt.Errorf("github release requested but no github token configured")
		}
		name := session.Tag
		body := fmt.Sprintf("Release %s of %s.", version, session.Project)
		url, err := o.githubRepo.CreateRelease(ctx, session.Tag, name, body, version.IsPrerelease())
		if err != nil {
			return fmt.Errorf("failed to create release: %w", err)
		}
		o.log.Info("created release", zap.String("url", url))
		return nil
	})
}

// writeOutput appends a key=value pair to the GITHUB_OUTPUT file when running
// under GitHub Actions, and logs it otherwise.
func (o *PublishOrchestrator) writeOutput(key, value string) {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		o.log.Info("output", zap.String(key, value))
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, FilePermissionsReadWrite)
	if err != nil {
		o.log.Warn("failed to open output file", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
		o.log.Warn("failed to write output", zap.Error(err))
	}
}
