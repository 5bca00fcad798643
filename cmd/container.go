package cmd

import (
	"fmt"

	"github.com/benfiola/devtools/internal/config"
	"github.com/benfiola/devtools/internal/domain"
	"github.com/benfiola/devtools/internal/format"
	"github.com/benfiola/devtools/internal/logger"
	"github.com/benfiola/devtools/internal/orchestrator"
	"github.com/benfiola/devtools/internal/repository"
	"github.com/benfiola/devtools/internal/service"
	"github.com/benfiola/devtools/internal/toolchain"
	"github.com/benfiola/devtools/internal/usecase"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config
	log *zap.Logger

	fsRepo    repository.FileSystemRepository
	runner    service.CommandRunner
	prefix    *toolchain.Prefix
	gitRepo   repository.GitRepository
	formatSvc *format.Service
	resolver  *usecase.ResolveVersionUseCase
}

// newContainer creates a new container with all the dependencies.  Values
// from persistent flags take precedence over file and environment
// configuration.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if prefixFlag != "" {
		cfg.Prefix = prefixFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	fsRepo := repository.FileSystemRepository(afero.NewOsFs())
	runner := service.NewCommandRunner(log)

	prefix, err := toolchain.NewPrefix(cfg.Prefix, fsRepo, runner, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize toolchain prefix: %w", err)
	}

	formatSvc, err := format.NewService(prefix, runner, fsRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize format service: %w", err)
	}

	gitRepo := repository.NewGitRepository(runner, ".")
	resolver := &usecase.ResolveVersionUseCase{
		GitRepo: gitRepo,
		Rules:   domain.DefaultRules(),
		Log:     log,
	}

	return &container{
		cfg:       cfg,
		log:       log,
		fsRepo:    fsRepo,
		runner:    runner,
		prefix:    prefix,
		gitRepo:   gitRepo,
		formatSvc: formatSvc,
		resolver:  resolver,
	}, nil
}

// publishOrchestrator wires the publish workflow on top of the container.
// The GitHub repository is optional - release creation requires a token.
func (c *container) publishOrchestrator() (*orchestrator.PublishOrchestrator, error) {
	tagger, err := repository.NewGitTagger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize git tagger: %w", err)
	}

	var ghRepo repository.GithubRepository
	if c.cfg.GithubToken != "" {
		if err := c.cfg.ValidateForGitHubOperations(); err != nil {
			return nil, err
		}
		ghRepo, err = repository.NewGithubRepository(c.cfg.GithubToken, c.cfg.GithubOwner, c.cfg.GithubRepo)
		if err != nil {
			return nil, err
		}
	}

	projectRepo := repository.NewProjectRepository(c.fsRepo)
	sessionRepo := repository.NewJSONSessionRepository(c.fsRepo, ".devtools-sessions")
	publisher := service.NewPublisher(c.runner, c.prefix, c.fsRepo, c.log, c.cfg.DockerNamespace)

	return orchestrator.NewPublishOrchestrator(
		c.resolver,
		projectRepo,
		tagger,
		ghRepo,
		c.formatSvc,
		publisher,
		sessionRepo,
		c.cfg,
		c.log,
	), nil
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "", "toolchain prefix directory")

	rootCmd.AddCommand(
		newVersionCmd(),
		newNextVersionCmd(),
		newBootstrapCmd(),
		newFormatCmd(),
		newPublishCmd(),
	)
	return nil
}
