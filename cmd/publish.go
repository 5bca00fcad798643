package cmd

import (
	"github.com/benfiola/devtools/internal/domain"
	"github.com/benfiola/devtools/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newPublishCmd() *cobra.Command {
	var (
		dryRunFlag  bool
		releaseFlag bool
		dirFlag     string
	)
	cmd := &cobra.Command{
		Use:   "publish <flavor>",
		Short: "Publish the project",
		Long: `publish resolves the next version, stamps it into the project manifest,
verifies formatting, uploads the artifact for the given flavor (package or
container), then tags the commit and optionally creates a GitHub release.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flavor, err := domain.ParsePublishFlavor(args[0])
			if err != nil {
				return err
			}
			c, err := newContainer()
			if err != nil {
				return err
			}
			orch, err := c.publishOrchestrator()
			if err != nil {
				return err
			}
			return orch.Execute(cmd.Context(), orchestrator.PublishConfig{
				Flavor:        flavor,
				DryRun:        dryRunFlag,
				CreateRelease: releaseFlag,
				ProjectDir:    dirFlag,
			})
		},
	}
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "resolve and set versions without publishing")
	cmd.Flags().BoolVar(&releaseFlag, "release", false, "create a GitHub release after tagging")
	cmd.Flags().StringVar(&dirFlag, "dir", ".", "project directory")
	return cmd
}
