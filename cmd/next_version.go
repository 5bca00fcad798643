package cmd

import (
	"fmt"

	"github.com/benfiola/devtools/internal/domain"
	"github.com/spf13/cobra"
)

func newNextVersionCmd() *cobra.Command {
	var flavorFlag string
	cmd := &cobra.Command{
		Use:   "next-version",
		Short: "Resolve the next version of the repository",
		Long: `next-version inspects tags and commit messages to determine the next
version of the repository, rendered with the requested flavor.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flavor, err := domain.ParseFlavor(flavorFlag)
			if err != nil {
				return err
			}
			c, err := newContainer()
			if err != nil {
				return err
			}
			rendered, err := c.resolver.Execute(cmd.Context(), flavor)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	cmd.Flags().StringVar(&flavorFlag, "flavor", string(domain.FlavorSemver),
		"output flavor (semver, git-tag, container-tag, package-manager)")
	return cmd
}
