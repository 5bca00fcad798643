package cmd

import (
	"github.com/spf13/cobra"
)

func newFormatCmd() *cobra.Command {
	var checkFlag bool
	cmd := &cobra.Command{
		Use:   "format [files...]",
		Short: "Format source files",
		Long: `format rewrites the given files (or the whole working tree when no
files are given) with the formatters matching each file type.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer()
			if err != nil {
				return err
			}
			return c.formatSvc.Format(cmd.Context(), args, checkFlag)
		},
	}
	cmd.Flags().BoolVar(&checkFlag, "check", false, "verify formatting without rewriting files")
	return cmd
}
