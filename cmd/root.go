package cmd

import (
	"github.com/spf13/cobra"
)

var (
	logLevelFlag string
	prefixFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "devtools",
	Short: "A CLI tool for developing benfiola projects",
	Long:  `devtools handles the common development chores of benfiola projects, from version resolution to formatting and publishing.`,
}

func Execute() error {
	return rootCmd.Execute()
}
